package catalog

import "errors"

var (
	// ErrNilDatabaseConnection is returned when a nil database handle is supplied to an engine constructor.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrNilSideCache is returned when a nil side-cache is supplied.
	ErrNilSideCache = errors.New("side-cache must not be nil")

	// ErrInvalidTTL is returned when a non-positive cache time-to-live is configured.
	ErrInvalidTTL = errors.New("cache ttl must be positive")

	// ErrUnsupportedDialect is returned when an SQL dialect is configured that the engine cannot speak.
	ErrUnsupportedDialect = errors.New("unsupported sql dialect")

	// ErrConnectionFailed is returned when no database session could be acquired.
	ErrConnectionFailed = errors.New("acquiring database connection failed")

	// ErrQueryingFailed is returned when reading from the data source fails.
	ErrQueryingFailed = errors.New("querying the data source failed")

	// ErrWriteFailed is returned when an insert, upsert or delete fails.
	ErrWriteFailed = errors.New("writing to the data source failed")

	// ErrBuildingQueryFailed is returned when an SQL statement could not be generated.
	ErrBuildingQueryFailed = errors.New("building query failed")

	// ErrScanningRowFailed is returned when a result row could not be read.
	ErrScanningRowFailed = errors.New("scanning database row failed")

	// ErrMappingFailed is returned when a row could not be mapped into an entity.
	// A refresh that hits this error keeps the previously published snapshot.
	ErrMappingFailed = errors.New("mapping row to entity failed")

	// ErrMissingColumn is joined with ErrMappingFailed when a required column is absent.
	ErrMissingColumn = errors.New("missing column")

	// ErrMalformedColumn is joined with ErrMappingFailed when a column holds a value of the wrong shape.
	ErrMalformedColumn = errors.New("malformed column")

	// ErrUnsupportedKind signals an entity kind without a row mapper. This is a programming defect.
	ErrUnsupportedKind = errors.New("unsupported entity kind")

	// ErrAssociationLoadFailed is reported when loading an order's discounts or penalties fails.
	// Assembly continues with the remaining associations.
	ErrAssociationLoadFailed = errors.New("loading order association failed")

	// ErrRefreshAfterWriteFailed is returned when a write succeeded but the following refresh did not.
	ErrRefreshAfterWriteFailed = errors.New("refresh after successful write failed")

	// ErrServingStaleSnapshot is joined with the refresh error when a read falls back to the last good snapshot.
	ErrServingStaleSnapshot = errors.New("refresh failed, serving last good snapshot")

	// ErrNotFound is returned when a keyed lookup has no matching row.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials is returned when a login does not match any user.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrNegativeAmount is returned when a discount or penalty with a negative amount is supplied.
	ErrNegativeAmount = errors.New("amount must not be negative")

	// ErrEmptyName is returned when a discount or penalty without a name is supplied.
	ErrEmptyName = errors.New("name must not be empty")
)
