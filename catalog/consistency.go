package catalog

import "context"

// ConsistencyLevel defines which database node a refresh may read from.
type ConsistencyLevel int

const (
	// StrongConsistency reads from the primary. Refreshes forced by a write always use it,
	// so the published snapshot contains the write.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency allows reading from a replica when the engine has one.
	// Suitable for TTL-driven refreshes of read-mostly screens.
	EventualConsistency
)

type contextKey string

// ConsistencyLevelKey is the context key used to store consistency level preferences.
const ConsistencyLevelKey contextKey = "catalog.consistency_level"

// WithStrongConsistency returns a context that pins reads to the primary.
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, StrongConsistency)
}

// WithEventualConsistency returns a context that allows reads from a replica.
//
//	ctx = catalog.WithEventualConsistency(ctx)
//	books, err := books.GetAll(ctx)
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, EventualConsistency)
}

// GetConsistencyLevel extracts the consistency level from the context, defaulting to StrongConsistency.
func GetConsistencyLevel(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(ConsistencyLevelKey).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}

// String provides a string representation of ConsistencyLevel for logging.
func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}
