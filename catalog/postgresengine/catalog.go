package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
)

const (
	writeAddBook            = "add_book"
	writeDeleteBook         = "delete_book"
	writeAddCustomer        = "add_customer"
	writeDeleteCustomer     = "delete_customer"
	writeCreateOrder        = "create_order"
	writeDeleteOrder        = "delete_order"
	writeAddDiscountToOrder = "add_discount_to_order"
	writeAddPenaltyToOrder  = "add_penalty_to_order"
)

// refresher is implemented by every DataModel.
type refresher interface {
	RefreshNow(ctx context.Context) error
}

// Catalog bundles one DataModel per entity kind around a shared Engine and exposes the
// mutation entry points. Every successful write refreshes the affected DataModels before it
// returns; a failed write leaves all snapshots untouched.
type Catalog struct {
	engine    *Engine
	Books     *DataModel[catalog.Book]
	Customers *DataModel[catalog.Customer]
	Discounts *DataModel[catalog.Discount]
	Penalties *DataModel[catalog.Penalty]
	Orders    *DataModel[catalog.Order]
	Users     *DataModel[catalog.User]
}

// NewCatalog creates the DataModels of all entity kinds on top of the engine.
func NewCatalog(engine *Engine) (*Catalog, error) {
	if engine == nil {
		return nil, catalog.ErrNilDatabaseConnection
	}

	c := &Catalog{engine: engine}

	var errs [6]error
	c.Books, errs[0] = NewDataModel[catalog.Book](engine)
	c.Customers, errs[1] = NewDataModel[catalog.Customer](engine)
	c.Discounts, errs[2] = NewDataModel[catalog.Discount](engine)
	c.Penalties, errs[3] = NewDataModel[catalog.Penalty](engine)
	c.Orders, errs[4] = NewDataModel[catalog.Order](engine)
	c.Users, errs[5] = NewDataModel[catalog.User](engine)

	if err := errors.Join(errs[:]...); err != nil {
		return nil, err
	}

	return c, nil
}

// SideCache returns the lookup tables shared by all DataModels of this Catalog.
func (c *Catalog) SideCache() *catalog.SideCache {
	return c.engine.sideCache
}

// Book looks up a book in the side-cache.
func (c *Catalog) Book(isbn catalog.ISBN) (*catalog.Book, bool) {
	return c.engine.sideCache.Book(isbn)
}

// Discount looks up a discount in the side-cache.
func (c *Catalog) Discount(name string) (catalog.Discount, bool) {
	return c.engine.sideCache.Discount(name)
}

// Penalty looks up a penalty in the side-cache.
func (c *Catalog) Penalty(name string) (catalog.Penalty, bool) {
	return c.engine.sideCache.Penalty(name)
}

// AddBook inserts a book and returns its generated ISBN. The ISBN field of book is ignored.
func (c *Catalog) AddBook(ctx context.Context, book catalog.Book) (catalog.ISBN, error) {
	sqlQuery, err := c.engine.buildInsertQuery(catalog.KindBook.TableName(), goqu.Record{
		colTitle:            book.Title,
		colAuthor:           book.Author,
		colGenre:            book.Genre,
		colDepositCost:      book.DepositCost.String(),
		colRentalCostPerDay: book.RentalCostPerDay.String(),
	}, colISBN)
	if err != nil {
		return 0, err
	}

	isbn, err := c.insertReturningKey(ctx, writeAddBook, catalog.KindBook, sqlQuery, colISBN)
	if err != nil {
		return 0, err
	}

	return isbn, c.refreshAfterWrite(ctx, writeAddBook, c.Books)
}

// DeleteBook deletes a book together with its orders. catalog.ErrNotFound is returned when no book has the ISBN.
func (c *Catalog) DeleteBook(ctx context.Context, isbn catalog.ISBN) error {
	sqlQuery, err := c.engine.buildDeleteQuery(catalog.KindBook.TableName(), colISBN, isbn)
	if err != nil {
		return err
	}

	if err := c.deleteOne(ctx, writeDeleteBook, catalog.KindBook, sqlQuery); err != nil {
		return err
	}

	return c.refreshAfterWrite(ctx, writeDeleteBook, c.Books, c.Orders)
}

// AddCustomer inserts a customer and returns the generated customer id.
func (c *Catalog) AddCustomer(ctx context.Context, customer catalog.Customer) (int64, error) {
	sqlQuery, err := c.engine.buildInsertQuery(catalog.KindCustomer.TableName(), goqu.Record{
		colAddress:     customer.Address,
		colFullName:    customer.FullName,
		colPhoneNumber: customer.PhoneNumber,
	}, colCustomerID)
	if err != nil {
		return 0, err
	}

	customerID, err := c.insertReturningKey(ctx, writeAddCustomer, catalog.KindCustomer, sqlQuery, colCustomerID)
	if err != nil {
		return 0, err
	}

	return customerID, c.refreshAfterWrite(ctx, writeAddCustomer, c.Customers)
}

// DeleteCustomer deletes a customer together with its orders.
// catalog.ErrNotFound is returned when no customer has the id.
func (c *Catalog) DeleteCustomer(ctx context.Context, customerID int64) error {
	sqlQuery, err := c.engine.buildDeleteQuery(catalog.KindCustomer.TableName(), colCustomerID, customerID)
	if err != nil {
		return err
	}

	if err := c.deleteOne(ctx, writeDeleteCustomer, catalog.KindCustomer, sqlQuery); err != nil {
		return err
	}

	return c.refreshAfterWrite(ctx, writeDeleteCustomer, c.Customers, c.Orders)
}

// CreateOrder inserts an order and returns the generated order id. A zero returnDate is stored as NULL.
func (c *Catalog) CreateOrder(
	ctx context.Context,
	customerID int64,
	isbn catalog.ISBN,
	issueDate time.Time,
	returnDate time.Time,
) (int64, error) {
	sqlQuery, err := c.engine.buildInsertQuery(catalog.KindOrder.TableName(), goqu.Record{
		colCustomerID: customerID,
		colISBN:       isbn,
		colIssueDate:  dateValue(issueDate),
		colReturnDate: dateValue(returnDate),
	}, colOrderID)
	if err != nil {
		return 0, err
	}

	orderID, err := c.insertReturningKey(ctx, writeCreateOrder, catalog.KindOrder, sqlQuery, colOrderID)
	if err != nil {
		return 0, err
	}

	return orderID, c.refreshAfterWrite(ctx, writeCreateOrder, c.Orders)
}

// DeleteOrder deletes an order together with its discount and penalty links.
func (c *Catalog) DeleteOrder(ctx context.Context, orderID int64) error {
	sqlQuery, err := c.engine.buildDeleteQuery(catalog.KindOrder.TableName(), colOrderID, orderID)
	if err != nil {
		return err
	}

	if err := c.deleteOne(ctx, writeDeleteOrder, catalog.KindOrder, sqlQuery); err != nil {
		return err
	}

	return c.refreshAfterWrite(ctx, writeDeleteOrder, c.Orders)
}

// AddDiscountToOrder upserts the discount by name and links it to the order.
// catalog.ErrNotFound is returned, and nothing is written, when no order has the id.
// Orders already assembled keep the amount they were assembled with until the refresh that
// follows the write re-assembles them.
func (c *Catalog) AddDiscountToOrder(ctx context.Context, orderID int64, discount catalog.Discount) error {
	if err := discount.Validate(); err != nil {
		return err
	}

	if err := c.requireOrder(ctx, orderID); err != nil {
		return err
	}

	upsertQuery, err := c.engine.buildUpsertNamedAmountQuery(
		catalog.KindDiscount.TableName(), colDiscountName, colDiscountAmount, discount.Name, discount.Amount)
	if err != nil {
		return err
	}

	linkQuery, err := c.engine.buildInsertQuery(tableOrderDiscounts, goqu.Record{
		colOrderID:      orderID,
		colDiscountName: discount.Name,
	}, "")
	if err != nil {
		return err
	}

	if err := c.write(ctx, writeAddDiscountToOrder, catalog.KindDiscount, upsertQuery, linkQuery); err != nil {
		return err
	}

	return c.refreshAfterWrite(ctx, writeAddDiscountToOrder, c.Discounts, c.Orders)
}

// AddPenaltyToOrder upserts the penalty by name and links it to the order.
// catalog.ErrNotFound is returned, and nothing is written, when no order has the id.
func (c *Catalog) AddPenaltyToOrder(ctx context.Context, orderID int64, penalty catalog.Penalty) error {
	if err := penalty.Validate(); err != nil {
		return err
	}

	if err := c.requireOrder(ctx, orderID); err != nil {
		return err
	}

	upsertQuery, err := c.engine.buildUpsertNamedAmountQuery(
		catalog.KindPenalty.TableName(), colPenaltyName, colPenaltyAmount, penalty.Name, penalty.Amount)
	if err != nil {
		return err
	}

	linkQuery, err := c.engine.buildInsertQuery(tableOrderPenalties, goqu.Record{
		colOrderID:     orderID,
		colPenaltyName: penalty.Name,
	}, "")
	if err != nil {
		return err
	}

	if err := c.write(ctx, writeAddPenaltyToOrder, catalog.KindPenalty, upsertQuery, linkQuery); err != nil {
		return err
	}

	return c.refreshAfterWrite(ctx, writeAddPenaltyToOrder, c.Penalties, c.Orders)
}

// OrderByID reads one order from the database and assembles it, bypassing the Orders snapshot.
// Association failures are logged and the partially assembled order is returned.
func (c *Catalog) OrderByID(ctx context.Context, orderID int64) (catalog.Order, error) {
	sqlQuery, err := c.engine.buildSelectOrderQuery(orderID)
	if err != nil {
		return catalog.Order{}, err
	}

	rows, err := c.engine.queryRows(ctx, sqlQuery, logActionQuery)
	if err != nil {
		return catalog.Order{}, err
	}

	if len(rows) == 0 {
		return catalog.Order{}, catalog.ErrNotFound
	}

	return mapRow[catalog.Order](ctx, c.engine, rows[0])
}

// Login returns the user matching username and password, or catalog.ErrInvalidCredentials.
func (c *Catalog) Login(ctx context.Context, username, password string) (catalog.User, error) {
	sqlQuery, err := c.engine.buildSelectUserQuery(username, password)
	if err != nil {
		return catalog.User{}, err
	}

	rows, err := c.engine.queryRows(ctx, sqlQuery, logActionLogin)
	if err != nil {
		return catalog.User{}, err
	}

	if len(rows) == 0 {
		return catalog.User{}, catalog.ErrInvalidCredentials
	}

	user, err := mapRow[catalog.User](ctx, c.engine, rows[0])
	if err != nil {
		return catalog.User{}, err
	}

	c.engine.logOperation(ctx, logMsgLoggedIn, logAttrUsername, user.Username)

	return user, nil
}

// insertReturningKey executes an insert and reads the generated key, through RETURNING on
// postgres and through LastInsertId on mysql.
func (c *Catalog) insertReturningKey(
	ctx context.Context,
	write string,
	kind catalog.Kind,
	sqlQuery string,
	keyCol string,
) (int64, error) {

	start := time.Now()
	metrics := c.engine.startWriteMetrics(ctx, write, kind)
	span, ctx := c.engine.startSpan(ctx, spanNameWrite, map[string]string{spanAttrOperation: operationWrite, spanAttrWrite: write})

	key, err := c.executeInsert(ctx, sqlQuery, keyCol)
	if err != nil {
		metrics.recordError(errorTypeWrite, time.Since(start))
		span.finishError(errorTypeWrite, time.Since(start))

		return 0, err
	}

	duration := time.Since(start)
	metrics.recordSuccess(duration)
	span.finishSuccess(duration, nil)
	c.engine.logOperation(ctx, logMsgWritten, logAttrWrite, write, logAttrDurationMS, toMilliseconds(duration))

	return key, nil
}

func (c *Catalog) executeInsert(ctx context.Context, sqlQuery string, keyCol string) (int64, error) {
	if c.engine.dialect == DialectPostgres {
		rows, err := c.engine.queryRows(ctx, sqlQuery, logActionWrite)
		if err != nil {
			return 0, errors.Join(catalog.ErrWriteFailed, err)
		}

		if len(rows) == 0 {
			return 0, errors.Join(catalog.ErrWriteFailed, catalog.ErrMissingColumn)
		}

		key, err := rows[0].Int64(keyCol)
		if err != nil {
			return 0, errors.Join(catalog.ErrWriteFailed, err)
		}

		return key, nil
	}

	result, err := c.engine.exec(ctx, sqlQuery, logActionWrite)
	if err != nil {
		return 0, err
	}

	key, err := result.LastInsertId()
	if err != nil {
		return 0, errors.Join(catalog.ErrWriteFailed, err)
	}

	return key, nil
}

// requireOrder fails with catalog.ErrNotFound when no order has the id. It reads the primary database.
func (c *Catalog) requireOrder(ctx context.Context, orderID int64) error {
	sqlQuery, err := c.engine.buildOrderExistsQuery(orderID)
	if err != nil {
		return err
	}

	rows, err := c.engine.queryRows(catalog.WithStrongConsistency(ctx), sqlQuery, logActionWrite)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		return catalog.ErrNotFound
	}

	return nil
}

// deleteOne executes a delete that is expected to remove exactly one row.
func (c *Catalog) deleteOne(ctx context.Context, write string, kind catalog.Kind, sqlQuery string) error {
	start := time.Now()
	metrics := c.engine.startWriteMetrics(ctx, write, kind)
	span, ctx := c.engine.startSpan(ctx, spanNameWrite, map[string]string{spanAttrOperation: operationWrite, spanAttrWrite: write})

	result, err := c.engine.exec(ctx, sqlQuery, logActionWrite)
	if err != nil {
		metrics.recordError(errorTypeWrite, time.Since(start))
		span.finishError(errorTypeWrite, time.Since(start))

		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		metrics.recordError(errorTypeWrite, time.Since(start))
		span.finishError(errorTypeWrite, time.Since(start))

		return errors.Join(catalog.ErrWriteFailed, err)
	}

	if rowsAffected == 0 {
		metrics.recordError(errorTypeNotFound, time.Since(start))
		span.finishError(errorTypeNotFound, time.Since(start))

		return catalog.ErrNotFound
	}

	duration := time.Since(start)
	metrics.recordSuccess(duration)
	span.finishSuccess(duration, nil)
	c.engine.logOperation(ctx, logMsgWritten, logAttrWrite, write, logAttrDurationMS, toMilliseconds(duration))

	return nil
}

// write executes the statements in order and stops at the first failure.
func (c *Catalog) write(ctx context.Context, write string, kind catalog.Kind, sqlQueries ...string) error {
	start := time.Now()
	metrics := c.engine.startWriteMetrics(ctx, write, kind)
	span, ctx := c.engine.startSpan(ctx, spanNameWrite, map[string]string{spanAttrOperation: operationWrite, spanAttrWrite: write})

	for _, sqlQuery := range sqlQueries {
		if _, err := c.engine.exec(ctx, sqlQuery, logActionWrite); err != nil {
			metrics.recordError(errorTypeWrite, time.Since(start))
			span.finishError(errorTypeWrite, time.Since(start))

			return err
		}
	}

	duration := time.Since(start)
	metrics.recordSuccess(duration)
	span.finishSuccess(duration, nil)
	c.engine.logOperation(ctx, logMsgWritten, logAttrWrite, write, logAttrDurationMS, toMilliseconds(duration))

	return nil
}

// refreshAfterWrite refreshes the given DataModels in order against the primary database.
func (c *Catalog) refreshAfterWrite(ctx context.Context, write string, models ...refresher) error {
	ctx = catalog.WithStrongConsistency(ctx)

	for _, model := range models {
		if err := model.RefreshNow(ctx); err != nil {
			c.engine.logError(ctx, logMsgRefreshAfterWrite, err, logAttrWrite, write)

			return errors.Join(catalog.ErrRefreshAfterWriteFailed, err)
		}
	}

	return nil
}
