package postgresengine

import (
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
)

const (
	colISBN             = "isbn"
	colTitle            = "title"
	colAuthor           = "author"
	colGenre            = "genre"
	colDepositCost      = "deposit_cost"
	colRentalCostPerDay = "rental_cost_per_day"
	colCustomerID       = "customer_id"
	colAddress          = "address"
	colFullName         = "full_name"
	colPhoneNumber      = "phone_number"
	colDiscountName     = "discount_name"
	colDiscountAmount   = "discount_amount"
	colPenaltyName      = "penalty_name"
	colPenaltyAmount    = "penalty_amount"
	colOrderID          = "order_id"
	colIssueDate        = "issue_date"
	colReturnDate       = "return_date"
	colUserID           = "user_id"
	colUsername         = "username"
	colPassword         = "password"
	colRole             = "role"
	colLinkID           = "link_id"
	tableOrderDiscounts = "orderdiscounts"
	tableOrderPenalties = "orderpenalties"
	aliasLink           = "l"
	aliasEntry          = "e"
)

// keyColumn returns the primary key a kind's snapshot is ordered by.
func keyColumn(kind catalog.Kind) string {
	switch kind {
	case catalog.KindBook:
		return colISBN
	case catalog.KindCustomer:
		return colCustomerID
	case catalog.KindDiscount:
		return colDiscountName
	case catalog.KindPenalty:
		return colPenaltyName
	case catalog.KindOrder:
		return colOrderID
	case catalog.KindUser:
		return colUserID
	default:
		return ""
	}
}

func (e *Engine) buildSelectAllQuery(kind catalog.Kind) (string, error) {
	if kind == catalog.KindUnknown {
		return "", catalog.ErrUnsupportedKind
	}

	return toSQL(e.builder().
		From(kind.TableName()).
		Order(goqu.I(keyColumn(kind)).Asc()))
}

func (e *Engine) buildSelectOrderQuery(orderID int64) (string, error) {
	return toSQL(e.builder().
		From(catalog.KindOrder.TableName()).
		Where(goqu.C(colOrderID).Eq(orderID)).
		Limit(1))
}

func (e *Engine) buildOrderExistsQuery(orderID int64) (string, error) {
	return toSQL(e.builder().
		From(catalog.KindOrder.TableName()).
		Select(goqu.C(colOrderID)).
		Where(goqu.C(colOrderID).Eq(orderID)).
		Limit(1))
}

func (e *Engine) buildSelectUserQuery(username, password string) (string, error) {
	return toSQL(e.builder().
		From(catalog.KindUser.TableName()).
		Where(goqu.Ex{colUsername: username, colPassword: password}).
		Limit(1))
}

// buildSelectAssociationQuery joins a link table with its catalogue table, in attachment order.
func (e *Engine) buildSelectAssociationQuery(linkTable, entryTable, nameCol, amountCol string, orderID int64) (string, error) {
	return toSQL(e.builder().
		From(goqu.T(linkTable).As(aliasLink)).
		Join(
			goqu.T(entryTable).As(aliasEntry),
			goqu.On(goqu.I(aliasLink+"."+nameCol).Eq(goqu.I(aliasEntry+"."+nameCol))),
		).
		Select(goqu.I(aliasEntry+"."+nameCol), goqu.I(aliasEntry+"."+amountCol)).
		Where(goqu.I(aliasLink + "." + colOrderID).Eq(orderID)).
		Order(goqu.I(aliasLink + "." + colLinkID).Asc()))
}

// buildInsertQuery renders an insert; on postgres the generated key is returned through RETURNING.
func (e *Engine) buildInsertQuery(table string, record goqu.Record, keyCol string) (string, error) {
	insertStmt := e.builder().Insert(table).Rows(record)
	if e.dialect == DialectPostgres && keyCol != "" {
		insertStmt = insertStmt.Returning(goqu.C(keyCol))
	}

	return toSQL(insertStmt)
}

// buildUpsertNamedAmountQuery inserts a discount or penalty, overwriting the amount of an existing name.
func (e *Engine) buildUpsertNamedAmountQuery(table, nameCol, amountCol, name string, amount decimal.Decimal) (string, error) {
	var newAmount any
	switch e.dialect {
	case DialectMySQL:
		newAmount = goqu.L("VALUES(?)", goqu.C(amountCol))
	default:
		newAmount = goqu.I("excluded." + amountCol)
	}

	return toSQL(e.builder().
		Insert(table).
		Rows(goqu.Record{nameCol: name, amountCol: amount.String()}).
		OnConflict(goqu.DoUpdate(nameCol, goqu.Record{amountCol: newAmount})))
}

func (e *Engine) buildDeleteQuery(table, keyCol string, key int64) (string, error) {
	return toSQL(e.builder().
		Delete(table).
		Where(goqu.C(keyCol).Eq(key)))
}

// dateValue renders a calendar date, a zero time is stored as NULL.
func dateValue(t time.Time) any {
	if t.IsZero() {
		return nil
	}

	return t.Format(time.DateOnly)
}
