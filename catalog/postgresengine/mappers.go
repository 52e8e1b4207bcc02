package postgresengine

import (
	"context"
	"errors"
	"fmt"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
)

// mapRow converts one result row into an entity of kind T. Book, Discount and Penalty rows are
// upserted into the side-cache, Order rows are completed by the assembler.
func mapRow[T catalog.Entity](ctx context.Context, e *Engine, row catalog.Row) (T, error) {
	var zero T
	var mapped any
	var err error

	switch any(zero).(type) {
	case catalog.Book:
		mapped, err = e.mapBook(row)
	case catalog.Customer:
		mapped, err = mapCustomer(row)
	case catalog.Discount:
		mapped, err = e.mapDiscount(row)
	case catalog.Penalty:
		mapped, err = e.mapPenalty(row)
	case catalog.Order:
		mapped, err = e.mapOrder(ctx, row)
	case catalog.User:
		mapped, err = mapUser(row)
	default:
		return zero, catalog.ErrUnsupportedKind
	}

	if err != nil {
		return zero, errors.Join(catalog.ErrMappingFailed, fmt.Errorf("%s row: %w", catalog.KindOf[T](), err))
	}

	return mapped.(T), nil
}

func decodeBook(row catalog.Row) (catalog.Book, error) {
	var book catalog.Book
	var err error

	if book.ISBN, err = row.Int64(colISBN); err != nil {
		return catalog.Book{}, err
	}
	if book.Title, err = row.String(colTitle); err != nil {
		return catalog.Book{}, err
	}
	if book.Author, err = row.String(colAuthor); err != nil {
		return catalog.Book{}, err
	}
	if book.Genre, err = row.String(colGenre); err != nil {
		return catalog.Book{}, err
	}
	if book.DepositCost, err = row.Decimal(colDepositCost); err != nil {
		return catalog.Book{}, err
	}
	if book.RentalCostPerDay, err = row.Decimal(colRentalCostPerDay); err != nil {
		return catalog.Book{}, err
	}

	return book, nil
}

func (e *Engine) mapBook(row catalog.Row) (catalog.Book, error) {
	book, err := decodeBook(row)
	if err != nil {
		return catalog.Book{}, err
	}

	e.sideCache.UpsertBook(book)

	return book, nil
}

func mapCustomer(row catalog.Row) (catalog.Customer, error) {
	var customer catalog.Customer
	var err error

	if customer.CustomerID, err = row.Int64(colCustomerID); err != nil {
		return catalog.Customer{}, err
	}
	if customer.Address, err = row.String(colAddress); err != nil {
		return catalog.Customer{}, err
	}
	if customer.FullName, err = row.String(colFullName); err != nil {
		return catalog.Customer{}, err
	}
	if customer.PhoneNumber, err = row.String(colPhoneNumber); err != nil {
		return catalog.Customer{}, err
	}

	return customer, nil
}

func decodeDiscount(row catalog.Row) (catalog.Discount, error) {
	name, err := row.String(colDiscountName)
	if err != nil {
		return catalog.Discount{}, err
	}

	amount, err := row.Decimal(colDiscountAmount)
	if err != nil {
		return catalog.Discount{}, err
	}

	return catalog.Discount{Name: name, Amount: amount}, nil
}

func (e *Engine) mapDiscount(row catalog.Row) (catalog.Discount, error) {
	discount, err := decodeDiscount(row)
	if err != nil {
		return catalog.Discount{}, err
	}

	e.sideCache.UpsertDiscount(discount)

	return discount, nil
}

func decodePenalty(row catalog.Row) (catalog.Penalty, error) {
	name, err := row.String(colPenaltyName)
	if err != nil {
		return catalog.Penalty{}, err
	}

	amount, err := row.Decimal(colPenaltyAmount)
	if err != nil {
		return catalog.Penalty{}, err
	}

	return catalog.Penalty{Name: name, Amount: amount}, nil
}

func (e *Engine) mapPenalty(row catalog.Row) (catalog.Penalty, error) {
	penalty, err := decodePenalty(row)
	if err != nil {
		return catalog.Penalty{}, err
	}

	e.sideCache.UpsertPenalty(penalty)

	return penalty, nil
}

func decodeOrder(row catalog.Row) (catalog.Order, error) {
	orderID, err := row.Int64(colOrderID)
	if err != nil {
		return catalog.Order{}, err
	}

	customerID, err := row.Int64(colCustomerID)
	if err != nil {
		return catalog.Order{}, err
	}

	isbn, err := row.Int64(colISBN)
	if err != nil {
		return catalog.Order{}, err
	}

	issueDate, err := row.Time(colIssueDate)
	if err != nil {
		return catalog.Order{}, err
	}

	returnDate, err := row.Time(colReturnDate)
	if err != nil {
		return catalog.Order{}, err
	}

	return catalog.BuildOrder(orderID, customerID, isbn, issueDate, returnDate), nil
}

// mapOrder decodes the base fields and assembles the associations. Association failures are
// logged by the assembler and do not fail the mapping.
func (e *Engine) mapOrder(ctx context.Context, row catalog.Row) (catalog.Order, error) {
	order, err := decodeOrder(row)
	if err != nil {
		return catalog.Order{}, err
	}

	_ = e.Assemble(ctx, &order)

	return order, nil
}

func mapUser(row catalog.Row) (catalog.User, error) {
	var user catalog.User
	var err error

	if user.UserID, err = row.Int64(colUserID); err != nil {
		return catalog.User{}, err
	}
	if user.Username, err = row.String(colUsername); err != nil {
		return catalog.User{}, err
	}
	if user.Password, err = row.String(colPassword); err != nil {
		return catalog.User{}, err
	}

	role, err := row.String(colRole)
	if err != nil {
		return catalog.User{}, err
	}
	if user.Role, err = catalog.ParseRole(role); err != nil {
		return catalog.User{}, err
	}

	if user.CustomerID, err = row.OptionalInt64(colCustomerID); err != nil {
		return catalog.User{}, err
	}

	return user, nil
}
