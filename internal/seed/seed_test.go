package seed_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
	"github.com/AntonStoeckl/library-rental-catalog-go/internal/seed"
	"github.com/AntonStoeckl/library-rental-catalog-go/testutil/helper"
)

type orderCall struct {
	customerID int64
	isbn       catalog.ISBN
	issueDate  time.Time
	returnDate time.Time
}

type writerFake struct {
	books      []catalog.Book
	customers  []catalog.Customer
	orders     []orderCall
	discounts  []catalog.Discount
	penalties  []catalog.Penalty
	failOrders error
}

func (w *writerFake) AddBook(_ context.Context, book catalog.Book) (catalog.ISBN, error) {
	w.books = append(w.books, book)
	return catalog.ISBN(1000 + len(w.books)), nil
}

func (w *writerFake) AddCustomer(_ context.Context, customer catalog.Customer) (int64, error) {
	w.customers = append(w.customers, customer)
	return int64(500 + len(w.customers)), nil
}

func (w *writerFake) CreateOrder(_ context.Context, customerID int64, isbn catalog.ISBN, issueDate, returnDate time.Time) (int64, error) {
	if w.failOrders != nil {
		return 0, w.failOrders
	}

	w.orders = append(w.orders, orderCall{customerID, isbn, issueDate, returnDate})
	return int64(len(w.orders)), nil
}

func (w *writerFake) AddDiscountToOrder(_ context.Context, _ int64, discount catalog.Discount) error {
	w.discounts = append(w.discounts, discount)
	return nil
}

func (w *writerFake) AddPenaltyToOrder(_ context.Context, _ int64, penalty catalog.Penalty) error {
	w.penalties = append(w.penalties, penalty)
	return nil
}

func Test_Run_ShouldWriteThePlannedRows(t *testing.T) {
	// setup
	writer := &writerFake{}
	plan := seed.Plan{Books: 5, Customers: 3, Orders: 40, Seed: 7, From: helper.FixtureDay}

	// act
	result, err := seed.Run(context.Background(), writer, plan)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 5, result.Books)
	assert.Equal(t, 3, result.Customers)
	assert.Equal(t, 40, result.Orders)
	assert.Len(t, writer.books, 5)
	assert.Len(t, writer.customers, 3)
	assert.Len(t, writer.orders, 40)
	assert.Len(t, writer.discounts, result.Discounts)
	assert.Len(t, writer.penalties, result.Penalties)
}

func Test_Run_ShouldOnlyReferenceWrittenKeys_AndValidDates(t *testing.T) {
	// setup
	writer := &writerFake{}
	plan := seed.Plan{Books: 4, Customers: 2, Orders: 50, Seed: 11, From: helper.FixtureDay}

	// act
	_, err := seed.Run(context.Background(), writer, plan)

	// assert
	require.NoError(t, err)
	for _, order := range writer.orders {
		assert.GreaterOrEqual(t, order.isbn, catalog.ISBN(1001))
		assert.LessOrEqual(t, order.isbn, catalog.ISBN(1004))
		assert.Contains(t, []int64{501, 502}, order.customerID)
		assert.False(t, order.issueDate.Before(helper.FixtureDay))
		assert.False(t, order.issueDate.After(helper.FixtureDay.AddDate(0, 0, 60)))

		if !order.returnDate.IsZero() {
			assert.True(t, order.returnDate.After(order.issueDate))
		}
	}

	for _, book := range writer.books {
		assert.NotEmpty(t, book.Title)
		assert.True(t, book.RentalCostPerDay.IsPositive())
		assert.True(t, book.DepositCost.GreaterThan(book.RentalCostPerDay))
	}
}

func Test_Run_ShouldBeDeterministicPerSeed(t *testing.T) {
	// setup
	first, second, other := &writerFake{}, &writerFake{}, &writerFake{}
	plan := seed.Plan{Books: 3, Customers: 3, Orders: 10, Seed: 42, From: helper.FixtureDay}

	// act
	_, errFirst := seed.Run(context.Background(), first, plan)
	_, errSecond := seed.Run(context.Background(), second, plan)
	plan.Seed = 43
	_, errOther := seed.Run(context.Background(), other, plan)

	// assert
	require.NoError(t, errFirst)
	require.NoError(t, errSecond)
	require.NoError(t, errOther)
	assert.Equal(t, first.books, second.books)
	assert.Equal(t, first.orders, second.orders)
	assert.NotEqual(t, first.orders, other.orders)
}

func Test_Run_ShouldRejectInvalidPlans(t *testing.T) {
	// act
	_, errNegative := seed.Run(context.Background(), &writerFake{}, seed.Plan{Books: -1})
	_, errNoBooks := seed.Run(context.Background(), &writerFake{}, seed.Plan{Customers: 1, Orders: 1})

	// assert
	assert.ErrorIs(t, errNegative, seed.ErrInvalidPlan)
	assert.ErrorIs(t, errNoBooks, seed.ErrInvalidPlan)
}

func Test_Run_ShouldStopAtFirstFailedWrite(t *testing.T) {
	// setup
	writer := &writerFake{failOrders: catalog.ErrWriteFailed}
	plan := seed.Plan{Books: 2, Customers: 1, Orders: 5, Seed: 1, From: helper.FixtureDay}

	// act
	result, err := seed.Run(context.Background(), writer, plan)

	// assert
	assert.ErrorIs(t, err, catalog.ErrWriteFailed)
	assert.Equal(t, seed.Result{Books: 2, Customers: 1}, result)
}
