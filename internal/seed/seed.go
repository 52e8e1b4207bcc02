// Package seed fills a catalogue with generated demo data through the regular mutation entry points.
//
// The data is derived from a seed value, so the same Plan always produces the same books,
// customers and orders. Every write refreshes the affected DataModels, which makes seeding
// quadratic in the number of rows; it is meant for demo sizes, not for load tests.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
)

const (
	maxIssueOffsetDays = 60
	maxRentalDays      = 14

	openOrderPercent   = 20
	discountPercent    = 30
	penaltyPercent     = 15
	centsPerCurrency   = 100
	minRentalCents     = 50
	rentalCentsRange   = 400
	depositCentsFactor = 10
)

// ErrInvalidPlan is returned for a plan with negative counts, or orders without books or customers.
var ErrInvalidPlan = errors.New("invalid seed plan")

// Writer is the part of the catalogue the seeder writes through.
type Writer interface {
	AddBook(ctx context.Context, book catalog.Book) (catalog.ISBN, error)
	AddCustomer(ctx context.Context, customer catalog.Customer) (int64, error)
	CreateOrder(ctx context.Context, customerID int64, isbn catalog.ISBN, issueDate, returnDate time.Time) (int64, error)
	AddDiscountToOrder(ctx context.Context, orderID int64, discount catalog.Discount) error
	AddPenaltyToOrder(ctx context.Context, orderID int64, penalty catalog.Penalty) error
}

// Plan describes how much data to generate.
type Plan struct {
	Books     int
	Customers int
	Orders    int
	Seed      uint64
	// From is the earliest issue date; orders are issued up to 60 days later.
	From time.Time
}

// Result counts what was written.
type Result struct {
	Books     int
	Customers int
	Orders    int
	Discounts int
	Penalties int
}

var (
	titles  = []string{"Dune", "Emma", "Ulysses", "Beloved", "Middlemarch", "Neuromancer", "Solaris", "Persuasion"}
	authors = []string{"Frank Herbert", "Jane Austen", "James Joyce", "Toni Morrison", "George Eliot", "William Gibson", "Stanisław Lem"}
	genres  = []string{"Science Fiction", "Novel", "Classic", "Drama"}
	streets = []string{"Main St", "High St", "Station Rd", "Church Ln"}
	names   = []string{"Jane Doe", "John Roe", "Ada Lovelace", "Alan Turing", "Grace Hopper", "Edsger Dijkstra"}

	discounts = []catalog.Discount{
		{Name: "loyalty", Amount: decimal.RequireFromString("1.00")},
		{Name: "student", Amount: decimal.RequireFromString("2.50")},
		{Name: "weekday", Amount: decimal.RequireFromString("0.50")},
	}
	penalties = []catalog.Penalty{
		{Name: "late", Amount: decimal.RequireFromString("5.00")},
		{Name: "damaged", Amount: decimal.RequireFromString("12.00")},
	}
)

// Validate checks the plan's counts.
func (p Plan) Validate() error {
	if p.Books < 0 || p.Customers < 0 || p.Orders < 0 {
		return fmt.Errorf("%w: counts must not be negative", ErrInvalidPlan)
	}

	if p.Orders > 0 && (p.Books == 0 || p.Customers == 0) {
		return fmt.Errorf("%w: orders need at least one book and one customer", ErrInvalidPlan)
	}

	return nil
}

// Run writes the plan's books, then customers, then orders with their discounts and penalties.
// It stops at the first failed write; the Result counts what was written before.
func Run(ctx context.Context, w Writer, plan Plan) (Result, error) {
	result := Result{}

	if err := plan.Validate(); err != nil {
		return result, err
	}

	rng := rand.New(rand.NewPCG(plan.Seed, plan.Seed)) //nolint:gosec

	isbns := make([]catalog.ISBN, 0, plan.Books)
	for i := range plan.Books {
		isbn, err := w.AddBook(ctx, generateBook(rng, i))
		if err != nil {
			return result, fmt.Errorf("failed to add book %d: %w", i+1, err)
		}

		isbns = append(isbns, isbn)
		result.Books++
	}

	customerIDs := make([]int64, 0, plan.Customers)
	for i := range plan.Customers {
		customerID, err := w.AddCustomer(ctx, generateCustomer(rng, i))
		if err != nil {
			return result, fmt.Errorf("failed to add customer %d: %w", i+1, err)
		}

		customerIDs = append(customerIDs, customerID)
		result.Customers++
	}

	for i := range plan.Orders {
		issueDate, returnDate := generateDates(rng, plan.From)

		orderID, err := w.CreateOrder(ctx, pick(rng, customerIDs), pick(rng, isbns), issueDate, returnDate)
		if err != nil {
			return result, fmt.Errorf("failed to create order %d: %w", i+1, err)
		}
		result.Orders++

		if rng.IntN(100) < discountPercent {
			if err := w.AddDiscountToOrder(ctx, orderID, pick(rng, discounts)); err != nil {
				return result, fmt.Errorf("failed to add discount to order %d: %w", orderID, err)
			}
			result.Discounts++
		}

		if rng.IntN(100) < penaltyPercent {
			if err := w.AddPenaltyToOrder(ctx, orderID, pick(rng, penalties)); err != nil {
				return result, fmt.Errorf("failed to add penalty to order %d: %w", orderID, err)
			}
			result.Penalties++
		}
	}

	return result, nil
}

func generateBook(rng *rand.Rand, i int) catalog.Book {
	rentalCents := int64(minRentalCents + rng.IntN(rentalCentsRange))

	return catalog.Book{
		Title:            fmt.Sprintf("%s (vol. %d)", pick(rng, titles), i+1),
		Author:           pick(rng, authors),
		Genre:            pick(rng, genres),
		DepositCost:      decimal.New(rentalCents*depositCentsFactor, 0).Div(decimal.New(centsPerCurrency, 0)),
		RentalCostPerDay: decimal.New(rentalCents, 0).Div(decimal.New(centsPerCurrency, 0)),
	}
}

func generateCustomer(rng *rand.Rand, i int) catalog.Customer {
	return catalog.Customer{
		Address:     fmt.Sprintf("%s %d", pick(rng, streets), rng.IntN(200)+1),
		FullName:    fmt.Sprintf("%s %d", pick(rng, names), i+1),
		PhoneNumber: fmt.Sprintf("+1-555-%04d", rng.IntN(10000)),
	}
}

// generateDates returns an issue date and, unless the order is still open, a later return date.
func generateDates(rng *rand.Rand, from time.Time) (time.Time, time.Time) {
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	issueDate := day.AddDate(0, 0, rng.IntN(maxIssueOffsetDays+1))

	if rng.IntN(100) < openOrderPercent {
		return issueDate, time.Time{}
	}

	return issueDate, issueDate.AddDate(0, 0, rng.IntN(maxRentalDays)+1)
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}
