package helper

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
)

// FixtureDay is a fixed issue date used across tests.
var FixtureDay = time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)

// GivenUniqueName returns a name that does not collide with rows of earlier test runs.
func GivenUniqueName(t testing.TB, prefix string) string {
	id, err := uuid.NewV7()
	assert.NoError(t, err, "error in arranging test data")

	return prefix + "-" + id.String()
}

// Amount parses a decimal literal, failing the test on malformed input.
func Amount(t testing.TB, literal string) decimal.Decimal {
	amount, err := decimal.NewFromString(literal)
	assert.NoError(t, err, "error in arranging test data")

	return amount
}

// BookRow builds a books row the way the pgx adapter hands it out.
func BookRow(isbn int64, title string, rentalCostPerDay string) catalog.Row {
	return catalog.Row{
		"isbn":                isbn,
		"title":               title,
		"author":              "Vlad Khononov",
		"genre":               "Software",
		"deposit_cost":        decimal.RequireFromString("20.00"),
		"rental_cost_per_day": decimal.RequireFromString(rentalCostPerDay),
	}
}

// CustomerRow builds a customers row.
func CustomerRow(customerID int64, fullName string) catalog.Row {
	return catalog.Row{
		"customer_id":  customerID,
		"address":      "Main Street 1",
		"full_name":    fullName,
		"phone_number": "+49 30 123456",
	}
}

// DiscountRow builds a discounts row, or a joined association row.
func DiscountRow(name string, amount string) catalog.Row {
	return catalog.Row{
		"discount_name":   name,
		"discount_amount": decimal.RequireFromString(amount),
	}
}

// PenaltyRow builds a penalties row, or a joined association row.
func PenaltyRow(name string, amount string) catalog.Row {
	return catalog.Row{
		"penalty_name":   name,
		"penalty_amount": decimal.RequireFromString(amount),
	}
}

// OrderRow builds an orders row. A zero returnDate is handed out as NULL.
func OrderRow(orderID, customerID, isbn int64, issueDate, returnDate time.Time) catalog.Row {
	row := catalog.Row{
		"order_id":    orderID,
		"customer_id": customerID,
		"isbn":        isbn,
		"issue_date":  issueDate,
		"return_date": nil,
	}

	if !returnDate.IsZero() {
		row["return_date"] = returnDate
	}

	return row
}

// UserRow builds a users row. A nil customerID is handed out as NULL.
func UserRow(userID int64, username, password string, role catalog.Role, customerID *int64) catalog.Row {
	row := catalog.Row{
		"user_id":     userID,
		"username":    username,
		"password":    password,
		"role":        string(role),
		"customer_id": nil,
	}

	if customerID != nil {
		row["customer_id"] = *customerID
	}

	return row
}
