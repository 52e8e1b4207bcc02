package wire_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
	"github.com/AntonStoeckl/library-rental-catalog-go/internal/wire"
)

func Test_FromOrder_ShouldCarryDerivedFields(t *testing.T) {
	// setup
	issued := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	order := catalog.BuildOrder(7, 11, 1, issued, issued.AddDate(0, 0, 3))
	order.SetBook(&catalog.Book{ISBN: 1, Title: "Learning Domain-Driven Design",
		DepositCost: decimal.RequireFromString("20"), RentalCostPerDay: decimal.RequireFromString("2")})
	order.AddDiscount(catalog.Discount{Name: "loyalty", Amount: decimal.RequireFromString("1")})
	order.AddPenalty(catalog.Penalty{Name: "late", Amount: decimal.RequireFromString("10")})

	// act
	encoded := wire.FromOrder(order)

	// assert
	assert.Equal(t, "2024-03-04", *encoded.IssueDate)
	assert.Equal(t, "2024-03-07", *encoded.ReturnDate)
	assert.Equal(t, "6.00", encoded.RentalCost)
	assert.Equal(t, "15.00", encoded.TotalAmount)
	assert.Equal(t, "20.00", encoded.DepositAmount)
	assert.Equal(t, "loyalty (-1.00)", encoded.DiscountsSummary)
	assert.Equal(t, "late (+10.00)", encoded.PenaltiesSummary)
	require.NotNil(t, encoded.Book)
	assert.Equal(t, "2.00", encoded.Book.RentalCostPerDay)
}

func Test_FromOrder_ShouldEncodeAbsentValuesAsNull(t *testing.T) {
	// setup
	order := catalog.BuildOrder(7, 11, 1, time.Time{}, time.Time{})

	// act
	data, err := wire.Marshal(wire.FromOrder(order))

	// assert
	require.NoError(t, err)
	assert.Contains(t, string(data), `"issue_date":null`)
	assert.Contains(t, string(data), `"book":null`)
	assert.Contains(t, string(data), `"discounts":[]`)
	assert.Contains(t, string(data), `"discounts_summary":"None"`)
}

func Test_FromUser_ShouldNeverEncodeThePassword(t *testing.T) {
	// act
	data, err := wire.Marshal(wire.FromUser(catalog.User{UserID: 1, Username: "admin", Password: "hunter2", Role: catalog.RoleAdmin}))

	// assert
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2")
	assert.Contains(t, string(data), `"role":"ADMIN"`)
}

func Test_FromEntities_ShouldConvertEveryKind(t *testing.T) {
	assert.Equal(t, []wire.Book{{ISBN: 3, DepositCost: "0.00", RentalCostPerDay: "0.00"}}, wire.FromEntities([]catalog.Book{{ISBN: 3}}))
	assert.Equal(t, []wire.Customer{{CustomerID: 2}}, wire.FromEntities([]catalog.Customer{{CustomerID: 2}}))
	assert.Equal(t, []wire.NamedAmount{{Name: "late", Amount: "5.50"}},
		wire.FromEntities([]catalog.Penalty{{Name: "late", Amount: decimal.RequireFromString("5.5")}}))
	assert.Equal(t, []wire.NamedAmount{}, wire.FromEntities([]catalog.Discount{}))
}

func Test_Marshal_ShouldUseSnakeCaseKeys(t *testing.T) {
	// act
	data, err := wire.Marshal(wire.FromCustomer(catalog.Customer{CustomerID: 5, FullName: "Ada Lovelace", PhoneNumber: "555"}))

	// assert
	require.NoError(t, err)
	assert.JSONEq(t, `{"customer_id":5,"address":"","full_name":"Ada Lovelace","phone_number":"555"}`, string(data))
}
