package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ISBN is the unique key of a Book.
type ISBN = int64

// Book is a rentable title. Books are replaced wholesale on refresh and shared by pointer
// between the SideCache and the orders referencing them, so they must not be mutated.
type Book struct {
	ISBN             ISBN
	Title            string
	Author           string
	Genre            string
	DepositCost      decimal.Decimal
	RentalCostPerDay decimal.Decimal
}

// String renders the book the way selection lists show it.
func (b Book) String() string {
	return fmt.Sprintf("%s (%s)", b.Title, b.Author)
}

// Customer is a person who rents books.
type Customer struct {
	CustomerID  int64
	Address     string
	FullName    string
	PhoneNumber string
}

// String renders the customer the way selection lists show it.
func (c Customer) String() string {
	return fmt.Sprintf("%s (%s)", c.FullName, c.PhoneNumber)
}

// Discount is a named catalogue entry that lowers an order total.
type Discount struct {
	Name   string
	Amount decimal.Decimal
}

// Validate checks the name and the non-negative amount.
func (d Discount) Validate() error {
	return validateNamedAmount(d.Name, d.Amount)
}

// String renders the discount with its sign.
func (d Discount) String() string {
	return fmt.Sprintf("%s -%s", d.Name, d.Amount.StringFixed(2))
}

// Penalty is a named catalogue entry that raises an order total.
type Penalty struct {
	Name   string
	Amount decimal.Decimal
}

// Validate checks the name and the non-negative amount.
func (p Penalty) Validate() error {
	return validateNamedAmount(p.Name, p.Amount)
}

// String renders the penalty with its sign.
func (p Penalty) String() string {
	return fmt.Sprintf("%s +%s", p.Name, p.Amount.StringFixed(2))
}

func validateNamedAmount(name string, amount decimal.Decimal) error {
	if name == "" {
		return ErrEmptyName
	}

	if amount.IsNegative() {
		return ErrNegativeAmount
	}

	return nil
}

// Role is the closed set of user roles.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// ParseRole converts a stored role into a Role, rejecting anything outside the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleUser:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrMalformedColumn, s)
	}
}

// User is a login account. CustomerID is nil for administrators without a customer record.
type User struct {
	UserID     int64
	Username   string
	Password   string
	Role       Role
	CustomerID *int64
}

// IsAdmin reports whether the user holds the administrator role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
