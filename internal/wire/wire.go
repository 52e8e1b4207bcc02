// Package wire defines the JSON representation of catalogue entities shared by the HTTP API
// and the snapshot sinks. Amounts are fixed two-decimal strings, dates are calendar dates,
// absent dates are null and passwords are never encoded.
package wire

import (
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Marshal encodes v with the shared JSON configuration.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes data with the shared JSON configuration.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Book is the wire form of catalog.Book.
type Book struct {
	ISBN             int64  `json:"isbn"`
	Title            string `json:"title"`
	Author           string `json:"author"`
	Genre            string `json:"genre"`
	DepositCost      string `json:"deposit_cost"`
	RentalCostPerDay string `json:"rental_cost_per_day"`
}

// Customer is the wire form of catalog.Customer.
type Customer struct {
	CustomerID  int64  `json:"customer_id"`
	Address     string `json:"address"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
}

// NamedAmount is the wire form of catalog.Discount and catalog.Penalty.
type NamedAmount struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// Order is the wire form of an assembled catalog.Order.
type Order struct {
	OrderID          int64         `json:"order_id"`
	CustomerID       int64         `json:"customer_id"`
	ISBN             int64         `json:"isbn"`
	IssueDate        *string       `json:"issue_date"`
	ReturnDate       *string       `json:"return_date"`
	Book             *Book         `json:"book"`
	Discounts        []NamedAmount `json:"discounts"`
	Penalties        []NamedAmount `json:"penalties"`
	DiscountsSummary string        `json:"discounts_summary"`
	PenaltiesSummary string        `json:"penalties_summary"`
	RentalCost       string        `json:"rental_cost"`
	DepositAmount    string        `json:"deposit_amount"`
	TotalAmount      string        `json:"total_amount"`
}

// User is the wire form of catalog.User, without the password.
type User struct {
	UserID     int64  `json:"user_id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	CustomerID *int64 `json:"customer_id"`
}

// Amount renders a currency amount.
func Amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Date renders a calendar date; the zero time is absent.
func Date(t time.Time) *string {
	if t.IsZero() {
		return nil
	}

	s := t.Format(time.DateOnly)

	return &s
}

// FromBook converts a book.
func FromBook(b catalog.Book) Book {
	return Book{
		ISBN:             b.ISBN,
		Title:            b.Title,
		Author:           b.Author,
		Genre:            b.Genre,
		DepositCost:      Amount(b.DepositCost),
		RentalCostPerDay: Amount(b.RentalCostPerDay),
	}
}

// FromCustomer converts a customer.
func FromCustomer(c catalog.Customer) Customer {
	return Customer{
		CustomerID:  c.CustomerID,
		Address:     c.Address,
		FullName:    c.FullName,
		PhoneNumber: c.PhoneNumber,
	}
}

// FromDiscount converts a discount.
func FromDiscount(d catalog.Discount) NamedAmount {
	return NamedAmount{Name: d.Name, Amount: Amount(d.Amount)}
}

// FromPenalty converts a penalty.
func FromPenalty(p catalog.Penalty) NamedAmount {
	return NamedAmount{Name: p.Name, Amount: Amount(p.Amount)}
}

// FromOrder converts an order including its derived fields.
func FromOrder(o catalog.Order) Order {
	order := Order{
		OrderID:          o.OrderID,
		CustomerID:       o.CustomerID,
		ISBN:             o.ISBN,
		IssueDate:        Date(o.IssueDate),
		ReturnDate:       Date(o.ReturnDate),
		Discounts:        make([]NamedAmount, 0, len(o.Discounts)),
		Penalties:        make([]NamedAmount, 0, len(o.Penalties)),
		DiscountsSummary: o.DiscountsSummary(),
		PenaltiesSummary: o.PenaltiesSummary(),
		RentalCost:       Amount(o.RentalCost),
		DepositAmount:    Amount(o.DepositAmount()),
		TotalAmount:      Amount(o.TotalAmount),
	}

	if o.Book != nil {
		book := FromBook(*o.Book)
		order.Book = &book
	}

	for _, d := range o.Discounts {
		order.Discounts = append(order.Discounts, FromDiscount(d))
	}

	for _, p := range o.Penalties {
		order.Penalties = append(order.Penalties, FromPenalty(p))
	}

	return order
}

// FromUser converts a user, dropping the password.
func FromUser(u catalog.User) User {
	return User{
		UserID:     u.UserID,
		Username:   u.Username,
		Role:       string(u.Role),
		CustomerID: u.CustomerID,
	}
}

// FromEntities converts a slice of any entity kind into its wire form.
func FromEntities[T catalog.Entity](items []T) any {
	switch typed := any(items).(type) {
	case []catalog.Book:
		return convert(typed, FromBook)
	case []catalog.Customer:
		return convert(typed, FromCustomer)
	case []catalog.Discount:
		return convert(typed, FromDiscount)
	case []catalog.Penalty:
		return convert(typed, FromPenalty)
	case []catalog.Order:
		return convert(typed, FromOrder)
	case []catalog.User:
		return convert(typed, FromUser)
	default:
		return []any{}
	}
}

func convert[In, Out any](items []In, fn func(In) Out) []Out {
	out := make([]Out, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}

	return out
}
