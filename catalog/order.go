package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const noneSummary = "None"

// Order is a rental of one book by one customer.
//
// RentalCost and TotalAmount are derived. They are recomputed eagerly by SetBook, AddDiscount,
// AddPenalty and Recalculate, and must not be assigned directly.
// Book is shared with the SideCache and may be nil when the ISBN could not be resolved.
// A zero IssueDate or ReturnDate means the date is absent.
type Order struct {
	OrderID     int64
	CustomerID  int64
	ISBN        ISBN
	IssueDate   time.Time
	ReturnDate  time.Time
	Book        *Book
	Discounts   []Discount
	Penalties   []Penalty
	RentalCost  decimal.Decimal
	TotalAmount decimal.Decimal
}

// BuildOrder creates an Order with its base fields and zeroed derived fields.
func BuildOrder(orderID, customerID int64, isbn ISBN, issueDate, returnDate time.Time) Order {
	return Order{
		OrderID:     orderID,
		CustomerID:  customerID,
		ISBN:        isbn,
		IssueDate:   issueDate,
		ReturnDate:  returnDate,
		Discounts:   make([]Discount, 0),
		Penalties:   make([]Penalty, 0),
		RentalCost:  decimal.Zero,
		TotalAmount: decimal.Zero,
	}
}

// SetBook attaches the book and recomputes rental cost and total.
func (o *Order) SetBook(book *Book) {
	o.Book = book
	o.recalculateRentalCost()
	o.recalculateTotal()
}

// AddDiscount appends a discount and recomputes the total.
func (o *Order) AddDiscount(d Discount) {
	o.Discounts = append(o.Discounts, d)
	o.recalculateTotal()
}

// AddPenalty appends a penalty and recomputes the total.
func (o *Order) AddPenalty(p Penalty) {
	o.Penalties = append(o.Penalties, p)
	o.recalculateTotal()
}

// Recalculate recomputes rental cost and total from the current book, dates and associations.
func (o *Order) Recalculate() {
	o.recalculateRentalCost()
	o.recalculateTotal()
}

func (o *Order) recalculateRentalCost() {
	if o.Book == nil {
		o.RentalCost = decimal.Zero
		return
	}

	o.RentalCost = RentalCost(o.IssueDate, o.ReturnDate, o.Book.RentalCostPerDay)
}

func (o *Order) recalculateTotal() {
	o.TotalAmount = Total(o.RentalCost, o.Discounts, o.Penalties)
}

// DepositAmount returns the deposit of the attached book, or zero without a book.
func (o Order) DepositAmount() decimal.Decimal {
	if o.Book == nil {
		return decimal.Zero
	}

	return o.Book.DepositCost
}

// DiscountsSummary renders the applied discounts as "name (-amount), ..." or "None".
func (o Order) DiscountsSummary() string {
	if len(o.Discounts) == 0 {
		return noneSummary
	}

	parts := make([]string, 0, len(o.Discounts))
	for _, d := range o.Discounts {
		parts = append(parts, d.Name+" (-"+d.Amount.StringFixed(2)+")")
	}

	return strings.Join(parts, ", ")
}

// PenaltiesSummary renders the applied penalties as "name (+amount), ..." or "None".
func (o Order) PenaltiesSummary() string {
	if len(o.Penalties) == 0 {
		return noneSummary
	}

	parts := make([]string, 0, len(o.Penalties))
	for _, p := range o.Penalties {
		parts = append(parts, p.Name+" (+"+p.Amount.StringFixed(2)+")")
	}

	return strings.Join(parts, ", ")
}
