package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

const millisecondsPerDay = int64(24 * time.Hour / time.Millisecond)

// DaysBetween returns the number of billable days between issue and return.
// Elapsed time is truncated to whole days and a rental is always billed for at least one day,
// which also covers same-day and inverted spans.
func DaysBetween(issuedAt, returnedAt time.Time) int64 {
	days := returnedAt.Sub(issuedAt).Milliseconds() / millisecondsPerDay

	return max(days, 1)
}

// RentalCost returns costPerDay × billable days, or zero if either date is absent (zero time).
func RentalCost(issuedAt, returnedAt time.Time, costPerDay decimal.Decimal) decimal.Decimal {
	if issuedAt.IsZero() || returnedAt.IsZero() {
		return decimal.Zero
	}

	return costPerDay.Mul(decimal.NewFromInt(DaysBetween(issuedAt, returnedAt)))
}

// Total combines the rental cost with discounts and penalties. The result is never negative:
// discounts cannot push it below zero, penalties are added uncapped.
func Total(rentalCost decimal.Decimal, discounts []Discount, penalties []Penalty) decimal.Decimal {
	total := rentalCost

	for _, d := range discounts {
		total = total.Sub(d.Amount)
	}

	for _, p := range penalties {
		total = total.Add(p.Amount)
	}

	return decimal.Max(total, decimal.Zero)
}
