package money

import (
	"github.com/shopspring/decimal"
)

// MinorUnitPlaces is the number of decimal places kept for any amount that
// crosses a monetary boundary (persisted, summed across employees, or compared).
const MinorUnitPlaces = 2

// Round applies the engine-wide rounding policy: half-up at the currency's
// minor unit. Every arithmetic result that leaves a computation passes through
// here exactly once.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MinorUnitPlaces)
}

// Sum adds a series of amounts without intermediate rounding.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Min returns the smaller of two amounts.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// FromFloat converts a float64 to a decimal amount.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// FromString parses a decimal amount from its string form.
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// IsNegative reports whether the amount is below zero.
func IsNegative(d decimal.Decimal) bool {
	return d.LessThan(decimal.Zero)
}
