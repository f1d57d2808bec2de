package budget

import "github.com/shopspring/decimal"

// Epsilon is the currency rounding tolerance used everywhere money is
// compared. Two amounts within half a cent of each other are the same amount.
var Epsilon = decimal.New(5, -3) // 0.005

// ApproxEqual reports whether a and b are equal within Epsilon.
func ApproxEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Epsilon)
}

// AtLeast reports whether a >= b - Epsilon.
func AtLeast(a, b decimal.Decimal) bool {
	return a.GreaterThanOrEqual(b.Sub(Epsilon))
}

// Exceeds reports whether a > b + Epsilon.
func Exceeds(a, b decimal.Decimal) bool {
	return a.GreaterThan(b.Add(Epsilon))
}

// IsZero reports whether d is zero within Epsilon.
func IsZero(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(Epsilon)
}
