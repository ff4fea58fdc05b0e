// Package currency renders amounts for human-readable commit messages and
// compares monetary values without float-equality pitfalls.
package currency

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// code is the currency used for rendering descriptions. Localization of the
// budget itself happens outside this subsystem.
const code = money.USD

// Format renders a major-unit amount as a localized currency string,
// e.g. 1234.5 -> "$1,234.50".
func Format(amount float64) string {
	cur := money.GetCurrency(code)
	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), code).Display()
}

// Equal reports whether two amounts represent the same value.
func Equal(a, b float64) bool {
	return decimal.NewFromFloat(a).Equal(decimal.NewFromFloat(b))
}

// Sub returns a minus b computed in decimal space.
func Sub(a, b float64) float64 {
	diff, _ := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Float64()
	return diff
}
