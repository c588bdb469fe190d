package types

import (
	"github.com/shopspring/decimal"
)

// Money is a decimal amount stored and rendered with two decimal places.
// It scans from and writes to decimal columns like decimal.Decimal.
type Money struct {
	decimal.Decimal
}

// NewMoney rounds d to cents
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d.Round(2)}
}

// MarshalJSON renders a quoted fixed-scale amount, "20.00" rather than "20"
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(2) + `"`), nil
}
