package model

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// NotAvailable is the literal written wherever a figure cannot be produced.
const NotAvailable = "N/A"

// Amount is a decimal figure that may be unavailable. The zero value is N/A.
type Amount struct {
	Value decimal.Decimal
	Valid bool
}

// Some wraps an available value.
func Some(v decimal.Decimal) Amount { return Amount{Value: v, Valid: true} }

// NA returns an unavailable amount.
func NA() Amount { return Amount{} }

// Optional turns an absent input into N/A.
func Optional(v *decimal.Decimal) Amount {
	if v == nil {
		return NA()
	}
	return Some(*v)
}

func (a Amount) String() string {
	if !a.Valid {
		return NotAvailable
	}
	return a.Value.String()
}

// Equal compares availability and value.
func (a Amount) Equal(b Amount) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Value.Equal(b.Value)
}

// MarshalJSON writes a bare JSON number, or the string "N/A".
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte(`"` + NotAvailable + `"`), nil
	}
	return []byte(a.Value.String()), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte(`"`+NotAvailable+`"`)) || bytes.Equal(data, []byte("null")) {
		*a = NA()
		return nil
	}
	v, err := decimal.NewFromString(string(bytes.Trim(data, `"`)))
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	*a = Some(v)
	return nil
}
