// Package display renders figures for people. Stored values keep full precision;
// rounding happens only here, at the export boundary.
package display

import (
	"strings"

	"BourseLens/internal/model"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var magnitudes = []struct {
	min    decimal.Decimal
	suffix string
}{
	{decimal.New(1, 3), "K"},
	{decimal.New(1, 6), "M"},
	{decimal.New(1, 9), "B"},
	{decimal.New(1, 12), "T"},
}

var thousand = decimal.New(1, 3)

// Symbol returns the display grapheme of a currency, falling back to "CODE ".
func Symbol(code string) string {
	if c := money.GetCurrency(code); c != nil && c.Grapheme != "" && c.Grapheme != code {
		return c.Grapheme
	}
	return code + " "
}

// Compact scales v to K/M/B/T and rounds to two decimals, e.g. $204.23B.
// The suffix is chosen after rounding, so 999999.999 is $1.00M rather than $1000.00K.
// Values that stay below one thousand are written in full with the currency's minor units.
func Compact(v decimal.Decimal, currency string) string {
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Abs()
	}
	scaled, suffix := v.Round(2), ""
	for _, m := range magnitudes {
		if scaled.LessThan(thousand) {
			break
		}
		scaled, suffix = v.Div(m.min).Round(2), m.suffix
	}
	if scaled.IsZero() {
		sign = ""
	}
	if suffix != "" {
		return sign + Symbol(currency) + scaled.StringFixed(2) + suffix
	}
	cur := money.GetCurrency(currency)
	if cur == nil {
		return sign + Symbol(currency) + scaled.StringFixed(2)
	}
	minor := v.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return sign + money.New(minor, cur.Code).Display()
}

// USD renders an amount in compact USD form, or N/A.
func USD(a model.Amount) string {
	if !a.Valid {
		return model.NotAvailable
	}
	return Compact(a.Value, "USD")
}

// Percent renders a signed percentage such as +5.23% or -2.10%. Anything that
// rounds to zero is +0.00%.
func Percent(a model.Amount) string {
	if !a.Valid {
		return model.NotAvailable
	}
	v := a.Value.Round(2)
	s := v.StringFixed(2)
	if !v.IsNegative() {
		s = "+" + s
	}
	return s + "%"
}

// Points renders a percentage-point spread.
func Points(d decimal.Decimal) string { return d.StringFixed(2) + " pp" }

// Rate renders an FX rate with six decimals.
func Rate(a model.Amount) string {
	if !a.Valid {
		return model.NotAvailable
	}
	return a.Value.StringFixed(6)
}

// Value renders an insight value according to its unit.
func Value(ins model.Insight) string {
	switch ins.Unit {
	case model.UnitPercent:
		return Percent(model.Some(ins.Value))
	case model.UnitPoints:
		return Points(ins.Value)
	case model.UnitUSD:
		return Compact(ins.Value, "USD")
	}
	return strings.TrimSpace(ins.Value.String() + " " + ins.Unit)
}
