package fx

import (
	"maps"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// PegTable maps pegged currencies to their fixed USD value per unit.
type PegTable map[string]decimal.Decimal

// DefaultPegs returns the built-in Gulf pegs:
// AED at 3.6725 per USD, SAR at 3.75, QAR at 3.64.
func DefaultPegs() PegTable {
	return PegTable{
		"AED": decimal.RequireFromString("0.2723"),
		"SAR": decimal.RequireFromString("0.2666"),
		"QAR": decimal.RequireFromString("0.2747"),
	}
}

// With returns a copy of the table with extra registered pegs. Non-positive entries are ignored.
func (p PegTable) With(extra map[string]float64) PegTable {
	out := maps.Clone(p)
	if out == nil {
		out = PegTable{}
	}
	for code, rate := range extra {
		d := decimal.NewFromFloat(rate)
		if !d.IsPositive() {
			continue
		}
		out[strings.ToUpper(code)] = d
	}
	return out
}

// Lookup returns the pegged rate for a currency.
func (p PegTable) Lookup(currency string) (decimal.Decimal, bool) {
	rate, ok := p[currency]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, false
	}
	return rate, true
}

// Currencies returns the pegged codes in sorted order.
func (p PegTable) Currencies() []string {
	return slices.Sorted(maps.Keys(p))
}
