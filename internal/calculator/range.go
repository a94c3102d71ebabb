package calculator

import (
	"BourseLens/internal/model"

	"github.com/shopspring/decimal"
)

// RangeInWindow scans the rates observed for currency within window and returns the low and high.
func RangeInWindow(obs []model.Observation, currency string, window model.DateRange) (low, high decimal.Decimal, err error) {
	rates := extractRates(obs, currency, window)
	if len(rates) == 0 {
		return decimal.Zero, decimal.Zero, ErrNoObservations
	}
	low, high = rates[0], rates[0]
	for _, r := range rates[1:] {
		if r.GreaterThan(high) {
			high = r
		}
		if r.LessThan(low) {
			low = r
		}
	}
	return low, high, nil
}
