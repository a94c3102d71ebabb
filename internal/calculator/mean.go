package calculator

import (
	"errors"

	"BourseLens/internal/model"

	"github.com/shopspring/decimal"
)

// ErrNoObservations is returned when nothing falls inside the requested window.
var ErrNoObservations = errors.New("no observations in range")

// CalculateMean computes the arithmetic mean of values.
func CalculateMean(values []decimal.Decimal) (decimal.Decimal, error) {
	if len(values) == 0 {
		return decimal.Zero, errors.New("not enough data for mean calculation")
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(len(values)))), nil
}

// MeanInRange averages the rates observed for currency within window (bounds inclusive)
// and returns how many samples contributed.
func MeanInRange(obs []model.Observation, currency string, window model.DateRange) (decimal.Decimal, int, error) {
	rates := extractRates(obs, currency, window)
	if len(rates) == 0 {
		return decimal.Zero, 0, ErrNoObservations
	}
	mean, err := CalculateMean(rates)
	if err != nil {
		return decimal.Zero, 0, err
	}
	return mean, len(rates), nil
}

// CountFor returns how many observations exist for currency regardless of date.
func CountFor(obs []model.Observation, currency string) int {
	n := 0
	for _, o := range obs {
		if o.Currency == currency {
			n++
		}
	}
	return n
}

func extractRates(obs []model.Observation, currency string, window model.DateRange) []decimal.Decimal {
	var rates []decimal.Decimal
	for _, o := range obs {
		if o.Currency != currency || !window.Contains(o.Date) {
			continue
		}
		rates = append(rates, o.Rate)
	}
	return rates
}
