package collector

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// StaticFetcher returns controllable fixed rates for development and testing.
type StaticFetcher struct {
	Label string
	Rates map[string]decimal.Decimal // keyed by source currency
	Err   error                      // returned for every call when set

	mu    sync.Mutex
	calls map[string]int
}

// NewStaticFetcher creates a StaticFetcher from float rates.
func NewStaticFetcher(label string, rates map[string]float64) *StaticFetcher {
	m := make(map[string]decimal.Decimal, len(rates))
	for k, v := range rates {
		m[k] = decimal.NewFromFloat(v)
	}
	return &StaticFetcher{Label: label, Rates: m}
}

func (s *StaticFetcher) Name() string {
	if s.Label == "" {
		return "static"
	}
	return s.Label
}

func (s *StaticFetcher) FetchRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	s.mu.Lock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[from]++
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	if s.Err != nil {
		return decimal.Zero, s.Err
	}
	rate, ok := s.Rates[from]
	if !ok {
		return decimal.Zero, fmt.Errorf("%s: no rate for %s/%s", s.Name(), from, to)
	}
	return rate, nil
}

// Calls returns how many times a currency was requested.
func (s *StaticFetcher) Calls(currency string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[currency]
}
