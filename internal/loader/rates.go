package loader

import (
	"fmt"
	"io"

	"BourseLens/internal/model"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ReadManualRates parses a YAML mapping of currency code to USD per unit, e.g.
//
//	AED: 0.2723
//	KWD: 3.25
func ReadManualRates(r io.Reader) (map[string]decimal.Decimal, error) {
	raw := map[string]string{}
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse manual rates: %w", err)
	}
	return ManualRates(raw)
}

// ManualRates validates a code -> rate map given as strings.
func ManualRates(raw map[string]string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(raw))
	for code, v := range raw {
		cur, err := model.NormalizeCurrency(code)
		if err != nil {
			return nil, err
		}
		rate, err := positiveRate(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cur, err)
		}
		if rate == nil {
			continue
		}
		out[cur] = *rate
	}
	return out, nil
}
