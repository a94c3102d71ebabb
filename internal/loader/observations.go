package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"BourseLens/internal/model"

	"github.com/shopspring/decimal"
)

// ReadObservations parses historical FX rates. Two layouts are accepted:
//
//	long: date,currency,rate
//	wide: date,AEDUSD,SARUSD,...   (one column per currency, blank cells skipped)
//
// Rates are USD per unit of currency. The result is sorted by date, then currency.
func ReadObservations(r io.Reader) ([]model.Observation, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := indexHeader(header)
	dateCol, ok := cols["date"]
	if !ok {
		return nil, fmt.Errorf("fx history csv: missing column \"date\"")
	}

	_, hasCur := cols["currency"]
	_, hasRate := cols["rate"]
	long := hasCur && hasRate

	wide := map[int]string{}
	if !long {
		for i, h := range header {
			code := strings.ToUpper(strings.TrimSpace(h))
			if i == dateCol || !strings.HasSuffix(code, "USD") || len(code) != 6 {
				continue
			}
			wide[i] = code[:3]
		}
		if len(wide) == 0 {
			return nil, fmt.Errorf("fx history csv: expected currency,rate columns or XXXUSD columns")
		}
	}

	var out []model.Observation
	for row := 1; ; row++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}
		if blank(fields) {
			continue
		}
		if dateCol >= len(fields) {
			return nil, fmt.Errorf("row %d: missing date", row)
		}
		day, err := model.ParseDay(fields[dateCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		if long {
			cur, err := model.NormalizeCurrency(cell(fields, cols["currency"]))
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", row, err)
			}
			rate, err := positiveRate(cell(fields, cols["rate"]))
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", row, err)
			}
			if rate != nil {
				out = append(out, model.Observation{Date: day, Currency: cur, Rate: *rate})
			}
			continue
		}
		for i, cur := range wide {
			rate, err := positiveRate(cell(fields, i))
			if err != nil {
				return nil, fmt.Errorf("row %d, %sUSD: %w", row, cur, err)
			}
			if rate != nil {
				out = append(out, model.Observation{Date: day, Currency: cur, Rate: *rate})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Currency < out[j].Currency
	})
	return out, nil
}

func cell(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

func positiveRate(s string) (*decimal.Decimal, error) {
	d, err := optionalDecimal("rate", s)
	if err != nil || d == nil {
		return nil, err
	}
	if !d.IsPositive() {
		return nil, fmt.Errorf("rate %s must be positive", d)
	}
	return d, nil
}
