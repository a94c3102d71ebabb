// Package loader reads the file-based input contracts: exchange records and
// FX observations as CSV, manual rate maps as YAML.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"BourseLens/internal/model"

	"github.com/shopspring/decimal"
)

// RecordColumns is the CSV header of the record input contract.
var RecordColumns = []string{"region", "exchange", "index_name", "local_currency", "ytd_percent", "market_cap_local", "adtv_local"}

// ReadRecords parses exchange records from CSV. Columns are matched by header name in
// any order; blank numeric cells are absent values. Rows that fail validation are
// skipped and reported together in the returned error, alongside the valid records.
func ReadRecords(r io.Reader) ([]model.ExchangeRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := indexHeader(header)
	for _, required := range RecordColumns[:4] {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("records csv: missing column %q", required)
		}
	}

	var (
		out  []model.ExchangeRecord
		errs []error
	)
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
		rec, err := parseRecord(cols, fields)
		if err == nil {
			err = model.ValidateRecord(rec)
		}
		if err != nil {
			var verr *model.ValidationError
			if errors.As(err, &verr) {
				verr.Row = row
			} else {
				err = &model.ValidationError{Exchange: rec.Exchange, IndexName: rec.IndexName, Row: row, Reason: err.Error()}
			}
			errs = append(errs, err)
			continue
		}
		out = append(out, rec)
	}
	return out, errors.Join(errs...)
}

func parseRecord(cols map[string]int, fields []string) (model.ExchangeRecord, error) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}
	rec := model.ExchangeRecord{
		Region:        get("region"),
		Exchange:      get("exchange"),
		IndexName:     get("index_name"),
		LocalCurrency: strings.ToUpper(get("local_currency")),
		Origin:        model.OriginCSV,
		SourceURL:     get("source_url"),
	}
	if origin := get("source"); origin != "" {
		rec.Origin = model.Origin(strings.ToLower(origin))
	}
	var err error
	if rec.YTDPercent, err = optionalDecimal("ytd_percent", get("ytd_percent")); err != nil {
		return rec, err
	}
	if rec.MarketCapLocal, err = optionalDecimal("market_cap_local", get("market_cap_local")); err != nil {
		return rec, err
	}
	if rec.ADTVLocal, err = optionalDecimal("adtv_local", get("adtv_local")); err != nil {
		return rec, err
	}
	return rec, nil
}

// optionalDecimal parses a numeric cell. Blank, "N/A" and "-" mean absent;
// thousands separators and a trailing % are tolerated.
func optionalDecimal(name, s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	switch strings.ToUpper(s) {
	case "", model.NotAvailable, "NA", "-":
		return nil, nil
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not a number", name, s)
	}
	return &d, nil
}

func indexHeader(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		key = strings.ReplaceAll(key, " ", "_")
		cols[key] = i
	}
	return cols
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
