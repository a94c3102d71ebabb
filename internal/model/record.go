package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Origin tells where a record's raw figures came from.
type Origin string

const (
	OriginManual     Origin = "manual"
	OriginCSV        Origin = "csv"
	OriginExtraction Origin = "extraction"
)

// ExchangeRecord holds one exchange's raw, local-currency inputs.
// Records are never mutated after construction; conversion derives a new value.
type ExchangeRecord struct {
	Region         string           `json:"region" validate:"required"`
	Exchange       string           `json:"exchange" validate:"required"`
	IndexName      string           `json:"index_name" validate:"required"`
	LocalCurrency  string           `json:"local_currency" validate:"required,len=3,uppercase"`
	YTDPercent     *decimal.Decimal `json:"ytd_percent"`
	MarketCapLocal *decimal.Decimal `json:"market_cap_local"`
	ADTVLocal      *decimal.Decimal `json:"adtv_local"`
	Origin         Origin           `json:"source,omitempty" validate:"omitempty,oneof=manual csv extraction"`
	SourceURL      string           `json:"source_url,omitempty" validate:"omitempty,url"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError rejects a record before it enters the pipeline.
type ValidationError struct {
	Exchange  string
	IndexName string
	Row       int // 1-based data row for file input, 0 otherwise
	Reason    string
}

func (e *ValidationError) Error() string {
	id := e.Exchange
	if id == "" {
		id = "<unnamed>"
	}
	if e.IndexName != "" {
		id += "/" + e.IndexName
	}
	if e.Row > 0 {
		return fmt.Sprintf("row %d: record %s: %s", e.Row, id, e.Reason)
	}
	return fmt.Sprintf("record %s: %s", id, e.Reason)
}

// NormalizeCurrency upper-cases a currency code and checks it against the ISO 4217 table.
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", fmt.Errorf("currency %q: expected a 3-letter code", code)
	}
	if money.GetCurrency(code) == nil {
		return "", fmt.Errorf("currency %q: unknown ISO 4217 code", code)
	}
	return code, nil
}

// ValidateRecord checks the invariants of an ExchangeRecord.
func ValidateRecord(r ExchangeRecord) error {
	fail := func(reason string) error {
		return &ValidationError{Exchange: r.Exchange, IndexName: r.IndexName, Reason: reason}
	}
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return fail(strings.Join(fields, "; "))
		}
		return fail(err.Error())
	}
	if _, err := NormalizeCurrency(r.LocalCurrency); err != nil {
		return fail(err.Error())
	}
	if r.YTDPercent == nil && r.MarketCapLocal == nil && r.ADTVLocal == nil {
		return fail("no usable inputs (ytd_percent, market_cap_local and adtv_local are all absent)")
	}
	if r.MarketCapLocal != nil && r.MarketCapLocal.IsNegative() {
		return fail("market_cap_local must not be negative")
	}
	if r.ADTVLocal != nil && r.ADTVLocal.IsNegative() {
		return fail("adtv_local must not be negative")
	}
	return nil
}
