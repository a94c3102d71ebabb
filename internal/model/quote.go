package model

import (
	"fmt"
	"strings"
	"time"
)

// Source is the provenance of an FX rate.
type Source string

const (
	SourceStaticPeg         Source = "STATIC_PEG"
	SourceManual            Source = "MANUAL"
	SourceLivePrimary       Source = "LIVE_PRIMARY"
	SourceLiveSecondary     Source = "LIVE_SECONDARY"
	SourceHistoricalAverage Source = "HISTORICAL_AVERAGE"
	SourceUnavailable       Source = "UNAVAILABLE"
)

// Fixed reports whether the rate is set by policy or by the user rather than observed.
func (s Source) Fixed() bool { return s == SourceStaticPeg || s == SourceManual }

// Mode selects how rates are resolved for a whole report.
type Mode int

const (
	ModeLive Mode = iota + 1
	ModeManual
	ModeAverage
)

func (m Mode) String() string {
	switch m {
	case ModeLive:
		return "LIVE"
	case ModeManual:
		return "MANUAL"
	case ModeAverage:
		return "AVERAGE"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// ParseMode accepts LIVE, MANUAL or AVERAGE in any case; "live_spot" is an alias of LIVE.
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LIVE", "LIVE_SPOT", "SPOT":
		return ModeLive, nil
	case "MANUAL":
		return ModeManual, nil
	case "AVERAGE", "AVG":
		return ModeAverage, nil
	}
	return 0, fmt.Errorf("unknown fx mode %q (want live, manual or average)", s)
}

// FxQuote is the rate applied to every record sharing one currency within a report.
type FxQuote struct {
	Currency    string     `json:"currency"`
	RateToUSD   Amount     `json:"rate_to_usd"` // USD per 1 unit of Currency
	Source      Source     `json:"source"`
	Provider    string     `json:"provider,omitempty"`
	AsOf        time.Time  `json:"as_of"`
	Window      *DateRange `json:"window,omitempty"`
	SampleCount int        `json:"sample_count,omitempty"`
	Note        string     `json:"note,omitempty"`
}

// Available reports whether the quote carries a usable, strictly positive rate.
func (q FxQuote) Available() bool {
	return q.Source != SourceUnavailable && q.RateToUSD.Valid && q.RateToUSD.Value.IsPositive()
}

// Unavailable builds the terminal quote for a currency nothing could price.
func Unavailable(currency string, asOf time.Time, note string) FxQuote {
	return FxQuote{Currency: currency, Source: SourceUnavailable, AsOf: asOf, Note: note}
}
