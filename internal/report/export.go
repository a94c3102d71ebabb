package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"BourseLens/internal/display"
	"BourseLens/internal/insight"
	"BourseLens/internal/model"
)

type metadataJSON struct {
	ID             string           `json:"id"`
	GeneratedAt    time.Time        `json:"generated_at"`
	FXMode         model.Mode       `json:"fx_mode"`
	OutputCurrency string           `json:"output_currency"`
	DateRange      *model.DateRange `json:"date_range,omitempty"`
}

type exchangeJSON struct {
	Region              string       `json:"region"`
	Exchange            string       `json:"exchange"`
	IndexName           string       `json:"index_name"`
	LocalCurrency       string       `json:"local_currency"`
	YTDPercent          model.Amount `json:"ytd_percent"`
	YTDPercentDisplay   string       `json:"ytd_percent_display"`
	MarketCapLocal      model.Amount `json:"market_cap_local"`
	MarketCapUSD        model.Amount `json:"market_cap_usd"`
	MarketCapUSDDisplay string       `json:"market_cap_usd_display"`
	ADTVLocal           model.Amount `json:"adtv_local"`
	ADTVUSD             model.Amount `json:"adtv_usd"`
	ADTVUSDDisplay      string       `json:"adtv_usd_display"`
	FXRateUsed          model.Amount `json:"fx_rate_used"`
	FXSource            model.Source `json:"fx_source"`
	Source              model.Origin `json:"source,omitempty"`
	SourceURL           string       `json:"source_url,omitempty"`
	ConversionNotes     []string     `json:"conversion_notes"`
}

type insightJSON struct {
	model.Insight
	Value model.Amount `json:"value"`
	Text  string       `json:"text"`
}

type rankedJSON struct {
	Exchange string       `json:"exchange"`
	Value    model.Amount `json:"value"`
}

type rankingsJSON struct {
	YTDBest          []rankedJSON `json:"ytd_best"`
	YTDWorst         []rankedJSON `json:"ytd_worst"`
	MarketCapLargest []rankedJSON `json:"market_cap_largest"`
	ADTVHighest      []rankedJSON `json:"adtv_highest"`
}

func rankedRows(in []insight.Ranked) []rankedJSON {
	out := make([]rankedJSON, len(in))
	for i, r := range in {
		out[i] = rankedJSON{Exchange: r.Exchange, Value: model.Some(r.Value)}
	}
	return out
}

type reportJSON struct {
	Metadata   metadataJSON    `json:"metadata"`
	Summary    string          `json:"summary"`
	FXRates    []model.FxQuote `json:"fx_rates"`
	Exchanges  []exchangeJSON  `json:"exchanges"`
	Insights   []insightJSON   `json:"insights"`
	Rankings   rankingsJSON    `json:"rankings"`
	AuditTrail []AuditEntry    `json:"audit_trail"`
}

func exchangeRow(c model.ConvertedRecord) exchangeJSON {
	notes := c.Notes
	if notes == nil {
		notes = []string{}
	}
	return exchangeJSON{
		Region:              c.Region,
		Exchange:            c.Exchange,
		IndexName:           c.IndexName,
		LocalCurrency:       c.LocalCurrency,
		YTDPercent:          c.YTD(),
		YTDPercentDisplay:   display.Percent(c.YTD()),
		MarketCapLocal:      model.Optional(c.MarketCapLocal),
		MarketCapUSD:        c.MarketCapUSD,
		MarketCapUSDDisplay: display.USD(c.MarketCapUSD),
		ADTVLocal:           model.Optional(c.ADTVLocal),
		ADTVUSD:             c.ADTVUSD,
		ADTVUSDDisplay:      display.USD(c.ADTVUSD),
		FXRateUsed:          c.Quote.RateToUSD,
		FXSource:            c.Quote.Source,
		Source:              c.Origin,
		SourceURL:           c.SourceURL,
		ConversionNotes:     notes,
	}
}

// MarshalJSON writes the nested export with metadata. N/A figures stay the literal "N/A".
func (r *Report) MarshalJSON() ([]byte, error) {
	out := reportJSON{
		Metadata: metadataJSON{
			ID:             r.ID,
			GeneratedAt:    r.GeneratedAt,
			FXMode:         r.Mode,
			OutputCurrency: OutputCurrency,
			DateRange:      r.Window,
		},
		Summary:   r.Summary,
		FXRates:   r.Quotes,
		Exchanges: make([]exchangeJSON, 0, len(r.Records)),
		Insights:  make([]insightJSON, 0, len(r.Insights)),
		Rankings: rankingsJSON{
			YTDBest:          rankedRows(r.Rankings.YTDBest),
			YTDWorst:         rankedRows(r.Rankings.YTDWorst),
			MarketCapLargest: rankedRows(r.Rankings.MarketCapLargest),
			ADTVHighest:      rankedRows(r.Rankings.ADTVHighest),
		},
		AuditTrail: r.Audit,
	}
	if out.FXRates == nil {
		out.FXRates = []model.FxQuote{}
	}
	if out.AuditTrail == nil {
		out.AuditTrail = []AuditEntry{}
	}
	for _, c := range r.Records {
		out.Exchanges = append(out.Exchanges, exchangeRow(c))
	}
	for _, ins := range r.Insights {
		out.Insights = append(out.Insights, insightJSON{Insight: ins, Value: model.Some(ins.Value), Text: insight.Describe(ins)})
	}
	return json.Marshal(out)
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// CSVColumns is the header of the flat export.
var CSVColumns = []string{
	"region", "exchange", "index_name", "local_currency",
	"ytd_percent", "market_cap_local", "market_cap_usd", "market_cap_usd_display",
	"adtv_local", "adtv_usd", "adtv_usd_display",
	"fx_rate", "fx_source", "fx_as_of", "conversion_notes",
}

// WriteCSV writes one row per converted record.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVColumns); err != nil {
		return err
	}
	for _, c := range r.Records {
		row := []string{
			c.Region, c.Exchange, c.IndexName, c.LocalCurrency,
			c.YTD().String(),
			model.Optional(c.MarketCapLocal).String(),
			c.MarketCapUSD.String(),
			display.USD(c.MarketCapUSD),
			model.Optional(c.ADTVLocal).String(),
			c.ADTVUSD.String(),
			display.USD(c.ADTVUSD),
			c.Quote.RateToUSD.String(),
			string(c.Quote.Source),
			c.Quote.AsOf.Format(time.RFC3339),
			strings.Join(c.Notes, "; "),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteQuotesCSV writes the FX audit table, one row per currency.
func (r *Report) WriteQuotesCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"currency", "rate_to_usd", "source", "provider", "as_of", "window", "sample_count", "note"}); err != nil {
		return err
	}
	for _, q := range r.Quotes {
		window := ""
		if q.Window != nil {
			window = q.Window.String()
		}
		if err := cw.Write([]string{
			q.Currency, q.RateToUSD.String(), string(q.Source), q.Provider,
			q.AsOf.Format(time.RFC3339), window, fmt.Sprint(q.SampleCount), q.Note,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
