// Package report assembles converted records, the FX audit trail and insights
// into a single exportable result.
package report

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"time"

	"BourseLens/internal/converter"
	"BourseLens/internal/fx"
	"BourseLens/internal/insight"
	"BourseLens/internal/metrics"
	"BourseLens/internal/model"

	"github.com/google/uuid"
)

// OutputCurrency is the single currency every figure is unified into.
const OutputCurrency = "USD"

// AuditEntry traces how one record's USD figures were produced.
type AuditEntry struct {
	Exchange        string       `json:"exchange"`
	InputCurrency   string       `json:"input_currency"`
	InputMarketCap  model.Amount `json:"input_market_cap"`
	InputADTV       model.Amount `json:"input_adtv"`
	InputYTDPercent model.Amount `json:"input_ytd_percent"`
	FXRate          model.Amount `json:"fx_rate"`
	FXSource        model.Source `json:"fx_source"`
	OutputMarketCap model.Amount `json:"output_market_cap_usd"`
	OutputADTV      model.Amount `json:"output_adtv_usd"`
	MissingFields   []string     `json:"missing_fields"`
}

// Report is the all-or-nothing result of one generation.
type Report struct {
	ID          string
	GeneratedAt time.Time
	Mode        model.Mode
	Window      *model.DateRange
	Records     []model.ConvertedRecord
	Quotes      []model.FxQuote
	Insights    []model.Insight
	Rankings    insight.Rankings
	Audit       []AuditEntry
	Summary     string
}

// Narrative renders every insight as a sentence, in order.
func (r *Report) Narrative() []string {
	out := make([]string, len(r.Insights))
	for i, ins := range r.Insights {
		out[i] = insight.Describe(ins)
	}
	return out
}

// Options selects the FX mode for one generation.
type Options struct {
	FX     fx.Context
	Window *model.DateRange // echoed in metadata; AVERAGE mode takes it from fx.Average
}

// Assembler runs the pipeline: validation, FX resolution, conversion, insights.
type Assembler struct {
	Resolver *fx.Resolver
	Now      func() time.Time
}

// NewAssembler creates an Assembler around a resolver.
func NewAssembler(resolver *fx.Resolver) *Assembler {
	return &Assembler{Resolver: resolver, Now: time.Now}
}

// Generate builds a report. Invalid records reject the whole call with joined
// ValidationErrors; FX problems never fail it and show up as N/A figures instead.
// If ctx is cancelled, no report is returned.
func (a *Assembler) Generate(ctx context.Context, records []model.ExchangeRecord, opts Options) (rep *Report, err error) {
	start := time.Now()
	defer func() {
		metrics.ReportDuration.Observe(time.Since(start).Seconds())
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.ReportsGenerated.WithLabelValues(outcome).Inc()
	}()

	if opts.FX == nil {
		return nil, errors.New("generate report: no FX mode selected")
	}
	var errs []error
	for _, rec := range records {
		if err := model.ValidateRecord(rec); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("generate report: %w", errors.Join(errs...))
	}

	run := a.Resolver.NewRun(opts.FX)
	converted := make([]model.ConvertedRecord, 0, len(records))
	for _, rec := range records {
		quote := run.Quote(ctx, rec.LocalCurrency)
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generate report: %w", err)
		}
		c := converter.Convert(rec, quote)
		if !c.MarketCapUSD.Valid {
			metrics.NAFields.WithLabelValues(model.BasisMarketCap).Inc()
		}
		if !c.ADTVUSD.Valid {
			metrics.NAFields.WithLabelValues(model.BasisADTV).Inc()
		}
		converted = append(converted, c)
	}

	window := opts.Window
	if avg, ok := opts.FX.(fx.Average); ok && window == nil {
		window = &avg.Window
	}

	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	rep = &Report{
		ID:          uuid.NewString(),
		GeneratedAt: now().UTC(),
		Mode:        opts.FX.Mode(),
		Window:      window,
		Records:     converted,
		Quotes:      run.Quotes(),
		Insights:    slices.Collect(insight.Derive(converted)),
		Rankings:    insight.Rank(converted),
		Audit:       auditTrail(converted),
		Summary:     insight.Summary(converted, window),
	}
	log.Printf("[INFO] report %s generated: mode=%s records=%d quotes=%d insights=%d",
		rep.ID, rep.Mode, len(rep.Records), len(rep.Quotes), len(rep.Insights))
	return rep, nil
}

func auditTrail(records []model.ConvertedRecord) []AuditEntry {
	out := make([]AuditEntry, 0, len(records))
	for _, c := range records {
		e := AuditEntry{
			Exchange:        c.Exchange,
			InputCurrency:   c.LocalCurrency,
			InputMarketCap:  model.Optional(c.MarketCapLocal),
			InputADTV:       model.Optional(c.ADTVLocal),
			InputYTDPercent: c.YTD(),
			FXRate:          c.Quote.RateToUSD,
			FXSource:        c.Quote.Source,
			OutputMarketCap: c.MarketCapUSD,
			OutputADTV:      c.ADTVUSD,
			MissingFields:   []string{},
		}
		if c.YTDPercent == nil {
			e.MissingFields = append(e.MissingFields, "ytd_percent")
		}
		if c.MarketCapLocal == nil {
			e.MissingFields = append(e.MissingFields, "market_cap")
		}
		if c.ADTVLocal == nil {
			e.MissingFields = append(e.MissingFields, "adtv")
		}
		if !c.Quote.Available() {
			e.MissingFields = append(e.MissingFields, "fx_rate_"+c.LocalCurrency)
		}
		out = append(out, e)
	}
	return out
}
