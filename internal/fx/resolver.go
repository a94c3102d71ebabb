package fx

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"BourseLens/internal/calculator"
	"BourseLens/internal/collector"
	"BourseLens/internal/metrics"
	"BourseLens/internal/model"

	"github.com/shopspring/decimal"
)

// USD is the reporting currency.
const USD = "USD"

// DefaultTimeout bounds each live source call.
const DefaultTimeout = 10 * time.Second

// Resolver turns a currency code into an FxQuote. It never returns an error:
// failures are represented by a quote with SourceUnavailable.
type Resolver struct {
	Pegs      PegTable
	Primary   collector.RateFetcher // optional
	Secondary collector.RateFetcher // optional
	Timeout   time.Duration
	Now       func() time.Time
}

// NewResolver creates a resolver over the default peg table.
func NewResolver(primary, secondary collector.RateFetcher) *Resolver {
	return &Resolver{
		Pegs:      DefaultPegs(),
		Primary:   primary,
		Secondary: secondary,
		Timeout:   DefaultTimeout,
		Now:       time.Now,
	}
}

func (r *Resolver) now() time.Time {
	if r.Now == nil {
		return time.Now().UTC()
	}
	return r.Now().UTC()
}

// Resolve produces the quote for currency under the given context, stamped asOf.
func (r *Resolver) Resolve(ctx context.Context, currency string, fxc Context, asOf time.Time) model.FxQuote {
	q := r.resolve(ctx, currency, fxc, asOf)
	mode := "NONE"
	if fxc != nil {
		mode = fxc.Mode().String()
	}
	metrics.FXResolutions.WithLabelValues(mode, string(q.Source)).Inc()
	return q
}

func (r *Resolver) resolve(ctx context.Context, currency string, fxc Context, asOf time.Time) model.FxQuote {
	if currency == USD {
		return model.FxQuote{Currency: USD, RateToUSD: model.Some(decimal.NewFromInt(1)), Source: model.SourceStaticPeg, Provider: "identity", AsOf: asOf}
	}

	switch c := fxc.(type) {
	case Live:
		return r.resolveLive(ctx, currency, asOf)
	case Manual:
		return r.resolveManual(currency, c, asOf)
	case Average:
		return r.resolveAverage(currency, c, asOf)
	case nil:
		return model.Unavailable(currency, asOf, "no FX mode selected")
	}
	// Unreachable while Context stays sealed.
	return model.Unavailable(currency, asOf, fmt.Sprintf("unsupported FX context %T", fxc))
}

func (r *Resolver) peg(currency string, asOf time.Time) (model.FxQuote, bool) {
	rate, ok := r.Pegs.Lookup(currency)
	if !ok {
		return model.FxQuote{}, false
	}
	return model.FxQuote{Currency: currency, RateToUSD: model.Some(rate), Source: model.SourceStaticPeg, Provider: "peg", AsOf: asOf}, true
}

func (r *Resolver) resolveLive(ctx context.Context, currency string, asOf time.Time) model.FxQuote {
	if q, ok := r.peg(currency, asOf); ok {
		return q
	}
	links := []struct {
		fetcher collector.RateFetcher
		source  model.Source
	}{
		{r.Primary, model.SourceLivePrimary},
		{r.Secondary, model.SourceLiveSecondary},
	}
	var tried []string
	for _, link := range links {
		if link.fetcher == nil {
			continue
		}
		tried = append(tried, link.fetcher.Name())
		if rate, ok := r.fetch(ctx, link.fetcher, currency); ok {
			return model.FxQuote{Currency: currency, RateToUSD: model.Some(rate), Source: link.source, Provider: link.fetcher.Name(), AsOf: asOf}
		}
	}
	if len(tried) == 0 {
		return model.Unavailable(currency, asOf, fmt.Sprintf("no live FX source configured for %s", currency))
	}
	return model.Unavailable(currency, asOf, fmt.Sprintf("live FX sources failed for %s (tried %v)", currency, tried))
}

// fetch asks one live source for a rate; any failure, timeout or non-positive value is a miss.
func (r *Resolver) fetch(ctx context.Context, f collector.RateFetcher, currency string) (decimal.Decimal, bool) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	rate, err := f.FetchRate(cctx, currency, USD)
	metrics.FXSourceDuration.WithLabelValues(f.Name()).Observe(time.Since(start).Seconds())
	if err == nil && !rate.IsPositive() {
		err = fmt.Errorf("non-positive rate %s", rate)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %v: %w", timeout, err)
		}
		log.Printf("[WARN] fx source %s failed for %s: %v", f.Name(), currency, err)
		metrics.FXSourceFailures.WithLabelValues(f.Name()).Inc()
		return decimal.Zero, false
	}
	return rate, true
}

func (r *Resolver) resolveManual(currency string, c Manual, asOf time.Time) model.FxQuote {
	if rate, ok := c.Rates[currency]; ok {
		if rate.IsPositive() {
			return model.FxQuote{Currency: currency, RateToUSD: model.Some(rate), Source: model.SourceManual, Provider: "manual", AsOf: asOf}
		}
		log.Printf("[WARN] manual rate for %s is not positive (%s), ignoring", currency, rate)
	}
	if q, ok := r.peg(currency, asOf); ok {
		return q
	}
	return model.Unavailable(currency, asOf, fmt.Sprintf("no manual rate entered for %s", currency))
}

func (r *Resolver) resolveAverage(currency string, c Average, asOf time.Time) model.FxQuote {
	window := c.Window
	if calculator.CountFor(c.Observations, currency) == 0 {
		q := model.Unavailable(currency, asOf, fmt.Sprintf("no FX history supplied for %s", currency))
		q.Window = &window
		return q
	}
	mean, n, err := calculator.MeanInRange(c.Observations, currency, window)
	if err != nil {
		q := model.Unavailable(currency, asOf, fmt.Sprintf("no FX observations for %s between %s", currency, window))
		q.Window = &window
		return q
	}
	if !mean.IsPositive() {
		q := model.Unavailable(currency, asOf, fmt.Sprintf("average FX rate for %s is not positive", currency))
		q.Window = &window
		q.SampleCount = n
		return q
	}
	q := model.FxQuote{
		Currency:    currency,
		RateToUSD:   model.Some(mean),
		Source:      model.SourceHistoricalAverage,
		Provider:    "average",
		AsOf:        asOf,
		Window:      &window,
		SampleCount: n,
	}
	if low, high, err := calculator.RangeInWindow(c.Observations, currency, window); err == nil && !low.Equal(high) {
		q.Note = fmt.Sprintf("observed range %s to %s", low, high)
	}
	return q
}
