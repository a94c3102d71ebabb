package fx

import (
	"context"
	"maps"
	"slices"
	"time"

	"BourseLens/internal/model"
)

// Run memoizes quotes for one report generation. It is not safe for concurrent use
// and must be discarded when the report is done.
type Run struct {
	resolver *Resolver
	fxc      Context
	asOf     time.Time
	cache    map[string]model.FxQuote
}

// NewRun starts a resolution scope. Every quote in it is stamped with the same as-of time.
func (r *Resolver) NewRun(fxc Context) *Run {
	return &Run{
		resolver: r,
		fxc:      fxc,
		asOf:     r.now(),
		cache:    make(map[string]model.FxQuote),
	}
}

// AsOf returns the timestamp shared by the run's quotes.
func (run *Run) AsOf() time.Time { return run.asOf }

// Quote resolves currency at most once per run.
func (run *Run) Quote(ctx context.Context, currency string) model.FxQuote {
	if q, ok := run.cache[currency]; ok {
		return q
	}
	q := run.resolver.Resolve(ctx, currency, run.fxc, run.asOf)
	run.cache[currency] = q
	return q
}

// Quotes returns every resolved quote ordered by currency code.
func (run *Run) Quotes() []model.FxQuote {
	out := make([]model.FxQuote, 0, len(run.cache))
	for _, code := range slices.Sorted(maps.Keys(run.cache)) {
		out = append(out, run.cache[code])
	}
	return out
}
