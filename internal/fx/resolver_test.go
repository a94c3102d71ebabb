package fx

import (
	"context"
	"errors"
	"testing"
	"time"

	"BourseLens/internal/collector"
	"BourseLens/internal/metrics"
	"BourseLens/internal/model"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
)

var asOf = time.Date(2025, 10, 17, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestResolver(primary, secondary collector.RateFetcher) *Resolver {
	r := NewResolver(primary, secondary)
	r.Now = func() time.Time { return asOf }
	r.Timeout = 200 * time.Millisecond
	return r
}

func TestResolve_PegPrecedenceSkipsNetwork(t *testing.T) {
	primary := collector.NewStaticFetcher("primary", map[string]float64{"AED": 0.9})
	r := newTestResolver(primary, nil)

	q := r.Resolve(context.Background(), "AED", Live{}, asOf)
	if q.Source != model.SourceStaticPeg {
		t.Fatalf("expected STATIC_PEG, got %s", q.Source)
	}
	if !q.RateToUSD.Value.Equal(dec("0.2723")) {
		t.Errorf("expected 0.2723, got %s", q.RateToUSD)
	}
	if primary.Calls("AED") != 0 {
		t.Errorf("pegged currency must not hit the network, got %d calls", primary.Calls("AED"))
	}
}

func TestResolve_RegisteredPeg(t *testing.T) {
	r := newTestResolver(nil, nil)
	r.Pegs = r.Pegs.With(map[string]float64{"hkd": 0.128})
	q := r.Resolve(context.Background(), "HKD", Live{}, asOf)
	if q.Source != model.SourceStaticPeg || !q.RateToUSD.Value.Equal(dec("0.128")) {
		t.Errorf("expected registered HKD peg, got %+v", q)
	}
}

func TestResolve_LiveFallbackOrder(t *testing.T) {
	failing := &collector.StaticFetcher{Label: "primary", Err: errors.New("connection refused")}
	secondary := collector.NewStaticFetcher("secondary", map[string]float64{"EUR": 1.08})

	q := newTestResolver(failing, secondary).Resolve(context.Background(), "EUR", Live{}, asOf)
	if q.Source != model.SourceLiveSecondary {
		t.Fatalf("expected LIVE_SECONDARY, got %s", q.Source)
	}
	if q.Provider != "secondary" || !q.RateToUSD.Value.Equal(dec("1.08")) {
		t.Errorf("unexpected quote %+v", q)
	}

	bothFail := &collector.StaticFetcher{Label: "secondary", Err: errors.New("503")}
	q = newTestResolver(failing, bothFail).Resolve(context.Background(), "EUR", Live{}, asOf)
	if q.Source != model.SourceUnavailable {
		t.Fatalf("expected UNAVAILABLE, got %s", q.Source)
	}
	if q.RateToUSD.Valid {
		t.Error("unavailable quote must not carry a rate")
	}
	if q.Note == "" {
		t.Error("expected an explanatory note")
	}
}

func TestResolve_PrimaryWins(t *testing.T) {
	primary := collector.NewStaticFetcher("primary", map[string]float64{"GBP": 1.34})
	secondary := collector.NewStaticFetcher("secondary", map[string]float64{"GBP": 1.30})
	r := newTestResolver(primary, secondary)
	q := r.Resolve(context.Background(), "GBP", Live{}, asOf)
	if q.Source != model.SourceLivePrimary {
		t.Fatalf("expected LIVE_PRIMARY, got %s", q.Source)
	}
	if secondary.Calls("GBP") != 0 {
		t.Error("secondary must not be called once primary succeeds")
	}
}

func TestResolve_NonPositiveIsFailure(t *testing.T) {
	primary := collector.NewStaticFetcher("primary", map[string]float64{"JPY": 0})
	secondary := collector.NewStaticFetcher("secondary", map[string]float64{"JPY": -0.5})
	q := newTestResolver(primary, secondary).Resolve(context.Background(), "JPY", Live{}, asOf)
	if q.Source != model.SourceUnavailable {
		t.Errorf("expected UNAVAILABLE for non-positive rates, got %s", q.Source)
	}
}

type slowFetcher struct{}

func (slowFetcher) Name() string { return "slow" }
func (slowFetcher) FetchRate(ctx context.Context, _, _ string) (decimal.Decimal, error) {
	<-ctx.Done()
	return decimal.Zero, ctx.Err()
}

func TestResolve_TimeoutAdvancesChain(t *testing.T) {
	secondary := collector.NewStaticFetcher("secondary", map[string]float64{"CHF": 1.25})
	r := newTestResolver(slowFetcher{}, secondary)
	r.Timeout = 20 * time.Millisecond
	q := r.Resolve(context.Background(), "CHF", Live{}, asOf)
	if q.Source != model.SourceLiveSecondary {
		t.Errorf("expected LIVE_SECONDARY after primary timeout, got %s", q.Source)
	}
}

func TestResolve_Manual(t *testing.T) {
	r := newTestResolver(nil, nil)
	m := Manual{Rates: map[string]decimal.Decimal{"KWD": dec("3.25"), "AED": dec("0.27")}}

	q := r.Resolve(context.Background(), "KWD", m, asOf)
	if q.Source != model.SourceManual || !q.RateToUSD.Value.Equal(dec("3.25")) {
		t.Errorf("expected manual KWD 3.25, got %+v", q)
	}
	if !q.Source.Fixed() {
		t.Error("manual provenance must be treated as fixed")
	}

	q = r.Resolve(context.Background(), "AED", m, asOf)
	if q.Source != model.SourceManual || !q.RateToUSD.Value.Equal(dec("0.27")) {
		t.Errorf("manual entry must win over the peg, got %+v", q)
	}

	q = r.Resolve(context.Background(), "SAR", m, asOf)
	if q.Source != model.SourceStaticPeg {
		t.Errorf("missing manual rate should fall through to the peg, got %s", q.Source)
	}

	q = r.Resolve(context.Background(), "EUR", m, asOf)
	if q.Source != model.SourceUnavailable {
		t.Errorf("expected UNAVAILABLE, got %s", q.Source)
	}
}

func TestResolve_Average(t *testing.T) {
	d := func(s string) time.Time { day, _ := model.ParseDay(s); return day }
	window := model.DateRange{From: d("2025-01-01"), To: d("2025-01-31"), Preset: model.PresetCustom}
	avg := Average{
		Observations: []model.Observation{
			{Date: d("2025-01-02"), Currency: "AED", Rate: dec("0.27")},
			{Date: d("2025-01-03"), Currency: "AED", Rate: dec("0.28")},
			{Date: d("2025-01-04"), Currency: "AED", Rate: dec("0.29")},
			{Date: d("2025-03-01"), Currency: "KWD", Rate: dec("3.25")},
		},
		Window: window,
	}
	r := newTestResolver(nil, nil)

	q := r.Resolve(context.Background(), "AED", avg, asOf)
	if q.Source != model.SourceHistoricalAverage {
		t.Fatalf("expected HISTORICAL_AVERAGE, got %s", q.Source)
	}
	if !q.RateToUSD.Value.Equal(dec("0.28")) || q.SampleCount != 3 {
		t.Errorf("expected 0.28 over 3 samples, got %s over %d", q.RateToUSD, q.SampleCount)
	}
	if q.Window == nil || !q.Window.From.Equal(window.From) {
		t.Error("expected the averaging window on the quote")
	}
	if q.Note != "observed range 0.27 to 0.29" {
		t.Errorf("unexpected note %q", q.Note)
	}

	q = r.Resolve(context.Background(), "KWD", avg, asOf)
	if q.Source != model.SourceUnavailable || q.Note == "" {
		t.Errorf("empty window must be UNAVAILABLE with a note, got %+v", q)
	}

	q = r.Resolve(context.Background(), "EUR", avg, asOf)
	if q.Source != model.SourceUnavailable {
		t.Errorf("expected UNAVAILABLE without history, got %s", q.Source)
	}
}

func TestResolve_USDIdentityInEveryMode(t *testing.T) {
	r := newTestResolver(nil, nil)
	for _, c := range []Context{Live{}, Manual{}, Average{}} {
		q := r.Resolve(context.Background(), "USD", c, asOf)
		if q.Source != model.SourceStaticPeg || !q.RateToUSD.Value.Equal(decimal.NewFromInt(1)) {
			t.Errorf("%s: expected USD identity, got %+v", c.Mode(), q)
		}
	}
}

func TestResolve_Deterministic(t *testing.T) {
	primary := collector.NewStaticFetcher("primary", map[string]float64{"EUR": 1.08})
	r := newTestResolver(primary, nil)
	a := r.Resolve(context.Background(), "EUR", Live{}, asOf)
	b := r.Resolve(context.Background(), "EUR", Live{}, asOf)
	if a.Source != b.Source || !a.RateToUSD.Equal(b.RateToUSD) || !a.AsOf.Equal(b.AsOf) {
		t.Errorf("expected identical quotes, got %+v and %+v", a, b)
	}
}

func TestRun_MemoizesPerCurrency(t *testing.T) {
	primary := collector.NewStaticFetcher("primary", map[string]float64{"EUR": 1.08, "GBP": 1.34})
	run := newTestResolver(primary, nil).NewRun(Live{})

	for i := 0; i < 3; i++ {
		run.Quote(context.Background(), "EUR")
	}
	run.Quote(context.Background(), "GBP")
	run.Quote(context.Background(), "AED")

	if primary.Calls("EUR") != 1 {
		t.Errorf("expected one EUR lookup, got %d", primary.Calls("EUR"))
	}
	quotes := run.Quotes()
	if len(quotes) != 3 {
		t.Fatalf("expected 3 quotes, got %d", len(quotes))
	}
	if quotes[0].Currency != "AED" || quotes[1].Currency != "EUR" || quotes[2].Currency != "GBP" {
		t.Errorf("quotes not ordered by currency: %v %v %v", quotes[0].Currency, quotes[1].Currency, quotes[2].Currency)
	}
	if !run.AsOf().Equal(asOf) {
		t.Errorf("expected run as-of %v, got %v", asOf, run.AsOf())
	}
}

func TestRun_IsolatedBetweenRuns(t *testing.T) {
	primary := collector.NewStaticFetcher("primary", map[string]float64{"EUR": 1.08})
	r := newTestResolver(primary, nil)
	r.NewRun(Live{}).Quote(context.Background(), "EUR")
	r.NewRun(Live{}).Quote(context.Background(), "EUR")
	if primary.Calls("EUR") != 2 {
		t.Errorf("each run owns its cache; expected 2 lookups, got %d", primary.Calls("EUR"))
	}
}

func TestResolve_FailoverMetrics(t *testing.T) {
	failures := metrics.FXSourceFailures.WithLabelValues("primary")
	secondaryHits := metrics.FXResolutions.WithLabelValues("LIVE", string(model.SourceLiveSecondary))
	pegHits := metrics.FXResolutions.WithLabelValues("LIVE", string(model.SourceStaticPeg))
	beforeFail := testutil.ToFloat64(failures)
	beforeSecondary := testutil.ToFloat64(secondaryHits)
	beforePeg := testutil.ToFloat64(pegHits)

	failing := &collector.StaticFetcher{Label: "primary", Err: errors.New("connection refused")}
	secondary := collector.NewStaticFetcher("secondary", map[string]float64{"EUR": 1.08})
	r := newTestResolver(failing, secondary)
	r.Resolve(context.Background(), "EUR", Live{}, asOf)
	r.Resolve(context.Background(), "AED", Live{}, asOf)

	if d := testutil.ToFloat64(failures) - beforeFail; d != 1 {
		t.Errorf("primary failures grew by %v, want 1", d)
	}
	if d := testutil.ToFloat64(secondaryHits) - beforeSecondary; d != 1 {
		t.Errorf("LIVE/LIVE_SECONDARY resolutions grew by %v, want 1", d)
	}
	if d := testutil.ToFloat64(pegHits) - beforePeg; d != 1 {
		t.Errorf("LIVE/STATIC_PEG resolutions grew by %v, want 1", d)
	}
}

func TestResolve_ManualMetricsLabel(t *testing.T) {
	manual := metrics.FXResolutions.WithLabelValues("MANUAL", string(model.SourceManual))
	before := testutil.ToFloat64(manual)

	newTestResolver(nil, nil).Resolve(context.Background(), "KWD", Manual{Rates: map[string]decimal.Decimal{"KWD": dec("3.25")}}, asOf)

	if d := testutil.ToFloat64(manual) - before; d != 1 {
		t.Errorf("MANUAL/MANUAL resolutions grew by %v, want 1", d)
	}
}
