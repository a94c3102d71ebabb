package insight

import (
	"slices"
	"strings"
	"testing"

	"BourseLens/internal/model"

	"github.com/shopspring/decimal"
)

func dp(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func usd(s string) model.Amount { return model.Some(decimal.RequireFromString(s)) }

func rec(code, ytd string, cap, adtv model.Amount) model.ConvertedRecord {
	r := model.ConvertedRecord{
		ExchangeRecord: model.ExchangeRecord{Region: "UAE", Exchange: code, LocalCurrency: "AED"},
		MarketCapUSD:   cap,
		ADTVUSD:        adtv,
	}
	if ytd != "" {
		r.YTDPercent = dp(ytd)
	}
	return r
}

func kinds(ins []model.Insight) []model.InsightKind {
	out := make([]model.InsightKind, len(ins))
	for i, x := range ins {
		out[i] = x.Kind
	}
	return out
}

func find(ins []model.Insight, k model.InsightKind) (model.Insight, bool) {
	for _, x := range ins {
		if x.Kind == k {
			return x, true
		}
	}
	return model.Insight{}, false
}

func TestDerive_EndToEndScenario(t *testing.T) {
	records := []model.ConvertedRecord{
		rec("DFM", "5.23", usd("204225000000"), usd("122535000")),
		rec("ADX", "3.10", usd("245070000000"), usd("81690000")),
	}
	got := slices.Collect(Derive(records))

	want := []model.InsightKind{
		model.TopPerformer, model.BottomPerformer, model.LiquidityLeader,
		model.CapLeader, model.PerformanceGap, model.LiquidityGap,
	}
	if !slices.Equal(kinds(got), want) {
		t.Fatalf("unexpected order %v", kinds(got))
	}

	checks := []struct {
		kind    model.InsightKind
		subject []string
		value   string
	}{
		{model.TopPerformer, []string{"DFM"}, "5.23"},
		{model.BottomPerformer, []string{"ADX"}, "3.10"},
		{model.LiquidityLeader, []string{"DFM"}, "122535000"},
		{model.CapLeader, []string{"ADX"}, "245070000000"},
		{model.PerformanceGap, []string{"DFM", "ADX"}, "2.13"},
		{model.LiquidityGap, []string{"DFM", "ADX"}, "40845000"},
	}
	for _, c := range checks {
		ins, ok := find(got, c.kind)
		if !ok {
			t.Errorf("%s missing", c.kind)
			continue
		}
		if !slices.Equal(ins.Subject, c.subject) {
			t.Errorf("%s: subject %v, want %v", c.kind, ins.Subject, c.subject)
		}
		if !ins.Value.Equal(decimal.RequireFromString(c.value)) {
			t.Errorf("%s: value %s, want %s", c.kind, ins.Value, c.value)
		}
	}
}

func TestDerive_TieBreakLexicographic(t *testing.T) {
	records := []model.ConvertedRecord{
		rec("DFM", "5.00", model.NA(), model.NA()),
		rec("ADX", "5.00", model.NA(), model.NA()),
	}
	got := slices.Collect(Derive(records))
	top, _ := find(got, model.TopPerformer)
	if top.Subject[0] != "ADX" {
		t.Errorf("expected ADX on tie, got %v", top.Subject)
	}
	bottom, _ := find(got, model.BottomPerformer)
	if bottom.Subject[0] != "ADX" {
		t.Errorf("expected ADX on tie, got %v", bottom.Subject)
	}
	gap, ok := find(got, model.PerformanceGap)
	if !ok {
		t.Fatal("expected a performance gap with two eligible records")
	}
	if !gap.Value.IsZero() || !slices.Equal(gap.Subject, []string{"ADX", "DFM"}) {
		t.Errorf("unexpected gap %+v", gap)
	}
}

func TestDerive_OrderIndependent(t *testing.T) {
	a := []model.ConvertedRecord{
		rec("TADAWUL", "-1.5", usd("2.7e12"), usd("1.5e9")),
		rec("DFM", "5.23", usd("2.04e11"), usd("1.2e8")),
		rec("QSE", "", usd("1.6e11"), model.NA()),
	}
	b := []model.ConvertedRecord{a[2], a[0], a[1]}

	ga := slices.Collect(Derive(a))
	gb := slices.Collect(Derive(b))
	if len(ga) != len(gb) {
		t.Fatalf("length differs: %d vs %d", len(ga), len(gb))
	}
	for i := range ga {
		if ga[i].Kind != gb[i].Kind || !slices.Equal(ga[i].Subject, gb[i].Subject) || !ga[i].Value.Equal(gb[i].Value) {
			t.Errorf("insight %d differs: %+v vs %+v", i, ga[i], gb[i])
		}
	}
}

func TestDerive_MissingDataRules(t *testing.T) {
	records := []model.ConvertedRecord{
		rec("DFM", "5.23", model.NA(), usd("100")),
		rec("ADX", "", model.NA(), model.NA()),
	}
	got := slices.Collect(Derive(records))
	want := []model.InsightKind{model.TopPerformer, model.BottomPerformer, model.LiquidityLeader}
	if !slices.Equal(kinds(got), want) {
		t.Errorf("expected %v, got %v", want, kinds(got))
	}
}

func TestDerive_EmptyInput(t *testing.T) {
	for range Derive(nil) {
		t.Fatal("expected no insights")
	}
}

func TestDerive_Restartable(t *testing.T) {
	records := []model.ConvertedRecord{
		rec("DFM", "5.23", usd("1"), usd("1")),
		rec("ADX", "3.10", usd("2"), usd("2")),
	}
	seq := Derive(records)
	records[0].Exchange = "MUTATED"

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	if len(first) != len(second) || len(first) == 0 {
		t.Fatalf("expected identical non-empty passes, got %d and %d", len(first), len(second))
	}
	for _, ins := range first {
		if slices.Contains(ins.Subject, "MUTATED") {
			t.Error("sequence must not observe changes made after Derive")
		}
	}

	n := 0
	for range seq {
		n++
		break
	}
	if n != 1 {
		t.Error("early break should stop iteration")
	}
}

func TestDescribe(t *testing.T) {
	cases := []struct {
		ins  model.Insight
		want string
	}{
		{model.Insight{Kind: model.TopPerformer, Subject: []string{"DFM"}, Value: decimal.RequireFromString("5.23"), Unit: model.UnitPercent}, "DFM leads YTD performance at +5.23%."},
		{model.Insight{Kind: model.CapLeader, Subject: []string{"ADX"}, Value: decimal.RequireFromString("245070000000"), Unit: model.UnitUSD}, "ADX is the largest market by capitalization at $245.07B."},
		{model.Insight{Kind: model.PerformanceGap, Subject: []string{"DFM", "ADX"}, Value: decimal.RequireFromString("2.13"), Unit: model.UnitPoints}, "2.13 pp separate the best (DFM) from the weakest (ADX) performer."},
	}
	for _, c := range cases {
		if got := Describe(c.ins); got != c.want {
			t.Errorf("Describe(%s) = %q, want %q", c.ins.Kind, got, c.want)
		}
	}
}

func TestSummary(t *testing.T) {
	records := []model.ConvertedRecord{
		rec("DFM", "5.23", usd("204225000000"), usd("1")),
		rec("ADX", "3.10", usd("245070000000"), model.NA()),
	}
	s := Summary(records, nil)
	for _, want := range []string{"compares 2 stock exchanges across 1 regions", "+4.17%", "2 of 2", "$449.30B", "1 exchange(s) have incomplete data"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary %q missing %q", s, want)
		}
	}
}

func exchanges(r []Ranked) []string {
	out := make([]string, len(r))
	for i, x := range r {
		out[i] = x.Exchange
	}
	return out
}

func TestRank_OrderTiesAndMissing(t *testing.T) {
	records := []model.ConvertedRecord{
		rec("QSE", "5.00", usd("150000000000"), model.NA()),
		rec("DFM", "5.23", usd("204225000000"), usd("122535000")),
		rec("TADAWUL", "", usd("2700000000000"), usd("1500000000")),
		rec("ADX", "5.00", model.NA(), usd("81690000")),
		rec("EGX", "-1.20", usd("45000000000"), usd("81690000")),
	}
	r := Rank(records)

	if got, want := exchanges(r.YTDBest), []string{"DFM", "ADX", "QSE", "EGX"}; !slices.Equal(got, want) {
		t.Errorf("ytd best = %v, want %v", got, want)
	}
	if got, want := exchanges(r.YTDWorst), []string{"EGX", "ADX", "QSE", "DFM"}; !slices.Equal(got, want) {
		t.Errorf("ytd worst = %v, want %v", got, want)
	}
	if got, want := exchanges(r.MarketCapLargest), []string{"TADAWUL", "DFM", "QSE", "EGX"}; !slices.Equal(got, want) {
		t.Errorf("market cap = %v, want %v", got, want)
	}
	if got, want := exchanges(r.ADTVHighest), []string{"TADAWUL", "DFM", "ADX", "EGX"}; !slices.Equal(got, want) {
		t.Errorf("adtv = %v, want %v", got, want)
	}
	if !r.YTDBest[0].Value.Equal(decimal.RequireFromString("5.23")) {
		t.Errorf("value not carried: %s", r.YTDBest[0].Value)
	}

	// Rankings agree with the leader insights.
	ins := slices.Collect(Derive(records))
	top, _ := find(ins, model.TopPerformer)
	bottom, _ := find(ins, model.BottomPerformer)
	if top.Subject[0] != r.YTDBest[0].Exchange || bottom.Subject[0] != r.YTDWorst[0].Exchange {
		t.Errorf("rankings disagree with insights: %v / %v", top.Subject, bottom.Subject)
	}
}

func TestRank_Empty(t *testing.T) {
	r := Rank(nil)
	if len(r.YTDBest) != 0 || len(r.ADTVHighest) != 0 {
		t.Errorf("expected empty rankings, got %+v", r)
	}
	r = Rank([]model.ConvertedRecord{rec("DFM", "", model.NA(), model.NA())})
	if len(r.YTDBest) != 0 || len(r.MarketCapLargest) != 0 {
		t.Errorf("N/A records must not be ranked: %+v", r)
	}
}
