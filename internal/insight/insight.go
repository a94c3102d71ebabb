// Package insight derives comparative facts from a converted dataset.
package insight

import (
	"iter"
	"slices"
	"strings"

	"BourseLens/internal/model"

	"github.com/shopspring/decimal"
)

// candidate is one eligible record for a given basis field.
type candidate struct {
	idx   int
	code  string
	value decimal.Decimal
}

// Derive returns the insights of records in the fixed kind order. The sequence is lazy
// and can be ranged over any number of times; the input slice is snapshotted.
func Derive(records []model.ConvertedRecord) iter.Seq[model.Insight] {
	snapshot := slices.Clone(records)
	return func(yield func(model.Insight) bool) {
		for _, kind := range model.InsightKinds {
			ins, ok := derive(kind, snapshot)
			if !ok {
				continue
			}
			if !yield(ins) {
				return
			}
		}
	}
}

func derive(kind model.InsightKind, records []model.ConvertedRecord) (model.Insight, bool) {
	switch kind {
	case model.TopPerformer:
		return leaderInsight(kind, records, model.BasisYTD, model.UnitPercent, true)
	case model.BottomPerformer:
		return leaderInsight(kind, records, model.BasisYTD, model.UnitPercent, false)
	case model.LiquidityLeader:
		return leaderInsight(kind, records, model.BasisADTV, model.UnitUSD, true)
	case model.CapLeader:
		return leaderInsight(kind, records, model.BasisMarketCap, model.UnitUSD, true)
	case model.PerformanceGap:
		return gapInsight(kind, records, model.BasisYTD, model.UnitPoints)
	case model.LiquidityGap:
		return gapInsight(kind, records, model.BasisADTV, model.UnitUSD)
	}
	return model.Insight{}, false
}

func field(rec model.ConvertedRecord, basis string) model.Amount {
	switch basis {
	case model.BasisYTD:
		return rec.YTD()
	case model.BasisMarketCap:
		return rec.MarketCapUSD
	case model.BasisADTV:
		return rec.ADTVUSD
	}
	return model.NA()
}

// eligible collects the records whose basis field is available.
func eligible(records []model.ConvertedRecord, basis string) []candidate {
	var out []candidate
	for i, rec := range records {
		if v := field(rec, basis); v.Valid {
			out = append(out, candidate{idx: i, code: rec.Exchange, value: v.Value})
		}
	}
	return out
}

// pick returns the extreme candidate; exact ties go to the lexicographically smallest
// exchange code, then to the earliest record.
func pick(cands []candidate, highest bool) candidate {
	best := cands[0]
	for _, c := range cands[1:] {
		cmp := c.value.Cmp(best.value)
		if !highest {
			cmp = -cmp
		}
		if cmp > 0 || (cmp == 0 && strings.Compare(c.code, best.code) < 0) {
			best = c
		}
	}
	return best
}

func leaderInsight(kind model.InsightKind, records []model.ConvertedRecord, basis, unit string, highest bool) (model.Insight, bool) {
	cands := eligible(records, basis)
	if len(cands) == 0 {
		return model.Insight{}, false
	}
	c := pick(cands, highest)
	return model.Insight{Kind: kind, Subject: []string{c.code}, Value: c.value, Unit: unit, Basis: basis}, true
}

func gapInsight(kind model.InsightKind, records []model.ConvertedRecord, basis, unit string) (model.Insight, bool) {
	cands := eligible(records, basis)
	if len(cands) < 2 {
		return model.Insight{}, false
	}
	top := pick(cands, true)
	rest := slices.DeleteFunc(slices.Clone(cands), func(c candidate) bool { return c.idx == top.idx })
	bottom := pick(rest, false)
	return model.Insight{
		Kind:    kind,
		Subject: []string{top.code, bottom.code},
		Value:   top.value.Sub(bottom.value),
		Unit:    unit,
		Basis:   basis,
	}, true
}
