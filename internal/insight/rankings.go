package insight

import (
	"cmp"
	"slices"

	"BourseLens/internal/model"

	"github.com/shopspring/decimal"
)

// Ranked is one exchange's position in a ranking.
type Ranked struct {
	Exchange string
	Value    decimal.Decimal
}

// Rankings orders every eligible exchange per basis. Records with an N/A basis
// field are left out of that ranking only.
type Rankings struct {
	YTDBest          []Ranked
	YTDWorst         []Ranked
	MarketCapLargest []Ranked
	ADTVHighest      []Ranked
}

// Rank builds the full rankings. Equal values are ordered by exchange code, then
// by input position, the same tie-break the leader insights use.
func Rank(records []model.ConvertedRecord) Rankings {
	return Rankings{
		YTDBest:          rank(records, model.BasisYTD, true),
		YTDWorst:         rank(records, model.BasisYTD, false),
		MarketCapLargest: rank(records, model.BasisMarketCap, true),
		ADTVHighest:      rank(records, model.BasisADTV, true),
	}
}

func rank(records []model.ConvertedRecord, basis string, highest bool) []Ranked {
	cands := eligible(records, basis)
	slices.SortFunc(cands, func(a, b candidate) int {
		c := a.value.Cmp(b.value)
		if highest {
			c = -c
		}
		if c != 0 {
			return c
		}
		if c = cmp.Compare(a.code, b.code); c != 0 {
			return c
		}
		return cmp.Compare(a.idx, b.idx)
	})
	out := make([]Ranked, len(cands))
	for i, c := range cands {
		out[i] = Ranked{Exchange: c.code, Value: c.value}
	}
	return out
}
