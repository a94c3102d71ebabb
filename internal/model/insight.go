package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InsightKind enumerates the comparative facts, in emission order.
type InsightKind int

const (
	TopPerformer InsightKind = iota
	BottomPerformer
	LiquidityLeader
	CapLeader
	PerformanceGap
	LiquidityGap
)

// InsightKinds lists every kind in the fixed order insights are emitted.
var InsightKinds = []InsightKind{TopPerformer, BottomPerformer, LiquidityLeader, CapLeader, PerformanceGap, LiquidityGap}

var insightKindNames = [...]string{
	TopPerformer:    "TOP_PERFORMER",
	BottomPerformer: "BOTTOM_PERFORMER",
	LiquidityLeader: "LIQUIDITY_LEADER",
	CapLeader:       "CAP_LEADER",
	PerformanceGap:  "PERFORMANCE_GAP",
	LiquidityGap:    "LIQUIDITY_GAP",
}

func (k InsightKind) String() string {
	if k >= 0 && int(k) < len(insightKindNames) {
		return insightKindNames[k]
	}
	return fmt.Sprintf("InsightKind(%d)", int(k))
}

func (k InsightKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *InsightKind) UnmarshalText(b []byte) error {
	for i, name := range insightKindNames {
		if name == string(b) {
			*k = InsightKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown insight kind %q", b)
}

// Basis field names.
const (
	BasisYTD       = "ytd_percent"
	BasisMarketCap = "market_cap_usd"
	BasisADTV      = "adtv_usd"
)

// Units of Insight.Value.
const (
	UnitPercent = "%"
	UnitPoints  = "pp"
	UnitUSD     = "USD"
)

// Insight is one derived comparative fact. Subject holds one exchange code,
// or two (leader first) for gap insights.
type Insight struct {
	Kind    InsightKind     `json:"kind"`
	Subject []string        `json:"subject"`
	Value   decimal.Decimal `json:"value"`
	Unit    string          `json:"unit"`
	Basis   string          `json:"basis"`
}
