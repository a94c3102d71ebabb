package insight

import (
	"fmt"
	"slices"
	"strings"

	"BourseLens/internal/display"
	"BourseLens/internal/model"

	"github.com/shopspring/decimal"
)

// Describe renders one insight as a sentence.
func Describe(ins model.Insight) string {
	subject := strings.Join(ins.Subject, ", ")
	value := display.Value(ins)
	switch ins.Kind {
	case model.TopPerformer:
		if ins.Value.IsNegative() {
			return fmt.Sprintf("All exchanges are negative year to date; %s declined the least at %s.", subject, value)
		}
		return fmt.Sprintf("%s leads YTD performance at %s.", subject, value)
	case model.BottomPerformer:
		return fmt.Sprintf("%s trails YTD performance at %s.", subject, value)
	case model.LiquidityLeader:
		return fmt.Sprintf("%s shows the highest liquidity with %s average daily traded value.", subject, value)
	case model.CapLeader:
		return fmt.Sprintf("%s is the largest market by capitalization at %s.", subject, value)
	case model.PerformanceGap:
		return fmt.Sprintf("%s separate the best (%s) from the weakest (%s) performer.", value, ins.Subject[0], ins.Subject[1])
	case model.LiquidityGap:
		return fmt.Sprintf("%s more is traded daily on %s than on %s.", value, ins.Subject[0], ins.Subject[1])
	}
	return fmt.Sprintf("%s: %s %s", ins.Kind, subject, value)
}

// Summary writes a short executive paragraph over the converted dataset.
func Summary(records []model.ConvertedRecord, window *model.DateRange) string {
	regions := map[string]struct{}{}
	for _, r := range records {
		regions[r.Region] = struct{}{}
	}
	var parts []string
	lead := fmt.Sprintf("This analysis compares %d stock exchanges across %d regions", len(records), len(regions))
	if window != nil {
		lead += " for " + window.String()
	}
	parts = append(parts, lead+".")

	ytd := eligible(records, model.BasisYTD)
	if len(ytd) > 0 {
		sum := decimal.Zero
		positive := 0
		for _, c := range ytd {
			sum = sum.Add(c.value)
			if c.value.IsPositive() {
				positive++
			}
		}
		avg := sum.Div(decimal.NewFromInt(int64(len(ytd))))
		parts = append(parts, fmt.Sprintf("Average YTD performance is %s, with %d of %d exchanges showing positive returns.",
			display.Percent(model.Some(avg)), positive, len(ytd)))
	}

	caps := eligible(records, model.BasisMarketCap)
	if len(caps) > 0 {
		total := decimal.Zero
		for _, c := range caps {
			total = total.Add(c.value)
		}
		parts = append(parts, fmt.Sprintf("Combined market capitalization totals %s.", display.Compact(total, "USD")))
	}

	currencies := map[string]struct{}{}
	for _, r := range records {
		currencies[r.LocalCurrency] = struct{}{}
	}
	if len(currencies) > 1 {
		codes := make([]string, 0, len(currencies))
		for c := range currencies {
			codes = append(codes, c)
		}
		slices.Sort(codes)
		parts = append(parts, fmt.Sprintf("Figures were unified to USD from %d currencies (%s).", len(codes), strings.Join(codes, ", ")))
	}

	missing := 0
	for _, r := range records {
		if !r.YTD().Valid || !r.MarketCapUSD.Valid || !r.ADTVUSD.Valid {
			missing++
		}
	}
	if missing > 0 {
		parts = append(parts, fmt.Sprintf("%d exchange(s) have incomplete data marked as N/A; insights use available data only.", missing))
	}
	return strings.Join(parts, " ")
}
