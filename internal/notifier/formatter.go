package notifier

import (
	"fmt"
	"html"
	"strings"

	"BourseLens/internal/display"
	"BourseLens/internal/fx"
	"BourseLens/internal/model"
	"BourseLens/internal/recorder"
	"BourseLens/internal/report"
)

// FormatReportDigest formats a generated report into a Telegram message.
func FormatReportDigest(rep *report.Report) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>BourseLens report</b> | %s | FX %s\n", rep.GeneratedAt.Format(model.DateLayout), rep.Mode))
	if rep.Window != nil {
		b.WriteString(fmt.Sprintf("Period: %s\n", html.EscapeString(rep.Window.String())))
	}
	b.WriteString("\n")

	b.WriteString("🏛 <b>Exchanges (USD):</b>\n")
	for _, c := range rep.Records {
		b.WriteString(fmt.Sprintf("  %s: YTD %s | cap %s | ADTV %s\n",
			html.EscapeString(c.Exchange), display.Percent(c.YTD()), display.USD(c.MarketCapUSD), display.USD(c.ADTVUSD)))
	}

	if len(rep.Insights) > 0 {
		b.WriteString("\n💡 <b>Insights:</b>\n")
		for _, line := range rep.Narrative() {
			b.WriteString("  • " + html.EscapeString(line) + "\n")
		}
	}

	b.WriteString("\n💱 <b>FX rates:</b>\n")
	for _, q := range rep.Quotes {
		line := fmt.Sprintf("  %s: %s (%s)", q.Currency, display.Rate(q.RateToUSD), q.Source)
		switch {
		case !q.Available():
			line += " ⚠️ " + html.EscapeString(q.Note)
		case q.Note != "":
			line += ", " + html.EscapeString(q.Note)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// FormatPegs lists the fixed rates in use.
func FormatPegs(pegs fx.PegTable) string {
	var b strings.Builder
	b.WriteString("📌 <b>Pegged currencies</b>\n\n")
	for _, code := range pegs.Currencies() {
		rate, _ := pegs.Lookup(code)
		b.WriteString(fmt.Sprintf("%s: %s USD\n", code, rate.String()))
	}
	return b.String()
}

// FormatHistory lists recently stored reports.
func FormatHistory(rows []recorder.ReportRow) string {
	if len(rows) == 0 {
		return "No reports recorded yet."
	}
	var b strings.Builder
	b.WriteString("🗂 <b>Recent reports</b>\n\n")
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("%s %s: %d exchanges, %d insights", r.GeneratedAt.Format("2006-01-02 15:04"), r.Mode, r.Records, r.Insights))
		if r.Unavailable > 0 {
			b.WriteString(fmt.Sprintf(", %d unpriced", r.Unavailable))
		}
		b.WriteString("\n")
	}
	return b.String()
}
