package recorder

import (
	"time"

	"BourseLens/internal/report"
)

// ReportRow is one stored report, as listed by the history command.
type ReportRow struct {
	ID          string
	GeneratedAt time.Time
	Mode        string
	Window      string
	Records     int
	Insights    int
	Unavailable int // records whose currency could not be priced
	Summary     string
}

// QuoteRow is one stored FX quote.
type QuoteRow struct {
	ReportID    string
	Currency    string
	Rate        string // decimal text, or N/A
	Source      string
	Provider    string
	AsOf        time.Time
	SampleCount int
}

// Recorder persists generated reports for later inspection.
type Recorder interface {
	RecordReport(rep *report.Report) error
	ListReports(limit int) ([]ReportRow, error)
	ListQuotes(currency string, limit int) ([]QuoteRow, error)
	Close() error
}
