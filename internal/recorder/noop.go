package recorder

import "BourseLens/internal/report"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordReport(_ *report.Report) error            { return nil }
func (n *NoopRecorder) ListReports(_ int) ([]ReportRow, error)         { return nil, nil }
func (n *NoopRecorder) ListQuotes(_ string, _ int) ([]QuoteRow, error) { return nil, nil }
func (n *NoopRecorder) Close() error                                   { return nil }
