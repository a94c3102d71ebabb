package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"BourseLens/internal/model"
	"BourseLens/internal/report"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists reports to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while a scheduled run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			id            TEXT PRIMARY KEY,
			timestamp     INTEGER NOT NULL,
			fx_mode       TEXT NOT NULL,
			date_range    TEXT,
			record_count  INTEGER,
			insight_count INTEGER,
			unavailable   INTEGER,
			summary       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_ts ON reports(timestamp)`,

		`CREATE TABLE IF NOT EXISTS fx_quotes (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			report_id    TEXT NOT NULL,
			currency     TEXT NOT NULL,
			rate_to_usd  TEXT,
			source       TEXT,
			provider     TEXT,
			as_of        INTEGER,
			sample_count INTEGER,
			note         TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_quotes_currency ON fx_quotes(currency, as_of)`,

		`CREATE TABLE IF NOT EXISTS insights (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			report_id TEXT NOT NULL,
			position  INTEGER,
			kind      TEXT,
			subject   TEXT,
			value     TEXT,
			unit      TEXT,
			basis     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_insights_report ON insights(report_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordReport stores a report with its quotes and insights in one transaction.
func (r *SQLiteRecorder) RecordReport(rep *report.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	window := ""
	if rep.Window != nil {
		window = rep.Window.String()
	}
	unavailable := 0
	for _, c := range rep.Records {
		if !c.Quote.Available() {
			unavailable++
		}
	}
	if _, err := tx.Exec(`INSERT INTO reports
		(id, timestamp, fx_mode, date_range, record_count, insight_count, unavailable, summary)
		VALUES (?,?,?,?,?,?,?,?)`,
		rep.ID, rep.GeneratedAt.Unix(), rep.Mode.String(), window,
		len(rep.Records), len(rep.Insights), unavailable, rep.Summary,
	); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}

	for _, q := range rep.Quotes {
		if _, err := tx.Exec(`INSERT INTO fx_quotes
			(report_id, currency, rate_to_usd, source, provider, as_of, sample_count, note)
			VALUES (?,?,?,?,?,?,?,?)`,
			rep.ID, q.Currency, q.RateToUSD.String(), string(q.Source), q.Provider,
			q.AsOf.Unix(), q.SampleCount, q.Note,
		); err != nil {
			return fmt.Errorf("insert quote %s: %w", q.Currency, err)
		}
	}

	for i, ins := range rep.Insights {
		if _, err := tx.Exec(`INSERT INTO insights
			(report_id, position, kind, subject, value, unit, basis)
			VALUES (?,?,?,?,?,?,?)`,
			rep.ID, i, ins.Kind.String(), strings.Join(ins.Subject, ","),
			ins.Value.String(), ins.Unit, ins.Basis,
		); err != nil {
			return fmt.Errorf("insert insight %s: %w", ins.Kind, err)
		}
	}
	return tx.Commit()
}

// ListReports returns the most recent reports, newest first.
func (r *SQLiteRecorder) ListReports(limit int) ([]ReportRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, timestamp, fx_mode, date_range, record_count, insight_count, unavailable, summary
		FROM reports ORDER BY timestamp DESC, id LIMIT ?`, limitOrAll(limit))
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []ReportRow
	for rows.Next() {
		var row ReportRow
		var ts int64
		if err := rows.Scan(&row.ID, &ts, &row.Mode, &row.Window, &row.Records, &row.Insights, &row.Unavailable, &row.Summary); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		row.GeneratedAt = time.Unix(ts, 0).UTC()
		out = append(out, row)
	}
	return out, rows.Err()
}

// ListQuotes returns stored quotes for a currency (all currencies when empty), newest first.
func (r *SQLiteRecorder) ListQuotes(currency string, limit int) ([]QuoteRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `SELECT report_id, currency, rate_to_usd, source, provider, as_of, sample_count FROM fx_quotes`
	args := []any{}
	if currency != "" {
		query += ` WHERE currency = ?`
		args = append(args, strings.ToUpper(currency))
	}
	query += ` ORDER BY as_of DESC, id DESC LIMIT ?`
	args = append(args, limitOrAll(limit))

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	var out []QuoteRow
	for rows.Next() {
		var q QuoteRow
		var ts int64
		if err := rows.Scan(&q.ReportID, &q.Currency, &q.Rate, &q.Source, &q.Provider, &ts, &q.SampleCount); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		q.AsOf = time.Unix(ts, 0).UTC()
		if q.Rate == "" {
			q.Rate = model.NotAvailable
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func limitOrAll(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
