package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"BourseLens/internal/display"
	"BourseLens/internal/fx"
	"BourseLens/internal/loader"
	"BourseLens/internal/metrics"
	"BourseLens/internal/model"
	"BourseLens/internal/notifier"
	"BourseLens/internal/recorder"
	"BourseLens/internal/report"
	"BourseLens/internal/scheduler"

	"github.com/spf13/cobra"
)

// --- Report Command ---

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate one report and write the exports",
	Long: `Generate one report from the records file.

Examples:
  bourselens report --input data/gcc.csv --json out/report.json
  bourselens report --mode manual --rates data/manual_rates.yaml
  bourselens report --mode average --history data/fx_history.csv --preset full_year --year 2024`,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyReportFlags(cmd)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config validation: %w", err)
		}
		resolver, err := newResolver(cfg)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rep, err := generate(ctx, cfg, report.NewAssembler(resolver))
		if err != nil {
			return err
		}
		printReport(rep)
		return nil
	},
}

func init() {
	f := reportCmd.Flags()
	f.String("mode", "", "fx mode: live, manual or average")
	f.String("input", "", "records CSV file")
	f.String("json", "", "write the JSON export here")
	f.String("csv", "", "write the flat CSV export here")
	f.String("quotes-csv", "", "write the FX audit table here")
	f.String("rates", "", "manual rates YAML file (manual mode)")
	f.String("history", "", "FX observations CSV file (average mode)")
	f.String("preset", "", "date range preset: ytd, full_year or custom")
	f.Int("year", 0, "date range year")
	f.String("from", "", "custom range start (YYYY-MM-DD)")
	f.String("to", "", "custom range end (YYYY-MM-DD)")
}

func applyReportFlags(cmd *cobra.Command) {
	set := func(name string, dst *string) {
		if v, _ := cmd.Flags().GetString(name); v != "" {
			*dst = v
		}
	}
	set("mode", &cfg.FX.Mode)
	set("input", &cfg.Input.RecordsFile)
	set("json", &cfg.Output.JSONPath)
	set("csv", &cfg.Output.CSVPath)
	set("quotes-csv", &cfg.Output.QuotesCSVPath)
	set("rates", &cfg.FX.ManualRatesFile)
	set("history", &cfg.FX.HistoryFile)
	set("preset", &cfg.FX.Range.Preset)
	set("from", &cfg.FX.Range.From)
	set("to", &cfg.FX.Range.To)
	if y, _ := cmd.Flags().GetInt("year"); y != 0 {
		cfg.FX.Range.Year = y
	}
}

func printReport(rep *report.Report) {
	fmt.Printf("📊 Report %s | FX %s | %s\n\n", rep.ID, rep.Mode, rep.GeneratedAt.Format(time.RFC3339))
	fmt.Println(rep.Summary)
	fmt.Println()
	for _, c := range rep.Records {
		fmt.Printf("  %-10s %-8s YTD %-8s cap %-10s ADTV %-10s [%s]\n",
			c.Exchange, c.LocalCurrency, display.Percent(c.YTD()), display.USD(c.MarketCapUSD), display.USD(c.ADTVUSD), c.Quote.Source)
	}
	if len(rep.Insights) > 0 {
		fmt.Println()
		for _, line := range rep.Narrative() {
			fmt.Println("  • " + line)
		}
	}
}

// --- Run Command ---

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate reports on a schedule",
	Long:  "Run the report job on schedule.report_cron, record each report to SQLite, send Telegram digests and serve /metrics.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config validation: %w", err)
		}
		log.Println("[INFO] BourseLens starting...")

		resolver, err := newResolver(cfg)
		if err != nil {
			return err
		}
		asm := report.NewAssembler(resolver)

		rec := openRecorder()
		defer rec.Close()

		var n notifier.Notifier = notifier.NoopNotifier{}
		var tn *notifier.TelegramNotifier
		if cfg.TelegramEnabled() {
			tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
			n = tn
		}

		// Context for graceful shutdown
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sched := scheduler.NewScheduler(ctx, func(ctx context.Context) (*report.Report, error) {
			return generate(ctx, cfg, asm)
		}, n, rec, resolver.Pegs)
		if err := sched.Register(cfg.Schedule.ReportCron); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()

		if cfg.Metrics.ListenAddr != "" {
			srv := &http.Server{Addr: cfg.Metrics.ListenAddr, Handler: metricsMux()}
			go func() {
				log.Printf("[INFO] metrics listening on %s", cfg.Metrics.ListenAddr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Printf("[ERROR] metrics server: %v", err)
				}
			}()
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(shutdownCtx)
			}()
		}

		if tn != nil && cfg.Telegram.Polling {
			go tn.StartPolling(ctx, sched.HandleCommand)
			log.Println("[INFO] Telegram polling started")
		}

		if cfg.Schedule.RunOnStart {
			log.Println("[INFO] run_on_start enabled, generating a report now")
			go sched.RunNow()
		}

		log.Printf("[INFO] BourseLens is running (%s). Press Ctrl+C to stop.", cfg.Schedule.ReportCron)
		<-ctx.Done()
		log.Println("[INFO] shutdown signal received, stopping...")
		return nil
	},
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	return mux
}

func openRecorder() recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
		log.Printf("[WARN] create database dir: %v", err)
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}

// --- History Command ---

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded reports, or stored FX quotes with --currency",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		currency, _ := cmd.Flags().GetString("currency")

		rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			return err
		}
		defer rec.Close()

		if currency != "" {
			quotes, err := rec.ListQuotes(currency, limit)
			if err != nil {
				return err
			}
			for _, q := range quotes {
				fmt.Printf("%s  %s  %-12s %-18s %s\n", q.AsOf.Format("2006-01-02 15:04"), q.Currency, q.Rate, q.Source, q.ReportID)
			}
			return nil
		}

		rows, err := rec.ListReports(limit)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Println("No reports recorded yet.")
		}
		for _, r := range rows {
			fmt.Printf("%s  %-7s %2d exchanges  %d insights  %d unpriced  %s\n",
				r.GeneratedAt.Format("2006-01-02 15:04"), r.Mode, r.Records, r.Insights, r.Unavailable, r.ID)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum rows to list")
	historyCmd.Flags().String("currency", "", "list stored FX quotes for this currency")
}

// --- Pegs Command ---

var pegsCmd = &cobra.Command{
	Use:   "pegs",
	Short: "Show the pegged currencies in use",
	Run: func(cmd *cobra.Command, args []string) {
		pegs := fx.DefaultPegs().With(cfg.FX.Pegs)
		for _, code := range pegs.Currencies() {
			rate, _ := pegs.Lookup(code)
			fmt.Printf("%s  %s USD\n", code, rate)
		}
	},
}

// --- Template Command ---

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write a blank records CSV for the exchange catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		out, _ := cmd.Flags().GetString("out")
		force, _ := cmd.Flags().GetBool("force")

		exchanges := model.Catalogue(all)
		write := func(w io.Writer) error { return loader.WriteTemplate(w, exchanges) }
		if out == "" || out == "-" {
			return write(os.Stdout)
		}
		if _, err := os.Stat(out); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", out)
		}
		if err := writeFile(out, write); err != nil {
			return err
		}
		log.Printf("[INFO] wrote template with %d exchanges to %s", len(exchanges), out)
		return nil
	},
}

func init() {
	templateCmd.Flags().Bool("all", false, "include the optional exchanges")
	templateCmd.Flags().StringP("out", "o", "", "output path (default stdout)")
	templateCmd.Flags().Bool("force", false, "overwrite an existing file")
}
