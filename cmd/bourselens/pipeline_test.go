package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"BourseLens/internal/config"
	"BourseLens/internal/fx"
	"BourseLens/internal/loader"
	"BourseLens/internal/metrics"
	"BourseLens/internal/model"
	"BourseLens/internal/report"

	"github.com/shopspring/decimal"
)

var asOf = time.Date(2025, 10, 17, 12, 0, 0, 0, time.UTC)

func testConfig(t *testing.T, files map[string]string) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	c, err := config.Load(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	return c, dir
}

func TestFxOptions_ManualMergesInlineOverFile(t *testing.T) {
	c, dir := testConfig(t, map[string]string{"rates.yaml": "KWD: 3.25\nEGP: 0.02\n"})
	c.FX.Mode = "manual"
	c.FX.ManualRates = map[string]string{"KWD": "3.30"}
	c.FX.ManualRatesFile = filepath.Join(dir, "rates.yaml")

	opts, err := fxOptions(c, asOf)
	if err != nil {
		t.Fatal(err)
	}
	m, ok := opts.FX.(fx.Manual)
	if !ok {
		t.Fatalf("expected manual context, got %T", opts.FX)
	}
	if !m.Rates["KWD"].Equal(decimal.RequireFromString("3.30")) || !m.Rates["EGP"].Equal(decimal.RequireFromString("0.02")) {
		t.Errorf("unexpected rates %v", m.Rates)
	}
	if opts.Window == nil || opts.Window.Preset != model.PresetYTD {
		t.Errorf("expected YTD window, got %+v", opts.Window)
	}
}

func TestFxOptions_AverageReadsHistory(t *testing.T) {
	c, dir := testConfig(t, map[string]string{"history.csv": "date,currency,rate\n2025-02-03,EGP,0.0198\n2025-05-05,EGP,0.0202\n"})
	c.FX.Mode = "average"
	c.FX.HistoryFile = filepath.Join(dir, "history.csv")

	opts, err := fxOptions(c, asOf)
	if err != nil {
		t.Fatal(err)
	}
	avg, ok := opts.FX.(fx.Average)
	if !ok || len(avg.Observations) != 2 || !avg.Window.To.Equal(model.Day(asOf)) {
		t.Errorf("unexpected average context %+v", opts.FX)
	}

	c.FX.HistoryFile = filepath.Join(dir, "nope.csv")
	if _, err := fxOptions(c, asOf); err == nil {
		t.Error("expected missing history error")
	}
}

func TestGenerate_WritesExports(t *testing.T) {
	c, dir := testConfig(t, map[string]string{"records.csv": `region,exchange,index_name,local_currency,ytd_percent,market_cap_local,adtv_local
UAE,DFM,DFMGI,AED,5.23,750000000000,450000000
UAE,ADX,FADGI,AED,3.10,900000000000,300000000
USA,NYSE,NYA,USD,12.4,,
`})
	c.Input.RecordsFile = filepath.Join(dir, "records.csv")
	c.Output.JSONPath = filepath.Join(dir, "out", "report.json")
	c.Output.CSVPath = filepath.Join(dir, "out", "report.csv")

	resolver, err := newResolver(c)
	if err != nil {
		t.Fatal(err)
	}
	asm := report.NewAssembler(resolver)
	asm.Now = func() time.Time { return asOf }

	// AED is pegged and USD is identity, so no live source is contacted.
	rep, err := generate(context.Background(), c, asm)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Records) != 3 || len(rep.Quotes) != 2 {
		t.Fatalf("unexpected report: %d records, %d quotes", len(rep.Records), len(rep.Quotes))
	}

	data, err := os.ReadFile(c.Output.JSONPath)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("invalid JSON export: %v", err)
	}
	if _, err := os.Stat(c.Output.CSVPath); err != nil {
		t.Errorf("csv export missing: %v", err)
	}
	if left, _ := filepath.Glob(filepath.Join(dir, "out", "*.tmp")); len(left) != 0 {
		t.Errorf("temp files left behind: %v", left)
	}
}

func TestGenerate_RejectsInvalidInput(t *testing.T) {
	c, dir := testConfig(t, map[string]string{"records.csv": "region,exchange,index_name,local_currency,ytd_percent\nUAE,DFM,DFMGI,AED,\n"})
	c.Input.RecordsFile = filepath.Join(dir, "records.csv")
	resolver, err := newResolver(c)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := generate(context.Background(), c, report.NewAssembler(resolver)); err == nil {
		t.Error("expected validation error")
	}
}

func TestWriteFile_ConcurrentWritersSamePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	slowWrite := func(body string) func(io.Writer) error {
		return func(w io.Writer) error {
			for _, chunk := range strings.SplitAfter(body, ",") {
				if _, err := io.WriteString(w, chunk); err != nil {
					return err
				}
				time.Sleep(5 * time.Millisecond)
			}
			return nil
		}
	}
	bodies := []string{`{"run":"a","n":1,"m":2}`, `{"run":"b","n":3,"m":4}`}

	var wg sync.WaitGroup
	errs := make([]error, len(bodies))
	for i, body := range bodies {
		wg.Add(1)
		go func(i int, body string) {
			defer wg.Done()
			errs[i] = writeFile(path, slowWrite(body))
		}(i, body)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("writer %d: %v", i, err)
		}
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != bodies[0] && string(got) != bodies[1] {
		t.Errorf("export mixes writers: %s", got)
	}
	if left, _ := filepath.Glob(path + ".*.tmp"); len(left) != 0 {
		t.Errorf("temp files left behind: %v", left)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Errorf("unexpected mode %v", info.Mode())
	}
}

func TestMetricsMux_ServesMetricsAndHealth(t *testing.T) {
	metrics.ReportsGenerated.WithLabelValues("ok").Add(0)
	srv := httptest.NewServer(metricsMux())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/metrics status %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "bourselens_reports_generated_total") {
		t.Errorf("/metrics does not expose the report counter:\n%s", body)
	}

	resp, err = http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("/healthz = %d %q", resp.StatusCode, body)
	}
}

func TestSampleRecordsLoad(t *testing.T) {
	records, err := readFile(filepath.Join("..", "..", "data", "exchanges.csv"), loader.ReadRecords)
	if err != nil {
		t.Fatalf("sample records rejected: %v", err)
	}
	if len(records) != 4 || records[0].Exchange != "DFM" {
		t.Errorf("unexpected sample records %+v", records)
	}
}

func TestTemplateCmd_WritesFileOnce(t *testing.T) {
	out := filepath.Join(t.TempDir(), "exchanges.csv")
	templateCmd.Flags().Set("out", out)
	templateCmd.Flags().Set("all", "true")
	t.Cleanup(func() {
		templateCmd.Flags().Set("out", "")
		templateCmd.Flags().Set("all", "false")
	})

	if err := templateCmd.RunE(templateCmd, nil); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if want := 1 + len(model.Catalogue(true)); len(lines) != want {
		t.Errorf("template has %d lines, want %d", len(lines), want)
	}
	if err := templateCmd.RunE(templateCmd, nil); err == nil || !strings.Contains(err.Error(), "--force") {
		t.Errorf("expected refusal to overwrite, got %v", err)
	}
}
