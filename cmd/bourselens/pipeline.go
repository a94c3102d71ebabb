package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"BourseLens/internal/collector"
	"BourseLens/internal/config"
	"BourseLens/internal/fx"
	"BourseLens/internal/loader"
	"BourseLens/internal/model"
	"BourseLens/internal/report"
)

// newResolver wires the configured live sources and registered pegs.
func newResolver(cfg *config.Config) (*fx.Resolver, error) {
	opts := collector.Options{APIKey: cfg.FX.APIKey, Proxy: cfg.Proxy, Timeout: cfg.FX.Timeout}
	primary, err := collector.New(cfg.FX.Primary, opts)
	if err != nil {
		return nil, fmt.Errorf("primary source: %w", err)
	}
	// API keys belong to the primary provider only.
	opts.APIKey = ""
	secondary, err := collector.New(cfg.FX.Secondary, opts)
	if err != nil {
		return nil, fmt.Errorf("secondary source: %w", err)
	}
	log.Printf("[INFO] fx sources: primary=%s secondary=%s", primary.Name(), secondary.Name())

	r := fx.NewResolver(primary, secondary)
	r.Pegs = r.Pegs.With(cfg.FX.Pegs)
	r.Timeout = cfg.FX.Timeout
	return r, nil
}

// fxOptions builds the mode-specific context for one generation.
func fxOptions(cfg *config.Config, asOf time.Time) (report.Options, error) {
	mode, err := cfg.Mode()
	if err != nil {
		return report.Options{}, err
	}
	window, err := cfg.DateRange(asOf)
	if err != nil {
		return report.Options{}, fmt.Errorf("fx.range: %w", err)
	}

	switch mode {
	case model.ModeManual:
		rates, err := loader.ManualRates(cfg.FX.ManualRates)
		if err != nil {
			return report.Options{}, fmt.Errorf("fx.manual_rates: %w", err)
		}
		if cfg.FX.ManualRatesFile != "" {
			fromFile, err := readFile(cfg.FX.ManualRatesFile, loader.ReadManualRates)
			if err != nil {
				return report.Options{}, err
			}
			// Inline entries win over the file.
			for code, rate := range fromFile {
				if _, ok := rates[code]; !ok {
					rates[code] = rate
				}
			}
		}
		return report.Options{FX: fx.Manual{Rates: rates}, Window: &window}, nil
	case model.ModeAverage:
		obs, err := readFile(cfg.FX.HistoryFile, loader.ReadObservations)
		if err != nil {
			return report.Options{}, err
		}
		return report.Options{FX: fx.Average{Observations: obs, Window: window}, Window: &window}, nil
	default:
		return report.Options{FX: fx.Live{}, Window: &window}, nil
	}
}

func readFile[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	v, err := parse(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// generate runs one full report: load, resolve, convert, derive, write.
func generate(ctx context.Context, cfg *config.Config, asm *report.Assembler) (*report.Report, error) {
	records, err := readFile(cfg.Input.RecordsFile, loader.ReadRecords)
	if err != nil {
		return nil, err
	}
	opts, err := fxOptions(cfg, asm.Now())
	if err != nil {
		return nil, err
	}
	rep, err := asm.Generate(ctx, records, opts)
	if err != nil {
		return nil, err
	}
	if err := writeOutputs(cfg, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

func writeOutputs(cfg *config.Config, rep *report.Report) error {
	outputs := []struct {
		path  string
		write func(io.Writer) error
	}{
		{cfg.Output.JSONPath, rep.WriteJSON},
		{cfg.Output.CSVPath, rep.WriteCSV},
		{cfg.Output.QuotesCSVPath, rep.WriteQuotesCSV},
	}
	for _, o := range outputs {
		if o.path == "" {
			continue
		}
		if err := writeFile(o.path, o.write); err != nil {
			return err
		}
		log.Printf("[INFO] wrote %s", o.path)
	}
	return nil
}

// writeFile writes through a unique temp file in the target directory so readers
// never see a partial export and concurrent writers never share a temp file.
func writeFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmp := f.Name()
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("chmod %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
