package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"BourseLens/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FX.Mode != "live" || cfg.FX.Primary != "exchangeratehost" || cfg.FX.Secondary != "frankfurter" {
		t.Errorf("unexpected fx defaults %+v", cfg.FX)
	}
	if cfg.FX.Timeout != 10*time.Second || cfg.Schedule.ReportCron == "" || cfg.Database.SQLitePath == "" {
		t.Errorf("missing defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if cfg.TelegramEnabled() {
		t.Error("telegram should be off by default")
	}
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
fx:
  mode: average
  primary: yahoo
  timeout: 3s
  history_file: data/fx_history.csv
  pegs:
    HKD: 0.128
  range:
    preset: full_year
    year: 2024
input:
  records_file: data/gcc.csv
telegram:
  bot_token: file-token
  chat_id: "100"
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("FX_SECONDARY", "yahoo")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FX.Primary != "yahoo" || cfg.FX.Secondary != "yahoo" || cfg.FX.Timeout != 3*time.Second {
		t.Errorf("unexpected fx %+v", cfg.FX)
	}
	if cfg.FX.Pegs["HKD"] != 0.128 {
		t.Errorf("pegs not parsed: %v", cfg.FX.Pegs)
	}
	if cfg.Telegram.BotToken != "env-token" || !cfg.TelegramEnabled() {
		t.Errorf("env override not applied: %+v", cfg.Telegram)
	}
	mode, err := cfg.Mode()
	if err != nil || mode != model.ModeAverage {
		t.Errorf("mode = %v, %v", mode, err)
	}
	rng, err := cfg.DateRange(time.Date(2025, 10, 17, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if rng.Preset != model.PresetFullYear || rng.From.Year() != 2024 || rng.To.Month() != time.December {
		t.Errorf("unexpected range %+v", rng)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_BadTimeoutEnv(t *testing.T) {
	t.Setenv("FX_TIMEOUT", "soon")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected FX_TIMEOUT parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown mode", func(c *Config) { c.FX.Mode = "spot-ish" }},
		{"unknown primary", func(c *Config) { c.FX.Primary = "bloomberg" }},
		{"average without history", func(c *Config) { c.FX.Mode = "average"; c.FX.HistoryFile = "" }},
		{"custom range without bounds", func(c *Config) { c.FX.Range.Preset = "custom" }},
		{"inverted custom range", func(c *Config) {
			c.FX.Range.Preset = "custom"
			c.FX.Range.From = "2025-06-01"
			c.FX.Range.To = "2025-01-01"
		}},
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "x" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
