package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"BourseLens/internal/collector"
	"BourseLens/internal/model"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	FX struct {
		Mode            string             `yaml:"mode"`
		Primary         string             `yaml:"primary"`
		Secondary       string             `yaml:"secondary"`
		APIKey          string             `yaml:"api_key"`
		Timeout         time.Duration      `yaml:"timeout"`
		Pegs            map[string]float64 `yaml:"pegs"`
		ManualRates     map[string]string  `yaml:"manual_rates"`
		ManualRatesFile string             `yaml:"manual_rates_file"`
		HistoryFile     string             `yaml:"history_file"`
		Range           struct {
			Preset string `yaml:"preset"`
			Year   int    `yaml:"year"`
			From   string `yaml:"from"`
			To     string `yaml:"to"`
		} `yaml:"range"`
	} `yaml:"fx"`
	Input struct {
		RecordsFile string `yaml:"records_file"`
	} `yaml:"input"`
	Output struct {
		JSONPath      string `yaml:"json_path"`
		CSVPath       string `yaml:"csv_path"`
		QuotesCSVPath string `yaml:"quotes_csv_path"`
	} `yaml:"output"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		Polling  bool   `yaml:"polling"`
	} `yaml:"telegram"`
	Schedule struct {
		ReportCron string `yaml:"report_cron"`
		RunOnStart bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"metrics"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("FX_MODE"); v != "" {
		cfg.FX.Mode = v
	}
	if v := os.Getenv("FX_PRIMARY"); v != "" {
		cfg.FX.Primary = v
	}
	if v := os.Getenv("FX_SECONDARY"); v != "" {
		cfg.FX.Secondary = v
	}
	if v := os.Getenv("FX_API_KEY"); v != "" {
		cfg.FX.APIKey = v
	}
	if v := os.Getenv("FX_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("FX_TIMEOUT: %w", err)
		}
		cfg.FX.Timeout = d
	}
	if v := os.Getenv("RECORDS_FILE"); v != "" {
		cfg.Input.RecordsFile = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("REPORT_CRON"); v != "" {
		cfg.Schedule.ReportCron = v
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Schedule.RunOnStart = b
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.ListenAddr = v
	}

	// Defaults
	if cfg.FX.Mode == "" {
		cfg.FX.Mode = "live"
	}
	if cfg.FX.Primary == "" {
		cfg.FX.Primary = collector.NameExchangeRateHost
	}
	if cfg.FX.Secondary == "" {
		cfg.FX.Secondary = collector.NameFrankfurter
	}
	if cfg.FX.Timeout == 0 {
		cfg.FX.Timeout = 10 * time.Second
	}
	if cfg.FX.Range.Preset == "" {
		cfg.FX.Range.Preset = string(model.PresetYTD)
	}
	if cfg.Input.RecordsFile == "" {
		cfg.Input.RecordsFile = "data/exchanges.csv"
	}
	if cfg.Schedule.ReportCron == "" {
		cfg.Schedule.ReportCron = "0 0 18 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/bourselens.db"
	}

	return cfg, nil
}

// Validate checks that the configured values are usable.
func (c *Config) Validate() error {
	mode, err := c.Mode()
	if err != nil {
		return err
	}
	if _, err := collector.New(c.FX.Primary, collector.Options{}); err != nil {
		return fmt.Errorf("fx.primary: %w", err)
	}
	if _, err := collector.New(c.FX.Secondary, collector.Options{}); err != nil {
		return fmt.Errorf("fx.secondary: %w", err)
	}
	if c.FX.Timeout <= 0 {
		return fmt.Errorf("fx.timeout must be positive")
	}
	if mode == model.ModeAverage && c.FX.HistoryFile == "" {
		return fmt.Errorf("fx.history_file is required in average mode")
	}
	if _, err := c.DateRange(time.Now()); err != nil {
		return fmt.Errorf("fx.range: %w", err)
	}
	if c.Input.RecordsFile == "" {
		return fmt.Errorf("input.records_file is required")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// Mode parses fx.mode.
func (c *Config) Mode() (model.Mode, error) {
	m, err := model.ParseMode(c.FX.Mode)
	if err != nil {
		return 0, fmt.Errorf("fx.mode: %w", err)
	}
	return m, nil
}

// DateRange builds the reporting period from fx.range. The year defaults to asOf's year.
func (c *Config) DateRange(asOf time.Time) (model.DateRange, error) {
	preset, err := model.ParsePreset(c.FX.Range.Preset)
	if err != nil {
		return model.DateRange{}, err
	}
	year := c.FX.Range.Year
	if year == 0 {
		year = asOf.Year()
	}
	var from, to time.Time
	if c.FX.Range.From != "" {
		if from, err = model.ParseDay(c.FX.Range.From); err != nil {
			return model.DateRange{}, err
		}
	}
	if c.FX.Range.To != "" {
		if to, err = model.ParseDay(c.FX.Range.To); err != nil {
			return model.DateRange{}, err
		}
	}
	return model.NewDateRange(preset, year, asOf, from, to)
}

// TelegramEnabled reports whether digests should be sent.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
