package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"TDSentinel/internal/scanner"
	"TDSentinel/internal/sequential"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		BaseURL    string `yaml:"base_url"`
		DataURL    string `yaml:"data_url"`
		SessionKey string `yaml:"session_key"`
	} `yaml:"data_source"`
	Scanner struct {
		Segment        string  `yaml:"segment"`
		MinAvgVolume   float64 `yaml:"min_avg_volume"`
		VolumeLookback int     `yaml:"volume_lookback"`
		MaxInstruments int     `yaml:"max_instruments"`
		HistoryDays    int     `yaml:"history_days"`
		IntradayDays   int     `yaml:"intraday_days"`
	} `yaml:"scanner"`
	Engine struct {
		OscillatorPeriod      int    `yaml:"oscillator_period"`
		VolumeWindow          int    `yaml:"volume_window"`
		CancelThreshold       int    `yaml:"cancel_threshold"`
		DisableRecycling      bool   `yaml:"disable_recycling"`
		RequireSetupNine      bool   `yaml:"require_setup_nine"`
		SetupActiveWindow     int    `yaml:"setup_active_window"`
		CountdownActiveWindow int    `yaml:"countdown_active_window"`
		RecencyEvent          string `yaml:"recency_event"`
	} `yaml:"engine"`
	Schedule struct {
		ScanCron string `yaml:"scan_cron"`
		// IntradayCron optionally triggers extra scans during market
		// hours; empty disables it.
		IntradayCron string `yaml:"intraday_cron"`
	} `yaml:"schedule"`
	Journal struct {
		StateFile string `yaml:"state_file"`
	} `yaml:"journal"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
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
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("DEFINEDGE_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DEFINEDGE_DATA_URL"); v != "" {
		cfg.DataSource.DataURL = v
	}
	if v := os.Getenv("DEFINEDGE_SESSION_KEY"); v != "" {
		cfg.DataSource.SessionKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_SCAN"); v != "" {
		cfg.Schedule.ScanCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("MIN_AVG_VOLUME"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Scanner.MinAvgVolume = f
		}
	}

	// Defaults
	if cfg.DataSource.BaseURL == "" {
		cfg.DataSource.BaseURL = "https://app.definedgesecurities.com"
	}
	if cfg.DataSource.DataURL == "" {
		cfg.DataSource.DataURL = "https://data.definedgesecurities.com"
	}
	if cfg.Scanner.Segment == "" {
		cfg.Scanner.Segment = "NSE"
	}
	if cfg.Scanner.MinAvgVolume == 0 {
		cfg.Scanner.MinAvgVolume = 100000
	}
	if cfg.Schedule.ScanCron == "" {
		// Weekdays at 16:00 IST, after the NSE close.
		cfg.Schedule.ScanCron = "0 0 16 * * 1-5"
	}
	if cfg.Journal.StateFile == "" {
		cfg.Journal.StateFile = "data/scan_state.json"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/td_sentinel.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if c.DataSource.SessionKey == "" {
		return fmt.Errorf("data_source.session_key is required")
	}
	return nil
}

// EngineConfig maps the YAML engine section onto an engine config. Zero
// fields fall through to the engine's own defaults.
func (c *Config) EngineConfig() sequential.Config {
	return sequential.Config{
		OscillatorPeriod:      c.Engine.OscillatorPeriod,
		VolumeWindow:          c.Engine.VolumeWindow,
		CancelThreshold:       c.Engine.CancelThreshold,
		DisableRecycling:      c.Engine.DisableRecycling,
		RequireSetupNine:      c.Engine.RequireSetupNine,
		SetupActiveWindow:     c.Engine.SetupActiveWindow,
		CountdownActiveWindow: c.Engine.CountdownActiveWindow,
		QualifyingEvent:       sequential.EventKind(c.Engine.RecencyEvent),
	}
}

// ScannerConfig maps the YAML scanner section onto a scanner config. Zero
// fields fall through to the scanner's own defaults.
func (c *Config) ScannerConfig() scanner.Config {
	return scanner.Config{
		Segment:        c.Scanner.Segment,
		MinAvgVolume:   c.Scanner.MinAvgVolume,
		VolumeLookback: c.Scanner.VolumeLookback,
		MaxInstruments: c.Scanner.MaxInstruments,
		HistoryDays:    c.Scanner.HistoryDays,
		IntradayDays:   c.Scanner.IntradayDays,
		Engine:         c.EngineConfig(),
	}
}
