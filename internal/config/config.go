package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/allenshen-svg/fund-assistant/internal/collector"
	"github.com/allenshen-svg/fund-assistant/internal/model"
	"github.com/allenshen-svg/fund-assistant/internal/strategy"

	"gopkg.in/yaml.v3"
)

// minHistoryDays is the shortest history that still yields a 60-day change.
const minHistoryDays = 61

// Tracker store kinds.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Fetcher     string `yaml:"fetcher"` // eastmoney or mock
		HistoryDays int    `yaml:"history_days"`
		Concurrency int    `yaml:"concurrency"`
	} `yaml:"data_source"`
	Heat struct {
		Source     string `yaml:"source"` // file path or http(s) URL
		TimeoutSec int    `yaml:"timeout_sec"`
	} `yaml:"heat"`
	Schedule struct {
		ReportCron string `yaml:"report_cron"`
		VerifyCron string `yaml:"verify_cron"`
	} `yaml:"schedule"`
	Holdings struct {
		File     string          `yaml:"file"`
		Defaults []model.Holding `yaml:"defaults"`
	} `yaml:"holdings"`
	Tracker struct {
		Store    string `yaml:"store"`
		Path     string `yaml:"path"`
		Capacity int    `yaml:"capacity"`
	} `yaml:"tracker"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Calendar struct {
		Holidays []string `yaml:"holidays"`
		Workdays []string `yaml:"workdays"`
		Timezone string   `yaml:"timezone"`
	} `yaml:"calendar"`
	Strategy struct {
		RSIWeight   float64 `yaml:"rsi_weight"`
		TrendWeight float64 `yaml:"trend_weight"`
		HeatWeight  float64 `yaml:"heat_weight"`
	} `yaml:"strategy"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
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
	if v := os.Getenv("HEAT_SOURCE"); v != "" {
		cfg.Heat.Source = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("TRACKER_STORE"); v != "" {
		cfg.Tracker.Store = strings.ToLower(v)
	}
	if v := os.Getenv("CRON_REPORT"); v != "" {
		cfg.Schedule.ReportCron = v
	}
	if v := os.Getenv("CRON_VERIFY"); v != "" {
		cfg.Schedule.VerifyCron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults
	if cfg.DataSource.Fetcher == "" {
		cfg.DataSource.Fetcher = "eastmoney"
	}
	if cfg.DataSource.HistoryDays == 0 {
		cfg.DataSource.HistoryDays = collector.DefaultHistoryDays
	}
	if cfg.DataSource.Concurrency == 0 {
		cfg.DataSource.Concurrency = 4
	}
	if cfg.Heat.TimeoutSec == 0 {
		cfg.Heat.TimeoutSec = 15
	}
	if cfg.Schedule.ReportCron == "" {
		cfg.Schedule.ReportCron = "0 30 14 * * 1-5"
	}
	if cfg.Schedule.VerifyCron == "" {
		cfg.Schedule.VerifyCron = "0 30 21 * * 1-5"
	}
	if cfg.Holdings.File == "" {
		cfg.Holdings.File = "data/holdings.json"
	}
	if cfg.Tracker.Store == "" {
		cfg.Tracker.Store = StoreJSON
	}
	if cfg.Tracker.Path == "" {
		if cfg.Tracker.Store == StoreSQLite {
			cfg.Tracker.Path = "data/predictions.db"
		} else {
			cfg.Tracker.Path = "data/predictions.json"
		}
	}
	if cfg.Tracker.Capacity == 0 {
		cfg.Tracker.Capacity = 30
	}
	if cfg.Calendar.Timezone == "" {
		cfg.Calendar.Timezone = "Asia/Shanghai"
	}
	if cfg.Strategy.RSIWeight == 0 && cfg.Strategy.TrendWeight == 0 && cfg.Strategy.HeatWeight == 0 {
		d := strategy.DefaultConfig()
		cfg.Strategy.RSIWeight, cfg.Strategy.TrendWeight, cfg.Strategy.HeatWeight = d.RSIWeight, d.TrendWeight, d.HeatWeight
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
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
	if c.DataSource.Fetcher != "eastmoney" && c.DataSource.Fetcher != "mock" {
		return fmt.Errorf("data_source.fetcher must be eastmoney or mock")
	}
	if c.DataSource.HistoryDays < minHistoryDays {
		return fmt.Errorf("data_source.history_days must be at least %d", minHistoryDays)
	}
	if c.DataSource.Concurrency <= 0 {
		return fmt.Errorf("data_source.concurrency must be positive")
	}
	if c.Tracker.Store != StoreJSON && c.Tracker.Store != StoreSQLite {
		return fmt.Errorf("tracker.store must be %q or %q", StoreJSON, StoreSQLite)
	}
	if c.Tracker.Capacity <= 0 {
		return fmt.Errorf("tracker.capacity must be positive")
	}
	if _, err := time.LoadLocation(c.Calendar.Timezone); err != nil {
		return fmt.Errorf("calendar.timezone: %w", err)
	}
	for _, h := range c.Holdings.Defaults {
		if !model.IsSectorType(h.Type) {
			return fmt.Errorf("holdings.defaults: unknown type %q for %s", h.Type, h.Code)
		}
	}
	if err := c.StrategyConfig().Validate(); err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	return nil
}

// StrategyConfig returns the voter configuration with the configured weights.
func (c *Config) StrategyConfig() strategy.Config {
	return strategy.DefaultConfig().WithWeights(c.Strategy.RSIWeight, c.Strategy.TrendWeight, c.Strategy.HeatWeight)
}

// Location returns the calendar time zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Calendar.Timezone)
}
