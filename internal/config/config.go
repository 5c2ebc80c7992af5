package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Store   StoreConfig   `yaml:"store"`
	Market  MarketConfig  `yaml:"market"`
	Analyst AnalystConfig `yaml:"analyst"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type StoreConfig struct {
	Sqlite SqliteConfig `yaml:"sqlite"`
}

type SqliteConfig struct {
	Path string `yaml:"path"`
}

type MarketConfig struct {
	Symbols          []string `yaml:"symbols"`
	PollIntervalSec  int      `yaml:"poll_interval_sec"`
	BatchJitterMs    int      `yaml:"batch_jitter_ms"`
	MaxAttempts      int      `yaml:"max_attempts"`
	AttemptTimeoutMs int      `yaml:"attempt_timeout_ms"`
	BackoffInitialMs int      `yaml:"backoff_initial_ms"`
	BackoffFactor    float64  `yaml:"backoff_factor"`
}

type AnalystConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	ByAzure    bool   `yaml:"by_azure"`
	APIVersion string `yaml:"api_version"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Log:    LogConfig{Level: "info"},
		Store: StoreConfig{
			Sqlite: SqliteConfig{Path: "data/app.db"},
		},
		Market: MarketConfig{
			Symbols: []string{
				"BMFBOVESPA:IBOV", "BMFBOVESPA:PETR4", "BMFBOVESPA:VALE3",
				"BMFBOVESPA:ITUB4", "NASDAQ:AAPL", "NASDAQ:NVDA",
				"BINANCE:BTCUSD", "BINANCE:ETHUSD", "FX_IDC:USDBRL", "FX_IDC:EURUSD",
			},
			PollIntervalSec:  8,
			BatchJitterMs:    1000,
			MaxAttempts:      6,
			AttemptTimeoutMs: 4000,
			BackoffInitialMs: 300,
			BackoffFactor:    1.5,
		},
		Analyst: AnalystConfig{
			Enabled:   false,
			Model:     "gpt-4.1-mini",
			TimeoutMs: 15000,
		},
	}
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p <= 0 || p > 65535 {
			return fmt.Errorf("invalid PORT: %q", v)
		}
		cfg.Server.Port = p
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Store.Sqlite.Path = v
	}
	return nil
}
