package util

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port     int `yaml:"port"`
		PoolSize int `yaml:"pool_size"`
	} `yaml:"server"`
	PriceSource struct {
		Provider        string  `yaml:"provider"` // coingecko, binance or yahoo
		CoinGeckoURL    string  `yaml:"coingecko_url"`
		RequestsPerSec  float64 `yaml:"requests_per_sec"`
		RequestBurst    int     `yaml:"request_burst"`
		QuoteCurrency   string  `yaml:"quote_currency"`
		BinanceQuote    string  `yaml:"binance_quote"`
		YahooPairSuffix string  `yaml:"yahoo_pair_suffix"`
	} `yaml:"price_source"`
	RateSource struct {
		AaveURL string `yaml:"aave_url"`
	} `yaml:"rate_source"`
	Recorder struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"recorder"`
	ReserveRefreshCron string `yaml:"reserve_refresh_cron"`
}

// LoadConfig reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is fine; everything has a default.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if v := os.Getenv("LEVSIM_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LEVSIM_POOL_SIZE"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			cfg.Server.PoolSize = size
		}
	}
	if v := os.Getenv("LEVSIM_PRICE_PROVIDER"); v != "" {
		cfg.PriceSource.Provider = v
	}
	if v := os.Getenv("LEVSIM_SQLITE_PATH"); v != "" {
		cfg.Recorder.SQLitePath = v
	}

	// Defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3009
	}
	if cfg.Server.PoolSize == 0 {
		cfg.Server.PoolSize = 4
	}
	if cfg.PriceSource.Provider == "" {
		cfg.PriceSource.Provider = "coingecko"
	}
	if cfg.PriceSource.CoinGeckoURL == "" {
		cfg.PriceSource.CoinGeckoURL = "https://api.coingecko.com/api/v3"
	}
	if cfg.PriceSource.RequestsPerSec == 0 {
		cfg.PriceSource.RequestsPerSec = 0.5
	}
	if cfg.PriceSource.RequestBurst == 0 {
		cfg.PriceSource.RequestBurst = 2
	}
	if cfg.PriceSource.QuoteCurrency == "" {
		cfg.PriceSource.QuoteCurrency = "usd"
	}
	if cfg.PriceSource.BinanceQuote == "" {
		cfg.PriceSource.BinanceQuote = "USDT"
	}
	if cfg.PriceSource.YahooPairSuffix == "" {
		cfg.PriceSource.YahooPairSuffix = "-USD"
	}
	if cfg.RateSource.AaveURL == "" {
		cfg.RateSource.AaveURL = "https://aave-api-v2.aave.com/data"
	}
	if cfg.ReserveRefreshCron == "" {
		cfg.ReserveRefreshCron = "@every 1h"
	}

	return cfg, nil
}

// Validate checks the fields that have no safe fallback.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive")
	}
	if c.Server.PoolSize < 0 {
		return fmt.Errorf("server.pool_size cannot be negative")
	}
	switch c.PriceSource.Provider {
	case "coingecko", "binance", "yahoo":
	default:
		return fmt.Errorf("unknown price_source.provider %q", c.PriceSource.Provider)
	}
	return nil
}
