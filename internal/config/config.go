// Package config loads the tradebench YAML configuration and applies
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"tradebench/internal/domain"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for a backtest run and the data
// tooling around it.
type Config struct {
	Balances BalancesConfig `yaml:"balances"`
	FeeBps   float64        `yaml:"fee_bps"`
	RiskFree float64        `yaml:"risk_free"`
	Data     DataConfig     `yaml:"data"`
	Strategy StrategyConfig `yaml:"strategy"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Logging  Logging        `yaml:"logging"`
}

// BalancesConfig holds the initial holdings per asset.
type BalancesConfig struct {
	Fiat   float64 `yaml:"fiat"`
	Token1 float64 `yaml:"token_1"`
	Token2 float64 `yaml:"token_2"`
}

// DataConfig holds input and output paths for a run.
type DataConfig struct {
	Path      string `yaml:"path"`       // tick data: .csv, .parquet, .db
	TradesOut string `yaml:"trades_out"` // journaled trades CSV
}

// StrategyConfig selects and parameterizes the strategy for a run.
type StrategyConfig struct {
	Name      string  `yaml:"name"`
	Pair      string  `yaml:"pair"`
	Window    int     `yaml:"window"`
	Threshold float64 `yaml:"threshold"`
	Qty       float64 `yaml:"qty"`
}

// FetchConfig parameterizes the historical-data download job.
type FetchConfig struct {
	BaseURL         string `yaml:"base_url"`
	Symbol          string `yaml:"symbol"` // exchange symbol, e.g. ETHUSDT
	Pair            string `yaml:"pair"`   // generic pair label for the output
	StartMs         int64  `yaml:"start_ms"`
	EndMs           int64  `yaml:"end_ms"`
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`
	Out             string `yaml:"out"` // .parquet or .db
}

// Logging configures the application logger.
type Logging struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given, mirroring the
// CLI defaults of the reference tooling: 10000 fiat, 2 bps fee.
func Default() *Config {
	return &Config{
		Balances: BalancesConfig{Fiat: 10000},
		FeeBps:   2,
		Strategy: StrategyConfig{
			Name:      "mean-revert",
			Pair:      domain.PairToken1Fiat.String(),
			Window:    30,
			Threshold: 2.0,
			Qty:       0.01,
		},
		Fetch: FetchConfig{
			RateLimitPerMin: 600,
		},
		Logging: Logging{Level: "info"},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration at path over the defaults, then applies
// environment variable overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRADEBENCH_DATA"); v != "" {
		cfg.Data.Path = v
	}
	if v := os.Getenv("TRADEBENCH_FEE_BPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.FeeBps = f
		}
	}
	if v := os.Getenv("TRADEBENCH_STRATEGY"); v != "" {
		cfg.Strategy.Name = v
	}
	if v := os.Getenv("BINANCE_BASE_URL"); v != "" {
		cfg.Fetch.BaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate rejects configurations the engine would refuse anyway, before any
// data is loaded.
func (c *Config) Validate() error {
	if err := c.InitialBalances().Validate(); err != nil {
		return err
	}
	if c.FeeBps < 0 {
		return fmt.Errorf("fee_bps must be non-negative, got %v", c.FeeBps)
	}
	if c.Strategy.Pair != "" {
		if _, err := domain.ParsePair(c.Strategy.Pair); err != nil {
			return fmt.Errorf("strategy: %w", err)
		}
	}
	if c.Fetch.Pair != "" {
		if _, err := domain.ParsePair(c.Fetch.Pair); err != nil {
			return fmt.Errorf("fetch: %w", err)
		}
	}
	return nil
}

// InitialBalances converts the balances section into the engine's type.
func (c *Config) InitialBalances() domain.Balances {
	return domain.Balances{
		domain.AssetFiat:   c.Balances.Fiat,
		domain.AssetToken1: c.Balances.Token1,
		domain.AssetToken2: c.Balances.Token2,
	}
}

// FeeRate converts the basis-point fee into a fraction (2 bps → 0.0002).
func (c *Config) FeeRate() float64 {
	return c.FeeBps / 10000
}
