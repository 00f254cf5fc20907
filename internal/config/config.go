// Package config loads the backtester configuration from YAML with
// environment variable overrides.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the backtester.
type Config struct {
	Database Database `yaml:"database"`
	Storage  Storage  `yaml:"storage"`
	Logging  Logging  `yaml:"logging"`
	Backtest Backtest `yaml:"backtest"`
	Grid     Grid     `yaml:"grid"`
}

// Database holds the primary datasource connection settings.
type Database struct {
	URL string `yaml:"url"`
}

// Storage holds paths for local data persistence.
type Storage struct {
	SQLitePath string `yaml:"sqlite_path"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Backtest holds the default single-run simulation parameters.
type Backtest struct {
	InitialCash     float64 `yaml:"initial_cash"`
	TransactionCost float64 `yaml:"transaction_cost"`
	Fast            int     `yaml:"fast"`
	Slow            int     `yaml:"slow"`
}

// Grid holds the default grid-search ranges and execution settings.
type Grid struct {
	FastMin  int    `yaml:"fast_min"`
	FastMax  int    `yaml:"fast_max"`
	FastStep int    `yaml:"fast_step"`
	SlowMin  int    `yaml:"slow_min"`
	SlowMax  int    `yaml:"slow_max"`
	SlowStep int    `yaml:"slow_step"`
	Workers  int    `yaml:"workers"`
	RankBy   string `yaml:"rank_by"`
	FailFast bool   `yaml:"fail_fast"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Logging: Logging{Level: "info", Format: "json"},
		Backtest: Backtest{
			InitialCash:     100000,
			TransactionCost: 0.001,
			Fast:            20,
			Slow:            50,
		},
		Grid: Grid{
			FastMin:  10,
			FastMax:  30,
			FastStep: 5,
			SlowMin:  50,
			SlowMax:  200,
			SlowStep: 10,
			RankBy:   "sharpe_ratio",
		},
	}
}

// Load reads the YAML configuration file at the given path over the defaults,
// then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
