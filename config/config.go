/*
Package config loads server configuration from the environment.

PURPOSE:
  One place where environment variables are read. A .env file is loaded if
  present (development convenience); real deployments set variables in the
  process environment.

VARIABLES:
  PORT                      HTTP port (default 8080)
  DB_PATH                   SQLite database path (default inventory.db)
  LOG_LEVEL                 logrus level: debug/info/warn/error (default info)
  LOSS_CRITICAL_VALUE       classifier critical loss value (default 500)
  LOSS_CRITICAL_QTY_RATIO   classifier critical quantity ratio (default 0.10)
  LOSS_WARNING_VALUE        classifier warning loss value (default 100)
  LOSS_EPSILON              classifier zero-discrepancy tolerance (default 1e-6)

  Threshold overrides apply per deployment; unset variables keep the stable
  defaults so historical data is not silently reclassified.
*/
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/tapline/inventory-engine/recon"
)

// Config holds everything main needs to start the server.
type Config struct {
	Port       int
	DBPath     string
	LogLevel   logrus.Level
	Thresholds recon.Thresholds
}

// Load reads configuration from .env (if present) and the environment.
func Load() (*Config, error) {
	// Missing .env is fine; env vars may come from the process environment.
	_ = godotenv.Load()

	cfg := &Config{
		Port:       8080,
		DBPath:     "inventory.db",
		LogLevel:   logrus.InfoLevel,
		Thresholds: recon.DefaultThresholds(),
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := logrus.ParseLevel(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", v, err)
		}
		cfg.LogLevel = level
	}

	var err error
	if cfg.Thresholds.CriticalValue, err = decimalEnv("LOSS_CRITICAL_VALUE", cfg.Thresholds.CriticalValue); err != nil {
		return nil, err
	}
	if cfg.Thresholds.CriticalQuantityRatio, err = decimalEnv("LOSS_CRITICAL_QTY_RATIO", cfg.Thresholds.CriticalQuantityRatio); err != nil {
		return nil, err
	}
	if cfg.Thresholds.WarningValue, err = decimalEnv("LOSS_WARNING_VALUE", cfg.Thresholds.WarningValue); err != nil {
		return nil, err
	}
	if cfg.Thresholds.Epsilon, err = decimalEnv("LOSS_EPSILON", cfg.Thresholds.Epsilon); err != nil {
		return nil, err
	}

	return cfg, nil
}

func decimalEnv(name string, fallback decimal.Decimal) (decimal.Decimal, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	return d, nil
}
