package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

type Config struct {
	DatabaseBusyTimeout       time.Duration
	DatabaseConnectRetryCount int
	DatabaseConnectRetryDelay time.Duration
	DatabaseDebug             bool
	DatabaseFilePath          string
	DatabaseMaxRetries        int
	FineRatePerDay            int
	Hostname                  string
	LoanPeriodDays            int
	MaxRenewals               int
	ServerHost                string
	ServerPort                int
}

const environmentENV = "ENVIRONMENT"

func New() (*Config, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := &Config{
		DatabaseBusyTimeout:       5 * time.Second,
		DatabaseConnectRetryCount: 5,
		DatabaseConnectRetryDelay: 2 * time.Second,
		DatabaseMaxRetries:        3,
		FineRatePerDay:            1,
		Hostname:                  hostname,
		LoanPeriodDays:            15,
		MaxRenewals:               2,
		ServerPort:                4070,
	}

	switch os.Getenv(environmentENV) {
	case "development", "":
		loadDevelopmentConfig(cfg)
	case "test":
		loadTestConfig(cfg)
	case "production":
		loadProductionConfig(cfg)
	}

	loadPolicyOverrides(cfg)

	return cfg, nil
}

// loadPolicyOverrides applies lending policy knobs from the environment so
// deployments can tune them without a rebuild.
func loadPolicyOverrides(cfg *Config) {
	if v, err := strconv.Atoi(os.Getenv("LOAN_PERIOD_DAYS")); err == nil && v > 0 {
		cfg.LoanPeriodDays = v
	}
	if v, err := strconv.Atoi(os.Getenv("FINE_RATE_PER_DAY")); err == nil && v >= 0 {
		cfg.FineRatePerDay = v
	}
	if v, err := strconv.Atoi(os.Getenv("MAX_RENEWALS")); err == nil && v >= 0 {
		cfg.MaxRenewals = v
	}
}
