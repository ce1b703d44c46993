// Package config loads service configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Payroll  PayrollConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

type DatabaseConfig struct {
	Path string
}

// PayrollConfig holds calculation defaults
type PayrollConfig struct {
	RulesFile       string // JSON or TOML rules document; empty = CLT defaults
	HolidayICS      string // file or URL imported at startup
	CompanyID       string // default holiday scope
	Timezone        string
	OptionalHoliday bool // include Carnival and Corpus Christi
	National        bool // layer the Brazilian national calendar under stored holidays
	BatchLimit      int  // concurrent employee-periods per bulletin batch

	// HolidaySync is how often HolidayICS is re-imported; 0 imports once.
	HolidaySync time.Duration
}

// Load reads .env if present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	config := &Config{}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	config.Database = DatabaseConfig{
		Path: getEnv("DB_PATH", "payroll.db"),
	}

	optional, err := strconv.ParseBool(getEnv("HOLIDAYS_OPTIONAL", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid HOLIDAYS_OPTIONAL: %w", err)
	}
	national, err := strconv.ParseBool(getEnv("HOLIDAYS_NATIONAL", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid HOLIDAYS_NATIONAL: %w", err)
	}
	batchLimit, err := strconv.Atoi(getEnv("BATCH_LIMIT", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid BATCH_LIMIT: %w", err)
	}
	holidaySync, err := time.ParseDuration(getEnv("HOLIDAY_SYNC_INTERVAL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid HOLIDAY_SYNC_INTERVAL: %w", err)
	}

	config.Payroll = PayrollConfig{
		RulesFile:       getEnv("RULES_FILE", ""),
		HolidayICS:      getEnv("HOLIDAY_ICS", ""),
		CompanyID:       getEnv("COMPANY_ID", ""),
		Timezone:        getEnv("TIMEZONE", "UTC"),
		OptionalHoliday: optional,
		National:        national,
		BatchLimit:      batchLimit,
		HolidaySync:     holidaySync,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("APP_PORT out of range: %d", c.App.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if _, err := time.LoadLocation(c.Payroll.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	if c.Payroll.BatchLimit < 0 {
		return fmt.Errorf("BATCH_LIMIT must not be negative")
	}
	if c.Payroll.HolidaySync < 0 {
		return fmt.Errorf("HOLIDAY_SYNC_INTERVAL must not be negative")
	}
	return nil
}

// Location returns the configured time zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Payroll.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SlogLevel maps LOG_LEVEL to a slog level. Unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
