// Package config loads and validates application configuration from the
// environment and an optional .env file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pkordes/trip-overtime/internal/ingest"
	"github.com/pkordes/trip-overtime/internal/overtime"
	"github.com/pkordes/trip-overtime/internal/postcode"
)

// Config holds all configuration values for the API server and the CLI.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string of the report archive.
	// Empty disables archiving.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	CORSOrigins []string

	// MaxUploadBytes caps request bodies. Set in megabytes via MAX_UPLOAD_MB.
	MaxUploadBytes int64

	// HeaderRows is the number of preamble rows before the trip table.
	HeaderRows int

	HomeCode      string
	WeekdayCutoff time.Duration
	WeekendCutoff time.Duration
}

// raw mirrors the environment before validation.
type raw struct {
	Port          string `mapstructure:"PORT"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
	CORSOrigins   string `mapstructure:"CORS_ORIGINS"`
	MaxUploadMB   int64  `mapstructure:"MAX_UPLOAD_MB"`
	HeaderRows    int    `mapstructure:"HEADER_ROWS"`
	HomeCode      string `mapstructure:"HOME_CODE"`
	WeekdayCutoff string `mapstructure:"WEEKDAY_CUTOFF"`
	WeekendCutoff string `mapstructure:"WEEKEND_CUTOFF"`
}

// Load reads configuration and returns a validated Config.
// Errors name the offending variable.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("MAX_UPLOAD_MB", 20)
	v.SetDefault("HEADER_ROWS", ingest.MileIQLayout.HeaderRows)
	v.SetDefault("HOME_CODE", postcode.DefaultHome)
	v.SetDefault("WEEKDAY_CUTOFF", "17:30")
	v.SetDefault("WEEKEND_CUTOFF", "16:30")

	var r raw
	if err := v.Unmarshal(&r); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}

	cfg := Config{
		Port:        r.Port,
		DatabaseURL: r.DatabaseURL,
		LogLevel:    strings.ToLower(r.LogLevel),
		CORSOrigins: splitCSV(r.CORSOrigins),
		HeaderRows:  r.HeaderRows,
		HomeCode:    strings.ToUpper(strings.TrimSpace(r.HomeCode)),
	}

	if r.MaxUploadMB <= 0 {
		return Config{}, fmt.Errorf("config.Load: MAX_UPLOAD_MB must be positive, got %d", r.MaxUploadMB)
	}
	cfg.MaxUploadBytes = r.MaxUploadMB << 20

	if r.HeaderRows < 0 {
		return Config{}, fmt.Errorf("config.Load: HEADER_ROWS must not be negative, got %d", r.HeaderRows)
	}
	if !postcode.ValidOutward(cfg.HomeCode) {
		return Config{}, fmt.Errorf("config.Load: HOME_CODE %q is not an outward postcode", r.HomeCode)
	}

	var err error
	if cfg.WeekdayCutoff, err = overtime.ParseClock(r.WeekdayCutoff); err != nil {
		return Config{}, fmt.Errorf("config.Load: WEEKDAY_CUTOFF: %w", err)
	}
	if cfg.WeekendCutoff, err = overtime.ParseClock(r.WeekendCutoff); err != nil {
		return Config{}, fmt.Errorf("config.Load: WEEKEND_CUTOFF: %w", err)
	}
	return cfg, nil
}

// Policy returns the overtime rule with the configured home code and cutoffs.
func (c Config) Policy() overtime.Policy {
	p := overtime.DefaultPolicy()
	p.HomeCode = c.HomeCode
	p.WeekdayCutoff = c.WeekdayCutoff
	p.WeekendCutoff = c.WeekendCutoff
	return p
}

// Layout returns the MileIQ sheet layout with the configured preamble length.
func (c Config) Layout() ingest.Layout {
	l := ingest.MileIQLayout
	l.HeaderRows = c.HeaderRows
	return l
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
