package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Settings holds process settings read from STATCALC_* environment variables.
type Settings struct {
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat      string `envconfig:"LOG_FORMAT" default:"text"`
	Output         string `envconfig:"OUTPUT" default:"console"`
	DefaultMondays int    `envconfig:"MONDAYS_DEFAULT" default:"4"`
	// HistoryDSN points at a PostgreSQL database holding posted payroll lines.
	// Empty means history comes from the pay-period file.
	HistoryDSN string `envconfig:"HISTORY_DSN"`
}

// LoadSettings reads settings from the environment. Variables already set in
// the process win over those in envFile. An empty envFile loads ./.env when it
// exists.
func LoadSettings(envFile string) (*Settings, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var s Settings
	if err := envconfig.Process("STATCALC", &s); err != nil {
		return nil, err
	}
	if s.DefaultMondays < 0 || s.DefaultMondays > 5 {
		return nil, fmt.Errorf("STATCALC_MONDAYS_DEFAULT must be between 0 and 5, got %d", s.DefaultMondays)
	}
	return &s, nil
}

// Level parses LogLevel.
func (s *Settings) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(s.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s.LogLevel, err)
	}
	return lvl, nil
}

// NewLogger returns a slog.Logger writing to w in the configured format.
func (s *Settings) NewLogger(w io.Writer) (*slog.Logger, error) {
	lvl, err := s.Level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if s.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
