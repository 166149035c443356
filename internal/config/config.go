// Package config reads BoutTime settings from the environment.
//
// Variables, with defaults:
//
//	BOUTTIME_ROUNDS         rounds per session (6)
//	BOUTTIME_ROUND_SECONDS  countdown per round (30)
//	BOUTTIME_CATALOG        catalog file or database; empty means built-in
//	BOUTTIME_SEED           sampler seed; 0 means random
//	BOUTTIME_LOG_LEVEL      debug, info, warn or error (info)
//
// Values may also come from dotenv files. The process environment always
// wins over a dotenv file, and the process environment is never modified.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultDotenv is the dotenv file the CLI reads when present.
const DefaultDotenv = ".env"

// Config holds the session defaults. CLI flags override these.
type Config struct {
	Rounds       int    `env:"BOUTTIME_ROUNDS" envDefault:"6"`
	RoundSeconds int    `env:"BOUTTIME_ROUND_SECONDS" envDefault:"30"`
	Catalog      string `env:"BOUTTIME_CATALOG"`
	Seed         uint64 `env:"BOUTTIME_SEED" envDefault:"0"`
	LogLevel     string `env:"BOUTTIME_LOG_LEVEL" envDefault:"info"`
}

// Load reads the given dotenv files (missing ones are skipped), overlays
// the process environment and validates the result.
func Load(dotenv ...string) (Config, error) {
	return load(env.ToMap(os.Environ()), dotenv)
}

func load(environ map[string]string, dotenv []string) (Config, error) {
	vars, err := readDotenv(dotenv)
	if err != nil {
		return Config{}, err
	}
	for k, v := range environ {
		vars[k] = v
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// readDotenv merges dotenv files in order; earlier files win, as with
// godotenv.Load.
func readDotenv(paths []string) (map[string]string, error) {
	vars := make(map[string]string)
	for _, path := range paths {
		values, err := godotenv.Read(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		for k, v := range values {
			if _, ok := vars[k]; !ok {
				vars[k] = v
			}
		}
	}
	return vars, nil
}

// Validate checks ranges and the log level.
func (c Config) Validate() error {
	if c.Rounds < 1 {
		return fmt.Errorf("BOUTTIME_ROUNDS must be at least 1, got %d", c.Rounds)
	}
	if c.RoundSeconds < 1 {
		return fmt.Errorf("BOUTTIME_ROUND_SECONDS must be at least 1, got %d", c.RoundSeconds)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("BOUTTIME_LOG_LEVEL: %w", err)
	}
	return level, nil
}
