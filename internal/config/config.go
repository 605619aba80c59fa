// Package config holds process configuration for the scoring service.
//
// Configuration is layered: built-in defaults, then an optional YAML file
// named by CAMPSCORE_CONFIG, then CAMPSCORE_* environment variables. The
// rank point table lives here on purpose: roster sizes other than twelve
// are a configuration change, not a code change.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config contains process configuration
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8081".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database path.
	DBPath string `koanf:"db_path"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// OrganizerPassword gates the organizer API. Auto-generated at startup
	// when empty.
	OrganizerPassword string `koanf:"organizer_password"`

	// RankPoints maps rank-1 to the points awarded for that rank. Ranks
	// beyond the table receive zero points.
	RankPoints []int `koanf:"rank_points"`

	// GroupCount seeds groups 1..GroupCount at first boot when the roster
	// table is empty. Zero disables seeding.
	GroupCount int `koanf:"group_count"`

	// EventBufferSize bounds each websocket client's outgoing queue.
	EventBufferSize int `koanf:"event_buffer_size"`
}

// Default returns a Config populated with built-in defaults
func Default() *Config {
	return &Config{
		Addr:            ":8081",
		DBPath:          "campscore.db",
		LogLevel:        "info",
		RankPoints:      []int{150, 120, 110, 100, 90, 80, 70, 60, 50, 40, 30, 20},
		GroupCount:      12,
		EventBufferSize: 16,
	}
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Precedence (low -> high):
//  1. Default()
//  2. YAML file named by CAMPSCORE_CONFIG
//  3. environment (prefix CAMPSCORE_, e.g. CAMPSCORE_DB_PATH)
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv("CAMPSCORE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// CAMPSCORE_RANK_POINTS -> rank_points; underscores are preserved to
	// match the koanf tags on the struct.
	envProvider := env.Provider("CAMPSCORE_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "campscore_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the engine cannot run with
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.DBPath == "" {
		return errors.New("db_path must not be empty")
	}
	if len(c.RankPoints) == 0 {
		return errors.New("rank_points must not be empty")
	}
	for i := 1; i < len(c.RankPoints); i++ {
		if c.RankPoints[i] > c.RankPoints[i-1] {
			return fmt.Errorf("rank_points must be non-increasing (rank %d awards more than rank %d)", i+1, i)
		}
	}
	if c.GroupCount < 0 {
		return errors.New("group_count must not be negative")
	}
	if c.EventBufferSize <= 0 {
		return errors.New("event_buffer_size must be positive")
	}
	return nil
}
