package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SAUDI_CONFIG is set
//  3. env (prefix SAUDI_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("SAUDI_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: SAUDI_ADDR -> addr, SAUDI_MAX_TEAMS -> max_teams.
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("SAUDI_", ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), "saudi_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	switch {
	case cfg.Addr == "":
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.AdminSecret == "":
		return nil, fmt.Errorf("%w: admin_secret must not be empty", ErrInvalidConfig)
	case cfg.MaxTeams <= 0:
		return nil, fmt.Errorf("%w: max_teams must be positive", ErrInvalidConfig)
	case cfg.DebounceMS <= 0 || cfg.SyncPulseMS <= 0:
		return nil, fmt.Errorf("%w: debounce_ms and sync_pulse_ms must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
