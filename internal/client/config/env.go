package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

// EnvPrefix prefixes every environment variable read by parseEnv, e.g.
// VERDE_BACKEND_URL.
const EnvPrefix = "VERDE_"

// parseEnv overlays cfg with VERDE_* environment variables. Unset
// variables leave fields untouched.
func parseEnv(cfg *Config) error {
	if err := env.Parse(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}
