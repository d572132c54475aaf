// Package config loads portal configuration from an optional TOML file
// with environment-variable overrides. Environment always wins so
// deployments can tweak a single knob without shipping a file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// Config is the full portal configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `toml:"listen" env:"PORTAL_LISTEN"`

	// Namespace is the cluster namespace monster resources live in.
	Namespace string `toml:"namespace" env:"PORTAL_NAMESPACE"`

	// Orchestrator toggles the cluster mirror; off, the portal runs
	// standalone with local state only.
	Orchestrator bool `toml:"orchestrator" env:"PORTAL_ORCHESTRATOR"`

	// MetricsPath is where the Prometheus scrape endpoint is mounted.
	MetricsPath string `toml:"metrics_path" env:"PORTAL_METRICS_PATH"`

	// LockFile guards against a second portal instance owning the same
	// state; empty disables the check.
	LockFile string `toml:"lock_file" env:"PORTAL_LOCK_FILE"`
}

// Default returns the configuration used with no file and no environment.
func Default() Config {
	return Config{
		Listen:       ":5000",
		Namespace:    "dungeon-master-system",
		Orchestrator: true,
		MetricsPath:  "/metrics",
	}
}

// Load reads path (if non-empty) over the defaults, then applies
// environment overrides. A missing file at an explicitly given path is an
// error; path == "" skips the file entirely.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, fmt.Errorf("config file: %w", err)
		}
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
