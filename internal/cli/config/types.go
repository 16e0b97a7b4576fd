// Package config provides configuration management for the widarcfg CLI.
//
// Values are layered, lowest to highest precedence: built-in defaults,
// widarcfg.yaml, WIDARCFG_* environment variables and command-line flags.
package config

import (
	"github.com/leapstack-labs/widarcfg/internal/execution"
	"github.com/leapstack-labs/widarcfg/internal/state"
)

// Config holds all CLI configuration options.
type Config struct {
	Root         string   `koanf:"root"`
	StatePath    string   `koanf:"state_path"`
	Backend      string   `koanf:"backend"`
	Workers      int      `koanf:"workers"`
	OutputFormat string   `koanf:"output"`
	Verbose      bool     `koanf:"verbose"`
	IncludeTests bool     `koanf:"include_tests"`
	KnownInvalid []string `koanf:"known_invalid"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultRoot      = "."
	DefaultStateFile = ".widarcfg/state.db"
	DefaultBackend   = string(state.BackendSQLite)
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// ConfigNames are the file names searched for when no --config is given.
var ConfigNames = []string{"widarcfg.yaml", "widarcfg.yml"}

// Defaults returns a Config holding only the built-in defaults.
func Defaults() *Config {
	return &Config{
		Root:         DefaultRoot,
		StatePath:    DefaultStateFile,
		Backend:      DefaultBackend,
		OutputFormat: DefaultOutput,
		KnownInvalid: append([]string(nil), execution.KnownInvalid...),
	}
}

// BatchOptions returns the batch reader options described by c.
func (c *Config) BatchOptions() execution.BatchOptions {
	return execution.BatchOptions{
		Workers:      c.Workers,
		KnownInvalid: c.KnownInvalid,
	}
}
