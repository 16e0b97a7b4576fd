package config

import (
	"fmt"
	"os"
	"slices"

	"github.com/leapstack-labs/widarcfg/internal/state"
)

// OutputModes are the accepted values of the output key.
var OutputModes = []string{"auto", "text", "markdown", "json", "csv", "yaml"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("root is required")
	}
	if !slices.Contains(state.Backends, state.Backend(c.Backend)) {
		return fmt.Errorf("unknown backend %q (available: %v)", c.Backend, state.Backends)
	}
	if c.OutputFormat != "" && !slices.Contains(OutputModes, c.OutputFormat) {
		return fmt.Errorf("unknown output format %q (available: %v)", c.OutputFormat, OutputModes)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// ValidateRoot checks that the archive root exists.
func (c *Config) ValidateRoot() error {
	info, err := os.Stat(c.Root)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("archive root does not exist: %s\nHint: set root in widarcfg.yaml or use --root", c.Root)
	}
	return nil
}
