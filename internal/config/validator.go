package config

import (
	"fmt"
	"strings"
)

// Validate checks configuration values and returns an error listing every problem.
func (c Config) Validate() error {
	var errors []string

	if c.MaxDepth < 1 {
		errors = append(errors, fmt.Sprintf("max_depth must be at least 1, got: %d", c.MaxDepth))
	}

	if c.NoLockfile && c.NoNodeModules {
		errors = append(errors, "no_lockfile and no_node_modules cannot both be set: nothing would be scanned")
	}

	if c.MetricsTextfile != "" && !strings.HasSuffix(c.MetricsTextfile, ".prom") {
		errors = append(errors, fmt.Sprintf("metrics_textfile must end in .prom, got: %s", c.MetricsTextfile))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}
	return nil
}
