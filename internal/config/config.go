// Package config loads the optional YAML defaults file for conversion
// tuning. Command-line flags always win over file values.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/philipparndt/glb2step/internal/backend"
	"github.com/philipparndt/glb2step/internal/convert"
	"github.com/philipparndt/glb2step/internal/repair"
)

// Config mirrors convert.Options in YAML form
type Config struct {
	// ComponentFraction: connected components smaller than this fraction
	// of the mesh are removed as noise
	ComponentFraction float64 `yaml:"component_fraction"`
	// MaxHoleEdges: boundary loops larger than this are not filled
	MaxHoleEdges int `yaml:"max_hole_edges"`
	// SewingTolerance: vertex-matching distance for face sewing
	SewingTolerance float64 `yaml:"sewing_tolerance"`
	// FallbackTimeoutSeconds bounds the headless FreeCAD run
	FallbackTimeoutSeconds int `yaml:"fallback_timeout_seconds"`
	// FreeCADBinary overrides FreeCAD binary discovery
	FreeCADBinary string `yaml:"freecad_binary"`
	// WorkDir is the temporary-file area for job workspaces
	WorkDir string `yaml:"work_dir"`
}

// Default returns the documented defaults
func Default() Config {
	return Config{
		ComponentFraction:      repair.DefaultComponentFraction,
		MaxHoleEdges:           repair.DefaultMaxHoleEdges,
		SewingTolerance:        backend.DefaultSewingTolerance,
		FallbackTimeoutSeconds: int(backend.DefaultFreeCADTimeout / time.Second),
	}
}

// Load reads and validates a YAML config file, filling unset values with
// the defaults
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges
func (c Config) Validate() error {
	if c.ComponentFraction < 0 || c.ComponentFraction >= 1 {
		return fmt.Errorf("component_fraction must be in [0, 1), got %v", c.ComponentFraction)
	}
	if c.MaxHoleEdges < 3 {
		return fmt.Errorf("max_hole_edges must be at least 3, got %d", c.MaxHoleEdges)
	}
	if c.SewingTolerance <= 0 {
		return fmt.Errorf("sewing_tolerance must be positive, got %v", c.SewingTolerance)
	}
	if c.FallbackTimeoutSeconds <= 0 {
		return fmt.Errorf("fallback_timeout_seconds must be positive, got %d", c.FallbackTimeoutSeconds)
	}
	return nil
}

// Options converts the config into conversion options
func (c Config) Options() convert.Options {
	return convert.Options{
		ComponentFraction: c.ComponentFraction,
		MaxHoleEdges:      c.MaxHoleEdges,
		SewingTolerance:   c.SewingTolerance,
		FallbackTimeout:   time.Duration(c.FallbackTimeoutSeconds) * time.Second,
		FreeCADBinary:     c.FreeCADBinary,
		WorkDir:           c.WorkDir,
	}
}

// Example is a documented example configuration, shown by
// `glb2step config --example`
const Example = `# glb2step configuration
# Connected components smaller than this fraction of the mesh are
# removed as noise (default 0.01 = 1%).
component_fraction: 0.01

# Boundary loops with more edges than this are left open instead of
# being filled (default 64).
max_hole_edges: 64

# Vertex-matching tolerance for face sewing, in model units.
sewing_tolerance: 1.0e-6

# Upper bound for the headless FreeCAD fallback, in seconds.
fallback_timeout_seconds: 300

# Optional: explicit FreeCAD binary instead of PATH discovery.
# freecad_binary: /usr/bin/FreeCADCmd

# Optional: temporary-file area for job workspaces.
# work_dir: /tmp/glb2step
`
