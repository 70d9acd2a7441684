package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envOverrides are read from the process environment by ApplyEnv.
type envOverrides struct {
	Eye       []float64 `env:"CAVE_EYE" envSeparator:","`
	NearClip  float64   `env:"CAVE_NEAR_CLIP"`
	FarClip   float64   `env:"CAVE_FAR_CLIP"`
	Strict    bool      `env:"CAVE_STRICT"`
	OutputDir string    `env:"CAVE_OUTPUT_DIR"`
	Workers   int       `env:"CAVE_WORKERS"`
}

// ApplyEnv overrides file values with CAVE_* environment variables.
// Only variables that are present take effect. Call it before Resolve so
// CLI flags still win.
func (c *Config) ApplyEnv() error {
	var o envOverrides
	set := make(map[string]bool)
	err := env.ParseWithOptions(&o, env.Options{
		// OnSet also fires for absent variables, with an empty value.
		OnSet: func(tag string, value any, isDefault bool) {
			if s, _ := value.(string); s != "" && !isDefault {
				set[tag] = true
			}
		},
	})
	if err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if set["CAVE_EYE"] {
		if len(o.Eye) != 3 {
			return fmt.Errorf("parse env: CAVE_EYE wants x,y,z, got %d values", len(o.Eye))
		}
		c.EyePosition = o.Eye
	}
	if set["CAVE_NEAR_CLIP"] {
		c.NearClip = o.NearClip
	}
	if set["CAVE_FAR_CLIP"] {
		c.FarClip = o.FarClip
	}
	if set["CAVE_STRICT"] {
		strict := o.Strict
		c.Strict = &strict
	}
	if set["CAVE_OUTPUT_DIR"] {
		c.Preview.OutputDir = o.OutputDir
	}
	if set["CAVE_WORKERS"] {
		c.Preview.Workers = o.Workers
	}
	return nil
}
