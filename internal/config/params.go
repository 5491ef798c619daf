package config

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownParam = errors.New("config: unknown parameter")

// params are the numeric settings reachable by name from scenario files,
// sweeps and grid searches.
var params = map[string]func(c *Config, v float64){
	"stars":           func(c *Config, v float64) { c.Stars = int(v) },
	"area":            func(c *Config, v float64) { c.Area = v },
	"thickness":       func(c *Config, v float64) { c.Thickness = v },
	"initial_speed":   func(c *Config, v float64) { c.InitialSpeed = v },
	"black_hole_mass": func(c *Config, v float64) { c.BlackHoleMass = v; c.BlackHole = v > 0 },
	"step":            func(c *Config, v float64) { c.Step = v },
	"precision":       func(c *Config, v float64) { c.Precision = v },
	"softening":       func(c *Config, v float64) { c.Softening = v },
	"seed":            func(c *Config, v float64) { c.Seed = int64(v) },
	"workers":         func(c *Config, v float64) { c.Workers = int(v) },
	"zoom":            func(c *Config, v float64) { c.Render.Zoom = v },
}

// Set assigns a numeric parameter by its yaml name. Integer parameters are
// truncated. The config is not sanitized.
func (c *Config) Set(name string, value float64) error {
	set, ok := params[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	set(c, value)
	return nil
}

// Apply sets every parameter in values, stopping at the first unknown name.
func (c *Config) Apply(values map[string]float64) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := c.Set(name, values[name]); err != nil {
			return err
		}
	}
	return nil
}

func ParamNames() []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
