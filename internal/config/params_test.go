package config

import (
	"errors"
	"testing"
)

func TestSet(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		check func(c *Config) bool
	}{
		{"stars", 1234.9, func(c *Config) bool { return c.Stars == 1234 }},
		{"precision", 0.3, func(c *Config) bool { return c.Precision == 0.3 }},
		{"black_hole_mass", 5e5, func(c *Config) bool { return c.BlackHole && c.BlackHoleMass == 5e5 }},
		{"black_hole_mass", 0, func(c *Config) bool { return !c.BlackHole }},
		{"seed", 7, func(c *Config) bool { return c.Seed == 7 }},
		{"zoom", 300, func(c *Config) bool { return c.Render.Zoom == 300 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			if err := c.Set(tt.name, tt.value); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if !tt.check(c) {
				t.Errorf("%s=%g not applied: %+v", tt.name, tt.value, c)
			}
		})
	}
}

func TestSetUnknown(t *testing.T) {
	c := DefaultConfig()
	if err := c.Set("gravity", 1); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
}

func TestApply(t *testing.T) {
	c := DefaultConfig()
	err := c.Apply(map[string]float64{"area": 50, "workers": 2})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if c.Area != 50 || c.Workers != 2 {
		t.Errorf("values not applied: %+v", c)
	}

	if err := c.Apply(map[string]float64{"area": 10, "nope": 1}); !errors.Is(err, ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
}

func TestParamNamesSorted(t *testing.T) {
	names := ParamNames()
	if len(names) != len(params) {
		t.Fatalf("expected %d names, got %d", len(params), len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted at %d: %v", i, names)
		}
	}
}
