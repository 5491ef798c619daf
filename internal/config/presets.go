package config

import "sort"

var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"blackhole": with(func(c *Config) {
		c.BlackHole = true
		c.BlackHoleMass = 1e6
		c.InitialSpeed = 0
	}),
	"small": with(func(c *Config) {
		c.Stars = 2000
		c.Area = 200
		c.Step = 20000
	}),
	"dense": with(func(c *Config) {
		c.Stars = 20000
		c.Area = 300
		c.Thickness = 0.2
		c.Precision = 0.7
	}),
	"euler": with(func(c *Config) {
		c.Stars = 5000
		c.Verlet = false
	}),
	"thick": with(func(c *Config) {
		c.Thickness = 1
		c.InitialSpeed = 5000
		c.Render.View = "default"
	}),
}

func with(apply func(c *Config)) *Config {
	c := DefaultConfig()
	apply(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
