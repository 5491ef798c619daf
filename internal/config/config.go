package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/galaxysim/internal/units"
)

const (
	DefaultArea          = 1000.0 // light years
	DefaultThickness     = 0.05   // fraction of area
	DefaultStars         = 50000
	DefaultInitialSpeed  = 10000.0  // m/s
	DefaultBlackHoleMass = 0.0      // solar masses
	DefaultStep          = 100000.0 // years
	DefaultPrecision     = 1.0
	DefaultView          = "xy"
	DefaultZoom          = 120.0
	DefaultWorkers       = 4
	DefaultSoftening     = 0.002 // fraction of area
	DefaultSteps         = 500

	MinArea    = 0.1
	MaxWorkers = 256
)

type Config struct {
	Stars         int     `yaml:"stars" json:"stars"`
	Area          float64 `yaml:"area" json:"area"`
	Thickness     float64 `yaml:"thickness" json:"thickness"`
	InitialSpeed  float64 `yaml:"initial_speed" json:"initial_speed"`
	BlackHole     bool    `yaml:"black_hole" json:"black_hole"`
	BlackHoleMass float64 `yaml:"black_hole_mass" json:"black_hole_mass"`
	Step          float64 `yaml:"step" json:"step"`
	Precision     float64 `yaml:"precision" json:"precision"`
	Verlet        bool    `yaml:"verlet" json:"verlet"`
	Softening     float64 `yaml:"softening" json:"softening"`
	Seed          int64   `yaml:"seed" json:"seed"`
	Workers       int     `yaml:"workers" json:"workers"`
	Steps         int     `yaml:"steps" json:"steps"`
	Render        Render  `yaml:"render" json:"render"`
}

type Render struct {
	View       string  `yaml:"view" json:"view"`
	Zoom       float64 `yaml:"zoom" json:"zoom"`
	RealColors bool    `yaml:"real_colors" json:"real_colors"`
}

func DefaultConfig() *Config {
	return &Config{
		Stars:         DefaultStars,
		Area:          DefaultArea,
		Thickness:     DefaultThickness,
		InitialSpeed:  DefaultInitialSpeed,
		BlackHoleMass: DefaultBlackHoleMass,
		Step:          DefaultStep,
		Precision:     DefaultPrecision,
		Verlet:        true,
		Softening:     DefaultSoftening,
		Seed:          1,
		Workers:       DefaultWorkers,
		Steps:         DefaultSteps,
		Render: Render{
			View: DefaultView,
			Zoom: DefaultZoom,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Sanitize clamps every value into its usable range. Out of range input
// is corrected, never rejected. NaN takes the lower bound.
func (c *Config) Sanitize() {
	c.Area = atLeast(c.Area, MinArea)
	c.Thickness = math.Min(atLeast(c.Thickness, 0), 1)
	c.Precision = atLeast(c.Precision, 0)
	c.InitialSpeed = atLeast(c.InitialSpeed, 0)
	c.BlackHoleMass = atLeast(c.BlackHoleMass, 0)
	c.Step = atLeast(c.Step, 0)
	c.Softening = atLeast(c.Softening, 0)
	c.Render.Zoom = atLeast(c.Render.Zoom, 1)

	if c.Stars < 1 {
		c.Stars = 1
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Workers > MaxWorkers {
		c.Workers = MaxWorkers
	}
	if c.Steps < 0 {
		c.Steps = 0
	}
	if c.Render.View == "" {
		c.Render.View = DefaultView
	}
}

func atLeast(x, lo float64) float64 {
	if math.IsNaN(x) || x < lo {
		return lo
	}
	return x
}

// AreaMeters is the spawn area size in meters.
func (c *Config) AreaMeters() float64 { return c.Area * units.LightYear }

// StepSeconds is the simulated time per step in seconds.
func (c *Config) StepSeconds() float64 { return c.Step * units.Year }

// SofteningMeters is the force softening length in meters.
func (c *Config) SofteningMeters() float64 { return c.Softening * c.AreaMeters() }

// BlackHoleKg is the central body's mass, zero when disabled.
func (c *Config) BlackHoleKg() float64 {
	if !c.BlackHole {
		return 0
	}
	return c.BlackHoleMass * units.SolarMass
}
