package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/galaxysim/internal/config"
	"github.com/san-kum/galaxysim/internal/metrics"
	"github.com/san-kum/galaxysim/internal/sim"
	"github.com/san-kum/galaxysim/internal/star"
	"github.com/san-kum/galaxysim/internal/storage"
)

var ErrNoPrevious = errors.New("automation: first run cannot continue")

// Scenario is a scripted sequence of simulation runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Runs        []ScenarioStep `yaml:"runs"`
}

// ScenarioStep is one run. Params are applied over the preset by name,
// see config.ParamNames. A step with Continue set starts from the live
// stars the previous step ended with instead of a fresh galaxy.
type ScenarioStep struct {
	Name     string             `yaml:"name"`
	Preset   string             `yaml:"preset"`
	Steps    int                `yaml:"steps"`
	Verlet   *bool              `yaml:"verlet"`
	Params   map[string]float64 `yaml:"params"`
	Continue bool               `yaml:"continue"`
	Energy   bool               `yaml:"energy"`
}

type Outcome struct {
	Name   string
	Config config.Config
	Result *sim.Result
	RunID  string
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Runs) == 0 {
		return nil, fmt.Errorf("scenario %s has no runs", path)
	}

	return &scenario, nil
}

// StepConfig builds the configuration of a single step.
func StepConfig(step ScenarioStep) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if step.Preset != "" {
		cfg = config.GetPreset(step.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", step.Preset)
		}
	}
	if err := cfg.Apply(step.Params); err != nil {
		return nil, err
	}
	if step.Verlet != nil {
		cfg.Verlet = *step.Verlet
	}
	if step.Steps > 0 {
		cfg.Steps = step.Steps
	}
	cfg.Sanitize()
	return cfg, nil
}

// RunScenario executes the runs in order and stores each one when st is
// not nil. A continued run records the run it continues as its parent.
// Progress lines go to out.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store, out io.Writer) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(scenario.Runs))
	var previous []star.Star
	var previousCfg *config.Config
	var previousID string

	for i, step := range scenario.Runs {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("run-%d", i+1)
		}

		cfg, err := StepConfig(step)
		if err != nil {
			return outcomes, fmt.Errorf("step %d: %w", i+1, err)
		}

		var s *sim.Simulator
		parent := ""
		if step.Continue {
			if i == 0 {
				return outcomes, fmt.Errorf("step %d: %w", i+1, ErrNoPrevious)
			}
			// Verlet history is only valid for the step size it was made with
			if cfg.Verlet && (!previousCfg.Verlet || cfg.Step != previousCfg.Step) {
				for j := range previous {
					previous[j].InitHistory(cfg.StepSeconds())
				}
			}
			s = sim.NewWithStars(cfg, previous)
			parent = previousID
		} else {
			s = sim.New(cfg)
		}

		fmt.Fprintf(out, "running step %d/%d: %s (%d stars, %d steps)\n", i+1, len(scenario.Runs), name, s.LiveCount(), cfg.Steps)

		s.AddMetric(metrics.NewSurvival())
		if step.Energy {
			s.AddMetric(metrics.NewEnergyDrift(cfg.SofteningMeters()))
		}

		result, err := s.Run(ctx, cfg.Steps, nil)
		live := s.Live()
		previous = make([]star.Star, len(live))
		copy(previous, live)
		s.Close()
		if err != nil {
			return outcomes, fmt.Errorf("step %d run: %w", i+1, err)
		}

		outcome := Outcome{Name: name, Config: *cfg, Result: result}
		if st != nil {
			id, err := st.Save(cfg, result, previous, parent)
			if err != nil {
				return outcomes, fmt.Errorf("step %d save: %w", i+1, err)
			}
			outcome.RunID = id
		}
		previousID = outcome.RunID
		previousCfg = cfg

		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

// ParameterSweep runs Base once per evenly spaced value of Param.
type ParameterSweep struct {
	Base     config.Config
	Param    string
	Min      float64
	Max      float64
	NumSteps int
	Steps    int
	Energy   bool
}

type SweepResult struct {
	Value       float64
	Live        int
	Died        int
	Survival    float64
	EnergyDrift float64
	Extinct     bool
}

// Values are the parameter values the sweep visits.
func (p *ParameterSweep) Values() []float64 {
	if p.NumSteps < 2 {
		return []float64{p.Min}
	}
	step := (p.Max - p.Min) / float64(p.NumSteps-1)
	values := make([]float64, p.NumSteps)
	for i := range values {
		values[i] = p.Min + float64(i)*step
	}
	values[len(values)-1] = p.Max
	return values
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, out io.Writer) ([]SweepResult, error) {
	values := sweep.Values()
	results := make([]SweepResult, 0, len(values))

	for i, v := range values {
		cfg := sweep.Base
		if err := cfg.Set(sweep.Param, v); err != nil {
			return nil, err
		}
		cfg.Sanitize()

		s := sim.New(&cfg)
		s.AddMetric(metrics.NewSurvival())
		if sweep.Energy {
			s.AddMetric(metrics.NewEnergyDrift(cfg.SofteningMeters()))
		}
		result, err := s.Run(ctx, sweep.Steps, nil)
		s.Close()
		if err != nil {
			return results, err
		}

		results = append(results, SweepResult{
			Value:       v,
			Live:        result.Live,
			Died:        result.Died,
			Survival:    result.Metrics["survival"],
			EnergyDrift: result.Metrics["energy_drift"],
			Extinct:     result.Extinct,
		})

		fmt.Fprintf(out, "sweep %d/%d: %s=%.4g\n", i+1, len(values), sweep.Param, v)
	}

	return results, nil
}
