package optim

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/galaxysim/internal/config"
	"github.com/san-kum/galaxysim/internal/metrics"
	"github.com/san-kum/galaxysim/internal/sim"
)

// Objectives names the scores the galaxy objective can minimize.
var Objectives = []string{"energy_drift", "step_time", "loss"}

// GalaxyObjective runs base with params applied for steps steps and scores
// the run by objective:
//
//	energy_drift  largest relative energy deviation
//	step_time     wall seconds per step
//	loss          fraction of stars that left the volume
func GalaxyObjective(base *config.Config, steps int, objective string) (Evaluate, error) {
	switch objective {
	case "energy_drift", "step_time", "loss":
	default:
		return nil, fmt.Errorf("optim: unknown objective %q", objective)
	}

	return func(ctx context.Context, params map[string]float64) (float64, error) {
		cfg := *base
		if err := cfg.Apply(params); err != nil {
			return 0, err
		}
		cfg.Sanitize()

		s := sim.New(&cfg)
		defer s.Close()
		if objective == "energy_drift" {
			s.AddMetric(metrics.NewEnergyDrift(cfg.SofteningMeters()))
		}

		start := time.Now()
		result, err := s.Run(ctx, steps, nil)
		elapsed := time.Since(start)
		if err != nil {
			return 0, err
		}

		switch objective {
		case "energy_drift":
			return result.Metrics["energy_drift"], nil
		case "step_time":
			return elapsed.Seconds() / float64(max(result.Steps, 1)), nil
		default:
			if result.LiveHistory[0] == 0 {
				return 0, nil
			}
			return 1 - float64(result.Live)/result.LiveHistory[0], nil
		}
	}, nil
}
