package sim

import (
	"context"
	"errors"
	"math/rand"

	"github.com/san-kum/galaxysim/internal/block"
	"github.com/san-kum/galaxysim/internal/config"
	"github.com/san-kum/galaxysim/internal/galaxy"
	"github.com/san-kum/galaxysim/internal/metrics"
	"github.com/san-kum/galaxysim/internal/pool"
	"github.com/san-kum/galaxysim/internal/star"
	"github.com/san-kum/galaxysim/internal/vec"
)

type Simulator struct {
	cfg    config.Config
	stars  *star.Container
	pool   *pool.Pool
	tree   *block.Block
	params star.Params
	bounds block.Params

	step int
	t    float64

	metrics   []metrics.Metric
	observers []Observer
}

// New sanitizes cfg, populates the galaxy from cfg.Seed and starts the
// worker pool. Close must be called to stop the workers.
func New(cfg *config.Config) *Simulator {
	c := *cfg
	c.Sanitize()
	stars := galaxy.Initialize(&c, rand.New(rand.NewSource(c.Seed)))
	return NewWithStars(&c, stars)
}

// NewWithStars runs the given population instead of a generated one. The
// stars are used as they are: Verlet history must already be set.
func NewWithStars(cfg *config.Config, stars []star.Star) *Simulator {
	c := *cfg
	c.Sanitize()
	s := &Simulator{
		cfg:   c,
		stars: star.NewContainer(stars),
		pool:  pool.New(c.Workers),
		params: star.Params{
			Dt:         c.StepSeconds(),
			Area:       c.AreaMeters(),
			Precision:  c.Precision,
			Verlet:     c.Verlet,
			RealColors: c.Render.RealColors,
		},
		bounds: block.Params{
			Area:      c.AreaMeters(),
			Softening: c.SofteningMeters(),
		},
		metrics:   make([]metrics.Metric, 0),
		observers: make([]Observer, 0),
	}
	s.tree = block.Build(star.LiveSource(s.stars.Live()), s.bounds)
	return s
}

func (s *Simulator) AddMetric(m metrics.Metric) { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)     { s.observers = append(s.observers, o) }
func (s *Simulator) Config() config.Config      { return s.cfg }
func (s *Simulator) Stars() *star.Container     { return s.stars }
func (s *Simulator) LiveCount() int             { return s.stars.LiveCount() }
func (s *Simulator) StepCount() int             { return s.step }
func (s *Simulator) Time() float64              { return s.t }
func (s *Simulator) Workers() int               { return s.pool.Workers() }
func (s *Simulator) MassCenter() vec.Vec3       { return s.tree.MassCenter() }
func (s *Simulator) Live() []star.Star          { return s.stars.Live() }
func (s *Simulator) PoolStates() []pool.State   { return s.pool.States() }
func (s *Simulator) Block() *block.Block        { return s.tree }

// Step advances the simulation by one fixed time step: rebuild the tree
// over the live stars, update every star on the pool, wait for all
// chunks, then compact the dead stars out of the live range. A step is
// applied whole or not at all: ctx only keeps a new step from starting.
func (s *Simulator) Step(ctx context.Context) (StepResult, error) {
	live := s.stars.LiveCount()
	if live == 0 {
		return StepResult{}, ErrExtinct
	}
	if err := ctx.Err(); err != nil {
		return StepResult{}, &StepError{Step: s.step, Time: s.t, Wrapped: err}
	}

	tree := block.Build(star.LiveSource(s.stars.Live()), s.bounds)
	s.tree = tree

	stars := s.stars.Live()
	params := s.params
	err := s.pool.Dispatch(ctx, live, func(c pool.Chunk) {
		for i := c.Start; i < c.End; i++ {
			stars[i].Update(params, tree)
		}
	})
	if err != nil {
		return StepResult{}, &StepError{Step: s.step, Time: s.t, Wrapped: err}
	}

	died := s.stars.Compact()
	s.step++
	s.t += s.params.Dt

	r := StepResult{
		Step:       s.step,
		Time:       s.t,
		Live:       s.stars.LiveCount(),
		Died:       died,
		MassCenter: tree.MassCenter(),
	}

	for _, m := range s.metrics {
		m.Observe(s.stars.Live(), s.t)
	}
	for _, o := range s.observers {
		o.OnStep(r, s.stars.Live())
	}
	return r, nil
}

// Run performs up to steps steps. It stops early, without error, when no
// live stars remain or when callback returns false.
func (s *Simulator) Run(ctx context.Context, steps int, callback func(StepResult) bool) (*Result, error) {
	result := &Result{
		LiveHistory: make([]float64, 0, steps+1),
		Metrics:     make(map[string]float64),
	}
	result.LiveHistory = append(result.LiveHistory, float64(s.stars.LiveCount()))

	for _, m := range s.metrics {
		m.Reset()
		m.Observe(s.stars.Live(), s.t)
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.fill(result)
			return result, ctx.Err()
		default:
		}

		r, err := s.Step(ctx)
		if errors.Is(err, ErrExtinct) {
			result.Extinct = true
			break
		}
		if err != nil {
			s.fill(result)
			return result, err
		}

		result.Died += r.Died
		result.LiveHistory = append(result.LiveHistory, float64(r.Live))
		if callback != nil && !callback(r) {
			break
		}
	}

	s.fill(result)
	return result, nil
}

func (s *Simulator) fill(result *Result) {
	result.Steps = s.step
	result.Time = s.t
	result.Live = s.stars.LiveCount()
	result.MassCenter = s.tree.MassCenter()
	result.Extinct = result.Extinct || result.Live == 0
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

// Close stops and joins the worker pool.
func (s *Simulator) Close() {
	s.pool.Stop()
}
