package sim

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/san-kum/galaxysim/internal/config"
	"github.com/san-kum/galaxysim/internal/metrics"
	"github.com/san-kum/galaxysim/internal/star"
	"github.com/san-kum/galaxysim/internal/units"
	"github.com/san-kum/galaxysim/internal/vec"
)

// binary returns two solar-mass stars on a circular orbit 1 AU apart and
// the matching config, with steps per orbit fixed.
func binary(verlet bool, stepsPerOrbit float64) (*config.Config, []star.Star) {
	m := units.SolarMass
	d := units.AU
	vRel := math.Sqrt(units.G * 2 * m / d)
	period := 2 * math.Pi * math.Sqrt(d*d*d/(units.G*2*m))

	cfg := config.DefaultConfig()
	cfg.Area = 0.1
	cfg.Softening = 0
	cfg.Precision = 0.5
	cfg.Verlet = verlet
	cfg.Workers = 2
	cfg.Step = period / stepsPerOrbit / units.Year

	dt := cfg.StepSeconds()
	stars := []star.Star{
		star.New(vec.New(-d/2, 0, 0), vec.New(0, -vRel/2, 0), m),
		star.New(vec.New(d/2, 0, 0), vec.New(0, vRel/2, 0), m),
	}
	for i := range stars {
		stars[i].InitHistory(dt)
	}
	return cfg, stars
}

// synchronized returns the stars with positions taken at the time their
// velocity refers to.
func synchronized(live []star.Star, verlet bool) []star.Star {
	out := append([]star.Star(nil), live...)
	if verlet {
		for i := range out {
			out[i].Pos = out[i].Prev
		}
	}
	return out
}

func TestVerletConservesEnergy(t *testing.T) {
	cfg, stars := binary(true, 2000)
	initial := metrics.Energy(stars, 0)

	s := NewWithStars(cfg, stars)
	defer s.Close()

	maxDrift := 0.0
	for i := 0; i < 4000; i++ {
		if _, err := s.Step(context.Background()); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		e := metrics.Energy(synchronized(s.Live(), true), 0)
		maxDrift = math.Max(maxDrift, math.Abs(e-initial)/math.Abs(initial))
	}

	if s.LiveCount() != 2 {
		t.Fatalf("binary lost a star: %d left", s.LiveCount())
	}
	if maxDrift > 1e-3 {
		t.Errorf("energy drift too large: %g", maxDrift)
	}
}

func TestEulerKeepsAngularMomentumDirection(t *testing.T) {
	cfg, stars := binary(false, 500)
	l0 := metrics.AngularMomentum(stars)
	e0 := metrics.Energy(stars, 0)

	s := NewWithStars(cfg, stars)
	defer s.Close()

	for i := 0; i < 2000; i++ {
		if _, err := s.Step(context.Background()); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		l := metrics.AngularMomentum(s.Live())
		if l.Dot(l0) <= 0 {
			t.Fatalf("step %d: angular momentum flipped: %v vs %v", i, l, l0)
		}
		if math.Abs(l.X) > 1e-6*l.Length() || math.Abs(l.Y) > 1e-6*l.Length() {
			t.Fatalf("step %d: orbit left its plane: %v", i, l)
		}
	}

	e := metrics.Energy(s.Live(), 0)
	t.Logf("euler energy drift after 4 orbits: %g", math.Abs(e-e0)/math.Abs(e0))
}

func TestStarLeavingVolumeDiesSameStep(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Area = 0.1
	cfg.Step = 0.01
	cfg.Verlet = false
	cfg.Workers = 3
	cfg.Softening = 0

	area := cfg.AreaMeters()
	dt := cfg.StepSeconds()
	stars := []star.Star{
		star.New(vec.New(units.AU, 0, 0), vec.Vec3{}, units.SolarMass),
		star.New(vec.New(-units.AU, 0, 0), vec.Vec3{}, units.SolarMass),
		star.New(vec.New(0, units.AU, 0), vec.Vec3{}, units.SolarMass),
		star.New(vec.New(0.5*area, 0, 0), vec.New(area/dt, 0, 0), 1e-6*units.SolarMass),
		star.New(vec.New(0, -units.AU, 0), vec.Vec3{}, units.SolarMass),
	}

	s := NewWithStars(cfg, stars)
	defer s.Close()

	r, err := s.Step(context.Background())
	if err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if r.Died != 1 || r.Live != 4 {
		t.Errorf("expected 1 death and 4 live, got %+v", r)
	}
	for i, st := range s.Live() {
		if !st.Alive {
			t.Errorf("live star %d is dead", i)
		}
		if st.Mass < units.SolarMass/2 {
			t.Errorf("escaped star still in the live range at %d", i)
		}
	}
	if s.Stars().Cap() != 5 {
		t.Error("container storage should be retained")
	}
	for _, st := range s.Stars().All()[s.LiveCount():] {
		if st.Alive {
			t.Error("star past the live boundary should be dead")
		}
	}
}

func TestStepOnEmptyGalaxy(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Area = 0.1
	cfg.Step = 1

	dt := cfg.StepSeconds()
	area := cfg.AreaMeters()
	stars := []star.Star{star.New(vec.Vec3{}, vec.New(2*area/dt, 0, 0), units.SolarMass)}
	stars[0].InitHistory(dt)

	s := NewWithStars(cfg, stars)
	defer s.Close()

	r, err := s.Step(context.Background())
	if err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if r.Live != 0 {
		t.Fatalf("lone star should have escaped, %d live", r.Live)
	}

	if _, err := s.Step(context.Background()); !errors.Is(err, ErrExtinct) {
		t.Errorf("expected ErrExtinct, got %v", err)
	}

	res, err := s.Run(context.Background(), 10, nil)
	if err != nil {
		t.Fatalf("run on extinct galaxy should not fail: %v", err)
	}
	if !res.Extinct || res.Steps != 1 {
		t.Errorf("unexpected result %+v", res)
	}
}

func endToEnd(t *testing.T, workers int) *Result {
	cfg := config.DefaultConfig()
	cfg.Stars = 100
	cfg.Seed = 42
	cfg.BlackHole = false
	cfg.Workers = workers

	s := New(cfg)
	defer s.Close()

	res, err := s.Run(context.Background(), 50, nil)
	if err != nil {
		t.Fatalf("run with %d workers failed: %v", workers, err)
	}
	if s.Workers() != workers {
		t.Fatalf("expected %d workers, got %d", workers, s.Workers())
	}
	return res
}

func TestWorkerCountDoesNotChangePhysics(t *testing.T) {
	single := endToEnd(t, 1)
	multi := endToEnd(t, 4)

	if single.Steps != 50 || multi.Steps != 50 {
		t.Fatalf("expected 50 steps, got %d and %d", single.Steps, multi.Steps)
	}
	if single.Live != multi.Live {
		t.Errorf("live count differs: %d vs %d", single.Live, multi.Live)
	}

	scale := config.DefaultConfig().AreaMeters()
	if d := vec.Distance(single.MassCenter, multi.MassCenter); d > 1e-9*scale {
		t.Errorf("center of mass differs by %g m", d)
	}
	for i := range single.LiveHistory {
		if single.LiveHistory[i] != multi.LiveHistory[i] {
			t.Errorf("live history differs at step %d", i)
			break
		}
	}
}

func TestFixedTimeStep(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Stars = 50
	s := New(cfg)
	defer s.Close()

	res, err := s.Run(context.Background(), 7, nil)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	want := 7 * cfg.StepSeconds()
	if math.Abs(res.Time-want) > 1e-9*want {
		t.Errorf("expected t=%g, got %g", want, res.Time)
	}
	if len(res.LiveHistory) != 8 {
		t.Errorf("expected 8 history samples, got %d", len(res.LiveHistory))
	}
}

func TestRunCallbackStops(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Stars = 50
	s := New(cfg)
	defer s.Close()

	calls := 0
	res, err := s.Run(context.Background(), 100, func(r StepResult) bool {
		calls++
		return r.Step < 3
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if calls != 3 || res.Steps != 3 {
		t.Errorf("expected 3 steps, got %d (%d calls)", res.Steps, calls)
	}
}

func TestRunCanceled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Stars = 50
	s := New(cfg)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := s.Run(ctx, 10, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if res.Steps != 0 {
		t.Errorf("no step should run on a canceled context, got %d", res.Steps)
	}
}

func TestCanceledRunLeavesWholeSteps(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Stars = 5000
	cfg.Workers = 4
	s := New(cfg)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	timer := time.AfterFunc(5*time.Millisecond, cancel)
	defer timer.Stop()

	res, err := s.Run(ctx, 100000, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// every completed step was compacted and counted, nothing is half done
	if res.Steps != s.StepCount() || len(res.LiveHistory) != res.Steps+1 {
		t.Errorf("steps %d, step count %d, %d history samples", res.Steps, s.StepCount(), len(res.LiveHistory))
	}
	for i, st := range s.Live() {
		if !st.Alive {
			t.Fatalf("star %d in the live range is dead", i)
		}
	}
	if want := float64(res.Steps) * cfg.StepSeconds(); math.Abs(s.Time()-want) > 1e-9*want {
		t.Errorf("time %g does not match %d whole steps", s.Time(), res.Steps)
	}
}

func TestStepOnCanceledContextChangesNothing(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Stars = 2000
	s := New(cfg)
	defer s.Close()

	before := make([]star.Star, s.LiveCount())
	copy(before, s.Live())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Step(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if s.StepCount() != 0 || s.LiveCount() != len(before) {
		t.Fatalf("canceled step advanced the simulation: step %d, live %d", s.StepCount(), s.LiveCount())
	}
	for i, st := range s.Live() {
		if st.Pos != before[i].Pos || st.Vel != before[i].Vel {
			t.Fatalf("star %d moved on a canceled step", i)
		}
	}
}

func TestStepAfterClose(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Stars = 20
	s := New(cfg)
	s.Close()

	_, err := s.Step(context.Background())
	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected StepError, got %v", err)
	}
	if stepErr.Step != 0 {
		t.Errorf("expected step 0, got %d", stepErr.Step)
	}
}

type countingMetric struct {
	count int
}

func (c *countingMetric) Name() string                        { return "count" }
func (c *countingMetric) Observe(live []star.Star, t float64) { c.count++ }
func (c *countingMetric) Value() float64                      { return float64(c.count) }
func (c *countingMetric) Reset()                              { c.count = 0 }

func TestSimulatorMetricsAndObservers(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Stars = 30
	s := New(cfg)
	defer s.Close()

	metric := &countingMetric{}
	s.AddMetric(metric)
	s.AddMetric(metrics.NewSurvival())

	observed := 0
	s.AddObserver(ObserverFunc(func(r StepResult, live []star.Star) {
		observed++
		if len(live) != r.Live {
			t.Errorf("observer got %d stars, result says %d", len(live), r.Live)
		}
	}))

	res, err := s.Run(context.Background(), 5, nil)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Metrics["count"] != 6 {
		t.Errorf("expected 6 observations (initial + 5 steps), got %f", res.Metrics["count"])
	}
	if _, ok := res.Metrics["survival"]; !ok {
		t.Error("survival metric missing from result")
	}
	if observed != 5 {
		t.Errorf("expected 5 observer calls, got %d", observed)
	}
}

func TestEnsemble(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Stars = 40
	cfg.Workers = 2

	results, err := NewEnsemble(cfg, 3, 10).Run(context.Background(), 5)
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Steps != 5 {
			t.Errorf("run %d: expected 5 steps, got %d", i, r.Steps)
		}
	}
}
