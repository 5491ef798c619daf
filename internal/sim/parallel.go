package sim

import (
	"context"
	"sync"

	"github.com/san-kum/galaxysim/internal/config"
)

// Ensemble runs the same configuration with consecutive seeds side by side.
type Ensemble struct {
	cfg       config.Config
	numRuns   int
	seedStart int64
}

func NewEnsemble(cfg *config.Config, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{cfg: *cfg, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, steps int) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := e.cfg
			cfgCopy.Seed = e.seedStart + int64(idx)

			s := New(&cfgCopy)
			defer s.Close()
			results[idx], errs[idx] = s.Run(ctx, steps, nil)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
