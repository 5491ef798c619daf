package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var ErrNoTrials = errors.New("optim: every trial failed")

// Evaluate scores one parameter combination. Lower is better.
type Evaluate func(ctx context.Context, params map[string]float64) (float64, error)

type Trial struct {
	Params map[string]float64
	Score  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Size is the number of combinations Search evaluates.
func (g *GridSearch) Size() int {
	if len(g.ranges) == 0 {
		return 0
	}
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search evaluates every combination in order, the last parameter varying
// fastest. Failed trials are kept with their error and never win. It stops
// early only when ctx is done.
func (g *GridSearch) Search(ctx context.Context, evaluate Evaluate) (Trial, []Trial, error) {
	if len(g.paramNames) != len(g.ranges) {
		return Trial{}, nil, fmt.Errorf("optim: %d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	trials := make([]Trial, 0, g.Size())
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), evaluate, &trials); err != nil {
		return Trial{}, trials, err
	}

	best := Trial{Score: math.Inf(1)}
	found := false
	for _, t := range trials {
		if t.Err == nil && (!found || t.Score < best.Score) {
			best = t
			found = true
		}
	}
	if !found {
		return Trial{}, trials, ErrNoTrials
	}
	return best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	evaluate Evaluate,
	trials *[]Trial,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		params := make(map[string]float64, len(current))
		for k, v := range current {
			params[k] = v
		}

		score, err := evaluate(ctx, params)
		if err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		*trials = append(*trials, Trial{Params: params, Score: score, Err: err})
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[paramName] = val
		if err := g.searchRecursive(ctx, depth+1, current, evaluate, trials); err != nil {
			return err
		}
	}
	delete(current, paramName)
	return nil
}
