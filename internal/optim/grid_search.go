package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ErrNoCandidate is returned when every grid point failed to evaluate.
var ErrNoCandidate = errors.New("no candidate evaluated successfully")

// Objective scores one parameter set; lower is better. It must be safe for
// concurrent use.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

type Candidate struct {
	Params map[string]float64
	Score  float64
	Err    error
}

type Result struct {
	Best       Candidate
	Candidates []Candidate
	Failed     int
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, workers: runtime.GOMAXPROCS(0)}
}

// WithWorkers bounds how many candidates are evaluated at once.
func (g *GridSearch) WithWorkers(n int) *GridSearch {
	if n > 0 {
		g.workers = n
	}
	return g
}

// Points enumerates the grid in row-major order of the parameter list.
func (g *GridSearch) Points() []map[string]float64 {
	var out []map[string]float64
	g.collect(0, make(map[string]float64), &out)
	return out
}

func (g *GridSearch) collect(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.collect(depth+1, newParams, out)
	}
}

// Search evaluates every grid point and returns the lowest score. Candidates
// whose objective fails are recorded and skipped; cancelling ctx stops the
// search.
func (g *GridSearch) Search(ctx context.Context, objective Objective) (*Result, error) {
	if len(g.paramNames) == 0 || len(g.paramNames) != len(g.ranges) {
		return nil, fmt.Errorf("grid search needs one range per parameter, got %d names and %d ranges",
			len(g.paramNames), len(g.ranges))
	}

	points := g.Points()
	cands := make([]Candidate, len(points))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, p := range points {
		i, p := i, p // per-iteration copies for pre-1.22 loop semantics
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			score, err := objective(ctx, p)
			if err == nil && math.IsNaN(score) {
				err = fmt.Errorf("objective returned NaN")
			}
			cands[i] = Candidate{Params: p, Score: score, Err: err}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Candidates: cands}
	bestIdx := -1
	for i, c := range cands {
		if c.Err != nil {
			res.Failed++
			continue
		}
		if bestIdx < 0 || c.Score < cands[bestIdx].Score {
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return res, fmt.Errorf("%w: %d of %d failed", ErrNoCandidate, res.Failed, len(cands))
	}
	res.Best = cands[bestIdx]
	return res, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
