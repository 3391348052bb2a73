// Package ensemble runs one configuration under consecutive seeds in
// parallel.
package ensemble

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/phenosim/internal/errors"
	"github.com/san-kum/phenosim/internal/metrics"
	"github.com/san-kum/phenosim/internal/simulate"
)

type Ensemble struct {
	sim       *simulate.Simulator
	numRuns   int
	seedStart uint64
	workers   int
}

func New(s *simulate.Simulator, numRuns int, seedStart uint64) *Ensemble {
	if s == nil {
		s = simulate.New()
	}
	return &Ensemble{sim: s, numRuns: numRuns, seedStart: seedStart, workers: runtime.GOMAXPROCS(0)}
}

// WithWorkers bounds the number of concurrent runs; n < 1 means unbounded.
func (e *Ensemble) WithWorkers(n int) *Ensemble {
	e.workers = n
	return e
}

// Run simulates cfg with seeds seedStart, seedStart+1, ... and returns the
// results in seed order. The configuration is validated once before any run
// starts; the first failing run cancels the rest.
func (e *Ensemble) Run(ctx context.Context, cfg simulate.Config) ([]*simulate.Result, error) {
	if e.numRuns < 1 {
		return nil, errors.Configuration("ensemble", []string{"runs"}, "runs = %d must be at least 1", e.numRuns)
	}
	if _, err := e.sim.Validate(cfg); err != nil {
		return nil, err
	}

	results := make([]*simulate.Result, e.numRuns)
	g, ctx := errgroup.WithContext(ctx)
	if e.workers > 0 {
		g.SetLimit(e.workers)
	}

	for i := 0; i < e.numRuns; i++ {
		seed := e.seedStart + uint64(i)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := e.sim.Run(cfg, seed)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Summarize observes every result with ms (all default metrics when empty)
// and returns the means by name.
func Summarize(results []*simulate.Result, ms ...metrics.Metric) map[string]float64 {
	if len(ms) == 0 {
		ms = metrics.Default()
	}
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for _, res := range results {
			m.Observe(res)
		}
		out[m.Name()] = m.Value()
	}
	return out
}
