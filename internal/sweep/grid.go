// Package sweep runs a simulation over a grid of variance parameters and
// reports the audited metrics at every point.
package sweep

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/phenosim/internal/errors"
	"github.com/san-kum/phenosim/internal/metrics"
	"github.com/san-kum/phenosim/internal/simulate"
)

type Axis struct {
	Param  string
	Values []float64
}

// Span is an axis of n evenly spaced values from lo to hi inclusive.
func Span(param string, lo, hi float64, n int) Axis {
	if n < 2 {
		return Axis{Param: param, Values: []float64{lo}}
	}
	return Axis{Param: param, Values: floats.Span(make([]float64, n), lo, hi)}
}

// Point is one grid cell. Err is set when the configuration at this point
// is invalid; Metrics is then nil.
type Point struct {
	Params  map[string]float64
	Metrics map[string]float64
	Err     error
}

type Grid struct {
	axes []Axis
	sim  *simulate.Simulator
}

func NewGrid(sim *simulate.Simulator, axes ...Axis) *Grid {
	if sim == nil {
		sim = simulate.New()
	}
	return &Grid{axes: axes, sim: sim}
}

// Run evaluates every combination of axis values on top of base, in
// row-major order of the axes. Each point's swept parameters replace any
// values base sets for them, and each point reuses seed.
func (g *Grid) Run(ctx context.Context, base simulate.Config, seed uint64) ([]Point, error) {
	if len(g.axes) == 0 {
		return nil, errors.Configuration("sweep", nil, "no axes")
	}
	for _, a := range g.axes {
		if len(a.Values) == 0 {
			return nil, errors.Configuration("sweep", []string{a.Param}, "axis %s has no values", a.Param)
		}
		if err := ClearParam(&base.Variance, a.Param); err != nil {
			return nil, err
		}
	}

	var points []Point
	err := g.runRecursive(ctx, 0, base, map[string]float64{}, seed, &points)
	return points, err
}

func (g *Grid) runRecursive(
	ctx context.Context,
	depth int,
	cfg simulate.Config,
	current map[string]float64,
	seed uint64,
	points *[]Point,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.axes) {
		params := make(map[string]float64, len(current))
		for k, v := range current {
			params[k] = v
		}
		pt := Point{Params: params}

		res, err := g.sim.Run(cfg, seed)
		if err != nil {
			pt.Err = err
		} else {
			pt.Metrics = metrics.Collect(res)
		}
		*points = append(*points, pt)
		return nil
	}

	axis := g.axes[depth]
	for _, val := range axis.Values {
		next := cfg
		if err := SetParam(&next.Variance, axis.Param, val); err != nil {
			return err
		}
		current[axis.Param] = val
		if err := g.runRecursive(ctx, depth+1, next, current, seed, points); err != nil {
			return err
		}
	}
	delete(current, axis.Param)
	return nil
}

// Best returns the valid point with the smallest value of metric.
func Best(points []Point, metric string) (Point, bool) {
	best := math.Inf(1)
	var out Point
	found := false
	for _, pt := range points {
		if pt.Err != nil {
			continue
		}
		v, ok := pt.Metrics[metric]
		if !ok || v >= best {
			continue
		}
		best = v
		out = pt
		found = true
	}
	return out, found
}
