package sweep

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/phenosim/internal/errors"
	"github.com/san-kum/phenosim/internal/model"
	"github.com/san-kum/phenosim/internal/simulate"
)

func smallConfig() simulate.Config {
	cfg := simulate.DefaultConfig()
	cfg.N = 40
	cfg.P = 4
	cfg.Genotypes.Variants = 200
	return cfg
}

func TestSpan(t *testing.T) {
	a := Span("genVar", 0.1, 0.5, 5)
	assert.Equal(t, "genVar", a.Param)
	assert.InDeltaSlice(t, []float64{0.1, 0.2, 0.3, 0.4, 0.5}, a.Values, 1e-12)

	assert.Equal(t, []float64{0.3}, Span("h2s", 0.3, 0.9, 1).Values)
}

func TestSetParam(t *testing.T) {
	var p model.Params
	require.NoError(t, SetParam(&p, "gamma.shared", 0.3))
	require.NotNil(t, p.Gamma.Shared)
	assert.Equal(t, 0.3, *p.Gamma.Shared)

	require.NoError(t, ClearParam(&p, "gamma.shared"))
	assert.Nil(t, p.Gamma.Shared)

	err := SetParam(&p, "kappa", 1)
	assert.True(t, errors.IsConfiguration(err))
	assert.Contains(t, ParamNames(), "alpha.independent")
}

func TestGridSingleAxis(t *testing.T) {
	g := NewGrid(nil, Axis{Param: "genVar", Values: []float64{0.2, 0.6}})
	points, err := g.Run(context.Background(), smallConfig(), 3)
	require.NoError(t, err)
	require.Len(t, points, 2)

	for _, pt := range points {
		require.NoError(t, pt.Err)
		assert.InDelta(t, 0, pt.Metrics["share_error"], 1e-8)
	}
	assert.Equal(t, 0.2, points[0].Params["genVar"])
	assert.Less(t, points[0].Metrics["heritability"], points[1].Metrics["heritability"])
}

func TestGridRecordsInvalidPoints(t *testing.T) {
	// delta 0.3 + rho 0.1 leaves 0.6 for phi
	g := NewGrid(nil,
		Axis{Param: "genVar", Values: []float64{0.3}},
		Axis{Param: "phi", Values: []float64{0.6, 0.9}},
	)
	points, err := g.Run(context.Background(), smallConfig(), 1)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.NoError(t, points[0].Err)
	assert.True(t, errors.IsConfiguration(points[1].Err))
	assert.Nil(t, points[1].Metrics)
	assert.Equal(t, map[string]float64{"genVar": 0.3, "phi": 0.9}, points[1].Params)

	best, ok := Best(points, "share_error")
	require.True(t, ok)
	assert.Equal(t, 0.6, best.Params["phi"])
}

func TestGridErrors(t *testing.T) {
	_, err := NewGrid(nil).Run(context.Background(), smallConfig(), 0)
	assert.True(t, errors.IsConfiguration(err))

	_, err = NewGrid(nil, Axis{Param: "genVar"}).Run(context.Background(), smallConfig(), 0)
	assert.True(t, errors.IsConfiguration(err))

	_, err = NewGrid(nil, Axis{Param: "nope", Values: []float64{1}}).Run(context.Background(), smallConfig(), 0)
	assert.True(t, errors.IsConfiguration(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewGrid(nil, Axis{Param: "genVar", Values: []float64{0.4}}).Run(ctx, smallConfig(), 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBestEmpty(t *testing.T) {
	_, ok := Best(nil, "share_error")
	assert.False(t, ok)
}
