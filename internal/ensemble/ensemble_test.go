package ensemble

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/phenosim/internal/errors"
	"github.com/san-kum/phenosim/internal/model"
	"github.com/san-kum/phenosim/internal/simulate"
)

func smallConfig() simulate.Config {
	cfg := simulate.DefaultConfig()
	cfg.N = 40
	cfg.P = 5
	cfg.Genotypes.Variants = 200
	return cfg
}

func TestEnsembleRun(t *testing.T) {
	ens := New(nil, 4, 10).WithWorkers(2)
	results, err := ens.Run(context.Background(), smallConfig())
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i, res := range results {
		require.NotNil(t, res)
		assert.Equal(t, uint64(10+i), res.Seed)
	}
	assert.False(t, mat.Equal(results[0].Phenotype, results[1].Phenotype), "different seeds should differ")
}

func TestEnsembleMatchesSequential(t *testing.T) {
	cfg := smallConfig()
	results, err := New(nil, 3, 5).Run(context.Background(), cfg)
	require.NoError(t, err)

	for i, res := range results {
		single, err := simulate.Run(cfg, uint64(5+i))
		require.NoError(t, err)
		assert.True(t, mat.Equal(single.Phenotype, res.Phenotype), "run %d", i)
	}
}

func TestEnsembleInvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Variance = model.Params{GenVar: model.Float(0.7), NoiseVar: model.Float(0.5)}

	_, err := New(nil, 3, 0).Run(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.IsConfiguration(err))
}

func TestEnsembleRunCount(t *testing.T) {
	for _, n := range []int{0, -1} {
		results, err := New(nil, n, 1).Run(context.Background(), smallConfig())
		require.Error(t, err, "runs=%d", n)
		assert.True(t, errors.IsConfiguration(err))
		assert.Nil(t, results)
	}
}

func TestEnsembleCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil, 3, 0).WithWorkers(1).Run(ctx, smallConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummarize(t *testing.T) {
	results, err := New(nil, 3, 1).Run(context.Background(), smallConfig())
	require.NoError(t, err)

	summary := Summarize(results)
	assert.InDelta(t, 0, summary["share_error"], 1e-8)
	assert.Contains(t, summary, "heritability")
	assert.Contains(t, summary, "trait_correlation")
}
