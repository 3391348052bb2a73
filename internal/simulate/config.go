package simulate

import (
	"github.com/san-kum/phenosim/internal/effects"
	"github.com/san-kum/phenosim/internal/genotype"
	"github.com/san-kum/phenosim/internal/kinship"
	"github.com/san-kum/phenosim/internal/model"
	"github.com/san-kum/phenosim/internal/nonlinear"
)

const (
	DefaultN        = 100
	DefaultP        = 15
	DefaultVariants = 5000
	DefaultCausal   = 20
)

// GenotypeConfig describes where causal variants and the estimated kinship
// come from. With no Source, Variants columns are simulated per run.
type GenotypeConfig struct {
	Source      genotype.Source
	Variants    int
	Frequencies []float64
	Causal      int
	// ChrCausal restricts causal variants to that many random chromosomes
	// of a chromosome-partitioned Source. 0 uses all of them.
	ChrCausal int
}

// Config is everything one run needs. It is read, never modified.
type Config struct {
	N, P int

	Genotypes GenotypeConfig
	// Kinship is used as given when set; otherwise it is estimated from
	// the genotypes.
	Kinship *kinship.Kinship

	GeneticFixed    effects.FixedParams
	NoiseFixed      effects.NoiseFixedParams
	Correlated      effects.CorrelatedParams
	NoiseBackground effects.NoiseBgParams

	Variance    model.Params
	Nonlinear   nonlinear.Config
	Standardise bool
}

// DefaultConfig is a 100×15 run with every component active.
func DefaultConfig() Config {
	return Config{
		N: DefaultN,
		P: DefaultP,
		Genotypes: GenotypeConfig{
			Variants:    DefaultVariants,
			Frequencies: genotype.DefaultFrequencies,
			Causal:      DefaultCausal,
		},
		GeneticFixed:    effects.DefaultFixedParams(),
		NoiseFixed:      effects.NoiseFixedParams{Sets: []effects.ConfounderSet{effects.DefaultConfounderSet()}},
		Correlated:      effects.CorrelatedParams{PCorr: effects.DefaultPCorr},
		NoiseBackground: effects.NoiseBgParams{Mean: 0, SD: 1},
		Variance: model.Params{
			GenVar: model.Float(0.4),
			H2s:    model.Float(0.1),
			Delta:  model.Float(0.3),
			Rho:    model.Float(0.1),
		},
	}
}
