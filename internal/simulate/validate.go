package simulate

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/phenosim/internal/errors"
	"github.com/san-kum/phenosim/internal/genotype"
	"github.com/san-kum/phenosim/internal/model"
	"github.com/san-kum/phenosim/internal/nonlinear"
)

// Validate runs every check a run needs before anything is drawn and
// returns the completed model.
func Validate(cfg Config) (model.Model, error) {
	return validate(cfg, nonlinear.NewRegistry())
}

func validate(cfg Config, reg *nonlinear.Registry) (model.Model, error) {
	if cfg.N <= 0 || cfg.P <= 0 {
		return model.Model{}, errors.Configuration("dimensions", []string{"N", "P"}, "N and P must be positive, got N=%d, P=%d", cfg.N, cfg.P)
	}

	m, err := model.Complete(cfg.Variance)
	if err != nil {
		return model.Model{}, err
	}

	needGenotypes := m.Genetic.HasFixed() || (m.Genetic.HasBackground() && cfg.Kinship == nil)
	if needGenotypes {
		if err := validateGenotypes(cfg); err != nil {
			return model.Model{}, err
		}
	}

	if m.Genetic.HasFixed() {
		if err := validateGeneticFixed(cfg, m); err != nil {
			return model.Model{}, err
		}
	}

	if cfg.Kinship != nil && cfg.Kinship.N() != cfg.N {
		n := cfg.Kinship.N()
		return model.Model{}, errors.Dimensionf("kinship is %dx%d, want %dx%d", n, n, cfg.N, cfg.N)
	}

	if m.Noise.HasFixed() {
		if err := validateNoiseFixed(cfg, m); err != nil {
			return model.Model{}, err
		}
	}

	if m.Noise.HasCorrelated() {
		cov, err := cfg.Correlated.Covariance(cfg.P)
		if err != nil {
			return model.Model{}, err
		}
		var chol mat.Cholesky
		if ok := chol.Factorize(cov); !ok {
			return model.Model{}, errors.Numericalf("trait covariance of size %d is not positive definite", cfg.P)
		}
	}

	if m.Noise.HasBackground() {
		if err := cfg.NoiseBackground.Validate(); err != nil {
			return model.Model{}, err
		}
	}

	if err := cfg.Nonlinear.Validate(reg); err != nil {
		return model.Model{}, err
	}
	return m, nil
}

func validateGenotypes(cfg Config) error {
	g := cfg.Genotypes
	if g.Source == nil {
		if g.Variants <= 0 {
			return errors.Configuration("genotypes", []string{"variants"}, "variant count must be positive, got %d", g.Variants)
		}
		return genotype.ValidateFrequencies(g.Frequencies)
	}

	if chrs, ok := g.Source.(genotype.Chromosomes); ok {
		if err := chrs.Validate(); err != nil {
			return err
		}
	}
	if g.Source.Samples() != cfg.N {
		return errors.Dimensionf("genotypes have %d samples, want %d", g.Source.Samples(), cfg.N)
	}
	return nil
}

func availableVariants(g GenotypeConfig) int {
	if g.Source == nil {
		return g.Variants
	}
	return g.Source.Variants()
}

func validateGeneticFixed(cfg Config, m model.Model) error {
	if err := cfg.GeneticFixed.Validate("genetic fixed effects"); err != nil {
		return err
	}

	g := cfg.Genotypes
	if g.ChrCausal > 0 {
		chrs, ok := g.Source.(genotype.Chromosomes)
		if !ok {
			return errors.Configuration("causal variants", []string{"chrCausal"}, "chromosome restriction needs a chromosome-partitioned genotype source")
		}
		if g.ChrCausal > len(chrs) {
			return errors.Samplingf("requested %d causal chromosomes, only %d available", g.ChrCausal, len(chrs))
		}
		// any draw of chromosomes must hold enough variants
		sizes := make([]int, len(chrs))
		for i, c := range chrs {
			sizes[i] = c.Reader.Variants()
		}
		sort.Ints(sizes)
		smallest := 0
		for _, s := range sizes[:g.ChrCausal] {
			smallest += s
		}
		if err := genotype.CheckCausal(g.Causal, smallest); err != nil {
			return errors.WithHintf(err, "the %d smallest chromosomes hold %d variants", g.ChrCausal, smallest)
		}
	}
	if err := genotype.CheckCausal(g.Causal, availableVariants(g)); err != nil {
		return err
	}

	indep, shared, traits := cfg.GeneticFixed.Split(g.Causal, cfg.P)
	return feasible("genetic fixed effects", m.Share(model.GeneticFixedShared), m.Share(model.GeneticFixedIndependent), indep, shared, traits)
}

func validateNoiseFixed(cfg Config, m model.Model) error {
	if err := cfg.NoiseFixed.Validate(); err != nil {
		return err
	}
	var indep, shared, traits int
	for _, set := range cfg.NoiseFixed.Sets {
		i, s, t := set.Split(set.Count, cfg.P)
		shared += s
		if t > 0 {
			indep += i
			traits = max(traits, t)
		}
	}
	return feasible("noise fixed effects", m.Share(model.NoiseFixedShared), m.Share(model.NoiseFixedIndependent), indep, shared, traits)
}

// feasible rejects a positive share that the effect structure can never
// produce, e.g. a shared share with every source independent.
func feasible(group string, sharedShare, indepShare float64, indep, shared, traits int) error {
	if sharedShare > 0 && shared == 0 {
		err := errors.Configuration(group, []string{"pIndependent"}, "shared share %g needs at least one shared source, but every source is independent", sharedShare)
		return errors.WithHint(err, "lower pIndependent or set the split's shared fraction to 0")
	}
	if indepShare > 0 && (indep == 0 || traits == 0) {
		err := errors.Configuration(group, []string{"pIndependent", "pTraitIndependent"}, "independent share %g needs at least one independent source affecting at least one trait", indepShare)
		return errors.WithHint(err, "raise pIndependent and pTraitIndependent or set the split's independent fraction to 0")
	}
	return nil
}
