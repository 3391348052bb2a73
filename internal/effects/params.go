// Package effects draws the five effect components a phenotype is built
// from. Every generator returns a [pheno.Component] whose shared and
// independent sides are N×P; a side that does not apply is all zero.
//
// Generators receive their parameters by value and draw only from the
// rand.Source they are given.
package effects

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/phenosim/internal/errors"
)

// Effect-size distribution families.
const (
	DistNormal  = "normal"
	DistUniform = "uniform"
)

// Confounder families.
const (
	FamilyBinomial    = "binomial"
	FamilyCategorical = "categorical"
	FamilyUniform     = "uniform"
	FamilyNormal      = "normal"
)

const (
	DefaultPIndependent      = 0.4
	DefaultPTraitIndependent = 0.2
	DefaultConfounders       = 10
	DefaultPCorr             = 0.6
)

// Dist is an effect-size distribution.
type Dist struct {
	Family string  `yaml:"family" toml:"family" json:"family"`
	Mean   float64 `yaml:"mean,omitempty" toml:"mean,omitempty" json:"mean,omitempty"`
	SD     float64 `yaml:"sd,omitempty" toml:"sd,omitempty" json:"sd,omitempty"`
	Min    float64 `yaml:"min,omitempty" toml:"min,omitempty" json:"min,omitempty"`
	Max    float64 `yaml:"max,omitempty" toml:"max,omitempty" json:"max,omitempty"`
}

// DefaultDist is Normal(0, 1).
func DefaultDist() Dist { return Dist{Family: DistNormal, SD: 1} }

func (d Dist) Validate(group string) error {
	switch d.Family {
	case DistNormal:
		if !(d.SD > 0) || math.IsInf(d.SD, 0) || !finite(d.Mean) {
			return errors.Configuration(group, []string{"sd"}, "normal effect sizes need a finite mean and sd > 0, got N(%v, %v)", d.Mean, d.SD)
		}
	case DistUniform:
		if !finite(d.Min) || !finite(d.Max) || !(d.Max > d.Min) {
			return errors.Configuration(group, []string{"min", "max"}, "uniform effect sizes need min < max, got [%v, %v]", d.Min, d.Max)
		}
	default:
		return errors.Configuration(group, []string{"family"}, "unknown effect size distribution %q", d.Family)
	}
	return nil
}

func (d Dist) sampler(src rand.Source) func() float64 {
	if d.Family == DistUniform {
		return distuv.Uniform{Min: d.Min, Max: d.Max, Src: src}.Rand
	}
	return distuv.Normal{Mu: d.Mean, Sigma: d.SD, Src: src}.Rand
}

// FixedParams controls how fixed effects are spread over traits.
type FixedParams struct {
	// PIndependent is the fraction of sources (variants or confounders)
	// whose effects are trait-specific.
	PIndependent float64 `yaml:"pIndependent" toml:"pIndependent" json:"pIndependent"`
	// PTraitIndependent is the fraction of traits an independent source
	// affects.
	PTraitIndependent float64 `yaml:"pTraitIndependent" toml:"pTraitIndependent" json:"pTraitIndependent"`
	// KeepSameIndependent draws one trait subset for all independent
	// sources instead of one per source.
	KeepSameIndependent bool `yaml:"keepSameIndependent,omitempty" toml:"keepSameIndependent,omitempty" json:"keepSameIndependent,omitempty"`
	Effects             Dist `yaml:"effects" toml:"effects" json:"effects"`
}

func DefaultFixedParams() FixedParams {
	return FixedParams{
		PIndependent:      DefaultPIndependent,
		PTraitIndependent: DefaultPTraitIndependent,
		Effects:           DefaultDist(),
	}
}

func (f FixedParams) Validate(group string) error {
	if err := fraction(group, "pIndependent", f.PIndependent); err != nil {
		return err
	}
	if err := fraction(group, "pTraitIndependent", f.PTraitIndependent); err != nil {
		return err
	}
	return f.Effects.Validate(group)
}

// Split returns how k sources over p traits divide: the number of
// independent sources, shared sources and traits per independent source.
func (f FixedParams) Split(k, p int) (independent, shared, traits int) {
	independent = int(math.Round(f.PIndependent * float64(k)))
	if independent > k {
		independent = k
	}
	traits = int(math.Ceil(f.PTraitIndependent*float64(p) - 1e-9))
	if f.PTraitIndependent > 0 && traits < 1 {
		traits = 1
	}
	if traits > p {
		traits = p
	}
	return independent, k - independent, traits
}

// ConfounderSet is one group of non-genetic covariates drawn from a single
// family, with its own effect structure.
type ConfounderSet struct {
	Count  int     `yaml:"count" toml:"count" json:"count"`
	Family string  `yaml:"family" toml:"family" json:"family"`
	Prob   float64 `yaml:"prob,omitempty" toml:"prob,omitempty" json:"prob,omitempty"`
	Levels int     `yaml:"levels,omitempty" toml:"levels,omitempty" json:"levels,omitempty"`
	Min    float64 `yaml:"min,omitempty" toml:"min,omitempty" json:"min,omitempty"`
	Max    float64 `yaml:"max,omitempty" toml:"max,omitempty" json:"max,omitempty"`
	Mean   float64 `yaml:"mean,omitempty" toml:"mean,omitempty" json:"mean,omitempty"`
	SD     float64 `yaml:"sd,omitempty" toml:"sd,omitempty" json:"sd,omitempty"`

	FixedParams `yaml:",inline"`
}

// DefaultConfounderSet is DefaultConfounders normal confounders.
func DefaultConfounderSet() ConfounderSet {
	return ConfounderSet{
		Count:       DefaultConfounders,
		Family:      FamilyNormal,
		SD:          1,
		FixedParams: DefaultFixedParams(),
	}
}

func (c ConfounderSet) Validate(group string) error {
	if c.Count <= 0 {
		return errors.Configuration(group, []string{"count"}, "confounder count must be positive, got %d", c.Count)
	}
	switch c.Family {
	case FamilyBinomial:
		if !(c.Prob > 0 && c.Prob < 1) {
			return errors.Configuration(group, []string{"prob"}, "binomial confounders need prob in (0,1), got %v", c.Prob)
		}
	case FamilyCategorical:
		if c.Levels < 2 {
			return errors.Configuration(group, []string{"levels"}, "categorical confounders need at least 2 levels, got %d", c.Levels)
		}
	case FamilyUniform:
		if !finite(c.Min) || !finite(c.Max) || !(c.Max > c.Min) {
			return errors.Configuration(group, []string{"min", "max"}, "uniform confounders need min < max, got [%v, %v]", c.Min, c.Max)
		}
	case FamilyNormal:
		if !(c.SD > 0) || math.IsInf(c.SD, 0) || !finite(c.Mean) {
			return errors.Configuration(group, []string{"sd"}, "normal confounders need a finite mean and sd > 0, got N(%v, %v)", c.Mean, c.SD)
		}
	default:
		return errors.Configuration(group, []string{"family"}, "unknown confounder family %q", c.Family)
	}
	return c.FixedParams.Validate(group)
}

func (c ConfounderSet) sampler(src rand.Source) func() float64 {
	switch c.Family {
	case FamilyBinomial:
		return distuv.Binomial{N: 1, P: c.Prob, Src: src}.Rand
	case FamilyCategorical:
		w := make([]float64, c.Levels)
		for i := range w {
			w[i] = 1
		}
		return distuv.NewCategorical(w, src).Rand
	case FamilyUniform:
		return distuv.Uniform{Min: c.Min, Max: c.Max, Src: src}.Rand
	default:
		return distuv.Normal{Mu: c.Mean, Sigma: c.SD, Src: src}.Rand
	}
}

// NoiseFixedParams holds one or more confounder sets.
type NoiseFixedParams struct {
	Sets []ConfounderSet `yaml:"sets" toml:"sets" json:"sets"`
}

func (p NoiseFixedParams) Validate() error {
	if len(p.Sets) == 0 {
		return errors.Configuration("noise fixed effects", []string{"sets"}, "no confounder sets")
	}
	for i, s := range p.Sets {
		if err := s.Validate("noise fixed effects"); err != nil {
			return errors.Wrapf(err, "confounder set %d", i)
		}
	}
	return nil
}

// CorrelatedParams configures the correlated background. Cov, when set, is
// used as the P×P trait covariance instead of PCorr^|i-j|.
type CorrelatedParams struct {
	PCorr float64     `yaml:"pcorr" toml:"pcorr" json:"pcorr"`
	Cov   [][]float64 `yaml:"cov,omitempty" toml:"cov,omitempty" json:"cov,omitempty"`
}

// NoiseBgParams configures observational noise.
type NoiseBgParams struct {
	Mean float64 `yaml:"mean" toml:"mean" json:"mean"`
	SD   float64 `yaml:"sd" toml:"sd" json:"sd"`
}

func (p NoiseBgParams) Validate() error {
	if !(p.SD > 0) || math.IsInf(p.SD, 0) || !finite(p.Mean) {
		return errors.Configuration("observational noise", []string{"sd"}, "observational noise needs a finite mean and sd > 0, got N(%v, %v)", p.Mean, p.SD)
	}
	return nil
}

func fraction(group, name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return errors.Configuration(group, []string{name}, "%s = %v outside [0,1]", name, v)
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
