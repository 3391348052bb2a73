// Package nonlinear applies an optional nonlinear step to a composed
// phenotype. A [Func] transforms entries and a [Blend] decides how much of
// the phenotype it replaces.
package nonlinear

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/phenosim/internal/errors"
	"github.com/san-kum/phenosim/internal/pheno"
)

// Negative-input handling for log and sqrt.
const (
	NegativeAbs  = "abs"
	NegativeSet0 = "set0"
)

// Config selects a transform and how strongly it is blended in.
type Config struct {
	Transform string `yaml:"transform,omitempty" toml:"transform,omitempty" json:"transform,omitempty"`
	// Proportion is the blend weight a in [0,1].
	Proportion float64 `yaml:"proportion,omitempty" toml:"proportion,omitempty" json:"proportion,omitempty"`
	Blend      string  `yaml:"blend,omitempty" toml:"blend,omitempty" json:"blend,omitempty"`
	Base       float64 `yaml:"base,omitempty" toml:"base,omitempty" json:"base,omitempty"`
	Power      float64 `yaml:"power,omitempty" toml:"power,omitempty" json:"power,omitempty"`
	Negative   string  `yaml:"negative,omitempty" toml:"negative,omitempty" json:"negative,omitempty"`
}

// Enabled reports whether the step changes anything.
func (c Config) Enabled() bool { return c.Transform != "" && c.Proportion > 0 }

func (c Config) base() float64 {
	if c.Base == 0 {
		return math.E
	}
	return c.Base
}

func (c Config) power() float64 {
	if c.Power == 0 {
		return 2
	}
	return c.Power
}

// guard applies the negative-input policy. With set0 the result is 0 for
// negative inputs, and also for zero when zeroInvalid is set.
func (c Config) guard(fn Func, zeroInvalid bool) Func {
	if c.Negative == NegativeSet0 {
		return func(x float64) float64 {
			if x < 0 || (zeroInvalid && x == 0) {
				return 0
			}
			return fn(x)
		}
	}
	return func(x float64) float64 { return fn(math.Abs(x)) }
}

// Validate checks c against the transforms and blends in r.
func (c Config) Validate(r *Registry) error {
	if math.IsNaN(c.Proportion) || c.Proportion < 0 || c.Proportion > 1 {
		return errors.Configuration("nonlinear", []string{"proportion"}, "proportion = %v outside [0,1]", c.Proportion)
	}
	if !c.Enabled() {
		return nil
	}
	if _, err := r.GetTransform(c); err != nil {
		return err
	}
	if _, err := r.GetBlend(c.Blend); err != nil {
		return err
	}
	switch c.Transform {
	case "exp", "log":
		if b := c.base(); !(b > 0) || b == 1 || math.IsInf(b, 0) {
			return errors.Configuration("nonlinear", []string{"base"}, "base = %v must be positive and not 1", c.Base)
		}
	case "poly":
		if p := c.power(); p != math.Trunc(p) || p < 1 {
			return errors.Configuration("nonlinear", []string{"power"}, "power = %v must be a positive integer", c.Power)
		}
	}
	switch c.Transform {
	case "log", "sqrt":
		if c.Negative != "" && c.Negative != NegativeAbs && c.Negative != NegativeSet0 {
			return errors.Configuration("nonlinear", []string{"negative"}, "negative = %q, want %q or %q", c.Negative, NegativeAbs, NegativeSet0)
		}
	}
	return nil
}

// Apply runs the configured step on y with the registry's transforms. y is
// not modified.
func (r *Registry) Apply(y *mat.Dense, c Config, src rand.Source) (*mat.Dense, error) {
	if !c.Enabled() {
		return mat.DenseCopyOf(y), nil
	}
	if err := c.Validate(r); err != nil {
		return nil, err
	}
	fn, _ := r.GetTransform(c)
	blend, _ := r.GetBlend(c.Blend)

	out, err := blend.Apply(y, fn, c.Proportion, src)
	if err != nil {
		return nil, errors.Wrapf(err, "%s blend of %s", blend.Name(), c.Transform)
	}
	if !pheno.IsValid(out) {
		return nil, errors.Numericalf("%s transform produced NaN or Inf entries", c.Transform)
	}
	return out, nil
}

// Apply uses a fresh default registry.
func Apply(y *mat.Dense, c Config, src rand.Source) (*mat.Dense, error) {
	return NewRegistry().Apply(y, c, src)
}

func transform(y *mat.Dense, fn Func) *mat.Dense {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 { return fn(v) }, y)
	return &out
}
