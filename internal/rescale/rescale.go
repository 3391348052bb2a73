// Package rescale scales a component so its pooled variance equals a target
// share of total phenotypic variance.
package rescale

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/phenosim/internal/errors"
	"github.com/san-kum/phenosim/internal/pheno"
)

// ErrDegenerate marks a component with zero pooled variance that was asked
// for a positive share. It is always also an errors.ErrNumerical.
var ErrDegenerate = errors.New("degenerate component")

// Rescale returns a copy of m scaled by sqrt(v/var(m)) together with that
// factor. A zero-variance m is copied unchanged with factor 0; if v is also
// positive the returned error marks it as degenerate.
func Rescale(m *mat.Dense, v float64) (*mat.Dense, float64, error) {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, 0, errors.Configuration("rescale", nil, "target variance %v must be finite and non-negative", v)
	}

	out := mat.DenseCopyOf(m)
	emp := pheno.PooledVariance(m)
	if emp == 0 {
		if v > 0 {
			err := errors.Mark(errors.Numericalf("component has zero variance, cannot reach target %v", v), ErrDegenerate)
			return out, 0, err
		}
		return out, 0, nil
	}

	scale := math.Sqrt(v / emp)
	out.Scale(scale, out)
	return out, scale, nil
}

// IsDegenerate reports whether err came from a zero-variance component.
func IsDegenerate(err error) bool { return errors.Is(err, ErrDegenerate) }
