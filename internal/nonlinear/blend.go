package nonlinear

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/san-kum/phenosim/internal/rescale"
)

const (
	BlendMixture  = "mixture"
	BlendVariance = "variance"
	BlendTraits   = "traits"
)

// Blend combines a linear phenotype y with f applied to it, using weight a.
type Blend interface {
	Name() string
	Apply(y *mat.Dense, f Func, a float64, src rand.Source) (*mat.Dense, error)
}

// Mixture is the default blend: (1-a)·y + a·f(y) per entry.
type Mixture struct{}

func (Mixture) Name() string { return BlendMixture }

func (Mixture) Apply(y *mat.Dense, f Func, a float64, _ rand.Source) (*mat.Dense, error) {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 { return (1-a)*v + a*f(v) }, y)
	return &out, nil
}

// Variance rescales y to pooled variance 1-a and f(y) to a before summing,
// so a is the nonlinear share of the total variance.
type Variance struct{}

func (Variance) Name() string { return BlendVariance }

func (Variance) Apply(y *mat.Dense, f Func, a float64, _ rand.Source) (*mat.Dense, error) {
	lin, _, err := rescale.Rescale(y, 1-a)
	if err != nil {
		return nil, err
	}
	nl, _, err := rescale.Rescale(transform(y, f), a)
	if err != nil {
		return nil, err
	}
	lin.Add(lin, nl)
	return lin, nil
}

// Traits replaces round(a·P) randomly chosen traits by f of themselves and
// leaves the rest linear.
type Traits struct{}

func (Traits) Name() string { return BlendTraits }

// Count is the number of traits replaced out of p.
func (Traits) Count(p int, a float64) int {
	k := int(math.Round(a * float64(p)))
	if k > p {
		k = p
	}
	return k
}

func (t Traits) Apply(y *mat.Dense, f Func, a float64, src rand.Source) (*mat.Dense, error) {
	out := mat.DenseCopyOf(y)
	n, p := y.Dims()
	k := t.Count(p, a)
	if k == 0 {
		return out, nil
	}
	idx := make([]int, k)
	sampleuv.WithoutReplacement(idx, p, src)
	for _, j := range idx {
		for i := 0; i < n; i++ {
			out.Set(i, j, f(y.At(i, j)))
		}
	}
	return out, nil
}
