package effects

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/phenosim/internal/errors"
	"github.com/san-kum/phenosim/internal/pheno"
)

// CorrelatedCov builds the P×P covariance with C[i,j] = pcorr^|i-j|.
func CorrelatedCov(p int, pcorr float64) *mat.SymDense {
	c := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			c.SetSym(i, j, math.Pow(pcorr, float64(j-i)))
		}
	}
	return c
}

// Covariance resolves the trait covariance of prm for p traits, checking a
// supplied matrix for shape and symmetry.
func (prm CorrelatedParams) Covariance(p int) (*mat.SymDense, error) {
	if prm.Cov == nil {
		if math.IsNaN(prm.PCorr) || prm.PCorr <= -1 || prm.PCorr >= 1 {
			return nil, errors.Configuration("correlated background", []string{"pcorr"}, "pcorr = %v outside (-1,1)", prm.PCorr)
		}
		return CorrelatedCov(p, prm.PCorr), nil
	}

	if len(prm.Cov) != p {
		return nil, errors.Dimensionf("trait covariance has %d rows, want %d", len(prm.Cov), p)
	}
	for i, row := range prm.Cov {
		if len(row) != p {
			return nil, errors.Dimensionf("trait covariance row %d has %d entries, want %d", i, len(row), p)
		}
	}
	c := mat.NewSymDense(p, nil)
	for i, row := range prm.Cov {
		for j := i; j < p; j++ {
			if math.Abs(row[j]-prm.Cov[j][i]) > 1e-8 {
				return nil, errors.Configuration("correlated background", []string{"cov"}, "trait covariance is not symmetric at (%d,%d)", i, j)
			}
			c.SetSym(i, j, row[j])
		}
	}
	return c, nil
}

// Correlated draws N rows from MVN(0, C). There is no shared/independent
// split; the whole matrix is returned on the shared side.
func Correlated(n, p int, prm CorrelatedParams, src rand.Source) (pheno.Component, error) {
	if n <= 0 || p <= 0 {
		return pheno.Component{}, errors.Dimensionf("correlated background needs N, P > 0, got N=%d, P=%d", n, p)
	}
	cov, err := prm.Covariance(p)
	if err != nil {
		return pheno.Component{}, err
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(cov); !ok {
		return pheno.Component{}, errors.Numericalf("trait covariance of size %d is not positive definite", p)
	}
	var l mat.TriDense
	chol.LTo(&l)

	// row i of Z·Lᵀ is L·z_i
	z := normals(n, p, 0, 1, src)
	c := pheno.NewComponent(pheno.KindCorrelated, n, p)
	c.Shared.Mul(z, l.T())
	return c, nil
}

// NoiseBackground draws observational noise: an i.i.d. Normal(mean, sd)
// independent side and a rank-1 shared side u·wᵀ with standard normal u
// and w.
func NoiseBackground(n, p int, prm NoiseBgParams, src rand.Source) (pheno.Component, error) {
	if err := prm.Validate(); err != nil {
		return pheno.Component{}, err
	}
	if n <= 0 || p <= 0 {
		return pheno.Component{}, errors.Dimensionf("observational noise needs N, P > 0, got N=%d, P=%d", n, p)
	}

	c := pheno.Component{Kind: pheno.KindNoiseBackground}
	c.Independent = normals(n, p, prm.Mean, prm.SD, src)

	u := normals(n, 1, 0, 1, src)
	w := normals(p, 1, 0, 1, src)
	c.Shared = mat.NewDense(n, p, nil)
	c.Shared.Outer(1, u.ColView(0), w.ColView(0))
	return c, nil
}
