package effects

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/phenosim/internal/errors"
	"github.com/san-kum/phenosim/internal/kinship"
	"github.com/san-kum/phenosim/internal/pheno"
)

// SharedDesign is a P×P trait design with normal entries in row 0 and zeros
// elsewhere, so every trait receives a multiple of the same sample effect.
func SharedDesign(p int, src rand.Source) *mat.Dense {
	a := mat.NewDense(p, p, nil)
	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	for j := 0; j < p; j++ {
		a.Set(0, j, norm.Rand())
	}
	return a
}

// IndependentDesign is a P×P diagonal trait design with normal entries.
func IndependentDesign(p int, src rand.Source) *mat.Dense {
	a := mat.NewDense(p, p, nil)
	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	for j := 0; j < p; j++ {
		a.Set(j, j, norm.Rand())
	}
	return a
}

// GeneticBackground draws infinitesimal genetic effects with covariance k
// across samples: each side is L·B·A for B ~ N(0,1) N×P and the matching
// trait design A.
func GeneticBackground(n, p int, k *kinship.Kinship, src rand.Source) (pheno.Component, error) {
	if n <= 0 || p <= 0 {
		return pheno.Component{}, errors.Dimensionf("genetic background needs N, P > 0, got N=%d, P=%d", n, p)
	}
	if k == nil {
		return pheno.Component{}, errors.Configuration("genetic background", []string{"kinship"}, "no kinship")
	}
	if k.N() != n {
		return pheno.Component{}, errors.Dimensionf("kinship is %dx%d, want %dx%d", k.N(), k.N(), n, n)
	}

	b := normals(n, p, 0, 1, src)
	shared := SharedDesign(p, src)
	indep := IndependentDesign(p, src)

	var lb mat.Dense
	lb.Mul(k.Cholesky(), b)
	c := pheno.Component{Kind: pheno.KindGeneticBackground}
	c.Shared = mat.NewDense(n, p, nil)
	c.Shared.Mul(&lb, shared)
	c.Independent = mat.NewDense(n, p, nil)
	c.Independent.Mul(&lb, indep)
	return c, nil
}

func normals(r, c int, mu, sigma float64, src rand.Source) *mat.Dense {
	norm := distuv.Normal{Mu: mu, Sigma: sigma, Src: src}
	m := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		row := m.RawRowView(i)
		for j := range row {
			row[j] = norm.Rand()
		}
	}
	return m
}
