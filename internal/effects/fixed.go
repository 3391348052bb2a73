package effects

import (
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/san-kum/phenosim/internal/errors"
	"github.com/san-kum/phenosim/internal/pheno"
)

// GeneticFixed draws effects for an N×k causal genotype matrix over p
// traits. x is used as given; callers standardise it first.
func GeneticFixed(x *mat.Dense, p int, prm FixedParams, src rand.Source) (pheno.Component, error) {
	if err := prm.Validate("genetic fixed effects"); err != nil {
		return pheno.Component{}, err
	}
	n, k := x.Dims()
	if p <= 0 || n == 0 || k == 0 {
		return pheno.Component{}, errors.Dimensionf("genetic fixed effects need a non-empty causal matrix and P > 0, got %dx%d, P=%d", n, k, p)
	}
	c := pheno.NewComponent(pheno.KindGeneticFixed, n, p)
	fixedEffects(c, x, prm, src)
	return c, nil
}

// NoiseFixed draws every confounder set and its effects. Sets are treated
// as consecutive column blocks of one confounder matrix, so the component
// is the sum of each block's contribution.
func NoiseFixed(n, p int, prm NoiseFixedParams, src rand.Source) (pheno.Component, error) {
	if err := prm.Validate(); err != nil {
		return pheno.Component{}, err
	}
	if n <= 0 || p <= 0 {
		return pheno.Component{}, errors.Dimensionf("noise fixed effects need N, P > 0, got N=%d, P=%d", n, p)
	}
	c := pheno.NewComponent(pheno.KindNoiseFixed, n, p)
	for _, set := range prm.Sets {
		x := Confounders(n, set, src)
		fixedEffects(c, x, set.FixedParams, src)
	}
	return c, nil
}

// Confounders draws an N×Count matrix from the set's family.
func Confounders(n int, set ConfounderSet, src rand.Source) *mat.Dense {
	draw := set.sampler(src)
	x := mat.NewDense(n, set.Count, nil)
	for j := 0; j < set.Count; j++ {
		for i := 0; i < n; i++ {
			x.Set(i, j, draw())
		}
	}
	return x
}

// fixedEffects adds X_shared·B_shared and X_indep·B_indep to c.
func fixedEffects(c pheno.Component, x *mat.Dense, prm FixedParams, src rand.Source) {
	_, k := x.Dims()
	_, p := c.Dims()
	nIndep, nShared, nTraits := prm.Split(k, p)

	indep := draw(nIndep, k, src)
	isIndep := make(map[int]bool, len(indep))
	for _, j := range indep {
		isIndep[j] = true
	}
	shared := make([]int, 0, nShared)
	for j := 0; j < k; j++ {
		if !isIndep[j] {
			shared = append(shared, j)
		}
	}

	effect := prm.Effects.sampler(src)

	if len(shared) > 0 {
		b := mat.NewDense(len(shared), p, nil)
		for r := range shared {
			e := effect()
			for t := 0; t < p; t++ {
				b.Set(r, t, e)
			}
		}
		accumulate(c.Shared, columns(x, shared), b)
	}

	if len(indep) > 0 && nTraits > 0 {
		b := mat.NewDense(len(indep), p, nil)
		var traits []int
		for r := range indep {
			if traits == nil || !prm.KeepSameIndependent {
				traits = draw(nTraits, p, src)
			}
			for _, t := range traits {
				b.Set(r, t, effect())
			}
		}
		accumulate(c.Independent, columns(x, indep), b)
	}
}

// draw returns k sorted distinct integers from [0, n).
func draw(k, n int, src rand.Source) []int {
	if k <= 0 {
		return nil
	}
	idx := make([]int, k)
	sampleuv.WithoutReplacement(idx, n, src)
	sort.Ints(idx)
	return idx
}

func columns(x *mat.Dense, idx []int) *mat.Dense {
	n, _ := x.Dims()
	out := mat.NewDense(n, len(idx), nil)
	col := make([]float64, n)
	for k, j := range idx {
		mat.Col(col, j, x)
		out.SetCol(k, col)
	}
	return out
}

func accumulate(dst *mat.Dense, a, b mat.Matrix) {
	var prod mat.Dense
	prod.Mul(a, b)
	dst.Add(dst, &prod)
}
