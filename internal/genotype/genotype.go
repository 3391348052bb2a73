// Package genotype simulates genotype matrices and selects causal variants
// from in-memory or chromosome-partitioned genotype sources.
package genotype

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/phenosim/internal/errors"
	"github.com/san-kum/phenosim/internal/pheno"
)

// DefaultFrequencies are the candidate allele frequencies used when none
// are configured.
var DefaultFrequencies = []float64{0.1, 0.2, 0.4}

// ValidateFrequencies checks that freqs is non-empty and inside (0,1).
func ValidateFrequencies(freqs []float64) error {
	if len(freqs) == 0 {
		return errors.Configuration("genotypes", []string{"frequencies"}, "no candidate allele frequencies")
	}
	for _, f := range freqs {
		if !(f > 0 && f < 1) || math.IsNaN(f) {
			return errors.Configuration("genotypes", []string{"frequencies"}, "allele frequency %v outside (0,1)", f)
		}
	}
	return nil
}

// Simulate draws an n×m dosage matrix. Each variant gets an allele frequency
// drawn uniformly from freqs, and each sample a Binomial(2, f) dosage. The
// per-variant frequencies are returned alongside.
func Simulate(n, m int, freqs []float64, src rand.Source) (*mat.Dense, []float64, error) {
	if n <= 0 {
		return nil, nil, errors.Configuration("genotypes", []string{"N"}, "sample count must be positive, got %d", n)
	}
	if m <= 0 {
		return nil, nil, errors.Configuration("genotypes", []string{"variants"}, "variant count must be positive, got %d", m)
	}
	if err := ValidateFrequencies(freqs); err != nil {
		return nil, nil, err
	}

	rnd := rand.New(src)
	x := mat.NewDense(n, m, nil)
	drawn := make([]float64, m)
	for j := 0; j < m; j++ {
		f := freqs[rnd.IntN(len(freqs))]
		drawn[j] = f
		b := distuv.Binomial{N: 2, P: f, Src: src}
		for i := 0; i < n; i++ {
			x.Set(i, j, b.Rand())
		}
	}
	return x, drawn, nil
}

// Standardize returns x with every variant column centred to zero mean and
// scaled to unit variance. Monomorphic variants become all-zero columns.
func Standardize(x mat.Matrix) *mat.Dense {
	return pheno.StandardizeColumns(x)
}

