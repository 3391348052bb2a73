// Package kinship builds the sample-by-sample genetic similarity matrix used
// as the covariance of infinitesimal genetic effects.
//
// A [Kinship] is immutable once built: its Cholesky factor is computed at
// construction, so every consumer only reads it and a non positive definite
// matrix is rejected before any effect is drawn.
package kinship

import (
	"io"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/phenosim/internal/errors"
	"github.com/san-kum/phenosim/internal/pheno"
)

// Ridge is added to every diagonal entry of an estimated kinship.
const Ridge = 1e-4

// SymmetryTol is the largest |K[i,j]-K[j,i]| accepted for a supplied kinship.
const SymmetryTol = 1e-8

type Kinship struct {
	k         *mat.SymDense
	l         *mat.TriDense
	estimated bool
}

// Estimate computes K = X·Xᵀ from a standardised genotype matrix, divides it
// by its mean diagonal and adds Ridge to the diagonal.
func Estimate(xStd *mat.Dense) (*Kinship, error) {
	n, m := xStd.Dims()
	if n == 0 || m == 0 {
		return nil, errors.Dimensionf("genotype matrix is %dx%d, want at least one sample and variant", n, m)
	}

	var k mat.SymDense
	k.SymOuterK(1, xStd)

	meanDiag := mat.Trace(&k) / float64(n)
	if meanDiag == 0 || math.IsNaN(meanDiag) {
		return nil, errors.Numericalf("kinship mean diagonal is %v, genotypes carry no variation", meanDiag)
	}
	scale := 1 / meanDiag
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := k.At(i, j) * scale
			if i == j {
				v += Ridge
			}
			k.SetSym(i, j, v)
		}
	}

	return factorize(&k, true)
}

// FromMatrix wraps a supplied kinship without normalisation. The matrix must
// be n×n, symmetric and positive definite.
func FromMatrix(k mat.Matrix, n int) (*Kinship, error) {
	size, err := pheno.CheckSquare("kinship", k)
	if err != nil {
		return nil, err
	}
	if size != n {
		return nil, errors.Dimensionf("kinship is %dx%d, want %dx%d", size, size, n, n)
	}
	if !pheno.IsValid(k) {
		return nil, errors.Configuration("kinship", nil, "kinship contains NaN or Inf entries")
	}
	if !pheno.IsSymmetric(k, SymmetryTol) {
		return nil, errors.Configuration("kinship", nil, "kinship is not symmetric")
	}

	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, k.At(i, j))
		}
	}
	return factorize(sym, false)
}

func factorize(k *mat.SymDense, estimated bool) (*Kinship, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(k); !ok {
		return nil, errors.WithHint(
			errors.Numericalf("kinship of size %d is not positive definite", k.SymmetricDim()),
			"a supplied kinship needs a positive diagonal ridge; estimated kinships add one automatically")
	}
	var l mat.TriDense
	chol.LTo(&l)
	return &Kinship{k: k, l: &l, estimated: estimated}, nil
}

// N is the number of samples.
func (k *Kinship) N() int { return k.k.SymmetricDim() }

// Matrix returns the kinship. Callers must not modify it.
func (k *Kinship) Matrix() *mat.SymDense { return k.k }

// Cholesky returns the lower factor L with K = L·Lᵀ. Callers must not
// modify it.
func (k *Kinship) Cholesky() *mat.TriDense { return k.l }

// Estimated reports whether the kinship was computed from genotypes.
func (k *Kinship) Estimated() bool { return k.estimated }

// ReadCSV parses an N×N kinship table with sample labels in the header and
// first column. It is validated with FromMatrix against its own size.
func ReadCSV(r io.Reader) (*Kinship, error) {
	t, err := pheno.ReadTable(r)
	if err != nil {
		return nil, errors.Wrap(err, "kinship")
	}
	n, _ := t.Data.Dims()
	return FromMatrix(t.Data, n)
}
