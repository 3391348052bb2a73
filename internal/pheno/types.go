package pheno

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/phenosim/internal/errors"
)

// Kind identifies the generator a component came from.
type Kind string

const (
	KindGeneticFixed      Kind = "genetic_fixed"
	KindGeneticBackground Kind = "genetic_bg"
	KindNoiseFixed        Kind = "noise_fixed"
	KindCorrelated        Kind = "correlated_bg"
	KindNoiseBackground   Kind = "noise_bg"
)

// Component is the pair of N×P matrices a generator produces.
type Component struct {
	Kind        Kind
	Shared      *mat.Dense
	Independent *mat.Dense
}

// NewComponent returns a component with both sides zero.
func NewComponent(kind Kind, n, p int) Component {
	return Component{
		Kind:        kind,
		Shared:      mat.NewDense(n, p, nil),
		Independent: mat.NewDense(n, p, nil),
	}
}

// Dims returns the shape shared by both sides.
func (c Component) Dims() (n, p int) {
	return c.Shared.Dims()
}

// Variances returns the pooled variance of the shared and independent sides.
func (c Component) Variances() (shared, independent float64) {
	return PooledVariance(c.Shared), PooledVariance(c.Independent)
}

// Entries returns a copy of every entry of m in row-major order.
func Entries(m mat.Matrix) []float64 {
	r, c := m.Dims()
	out := make([]float64, 0, r*c)
	if d, ok := m.(*mat.Dense); ok {
		for i := 0; i < r; i++ {
			out = append(out, d.RawRowView(i)...)
		}
		return out
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out = append(out, m.At(i, j))
		}
	}
	return out
}

// PooledVariance is the sample variance of all entries of m pooled together.
// A matrix with fewer than two entries has variance 0.
func PooledVariance(m mat.Matrix) float64 {
	x := Entries(m)
	if len(x) < 2 {
		return 0
	}
	v := stat.Variance(x, nil)
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

// CheckDims returns an ErrDimension error if m is not rows×cols.
func CheckDims(name string, m mat.Matrix, rows, cols int) error {
	r, c := m.Dims()
	if r != rows || c != cols {
		return errors.Dimensionf("%s is %dx%d, want %dx%d", name, r, c, rows, cols)
	}
	return nil
}

// CheckSquare returns an ErrDimension error if m is not square.
func CheckSquare(name string, m mat.Matrix) (int, error) {
	r, c := m.Dims()
	if r != c {
		return 0, errors.Dimensionf("%s is %dx%d, want a square matrix", name, r, c)
	}
	return r, nil
}

// IsSymmetric reports whether m equals its transpose within tol.
func IsSymmetric(m mat.Matrix, tol float64) bool {
	r, c := m.Dims()
	if r != c {
		return false
	}
	for i := 0; i < r; i++ {
		for j := i + 1; j < c; j++ {
			if math.Abs(m.At(i, j)-m.At(j, i)) > tol {
				return false
			}
		}
	}
	return true
}

// IsValid reports whether m has no NaN or Inf entries.
func IsValid(m mat.Matrix) bool {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// StandardizeColumns returns a copy of m with every column centred and
// scaled to unit sample variance. Constant columns become zero.
func StandardizeColumns(m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, m)
		mean, sd := stat.MeanStdDev(col, nil)
		for i := 0; i < r; i++ {
			if sd > 0 && !math.IsNaN(sd) {
				out.Set(i, j, (col[i]-mean)/sd)
			}
		}
	}
	return out
}
