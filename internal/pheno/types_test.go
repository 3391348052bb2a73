package pheno

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/phenosim/internal/errors"
)

func TestPooledVariance(t *testing.T) {
	tests := []struct {
		name     string
		m        *mat.Dense
		expected float64
	}{
		{"constant", mat.NewDense(2, 2, []float64{3, 3, 3, 3}), 0},
		{"single entry", mat.NewDense(1, 1, []float64{5}), 0},
		{"pooled across columns", mat.NewDense(2, 2, []float64{1, 2, 3, 4}), 5.0 / 3.0},
		{"zeros", mat.NewDense(3, 2, nil), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PooledVariance(tt.m); math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("PooledVariance() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestPooledVarianceIsNotPerColumn(t *testing.T) {
	// each column is constant, but the columns differ
	m := mat.NewDense(3, 2, []float64{0, 10, 0, 10, 0, 10})
	if PooledVariance(m) == 0 {
		t.Error("expected non-zero pooled variance for differing constant columns")
	}
}

func TestCheckDims(t *testing.T) {
	m := mat.NewDense(4, 3, nil)
	if err := CheckDims("component", m, 4, 3); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := CheckDims("component", m, 3, 4)
	if !errors.IsDimension(err) {
		t.Errorf("expected dimension error, got %v", err)
	}

	if _, err := CheckSquare("kinship", m); !errors.IsDimension(err) {
		t.Errorf("expected dimension error for non-square, got %v", err)
	}
	n, err := CheckSquare("kinship", mat.NewDense(5, 5, nil))
	if err != nil || n != 5 {
		t.Errorf("CheckSquare() = %d, %v", n, err)
	}
}

func TestIsSymmetric(t *testing.T) {
	sym := mat.NewDense(2, 2, []float64{1, 0.5, 0.5, 1})
	asym := mat.NewDense(2, 2, []float64{1, 0.5, 0.4, 1})

	if !IsSymmetric(sym, 1e-12) {
		t.Error("expected symmetric")
	}
	if IsSymmetric(asym, 1e-12) {
		t.Error("expected asymmetric")
	}
	if IsSymmetric(mat.NewDense(2, 3, nil), 1e-12) {
		t.Error("non-square matrix cannot be symmetric")
	}
}

func TestIsValid(t *testing.T) {
	if !IsValid(mat.NewDense(2, 2, []float64{1, 2, 3, 4})) {
		t.Error("expected valid")
	}
	if IsValid(mat.NewDense(1, 2, []float64{1, math.NaN()})) {
		t.Error("expected NaN to be invalid")
	}
	if IsValid(mat.NewDense(1, 2, []float64{math.Inf(-1), 0})) {
		t.Error("expected Inf to be invalid")
	}
}

func TestStandardizeColumns(t *testing.T) {
	m := mat.NewDense(4, 2, []float64{
		1, 7,
		2, 7,
		3, 7,
		4, 7,
	})
	s := StandardizeColumns(m)

	col := mat.Col(nil, 0, s)
	sum, sq := 0.0, 0.0
	for _, v := range col {
		sum += v
		sq += v * v
	}
	if math.Abs(sum) > 1e-12 {
		t.Errorf("expected zero mean, got %v", sum/4)
	}
	if math.Abs(sq/3-1) > 1e-12 {
		t.Errorf("expected unit variance, got %v", sq/3)
	}

	for i := 0; i < 4; i++ {
		if s.At(i, 1) != 0 {
			t.Errorf("constant column should standardise to zero, got %v", s.At(i, 1))
		}
	}
	if m.At(0, 0) != 1 {
		t.Error("input matrix was modified")
	}
}

func TestNewComponent(t *testing.T) {
	c := NewComponent(KindNoiseBackground, 3, 2)
	n, p := c.Dims()
	if n != 3 || p != 2 {
		t.Errorf("expected 3x2, got %dx%d", n, p)
	}
	s, i := c.Variances()
	if s != 0 || i != 0 {
		t.Errorf("expected zero variances, got %v %v", s, i)
	}
}
