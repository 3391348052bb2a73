package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/phenosim/internal/simulate"
)

// TraitCorrelation is the mean absolute off-diagonal correlation between
// traits. Constant traits contribute 0.
type TraitCorrelation struct {
	name string
	acc  mean
}

func NewTraitCorrelation() *TraitCorrelation { return &TraitCorrelation{name: "trait_correlation"} }

func (t *TraitCorrelation) Name() string { return t.name }

func (t *TraitCorrelation) Observe(res *simulate.Result) {
	c := Correlation(res.Phenotype)
	p := c.SymmetricDim()
	if p < 2 {
		t.acc.add(0)
		return
	}
	sum := 0.0
	for i := 0; i < p; i++ {
		for j := i + 1; j < p; j++ {
			sum += math.Abs(c.At(i, j))
		}
	}
	t.acc.add(sum / float64(p*(p-1)/2))
}

func (t *TraitCorrelation) Value() float64 { return t.acc.value() }
func (t *TraitCorrelation) Reset()         { t.acc = mean{} }

// Correlation returns the P×P correlation matrix of y's columns. Entries
// involving a constant column are 0 off the diagonal.
func Correlation(y mat.Matrix) *mat.SymDense {
	_, p := y.Dims()
	c := mat.NewSymDense(p, nil)
	stat.CorrelationMatrix(c, y, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			if math.IsNaN(c.At(i, j)) {
				v := 0.0
				if i == j {
					v = 1
				}
				c.SetSym(i, j, v)
			}
		}
	}
	return c
}
