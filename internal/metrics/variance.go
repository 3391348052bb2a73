package metrics

import (
	"math"

	"github.com/san-kum/phenosim/internal/pheno"
	"github.com/san-kum/phenosim/internal/simulate"
)

// ShareError is the largest |variance - target| over a run's components,
// averaged over runs.
type ShareError struct {
	name string
	acc  mean
}

func NewShareError() *ShareError { return &ShareError{name: "share_error"} }

func (s *ShareError) Name() string { return s.name }

func (s *ShareError) Observe(res *simulate.Result) {
	worst := 0.0
	for _, c := range res.Components {
		worst = math.Max(worst, math.Abs(c.Variance-c.Target))
	}
	s.acc.add(worst)
}

func (s *ShareError) Value() float64 { return s.acc.value() }
func (s *ShareError) Reset()         { s.acc = mean{} }

// TotalVariance is the pooled variance of the phenotype.
type TotalVariance struct {
	name string
	acc  mean
}

func NewTotalVariance() *TotalVariance { return &TotalVariance{name: "total_variance"} }

func (t *TotalVariance) Name() string { return t.name }

func (t *TotalVariance) Observe(res *simulate.Result) {
	t.acc.add(pheno.PooledVariance(res.Phenotype))
}

func (t *TotalVariance) Value() float64 { return t.acc.value() }
func (t *TotalVariance) Reset()         { t.acc = mean{} }

// Heritability is the summed variance of the genetic components over the
// phenotype's pooled variance.
type Heritability struct {
	name string
	acc  mean
}

func NewHeritability() *Heritability { return &Heritability{name: "heritability"} }

func (h *Heritability) Name() string { return h.name }

func (h *Heritability) Observe(res *simulate.Result) {
	total := pheno.PooledVariance(res.Phenotype)
	if total == 0 {
		h.acc.add(0)
		return
	}
	genetic := 0.0
	for _, c := range res.Components {
		if isGenetic(c.Slot.Kind()) {
			genetic += c.Variance
		}
	}
	h.acc.add(genetic / total)
}

func (h *Heritability) Value() float64 { return h.acc.value() }
func (h *Heritability) Reset()         { h.acc = mean{} }

func isGenetic(k pheno.Kind) bool {
	return k == pheno.KindGeneticFixed || k == pheno.KindGeneticBackground
}
