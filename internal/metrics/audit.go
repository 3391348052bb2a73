package metrics

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/phenosim/internal/pheno"
	"github.com/san-kum/phenosim/internal/simulate"
)

type ComponentAudit struct {
	Name     string  `json:"name"`
	Target   float64 `json:"target"`
	Observed float64 `json:"observed"`
	Share    float64 `json:"share"`
}

// Audit is a per-run breakdown: each component's observed variance and its
// share of the phenotype's pooled variance, plus per-trait variances and
// the trait correlation matrix.
type Audit struct {
	Components    []ComponentAudit `json:"components"`
	Total         float64          `json:"total"`
	TraitVariance []float64        `json:"traitVariance"`
	Correlation   *mat.SymDense    `json:"-"`
}

func NewAudit(res *simulate.Result) Audit {
	a := Audit{
		Total:       pheno.PooledVariance(res.Phenotype),
		Correlation: Correlation(res.Phenotype),
	}
	for _, c := range res.Components {
		ca := ComponentAudit{Name: c.Name(), Target: c.Target, Observed: c.Variance}
		if a.Total > 0 {
			ca.Share = c.Variance / a.Total
		}
		a.Components = append(a.Components, ca)
	}

	_, p := res.Phenotype.Dims()
	a.TraitVariance = make([]float64, p)
	for j := 0; j < p; j++ {
		a.TraitVariance[j] = stat.Variance(mat.Col(nil, j, res.Phenotype), nil)
	}
	return a
}

// Component returns the audit row for a component name.
func (a Audit) Component(name string) (ComponentAudit, bool) {
	for _, c := range a.Components {
		if c.Name == name {
			return c, true
		}
	}
	return ComponentAudit{}, false
}
