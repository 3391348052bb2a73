package simulate

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/phenosim/internal/genotype"
	"github.com/san-kum/phenosim/internal/kinship"
	"github.com/san-kum/phenosim/internal/model"
)

// ComponentResult is one slot of the phenotype before and after rescaling.
type ComponentResult struct {
	Slot        model.Slot
	Target      float64
	Raw         *mat.Dense
	Rescaled    *mat.Dense
	RawVariance float64
	Variance    float64
	Scale       float64
}

func (c ComponentResult) Name() string { return c.Slot.String() }

// Result is the phenotype with every intermediate needed to audit it.
// Components lists the generated slots in summation order.
type Result struct {
	Phenotype  *mat.Dense
	Components []ComponentResult
	Model      model.Model
	Causal     *genotype.Causal
	Kinship    *kinship.Kinship
	Seed       uint64
}

// Component returns the result for one slot, if it was generated.
func (r *Result) Component(s model.Slot) (ComponentResult, bool) {
	for _, c := range r.Components {
		if c.Slot == s {
			return c, true
		}
	}
	return ComponentResult{}, false
}

// Params is the completed parameter set.
func (r *Result) Params() map[string]float64 { return r.Model.Params() }
