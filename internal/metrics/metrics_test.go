package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/phenosim/internal/model"
	"github.com/san-kum/phenosim/internal/simulate"
)

func handResult() *simulate.Result {
	// trait 2 = 2*trait 1, trait 3 constant
	y := mat.NewDense(4, 3, []float64{
		1, 2, 5,
		2, 4, 5,
		3, 6, 5,
		4, 8, 5,
	})
	return &simulate.Result{
		Phenotype: y,
		Components: []simulate.ComponentResult{
			{Slot: model.GeneticBackgroundShared, Target: 0.3, Variance: 0.32},
			{Slot: model.NoiseBackgroundIndependent, Target: 0.7, Variance: 0.65},
		},
	}
}

func TestShareError(t *testing.T) {
	m := NewShareError()
	m.Observe(handResult())
	if math.Abs(m.Value()-0.05) > 1e-12 {
		t.Errorf("expected 0.05, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", m.Value())
	}
}

func TestHeritability(t *testing.T) {
	res := handResult()
	m := NewHeritability()
	m.Observe(res)

	total := NewTotalVariance()
	total.Observe(res)
	want := 0.32 / total.Value()
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("expected %f, got %f", want, m.Value())
	}
}

func TestCorrelation(t *testing.T) {
	c := Correlation(handResult().Phenotype)
	if math.Abs(c.At(0, 1)-1) > 1e-12 {
		t.Errorf("expected perfect correlation, got %f", c.At(0, 1))
	}
	if c.At(0, 2) != 0 || c.At(2, 2) != 1 {
		t.Errorf("constant trait should give 0 off-diagonal and 1 on it, got %f %f", c.At(0, 2), c.At(2, 2))
	}

	m := NewTraitCorrelation()
	m.Observe(handResult())
	if math.Abs(m.Value()-1.0/3) > 1e-12 {
		t.Errorf("expected 1/3, got %f", m.Value())
	}
}

func TestAccumulates(t *testing.T) {
	m := NewShareError()
	m.Observe(handResult())
	m.Observe(&simulate.Result{Phenotype: mat.NewDense(2, 1, []float64{0, 1})})
	if math.Abs(m.Value()-0.025) > 1e-12 {
		t.Errorf("expected mean 0.025 over two runs, got %f", m.Value())
	}
}

func TestCollectDefault(t *testing.T) {
	got := Collect(handResult())
	for _, name := range []string{"share_error", "total_variance", "heritability", "trait_correlation"} {
		if _, ok := got[name]; !ok {
			t.Errorf("missing metric %s", name)
		}
	}
}

func TestAuditSimulated(t *testing.T) {
	cfg := simulate.DefaultConfig()
	cfg.Genotypes.Variants = 300
	res, err := simulate.Run(cfg, 3)
	if err != nil {
		t.Fatal(err)
	}

	a := NewAudit(res)
	if len(a.Components) != len(res.Components) {
		t.Fatalf("expected %d components, got %d", len(res.Components), len(a.Components))
	}
	for _, c := range a.Components {
		if math.Abs(c.Observed-c.Target) > 1e-8 {
			t.Errorf("%s: observed %f, target %f", c.Name, c.Observed, c.Target)
		}
	}
	if len(a.TraitVariance) != cfg.P {
		t.Errorf("expected %d trait variances, got %d", cfg.P, len(a.TraitVariance))
	}
	if a.Correlation.SymmetricDim() != cfg.P {
		t.Errorf("expected %dx%d correlation", cfg.P, cfg.P)
	}
	if _, ok := a.Component("noise_bg_independent"); !ok {
		t.Error("expected noise_bg_independent in audit")
	}
}
