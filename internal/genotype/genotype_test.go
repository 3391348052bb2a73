package genotype

import (
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/phenosim/internal/errors"
	"github.com/san-kum/phenosim/internal/pheno"
)

func TestSimulate(t *testing.T) {
	x, freqs, err := Simulate(200, 30, DefaultFrequencies, rand.NewPCG(1, 2))
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}

	n, m := x.Dims()
	if n != 200 || m != 30 {
		t.Fatalf("expected 200x30, got %dx%d", n, m)
	}
	if len(freqs) != 30 {
		t.Errorf("expected 30 frequencies, got %d", len(freqs))
	}

	for j := 0; j < m; j++ {
		found := false
		for _, f := range DefaultFrequencies {
			if freqs[j] == f {
				found = true
			}
		}
		if !found {
			t.Errorf("variant %d frequency %v not drawn from candidates", j, freqs[j])
		}
		for i := 0; i < n; i++ {
			v := x.At(i, j)
			if v != 0 && v != 1 && v != 2 {
				t.Fatalf("dosage %v at (%d,%d) not in {0,1,2}", v, i, j)
			}
		}
	}
}

func TestSimulateFrequencyMatches(t *testing.T) {
	x, _, err := Simulate(5000, 1, []float64{0.3}, rand.NewPCG(7, 7))
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}
	got := stat.Mean(mat.Col(nil, 0, x), nil) / 2
	if math.Abs(got-0.3) > 0.02 {
		t.Errorf("expected allele frequency ~0.3, got %.4f", got)
	}
}

func TestSimulateDeterministic(t *testing.T) {
	a, _, _ := Simulate(50, 10, DefaultFrequencies, rand.NewPCG(3, 4))
	b, _, _ := Simulate(50, 10, DefaultFrequencies, rand.NewPCG(3, 4))
	if !mat.Equal(a, b) {
		t.Error("same seed produced different genotypes")
	}
}

func TestSimulateInvalid(t *testing.T) {
	tests := []struct {
		name  string
		n, m  int
		freqs []float64
	}{
		{"zero samples", 0, 10, DefaultFrequencies},
		{"negative samples", -1, 10, DefaultFrequencies},
		{"zero variants", 10, 0, DefaultFrequencies},
		{"no frequencies", 10, 10, nil},
		{"frequency zero", 10, 10, []float64{0, 0.2}},
		{"frequency one", 10, 10, []float64{0.2, 1}},
		{"frequency NaN", 10, 10, []float64{math.NaN()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Simulate(tt.n, tt.m, tt.freqs, rand.NewPCG(1, 1))
			if !errors.IsConfiguration(err) {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestStandardize(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{
		0, 1,
		1, 1,
		2, 1,
		1, 1,
	})
	s := Standardize(x)
	col := mat.Col(nil, 0, s)
	mean := (col[0] + col[1] + col[2] + col[3]) / 4
	if math.Abs(mean) > 1e-12 {
		t.Errorf("expected zero mean, got %v", mean)
	}
	for i := 0; i < 4; i++ {
		if s.At(i, 1) != 0 {
			t.Errorf("monomorphic column should be zero, got %v", s.At(i, 1))
		}
	}
}

func TestSelectCausalTooMany(t *testing.T) {
	x, _, _ := Simulate(20, 10, DefaultFrequencies, rand.NewPCG(1, 1))
	c, err := SelectCausal(NewMatrix(x), 50, rand.NewPCG(2, 2))
	if !errors.IsSampling(err) {
		t.Fatalf("expected sampling error, got %v", err)
	}
	if c != nil {
		t.Error("expected no causal matrix on error")
	}
}

func TestSelectCausalNonPositive(t *testing.T) {
	x, _, _ := Simulate(20, 10, DefaultFrequencies, rand.NewPCG(1, 1))
	if _, err := SelectCausal(NewMatrix(x), 0, rand.NewPCG(2, 2)); !errors.IsConfiguration(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestSelectCausalMatrix(t *testing.T) {
	x, _, _ := Simulate(20, 10, DefaultFrequencies, rand.NewPCG(1, 1))
	c, err := SelectCausal(NewMatrix(x), 4, rand.NewPCG(5, 5))
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if err := pheno.CheckDims("causal", c.X, 20, 4); err != nil {
		t.Fatal(err)
	}

	seen := map[int]bool{}
	for k, ref := range c.Refs {
		if seen[ref.Global] {
			t.Errorf("variant %d selected twice", ref.Global)
		}
		seen[ref.Global] = true
		if k > 0 && c.Refs[k-1].Global >= ref.Global {
			t.Error("causal variants not in increasing order")
		}
		for i := 0; i < 20; i++ {
			if c.X.At(i, k) != x.At(i, ref.Global) {
				t.Fatalf("causal column %d does not match variant %d", k, ref.Global)
			}
		}
	}
}

func splitChromosomes(x *mat.Dense, sizes ...int) Chromosomes {
	n, _ := x.Dims()
	out := Chromosomes{}
	start := 0
	for i, s := range sizes {
		part := mat.DenseCopyOf(x.Slice(0, n, start, start+s))
		out = append(out, Chromosome{Name: string(rune('A' + i)), Reader: NewMatrix(part)})
		start += s
	}
	return out
}

func TestChromosomesColumns(t *testing.T) {
	x, _, _ := Simulate(15, 12, DefaultFrequencies, rand.NewPCG(1, 1))
	chrs := splitChromosomes(x, 2, 7, 3)

	if chrs.Variants() != 12 || chrs.Samples() != 15 {
		t.Fatalf("unexpected source size %dx%d", chrs.Samples(), chrs.Variants())
	}

	idx := []int{0, 1, 2, 8, 9, 11}
	got, refs, err := chrs.Columns(idx)
	if err != nil {
		t.Fatalf("columns failed: %v", err)
	}

	wantChr := []string{"A", "A", "B", "B", "C", "C"}
	wantLocal := []int{0, 1, 0, 6, 0, 2}
	for k, g := range idx {
		if refs[k].Chromosome != wantChr[k] || refs[k].Index != wantLocal[k] {
			t.Errorf("variant %d: got %s:%d, want %s:%d", g, refs[k].Chromosome, refs[k].Index, wantChr[k], wantLocal[k])
		}
		for i := 0; i < 15; i++ {
			if got.At(i, k) != x.At(i, g) {
				t.Fatalf("column for global variant %d differs", g)
			}
		}
	}

	if _, _, err := chrs.Columns([]int{12}); !errors.IsDimension(err) {
		t.Errorf("expected dimension error for out-of-range variant, got %v", err)
	}
}

func TestChromosomesMismatchedSamples(t *testing.T) {
	a, _, _ := Simulate(10, 3, DefaultFrequencies, rand.NewPCG(1, 1))
	b, _, _ := Simulate(12, 3, DefaultFrequencies, rand.NewPCG(1, 1))
	chrs := Chromosomes{{Name: "1", Reader: NewMatrix(a)}, {Name: "2", Reader: NewMatrix(b)}}
	if err := chrs.Validate(); !errors.IsDimension(err) {
		t.Errorf("expected dimension error, got %v", err)
	}
}

// Selection must be uniform per variant, not per chromosome: a chromosome
// holding 90% of the variants should receive ~90% of the picks.
func TestSelectCausalUniformPerVariant(t *testing.T) {
	x, _, _ := Simulate(5, 100, DefaultFrequencies, rand.NewPCG(1, 1))
	chrs := splitChromosomes(x, 10, 90)

	src := rand.NewPCG(9, 9)
	small := 0
	draws := 0
	for r := 0; r < 400; r++ {
		c, err := SelectCausal(chrs, 5, src)
		if err != nil {
			t.Fatalf("select failed: %v", err)
		}
		for _, ref := range c.Refs {
			if ref.Chromosome == "A" {
				small++
			}
			draws++
		}
	}
	frac := float64(small) / float64(draws)
	if math.Abs(frac-0.1) > 0.03 {
		t.Errorf("expected ~10%% of picks on the small chromosome, got %.3f", frac)
	}
}

func TestSelectCausalFrom(t *testing.T) {
	x, _, _ := Simulate(5, 30, DefaultFrequencies, rand.NewPCG(1, 1))
	chrs := splitChromosomes(x, 10, 10, 10)

	c, err := SelectCausalFrom(chrs, 1, 4, rand.NewPCG(3, 3))
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	first := c.Refs[0].Chromosome
	for _, ref := range c.Refs {
		if ref.Chromosome != first {
			t.Errorf("expected all picks on one chromosome, got %s and %s", first, ref.Chromosome)
		}
	}

	if _, err := SelectCausalFrom(chrs, 4, 4, rand.NewPCG(3, 3)); !errors.IsSampling(err) {
		t.Errorf("expected sampling error, got %v", err)
	}
	if _, err := SelectCausalFrom(chrs, 1, 11, rand.NewPCG(3, 3)); !errors.IsSampling(err) {
		t.Errorf("expected sampling error for more variants than one chromosome holds, got %v", err)
	}
}

func TestOpenChromosomes(t *testing.T) {
	dir := t.TempDir()
	for chr := 1; chr <= 2; chr++ {
		x, _, _ := Simulate(6, 3+chr, DefaultFrequencies, rand.NewPCG(uint64(chr), 1))
		f, err := os.Create(filepath.Join(dir, "geno_chr"+string(rune('0'+chr))+".csv"))
		if err != nil {
			t.Fatal(err)
		}
		if err := pheno.WriteTable(f, x, nil, pheno.Labels("rs", 3+chr)); err != nil {
			t.Fatal(err)
		}
		f.Close()
	}

	chrs, err := OpenChromosomes(filepath.Join(dir, "geno_chr"), ".csv", []int{1, 2})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if chrs.Variants() != 9 || chrs.Samples() != 6 {
		t.Errorf("expected 6x9 source, got %dx%d", chrs.Samples(), chrs.Variants())
	}

	if _, err := OpenChromosomes(filepath.Join(dir, "missing"), ".csv", []int{1}); err == nil {
		t.Error("expected error for missing file")
	}
}
