package genotype

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/san-kum/phenosim/internal/errors"
	"github.com/san-kum/phenosim/internal/pheno"
)

// VariantRef locates a variant inside a source.
type VariantRef struct {
	Chromosome string `json:"chromosome,omitempty"`
	Index      int    `json:"index"`
	Global     int    `json:"global"`
	ID         string `json:"id,omitempty"`
}

// Source is a genotype matrix that can be read by column.
type Source interface {
	Samples() int
	Variants() int
	Columns(idx []int) (*mat.Dense, []VariantRef, error)
}

// ColumnReader reads columns of one chromosome's genotype matrix.
type ColumnReader interface {
	Samples() int
	Variants() int
	ReadColumns(idx []int) (*mat.Dense, error)
}

// Matrix is an in-memory genotype source.
type Matrix struct {
	X   *mat.Dense
	IDs []string
}

func NewMatrix(x *mat.Dense) *Matrix { return &Matrix{X: x} }

func (m *Matrix) Samples() int {
	n, _ := m.X.Dims()
	return n
}

func (m *Matrix) Variants() int {
	_, v := m.X.Dims()
	return v
}

func (m *Matrix) ReadColumns(idx []int) (*mat.Dense, error) {
	n, v := m.X.Dims()
	out := mat.NewDense(n, len(idx), nil)
	col := make([]float64, n)
	for k, j := range idx {
		if j < 0 || j >= v {
			return nil, errors.Dimensionf("variant index %d outside [0,%d)", j, v)
		}
		mat.Col(col, j, m.X)
		out.SetCol(k, col)
	}
	return out, nil
}

func (m *Matrix) Columns(idx []int) (*mat.Dense, []VariantRef, error) {
	x, err := m.ReadColumns(idx)
	if err != nil {
		return nil, nil, err
	}
	refs := make([]VariantRef, len(idx))
	for k, j := range idx {
		refs[k] = VariantRef{Index: j, Global: j}
		if j < len(m.IDs) {
			refs[k].ID = m.IDs[j]
		}
	}
	return x, refs, nil
}

// Chromosome is one named partition of a genotype source.
type Chromosome struct {
	Name   string
	Reader ColumnReader
}

// Chromosomes is a genotype source partitioned by chromosome. Global variant
// indices run through the chromosomes in order.
type Chromosomes []Chromosome

func (c Chromosomes) Samples() int {
	if len(c) == 0 {
		return 0
	}
	return c[0].Reader.Samples()
}

func (c Chromosomes) Variants() int {
	total := 0
	for _, chr := range c {
		total += chr.Reader.Variants()
	}
	return total
}

// Validate checks that every chromosome has the same number of samples.
func (c Chromosomes) Validate() error {
	if len(c) == 0 {
		return errors.Configuration("genotypes", []string{"chromosomes"}, "no chromosomes")
	}
	n := c[0].Reader.Samples()
	for _, chr := range c[1:] {
		if chr.Reader.Samples() != n {
			return errors.Dimensionf("chromosome %s has %d samples, want %d", chr.Name, chr.Reader.Samples(), n)
		}
	}
	return nil
}

func (c Chromosomes) Columns(idx []int) (*mat.Dense, []VariantRef, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	n := c.Samples()
	out := mat.NewDense(n, len(idx), nil)
	refs := make([]VariantRef, len(idx))

	offsets := make([]int, len(c)+1)
	for i, chr := range c {
		offsets[i+1] = offsets[i] + chr.Reader.Variants()
	}

	// group requested columns by chromosome so each reader is hit once
	local := make([][]int, len(c))
	slot := make([][]int, len(c))
	for k, g := range idx {
		ci := sort.SearchInts(offsets[1:], g+1)
		if g < 0 || ci >= len(c) {
			return nil, nil, errors.Dimensionf("variant index %d outside [0,%d)", g, offsets[len(c)])
		}
		li := g - offsets[ci]
		local[ci] = append(local[ci], li)
		slot[ci] = append(slot[ci], k)
		refs[k] = VariantRef{Chromosome: c[ci].Name, Index: li, Global: g}
	}

	col := make([]float64, n)
	for ci, cols := range local {
		if len(cols) == 0 {
			continue
		}
		x, err := c[ci].Reader.ReadColumns(cols)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "chromosome %s", c[ci].Name)
		}
		if err := pheno.CheckDims("chromosome "+c[ci].Name+" columns", x, n, len(cols)); err != nil {
			return nil, nil, err
		}
		for t, k := range slot[ci] {
			mat.Col(col, t, x)
			out.SetCol(k, col)
		}
	}
	return out, refs, nil
}

// Subset returns nr chromosomes drawn without replacement, in their original
// order.
func (c Chromosomes) Subset(nr int, src rand.Source) (Chromosomes, error) {
	if nr <= 0 {
		return nil, errors.Configuration("causal variants", []string{"chrCausal"}, "chromosome count must be positive, got %d", nr)
	}
	if nr > len(c) {
		return nil, errors.Samplingf("requested %d causal chromosomes, only %d available", nr, len(c))
	}
	idx := make([]int, nr)
	sampleuv.WithoutReplacement(idx, len(c), src)
	sort.Ints(idx)

	out := make(Chromosomes, nr)
	for i, j := range idx {
		out[i] = c[j]
	}
	return out, nil
}

// OpenChromosomes loads one CSV genotype table per chromosome from
// prefix+chr+suffix, e.g. "geno_chr" + "7" + ".csv".
func OpenChromosomes(prefix, suffix string, chrs []int) (Chromosomes, error) {
	out := make(Chromosomes, 0, len(chrs))
	for _, chr := range chrs {
		path := fmt.Sprintf("%s%d%s", prefix, chr, suffix)
		m, err := OpenCSV(path)
		if err != nil {
			return nil, err
		}
		out = append(out, Chromosome{Name: fmt.Sprint(chr), Reader: m})
	}
	return out, out.Validate()
}

// OpenCSV reads a samples×variants dosage table from path.
func OpenCSV(path string) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open genotypes %s", path)
	}
	defer f.Close()

	m, err := ReadCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "genotypes %s", path)
	}
	return m, nil
}

// ReadCSV parses a dosage table whose header names the variants and whose
// first column names the samples.
func ReadCSV(r io.Reader) (*Matrix, error) {
	t, err := pheno.ReadTable(r)
	if err != nil {
		return nil, err
	}
	return &Matrix{X: t.Data, IDs: t.Columns}, nil
}
