package genotype

import (
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/san-kum/phenosim/internal/errors"
)

// Causal is the set of variants chosen to carry genetic fixed effects.
type Causal struct {
	X    *mat.Dense
	Refs []VariantRef
}

// CheckCausal reports whether k causal variants can be drawn from a source
// holding available variants.
func CheckCausal(k, available int) error {
	if k <= 0 {
		return errors.Configuration("causal variants", []string{"causal"}, "causal variant count must be positive, got %d", k)
	}
	if k > available {
		return errors.Samplingf("requested %d causal variants, only %d available", k, available)
	}
	return nil
}

// SelectCausal draws k distinct variants from src. Every variant has the same
// chance of selection regardless of how the source is partitioned, so large
// chromosomes are not under-represented. Columns are returned in increasing
// variant order.
func SelectCausal(src Source, k int, rnd rand.Source) (*Causal, error) {
	if err := CheckCausal(k, src.Variants()); err != nil {
		return nil, err
	}

	idx := make([]int, k)
	sampleuv.WithoutReplacement(idx, src.Variants(), rnd)
	sort.Ints(idx)

	x, refs, err := src.Columns(idx)
	if err != nil {
		return nil, err
	}
	return &Causal{X: x, Refs: refs}, nil
}

// SelectCausalFrom first restricts a chromosome-partitioned source to nrChr
// randomly chosen chromosomes, then selects k causal variants uniformly from
// the variants on those chromosomes.
func SelectCausalFrom(chrs Chromosomes, nrChr, k int, rnd rand.Source) (*Causal, error) {
	sub, err := chrs.Subset(nrChr, rnd)
	if err != nil {
		return nil, err
	}
	return SelectCausal(sub, k, rnd)
}
