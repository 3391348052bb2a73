package model

import (
	"strings"

	"github.com/san-kum/phenosim/internal/pheno"
)

// GeneticModel is the closed set of genetic architectures.
type GeneticModel int

const (
	GeneticNone GeneticModel = iota
	GeneticBackgroundOnly
	GeneticFixedOnly
	GeneticFixedAndBackground
)

func classifyGenetic(fixed, background bool) GeneticModel {
	switch {
	case fixed && background:
		return GeneticFixedAndBackground
	case fixed:
		return GeneticFixedOnly
	case background:
		return GeneticBackgroundOnly
	default:
		return GeneticNone
	}
}

func (g GeneticModel) HasFixed() bool {
	return g == GeneticFixedOnly || g == GeneticFixedAndBackground
}

func (g GeneticModel) HasBackground() bool {
	return g == GeneticBackgroundOnly || g == GeneticFixedAndBackground
}

func (g GeneticModel) String() string {
	switch g {
	case GeneticBackgroundOnly:
		return "background_only"
	case GeneticFixedOnly:
		return "fixed_only"
	case GeneticFixedAndBackground:
		return "fixed_and_background"
	default:
		return "none"
	}
}

// NoiseModel is one of the eight presence combinations of confounder,
// correlated and observational noise.
type NoiseModel uint8

const (
	noiseFixedBit NoiseModel = 1 << iota
	noiseCorrelatedBit
	noiseBackgroundBit
)

const (
	NoiseNone                 NoiseModel = 0
	NoiseFixed                           = noiseFixedBit
	NoiseCorrelated                      = noiseCorrelatedBit
	NoiseBackground                      = noiseBackgroundBit
	NoiseFixedCorrelated                 = noiseFixedBit | noiseCorrelatedBit
	NoiseFixedBackground                 = noiseFixedBit | noiseBackgroundBit
	NoiseCorrelatedBackground            = noiseCorrelatedBit | noiseBackgroundBit
	NoiseAll                             = noiseFixedBit | noiseCorrelatedBit | noiseBackgroundBit
)

func classifyNoise(fixed, correlated, background bool) NoiseModel {
	var n NoiseModel
	if fixed {
		n |= noiseFixedBit
	}
	if correlated {
		n |= noiseCorrelatedBit
	}
	if background {
		n |= noiseBackgroundBit
	}
	return n
}

func (n NoiseModel) HasFixed() bool      { return n&noiseFixedBit != 0 }
func (n NoiseModel) HasCorrelated() bool { return n&noiseCorrelatedBit != 0 }
func (n NoiseModel) HasBackground() bool { return n&noiseBackgroundBit != 0 }

func (n NoiseModel) String() string {
	if n == NoiseNone {
		return "none"
	}
	var parts []string
	if n.HasFixed() {
		parts = append(parts, "fixed")
	}
	if n.HasCorrelated() {
		parts = append(parts, "correlated")
	}
	if n.HasBackground() {
		parts = append(parts, "background")
	}
	return strings.Join(parts, "+")
}

// Slot is one of the nine rescaled parts a phenotype is summed from.
type Slot int

const (
	GeneticFixedShared Slot = iota
	GeneticFixedIndependent
	GeneticBackgroundShared
	GeneticBackgroundIndependent
	NoiseFixedShared
	NoiseFixedIndependent
	CorrelatedBackground
	NoiseBackgroundShared
	NoiseBackgroundIndependent
)

// ComponentOrder is the order in which slots are accumulated. It never
// changes, so equal seeds give bit-identical sums.
var ComponentOrder = []Slot{
	GeneticFixedShared,
	GeneticFixedIndependent,
	GeneticBackgroundShared,
	GeneticBackgroundIndependent,
	NoiseFixedShared,
	NoiseFixedIndependent,
	CorrelatedBackground,
	NoiseBackgroundShared,
	NoiseBackgroundIndependent,
}

var slotNames = [...]string{
	"genetic_fixed_shared",
	"genetic_fixed_independent",
	"genetic_bg_shared",
	"genetic_bg_independent",
	"noise_fixed_shared",
	"noise_fixed_independent",
	"correlated_bg",
	"noise_bg_shared",
	"noise_bg_independent",
}

func (s Slot) String() string {
	if s < 0 || int(s) >= len(slotNames) {
		return "unknown"
	}
	return slotNames[s]
}

// Kind is the generator a slot is drawn from.
func (s Slot) Kind() pheno.Kind {
	switch s {
	case GeneticFixedShared, GeneticFixedIndependent:
		return pheno.KindGeneticFixed
	case GeneticBackgroundShared, GeneticBackgroundIndependent:
		return pheno.KindGeneticBackground
	case NoiseFixedShared, NoiseFixedIndependent:
		return pheno.KindNoiseFixed
	case CorrelatedBackground:
		return pheno.KindCorrelated
	default:
		return pheno.KindNoiseBackground
	}
}

// Shared reports whether the slot reads the shared side of its component.
// The correlated background has a single matrix, kept on the shared side.
func (s Slot) Shared() bool {
	switch s {
	case GeneticFixedIndependent, GeneticBackgroundIndependent, NoiseFixedIndependent, NoiseBackgroundIndependent:
		return false
	default:
		return true
	}
}

// ParseSlot maps a slot name back to its Slot.
func ParseSlot(name string) (Slot, bool) {
	for i, n := range slotNames {
		if n == name {
			return Slot(i), true
		}
	}
	return 0, false
}
