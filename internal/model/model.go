// Package model validates variance-proportion parameters, derives the ones
// left unset and classifies the resulting genetic and noise architecture.
//
// All checks run here, before anything is sampled. A [Model] is the fully
// resolved result: every proportion has a value and the nine per-slot
// shares returned by [Model.Shares] sum to one.
package model

import (
	"math"

	"github.com/san-kum/phenosim/internal/errors"
)

// Tol is the tolerance for every sum-to-one check.
const Tol = 1e-9

// DefaultShared is the shared fraction of a split left entirely unset.
const DefaultShared = 0.8

// Group names reported in configuration errors.
const (
	GroupTotal             = "total variance"
	GroupGenetic           = "genetic variance"
	GroupNoise             = "noise variance"
	GroupGeneticFixedSplit = "genetic fixed split"
	GroupGeneticBgSplit    = "genetic background split"
	GroupNoiseFixedSplit   = "noise fixed split"
	GroupNoiseBgSplit      = "observational noise split"
)

// Fraction is a resolved Split.
type Fraction struct {
	Shared      float64 `json:"shared"`
	Independent float64 `json:"independent"`
}

type Model struct {
	Genetic GeneticModel `json:"-"`
	Noise   NoiseModel   `json:"-"`

	GenVar   float64 `json:"genVar"`
	NoiseVar float64 `json:"noiseVar"`
	H2s      float64 `json:"h2s"`
	H2bg     float64 `json:"h2bg"`
	Delta    float64 `json:"delta"`
	Rho      float64 `json:"rho"`
	Phi      float64 `json:"phi"`

	Theta Fraction `json:"theta"`
	Eta   Fraction `json:"eta"`
	Gamma Fraction `json:"gamma"`
	Alpha Fraction `json:"alpha"`
}

type member struct {
	name string
	v    *float64
}

// Complete range-checks p, verifies every active group sums to one and
// derives unset members:
//   - one unset member takes the remainder of its group;
//   - several unset members are 0 when nothing remains, otherwise the
//     group is underdetermined;
//   - a split left entirely unset defaults to DefaultShared.
//
// A group whose parent share is zero is inactive: its members are still
// range-checked but not summed, and unset members are 0.
func Complete(p Params) (Model, error) {
	var m Model

	total, err := completeGroup(GroupTotal, true,
		member{"genVar", p.GenVar}, member{"noiseVar", p.NoiseVar})
	if err != nil {
		return Model{}, err
	}
	m.GenVar, m.NoiseVar = total[0], total[1]

	gen, err := completeGroup(GroupGenetic, m.GenVar > 0,
		member{"h2s", p.H2s}, member{"h2bg", p.H2bg})
	if err != nil {
		return Model{}, err
	}
	m.H2s, m.H2bg = gen[0], gen[1]

	noise, err := completeGroup(GroupNoise, m.NoiseVar > 0,
		member{"delta", p.Delta}, member{"rho", p.Rho}, member{"phi", p.Phi})
	if err != nil {
		return Model{}, err
	}
	m.Delta, m.Rho, m.Phi = noise[0], noise[1], noise[2]

	splits := []struct {
		group  string
		name   string
		split  Split
		active bool
		out    *Fraction
	}{
		{GroupGeneticFixedSplit, "theta", p.Theta, m.GenVar*m.H2s > 0, &m.Theta},
		{GroupGeneticBgSplit, "eta", p.Eta, m.GenVar*m.H2bg > 0, &m.Eta},
		{GroupNoiseFixedSplit, "gamma", p.Gamma, m.NoiseVar*m.Delta > 0, &m.Gamma},
		{GroupNoiseBgSplit, "alpha", p.Alpha, m.NoiseVar*m.Phi > 0, &m.Alpha},
	}
	for _, s := range splits {
		f, err := completeSplit(s.group, s.name, s.split, s.active)
		if err != nil {
			return Model{}, err
		}
		*s.out = f
	}

	m.Genetic = classifyGenetic(m.GenVar*m.H2s > 0, m.GenVar*m.H2bg > 0)
	m.Noise = classifyNoise(m.NoiseVar*m.Delta > 0, m.NoiseVar*m.Rho > 0, m.NoiseVar*m.Phi > 0)
	return m, nil
}

func completeGroup(group string, active bool, ms ...member) ([]float64, error) {
	out := make([]float64, len(ms))
	var sum float64
	var missing, supplied, all []string
	var missingIdx []int
	for i, mb := range ms {
		all = append(all, mb.name)
		if mb.v == nil {
			missing = append(missing, mb.name)
			missingIdx = append(missingIdx, i)
			continue
		}
		v := *mb.v
		if err := checkRange(group, mb.name, v); err != nil {
			return nil, err
		}
		out[i] = v
		sum += v
		supplied = append(supplied, mb.name)
	}
	if !active {
		return out, nil
	}

	rem := 1 - sum
	switch {
	case rem < -Tol:
		return nil, errors.Configuration(group, supplied, "proportions sum to %g, want 1", sum)
	case len(missingIdx) == 0:
		if math.Abs(rem) > Tol {
			return nil, errors.Configuration(group, all, "proportions sum to %g, want 1", sum)
		}
	case len(missingIdx) == 1:
		out[missingIdx[0]] = math.Max(rem, 0)
	case rem <= Tol:
		// every unset member is 0
	default:
		err := errors.Configuration(group, missing, "%g of the group is left to %d unset parameters", rem, len(missing))
		return nil, errors.WithHintf(err, "set all but one of %v", all)
	}
	return out, nil
}

func completeSplit(group, name string, s Split, active bool) (Fraction, error) {
	shared, indep := name+".shared", name+".independent"
	switch {
	case s.Shared == nil && s.Independent == nil:
		return Fraction{Shared: DefaultShared, Independent: 1 - DefaultShared}, nil
	case s.Independent == nil:
		if err := checkRange(group, shared, *s.Shared); err != nil {
			return Fraction{}, err
		}
		return Fraction{Shared: *s.Shared, Independent: 1 - *s.Shared}, nil
	case s.Shared == nil:
		if err := checkRange(group, indep, *s.Independent); err != nil {
			return Fraction{}, err
		}
		return Fraction{Shared: 1 - *s.Independent, Independent: *s.Independent}, nil
	}

	v, err := completeGroup(group, active, member{shared, s.Shared}, member{indep, s.Independent})
	if err != nil {
		return Fraction{}, err
	}
	return Fraction{Shared: v[0], Independent: v[1]}, nil
}

func checkRange(group, name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return errors.Configuration(group, []string{name}, "%s = %v outside [0,1]", name, v)
	}
	return nil
}

// Share is the target proportion of total variance assigned to one slot.
type Share struct {
	Slot  Slot
	Value float64
}

// Shares returns the target share of every slot in ComponentOrder.
func (m Model) Shares() []Share {
	g, n := m.GenVar, m.NoiseVar
	values := map[Slot]float64{
		GeneticFixedShared:           g * m.H2s * m.Theta.Shared,
		GeneticFixedIndependent:      g * m.H2s * m.Theta.Independent,
		GeneticBackgroundShared:      g * m.H2bg * m.Eta.Shared,
		GeneticBackgroundIndependent: g * m.H2bg * m.Eta.Independent,
		NoiseFixedShared:             n * m.Delta * m.Gamma.Shared,
		NoiseFixedIndependent:        n * m.Delta * m.Gamma.Independent,
		CorrelatedBackground:         n * m.Rho,
		NoiseBackgroundShared:        n * m.Phi * m.Alpha.Shared,
		NoiseBackgroundIndependent:   n * m.Phi * m.Alpha.Independent,
	}
	out := make([]Share, len(ComponentOrder))
	for i, s := range ComponentOrder {
		out[i] = Share{Slot: s, Value: values[s]}
	}
	return out
}

// Share returns the target share of one slot.
func (m Model) Share(s Slot) float64 {
	for _, sh := range m.Shares() {
		if sh.Slot == s {
			return sh.Value
		}
	}
	return 0
}

// Params returns every resolved proportion and slot share as a flat map.
func (m Model) Params() map[string]float64 {
	out := map[string]float64{
		"genVar":            m.GenVar,
		"noiseVar":          m.NoiseVar,
		"h2s":               m.H2s,
		"h2bg":              m.H2bg,
		"delta":             m.Delta,
		"rho":               m.Rho,
		"phi":               m.Phi,
		"theta.shared":      m.Theta.Shared,
		"theta.independent": m.Theta.Independent,
		"eta.shared":        m.Eta.Shared,
		"eta.independent":   m.Eta.Independent,
		"gamma.shared":      m.Gamma.Shared,
		"gamma.independent": m.Gamma.Independent,
		"alpha.shared":      m.Alpha.Shared,
		"alpha.independent": m.Alpha.Independent,
	}
	for _, sh := range m.Shares() {
		out[sh.Slot.String()] = sh.Value
	}
	return out
}
