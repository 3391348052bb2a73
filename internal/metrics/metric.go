// Package metrics audits simulated phenotypes: how closely each component
// hits its variance target, how much of the total is genetic, and how
// correlated the traits are. Metrics accumulate over repeated Observe calls
// so the same instances serve single runs and ensembles.
package metrics

import "github.com/san-kum/phenosim/internal/simulate"

type Metric interface {
	Name() string
	Observe(res *simulate.Result)
	Value() float64
	Reset()
}

// Default returns one instance of every metric.
func Default() []Metric {
	return []Metric{
		NewShareError(),
		NewTotalVariance(),
		NewHeritability(),
		NewTraitCorrelation(),
	}
}

// Collect observes res with each metric and returns their values by name.
func Collect(res *simulate.Result, ms ...Metric) map[string]float64 {
	if len(ms) == 0 {
		ms = Default()
	}
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Observe(res)
		out[m.Name()] = m.Value()
	}
	return out
}

type mean struct {
	sum     float64
	samples int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.samples++
}

func (m *mean) value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}
