package viz

import (
	"math"
	"sort"

	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PlotTrait draws values in sample order.
func PlotTrait(values []float64, caption string, width, height int) string {
	if len(values) == 0 {
		return Subtle.Render("(no data)")
	}
	return asciigraph.Plot(values,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// Histogram bins values into bins equal-width bins spanning their range.
// It returns the counts and the bins+1 dividers.
func Histogram(values []float64, bins int) (counts, dividers []float64) {
	if len(values) == 0 || bins < 1 {
		return nil, nil
	}
	x := append([]float64(nil), values...)
	sort.Float64s(x)

	lo, hi := x[0], x[len(x)-1]
	if hi == lo {
		hi = lo + 1
	}
	dividers = floats.Span(make([]float64, bins+1), lo, hi)
	// the top divider is exclusive
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts = stat.Histogram(nil, dividers, x, nil)
	return counts, dividers
}

func HistogramPlot(values []float64, bins int, caption string, width, height int) string {
	counts, _ := Histogram(values, bins)
	return PlotTrait(counts, caption, width, height)
}
