// Package viz renders simulation runs in the terminal.
//
//   - [Report]: a run's model, parameters and per-component variances
//   - [PlotTrait] and [HistogramPlot]: asciigraph charts of one trait
//   - [Inspector]: a Bubble Tea browser over the phenotype and its components
//
// # Inspector Key Bindings
//
//	j/k, up/down    - select phenotype or component
//	h/l, left/right - previous/next trait
//	tab             - toggle histogram and sample plot
//	q               - quit
package viz
