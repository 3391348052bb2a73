package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/phenosim/internal/metrics"
	"github.com/san-kum/phenosim/internal/storage"
)

var reportParams = []string{"genVar", "noiseVar", "h2s", "h2bg", "delta", "rho", "phi"}

// Report renders a run's model, parameters, components and metrics.
func Report(meta storage.RunMetadata) string {
	var b strings.Builder

	title := meta.ID
	if title == "" {
		title = "phenotype"
	}
	b.WriteString(Title.Render(title) + "\n")
	b.WriteString(Subtle.Render(fmt.Sprintf("%d samples × %d traits  seed %d", meta.N, meta.P, meta.Seed)) + "\n")
	b.WriteString(MetricLabel.Render("genetic ") + MetricValue.Render(meta.GeneticModel) +
		MetricLabel.Render("  noise ") + MetricValue.Render(meta.NoiseModel) + "\n\n")

	b.WriteString(HeaderStyle.Render("parameters") + "\n")
	for _, name := range reportParams {
		if v, ok := meta.Params[name]; ok {
			b.WriteString(fmt.Sprintf("  %s %s\n", MetricLabel.Render(fmt.Sprintf("%-10s", name)), MetricValue.Render(fmt.Sprintf("%.4f", v))))
		}
	}

	b.WriteString("\n" + HeaderStyle.Render("components") + "\n")
	b.WriteString(Subtle.Render(fmt.Sprintf("  %-26s %8s %8s %8s", "component", "target", "variance", "scale")) + "\n")
	for _, c := range meta.Components {
		b.WriteString(fmt.Sprintf("  %-26s %8.4f %8.4f %8.4f  %s\n", c.Name, c.Target, c.Variance, c.Scale, ShareBar(c.Variance, 20)))
	}

	if len(meta.Metrics) > 0 {
		names := make([]string, 0, len(meta.Metrics))
		for name := range meta.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)

		b.WriteString("\n" + HeaderStyle.Render("metrics") + "\n")
		for _, name := range names {
			b.WriteString(fmt.Sprintf("  %s %s\n", MetricLabel.Render(fmt.Sprintf("%-18s", name)), MetricValue.Render(fmt.Sprintf("%.4f", meta.Metrics[name]))))
		}
	}
	return Panel.Render(strings.TrimRight(b.String(), "\n"))
}

// AuditReport renders each component's observed share of the phenotype's
// pooled variance next to its target, and the per-trait variances.
func AuditReport(a metrics.Audit) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("variance audit") + "\n")
	b.WriteString(Subtle.Render(fmt.Sprintf("  %-26s %8s %8s", "component", "target", "share")) + "\n")
	for _, c := range a.Components {
		b.WriteString(fmt.Sprintf("  %-26s %8.4f %8.4f  %s\n", c.Name, c.Target, c.Share, ShareBar(c.Share, 20)))
	}
	b.WriteString(fmt.Sprintf("  %s %s\n", MetricLabel.Render(fmt.Sprintf("%-26s", "total")), MetricValue.Render(fmt.Sprintf("%.4f", a.Total))))
	if len(a.TraitVariance) > 0 {
		b.WriteString("\n" + MetricLabel.Render("trait variance ") + Sparkline(a.TraitVariance, len(a.TraitVariance)) + "\n")
	}
	return Panel.Render(strings.TrimRight(b.String(), "\n"))
}
