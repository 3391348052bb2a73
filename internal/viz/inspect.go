package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/phenosim/internal/pheno"
	"github.com/san-kum/phenosim/internal/storage"
)

const histogramBins = 20

// Layer is one N×P table the inspector can browse: the phenotype or a
// rescaled component.
type Layer struct {
	Name  string
	Table pheno.Table
}

type Inspector struct {
	meta      storage.RunMetadata
	layers    []Layer
	cursor    int
	trait     int
	histogram bool
	width     int
	height    int
}

func NewInspector(meta storage.RunMetadata, layers []Layer) Inspector {
	return Inspector{meta: meta, layers: layers, histogram: true, width: 80, height: 24}
}

func (m Inspector) Cursor() int            { return m.cursor }
func (m Inspector) Trait() int             { return m.trait }
func (m Inspector) ShowingHistogram() bool { return m.histogram }

func (m Inspector) Init() tea.Cmd { return nil }

func (m Inspector) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	}
	return m, nil
}

func (m Inspector) handleKey(msg tea.KeyMsg) (Inspector, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.layers)-1 {
			m.cursor++
		}
	case "left", "h":
		if m.trait > 0 {
			m.trait--
		}
	case "right", "l":
		if m.trait < m.traits()-1 {
			m.trait++
		}
	case "tab":
		m.histogram = !m.histogram
	}
	return m, nil
}

func (m Inspector) traits() int {
	if len(m.layers) == 0 || m.layers[m.cursor].Table.Data == nil {
		return 0
	}
	_, p := m.layers[m.cursor].Table.Data.Dims()
	return p
}

func (m Inspector) View() string {
	var b strings.Builder
	b.WriteString(Title.Render(m.meta.ID) + "  " +
		Subtle.Render(fmt.Sprintf("%s / %s", m.meta.GeneticModel, m.meta.NoiseModel)) + "\n\n")

	if len(m.layers) == 0 {
		b.WriteString(ErrorText.Render("no tables to inspect") + "\n")
		return b.String()
	}

	for i, l := range m.layers {
		if i == m.cursor {
			b.WriteString("  " + Selected.Render("▸ "+l.Name) + "\n")
		} else {
			b.WriteString("    " + Subtle.Render(l.Name) + "\n")
		}
	}
	b.WriteString("\n")

	layer := m.layers[m.cursor]
	if m.traits() > 0 {
		col := mat.Col(nil, m.trait, layer.Table.Data)
		mean, sd := stat.MeanStdDev(col, nil)

		name := fmt.Sprintf("trait %d", m.trait+1)
		if m.trait < len(layer.Table.Columns) {
			name = layer.Table.Columns[m.trait]
		}
		b.WriteString(MetricLabel.Render(name+"  mean ") + MetricValue.Render(fmt.Sprintf("%.4f", mean)) +
			MetricLabel.Render("  sd ") + MetricValue.Render(fmt.Sprintf("%.4f", sd)) + "\n")
		b.WriteString(Sparkline(col, max(m.width-4, 10)) + "\n\n")

		w, h := max(m.width-12, 20), max(m.height-len(m.layers)-12, 5)
		if m.histogram {
			b.WriteString(HistogramPlot(col, histogramBins, layer.Name+" histogram", w, h))
		} else {
			b.WriteString(PlotTrait(col, layer.Name+" by sample", w, h))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + KeyHint.Render("j/k layer  h/l trait  tab histogram/samples  q quit") + "\n")
	return b.String()
}

// RunInspector opens the inspector full screen until the user quits.
func RunInspector(meta storage.RunMetadata, layers []Layer) error {
	_, err := tea.NewProgram(NewInspector(meta, layers), tea.WithAltScreen()).Run()
	return err
}
