package storage

import (
	"encoding/json"
	"io"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/phenosim/internal/simulate"
)

// ExportData is a whole run, matrices included, as one JSON document.
type ExportData struct {
	RunMetadata
	Phenotype  [][]float64            `json:"phenotype"`
	Components map[string][][]float64 `json:"componentValues"`
}

func NewExportData(res *simulate.Result, metrics map[string]float64) ExportData {
	data := ExportData{
		RunMetadata: Metadata(res, metrics),
		Phenotype:   rows(res.Phenotype),
		Components:  make(map[string][][]float64, len(res.Components)),
	}
	for _, c := range res.Components {
		data.Components[c.Name()] = rows(c.Rescaled)
	}
	return data
}

// LoadExport rebuilds a stored run's export from its files.
func (s *Store) LoadExport(runID string) (ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return ExportData{}, err
	}
	y, err := s.LoadPhenotype(runID)
	if err != nil {
		return ExportData{}, err
	}

	data := ExportData{
		RunMetadata: *meta,
		Phenotype:   rows(y.Data),
		Components:  make(map[string][][]float64, len(meta.Components)),
	}
	for _, c := range meta.Components {
		t, err := s.LoadComponent(runID, c.Name)
		if err != nil {
			return ExportData{}, err
		}
		data.Components[c.Name] = rows(t.Data)
	}
	return data, nil
}

func ExportJSON(path string, res *simulate.Result, metrics map[string]float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, res, metrics)
}

func WriteJSON(w io.Writer, res *simulate.Result, metrics map[string]float64) error {
	return Encode(w, NewExportData(res, metrics))
}

func Encode(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func rows(m *mat.Dense) [][]float64 {
	if m == nil {
		return nil
	}
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = append([]float64(nil), m.RawRowView(i)...)
	}
	return out
}
