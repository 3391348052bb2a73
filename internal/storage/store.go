// Package storage persists simulation runs as a directory per run:
//
//	<base>/<run-id>/metadata.json
//	<base>/<run-id>/phenotype.csv
//	<base>/<run-id>/components/<component>.csv
//	<base>/<run-id>/causal.csv   (when causal variants were selected)
//	<base>/<run-id>/kinship.csv  (when the kinship was estimated)
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/phenosim/internal/errors"
	"github.com/san-kum/phenosim/internal/genotype"
	"github.com/san-kum/phenosim/internal/pheno"
	"github.com/san-kum/phenosim/internal/simulate"
)

const (
	metadataFile  = "metadata.json"
	phenotypeFile = "phenotype.csv"
	componentDir  = "components"
	causalFile    = "causal.csv"
	kinshipFile   = "kinship.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Path is the directory of a run.
func (s *Store) Path(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type ComponentMetadata struct {
	Name        string  `json:"name"`
	Target      float64 `json:"target"`
	RawVariance float64 `json:"rawVariance"`
	Variance    float64 `json:"variance"`
	Scale       float64 `json:"scale"`
}

type RunMetadata struct {
	ID           string                `json:"id"`
	Timestamp    time.Time             `json:"timestamp"`
	Seed         uint64                `json:"seed"`
	N            int                   `json:"n"`
	P            int                   `json:"p"`
	GeneticModel string                `json:"geneticModel"`
	NoiseModel   string                `json:"noiseModel"`
	Params       map[string]float64    `json:"params"`
	Components   []ComponentMetadata   `json:"components"`
	Causal       []genotype.VariantRef `json:"causal,omitempty"`
	Metrics      map[string]float64    `json:"metrics,omitempty"`
}

// NewRunID returns "<genetic model>_<8 hex chars>".
func NewRunID(geneticModel string) string {
	return fmt.Sprintf("%s_%s", geneticModel, uuid.NewString()[:8])
}

// Metadata summarises res without its matrices.
func Metadata(res *simulate.Result, metrics map[string]float64) RunMetadata {
	n, p := res.Phenotype.Dims()
	meta := RunMetadata{
		Timestamp:    time.Now(),
		Seed:         res.Seed,
		N:            n,
		P:            p,
		GeneticModel: res.Model.Genetic.String(),
		NoiseModel:   res.Model.Noise.String(),
		Params:       res.Params(),
		Metrics:      metrics,
	}
	for _, c := range res.Components {
		meta.Components = append(meta.Components, ComponentMetadata{
			Name:        c.Name(),
			Target:      c.Target,
			RawVariance: c.RawVariance,
			Variance:    c.Variance,
			Scale:       c.Scale,
		})
	}
	if res.Causal != nil {
		meta.Causal = res.Causal.Refs
	}
	return meta
}

// Save writes res under a new run id and returns it.
func (s *Store) Save(res *simulate.Result, metrics map[string]float64) (string, error) {
	meta := Metadata(res, metrics)
	meta.ID = NewRunID(meta.GeneticModel)
	runDir := s.Path(meta.ID)

	if err := os.MkdirAll(filepath.Join(runDir, componentDir), 0755); err != nil {
		return "", errors.Wrap(err, "create run dir")
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	n, p := res.Phenotype.Dims()
	samples := pheno.Labels("sample", n)
	traits := pheno.Labels("trait", p)

	if err := writeTable(filepath.Join(runDir, phenotypeFile), res.Phenotype, samples, traits); err != nil {
		return "", err
	}
	for _, c := range res.Components {
		path := filepath.Join(runDir, componentDir, c.Name()+".csv")
		if err := writeTable(path, c.Rescaled, samples, traits); err != nil {
			return "", err
		}
	}

	if res.Causal != nil {
		cols := make([]string, len(res.Causal.Refs))
		for i, r := range res.Causal.Refs {
			cols[i] = variantLabel(r)
		}
		if err := writeTable(filepath.Join(runDir, causalFile), res.Causal.X, samples, cols); err != nil {
			return "", err
		}
	}
	if res.Kinship != nil && res.Kinship.Estimated() {
		if err := writeTable(filepath.Join(runDir, kinshipFile), res.Kinship.Matrix(), samples, samples); err != nil {
			return "", err
		}
	}

	return meta.ID, nil
}

func variantLabel(r genotype.VariantRef) string {
	switch {
	case r.ID != "":
		return r.ID
	case r.Chromosome != "":
		return fmt.Sprintf("%s:%d", r.Chromosome, r.Index)
	default:
		return fmt.Sprintf("v%d", r.Global)
	}
}

// List returns every readable run, oldest first. A missing base directory
// is an empty list.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Path(runID), metadataFile))
	if err != nil {
		return nil, errors.Wrapf(err, "run %s", runID)
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, errors.Wrapf(err, "run %s metadata", runID)
	}
	return &meta, nil
}

func (s *Store) LoadPhenotype(runID string) (pheno.Table, error) {
	return readTable(filepath.Join(s.Path(runID), phenotypeFile))
}

// LoadComponent reads one rescaled component by name, e.g. "noise_bg_shared".
func (s *Store) LoadComponent(runID, name string) (pheno.Table, error) {
	return readTable(filepath.Join(s.Path(runID), componentDir, name+".csv"))
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(path string, m mat.Matrix, rows, cols []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := pheno.WriteTable(f, m, rows, cols); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", filepath.Base(path))
	}
	return f.Close()
}

func readTable(path string) (pheno.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return pheno.Table{}, err
	}
	defer f.Close()
	return pheno.ReadTable(f)
}
