package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/phenosim/internal/effects"
	"github.com/san-kum/phenosim/internal/errors"
	"github.com/san-kum/phenosim/internal/genotype"
	"github.com/san-kum/phenosim/internal/kinship"
	"github.com/san-kum/phenosim/internal/model"
	"github.com/san-kum/phenosim/internal/nonlinear"
	"github.com/san-kum/phenosim/internal/simulate"
)

const (
	DefaultSeed    = 1
	DefaultDataDir = "data"
)

type Config struct {
	N       int    `yaml:"n" toml:"n" env:"PHENOSIM_N"`
	P       int    `yaml:"p" toml:"p" env:"PHENOSIM_P"`
	Seed    uint64 `yaml:"seed" toml:"seed" env:"PHENOSIM_SEED"`
	DataDir string `yaml:"data_dir" toml:"data_dir" env:"PHENOSIM_DATA"`

	Genotypes   GenotypeConfig `yaml:"genotypes" toml:"genotypes"`
	KinshipFile string         `yaml:"kinship_file,omitempty" toml:"kinship_file,omitempty"`

	GeneticFixed    effects.FixedParams      `yaml:"genetic_fixed" toml:"genetic_fixed"`
	NoiseFixed      effects.NoiseFixedParams `yaml:"noise_fixed" toml:"noise_fixed"`
	Correlated      effects.CorrelatedParams `yaml:"correlated" toml:"correlated"`
	NoiseBackground effects.NoiseBgParams    `yaml:"noise_bg" toml:"noise_bg"`

	Variance    model.Params     `yaml:"variance" toml:"variance"`
	Nonlinear   nonlinear.Config `yaml:"nonlinear,omitempty" toml:"nonlinear,omitempty"`
	Standardise bool             `yaml:"standardise" toml:"standardise"`
}

// GenotypeConfig selects simulated genotypes or CSV input. File is one
// samples×variants table; ChromosomePrefix+N+ChromosomeSuffix names one
// table per entry of Chromosomes.
type GenotypeConfig struct {
	Variants    int       `yaml:"variants" toml:"variants"`
	Frequencies []float64 `yaml:"frequencies" toml:"frequencies"`
	Causal      int       `yaml:"causal" toml:"causal"`
	ChrCausal   int       `yaml:"chr_causal,omitempty" toml:"chr_causal,omitempty"`

	File             string `yaml:"file,omitempty" toml:"file,omitempty"`
	ChromosomePrefix string `yaml:"chromosome_prefix,omitempty" toml:"chromosome_prefix,omitempty"`
	ChromosomeSuffix string `yaml:"chromosome_suffix,omitempty" toml:"chromosome_suffix,omitempty"`
	Chromosomes      []int  `yaml:"chromosomes,omitempty" toml:"chromosomes,omitempty"`
}

func DefaultConfig() *Config {
	sim := simulate.DefaultConfig()
	return &Config{
		N:       sim.N,
		P:       sim.P,
		Seed:    DefaultSeed,
		DataDir: DefaultDataDir,
		Genotypes: GenotypeConfig{
			Variants:    sim.Genotypes.Variants,
			Frequencies: append([]float64(nil), sim.Genotypes.Frequencies...),
			Causal:      sim.Genotypes.Causal,
		},
		GeneticFixed:    sim.GeneticFixed,
		NoiseFixed:      sim.NoiseFixed,
		Correlated:      sim.Correlated,
		NoiseBackground: sim.NoiseBackground,
		Variance:        sim.Variance,
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load reads a YAML or TOML file (by extension) over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	cfg := DefaultConfig()
	// A variance block replaces the default proportions rather than
	// merging with them, so unset members are derived.
	cfg.Variance = model.Params{}
	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if cfg.Variance == (model.Params{}) {
		cfg.Variance = DefaultConfig().Variance
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var data []byte
	var err error
	if isTOML(path) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides cfg with any PHENOSIM_* variables that are set.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return errors.Wrap(err, "parse env")
	}
	return nil
}

// Simulation resolves file inputs and returns the run configuration.
func (c *Config) Simulation() (simulate.Config, error) {
	out := simulate.Config{
		N: c.N,
		P: c.P,
		Genotypes: simulate.GenotypeConfig{
			Variants:    c.Genotypes.Variants,
			Frequencies: c.Genotypes.Frequencies,
			Causal:      c.Genotypes.Causal,
			ChrCausal:   c.Genotypes.ChrCausal,
		},
		GeneticFixed:    c.GeneticFixed,
		NoiseFixed:      c.NoiseFixed,
		Correlated:      c.Correlated,
		NoiseBackground: c.NoiseBackground,
		Variance:        c.Variance,
		Nonlinear:       c.Nonlinear,
		Standardise:     c.Standardise,
	}

	g := c.Genotypes
	switch {
	case g.File != "" && g.ChromosomePrefix != "":
		return simulate.Config{}, errors.Configuration("genotypes", []string{"file", "chromosome_prefix"}, "set either a genotype file or per-chromosome files, not both")
	case g.File != "":
		m, err := genotype.OpenCSV(g.File)
		if err != nil {
			return simulate.Config{}, err
		}
		out.Genotypes.Source = m
	case g.ChromosomePrefix != "":
		chrs, err := genotype.OpenChromosomes(g.ChromosomePrefix, g.ChromosomeSuffix, g.Chromosomes)
		if err != nil {
			return simulate.Config{}, err
		}
		out.Genotypes.Source = chrs
	}

	if c.KinshipFile != "" {
		f, err := os.Open(c.KinshipFile)
		if err != nil {
			return simulate.Config{}, errors.Wrapf(err, "open kinship %s", c.KinshipFile)
		}
		defer f.Close()
		k, err := kinship.ReadCSV(f)
		if err != nil {
			return simulate.Config{}, errors.Wrapf(err, "kinship %s", c.KinshipFile)
		}
		out.Kinship = k
	}
	return out, nil
}

// Validate resolves c and checks it the way a run would.
func (c *Config) Validate() (model.Model, error) {
	sim, err := c.Simulation()
	if err != nil {
		return model.Model{}, err
	}
	return simulate.Validate(sim)
}
