package config

import (
	"sort"

	"github.com/san-kum/phenosim/internal/effects"
	"github.com/san-kum/phenosim/internal/model"
	"github.com/san-kum/phenosim/internal/nonlinear"
)

var f = model.Float

func preset(desc string, apply func(*Config)) Preset {
	cfg := DefaultConfig()
	apply(cfg)
	return Preset{Description: desc, Config: cfg}
}

type Preset struct {
	Description string
	Config      *Config
}

var Presets = map[string]Preset{
	"default": preset("every component active", func(*Config) {}),
	"background": preset("infinitesimal genetics with observational noise", func(c *Config) {
		c.Variance = model.Params{
			GenVar: f(0.4), H2bg: f(1), Phi: f(1),
			Eta:   model.Split{Shared: f(0.6)},
			Alpha: model.Split{Shared: f(0.6)},
		}
	}),
	"gwas": preset("many causal variants, mostly shared", func(c *Config) {
		c.N = 1000
		c.Genotypes.Causal = 50
		c.GeneticFixed.PIndependent = 0.2
		c.Variance = model.Params{GenVar: f(0.2), H2s: f(0.5), Delta: f(0.2), Phi: f(0.8)}
	}),
	"correlated": preset("strong trait correlation", func(c *Config) {
		c.Correlated.PCorr = 0.8
		c.Variance = model.Params{GenVar: f(0.3), H2bg: f(1), Rho: f(0.5), Phi: f(0.5)}
	}),
	"confounded": preset("binary and categorical covariates", func(c *Config) {
		binary := effects.ConfounderSet{Count: 2, Family: effects.FamilyBinomial, Prob: 0.5, FixedParams: effects.DefaultFixedParams()}
		batch := effects.ConfounderSet{Count: 3, Family: effects.FamilyCategorical, Levels: 4, FixedParams: effects.DefaultFixedParams()}
		c.NoiseFixed = effects.NoiseFixedParams{Sets: []effects.ConfounderSet{binary, batch}}
		c.Variance = model.Params{GenVar: f(0.3), H2s: f(0.3), Delta: f(0.6), Phi: f(0.4)}
	}),
	"nonlinear": preset("default model with a tanh blend", func(c *Config) {
		c.Nonlinear = nonlinear.Config{Transform: "tanh", Proportion: 0.3}
		c.Standardise = true
	}),
	"noise_only": preset("no genetic signal", func(c *Config) {
		c.Variance = model.Params{GenVar: f(0), Phi: f(1)}
	}),
}

// GetPreset returns a copy of the named preset's config, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p.Config
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
