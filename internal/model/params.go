package model

// Split divides a variance family into a part shared across traits and a
// trait-specific independent part. Either side may be left unset.
type Split struct {
	Shared      *float64 `yaml:"shared,omitempty" toml:"shared,omitempty" json:"shared,omitempty"`
	Independent *float64 `yaml:"independent,omitempty" toml:"independent,omitempty" json:"independent,omitempty"`
}

// Params is a partially specified set of variance proportions. Unset fields
// are derived by Complete where the others imply them.
//
//	genVar + noiseVar              = 1
//	h2s + h2bg                     = 1   (genetic variance)
//	delta + rho + phi              = 1   (noise variance)
//	shared + independent           = 1   (per split)
type Params struct {
	GenVar   *float64 `yaml:"genVar,omitempty" toml:"genVar,omitempty" json:"genVar,omitempty"`
	NoiseVar *float64 `yaml:"noiseVar,omitempty" toml:"noiseVar,omitempty" json:"noiseVar,omitempty"`

	// H2s is the genetic variance explained by causal variants, H2bg by the
	// infinitesimal background.
	H2s  *float64 `yaml:"h2s,omitempty" toml:"h2s,omitempty" json:"h2s,omitempty"`
	H2bg *float64 `yaml:"h2bg,omitempty" toml:"h2bg,omitempty" json:"h2bg,omitempty"`

	// Delta is the noise variance from confounders, Rho from correlated
	// background and Phi from observational noise.
	Delta *float64 `yaml:"delta,omitempty" toml:"delta,omitempty" json:"delta,omitempty"`
	Rho   *float64 `yaml:"rho,omitempty" toml:"rho,omitempty" json:"rho,omitempty"`
	Phi   *float64 `yaml:"phi,omitempty" toml:"phi,omitempty" json:"phi,omitempty"`

	Theta Split `yaml:"theta,omitempty" toml:"theta,omitempty" json:"theta,omitempty"` // genetic fixed
	Eta   Split `yaml:"eta,omitempty" toml:"eta,omitempty" json:"eta,omitempty"`       // genetic background
	Gamma Split `yaml:"gamma,omitempty" toml:"gamma,omitempty" json:"gamma,omitempty"` // noise fixed
	Alpha Split `yaml:"alpha,omitempty" toml:"alpha,omitempty" json:"alpha,omitempty"` // observational noise
}

// Float returns a pointer to v, for building Params literals.
func Float(v float64) *float64 { return &v }
