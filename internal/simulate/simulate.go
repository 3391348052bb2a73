// Package simulate composes a phenotype from rescaled effect components.
//
// [Run] is the only entry point callers need: it validates the whole
// configuration with [Validate] before drawing anything, generates every
// active component from its own seeded stream, rescales each side to its
// target share and sums them in [model.ComponentOrder].
package simulate

import (
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/phenosim/internal/effects"
	"github.com/san-kum/phenosim/internal/errors"
	"github.com/san-kum/phenosim/internal/genotype"
	"github.com/san-kum/phenosim/internal/kinship"
	"github.com/san-kum/phenosim/internal/model"
	"github.com/san-kum/phenosim/internal/nonlinear"
	"github.com/san-kum/phenosim/internal/pheno"
	"github.com/san-kum/phenosim/internal/rescale"
)

// Stream ids. Each consumer of randomness draws from rand.NewPCG(seed, id),
// so adding or removing one component leaves the others unchanged.
const (
	streamGenotypes uint64 = iota + 1
	streamCausal
	streamGeneticFixed
	streamGeneticBackground
	streamNoiseFixed
	streamCorrelated
	streamNoiseBackground
	streamNonlinear
)

type Simulator struct {
	log      *zap.Logger
	registry *nonlinear.Registry
}

type Option func(*Simulator)

func WithLogger(l *zap.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRegistry sets the transforms and blends available to the nonlinear
// step.
func WithRegistry(r *nonlinear.Registry) Option {
	return func(s *Simulator) {
		if r != nil {
			s.registry = r
		}
	}
}

func New(opts ...Option) *Simulator {
	s := &Simulator{
		log:      zap.NewNop(),
		registry: nonlinear.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run simulates with a silent default Simulator.
func Run(cfg Config, seed uint64) (*Result, error) {
	return New().Run(cfg, seed)
}

func (s *Simulator) Validate(cfg Config) (model.Model, error) {
	return validate(cfg, s.registry)
}

func (s *Simulator) Run(cfg Config, seed uint64) (*Result, error) {
	start := time.Now()
	m, err := s.Validate(cfg)
	if err != nil {
		return nil, err
	}
	log := s.log.With(zap.Uint64("seed", seed))
	log.Debug("model classified",
		zap.Stringer("genetic", m.Genetic),
		zap.Stringer("noise", m.Noise),
	)

	r := &runner{cfg: cfg, model: m, seed: seed, log: log}
	comps, err := r.generate()
	if err != nil {
		return nil, err
	}

	res := &Result{Model: m, Causal: r.causal, Kinship: r.kinship, Seed: seed}
	byKind := make(map[pheno.Kind]pheno.Component, len(comps))
	for _, c := range comps {
		byKind[c.Kind] = c
	}

	y := mat.NewDense(cfg.N, cfg.P, nil)
	for _, share := range m.Shares() {
		c, ok := byKind[share.Slot.Kind()]
		if !ok {
			continue
		}
		raw := c.Independent
		if share.Slot.Shared() {
			raw = c.Shared
		}
		if err := pheno.CheckDims(share.Slot.String(), raw, cfg.N, cfg.P); err != nil {
			return nil, err
		}

		scaled, factor, err := rescale.Rescale(raw, share.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "rescale %s", share.Slot)
		}
		cr := ComponentResult{
			Slot:        share.Slot,
			Target:      share.Value,
			Raw:         raw,
			Rescaled:    scaled,
			RawVariance: pheno.PooledVariance(raw),
			Variance:    pheno.PooledVariance(scaled),
			Scale:       factor,
		}
		log.Debug("component rescaled",
			zap.String("component", share.Slot.String()),
			zap.Float64("target", share.Value),
			zap.Float64("raw_variance", cr.RawVariance),
		)
		res.Components = append(res.Components, cr)
		y.Add(y, scaled)
	}

	if cfg.Standardise {
		y = pheno.StandardizeColumns(y)
	}
	if cfg.Nonlinear.Enabled() {
		y, err = s.registry.Apply(y, cfg.Nonlinear, rand.NewPCG(seed, streamNonlinear))
		if err != nil {
			return nil, err
		}
	}
	res.Phenotype = y

	log.Info("phenotype simulated",
		zap.Int("n", cfg.N),
		zap.Int("p", cfg.P),
		zap.String("genetic_model", m.Genetic.String()),
		zap.String("noise_model", m.Noise.String()),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return res, nil
}

type runner struct {
	cfg   Config
	model model.Model
	seed  uint64
	log   *zap.Logger

	source  genotype.Source
	causal  *genotype.Causal
	kinship *kinship.Kinship
}

func (r *runner) stream(id uint64) rand.Source { return rand.NewPCG(r.seed, id) }

// generate draws every component the model needs, in ComponentOrder.
func (r *runner) generate() ([]pheno.Component, error) {
	cfg, m := r.cfg, r.model
	var out []pheno.Component

	if m.Genetic.HasFixed() {
		c, err := r.geneticFixed()
		if err != nil {
			return nil, errors.Wrap(err, "genetic fixed effects")
		}
		out = append(out, c)
	}
	if m.Genetic.HasBackground() {
		k, err := r.resolveKinship()
		if err != nil {
			return nil, errors.Wrap(err, "kinship")
		}
		c, err := effects.GeneticBackground(cfg.N, cfg.P, k, r.stream(streamGeneticBackground))
		if err != nil {
			return nil, errors.Wrap(err, "genetic background")
		}
		out = append(out, c)
	}
	if m.Noise.HasFixed() {
		c, err := effects.NoiseFixed(cfg.N, cfg.P, cfg.NoiseFixed, r.stream(streamNoiseFixed))
		if err != nil {
			return nil, errors.Wrap(err, "noise fixed effects")
		}
		out = append(out, c)
	}
	if m.Noise.HasCorrelated() {
		c, err := effects.Correlated(cfg.N, cfg.P, cfg.Correlated, r.stream(streamCorrelated))
		if err != nil {
			return nil, errors.Wrap(err, "correlated background")
		}
		out = append(out, c)
	}
	if m.Noise.HasBackground() {
		c, err := effects.NoiseBackground(cfg.N, cfg.P, cfg.NoiseBackground, r.stream(streamNoiseBackground))
		if err != nil {
			return nil, errors.Wrap(err, "observational noise")
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *runner) genotypes() (genotype.Source, error) {
	if r.source != nil {
		return r.source, nil
	}
	g := r.cfg.Genotypes
	if g.Source != nil {
		r.source = g.Source
		return r.source, nil
	}
	x, _, err := genotype.Simulate(r.cfg.N, g.Variants, g.Frequencies, r.stream(streamGenotypes))
	if err != nil {
		return nil, err
	}
	r.log.Debug("genotypes simulated", zap.Int("variants", g.Variants))
	r.source = genotype.NewMatrix(x)
	return r.source, nil
}

func (r *runner) geneticFixed() (pheno.Component, error) {
	src, err := r.genotypes()
	if err != nil {
		return pheno.Component{}, err
	}
	g := r.cfg.Genotypes
	if chrs, ok := src.(genotype.Chromosomes); ok && g.ChrCausal > 0 {
		r.causal, err = genotype.SelectCausalFrom(chrs, g.ChrCausal, g.Causal, r.stream(streamCausal))
	} else {
		r.causal, err = genotype.SelectCausal(src, g.Causal, r.stream(streamCausal))
	}
	if err != nil {
		return pheno.Component{}, err
	}
	x := genotype.Standardize(r.causal.X)
	return effects.GeneticFixed(x, r.cfg.P, r.cfg.GeneticFixed, r.stream(streamGeneticFixed))
}

func (r *runner) resolveKinship() (*kinship.Kinship, error) {
	if r.cfg.Kinship != nil {
		r.kinship = r.cfg.Kinship
		return r.kinship, nil
	}
	src, err := r.genotypes()
	if err != nil {
		return nil, err
	}
	var x *mat.Dense
	if m, ok := src.(*genotype.Matrix); ok {
		x = m.X
	} else {
		all := make([]int, src.Variants())
		for i := range all {
			all[i] = i
		}
		if x, _, err = src.Columns(all); err != nil {
			return nil, err
		}
	}
	r.kinship, err = kinship.Estimate(genotype.Standardize(x))
	return r.kinship, err
}
