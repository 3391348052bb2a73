package simulate_test

import (
	"math"
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/phenosim/internal/errors"
	"github.com/san-kum/phenosim/internal/genotype"
	"github.com/san-kum/phenosim/internal/kinship"
	"github.com/san-kum/phenosim/internal/model"
	"github.com/san-kum/phenosim/internal/nonlinear"
	"github.com/san-kum/phenosim/internal/pheno"
	"github.com/san-kum/phenosim/internal/simulate"
)

var f = model.Float

func smallConfig() simulate.Config {
	cfg := simulate.DefaultConfig()
	cfg.Genotypes.Variants = 300
	return cfg
}

var _ = Describe("Run", func() {
	Context("background and observational noise only", func() {
		var res *simulate.Result

		BeforeEach(func() {
			cfg := smallConfig()
			cfg.N, cfg.P = 100, 15
			cfg.Variance = model.Params{
				GenVar: f(0.4),
				H2bg:   f(1),
				Phi:    f(1),
				Eta:    model.Split{Shared: f(0.6)},
				Alpha:  model.Split{Shared: f(0.6)},
			}
			var err error
			res, err = simulate.Run(cfg, 42)
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns a 100×15 phenotype", func() {
			r, c := res.Phenotype.Dims()
			Expect(r).To(Equal(100))
			Expect(c).To(Equal(15))
		})

		It("classifies the model", func() {
			Expect(res.Model.Genetic).To(Equal(model.GeneticBackgroundOnly))
			Expect(res.Model.Noise).To(Equal(model.NoiseBackground))
			Expect(res.Model.H2s).To(BeNumerically("~", 0, model.Tol))
		})

		It("rescales background-shared and noise-independent to 0.24", func() {
			bg, ok := res.Component(model.GeneticBackgroundShared)
			Expect(ok).To(BeTrue())
			Expect(bg.Variance).To(BeNumerically("~", 0.24, 1e-9))
			Expect(pheno.PooledVariance(bg.Rescaled)).To(BeNumerically("~", 0.24, 1e-9))

			noise, ok := res.Component(model.NoiseBackgroundIndependent)
			Expect(ok).To(BeTrue())
			Expect(noise.Variance).To(BeNumerically("~", 0.24, 1e-9))
		})

		It("only reports generated components", func() {
			Expect(res.Components).To(HaveLen(4))
			_, ok := res.Component(model.GeneticFixedShared)
			Expect(ok).To(BeFalse())
			Expect(res.Causal).To(BeNil())
			Expect(res.Kinship).NotTo(BeNil())
			Expect(res.Kinship.Estimated()).To(BeTrue())
		})

		It("is the sum of the rescaled components", func() {
			sum := mat.NewDense(100, 15, nil)
			for _, c := range res.Components {
				sum.Add(sum, c.Rescaled)
			}
			Expect(mat.EqualApprox(sum, res.Phenotype, 1e-12)).To(BeTrue())
		})
	})

	Context("with every component active", func() {
		It("hits every target share and the targets sum to one", func() {
			res, err := simulate.Run(smallConfig(), 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Components).To(HaveLen(len(model.ComponentOrder)))

			total := 0.0
			for i, c := range res.Components {
				Expect(c.Slot).To(Equal(model.ComponentOrder[i]))
				Expect(c.Variance).To(BeNumerically("~", c.Target, 1e-9), c.Name())
				total += c.Target
			}
			Expect(total).To(BeNumerically("~", 1, model.Tol))
			Expect(res.Causal.Refs).To(HaveLen(simulate.DefaultCausal))
			Expect(res.Params()).To(HaveKeyWithValue("phi", BeNumerically("~", 0.6, model.Tol)))
		})

		It("is deterministic for a seed", func() {
			a, err := simulate.Run(smallConfig(), 99)
			Expect(err).NotTo(HaveOccurred())
			b, err := simulate.Run(smallConfig(), 99)
			Expect(err).NotTo(HaveOccurred())
			c, err := simulate.Run(smallConfig(), 100)
			Expect(err).NotTo(HaveOccurred())

			Expect(mat.Equal(a.Phenotype, b.Phenotype)).To(BeTrue())
			Expect(mat.Equal(a.Phenotype, c.Phenotype)).To(BeFalse())
		})

		It("standardises every trait on request", func() {
			cfg := smallConfig()
			cfg.Standardise = true
			res, err := simulate.Run(cfg, 3)
			Expect(err).NotTo(HaveOccurred())
			for j := 0; j < cfg.P; j++ {
				mean, sd := stat.MeanStdDev(mat.Col(nil, j, res.Phenotype), nil)
				Expect(mean).To(BeNumerically("~", 0, 1e-9))
				Expect(sd).To(BeNumerically("~", 1, 1e-9))
			}
		})

		It("applies the nonlinear step last", func() {
			cfg := smallConfig()
			linear, err := simulate.Run(cfg, 5)
			Expect(err).NotTo(HaveOccurred())

			cfg.Nonlinear = nonlinear.Config{Transform: "tanh", Proportion: 0.5}
			res, err := simulate.Run(cfg, 5)
			Expect(err).NotTo(HaveOccurred())

			v := linear.Phenotype.At(3, 2)
			Expect(res.Phenotype.At(3, 2)).To(BeNumerically("~", 0.5*v+0.5*math.Tanh(v), 1e-12))
		})
	})

	Context("with a supplied kinship", func() {
		It("uses it as given", func() {
			k, err := kinship.FromMatrix(identity(30), 30)
			Expect(err).NotTo(HaveOccurred())

			cfg := smallConfig()
			cfg.N, cfg.P = 30, 4
			cfg.Kinship = k
			cfg.Variance = model.Params{GenVar: f(0.5), H2bg: f(1), Phi: f(1)}
			res, err := simulate.Run(cfg, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Kinship).To(BeIdenticalTo(k))
		})

		It("rejects a 40×40 kinship for 100 samples", func() {
			x, _, err := genotype.Simulate(40, 100, genotype.DefaultFrequencies, rand.NewPCG(1, 1))
			Expect(err).NotTo(HaveOccurred())
			k, err := kinship.Estimate(genotype.Standardize(x))
			Expect(err).NotTo(HaveOccurred())

			cfg := smallConfig()
			cfg.Kinship = k
			cfg.Variance = model.Params{GenVar: f(0.4), H2bg: f(1), Phi: f(1)}
			res, err := simulate.Run(cfg, 1)
			Expect(errors.IsDimension(err)).To(BeTrue(), "got %v", err)
			Expect(res).To(BeNil())
		})

		It("rejects a mis-sized kinship even when the model has no background", func() {
			x, _, err := genotype.Simulate(40, 100, genotype.DefaultFrequencies, rand.NewPCG(1, 1))
			Expect(err).NotTo(HaveOccurred())
			k, err := kinship.Estimate(genotype.Standardize(x))
			Expect(err).NotTo(HaveOccurred())

			cfg := smallConfig()
			cfg.Kinship = k
			cfg.Variance = model.Params{GenVar: f(0.4), H2s: f(1), Phi: f(1)}
			res, err := simulate.Run(cfg, 1)
			Expect(errors.IsDimension(err)).To(BeTrue(), "got %v", err)
			Expect(res).To(BeNil())
		})
	})

	Context("with external genotypes", func() {
		It("fails with a sampling error when 50 causal variants are requested from 10", func() {
			x, _, err := genotype.Simulate(100, 10, genotype.DefaultFrequencies, rand.NewPCG(2, 2))
			Expect(err).NotTo(HaveOccurred())

			cfg := smallConfig()
			cfg.Genotypes.Source = genotype.NewMatrix(x)
			cfg.Genotypes.Causal = 50
			res, err := simulate.Run(cfg, 1)
			Expect(errors.IsSampling(err)).To(BeTrue(), "got %v", err)
			Expect(res).To(BeNil())
		})

		It("restricts causal variants to a chromosome subset", func() {
			chrs := genotype.Chromosomes{}
			for i := 0; i < 3; i++ {
				x, _, err := genotype.Simulate(100, 40, genotype.DefaultFrequencies, rand.NewPCG(uint64(i), 3))
				Expect(err).NotTo(HaveOccurred())
				chrs = append(chrs, genotype.Chromosome{Name: string(rune('1' + i)), Reader: genotype.NewMatrix(x)})
			}

			cfg := smallConfig()
			cfg.Genotypes.Source = chrs
			cfg.Genotypes.ChrCausal = 1
			res, err := simulate.Run(cfg, 4)
			Expect(err).NotTo(HaveOccurred())

			first := res.Causal.Refs[0].Chromosome
			for _, ref := range res.Causal.Refs {
				Expect(ref.Chromosome).To(Equal(first))
			}
			Expect(res.Kinship.N()).To(Equal(100))
		})

		It("rejects genotypes with the wrong sample count", func() {
			x, _, _ := genotype.Simulate(50, 30, genotype.DefaultFrequencies, rand.NewPCG(2, 2))
			cfg := smallConfig()
			cfg.Genotypes.Source = genotype.NewMatrix(x)
			_, err := simulate.Run(cfg, 1)
			Expect(errors.IsDimension(err)).To(BeTrue(), "got %v", err)
		})
	})

	It("logs through the configured logger", func() {
		core, logs := observer.New(zap.DebugLevel)
		sim := simulate.New(simulate.WithLogger(zap.New(core)))
		_, err := sim.Run(smallConfig(), 11)
		Expect(err).NotTo(HaveOccurred())

		Expect(logs.FilterMessage("phenotype simulated").Len()).To(Equal(1))
		Expect(logs.FilterMessage("component rescaled").Len()).To(Equal(len(model.ComponentOrder)))
	})
})

var _ = Describe("Validate", func() {
	It("names both totals when genVar and noiseVar do not sum to one", func() {
		cfg := smallConfig()
		cfg.Variance = model.Params{GenVar: f(0.7), NoiseVar: f(0.5), H2s: f(1), Phi: f(1)}
		_, err := simulate.Validate(cfg)
		Expect(errors.IsConfiguration(err)).To(BeTrue())

		var pe *errors.ParamError
		Expect(errors.As(err, &pe)).To(BeTrue())
		Expect(pe.Params).To(ConsistOf("genVar", "noiseVar"))
	})

	DescribeTable("rejects configurations before sampling",
		func(mutate func(*simulate.Config), check func(error) bool) {
			cfg := smallConfig()
			mutate(&cfg)
			_, err := simulate.Validate(cfg)
			Expect(check(err)).To(BeTrue(), "got %v", err)
		},
		Entry("no samples", func(c *simulate.Config) { c.N = 0 }, errors.IsConfiguration),
		Entry("every variant independent with a shared share", func(c *simulate.Config) {
			c.GeneticFixed.PIndependent = 1
		}, errors.IsConfiguration),
		Entry("no trait fraction with an independent share", func(c *simulate.Config) {
			c.GeneticFixed.PTraitIndependent = 0
		}, errors.IsConfiguration),
		Entry("zero causal variants", func(c *simulate.Config) { c.Genotypes.Causal = 0 }, errors.IsConfiguration),
		Entry("bad allele frequency", func(c *simulate.Config) { c.Genotypes.Frequencies = []float64{1.5} }, errors.IsConfiguration),
		Entry("covariance of the wrong size", func(c *simulate.Config) {
			c.Correlated.Cov = [][]float64{{1}}
		}, errors.IsDimension),
		Entry("covariance not positive definite", func(c *simulate.Config) {
			c.P = 2
			c.Correlated.Cov = [][]float64{{1, 2}, {2, 1}}
		}, errors.IsNumerical),
		Entry("chromosome restriction without chromosomes", func(c *simulate.Config) {
			c.Genotypes.ChrCausal = 2
		}, errors.IsConfiguration),
		Entry("unknown nonlinear transform", func(c *simulate.Config) {
			c.Nonlinear = nonlinear.Config{Transform: "erf", Proportion: 0.1}
		}, errors.IsConfiguration),
		Entry("no confounder sets", func(c *simulate.Config) {
			c.NoiseFixed.Sets = nil
		}, errors.IsConfiguration),
	)

	It("skips checks for inactive components", func() {
		cfg := smallConfig()
		cfg.Variance = model.Params{GenVar: f(0), Phi: f(1)}
		cfg.Genotypes.Causal = 0
		cfg.Correlated.Cov = [][]float64{{1}}
		m, err := simulate.Validate(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Genetic).To(Equal(model.GeneticNone))
	})
})

func identity(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}
