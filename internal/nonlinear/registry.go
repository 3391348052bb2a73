package nonlinear

import (
	"math"
	"sort"

	"github.com/san-kum/phenosim/internal/errors"
)

// Func is an elementwise transform.
type Func func(float64) float64

type Registry struct {
	transforms map[string]func(Config) Func
	blends     map[string]func() Blend
}

func NewRegistry() *Registry {
	r := &Registry{
		transforms: make(map[string]func(Config) Func),
		blends:     make(map[string]func() Blend),
	}

	r.transforms["exp"] = func(c Config) Func {
		base := c.base()
		return func(x float64) float64 { return math.Pow(base, x) }
	}
	r.transforms["log"] = func(c Config) Func {
		lb := math.Log(c.base())
		return c.guard(func(x float64) float64 { return math.Log(x) / lb }, true)
	}
	r.transforms["sqrt"] = func(c Config) Func {
		return c.guard(math.Sqrt, false)
	}
	r.transforms["poly"] = func(c Config) Func {
		power := c.power()
		return func(x float64) float64 { return math.Pow(x, power) }
	}
	r.transforms["sigmoid"] = func(Config) Func {
		return func(x float64) float64 { return 1 / (1 + math.Exp(-x)) }
	}
	r.transforms["tanh"] = func(Config) Func { return math.Tanh }
	r.transforms["cos"] = func(Config) Func { return math.Cos }

	r.blends[BlendMixture] = func() Blend { return Mixture{} }
	r.blends[BlendVariance] = func() Blend { return Variance{} }
	r.blends[BlendTraits] = func() Blend { return Traits{} }

	return r
}

func (r *Registry) GetTransform(cfg Config) (Func, error) {
	fn, ok := r.transforms[cfg.Transform]
	if !ok {
		return nil, errors.Configuration("nonlinear", []string{"transform"}, "unknown transform %q", cfg.Transform)
	}
	return fn(cfg), nil
}

func (r *Registry) GetBlend(name string) (Blend, error) {
	if name == "" {
		name = BlendMixture
	}
	fn, ok := r.blends[name]
	if !ok {
		return nil, errors.Configuration("nonlinear", []string{"blend"}, "unknown blend %q", name)
	}
	return fn(), nil
}

func (r *Registry) ListTransforms() []string { return keys(r.transforms) }
func (r *Registry) ListBlends() []string     { return keys(r.blends) }

func keys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
