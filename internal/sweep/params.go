package sweep

import (
	"sort"

	"github.com/san-kum/phenosim/internal/errors"
	"github.com/san-kum/phenosim/internal/model"
)

func setters() map[string]func(*model.Params, *float64) {
	return map[string]func(*model.Params, *float64){
		"genVar":            func(p *model.Params, v *float64) { p.GenVar = v },
		"noiseVar":          func(p *model.Params, v *float64) { p.NoiseVar = v },
		"h2s":               func(p *model.Params, v *float64) { p.H2s = v },
		"h2bg":              func(p *model.Params, v *float64) { p.H2bg = v },
		"delta":             func(p *model.Params, v *float64) { p.Delta = v },
		"rho":               func(p *model.Params, v *float64) { p.Rho = v },
		"phi":               func(p *model.Params, v *float64) { p.Phi = v },
		"theta.shared":      func(p *model.Params, v *float64) { p.Theta.Shared = v },
		"theta.independent": func(p *model.Params, v *float64) { p.Theta.Independent = v },
		"eta.shared":        func(p *model.Params, v *float64) { p.Eta.Shared = v },
		"eta.independent":   func(p *model.Params, v *float64) { p.Eta.Independent = v },
		"gamma.shared":      func(p *model.Params, v *float64) { p.Gamma.Shared = v },
		"gamma.independent": func(p *model.Params, v *float64) { p.Gamma.Independent = v },
		"alpha.shared":      func(p *model.Params, v *float64) { p.Alpha.Shared = v },
		"alpha.independent": func(p *model.Params, v *float64) { p.Alpha.Independent = v },
	}
}

// SetParam sets one variance parameter by its config name.
func SetParam(p *model.Params, name string, v float64) error {
	set, ok := setters()[name]
	if !ok {
		return errors.Configuration("sweep", []string{name}, "unknown variance parameter %q", name)
	}
	set(p, model.Float(v))
	return nil
}

// ClearParam unsets one variance parameter so it is derived again.
func ClearParam(p *model.Params, name string) error {
	set, ok := setters()[name]
	if !ok {
		return errors.Configuration("sweep", []string{name}, "unknown variance parameter %q", name)
	}
	set(p, nil)
	return nil
}

func ParamNames() []string {
	s := setters()
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
