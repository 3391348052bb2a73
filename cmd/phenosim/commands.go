package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/phenosim/internal/config"
	"github.com/san-kum/phenosim/internal/ensemble"
	"github.com/san-kum/phenosim/internal/errors"
	"github.com/san-kum/phenosim/internal/logger"
	"github.com/san-kum/phenosim/internal/metrics"
	"github.com/san-kum/phenosim/internal/model"
	"github.com/san-kum/phenosim/internal/simulate"
	"github.com/san-kum/phenosim/internal/storage"
	"github.com/san-kum/phenosim/internal/sweep"
	"github.com/san-kum/phenosim/internal/viz"
)

// loadConfig layers defaults, a preset or config file, PHENOSIM_* env
// variables, and finally any flags set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if preset != "" && configFile != "" {
		return nil, errors.Configuration("cli", []string{"preset", "config"}, "use either --preset or --config, not both")
	}

	cfg := config.DefaultConfig()
	switch {
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, errors.WithHintf(
				errors.Configuration("cli", []string{"preset"}, "unknown preset: %s", preset),
				"available presets: %s", strings.Join(config.ListPresets(), ", "))
		}
	case configFile != "":
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, err
		}
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	applyFlags(cmd, cfg)
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("data") {
		cfg.DataDir = dataDir
	}
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("samples") {
		cfg.N = samples
	}
	if f.Changed("traits") {
		cfg.P = traits
	}
	if f.Changed("variants") {
		cfg.Genotypes.Variants = variants
	}
	if f.Changed("causal") {
		cfg.Genotypes.Causal = causal
	}

	// variance flags replace the configured proportions as a block
	varianceFlags := map[string]*float64{
		"genvar": &genVar, "noisevar": &noiseVar,
		"h2s": &h2s, "h2bg": &h2bg,
		"delta": &delta, "rho": &rho, "phi": &phi,
	}
	var v model.Params
	set := false
	for name, val := range varianceFlags {
		if !f.Changed(name) {
			continue
		}
		set = true
		x := model.Float(*val)
		switch name {
		case "genvar":
			v.GenVar = x
		case "noisevar":
			v.NoiseVar = x
		case "h2s":
			v.H2s = x
		case "h2bg":
			v.H2bg = x
		case "delta":
			v.Delta = x
		case "rho":
			v.Rho = x
		case "phi":
			v.Phi = x
		}
	}
	if set {
		cfg.Variance = v
	}

	if f.Changed("transform") {
		cfg.Nonlinear.Transform = transform
	}
	if f.Changed("nl-proportion") {
		cfg.Nonlinear.Proportion = nlProportion
	}
	if f.Changed("blend") {
		cfg.Nonlinear.Blend = blend
	}
	if f.Changed("standardise") {
		cfg.Standardise = standardise
	}
}

func simulator() *simulate.Simulator {
	return simulate.New(simulate.WithLogger(logger.Logger))
}

// dataStore resolves the run directory from env and --data.
func dataStore(cmd *cobra.Command) (*storage.Store, error) {
	cfg := config.DefaultConfig()
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("data") {
		cfg.DataDir = dataDir
	}
	return storage.New(cfg.DataDir), nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sim, err := cfg.Simulation()
	if err != nil {
		return err
	}

	res, err := simulator().Run(sim, cfg.Seed)
	if err != nil {
		return err
	}
	values := metrics.Collect(res)

	meta := storage.Metadata(res, values)
	if !noSave {
		st := storage.New(cfg.DataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(res, values)
		if err != nil {
			return err
		}
		meta.ID = runID
		logger.Logger.Sugar().Infow("run saved", "run_id", runID, "dir", st.Path(runID))
	}

	if outFile != "" {
		if err := storage.ExportJSON(outFile, res, values); err != nil {
			return err
		}
	}

	fmt.Println(viz.Report(meta))
	fmt.Println(viz.AuditReport(metrics.NewAudit(res)))
	return nil
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	m, err := cfg.Validate()
	if err != nil {
		return err
	}

	fmt.Printf("genetic model: %s\n", m.Genetic)
	fmt.Printf("noise model:   %s\n\n", m.Noise)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COMPONENT\tSHARE")
	for _, sh := range m.Shares() {
		fmt.Fprintf(w, "%s\t%.4f\n", sh.Slot, sh.Value)
	}
	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sim, err := cfg.Simulation()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ens := ensemble.New(simulator(), numRuns, cfg.Seed)
	if workers > 0 {
		ens.WithWorkers(workers)
	}
	results, err := ens.Run(ctx, sim)
	if err != nil {
		return err
	}

	summary := ensemble.Summarize(results)
	fmt.Printf("%d runs, seeds %d-%d\n\n", len(results), cfg.Seed, cfg.Seed+uint64(len(results))-1)
	return printMetrics(summary)
}

func runSweep(cmd *cobra.Command, args []string) error {
	if len(axes) == 0 {
		return errors.WithHint(
			errors.Configuration("cli", []string{"axis"}, "at least one --axis is required"),
			"for example --axis h2bg=0:1:5")
	}
	grid := make([]sweep.Axis, 0, len(axes))
	for _, arg := range axes {
		a, err := parseAxis(arg)
		if err != nil {
			return err
		}
		grid = append(grid, a)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sim, err := cfg.Simulation()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	points, err := sweep.NewGrid(simulator(), grid...).Run(ctx, sim, cfg.Seed)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := make([]string, 0, len(grid)+4)
	for _, a := range grid {
		header = append(header, strings.ToUpper(a.Param))
	}
	header = append(header, "SHARE_ERR", "HERITABILITY", "TRAIT_CORR", "STATUS")
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, pt := range points {
		row := make([]string, 0, len(header))
		for _, a := range grid {
			row = append(row, fmt.Sprintf("%.3f", pt.Params[a.Param]))
		}
		if pt.Err != nil {
			row = append(row, "-", "-", "-", errors.Kind(pt.Err))
		} else {
			row = append(row,
				fmt.Sprintf("%.2e", pt.Metrics["share_error"]),
				fmt.Sprintf("%.4f", pt.Metrics["heritability"]),
				fmt.Sprintf("%.4f", pt.Metrics["trait_correlation"]),
				"ok")
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best, ok := sweep.Best(points, bestBy); ok {
		fmt.Printf("\nbest %s: %.4g at %v\n", bestBy, best.Metrics[bestBy], best.Params)
	}
	return nil
}

// parseAxis reads "param=lo:hi:n" or "param=v1,v2,...".
func parseAxis(arg string) (sweep.Axis, error) {
	name, values, ok := strings.Cut(arg, "=")
	if !ok || name == "" {
		return sweep.Axis{}, errors.Configuration("cli", []string{"axis"}, "invalid axis %q: want param=lo:hi:n or param=v1,v2", arg)
	}

	if parts := strings.Split(values, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil || n < 1 {
			return sweep.Axis{}, errors.Configuration("cli", []string{"axis"}, "invalid axis range %q", values)
		}
		return sweep.Span(name, lo, hi, n), nil
	}

	a := sweep.Axis{Param: name}
	for _, s := range strings.Split(values, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return sweep.Axis{}, errors.Configuration("cli", []string{"axis"}, "invalid axis value %q", s)
		}
		a.Values = append(a.Values, v)
	}
	return a, nil
}

func printMetrics(values map[string]float64) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN")
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%.6f\n", name, values[name])
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := dataStore(cmd)
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tGENETIC\tNOISE\tN\tP\tSEED\tTIME")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			run.ID,
			run.GeneticModel,
			run.NoiseModel,
			run.N,
			run.P,
			run.Seed,
			run.Timestamp.Format("2006-01-02 15:04:05"),
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st, err := dataStore(cmd)
	if err != nil {
		return err
	}
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	fmt.Println(viz.Report(*meta))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st, err := dataStore(cmd)
	if err != nil {
		return err
	}
	runID := args[0]

	name := "phenotype"
	table, err := st.LoadPhenotype(runID)
	if component != "" {
		if err := checkComponent(component); err != nil {
			return err
		}
		name = component
		table, err = st.LoadComponent(runID, component)
	}
	if err != nil {
		return err
	}

	_, p := table.Data.Dims()
	if trait < 1 || trait > p {
		return errors.Configuration("cli", []string{"trait"}, "trait %d out of range 1-%d", trait, p)
	}
	col := mat.Col(nil, trait-1, table.Data)

	fmt.Printf("run: %s\n", runID)
	fmt.Printf("%s, %s, %d samples\n\n", name, table.Columns[trait-1], len(col))
	if histogram {
		fmt.Println(viz.HistogramPlot(col, bins, fmt.Sprintf("%s %s histogram", name, table.Columns[trait-1]), 80, 12))
	} else {
		fmt.Println(viz.PlotTrait(col, fmt.Sprintf("%s %s by sample", name, table.Columns[trait-1]), 80, 12))
	}
	return nil
}

func inspectRun(cmd *cobra.Command, args []string) error {
	st, err := dataStore(cmd)
	if err != nil {
		return err
	}
	runID := args[0]
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	y, err := st.LoadPhenotype(runID)
	if err != nil {
		return err
	}
	layers := []viz.Layer{{Name: "phenotype", Table: y}}
	for _, c := range meta.Components {
		t, err := st.LoadComponent(runID, c.Name)
		if err != nil {
			return err
		}
		layers = append(layers, viz.Layer{Name: c.Name, Table: t})
	}
	return viz.RunInspector(*meta, layers)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st, err := dataStore(cmd)
	if err != nil {
		return err
	}
	data, err := st.LoadExport(args[0])
	if err != nil {
		return err
	}

	if outFile == "" {
		return storage.Encode(os.Stdout, data)
	}
	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()
	return storage.Encode(f, data)
}

// checkComponent rejects names that are not a component slot.
func checkComponent(name string) error {
	if _, ok := model.ParseSlot(name); ok {
		return nil
	}
	names := make([]string, len(model.ComponentOrder))
	for i, s := range model.ComponentOrder {
		names[i] = s.String()
	}
	return errors.WithHintf(
		errors.Configuration("cli", []string{"component"}, "unknown component %q", name),
		"components: %s", strings.Join(names, ", "))
}
