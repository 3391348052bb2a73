package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/phenosim/internal/config"
	"github.com/san-kum/phenosim/internal/errors"
	"github.com/san-kum/phenosim/internal/logger"
	"github.com/san-kum/phenosim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	logJSON    bool

	seed     uint64
	samples  int
	traits   int
	variants int
	causal   int

	genVar   float64
	noiseVar float64
	h2s      float64
	h2bg     float64
	delta    float64
	rho      float64
	phi      float64

	transform    string
	nlProportion float64
	blend        string
	standardise  bool

	noSave  bool
	outFile string

	numRuns int
	workers int
	axes    []string
	bestBy  string

	trait     int
	component string
	histogram bool
	bins      int
)

// main registers the phenosim commands and exits with status 1 on error,
// printing any hints attached to it.
func main() {
	rootCmd := &cobra.Command{
		Use:           "phenosim",
		Short:         "synthetic multi-trait phenotype simulator",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Initialize(logJSON, logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "run directory (env PHENOSIM_DATA)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate a phenotype and save the run",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimulationFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "print the report without saving")
	runCmd.Flags().StringVar(&outFile, "json", "", "also write the run as JSON to this path")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "check a configuration and print the completed variance model",
		Args:  cobra.NoArgs,
		RunE:  validateConfig,
	}
	addSimulationFlags(validateCmd)

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "simulate under consecutive seeds and summarise the metrics",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addSimulationFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 10, "number of runs")
	ensembleCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 = GOMAXPROCS)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "simulate over a grid of variance parameters",
		Example: "  phenosim sweep --axis genVar=0.1:0.9:5\n" +
			"  phenosim sweep --axis genVar=0.2:0.6:3 --axis h2s=0:1:5 --best heritability",
		Args: cobra.NoArgs,
		RunE: runSweep,
	}
	addSimulationFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&axes, "axis", nil, "param=lo:hi:n (repeatable)")
	sweepCmd.Flags().StringVar(&bestBy, "best", "share_error", "metric to minimise when reporting the best point")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a run's model, components and metrics",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot one trait of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&trait, "trait", 1, "trait number (1-based)")
	plotCmd.Flags().StringVar(&component, "component", "", "plot a component instead of the phenotype")
	plotCmd.Flags().BoolVar(&histogram, "histogram", false, "plot a histogram instead of values by sample")
	plotCmd.Flags().IntVar(&bins, "bins", 20, "histogram bins")

	inspectCmd := &cobra.Command{
		Use:   "inspect [run_id]",
		Short: "browse a run's phenotype and components interactively",
		Args:  cobra.ExactArgs(1),
		RunE:  inspectRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output path (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Printf("  %-12s %s\n", name, viz.Subtle.Render(config.Presets[name].Description))
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, validateCmd, ensembleCmd, sweepCmd, listCmd, showCmd, plotCmd, inspectCmd, exportJSONCmd, presetsCmd)

	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, viz.ErrorText.Render("error:"), err)
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintln(os.Stderr, viz.Subtle.Render("hint: "+hint))
		}
		os.Exit(1)
	}
}

func addSimulationFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file (yaml or toml)")
	f.StringVar(&preset, "preset", "", "start from a preset (see phenosim presets)")
	f.Uint64Var(&seed, "seed", config.DefaultSeed, "random seed (env PHENOSIM_SEED)")
	f.IntVarP(&samples, "samples", "n", 0, "number of samples (env PHENOSIM_N)")
	f.IntVarP(&traits, "traits", "p", 0, "number of traits (env PHENOSIM_P)")
	f.IntVar(&variants, "variants", 0, "simulated genotype variants")
	f.IntVar(&causal, "causal", 0, "causal variants")

	f.Float64Var(&genVar, "genvar", 0, "total genetic variance")
	f.Float64Var(&noiseVar, "noisevar", 0, "total noise variance")
	f.Float64Var(&h2s, "h2s", 0, "genetic variance share of fixed effects")
	f.Float64Var(&h2bg, "h2bg", 0, "genetic variance share of the infinitesimal background")
	f.Float64Var(&delta, "delta", 0, "noise share of confounders")
	f.Float64Var(&rho, "rho", 0, "noise share of correlated background")
	f.Float64Var(&phi, "phi", 0, "noise share of observational noise")

	f.StringVar(&transform, "transform", "", "non-linear transform (exp, log, sqrt, poly, sigmoid, tanh, cos)")
	f.Float64Var(&nlProportion, "nl-proportion", 0, "proportion of the phenotype transformed")
	f.StringVar(&blend, "blend", "", "how the transform is blended in (mixture, variance, traits)")
	f.BoolVar(&standardise, "standardise", false, "standardise each trait before the transform")
}
