package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/galaxysim/internal/config"
)

var (
	dataDir    string
	configFile string
	preset     string

	// simulation flags, applied over the config file only when set
	opts = *config.DefaultConfig()

	steps        int
	benchSteps   int
	verbose      bool
	noSave       bool
	energy       bool
	ensemble     int
	svgOut       string
	outFile      string
	bins         int
	workerCounts []int
	includeStars bool

	studySteps int
	objective  string
	grid       []string
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepN     int
)

// main registers the commands and runs the live view when no subcommand
// is given. It exits with status 1 if the command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:   "galaxysim",
		Short: "Barnes-Hut galaxy simulation in the terminal",
		RunE:  runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".galaxysim", "data directory")
	addSimFlags(rootCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and save it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print progress every step")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().BoolVar(&energy, "energy", false, "track energy drift (O(n²) per step)")
	runCmd.Flags().IntVar(&ensemble, "ensemble", 0, "run this many seeds side by side instead")
	runCmd.Flags().StringVar(&svgOut, "svg", "", "write the final frame as SVG")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the simulation in the interactive terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time the same run with different worker counts",
		Args:  cobra.NoArgs,
		RunE:  benchWorkers,
	}
	addSimFlags(benchCmd)
	benchCmd.Flags().IntVar(&benchSteps, "steps", 20, "steps per measurement")
	benchCmd.Flags().IntSliceVar(&workerCounts, "workers-list", []int{1, 2, 4, 8}, "worker counts to compare")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "write the effective configuration as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  writeConfig,
	}
	addSimFlags(configCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the live star count of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgOut, "svg", "", "also write the plot as SVG")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().BoolVar(&includeStars, "stars", false, "include the star snapshot")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "rotation curve and density profile of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&bins, "bins", 20, "number of radial bins")

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render the final frame of a saved run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  renderRun,
	}
	renderCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	renderCmd.Flags().StringVar(&opts.Render.View, "view", config.DefaultView, "view: default, xy, xz or yz")
	renderCmd.Flags().Float64Var(&opts.Render.Zoom, "zoom", config.DefaultZoom, "dots per area length")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search simulation parameters against an objective",
		Args:  cobra.NoArgs,
		RunE:  tuneParams,
	}
	addSimFlags(tuneCmd)
	tuneCmd.Flags().IntVar(&studySteps, "steps", 50, "steps per trial")
	tuneCmd.Flags().StringVar(&objective, "objective", "energy_drift", "score to minimize: energy_drift, step_time or loss")
	tuneCmd.Flags().StringArrayVar(&grid, "grid", nil, "parameter values, e.g. precision=0.3,0.6,1 (repeatable)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run the same galaxy across a range of one parameter",
		Args:  cobra.NoArgs,
		RunE:  sweepParams,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&studySteps, "steps", 50, "steps per run")
	sweepCmd.Flags().StringVar(&sweepParam, "param", "precision", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.2, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1.5, "last value")
	sweepCmd.Flags().IntVar(&sweepN, "n", 5, "number of values")
	sweepCmd.Flags().BoolVar(&energy, "energy", false, "track energy drift (O(n²) per step)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario of chained simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")

	rootCmd.AddCommand(runCmd, liveCmd, benchCmd, presetsCmd, configCmd, listCmd, plotCmd, exportCmd, analyzeCmd, renderCmd,
		tuneCmd, sweepCmd, scenarioCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")

	f.IntVar(&opts.Stars, "stars", config.DefaultStars, "number of stars")
	f.Float64Var(&opts.Area, "area", config.DefaultArea, "size of the galaxy in light years")
	f.Float64Var(&opts.Thickness, "thickness", config.DefaultThickness, "disk thickness as a fraction of area")
	f.Float64Var(&opts.InitialSpeed, "speed", config.DefaultInitialSpeed, "initial orbital speed in m/s")
	f.BoolVar(&opts.BlackHole, "black-hole", false, "put a black hole at the center")
	f.Float64Var(&opts.BlackHoleMass, "black-hole-mass", config.DefaultBlackHoleMass, "black hole mass in solar masses")
	f.Float64Var(&opts.Step, "step", config.DefaultStep, "simulated years per step")
	f.Float64Var(&opts.Precision, "precision", config.DefaultPrecision, "Barnes-Hut opening ratio, 0 is exact")
	f.BoolVar(&opts.Verlet, "verlet", true, "use Verlet integration instead of Euler")
	f.Float64Var(&opts.Softening, "softening", config.DefaultSoftening, "force softening as a fraction of area")
	f.Int64Var(&opts.Seed, "seed", 1, "random seed")
	f.IntVar(&opts.Workers, "workers", config.DefaultWorkers, "worker goroutines")
	f.StringVar(&opts.Render.View, "view", config.DefaultView, "view: default, xy, xz or yz")
	f.Float64Var(&opts.Render.Zoom, "zoom", config.DefaultZoom, "dots per area length")
	f.BoolVar(&opts.Render.RealColors, "real-colors", false, "colour stars by temperature")
}

// loadConfig builds the run configuration: preset, then config file, then
// the flags the user actually set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	overrides := map[string]func(){
		"stars":           func() { cfg.Stars = opts.Stars },
		"area":            func() { cfg.Area = opts.Area },
		"thickness":       func() { cfg.Thickness = opts.Thickness },
		"speed":           func() { cfg.InitialSpeed = opts.InitialSpeed },
		"black-hole":      func() { cfg.BlackHole = opts.BlackHole },
		"black-hole-mass": func() { cfg.BlackHoleMass = opts.BlackHoleMass },
		"step":            func() { cfg.Step = opts.Step },
		"precision":       func() { cfg.Precision = opts.Precision },
		"verlet":          func() { cfg.Verlet = opts.Verlet },
		"softening":       func() { cfg.Softening = opts.Softening },
		"seed":            func() { cfg.Seed = opts.Seed },
		"workers":         func() { cfg.Workers = opts.Workers },
		"view":            func() { cfg.Render.View = opts.Render.View },
		"zoom":            func() { cfg.Render.Zoom = opts.Render.Zoom },
		"real-colors":     func() { cfg.Render.RealColors = opts.Render.RealColors },
		"steps":           func() { cfg.Steps, _ = cmd.Flags().GetInt("steps") },
	}
	for name, apply := range overrides {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}

	// a black hole mass on its own turns the black hole on
	if cmd.Flags().Changed("black-hole-mass") && !cmd.Flags().Changed("black-hole") && cfg.BlackHoleMass > 0 {
		cfg.BlackHole = true
	}

	cfg.Sanitize()
	return cfg, nil
}
