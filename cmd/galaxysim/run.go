package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/galaxysim/internal/config"
	"github.com/san-kum/galaxysim/internal/export"
	"github.com/san-kum/galaxysim/internal/metrics"
	"github.com/san-kum/galaxysim/internal/sim"
	"github.com/san-kum/galaxysim/internal/star"
	"github.com/san-kum/galaxysim/internal/storage"
	"github.com/san-kum/galaxysim/internal/units"
	"github.com/san-kum/galaxysim/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if ensemble > 0 {
		return runEnsemble(ctx, cfg, ensemble)
	}

	fmt.Printf("running galaxy simulation: %d stars, %d steps, %d workers...\n", cfg.Stars, cfg.Steps, cfg.Workers)
	s := sim.New(cfg)
	defer s.Close()

	return execute(ctx, s, cfg)
}

// execute runs s for cfg.Steps steps, prints the summary and stores the
// run unless --no-save was given.
func execute(ctx context.Context, s *sim.Simulator, cfg *config.Config) error {
	s.AddMetric(metrics.NewSurvival())
	s.AddMetric(metrics.NewCenterDrift())
	if energy {
		s.AddMetric(metrics.NewEnergyDrift(cfg.SofteningMeters()))
	}
	if verbose {
		s.AddObserver(sim.ObserverFunc(printProgress))
	}

	start := time.Now()
	result, err := s.Run(ctx, cfg.Steps, nil)
	elapsed := time.Since(start)
	if err != nil {
		// keep what was simulated before the interrupt
		fmt.Printf("stopped: %v\n", err)
	}

	printSummary(result, elapsed)

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, result, s.Live(), "")
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	if svgOut != "" {
		if err := writeFrameSVG(svgOut, s.Live(), cfg); err != nil {
			return err
		}
		fmt.Printf("frame written to %s\n", svgOut)
	}

	return err
}

func printProgress(r sim.StepResult, live []star.Star) {
	fmt.Printf("step %5d  t=%.4g yr  live=%d  died=%d\n", r.Step, r.Time/units.Year, r.Live, r.Died)
}

func printSummary(result *sim.Result, elapsed time.Duration) {
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("steps: %d\n", result.Steps)
	fmt.Printf("simulated: %.4g yr\n", result.Time/units.Year)
	fmt.Printf("live: %d (died %d)\n", result.Live, result.Died)
	if result.Extinct {
		fmt.Println("no stars left")
	}

	if len(result.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		names := make([]string, 0, len(result.Metrics))
		for name := range result.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %s: %.6g\n", name, result.Metrics[name])
		}
	}

	if len(result.LiveHistory) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(result.LiveHistory,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("live stars"),
		))
		fmt.Println()
	}
}

func runEnsemble(ctx context.Context, cfg *config.Config, n int) error {
	fmt.Printf("running %d seeds from %d: %d stars, %d steps...\n", n, cfg.Seed, cfg.Stars, cfg.Steps)

	start := time.Now()
	results, err := sim.NewEnsemble(cfg, n, cfg.Seed).Run(ctx, cfg.Steps)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSTEPS\tLIVE\tDIED\tSURVIVAL")
	for i, r := range results {
		survival := 0.0
		if r.LiveHistory[0] > 0 {
			survival = float64(r.Live) / r.LiveHistory[0]
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%.3f\n", cfg.Seed+int64(i), r.Steps, r.Live, r.Died, survival)
	}
	return w.Flush()
}

func renderFrame(stars []star.Star, cfg *config.Config, view viz.View) *viz.Frame {
	frame := viz.NewFrame(120, 60)
	frame.Draw(stars, metrics.MassCenter(stars), view, cfg.Render.Zoom, cfg.AreaMeters())
	return frame
}

func writeFrameSVG(path string, stars []star.Star, cfg *config.Config) error {
	view, err := viz.ParseView(cfg.Render.View)
	if err != nil {
		return err
	}
	svg := export.FrameToSVG(renderFrame(stars, cfg, view), 4)
	return os.WriteFile(path, []byte(svg), 0644)
}
