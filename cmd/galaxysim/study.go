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
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/galaxysim/internal/automation"
	"github.com/san-kum/galaxysim/internal/config"
	"github.com/san-kum/galaxysim/internal/optim"
	"github.com/san-kum/galaxysim/internal/storage"
	"github.com/san-kum/galaxysim/internal/units"
)

// parseGrid turns name=v1,v2,... entries into the search axes, keeping the
// order they were given in.
func parseGrid(entries []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(entries))
	ranges := make([][]float64, 0, len(entries))
	known := config.ParamNames()

	for _, entry := range entries {
		name, list, ok := strings.Cut(entry, "=")
		if !ok || list == "" {
			return nil, nil, fmt.Errorf("invalid grid %q, want name=v1,v2", entry)
		}
		if i := sort.SearchStrings(known, name); i == len(known) || known[i] != name {
			return nil, nil, fmt.Errorf("unknown parameter %q (available: %v)", name, known)
		}

		var values []float64
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("grid %s: %w", name, err)
			}
			values = append(values, v)
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

func tuneParams(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(grid) == 0 {
		return fmt.Errorf("no --grid given")
	}

	names, ranges, err := parseGrid(grid)
	if err != nil {
		return err
	}
	evaluate, err := optim.GalaxyObjective(cfg, studySteps, objective)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	search := optim.NewGridSearch(names, ranges)
	fmt.Printf("tuning %v over %d combinations: %d stars, %d steps each, minimizing %s\n\n",
		names, search.Size(), cfg.Stars, studySteps, objective)

	start := time.Now()
	best, trials, err := search.Search(ctx, evaluate)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(objective))
	for _, t := range trials {
		values := make([]string, len(names))
		for i, name := range names {
			values[i] = strconv.FormatFloat(t.Params[name], 'g', -1, 64)
		}
		score := fmt.Sprintf("%.6g", t.Score)
		if t.Err != nil {
			score = "error: " + t.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\n", strings.Join(values, "\t"), score)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	fmt.Printf("\ncompleted in %v\n", time.Since(start).Round(time.Millisecond))
	if err != nil {
		return err
	}

	fmt.Printf("best: %s=%.6g with", objective, best.Score)
	for _, name := range names {
		fmt.Printf(" %s=%g", name, best.Params[name])
	}
	fmt.Println()
	return nil
}

func sweepParams(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sweep := &automation.ParameterSweep{
		Base:     *cfg,
		Param:    sweepParam,
		Min:      sweepMin,
		Max:      sweepMax,
		NumSteps: sweepN,
		Steps:    studySteps,
		Energy:   energy,
	}
	results, err := automation.RunSweep(ctx, sweep, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Println()

	survival := make([]float64, len(results))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tLIVE\tDIED\tSURVIVAL\tENERGY DRIFT\n", strings.ToUpper(sweepParam))
	for i, r := range results {
		drift := "-"
		if energy {
			drift = fmt.Sprintf("%.3g", r.EnergyDrift)
		}
		fmt.Fprintf(w, "%.4g\t%d\t%d\t%.3f\t%s\n", r.Value, r.Live, r.Died, r.Survival, drift)
		survival[i] = r.Survival
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(survival) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(survival,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("survival vs "+sweepParam),
		))
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	var st *storage.Store
	if !noSave {
		st = storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if scenario.Name != "" {
		fmt.Printf("scenario: %s\n", scenario.Name)
	}
	if scenario.Description != "" {
		fmt.Printf("%s\n", scenario.Description)
	}
	fmt.Println()

	outcomes, runErr := automation.RunScenario(ctx, scenario, st, os.Stdout)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTEPS\tSIMULATED\tLIVE\tDIED\tRUN ID")
	for _, o := range outcomes {
		id := o.RunID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(w, "%s\t%d\t%.3g yr\t%d\t%d\t%s\n",
			o.Name, o.Result.Steps, o.Result.Time/units.Year, o.Result.Live, o.Result.Died, id)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}
