package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/galaxysim/internal/config"
	"github.com/san-kum/galaxysim/internal/sim"
)

func benchWorkers(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %d stars over %d steps\n\n", cfg.Stars, benchSteps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORKERS\tTIME\tPER STEP\tSTEPS/SEC\tSPEEDUP\tLIVE")

	var base time.Duration
	for _, n := range workerCounts {
		c := *cfg
		c.Workers = n

		s := sim.New(&c)
		start := time.Now()
		result, err := s.Run(context.Background(), benchSteps, nil)
		elapsed := time.Since(start)
		workers := s.Workers()
		s.Close()
		if err != nil {
			return err
		}

		if base == 0 {
			base = elapsed
		}
		perStep := elapsed / time.Duration(max(result.Steps, 1))
		fmt.Fprintf(w, "%d\t%v\t%v\t%.1f\t%.2fx\t%d\n",
			workers,
			elapsed.Round(time.Millisecond),
			perStep.Round(time.Microsecond),
			float64(result.Steps)/elapsed.Seconds(),
			base.Seconds()/elapsed.Seconds(),
			result.Live,
		)
	}

	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTARS\tAREA\tSTEP\tBLACK HOLE\tINTEGRATOR\tVIEW")

	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		bh := "-"
		if p.BlackHole {
			bh = fmt.Sprintf("%.3g M☉", p.BlackHoleMass)
		}
		integ := "euler"
		if p.Verlet {
			integ = "verlet"
		}
		fmt.Fprintf(w, "%s\t%d\t%g ly\t%g yr\t%s\t%s\t%s\n",
			name, p.Stars, p.Area, p.Step, bh, integ, p.Render.View)
	}

	return w.Flush()
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		if err := config.Save(args[0], cfg); err != nil {
			return err
		}
		fmt.Printf("config written to %s\n", args[0])
		return nil
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}
