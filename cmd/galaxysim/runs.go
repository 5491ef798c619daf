package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/galaxysim/internal/analysis"
	"github.com/san-kum/galaxysim/internal/export"
	"github.com/san-kum/galaxysim/internal/metrics"
	"github.com/san-kum/galaxysim/internal/star"
	"github.com/san-kum/galaxysim/internal/storage"
	"github.com/san-kum/galaxysim/internal/units"
	"github.com/san-kum/galaxysim/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSTARS\tSTEPS\tSIMULATED\tLIVE\tPARENT")

	for _, run := range runs {
		parent := run.Parent
		if parent == "" {
			parent = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.3g yr\t%d\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Config.Stars,
			run.Steps,
			run.Time/units.Year,
			run.Live,
			parent,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	if len(meta.LiveHistory) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(meta.LiveHistory))
	fmt.Println(asciigraph.Plot(meta.LiveHistory,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("live stars vs step"),
	))
	fmt.Println()

	if svgOut != "" {
		svg := export.SeriesToSVG(meta.LiveHistory, 800, 300, "#00ff88")
		if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("plot written to %s\n", svgOut)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	var stars []star.Star
	if includeStars {
		stars, err = st.LoadStars(args[0])
		if err != nil {
			return err
		}
	}

	var w io.Writer = os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if err := storage.ExportJSON(w, meta, stars); err != nil {
		return err
	}
	if outFile != "" {
		fmt.Printf("exported to %s\n", outFile)
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	stars, err := st.LoadStars(args[0])
	if err != nil {
		return err
	}
	if len(stars) == 0 {
		return fmt.Errorf("run %s has no live stars", meta.ID)
	}

	center := metrics.MassCenter(stars)
	axis := analysis.RotationAxis(stars, center)
	radius := meta.Config.AreaMeters()
	profile := analysis.RadialProfile(stars, center, axis, radius, bins)

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("stars: %d (%d within %.4g ly)\n", len(stars), profile.Count(), meta.Config.Area)
	fmt.Printf("rotation axis: (%.3f, %.3f, %.3f)\n\n", axis.X, axis.Y, axis.Z)

	speeds := profile.Speeds()
	for i := range speeds {
		speeds[i] /= 1000
	}
	fmt.Println(asciigraph.Plot(speeds,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("rotation curve: km/s vs radius"),
	))
	fmt.Println()

	// solar masses per square light year
	densityUnit := units.SolarMass / (units.LightYear * units.LightYear)
	densities := profile.Densities()
	for i := range densities {
		densities[i] /= densityUnit
	}
	fmt.Println(asciigraph.Plot(densities,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("surface density: M☉/ly² vs radius"),
	))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RADIUS\tSTARS\tSPEED\tDENSITY")
	for i, b := range profile {
		fmt.Fprintf(w, "%.4g-%.4g ly\t%d\t%.3g km/s\t%.3g\n",
			b.Inner/units.LightYear, b.Outer/units.LightYear, b.Count, speeds[i], densities[i])
	}
	return w.Flush()
}

func renderRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	stars, err := st.LoadStars(args[0])
	if err != nil {
		return err
	}

	cfg := meta.Config
	if cmd.Flags().Changed("view") {
		cfg.Render.View = opts.Render.View
	}
	if cmd.Flags().Changed("zoom") {
		cfg.Render.Zoom = opts.Render.Zoom
	}
	cfg.Sanitize()
	if cfg.Render.RealColors {
		for i := range stars {
			stars[i].UseRealColor()
		}
	}

	if outFile == "" {
		view, err := viz.ParseView(cfg.Render.View)
		if err != nil {
			return err
		}
		fmt.Println(export.FrameToSVG(renderFrame(stars, &cfg, view), 4))
		return nil
	}
	if err := writeFrameSVG(outFile, stars, &cfg); err != nil {
		return err
	}
	fmt.Printf("frame written to %s\n", outFile)
	return nil
}
