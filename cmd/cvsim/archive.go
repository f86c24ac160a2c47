package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/cvsim/internal/analysis"
	"github.com/san-kum/cvsim/internal/cardio"
	"github.com/san-kum/cvsim/internal/export"
	"github.com/san-kum/cvsim/internal/storage"
)

var (
	plotSeries   []string
	exportSeries []string
	exportPath   string
	svgPath      string

	defaultPlotSeries = []string{
		"pressure.ascending_aorta",
		"pressure.left_ventricle",
		"heart_rate",
	}
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
	fmt.Fprintln(w, "ID\tTIME\tDURATION\tDT\tBARO\tCP\tTILT\tBEATS\tRESIDUAL")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%.1fs\t%.4fs\t%s\t%s\t%s\t%d\t%.3f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			onOff(run.Baroreflex),
			onOff(run.Cardiopulmonary),
			onOff(run.Tilt),
			run.Beats,
			run.Residual,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	table, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if table.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("points: %d\n\n", table.Len())

	for _, name := range plotSeries {
		data, err := table.Column(name)
		if err != nil {
			return err
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if svgPath != "" && len(plotSeries) > 0 {
		t, err := table.Column("time")
		if err != nil {
			return err
		}
		data, _ := table.Column(plotSeries[0])
		svg, err := export.SeriesToSVG(t, data, 800, 300, "#ff4444")
		if err != nil {
			return err
		}
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s to %s\n", plotSeries[0], svgPath)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	format := "json"
	if len(args) > 1 {
		format = args[1]
	}

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	table, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(exportSeries) > 0 {
		if table, err = table.Select(append([]string{"time"}, exportSeries...)...); err != nil {
			return err
		}
	}

	switch format {
	case "json":
		err = storage.ExportJSON(exportPath, meta, table)
	case "csv":
		err = storage.ExportCSV(exportPath, table)
	default:
		return fmt.Errorf("unknown format: %s (use json or csv)", format)
	}
	if err == nil && exportPath != "" {
		fmt.Fprintf(os.Stderr, "exported %s to %s\n", runID, exportPath)
	}
	return err
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	table, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if table.Len() < 2 {
		return fmt.Errorf("not enough data to analyze")
	}

	t, err := table.Column("time")
	if err != nil {
		return err
	}
	abp, err := table.Column("pressure.ascending_aorta")
	if err != nil {
		return err
	}

	fmt.Printf("analysis: %s\n\n", meta.ID)

	mean := stat.Mean(abp, nil)
	beats, err := analysis.DetectBeats(t, abp, mean, 0.25)
	if err != nil {
		return err
	}
	rates := analysis.HeartRates(beats)
	fmt.Printf("beats detected: %d\n", len(beats))
	if len(rates) > 0 {
		m, sd := stat.MeanStdDev(rates, nil)
		fmt.Printf("heart rate: %.1f ± %.1f bpm\n", m, sd)
	}

	// Decimated points are uneven in time, so the spectrum uses the mean spacing.
	dtMean := (t[len(t)-1] - t[0]) / float64(len(t)-1)
	if f, err := analysis.DominantFrequency(abp, dtMean, 0.3, 4); err == nil {
		fmt.Printf("dominant frequency: %.3f hz (%.1f bpm)\n", f, f*60)
	}

	if len(beats) >= 2 {
		if err := printLoop(table, t, beats[len(beats)-2], beats[len(beats)-1]); err != nil {
			return err
		}
	}
	return nil
}

// printLoop draws the left ventricular pressure-volume loop between two beat
// times.
func printLoop(table *storage.Table, t []float64, from, to float64) error {
	lvp, err := table.Column("pressure.left_ventricle")
	if err != nil {
		return err
	}
	lvv, err := table.Column("volume.left_ventricle")
	if err != nil {
		return err
	}

	var smp cardio.Sample
	for i, ti := range t {
		if ti < from || ti > to {
			continue
		}
		smp.Time = append(smp.Time, ti)
		smp.Pressure[cardio.LeftVentricle] = append(smp.Pressure[cardio.LeftVentricle], lvp[i])
		smp.Volume[cardio.LeftVentricle] = append(smp.Volume[cardio.LeftVentricle], lvv[i])
	}
	loop, err := analysis.PressureVolumeLoop(&smp, cardio.LeftVentricle)
	if err != nil {
		return err
	}

	fmt.Printf("\nleft ventricular pressure-volume loop (%.2f-%.2f s)\n", from, to)
	fmt.Println(analysis.PhasePortraitToASCII(loop, 60, 20))
	fmt.Printf("stroke work: %.0f mmHg ml\n", loop.Area())

	if svgPath != "" {
		if err := os.WriteFile(svgPath, []byte(export.LoopToSVG(loop, 400, 400, "#ff4444")), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote loop to %s\n", svgPath)
	}
	return nil
}
