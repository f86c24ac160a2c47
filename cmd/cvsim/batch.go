package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/cvsim/internal/automation"
	"github.com/san-kum/cvsim/internal/experiment"
	"github.com/san-kum/cvsim/internal/optim"
)

var (
	steps        int
	workers      int
	trials       int
	perturbation float64
	seed         int64
	grid         []string
)

func workerLimit() int {
	if workers > 0 {
		return workers
	}
	return runtime.GOMAXPROCS(0)
}

func runSweep(cmd *cobra.Command, args []string) error {
	lo, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("min: %w", err)
	}
	hi, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("max: %w", err)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sweep := &automation.ParameterSweep{
		ParamName: args[0],
		ParamMin:  lo,
		ParamMax:  hi,
		NumSteps:  steps,
		Workers:   workerLimit(),
	}
	results, err := automation.RunSweep(ctx, sweep, cfg, experiment.NewRegistry(), newLogger(cfg))
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return nil
	}

	names := metricNames(results[0].Metrics)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tBEATS\t%s\n", strings.ToUpper(args[0]), strings.ToUpper(strings.Join(names, "\t")))
	for _, r := range results {
		row := make([]string, len(names))
		for i, name := range names {
			row[i] = fmt.Sprintf("%.2f", r.Metrics[name])
		}
		fmt.Fprintf(w, "%.4g\t%d\t%s\n", r.ParamValue, r.Beats, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	mc := &automation.MonteCarloConfig{
		Params:       args,
		Perturbation: perturbation,
		NumTrials:    trials,
		Workers:      workerLimit(),
		Seed:         seed,
	}
	results, err := automation.RunMonteCarlo(ctx, mc, cfg, experiment.NewRegistry(), newLogger(cfg))
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return nil
	}

	stable := 0
	for _, r := range results {
		if r.Stable {
			stable++
		}
	}
	fmt.Printf("\n%d trials, %d with the volume residual within bounds\n\n", len(results), stable)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTD\tMIN\tMAX")
	for _, name := range metricNames(results[0].Metrics) {
		values := make([]float64, len(results))
		for i, r := range results {
			values[i] = r.Metrics[name]
		}
		mean, sd := stat.MeanStdDev(values, nil)
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%.2f\n", name, mean, sd, sorted[0], sorted[len(sorted)-1])
	}
	return w.Flush()
}

func metricNames(metrics map[string]float64) []string {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func runFit(cmd *cobra.Command, args []string) error {
	target, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}
	names, ranges, err := parseGrid(grid)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	search, err := optim.NewGridSearch(names, ranges, workerLimit())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("fitting %s to %g over %d grid points...\n", args[0], target, len(search.Points()))
	best, trials, err := search.Search(ctx, cfg, experiment.NewRegistry(), args[0], target, newLogger(cfg))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\tERROR\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(args[0]))
	for _, tr := range trials {
		row := make([]string, len(names))
		for i, name := range names {
			row[i] = fmt.Sprintf("%.4g", tr.Params[name])
		}
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\n", strings.Join(row, "\t"), tr.Value, tr.Error)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println("\nbest:")
	for _, name := range names {
		fmt.Printf("  %s: %.4g\n", name, best.Params[name])
	}
	fmt.Printf("  %s: %.2f (off by %.2f)\n", args[0], best.Value, best.Error)
	return nil
}

// parseGrid reads name=lo:hi:n axes into evenly spaced candidate values.
func parseGrid(axes []string) ([]string, [][]float64, error) {
	if len(axes) == 0 {
		return nil, nil, fmt.Errorf("at least one --grid axis is required")
	}
	names := make([]string, 0, len(axes))
	ranges := make([][]float64, 0, len(axes))
	for _, axis := range axes {
		name, bounds, ok := strings.Cut(axis, "=")
		parts := strings.Split(bounds, ":")
		if !ok || len(parts) != 3 {
			return nil, nil, fmt.Errorf("grid %q: expected name=lo:hi:n", axis)
		}
		lo, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("grid %q: %w", axis, err)
		}
		hi, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("grid %q: %w", axis, err)
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil || n < 1 {
			return nil, nil, fmt.Errorf("grid %q: count must be a positive integer", axis)
		}
		sweep := automation.ParameterSweep{ParamMin: lo, ParamMax: hi, NumSteps: n}
		values, err := sweep.Values()
		if err != nil {
			return nil, nil, err
		}
		names = append(names, strings.TrimSpace(name))
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}
