package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/cvsim/internal/automation"
	"github.com/san-kum/cvsim/internal/cardio"
	"github.com/san-kum/cvsim/internal/config"
	"github.com/san-kum/cvsim/internal/experiment"
	"github.com/san-kum/cvsim/internal/sim"
	"github.com/san-kum/cvsim/internal/storage"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry(), log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %.1f s of simulated time...\n", cfg.Duration)
	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	return archive(st, exp.Metadata(runName), result, time.Since(start))
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(base)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	exp, result, err := automation.RunScenario(ctx, scenario, base, experiment.NewRegistry(), log)
	if err != nil {
		return err
	}
	name := scenario.Name
	if name == "" {
		name = "scenario"
	}
	return archive(st, exp.Metadata(name), result, time.Since(start))
}

func archive(st *storage.Store, meta storage.RunMetadata, result *sim.Result, elapsed time.Duration) error {
	runID, err := st.Save(meta, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("samples: %d\n", result.Samples)
	fmt.Printf("beats: %d\n", result.Beats)
	fmt.Printf("volume residual: %.4f ml\n", result.Residual)
	printMetrics(result.Metrics)
	return nil
}

func printMetrics(metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.4f\n", name, metrics[name])
	}
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tDURATION\tBARO\tCP\tTILT\tOVERRIDES")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		keys := make([]string, 0, len(cfg.Params))
		for k, v := range cfg.Params {
			keys = append(keys, fmt.Sprintf("%s=%g", k, v))
		}
		sort.Strings(keys)
		tiltDesc := "-"
		if cfg.Tilt.Enabled {
			tiltDesc = fmt.Sprintf("%g° at %gs", cfg.Tilt.Angle, cfg.Tilt.Onset)
		}
		fmt.Fprintf(w, "%s\t%.0fs\t%s\t%s\t%s\t%s\n",
			name,
			cfg.Duration,
			onOff(cfg.Reflex.Arterial),
			onOff(cfg.Reflex.Cardiopulmonary),
			tiltDesc,
			strings.Join(keys, " "),
		)
	}
	return w.Flush()
}

func listParams(cmd *cobra.Command, args []string) error {
	kind := ""
	if len(args) > 0 {
		kind = args[0]
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tDEFAULT\tUNIT")
	found := false
	for _, name := range cardio.ParamNames() {
		p, err := cardio.ParseParam(name)
		if err != nil {
			return err
		}
		if kind != "" && p.Kind().String() != kind {
			continue
		}
		found = true
		fmt.Fprintf(w, "%s\t%s\t%g\t%s\n", name, p.Kind(), p.Default(), p.Unit())
	}
	if !found {
		return fmt.Errorf("no parameters of kind %q", kind)
	}
	return w.Flush()
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
