package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/cvsim/internal/config"
	"github.com/san-kum/cvsim/internal/logging"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string

	dt               float64
	duration         float64
	compression      int
	decimation       string
	baroreflex       bool
	cardiopulmonary  bool
	tilt             bool
	tiltAngle        float64
	tiltOnset        float64
	volumeCorrection bool
	overrides        []string
	runName          string

	natsURL      string
	subject      string
	streamSeries []string
)

// main registers the cvsim commands and executes the root command. It exits
// with status 1 if the command returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "cvsim",
		Short:         "closed-loop cardiovascular simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".cvsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (trace, debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and archive it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().StringVar(&runName, "name", "run", "run name")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&plotSeries, "series", defaultPlotSeries, "series to plot")
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also write the first series as SVG")

	exportCmd := &cobra.Command{
		Use:   "export [run_id] [format]",
		Short: "export run data to json or csv",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringSliceVar(&exportSeries, "series", nil, "series to export (default all)")
	exportCmd.Flags().StringVar(&exportPath, "out", "", "output file (default stdout)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "beat, spectrum and pressure-volume analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&svgPath, "svg", "", "write the pressure-volume loop as SVG")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the bedside monitor",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().IntVar(&speed, "speed", 1, "samples per frame")
	liveCmd.Flags().StringVar(&theme, "theme", "bedside", "color theme")
	liveCmd.Flags().BoolVar(&publish, "publish", false, "publish samples to NATS while running")
	addStreamFlags(liveCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [param] [min] [max]",
		Short: "sweep one parameter across a range",
		Args:  cobra.ExactArgs(3),
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&steps, "steps", 5, "number of values")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (default GOMAXPROCS)")

	fitCmd := &cobra.Command{
		Use:   "fit [metric] [target]",
		Short: "grid search parameters to match a metric",
		Args:  cobra.ExactArgs(2),
		RunE:  runFit,
	}
	addRunFlags(fitCmd)
	fitCmd.Flags().StringArrayVar(&grid, "grid", nil, "grid axis name=lo:hi:n (repeatable)")
	fitCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (default GOMAXPROCS)")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [param...]",
		Short: "run randomly perturbed trials",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runMonteCarlo,
	}
	addRunFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturb", 0.1, "relative perturbation")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 uses the clock)")
	monteCarloCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (default GOMAXPROCS)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario and archive it",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	paramsCmd := &cobra.Command{
		Use:   "params [kind]",
		Short: "list model parameters and defaults",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listParams,
	}

	publishCmd := &cobra.Command{
		Use:   "publish",
		Short: "stream samples to NATS",
		Args:  cobra.NoArgs,
		RunE:  runPublish,
	}
	addRunFlags(publishCmd)
	addStreamFlags(publishCmd)
	publishCmd.Flags().BoolVar(&forever, "forever", false, "ignore the duration and run until interrupted")

	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "print samples streamed over NATS",
		Args:  cobra.NoArgs,
		RunE:  runTail,
	}
	addStreamFlags(tailCmd)

	rootCmd.AddCommand(runCmd, listCmd, showCmd, plotCmd, exportCmd, analyzeCmd, liveCmd, sweepCmd, fitCmd, monteCarloCmd, scenarioCmd, presetsCmd, paramsCmd, publishCmd, tailCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "integration step, s")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration, s")
	cmd.Flags().IntVar(&compression, "compression", config.DefaultCompression, "steps per sample")
	cmd.Flags().StringVar(&decimation, "decimation", config.DefaultDecimation, "decimation (turning_point, none)")
	cmd.Flags().BoolVar(&baroreflex, "baroreflex", true, "enable the arterial baroreflex")
	cmd.Flags().BoolVar(&cardiopulmonary, "cardiopulmonary", true, "enable the cardiopulmonary reflex")
	cmd.Flags().BoolVar(&tilt, "tilt", false, "enable the head-up tilt")
	cmd.Flags().Float64Var(&tiltAngle, "tilt-angle", 0, "tilt angle, deg")
	cmd.Flags().Float64Var(&tiltOnset, "tilt-onset", 0, "tilt onset, s")
	cmd.Flags().BoolVar(&volumeCorrection, "volume-correction", false, "fold the volume residual back each step")
	cmd.Flags().StringArrayVar(&overrides, "set", nil, "parameter override name=value (repeatable)")
}

func addStreamFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&natsURL, "nats", config.DefaultNATSURL, "NATS url")
	cmd.Flags().StringVar(&subject, "subject", config.DefaultSubject, "subject prefix")
	cmd.Flags().StringSliceVar(&streamSeries, "series", nil, "series to publish")
}

// loadConfig resolves the run configuration: defaults, then the preset, then
// the config file, then any flags set on the command line.
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
	if cmd.Flags().Changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = logLevel
	}

	flags := cmd.Flags()
	if flags.Lookup("nats") != nil {
		applyStreamFlags(cmd, cfg)
	}
	if flags.Lookup("dt") == nil {
		return cfg, cfg.Validate()
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("compression") {
		cfg.Compression = compression
	}
	if flags.Changed("decimation") {
		cfg.Decimation = decimation
	}
	if flags.Changed("baroreflex") {
		cfg.Reflex.Arterial = baroreflex
	}
	if flags.Changed("cardiopulmonary") {
		cfg.Reflex.Cardiopulmonary = cardiopulmonary
	}
	if flags.Changed("tilt") {
		cfg.Tilt.Enabled = tilt
	}
	if flags.Changed("tilt-angle") {
		cfg.Tilt.Angle = tiltAngle
	}
	if flags.Changed("tilt-onset") {
		cfg.Tilt.Onset = tiltOnset
	}
	if flags.Changed("volume-correction") {
		cfg.VolumeCorrection = volumeCorrection
	}

	set, err := parseOverrides(overrides)
	if err != nil {
		return nil, err
	}
	if len(set) > 0 && cfg.Params == nil {
		cfg.Params = make(map[string]float64, len(set))
	}
	for k, v := range set {
		cfg.Params[k] = v
	}
	return cfg, cfg.Validate()
}

func applyStreamFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("nats") {
		cfg.Stream.URL = natsURL
	}
	if cmd.Flags().Changed("subject") {
		cfg.Stream.Subject = subject
	}
	if cmd.Flags().Changed("series") {
		cfg.Stream.Series = streamSeries
	}
}

// parseOverrides turns name=value pairs into a parameter map.
func parseOverrides(pairs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("override %q: expected name=value", pair)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("override %q: %w", pair, err)
		}
		out[strings.TrimSpace(name)] = v
	}
	return out, nil
}

func newLogger(cfg *config.Config) *logrus.Logger {
	return logging.New(cfg.LogLevel)
}
