package automation

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/cvsim/internal/cardio"
	"github.com/san-kum/cvsim/internal/config"
	"github.com/san-kum/cvsim/internal/experiment"
	"github.com/san-kum/cvsim/internal/metrics"
	"github.com/san-kum/cvsim/internal/sim"
)

// ParameterSweep runs simulations across a range of parameter values
type ParameterSweep struct {
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Workers   int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue float64
	Beats      int
	Residual   float64
	Metrics    map[string]float64
}

// Values returns the swept parameter values.
func (s *ParameterSweep) Values() ([]float64, error) {
	if s.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", s.NumSteps)
	}
	if s.NumSteps == 1 {
		return []float64{s.ParamMin}, nil
	}
	step := (s.ParamMax - s.ParamMin) / float64(s.NumSteps-1)
	values := make([]float64, s.NumSteps)
	for i := range values {
		values[i] = s.ParamMin + float64(i)*step
	}
	return values, nil
}

// RunSweep executes a parameter sweep, one engine per value, running up to
// sweep.Workers engines at a time.
func RunSweep(ctx context.Context, sweep *ParameterSweep, base *config.Config, registry *experiment.Registry, log logrus.FieldLogger) ([]SweepResult, error) {
	if _, err := cardio.ParseParam(sweep.ParamName); err != nil {
		return nil, err
	}
	values, err := sweep.Values()
	if err != nil {
		return nil, err
	}

	jobs := make([]sim.Job, len(values))
	for i, v := range values {
		cfg := base.Clone()
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64)
		}
		cfg.Params[sweep.ParamName] = v

		exp, err := experiment.New(cfg, registry, nil)
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.ParamName, v, err)
		}
		jobs[i] = exp.Job(fmt.Sprintf("%s=%g", sweep.ParamName, v))
	}

	ens := sim.NewEnsemble(sweep.Workers, metrics.Hemodynamics, log)
	runs, err := ens.Run(ctx, jobs)
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(runs))
	for i, run := range runs {
		results[i] = SweepResult{
			ParamValue: values[i],
			Beats:      run.Beats,
			Residual:   run.Residual,
			Metrics:    run.Metrics,
		}
		fmt.Printf("Sweep %d/%d: %s=%.4f\n", i+1, len(runs), sweep.ParamName, values[i])
	}
	return results, nil
}
