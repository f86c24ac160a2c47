package automation

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/cvsim/internal/cardio"
	"github.com/san-kum/cvsim/internal/config"
	"github.com/san-kum/cvsim/internal/experiment"
	"github.com/san-kum/cvsim/internal/metrics"
	"github.com/san-kum/cvsim/internal/sim"
)

// MonteCarloConfig defines Monte Carlo simulation parameters. Each trial
// scales every listed parameter by a uniform factor in
// [1-Perturbation, 1+Perturbation].
type MonteCarloConfig struct {
	Params       []string
	Perturbation float64
	NumTrials    int
	Workers      int
	Seed         int64
}

// MonteCarloResult holds statistics from Monte Carlo runs
type MonteCarloResult struct {
	TrialID int
	Params  map[string]float64
	Metrics map[string]float64
	Stable  bool
}

// RunMonteCarlo executes multiple trials with random parameter perturbations
func RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig, base *config.Config, registry *experiment.Registry, log logrus.FieldLogger) ([]MonteCarloResult, error) {
	if mc.NumTrials < 1 {
		return nil, fmt.Errorf("monte carlo needs at least one trial, got %d", mc.NumTrials)
	}
	if mc.Perturbation < 0 || mc.Perturbation >= 1 {
		return nil, fmt.Errorf("perturbation must be within [0, 1), got %f", mc.Perturbation)
	}

	rng := rand.New(rand.NewSource(mc.Seed))
	if mc.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	defaults := cardio.DefaultParams()
	jobs := make([]sim.Job, mc.NumTrials)
	drawn := make([]map[string]float64, mc.NumTrials)
	for trial := range jobs {
		cfg := base.Clone()
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64)
		}
		drawn[trial] = make(map[string]float64, len(mc.Params))
		for _, name := range mc.Params {
			id, err := cardio.ParseParam(name)
			if err != nil {
				return nil, err
			}
			v, ok := cfg.Params[id.String()]
			if !ok {
				v = defaults[id]
			}
			v *= 1 + (rng.Float64()-0.5)*2*mc.Perturbation
			cfg.Params[id.String()] = v
			drawn[trial][id.String()] = v
		}

		exp, err := experiment.New(cfg, registry, nil)
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", trial, err)
		}
		jobs[trial] = exp.Job(fmt.Sprintf("trial_%d", trial))
	}

	runs, err := sim.NewEnsemble(mc.Workers, metrics.Hemodynamics, log).Run(ctx, jobs)
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(runs))
	for trial, run := range runs {
		results[trial] = MonteCarloResult{
			TrialID: trial,
			Params:  drawn[trial],
			Metrics: run.Metrics,
			Stable:  run.Metrics["volume_stability"] == 1,
		}
		if (trial+1)%10 == 0 {
			fmt.Printf("Monte Carlo: %d/%d trials complete\n", trial+1, mc.NumTrials)
		}
	}
	return results, nil
}
