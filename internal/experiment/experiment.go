package experiment

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/cvsim/internal/cardio"
	"github.com/san-kum/cvsim/internal/config"
	"github.com/san-kum/cvsim/internal/sim"
	"github.com/san-kum/cvsim/internal/storage"
)

// Experiment binds a run configuration to an engine and its simulator.
type Experiment struct {
	cfg       *config.Config
	params    cardio.Params
	options   []cardio.Option
	engine    *cardio.Engine
	simulator *sim.Simulator
}

// New validates cfg and builds the engine with the registry's decimator and
// default metrics.
func New(cfg *config.Config, registry *Registry, log logrus.FieldLogger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	params, err := cfg.BuildParams()
	if err != nil {
		return nil, err
	}
	dec, err := registry.GetDecimator(cfg.Decimation)
	if err != nil {
		return nil, err
	}

	opts := []cardio.Option{
		cardio.WithDecimator(dec),
		cardio.WithStepSize(cfg.Dt),
		cardio.WithVolumeCorrection(cfg.VolumeCorrection),
	}
	if log != nil {
		opts = append(opts, cardio.WithLogger(log))
	}

	e := &Experiment{
		cfg:     cfg,
		params:  params,
		options: opts,
		engine:  cardio.New(params, opts...),
	}
	e.simulator = sim.New(e.engine, log)
	for _, m := range registry.DefaultMetrics() {
		e.simulator.AddMetric(m)
	}
	return e, nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.SimConfig())
}

// SimConfig returns the run settings handed to the simulator.
func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{
		Dt:          e.cfg.Dt,
		Duration:    e.cfg.Duration,
		Compression: e.cfg.Compression,
		Flags:       e.cfg.Flags(),
	}
}

// Job describes the experiment as an independent ensemble job. The job
// builds its own engine and shares nothing with e.
func (e *Experiment) Job(name string) sim.Job {
	return sim.Job{
		Name:    name,
		Params:  e.params,
		Config:  e.SimConfig(),
		Options: e.options[:len(e.options):len(e.options)],
	}
}

// Metadata describes a finished run for the archive.
func (e *Experiment) Metadata(name string) storage.RunMetadata {
	return storage.RunMetadata{
		Name:             name,
		Dt:               e.cfg.Dt,
		Duration:         e.cfg.Duration,
		Compression:      e.cfg.Compression,
		Decimation:       e.cfg.Decimation,
		Baroreflex:       e.cfg.Reflex.Arterial,
		Cardiopulmonary:  e.cfg.Reflex.Cardiopulmonary,
		Tilt:             e.cfg.Tilt.Enabled,
		VolumeCorrection: e.cfg.VolumeCorrection,
		Params:           e.cfg.Params,
	}
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

// Engine returns the engine driven by the experiment.
func (e *Experiment) Engine() *cardio.Engine { return e.engine }

// Params returns the parameter set the engine was built with.
func (e *Experiment) Params() cardio.Params { return e.params }
