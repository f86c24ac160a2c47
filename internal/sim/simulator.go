package sim

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/cvsim/internal/cardio"
	"github.com/san-kum/cvsim/internal/logging"
)

// Simulator drives one engine through a run of compressed samples.
type Simulator struct {
	engine    *cardio.Engine
	log       logrus.FieldLogger
	metrics   []Metric
	observers []Observer
}

func New(engine *cardio.Engine, log logrus.FieldLogger) *Simulator {
	if log == nil {
		log = logging.Discard()
	}
	return &Simulator{
		engine:    engine,
		log:       log,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Engine returns the engine being driven.
func (s *Simulator) Engine() *cardio.Engine { return s.engine }

// Run initializes the engine and records cfg.Samples() samples. On
// cancellation or a failed step the partial result is returned with the
// error.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if err := s.engine.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}

	result := &Result{
		Series:   &cardio.Sample{},
		Metrics:  make(map[string]float64),
		Estimate: s.engine.Estimate(),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	flags := cfg.Flags
	n := cfg.Samples()
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			s.finish(result)
			return result, ctx.Err()
		default:
		}

		for _, obs := range s.observers {
			if err := obs.OnSample(s.engine.Time(), s.engine, &flags); err != nil {
				s.finish(result)
				return result, fmt.Errorf("observer at t=%.4f: %w", s.engine.Time(), err)
			}
		}

		smp, err := s.engine.AdvanceSample(cfg.Compression, flags)
		if err != nil {
			s.finish(result)
			return result, fmt.Errorf("sample %d: %w", i, err)
		}
		for _, m := range s.metrics {
			m.Observe(smp)
		}
		result.Series.Append(smp)
		result.Samples++
	}

	s.finish(result)
	s.log.WithFields(logrus.Fields{
		"samples":  result.Samples,
		"beats":    result.Beats,
		"time":     s.engine.Time(),
		"residual": result.Residual,
	}).Info("run complete")
	return result, nil
}

func (s *Simulator) finish(result *Result) {
	result.Beats, _ = s.engine.Beats()
	result.Residual = s.engine.Residual()
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) validateConfig(cfg Config) error {
	if err := validateStep(cfg); err != nil {
		return err
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return nil
}

func validateStep(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Compression < 1 {
		return fmt.Errorf("compression must be at least 1, got %d", cfg.Compression)
	}
	return nil
}

// RunWithCallback streams samples to callback without keeping them. It stops
// when callback returns false, the duration is covered or ctx is done. A
// zero duration runs until one of the other two.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(*cardio.Sample) bool) error {
	if err := validateStep(cfg); err != nil {
		return err
	}
	if cfg.Duration < 0 {
		return fmt.Errorf("duration must not be negative, got %f", cfg.Duration)
	}
	if err := s.engine.Initialize(); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	limit := -1
	if cfg.Duration > 0 {
		limit = cfg.Samples()
	}
	flags := cfg.Flags
	for i := 0; limit < 0 || i < limit; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		for _, obs := range s.observers {
			if err := obs.OnSample(s.engine.Time(), s.engine, &flags); err != nil {
				return err
			}
		}
		smp, err := s.engine.AdvanceSample(cfg.Compression, flags)
		if err != nil {
			return err
		}
		if !callback(smp) {
			return nil
		}
	}
	return nil
}
