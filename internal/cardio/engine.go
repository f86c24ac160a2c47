package cardio

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/cvsim/internal/dynamo"
	"github.com/san-kum/cvsim/internal/integrators"
)

// DefaultStepSize is the nominal integration step, s.
const DefaultStepSize = 0.001

// Engine owns one simulated circulation. It is not safe for concurrent use;
// callers serialize Step, AdvanceSample, Reset and the Update methods.
type Engine struct {
	params Params
	state  State
	reflex Reflex
	ctrl   *controller
	integ  *integrators.StepDoubling[stage]

	log       logrus.FieldLogger
	decimator Decimator
	correct   bool
	stepSize  float64

	flags    Flags
	guard    dynamo.Guard
	ready    bool
	estimate Estimate
	steps    int
	beats    int
	onset    float64
	residual float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger routes engine logs to l.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) { e.log = l }
}

// WithDecimator sets the compression applied to every series of a sample.
func WithDecimator(d Decimator) Option {
	return func(e *Engine) { e.decimator = d }
}

// WithVolumeCorrection enables the post-step correction that returns the
// volume residual to the inferior vena cava.
func WithVolumeCorrection(on bool) Option {
	return func(e *Engine) { e.correct = on }
}

// WithStepSize sets the trial step used by AdvanceSample.
func WithStepSize(h float64) Option {
	return func(e *Engine) { e.stepSize = h }
}

// WithTolerance sets the local error tolerance of the integrator.
func WithTolerance(eps float64) Option {
	return func(e *Engine) { e.integ.Eps = eps }
}

// WithMaxRetries bounds the step size search of the integrator.
func WithMaxRetries(n int) Option {
	return func(e *Engine) { e.integ.MaxRetries = n }
}

// New creates an engine for the parameter set p. Initialize must be called
// before stepping.
func New(p Params, opts ...Option) *Engine {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	e := &Engine{
		params:    p,
		integ:     integrators.NewStepDoubling[stage](),
		log:       discard,
		decimator: Identity,
		stepSize:  DefaultStepSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// stage is the auxiliary context carried through the integrator sub-steps.
type stage struct {
	s State
	r Reflex
}

// system adapts the engine to the integrator. Sub-steps work on value copies
// of the state; only the pressures are integrated.
type system struct {
	e *Engine
}

func (m system) Derive(x dynamo.State, aux stage) (dynamo.State, error) {
	s := &aux.s
	copy(s.Pressure[:NumCompartments], x)
	evaluate(s, &m.e.params, &aux.r, m.e.flags, &m.e.guard)
	if err := m.e.guard.Err(); err != nil {
		return nil, err
	}
	dx := make(dynamo.State, NumCompartments)
	copy(dx, s.Derivative[:NumCompartments])
	return dx, nil
}

func (m system) Advance(aux stage, h float64) stage {
	pace(&aux.s, &aux.r, &m.e.params, h)
	elastance(&aux.s, &m.e.params, &m.e.guard)
	return aux
}

// Initialize solves for the steady state, lays out the initial state and
// builds the reflex kernels. It may be called again to restart the run.
func (e *Engine) Initialize() error {
	est, err := EstimateSteadyState(&e.params)
	if err != nil {
		e.log.WithError(err).Error("initial condition estimation failed")
		return err
	}

	e.estimate = est
	e.state, e.reflex = initialState(&e.params, est)
	e.ctrl = newController(&e.params)
	e.guard.Reset()
	e.flags = Flags{}
	elastance(&e.state, &e.params, &e.guard)
	evaluate(&e.state, &e.params, &e.reflex, e.flags, &e.guard)
	volumes(&e.state, &e.params, &e.reflex)
	e.residual = volumeResidual(&e.state, &e.params)
	if err := e.guard.Err(); err != nil {
		return err
	}

	e.ready = true
	e.steps, e.beats, e.onset = 0, 0, 0
	e.log.WithFields(logrus.Fields{
		"iterations":   est.Iterations,
		"volume_error": est.VolumeError,
		"lv_systolic":  est.LeftSystolic,
		"total_volume": e.state.Volume.Total(),
	}).Info("initial conditions estimated")
	return nil
}

// Step advances the circulation by at most h seconds and returns the step
// size suggested for the next call.
func (e *Engine) Step(h float64, f Flags) (float64, error) {
	if !e.ready {
		return 0, dynamo.ErrNotInitialized
	}
	e.flags = f
	e.guard.Reset()

	x := make(dynamo.State, NumCompartments)
	copy(x, e.state.Pressure[:NumCompartments])
	res, err := e.integ.Step(system{e}, x, stage{e.state, e.reflex}, h)
	if err != nil {
		return 0, e.fail(err)
	}

	p, s, r := &e.params, &e.state, &e.reflex
	copy(s.Pressure[:NumCompartments], res.X)
	cardiac := s.Time.Cardiac

	pace(s, r, p, res.Did)
	elastance(s, p, &e.guard)
	evaluate(s, p, r, f, &e.guard)
	s.Time.Absolute += res.Did

	e.ctrl.update(s, r, p, res.Did, f, &e.guard)
	volumes(s, p, r)
	e.residual = volumeResidual(s, p)
	if e.correct && e.residual != 0 {
		s.Pressure[InferiorVenaCava] += e.residual / p[InferiorVenaCavaCompliance]
		volumes(s, p, r)
		e.residual = volumeResidual(s, p)
	}

	if err := e.guard.Err(); err != nil {
		return 0, e.fail(err)
	}
	if !dynamo.State(s.Pressure[:]).IsValid() {
		return 0, e.fail(dynamo.ErrInvalidState)
	}

	e.steps++
	if s.Time.Cardiac < cardiac {
		e.beats++
		e.onset = s.Time.Absolute - s.Time.Cardiac
		e.log.WithFields(logrus.Fields{
			"time":       e.onset,
			"beat":       e.beats,
			"beat_rate":  r.BeatRate,
			"heart_rate": r.HeartRate,
		}).Debug("atrial onset")
	}
	return res.Next, nil
}

func (e *Engine) fail(err error) error {
	var simErr *dynamo.SimulationError
	if errors.As(err, &simErr) {
		return err
	}
	e.log.WithError(err).WithFields(logrus.Fields{
		"step": e.steps,
		"time": e.state.Time.Absolute,
	}).Error("integration step failed")
	return &dynamo.SimulationError{
		Step:    e.steps,
		Time:    e.state.Time.Absolute,
		State:   dynamo.State(e.state.Pressure[:]).Clone(),
		Wrapped: err,
	}
}

// AdvanceSample performs factor integration steps of the nominal size,
// records every step and compresses each series with the decimator.
func (e *Engine) AdvanceSample(factor int, f Flags) (*Sample, error) {
	if factor < 1 {
		return nil, fmt.Errorf("compression factor must be positive, got %d", factor)
	}
	smp := newSample(factor)
	for i := 0; i < factor; i++ {
		if _, err := e.Step(e.stepSize, f); err != nil {
			return nil, err
		}
		smp.record(&e.state, &e.reflex, e.residual)
	}
	smp.decimate(e.decimator, factor)
	return smp, nil
}

// Reset clears the reflex controller bins, histories and responses. The
// circulation itself is left as is; call Initialize to restart it.
func (e *Engine) Reset() {
	if e.ctrl != nil {
		e.ctrl.reset()
	}
	e.log.WithField("time", e.state.Time.Absolute).Info("reflex controller reset")
}

// State returns a copy of the physiological state.
func (e *Engine) State() State { return e.state }

// Reflex returns a copy of the effector state.
func (e *Engine) Reflex() Reflex { return e.reflex }

// Params returns a copy of the parameter set.
func (e *Engine) Params() Params { return e.params }

// Estimate returns the operating point found by Initialize.
func (e *Engine) Estimate() Estimate { return e.estimate }

// Time returns the simulated time, s.
func (e *Engine) Time() float64 { return e.state.Time.Absolute }

// Beats returns the number of atrial onsets since Initialize and the time
// of the last one.
func (e *Engine) Beats() (int, float64) { return e.beats, e.onset }

// Residual returns the total blood volume not accounted for after the last
// step, ml.
func (e *Engine) Residual() float64 { return e.residual }

// Responses returns the gated reflex pathway outputs of the last step.
func (e *Engine) Responses() [NumKernels]float64 {
	if e.ctrl == nil {
		return [NumKernels]float64{}
	}
	return e.ctrl.Response
}

// Kernels returns the impulse responses in use.
func (e *Engine) Kernels() Kernels {
	if e.ctrl == nil {
		return BuildKernels(&e.params)
	}
	return e.ctrl.kernels
}

// refresh re-evaluates the equations and volumes after a mutation.
func (e *Engine) refresh() {
	if !e.ready {
		return
	}
	elastance(&e.state, &e.params, &e.guard)
	evaluate(&e.state, &e.params, &e.reflex, e.flags, &e.guard)
	volumes(&e.state, &e.params, &e.reflex)
	e.residual = volumeResidual(&e.state, &e.params)
}
