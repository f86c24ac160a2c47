package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/cvsim/internal/dynamo"
)

type oscillator struct{}

func (oscillator) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (oscillator) StateDim() int { return 2 }

type decay struct{ k float64 }

func (d decay) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{-d.k * x[0]}
}

func (decay) StateDim() int { return 1 }

type forced struct{}

func (forced) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{math.Cos(t)}
}

func (forced) StateDim() int { return 1 }

func TestRK4Accuracy(t *testing.T) {
	integ := NewRK4[float64]()
	sys := Timed(oscillator{})

	x := dynamo.State{1.0, 0.0}
	tm := 0.0
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		var err error
		x, tm, err = integ.Step(sys, x, tm, dt)
		if err != nil {
			t.Fatalf("step failed: %v", err)
		}
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
	if math.Abs(tm-1.0) > 1e-12 {
		t.Errorf("expected context time 1.0, got %f", tm)
	}
}

func integrate(t *testing.T, sys Staged[float64], x dynamo.State, htry, duration float64) dynamo.State {
	t.Helper()
	sd := NewStepDoubling[float64]()
	tm := 0.0
	h := htry
	for tm < duration-1e-12 {
		if tm+h > duration {
			h = duration - tm
		}
		res, err := sd.Step(sys, x, tm, h)
		if err != nil {
			t.Fatalf("step at t=%f failed: %v", tm, err)
		}
		x, tm = res.X, tm+res.Did
		h = math.Min(res.Next, htry)
	}
	return x
}

func TestStepDoublingAnalytic(t *testing.T) {
	tests := []struct {
		name  string
		sys   Staged[float64]
		x0    dynamo.State
		exact func(t float64) float64
	}{
		{"decay", Timed(decay{k: 1}), dynamo.State{1}, func(t float64) float64 { return math.Exp(-t) }},
		{"fast decay", Timed(decay{k: 5}), dynamo.State{2}, func(t float64) float64 { return 2 * math.Exp(-5*t) }},
		{"sinusoid", Timed(forced{}), dynamo.State{0}, math.Sin},
	}

	for _, tt := range tests {
		for _, htry := range []float64{0.001, 0.01, 0.1, 0.5} {
			t.Run(tt.name, func(t *testing.T) {
				x := integrate(t, tt.sys, tt.x0.Clone(), htry, 2.0)
				if diff := math.Abs(x[0] - tt.exact(2.0)); diff > DefaultEps {
					t.Errorf("htry=%g: got %.8f, expected %.8f", htry, x[0], tt.exact(2.0))
				}
			})
		}
	}
}

func TestStepDoublingShrinks(t *testing.T) {
	sd := NewStepDoubling[float64]()
	res, err := sd.Step(Timed(decay{k: 50}), dynamo.State{1}, 0, 1.0)
	if err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if res.Did >= 1.0 {
		t.Errorf("expected step to shrink below 1.0, got %f", res.Did)
	}
	if res.Retries == 0 {
		t.Error("expected at least one retry")
	}
	if res.Error > 1.0 {
		t.Errorf("accepted scaled error %f above 1", res.Error)
	}
}

func TestStepDoublingGrows(t *testing.T) {
	sd := NewStepDoubling[float64]()
	res, err := sd.Step(Timed(decay{k: 1}), dynamo.State{1}, 0, 1e-4)
	if err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if res.Did != 1e-4 {
		t.Errorf("expected accepted step 1e-4, got %g", res.Did)
	}
	if res.Next != 4e-4 {
		t.Errorf("expected next step 4e-4, got %g", res.Next)
	}
	if math.Abs(res.Aux-1e-4) > 1e-15 {
		t.Errorf("expected context advanced to 1e-4, got %g", res.Aux)
	}
}

func TestStepDoublingBounded(t *testing.T) {
	tests := []struct {
		name    string
		retries int
		minStep float64
		want    error
	}{
		{"retry bound", 0, DefaultMinStep, dynamo.ErrNoConvergence},
		{"step floor", DefaultMaxRetries, 0.5, dynamo.ErrStepTooSmall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sd := NewStepDoubling[float64]()
			sd.MaxRetries = tt.retries
			sd.MinStep = tt.minStep
			_, err := sd.Step(Timed(decay{k: 50}), dynamo.State{1}, 0, 1.0)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestStepDoublingDoesNotAlias(t *testing.T) {
	sd := NewStepDoubling[float64]()
	x := dynamo.State{1, 0}
	res, err := sd.Step(Timed(oscillator{}), x, 0, 0.01)
	if err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if x[0] != 1 || x[1] != 0 {
		t.Errorf("input state modified: %v", x)
	}
	res.X[0] = 42
	if x[0] == 42 {
		t.Error("result aliases input state")
	}
}

type blowup struct{}

func (blowup) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{math.NaN()}
}

func (blowup) StateDim() int { return 1 }

func TestStepDoublingRejectsNonFinite(t *testing.T) {
	sd := NewStepDoubling[float64]()
	_, err := sd.Step(Timed(blowup{}), dynamo.State{1}, 0, 0.01)
	if !errors.Is(err, dynamo.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}
