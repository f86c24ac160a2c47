package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/cvsim/internal/dynamo"
)

const (
	DefaultEps        = 1e-3
	DefaultMaxRetries = 50
	DefaultMinStep    = 1e-9

	safety    = 0.9
	pgrow     = -0.20
	pshrink   = -0.25
	errcon    = 6.0e-4
	growLimit = 4.0
)

// StepDoubling is an adaptive RK4 driver: one step of size h is compared with
// two steps of size h/2, and the half-step result is accepted with a
// Richardson correction when the scaled discrepancy is within Eps.
type StepDoubling[A any] struct {
	Eps        float64
	Scale      dynamo.State
	MaxRetries int
	MinStep    float64

	half *RK4[A]
	full *RK4[A]
}

// Result describes an accepted step.
type Result[A any] struct {
	X       dynamo.State
	Aux     A
	Did     float64
	Next    float64
	Retries int
	Error   float64
}

func NewStepDoubling[A any]() *StepDoubling[A] {
	return &StepDoubling[A]{
		Eps:        DefaultEps,
		MaxRetries: DefaultMaxRetries,
		MinStep:    DefaultMinStep,
		half:       NewRK4[A](),
		full:       NewRK4[A](),
	}
}

func (s *StepDoubling[A]) scale(i int) float64 {
	if i < len(s.Scale) && s.Scale[i] > 0 {
		return s.Scale[i]
	}
	return 1
}

// Step advances x by at most htry. The inputs are never modified.
func (s *StepDoubling[A]) Step(sys Staged[A], x dynamo.State, aux A, htry float64) (Result[A], error) {
	if htry <= 0 || math.IsNaN(htry) {
		return Result[A]{}, fmt.Errorf("step size must be positive, got %g", htry)
	}
	if s.half == nil {
		s.half, s.full = NewRK4[A](), NewRK4[A]()
	}

	h := htry
	for retries := 0; retries <= s.MaxRetries; retries++ {
		if h < s.MinStep {
			return Result[A]{}, fmt.Errorf("h=%g after %d retries: %w", h, retries, dynamo.ErrStepTooSmall)
		}

		hh := 0.5 * h
		xm, am, err := s.half.Step(sys, x, aux, hh)
		if err != nil {
			return Result[A]{}, err
		}
		xh, ah, err := s.half.Step(sys, xm, am, hh)
		if err != nil {
			return Result[A]{}, err
		}
		xf, _, err := s.full.Step(sys, x, aux, h)
		if err != nil {
			return Result[A]{}, err
		}

		delta := xh.Sub(xf)
		scaled := make(dynamo.State, len(delta))
		for i, d := range delta {
			scaled[i] = d / s.scale(i)
		}
		if !scaled.IsValid() {
			return Result[A]{}, fmt.Errorf("h=%g: %w", h, dynamo.ErrInvalidState)
		}

		errmax := scaled.MaxAbs() / s.Eps
		if errmax <= 1.0 {
			next := growLimit * h
			if errmax > errcon {
				next = safety * h * math.Pow(errmax, pgrow)
			}
			for i := range xh {
				xh[i] += delta[i] / 15.0
			}
			return Result[A]{X: xh, Aux: ah, Did: h, Next: next, Retries: retries, Error: errmax}, nil
		}

		h = safety * h * math.Exp(pshrink*math.Log(errmax))
	}

	return Result[A]{}, fmt.Errorf("step doubling gave up after %d retries (h=%g): %w", s.MaxRetries, h, dynamo.ErrNoConvergence)
}
