package dynamo

import "errors"

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state vector with invalid dimensions or values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrNonFinite indicates a transcendental evaluation produced NaN or Inf.
	ErrNonFinite = errors.New("dynamo: non-finite result in math evaluation")

	// ErrInvalidParameter indicates a parameter edit was rejected.
	ErrInvalidParameter = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnknownParameter indicates a parameter name outside the vocabulary.
	ErrUnknownParameter = errors.New("dynamo: unknown parameter")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrNoConvergence indicates an iteration hit its bound without meeting tolerance.
	ErrNoConvergence = errors.New("dynamo: iteration did not converge")

	// ErrSingularMatrix indicates a pivot below the elimination threshold.
	ErrSingularMatrix = errors.New("dynamo: coefficient matrix is singular")

	// ErrNotInitialized indicates an engine used before initialization.
	ErrNotInitialized = errors.New("dynamo: engine not initialized")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return e.Wrapped.Error()
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
