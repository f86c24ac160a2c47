package integrators

import "github.com/san-kum/cvsim/internal/dynamo"

// Staged is an ODE whose right-hand side depends on an auxiliary context that
// advances with time (cardiac timing, reflex bookkeeping). Derive must treat aux
// as read-only; Advance returns a new context and must not alias its input.
type Staged[A any] interface {
	Derive(x dynamo.State, aux A) (dynamo.State, error)
	Advance(aux A, h float64) A
}

// Timed adapts a plain System to Staged using time as the context.
func Timed(sys dynamo.System) Staged[float64] {
	return timed{sys: sys}
}

type timed struct {
	sys dynamo.System
}

func (t timed) Derive(x dynamo.State, tm float64) (dynamo.State, error) {
	return t.sys.Derive(x, tm), nil
}

func (t timed) Advance(tm, h float64) float64 { return tm + h }

type RK4[A any] struct {
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4[A any]() *RK4[A] {
	return &RK4[A]{}
}

func (r *RK4[A]) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

// Step takes one classic RK4 step of size dt. The midpoint stages see
// Advance(aux, dt/2) and the last stage sees Advance(aux, dt), which is also
// returned as the context at the end of the step.
func (r *RK4[A]) Step(sys Staged[A], x dynamo.State, aux A, dt float64) (dynamo.State, A, error) {
	n := len(x)
	r.ensureScratch(n)

	k1, err := sys.Derive(x, aux)
	if err != nil {
		return nil, aux, err
	}
	copy(r.k1, k1)

	mid := sys.Advance(aux, dt*0.5)
	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	k2, err := sys.Derive(r.scratch, mid)
	if err != nil {
		return nil, aux, err
	}
	copy(r.k2, k2)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	k3, err := sys.Derive(r.scratch, mid)
	if err != nil {
		return nil, aux, err
	}
	copy(r.k3, k3)

	end := sys.Advance(aux, dt)
	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	k4, err := sys.Derive(r.scratch, end)
	if err != nil {
		return nil, aux, err
	}
	copy(r.k4, k4)

	result := make(dynamo.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}

	return result, end, nil
}
