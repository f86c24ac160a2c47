package dynamo

import "math"

// State is a flat vector of integrated quantities.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Sub returns s - other. Components missing from other are taken as zero.
func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// MaxAbs returns the largest absolute component.
func (s State) MaxAbs() float64 {
	m := 0.0
	for _, v := range s {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

// System is a plain time-dependent ODE dx/dt = f(x, t).
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}
