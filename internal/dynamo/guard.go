package dynamo

import (
	"fmt"
	"math"
)

// Guard wraps the transcendental functions used by the equations and records
// the first evaluation that produced NaN or Inf. The zero value is ready to use.
type Guard struct {
	op  string
	arg float64
	bad bool
}

func (g *Guard) check(op string, arg, v float64) float64 {
	if !g.bad && (math.IsNaN(v) || math.IsInf(v, 0)) {
		g.op, g.arg, g.bad = op, arg, true
	}
	return v
}

func (g *Guard) Sin(x float64) float64  { return g.check("sin", x, math.Sin(x)) }
func (g *Guard) Cos(x float64) float64  { return g.check("cos", x, math.Cos(x)) }
func (g *Guard) Tan(x float64) float64  { return g.check("tan", x, math.Tan(x)) }
func (g *Guard) Atan(x float64) float64 { return g.check("atan", x, math.Atan(x)) }
func (g *Guard) Exp(x float64) float64  { return g.check("exp", x, math.Exp(x)) }
func (g *Guard) Sqrt(x float64) float64 { return g.check("sqrt", x, math.Sqrt(x)) }

// Div returns a/b and flags a zero or non-finite quotient denominator.
func (g *Guard) Div(a, b float64) float64 { return g.check("div", b, a/b) }

// Err reports the first non-finite evaluation, or nil.
func (g *Guard) Err() error {
	if !g.bad {
		return nil
	}
	return fmt.Errorf("%s(%g): %w", g.op, g.arg, ErrNonFinite)
}

func (g *Guard) Reset() { *g = Guard{} }
