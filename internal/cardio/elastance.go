package cardio

import (
	"math"

	"github.com/san-kum/cvsim/internal/dynamo"
)

// activation evaluates the piecewise-cosine elastance of one chamber at time
// t since its onset. Before onset and after 1.5 ts the chamber is relaxed.
func activation(t, ts, cs, cd float64, g *dynamo.Guard) (e, de float64) {
	span := 1/cs - 1/cd
	switch {
	case t <= 0:
		return 1 / cd, 0
	case t <= ts:
		e = 0.5*span*(1-g.Cos(math.Pi*t/ts)) + 1/cd
		de = 0.5 * math.Pi * span * g.Sin(math.Pi*t/ts) / ts
	case t <= 1.5*ts:
		e = 0.5*span*(1+g.Cos(2*math.Pi*(t-ts)/ts)) + 1/cd
		de = -math.Pi * span * g.Sin(2*math.Pi*(t-ts)/ts) / ts
	default:
		e, de = 1/cd, 0
	}
	return e, de
}

// elastance refreshes the instantaneous chamber compliances from the cardiac
// clock. Non-finite activations are recorded in g.
func elastance(s *State, p *Params, g *dynamo.Guard) {
	tm := &s.Time
	chambers := [numChambers]struct {
		t, ts, cs, cd float64
	}{
		rightAtrium:    {tm.Cardiac, tm.AtrialSystole, p[RightAtrialSystolicCompliance], p[RightAtrialDiastolicCompliance]},
		rightVentricle: {tm.Ventricular, tm.VentricularSystole, s.EndSystolic[0], p[RightVentricularDiastolicCompliance]},
		leftAtrium:     {tm.Cardiac, tm.AtrialSystole, p[LeftAtrialSystolicCompliance], p[LeftAtrialDiastolicCompliance]},
		leftVentricle:  {tm.Ventricular, tm.VentricularSystole, s.EndSystolic[1], p[LeftVentricularDiastolicCompliance]},
	}
	for i, c := range chambers {
		e, de := activation(c.t, c.ts, c.cs, c.cd, g)
		s.Compliance[i] = 1 / e
		s.ComplianceRate[i] = -de / (e * e)
	}
}
