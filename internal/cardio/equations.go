package cardio

import "github.com/san-kum/cvsim/internal/dynamo"

// diode conducts only while the driving pressure is strictly positive.
func diode(dp, r float64) float64 {
	if dp > 0 {
		return dp / r
	}
	return 0
}

// starling is the collapsible outflow of the upper body veins: the
// downstream pressure is the larger of the superior vena cava pressure and
// the intrathoracic pressure.
func starling(up, down, ith, grav, r float64) float64 {
	switch {
	case up+grav > down && down > ith:
		return (up - down + grav) / r
	case up+grav > ith && ith > down:
		return (up - ith + grav) / r
	}
	return 0
}

// flows evaluates every segment flow from the current pressures.
func flows(s *State, p *Params, r *Reflex) {
	P, g, q := &s.Pressure, &s.Tilt.Gravity, &s.Flow
	R := func(seg Segment) float64 { return p[resistances[seg]] }

	q[AorticValve] = diode(P[LeftVentricle]-P[AscendingAorta]-g[0], R(AorticValve))
	q[AscendingToBrachiocephalic] = (P[AscendingAorta] - P[Brachiocephalic] - g[1]) / R(AscendingToBrachiocephalic)
	q[BrachiocephalicToUpperBody] = (P[Brachiocephalic] - P[UpperBodyArteries] - g[2]) / R(BrachiocephalicToUpperBody)
	q[UpperBodyMicrocirculation] = (P[UpperBodyArteries] - P[UpperBodyVeins]) / r.Resistance[bedUpperBody]
	q[UpperBodyOutflow] = starling(P[UpperBodyVeins], P[SuperiorVenaCava], P[Intrathoracic], g[3], R(UpperBodyOutflow))
	q[SuperiorVenaCavaOutflow] = (P[SuperiorVenaCava] - P[RightAtrium] + g[4]) / R(SuperiorVenaCavaOutflow)

	q[AscendingToThoracic] = (P[AscendingAorta] - P[ThoracicAorta] + g[5]) / R(AscendingToThoracic)
	q[ThoracicToAbdominal] = (P[ThoracicAorta] - P[AbdominalAorta] + g[6]) / R(ThoracicToAbdominal)
	q[AbdominalToRenal] = (P[AbdominalAorta] - P[RenalArteries] + g[7]) / R(AbdominalToRenal)
	q[RenalMicrocirculation] = (P[RenalArteries] - P[RenalVeins]) / r.Resistance[bedRenal]
	q[RenalOutflow] = (P[RenalVeins] - P[AbdominalVeins] - g[8]) / R(RenalOutflow)
	q[AbdominalToSplanchnic] = (P[AbdominalAorta] - P[SplanchnicArteries] + g[9]) / R(AbdominalToSplanchnic)
	q[SplanchnicMicrocirculation] = (P[SplanchnicArteries] - P[SplanchnicVeins]) / r.Resistance[bedSplanchnic]
	q[SplanchnicOutflow] = (P[SplanchnicVeins] - P[AbdominalVeins] - g[10]) / R(SplanchnicOutflow)
	q[AbdominalToLeg] = (P[AbdominalAorta] - P[LegArteries] + g[11]) / R(AbdominalToLeg)
	q[LegMicrocirculation] = (P[LegArteries] - P[LegVeins]) / r.Resistance[bedLeg]
	q[LegOutflow] = diode(P[LegVeins]-P[AbdominalVeins]-g[12], R(LegOutflow))
	q[AbdominalVenousOutflow] = (P[AbdominalVeins] - P[InferiorVenaCava] - g[13]) / R(AbdominalVenousOutflow)
	q[InferiorVenaCavaOutflow] = (P[InferiorVenaCava] - P[RightAtrium] - g[14]) / R(InferiorVenaCavaOutflow)

	q[TricuspidValve] = diode(P[RightAtrium]-P[RightVentricle], R(TricuspidValve))
	q[PulmonicValve] = diode(P[RightVentricle]-P[PulmonaryArteries], R(PulmonicValve))
	q[PulmonaryMicrocirculation] = (P[PulmonaryArteries] - P[PulmonaryVeins]) / R(PulmonaryMicrocirculation)
	q[PulmonaryVenousOutflow] = (P[PulmonaryVeins] - P[LeftAtrium]) / R(PulmonaryVenousOutflow)
	q[MitralValve] = diode(P[LeftAtrium]-P[LeftVentricle], R(MitralValve))
}

// netInflow sums the segment flows entering minus leaving each compartment,
// less the tilt leaks.
func netInflow(s *State) [NumCompartments]float64 {
	var net [NumCompartments]float64
	for k, seg := range segments {
		net[seg.to] += s.Flow[k]
		net[seg.from] -= s.Flow[k]
	}
	for _, b := range nonlinearBeds {
		net[b.c] -= s.Tilt.Leak[b.leak]
	}
	return net
}

// derivatives evaluates dP/dt for every compartment. The bias slots carry
// their own derivatives; only the intrathoracic one is ever nonzero.
func derivatives(s *State, p *Params) {
	net := netInflow(s)
	for i := 0; i < NumCompartments; i++ {
		c := Compartment(i)
		d := net[c]
		if k, ok := chamberIndex(c); ok {
			d += (s.Pressure[Intrathoracic] - s.Pressure[c]) * s.ComplianceRate[k]
		}
		d /= compliance(s, p, c)
		if ref, ok := c.Surrounding(); ok {
			d += s.Derivative[ref]
		}
		s.Derivative[c] = d
	}
	s.Derivative[AbdominalBias] = 0
	s.Derivative[LegBias] = 0
	s.Derivative[SensedPressure] = 0
}

// evaluate runs the tilt generator, the flows and the pressure derivatives
// for the current pressures and timing.
func evaluate(s *State, p *Params, r *Reflex, f Flags, g *dynamo.Guard) {
	tilt(s, p, f, g)
	flows(s, p, r)
	derivatives(s, p)
}
