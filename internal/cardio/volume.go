package cardio

import (
	"math"

	"github.com/san-kum/cvsim/internal/dynamo"
)

// nonlinearBed describes a venous compartment with an arctangent
// pressure-volume law saturating at vmax.
type nonlinearBed struct {
	c    Compartment
	vmax Param
	leak int
}

var nonlinearBeds = [...]nonlinearBed{
	{SplanchnicVeins, SplanchnicMaxVolume, 0},
	{LegVeins, LegMaxVolume, 1},
	{AbdominalVeins, AbdominalMaxVolume, 2},
}

func nonlinear(c Compartment) (nonlinearBed, bool) {
	for _, b := range nonlinearBeds {
		if b.c == c {
			return b, true
		}
	}
	return nonlinearBed{}, false
}

// stressedVolume is the arctangent law V(x) for a transmural pressure x.
func stressedVolume(x, c, vmax float64) float64 {
	return 2 * vmax / math.Pi * math.Atan(math.Pi*c/(2*vmax)*x)
}

// effectiveCompliance is dV/dx of the arctangent law.
func effectiveCompliance(x, c, vmax float64) float64 {
	k := math.Pi * c / (2 * vmax) * x
	return c / (1 + k*k)
}

// transmuralPressure inverts the arctangent law. Volumes at or beyond vmax
// have no finite pressure and are reported through the guard.
func transmuralPressure(v, c, vmax float64, g *dynamo.Guard) float64 {
	if math.Abs(v) >= vmax {
		return g.Div(v, 0)
	}
	return g.Tan(math.Pi*v/(2*vmax)) * 2 * vmax / (math.Pi * c)
}

// surrounding returns the external pressure of a compartment, zero for the
// compartments referenced to atmosphere.
func surrounding(s *State, c Compartment) float64 {
	if ref, ok := c.Surrounding(); ok {
		return s.Pressure[ref]
	}
	return 0
}

// compliance returns the compliance seen by the pressure derivative of c:
// the instantaneous value for chambers and the effective value for the
// nonlinear beds.
func compliance(s *State, p *Params, c Compartment) float64 {
	if i, ok := chamberIndex(c); ok {
		return s.Compliance[i]
	}
	if b, ok := nonlinear(c); ok {
		return effectiveCompliance(s.Pressure[c]-surrounding(s, c), p[compliances[c]], p[b.vmax])
	}
	return p[compliances[c]]
}

// zeroVolume returns the zero-pressure filling volume in effect for c. The
// reflex-controlled venous beds use the reflex state.
func zeroVolume(p *Params, r *Reflex, c Compartment) float64 {
	if k, ok := venousBed(c); ok {
		return r.Volume[k]
	}
	return p[zeroVolumes[c]]
}

// compartmentVolume evaluates the pressure-volume law of c.
func compartmentVolume(s *State, p *Params, r *Reflex, c Compartment) float64 {
	x := s.Pressure[c] - surrounding(s, c)
	if i, ok := chamberIndex(c); ok {
		return x*s.Compliance[i] + zeroVolume(p, r, c)
	}
	if b, ok := nonlinear(c); ok {
		return stressedVolume(x, p[compliances[c]], p[b.vmax]) + zeroVolume(p, r, c)
	}
	return x*p[compliances[c]] + zeroVolume(p, r, c)
}

// volumes refreshes every compartment volume.
func volumes(s *State, p *Params, r *Reflex) {
	for c := 0; c < NumCompartments; c++ {
		s.Volume[c] = compartmentVolume(s, p, r, Compartment(c))
	}
}

// volumeResidual is the blood unaccounted for by the compartments and the
// tilt loss.
func volumeResidual(s *State, p *Params) float64 {
	return p[TotalBloodVolume] - s.Volume.Total() - s.Tilt.VolumeLoss
}
