package cardio

import (
	"math"

	"github.com/san-kum/cvsim/internal/dynamo"
)

const (
	// gravityScale converts cm of blood column at full tilt into mmHg.
	gravityScale = 0.738
	// tiltLeakTimeConstant governs the transcapillary volume loss, s.
	tiltLeakTimeConstant = 276.0
	// tiltThoracicShift is the intrathoracic pressure change at 90 degrees, mmHg.
	tiltThoracicShift = -3.5
	// tiltReferenceAngle is the angle at which TiltMaxVolumeLoss is reached.
	tiltReferenceAngle = 85.0
)

// Gravity slots of the vessel segments, one per height parameter.
var gravityHeights = [15]Param{
	AscendingAortaHeight,
	BrachiocephalicHeight,
	UpperBodyArteriesHeight,
	UpperBodyVeinsHeight,
	SuperiorVenaCavaHeight,
	ThoracicAortaHeight,
	AbdominalAortaHeight,
	RenalArteriesHeight,
	RenalVeinsHeight,
	SplanchnicArteriesHeight,
	SplanchnicVeinsHeight,
	LegArteriesHeight,
	LegVeinsHeight,
	AbdominalVeinsHeight,
	InferiorVenaCavaHeight,
}

// Fractions of the loss flow leaking out of the splanchnic, leg and
// abdominal venous beds.
var leakShare = [3]float64{7.0 / 63.0, 40.0 / 63.0, 16.0 / 63.0}

// tiltWindow returns the onset, the start of tilt-back and the tilt-in time.
func tiltWindow(p *Params, f Flags) (start, stop, ramp float64) {
	start, ramp = p[TiltOnset], p[TiltTime]
	stop = f.TiltStop
	if stop <= 0 {
		stop = start + ramp + p[TiltDuration]
	}
	if stop < start+ramp {
		stop = start + ramp
	}
	return start, stop, ramp
}

// tilt computes the gravitational offsets, leak flows and intrathoracic
// pressure for the evaluation time. With the maneuver off, or before onset,
// the perturbation is zero and the intrathoracic pressure is left alone.
func tilt(s *State, p *Params, f Flags, g *dynamo.Guard) {
	t := s.Time.Modified
	start, stop, ramp := tiltWindow(p, f)
	if !f.Tilt || t < start {
		s.Tilt = Tilt{}
		s.Derivative[Intrathoracic] = 0
		return
	}

	alpha := p[TiltAngle] * math.Pi / 180
	tau := tiltLeakTimeConstant
	hold := stop - start - ramp
	sinAlpha := g.Sin(alpha)
	shift := tiltThoracicShift / gravityScale * sinAlpha
	qNot := p[TiltMaxVolumeLoss] / ramp * sinAlpha / math.Sin(tiltReferenceAngle*math.Pi/180)
	rampLoss := 1 - g.Exp(-ramp/tau)

	var angle, grav, gravRate, qLoss, vLoss float64
	switch {
	case t <= start+ramp:
		tt := t - start
		angle = alpha * (1 - g.Cos(math.Pi*tt/ramp)) / 2
		grav = gravityScale * g.Sin(angle)
		gravRate = gravityScale * g.Cos(angle) * alpha / 2 * g.Sin(math.Pi*tt/ramp) * math.Pi / ramp
		qLoss = qNot * (1 - g.Exp(-tt/tau))
		vLoss = qNot * (tt - tau*(1-g.Exp(-tt/tau)))
	case t <= stop:
		tt := t - start - ramp
		angle = alpha
		grav = gravityScale * sinAlpha
		decay := g.Exp(-tt / tau)
		qLoss = qNot * rampLoss * decay
		vLoss = qNot * ramp * (1 - tau*rampLoss*decay/ramp)
	case t <= stop+ramp:
		tb := t - stop
		phase := math.Pi * (1 - tb/ramp)
		angle = alpha * (1 - g.Cos(phase)) / 2
		grav = gravityScale * g.Sin(angle)
		gravRate = -gravityScale * g.Cos(angle) * alpha / 2 * g.Sin(phase) * math.Pi / ramp
		carry := 1 + rampLoss*g.Exp(-hold/tau)
		decay := g.Exp(-tb / tau)
		qLoss = qNot*carry*decay - qNot
		vLoss = carry*(1-decay)*qNot*tau - qNot*tau*rampLoss*g.Exp(-hold/tau) + qNot*ramp*(1-tb/ramp)
	default:
		ts := t - stop - ramp
		residual := rampLoss * g.Exp(-ts/tau) * (1 - g.Exp(-(hold+ramp)/tau))
		qLoss = -qNot * residual
		vLoss = qNot * tau * residual
	}

	for i, h := range gravityHeights {
		div := 2.0
		switch i {
		case 6, 11, 12, 13:
			div = 3.0
		}
		s.Tilt.Gravity[i] = p[h] / div * grav
	}
	for i, share := range leakShare {
		s.Tilt.Leak[i] = share * qLoss
	}
	s.Tilt.SensedOffset = p[SensedPressureOffset] * grav
	s.Tilt.VolumeLoss = vLoss
	s.Tilt.Angle = angle * 180 / math.Pi
	s.Pressure[Intrathoracic] = p[IntrathoracicPressure] + shift*grav
	s.Derivative[Intrathoracic] = shift * gravRate
}
