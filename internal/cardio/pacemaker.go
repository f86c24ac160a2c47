package cardio

import "math"

const (
	// beatThreshold is the heart-rate integral, in beats/min times seconds,
	// that triggers an atrial onset.
	beatThreshold = 60.0
	// refractoryFactor scales the previous ventricular systole into the
	// minimum spacing between contractions.
	refractoryFactor = 1.5
)

// pace advances the cardiac clock by dt with an integral pulse frequency
// modulation pacemaker. The running mean of the instantaneous heart rate
// times the elapsed cycle time is integrated to the threshold; the crossing
// is located by linear interpolation. A crossing commits a beat only outside
// the refractory period of the last ventricular contraction. If the atria may
// fire but the ventricles may not, the ventricular onset is deferred until
// the pending PR interval clears the refractory period.
func pace(s *State, r *Reflex, p *Params, dt float64) {
	tm, nx := &s.Time, &s.Next

	a, aOld := tm.Cardiac, nx.AtrialClock
	v, vNew := tm.Ventricular, nx.VentricularClock
	prOld, tvOld := tm.PR, tm.VentricularSystole
	cum, n := r.Cumulative, float64(r.Steps)

	fOld := cum * a / n
	fNew := (cum + r.HeartRate) * (a + dt) / (n + 1)

	fired := fNew >= beatThreshold
	onset := 0.0
	if fired {
		onset = a + dt
		if fOld <= beatThreshold {
			onset = a + dt*(beatThreshold-fOld)/(fNew-fOld)
		}
		scale := math.Sqrt(onset)
		nx.PR = p[PRInterval] * scale
		nx.AtrialSystole = p[AtrialSystoleInterval] * scale
		nx.VentricularSystole = p[VentricularSystoleInterval] * scale
	}

	refractory := refractoryFactor * tvOld
	switch {
	case fired && a-prOld > refractory:
		a = a + dt - onset
		aOld = a
		v = a - nx.PR
		vNew = v
		tm.PR = nx.PR
		tm.AtrialSystole = nx.AtrialSystole
		tm.VentricularSystole = nx.VentricularSystole
		s.EndSystolic = r.EndSystolic
		r.BeatRate = beatThreshold / onset
		cum, n = r.BeatRate, 1
	case fired && a-prOld+nx.PR > refractory:
		a = a + dt - onset
		vNew = a - nx.PR
		aOld += dt
		v += dt
		tm.AtrialSystole = nx.AtrialSystole
		r.BeatRate = beatThreshold / onset
		cum, n = r.BeatRate, 1
	default:
		aOld += dt
		a += dt
		vNew += dt
		if aOld-prOld > refractory {
			v = vNew
			tm.PR = nx.PR
			tm.VentricularSystole = nx.VentricularSystole
			s.EndSystolic = r.EndSystolic
			aOld = a
		} else {
			v += dt
		}
		cum += r.HeartRate
		n++
	}

	nx.AtrialClock = aOld
	nx.VentricularClock = vNew
	tm.Ventricular = v
	tm.Modified = tm.Absolute + dt
	tm.Cardiac = a
	r.Cumulative = cum
	r.Steps = int(n)
}
