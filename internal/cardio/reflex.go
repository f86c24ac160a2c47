package cardio

import (
	"math"

	"github.com/san-kum/cvsim/internal/dynamo"
)

// controller implements the arterial baroreflex and the cardiopulmonary
// reflex. Sensed pressures are averaged over bins, passed through a
// saturating transfer and stored in histories that are convolved with the
// pathway kernels once per bin. Between bins the responses are linearly
// interpolated.
type controller struct {
	kernels Kernels

	binTime        float64
	abpSum, rapSum float64
	abpBins        [binsPerAverage]float64
	rapBins        [binsPerAverage]float64
	binTop         int

	abpHist, rapHist [historyLength]float64
	histTop          int

	prev, curr [NumKernels]float64
	// Response is the interpolated output of each pathway after gating.
	Response [NumKernels]float64
}

func newController(p *Params) *controller {
	return &controller{kernels: BuildKernels(p)}
}

// reset clears the accumulators, histories and responses. Kernels are kept.
func (c *controller) reset() {
	*c = controller{kernels: c.kernels}
}

func transfer(avg, set, scale float64, g *dynamo.Guard) float64 {
	return g.Atan((avg-set)/scale) * scale
}

// sample feeds dt seconds of sensed pressure into the bins, closing as many
// bins as the interval spans.
func (c *controller) sample(s *State, p *Params, dt float64, g *dynamo.Guard) {
	abp := s.Pressure[AscendingAorta] + s.Tilt.SensedOffset
	rap := s.Pressure[RightAtrium] - s.Pressure[Intrathoracic]

	for c.binTime+dt >= binWidth {
		part := binWidth - c.binTime
		c.abpSum += abp * part
		c.rapSum += rap * part
		dt -= part
		c.closeBin(s, p, g)
	}
	c.abpSum += abp * dt
	c.rapSum += rap * dt
	c.binTime += dt
}

func (c *controller) closeBin(s *State, p *Params, g *dynamo.Guard) {
	c.binTop = (c.binTop + binsPerAverage - 1) % binsPerAverage
	c.abpBins[c.binTop] = c.abpSum / binWidth
	c.rapBins[c.binTop] = c.rapSum / binWidth
	c.abpSum, c.rapSum, c.binTime = 0, 0, 0

	abpAvg, rapAvg := 0.0, 0.0
	for i := 0; i < binsPerAverage; i++ {
		abpAvg += c.abpBins[i]
		rapAvg += c.rapBins[i]
	}
	abpAvg /= binsPerAverage
	rapAvg /= binsPerAverage

	sensed := transfer(abpAvg, p[ABRSetPoint], p[ABRScale], g)
	atrial := transfer(rapAvg, p[CPRSetPoint], p[CPRScale], g)
	s.Pressure[SensedPressure] = sensed

	c.histTop = (c.histTop + historyLength - 1) % historyLength
	c.abpHist[c.histTop] = sensed
	c.rapHist[c.histTop] = atrial

	if s.Time.Absolute < reflexWarmup {
		return
	}
	c.prev = c.curr
	for k := Parasympathetic; k <= AlphaVenous; k++ {
		c.curr[k] = c.kernels[k].convolve(&c.abpHist, c.histTop)
	}
	for k := CardiopulmonaryArterial; k <= CardiopulmonaryVenous; k++ {
		c.curr[k] = c.kernels[k].convolve(&c.rapHist, c.histTop)
	}
}

// interpolate sets Response from the last two convolutions and the fraction
// of the current bin elapsed, zeroing the pathways of a disabled reflex.
func (c *controller) interpolate(f Flags) {
	frac := c.binTime / binWidth
	for k := range c.Response {
		c.Response[k] = (c.curr[k]-c.prev[k])*frac + c.prev[k]
	}
	if !f.ArterialBaroreflex {
		for k := Parasympathetic; k <= AlphaVenous; k++ {
			c.Response[k] = 0
		}
	}
	if !f.Cardiopulmonary {
		c.Response[CardiopulmonaryArterial] = 0
		c.Response[CardiopulmonaryVenous] = 0
	}
}

var (
	abrResistanceGain = [numBeds]Param{ABRUpperBodyResistanceGain, ABRRenalResistanceGain, ABRSplanchnicResistanceGain, ABRLegResistanceGain}
	cprResistanceGain = [numBeds]Param{CPRUpperBodyResistanceGain, CPRRenalResistanceGain, CPRSplanchnicResistanceGain, CPRLegResistanceGain}
	abrVenousGain     = [numBeds]Param{ABRUpperBodyVenousGain, ABRRenalVenousGain, ABRSplanchnicVenousGain, ABRLegVenousGain}
	cprVenousGain     = [numBeds]Param{CPRUpperBodyVenousGain, CPRRenalVenousGain, CPRSplanchnicVenousGain, CPRLegVenousGain}
)

const (
	minRightEndSystolic = 0.01
	minLeftEndSystolic  = 0.3
)

// effect maps the pathway responses onto the effectors. Venous volume
// changes are applied at constant compartment volume, so the pressures of
// the venous beds move instead.
func (c *controller) effect(s *State, r *Reflex, p *Params, g *dynamo.Guard) {
	resp := &c.Response

	r.HeartRate = 60 / (60/p[NominalHeartRate] +
		p[ABRHeartRateSympatheticGain]*resp[BetaSympathetic] +
		p[ABRHeartRateParasympatheticGain]*resp[Parasympathetic])

	r.EndSystolic[0] = math.Max(p[RightVentricularSystolicCompliance]+p[ABRRightContractilityGain]*resp[BetaSympathetic], minRightEndSystolic)
	r.EndSystolic[1] = math.Max(p[LeftVentricularSystolicCompliance]+p[ABRLeftContractilityGain]*resp[BetaSympathetic], minLeftEndSystolic)

	for k := 0; k < numBeds; k++ {
		r.Resistance[k] = p[bedMicroResistance[k]] +
			p[abrResistanceGain[k]]*resp[AlphaArterial] +
			p[cprResistanceGain[k]]*resp[CardiopulmonaryArterial]

		old := r.Volume[k]
		r.Volume[k] = p[bedVenousVolume[k]] +
			p[abrVenousGain[k]]*resp[AlphaVenous] +
			p[cprVenousGain[k]]*resp[CardiopulmonaryVenous]
		shiftZeroVolume(s, p, bedVein[k], old, r.Volume[k], g)
	}
}

// shiftZeroVolume moves the pressure of c so that its volume is unchanged
// when the zero-pressure filling volume goes from old to next.
func shiftZeroVolume(s *State, p *Params, c Compartment, old, next float64, g *dynamo.Guard) {
	if old == next {
		return
	}
	cp := p[compliances[c]]
	if b, ok := nonlinear(c); ok {
		bias := surrounding(s, c)
		vmax := p[b.vmax]
		v := stressedVolume(s.Pressure[c]-bias, cp, vmax) + old - next
		s.Pressure[c] = bias + transmuralPressure(v, cp, vmax, g)
		return
	}
	if i, ok := chamberIndex(c); ok {
		cp = s.Compliance[i]
	}
	s.Pressure[c] += (old - next) / cp
}

// update runs one reflex step after an accepted integration step of size dt.
func (c *controller) update(s *State, r *Reflex, p *Params, dt float64, f Flags, g *dynamo.Guard) {
	c.sample(s, p, dt, g)
	c.interpolate(f)
	c.effect(s, r, p, g)
}
