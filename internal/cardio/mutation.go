package cardio

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/cvsim/internal/dynamo"
)

// ValidationError reports a rejected parameter or pressure edit. The store
// and the state are unchanged when it is returned.
type ValidationError struct {
	Param  string
	Value  float64
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s=%g rejected: %s", e.Param, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return dynamo.ErrInvalidParameter }

func reject(name string, v float64, format string, args ...any) error {
	return &ValidationError{Param: name, Value: v, Reason: fmt.Sprintf(format, args...)}
}

// systolicPairs maps each chamber compliance onto its counterpart.
var systolicPairs = map[Param]Param{
	RightAtrialSystolicCompliance:      RightAtrialDiastolicCompliance,
	RightVentricularSystolicCompliance: RightVentricularDiastolicCompliance,
	LeftAtrialSystolicCompliance:       LeftAtrialDiastolicCompliance,
	LeftVentricularSystolicCompliance:  LeftVentricularDiastolicCompliance,
}

func diastolicPair(p Param) (Param, bool) {
	for s, d := range systolicPairs {
		if d == p {
			return s, true
		}
	}
	return 0, false
}

// validate checks v as the new value of id against the rest of the set.
func (p *Params) validate(id Param, v float64) error {
	name := id.String()
	if !id.valid() {
		return fmt.Errorf("%s: %w", name, dynamo.ErrUnknownParameter)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return reject(name, v, "value must be finite")
	}

	switch id.Kind() {
	case KindCompliance:
		if v <= 0 {
			return reject(name, v, "compliance must be positive")
		}
		if d, ok := systolicPairs[id]; ok && v >= p[d] {
			return reject(name, v, "systolic compliance must be below diastolic %g", p[d])
		}
		if s, ok := diastolicPair(id); ok && v <= p[s] {
			return reject(name, v, "diastolic compliance must exceed systolic %g", p[s])
		}
	case KindResistance:
		if v <= 0 {
			return reject(name, v, "resistance must be positive")
		}
	case KindVolume:
		switch id {
		case SplanchnicMaxVolume, LegMaxVolume, AbdominalMaxVolume:
			if v <= 0 {
				return reject(name, v, "maximal volume must be positive")
			}
		default:
			if v < 0 {
				return reject(name, v, "zero-pressure volume must not be negative")
			}
			if total := p.TotalZeroVolume() - p[id] + v; total >= p[TotalBloodVolume] {
				return reject(name, v, "zero-pressure volumes %g would reach total blood volume %g", total, p[TotalBloodVolume])
			}
		}
	case KindHeight:
		if v < 0 {
			return reject(name, v, "height must not be negative")
		}
	case KindSystem:
		switch id {
		case TotalBloodVolume:
			if v <= p.TotalZeroVolume() {
				return reject(name, v, "total blood volume must exceed zero-pressure volumes %g", p.TotalZeroVolume())
			}
		case NominalHeartRate:
			if v <= 0 {
				return reject(name, v, "heart rate must be positive")
			}
		}
	case KindTiming, KindAnthropometric:
		if v <= 0 {
			return reject(name, v, "value must be positive")
		}
	case KindReflexGain:
		if (id == ABRScale || id == CPRScale) && v <= 0 {
			return reject(name, v, "scale must be positive")
		}
	case KindKernel:
		for _, bp := range kernelBreakpoints {
			t := [3]float64{p[bp[0]], p[bp[1]], p[bp[2]]}
			hit := false
			for i, q := range bp {
				if q == id {
					t[i], hit = v, true
				}
			}
			if !hit {
				continue
			}
			if t[0] < 0 || t[0] > t[1] || t[1] > t[2] || t[2] > historyLength*binWidth {
				return reject(name, v, "breakpoints must satisfy 0 <= delay <= peak <= end <= %g", historyLength*binWidth)
			}
		}
	case KindTilt:
		switch id {
		case TiltAngle:
			if v < 0 || v > 90 {
				return reject(name, v, "tilt angle must be within [0, 90] degrees")
			}
		case TiltTime:
			if v <= 0 {
				return reject(name, v, "time to full tilt must be positive")
			}
		case TiltOnset, TiltDuration, TiltMaxVolumeLoss:
			if v < 0 {
				return reject(name, v, "value must not be negative")
			}
		}
	}
	return nil
}

func (e *Engine) rejected(err error) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		e.log.WithFields(logrus.Fields{
			"param":  verr.Param,
			"value":  verr.Value,
			"reason": verr.Reason,
		}).Warn("mutation rejected")
	}
	return err
}

// UpdatePressure overwrites the pressure of a compartment.
func (e *Engine) UpdatePressure(c Compartment, v float64) error {
	if !c.HasVolume() {
		return e.rejected(reject(c.String(), v, "not a compartment pressure"))
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return e.rejected(reject(c.String(), v, "value must be finite"))
	}
	e.state.Pressure[c] = v
	e.refresh()
	return nil
}

// UpdateComplianceInsideThorax changes the compliance of a thoracic
// compartment, keeping its volume by scaling the pressure relative to the
// intrathoracic pressure.
func (e *Engine) UpdateComplianceInsideThorax(p Param, v float64) error {
	return e.updateCompliance(p, v, true)
}

// UpdateComplianceOutsideThorax changes the compliance of a compartment
// outside the chest, keeping its volume by scaling the transmural pressure.
func (e *Engine) UpdateComplianceOutsideThorax(p Param, v float64) error {
	return e.updateCompliance(p, v, false)
}

func (e *Engine) updateCompliance(id Param, v float64, thoracic bool) error {
	c, ok := compartmentOf(id)
	if !ok || id.Kind() != KindCompliance {
		return e.rejected(reject(id.String(), v, "not a compartment compliance"))
	}
	if c.Thoracic() != thoracic {
		where := "outside"
		if c.Thoracic() {
			where = "inside"
		}
		return e.rejected(reject(id.String(), v, "%s lies %s the thorax", c, where))
	}
	if err := e.params.validate(id, v); err != nil {
		return e.rejected(err)
	}

	s := &e.state
	bias := surrounding(s, c)
	if k, ok := chamberIndex(c); ok {
		before := s.Compliance[k]
		delta := v - e.params[id]
		e.params[id] = v
		switch id {
		case RightVentricularSystolicCompliance:
			s.EndSystolic[0] = math.Max(s.EndSystolic[0]+delta, minRightEndSystolic)
			e.reflex.EndSystolic[0] = math.Max(e.reflex.EndSystolic[0]+delta, minRightEndSystolic)
		case LeftVentricularSystolicCompliance:
			s.EndSystolic[1] = math.Max(s.EndSystolic[1]+delta, minLeftEndSystolic)
			e.reflex.EndSystolic[1] = math.Max(e.reflex.EndSystolic[1]+delta, minLeftEndSystolic)
		}
		elastance(s, &e.params, &e.guard)
		s.Pressure[c] = bias + (s.Pressure[c]-bias)*before/s.Compliance[k]
	} else {
		old := e.params[id]
		e.params[id] = v
		s.Pressure[c] = bias + (s.Pressure[c]-bias)*old/v
	}
	e.refresh()
	return nil
}

// UpdateZeroPressureVolume changes the zero-pressure filling volume of a
// compartment at constant volume.
func (e *Engine) UpdateZeroPressureVolume(id Param, v float64) error {
	c, ok := compartmentOf(id)
	if !ok || id.Kind() != KindVolume {
		return e.rejected(reject(id.String(), v, "not a zero-pressure filling volume"))
	}
	if err := e.params.validate(id, v); err != nil {
		return e.rejected(err)
	}

	s := &e.state
	old := e.params[id]
	if b, ok := nonlinear(c); ok {
		x := s.Pressure[c] - surrounding(s, c)
		vmax := e.params[b.vmax]
		if math.Abs(stressedVolume(x, e.params[compliances[c]], vmax)+old-v) >= vmax {
			return e.rejected(reject(id.String(), v, "stressed volume of %s would leave (-%g, %g)", c, vmax, vmax))
		}
	}

	var g dynamo.Guard
	shiftZeroVolume(s, &e.params, c, old, v, &g)
	if err := g.Err(); err != nil {
		return e.rejected(reject(id.String(), v, "%v", err))
	}
	e.params[id] = v
	if k, ok := venousBed(c); ok {
		e.reflex.Volume[k] += v - old
	}
	e.refresh()
	return nil
}

// UpdateIntrathoracicPressure changes the pressure surrounding the thoracic
// compartments, shifting each of them by the same amount.
func (e *Engine) UpdateIntrathoracicPressure(v float64) error {
	if err := e.params.validate(IntrathoracicPressure, v); err != nil {
		return e.rejected(err)
	}
	delta := v - e.params[IntrathoracicPressure]
	e.params[IntrathoracicPressure] = v
	e.state.Pressure[Intrathoracic] += delta
	for c := 0; c < NumCompartments; c++ {
		if Compartment(c).Thoracic() {
			e.state.Pressure[c] += delta
		}
	}
	e.refresh()
	return nil
}

// UpdateTotalBloodVolume adds or removes blood through the splanchnic venous
// bed, the largest capacitance of the circulation.
func (e *Engine) UpdateTotalBloodVolume(v float64) error {
	if err := e.params.validate(TotalBloodVolume, v); err != nil {
		return e.rejected(err)
	}
	s, p := &e.state, &e.params
	c := SplanchnicVeins
	bias := surrounding(s, c)
	vmax := p[SplanchnicMaxVolume]
	cp := p[compliances[c]]

	target := stressedVolume(s.Pressure[c]-bias, cp, vmax) + v - p[TotalBloodVolume]
	if math.Abs(target) >= vmax {
		return e.rejected(reject(TotalBloodVolume.String(), v, "splanchnic stressed volume %g outside (-%g, %g)", target, vmax, vmax))
	}
	var g dynamo.Guard
	pressure := bias + transmuralPressure(target, cp, vmax, &g)
	if err := g.Err(); err != nil {
		return e.rejected(reject(TotalBloodVolume.String(), v, "%v", err))
	}

	e.log.WithFields(logrus.Fields{
		"from": p[TotalBloodVolume],
		"to":   v,
	}).Info("total blood volume changed")
	p[TotalBloodVolume] = v
	s.Pressure[c] = pressure
	e.refresh()
	return nil
}

// UpdateParameter sets a parameter by name, routing compliance, volume,
// intrathoracic pressure and blood volume edits through the volume
// preserving updates.
func (e *Engine) UpdateParameter(name string, v float64) error {
	id, err := ParseParam(name)
	if err != nil {
		return err
	}

	if c, ok := compartmentOf(id); ok {
		switch id.Kind() {
		case KindCompliance:
			if c.Thoracic() {
				return e.UpdateComplianceInsideThorax(id, v)
			}
			return e.UpdateComplianceOutsideThorax(id, v)
		case KindVolume:
			return e.UpdateZeroPressureVolume(id, v)
		}
	}
	switch id {
	case IntrathoracicPressure:
		return e.UpdateIntrathoracicPressure(v)
	case TotalBloodVolume:
		return e.UpdateTotalBloodVolume(v)
	}

	if err := e.params.validate(id, v); err != nil {
		return e.rejected(err)
	}
	e.params[id] = v
	if isKernelParam(id) && e.ctrl != nil {
		e.ctrl.kernels = BuildKernels(&e.params)
	}
	e.log.WithFields(logrus.Fields{"param": id.String(), "value": v}).Debug("parameter updated")
	e.refresh()
	return nil
}
