package metrics

import (
	"math"

	"github.com/san-kum/cvsim/internal/cardio"
	"github.com/san-kum/cvsim/internal/sim"
)

const (
	aorticPressure = "pressure.ascending_aorta"
	lvPressure     = "pressure.left_ventricle"
	aorticFlow     = "flow.aortic_valve"
	heartRate      = "heart_rate"

	// mlPerSecondToLitresPerMinute converts a mean flow into cardiac output.
	mlPerSecondToLitresPerMinute = 0.06
)

// Mean averages one series over every recorded point, times a scale.
type Mean struct {
	name   string
	series string
	scale  float64
	sum    float64
	n      int
}

func NewMean(name, series string, scale float64) *Mean {
	return &Mean{name: name, series: series, scale: scale}
}

func (m *Mean) Name() string { return m.name }

func (m *Mean) Observe(s *cardio.Sample) {
	v, err := s.Series(m.series)
	if err != nil {
		return
	}
	for _, x := range v {
		m.sum += x
	}
	m.n += len(v)
}

func (m *Mean) Value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.scale * m.sum / float64(m.n)
}

func (m *Mean) Reset() {
	m.sum = 0
	m.n = 0
}

// Extreme tracks the maximum of a series, or the minimum when low is set.
type Extreme struct {
	name   string
	series string
	low    bool
	value  float64
	seen   bool
}

func NewPeak(name, series string) *Extreme {
	return &Extreme{name: name, series: series}
}

func NewTrough(name, series string) *Extreme {
	return &Extreme{name: name, series: series, low: true}
}

func (e *Extreme) Name() string { return e.name }

func (e *Extreme) Observe(s *cardio.Sample) {
	v, err := s.Series(e.series)
	if err != nil {
		return
	}
	for _, x := range v {
		switch {
		case !e.seen:
			e.value, e.seen = x, true
		case e.low:
			e.value = math.Min(e.value, x)
		default:
			e.value = math.Max(e.value, x)
		}
	}
}

func (e *Extreme) Value() float64 { return e.value }

func (e *Extreme) Reset() {
	e.value = 0
	e.seen = false
}

// StrokeVolume is the mean aortic valve flow per beat, ml.
type StrokeVolume struct {
	flow *Mean
	rate *Mean
}

func NewStrokeVolume() *StrokeVolume {
	return &StrokeVolume{
		flow: NewMean("", aorticFlow, 1),
		rate: NewMean("", heartRate, 1),
	}
}

func (s *StrokeVolume) Name() string { return "stroke_volume" }

func (s *StrokeVolume) Observe(smp *cardio.Sample) {
	s.flow.Observe(smp)
	s.rate.Observe(smp)
}

func (s *StrokeVolume) Value() float64 {
	hr := s.rate.Value()
	if hr == 0 {
		return 0
	}
	return s.flow.Value() * 60 / hr
}

func (s *StrokeVolume) Reset() {
	s.flow.Reset()
	s.rate.Reset()
}

func NewMeanArterialPressure() *Mean {
	return NewMean("mean_arterial_pressure", aorticPressure, 1)
}

func NewSystolicPressure() *Extreme { return NewPeak("systolic_pressure", aorticPressure) }

func NewDiastolicPressure() *Extreme { return NewTrough("diastolic_pressure", aorticPressure) }

func NewLVPeak() *Extreme { return NewPeak("lv_peak_pressure", lvPressure) }

func NewHeartRate() *Mean { return NewMean("heart_rate", heartRate, 1) }

// NewCardiacOutput reports the mean aortic valve flow in l/min.
func NewCardiacOutput() *Mean {
	return NewMean("cardiac_output", aorticFlow, mlPerSecondToLitresPerMinute)
}

// Hemodynamics returns the standard metric set recorded for every run.
func Hemodynamics() []sim.Metric {
	return []sim.Metric{
		NewMeanArterialPressure(),
		NewSystolicPressure(),
		NewDiastolicPressure(),
		NewHeartRate(),
		NewCardiacOutput(),
		NewStrokeVolume(),
		NewLVPeak(),
		NewStability(DefaultResidualThreshold),
	}
}
