package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/cvsim/internal/cardio"
)

func testSample() *cardio.Sample {
	s := &cardio.Sample{
		Time:      []float64{0, 0.5, 1.0, 1.5},
		HeartRate: []float64{60, 60, 60, 60},
		Residual:  []float64{0, 0.1, 2.5, -0.2},
	}
	s.Pressure[cardio.AscendingAorta] = []float64{80, 120, 90, 70}
	s.Pressure[cardio.LeftVentricle] = []float64{5, 125, 10, 4}
	s.Flow[cardio.AorticValve] = []float64{0, 300, 0, 100}
	return s
}

func TestHemodynamics(t *testing.T) {
	tests := []struct {
		name string
		want float64
	}{
		{"mean_arterial_pressure", 90},
		{"systolic_pressure", 120},
		{"diastolic_pressure", 70},
		{"heart_rate", 60},
		{"cardiac_output", 6},
		{"stroke_volume", 100},
		{"lv_peak_pressure", 125},
		{"volume_stability", 0.75},
	}

	got := make(map[string]float64)
	for _, m := range Hemodynamics() {
		m.Observe(testSample())
		got[m.Name()] = m.Value()
	}
	if len(got) != len(tests) {
		t.Fatalf("expected %d metrics, got %v", len(tests), got)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(got[tt.name]-tt.want) > 1e-9 {
				t.Errorf("expected %f, got %f", tt.want, got[tt.name])
			}
		})
	}
}

func TestExtremeAcrossSamples(t *testing.T) {
	m := NewTrough("min", "pressure.ascending_aorta")
	m.Observe(testSample())

	later := testSample()
	later.Pressure[cardio.AscendingAorta] = []float64{95, 75}
	m.Observe(later)

	if m.Value() != 70 {
		t.Errorf("expected 70, got %f", m.Value())
	}
}

func TestMetricReset(t *testing.T) {
	for _, m := range Hemodynamics() {
		m.Observe(testSample())
		m.Reset()
		want := 0.0
		if m.Name() == "volume_stability" {
			want = 1
		}
		if m.Value() != want {
			t.Errorf("%s: expected %f after reset, got %f", m.Name(), want, m.Value())
		}
	}
}

func TestMeanUnknownSeries(t *testing.T) {
	m := NewMean("x", "pressure.nowhere", 1)
	m.Observe(testSample())
	if m.Value() != 0 {
		t.Errorf("expected 0 for unknown series, got %f", m.Value())
	}
}
