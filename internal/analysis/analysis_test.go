package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/cvsim/internal/cardio"
)

func sine(n int, dt, freq float64) (t, x []float64) {
	t = make([]float64, n)
	x = make([]float64, n)
	for i := range x {
		t[i] = float64(i) * dt
		x[i] = 90 + 20*math.Sin(2*math.Pi*freq*t[i])
	}
	return t, x
}

func TestDominantFrequency(t *testing.T) {
	_, x := sine(800, 0.01, 1.25)
	f, err := DominantFrequency(x, 0.01, 0.5, 4)
	if err != nil {
		t.Fatalf("dominant frequency: %v", err)
	}
	if math.Abs(f-1.25) > 1e-9 {
		t.Errorf("expected 1.25 Hz, got %f", f)
	}

	if _, err := DominantFrequency(x, 0.01, 100, 200); err == nil {
		t.Error("expected error for a band above Nyquist")
	}
	if _, _, err := Spectrum(x[:1], 0.01); err == nil {
		t.Error("expected error for a single point")
	}
	if _, _, err := Spectrum(x, 0); err == nil {
		t.Error("expected error for zero dt")
	}
}

func TestSpectrumRemovesMean(t *testing.T) {
	_, x := sine(800, 0.01, 1.25)
	_, power, err := Spectrum(x, 0.01)
	if err != nil {
		t.Fatalf("spectrum: %v", err)
	}
	if power[0] > 1e-6 {
		t.Errorf("expected no DC component, got %f", power[0])
	}
}

func TestDetectBeats(t *testing.T) {
	times, x := sine(1000, 0.01, 1)

	beats, err := DetectBeats(times, x, 90, 0.3)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(beats) != 9 {
		t.Fatalf("expected 9 beats, got %d: %v", len(beats), beats)
	}
	for i, b := range beats {
		if math.Abs(b-float64(i+1)) > 1e-3 {
			t.Errorf("beat %d: expected %d s, got %f", i, i+1, b)
		}
	}

	if _, err := DetectBeats(times[:3], x, 90, 0.3); err == nil {
		t.Error("expected error for mismatched lengths")
	}
}

func TestDetectBeatsRefractory(t *testing.T) {
	times := []float64{0, 1, 2, 3, 4, 5}
	x := []float64{0, 2, 0, 2, 0, 2}

	beats, _ := DetectBeats(times, x, 1, 2.5)
	if len(beats) != 2 {
		t.Fatalf("expected 2 beats, got %v", beats)
	}
	if beats[0] != 0.5 || beats[1] != 4.5 {
		t.Errorf("unexpected beats %v", beats)
	}
}

func TestHeartRates(t *testing.T) {
	rates := HeartRates([]float64{0, 1, 1.5})
	if len(rates) != 2 || rates[0] != 60 || rates[1] != 120 {
		t.Errorf("unexpected rates %v", rates)
	}
	if HeartRates([]float64{3}) != nil {
		t.Error("expected nil for a single beat")
	}
}

func TestPressureVolumeLoop(t *testing.T) {
	s := &cardio.Sample{}
	s.Volume[cardio.LeftVentricle] = []float64{50, 120, 120, 50}
	s.Pressure[cardio.LeftVentricle] = []float64{5, 5, 100, 100}

	loop, err := PressureVolumeLoop(s, cardio.LeftVentricle)
	if err != nil {
		t.Fatalf("loop: %v", err)
	}
	if got := loop.Area(); math.Abs(got-70*95) > 1e-9 {
		t.Errorf("expected stroke work %f, got %f", 70.0*95, got)
	}

	art := PhasePortraitToASCII(loop, 20, 8)
	if !strings.Contains(art, "pressure.left_ventricle") || !strings.Contains(art, "•") {
		t.Errorf("unexpected plot:\n%s", art)
	}

	if _, err := PressureVolumeLoop(s, cardio.Intrathoracic); err == nil {
		t.Error("expected error for a slot without volume")
	}
}

func TestEngineHeartRateFromSpectrum(t *testing.T) {
	e := cardio.New(cardio.DefaultParams())
	if err := e.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	smp, err := e.AdvanceSample(4000, cardio.Flags{})
	if err != nil {
		t.Fatalf("advance: %v", err)
	}

	f, err := DominantFrequency(smp.Pressure[cardio.AscendingAorta], cardio.DefaultStepSize, 0.5, 1.8)
	if err != nil {
		t.Fatalf("dominant frequency: %v", err)
	}
	if want := 70.0 / 60; math.Abs(f-want) > 0.25 {
		t.Errorf("expected about %f Hz, got %f", want, f)
	}

	loop, err := PressureVolumeLoop(smp, cardio.LeftVentricle)
	if err != nil {
		t.Fatalf("loop: %v", err)
	}
	if loop.Area() <= 0 {
		t.Error("expected positive stroke work")
	}
}
