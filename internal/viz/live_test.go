package viz

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/cvsim/internal/cardio"
	"github.com/san-kum/cvsim/internal/decimate"
)

func newMonitor(t *testing.T, opts Options) Monitor {
	t.Helper()
	e := cardio.New(cardio.DefaultParams(), cardio.WithDecimator(decimate.TurningPoint{}))
	if err := e.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return NewMonitor(e, opts)
}

func press(m Monitor, key string) Monitor {
	var msg tea.KeyMsg
	switch key {
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(Monitor)
}

func ticks(m Monitor, n int) Monitor {
	for i := 0; i < n; i++ {
		next, _ := m.Update(TickMsg(time.Now()))
		m = next.(Monitor)
	}
	return m
}

func TestMonitorAdvances(t *testing.T) {
	m := newMonitor(t, Options{Compression: 16})
	m = ticks(m, 10)

	if got := m.engine.Time(); got <= 0.08 || got > 0.16+1e-12 {
		t.Errorf("expected at most 0.16 s after 10 frames, got %f", got)
	}
	if m.times[len(m.times)-1] != m.engine.Time() {
		t.Errorf("expected the last trace point at %f, got %f", m.engine.Time(), m.times[len(m.times)-1])
	}
	if len(m.aortic) != 10 || len(m.times) != 10 {
		t.Errorf("expected one trace point per sample, got %d", len(m.aortic))
	}
	v := m.Vitals()
	if v.HeartRate != 70 {
		t.Errorf("expected nominal heart rate, got %f", v.HeartRate)
	}
	if v.Systolic < v.Mean || v.Mean < v.Diastolic {
		t.Errorf("unexpected vitals %+v", v)
	}
	if !strings.Contains(m.View(), "CVSIM MONITOR") {
		t.Error("expected the monitor header")
	}
}

func TestMonitorPause(t *testing.T) {
	m := newMonitor(t, Options{})
	m = press(m, " ")
	m = ticks(m, 5)
	if m.engine.Time() != 0 {
		t.Errorf("expected no progress while paused, got %f", m.engine.Time())
	}
	m = press(m, " ")
	m = ticks(m, 1)
	if m.engine.Time() == 0 {
		t.Error("expected progress after resume")
	}
}

func TestMonitorGates(t *testing.T) {
	m := newMonitor(t, Options{})
	m = press(m, "a")
	m = press(m, "c")
	if f := m.Flags(); !f.ArterialBaroreflex || !f.Cardiopulmonary {
		t.Errorf("expected both reflexes on, got %+v", f)
	}

	m = ticks(m, 2)
	m = press(m, "t")
	f := m.Flags()
	if !f.Tilt || f.TiltStop != 0 {
		t.Fatalf("expected tilt running, got %+v", f)
	}
	params := m.engine.Params()
	if params[cardio.TiltAngle] != defaultTilt || params[cardio.TiltOnset] != m.engine.Time() {
		t.Errorf("expected tilt to %d deg from now, got %f at %f", defaultTilt, params[cardio.TiltAngle], params[cardio.TiltOnset])
	}

	m = ticks(m, 2)
	m = press(m, "t")
	if f := m.Flags(); !f.Tilt || f.TiltStop != m.engine.Time() {
		t.Errorf("expected tilt-back from now, got %+v", f)
	}
}

func TestMonitorTuneAndReset(t *testing.T) {
	m := newMonitor(t, Options{})
	m = press(m, "tab")
	if Tunable[m.selected] != cardio.ABRSetPoint {
		t.Fatalf("expected abr_set_point selected, got %s", Tunable[m.selected])
	}
	before := m.engine.Params()[cardio.ABRSetPoint]
	m = press(m, "k")
	if got := m.engine.Params()[cardio.ABRSetPoint]; got != before*1.05 {
		t.Errorf("expected %f, got %f", before*1.05, got)
	}

	m = ticks(m, 3)
	m = press(m, "r")
	if got := m.engine.Params()[cardio.ABRSetPoint]; got != before {
		t.Errorf("expected reset to %f, got %f", before, got)
	}
	if len(m.aortic) != 0 || m.Err() != nil {
		t.Errorf("expected cleared traces, got %d points (%v)", len(m.aortic), m.Err())
	}
}

func TestMonitorHaltsOnSampleError(t *testing.T) {
	boom := errors.New("publish failed")
	m := newMonitor(t, Options{OnSample: func(*cardio.Sample) error { return boom }})
	m = ticks(m, 1)
	if !errors.Is(m.Err(), boom) || m.running {
		t.Fatalf("expected halt on sample error, got %v", m.Err())
	}
	m = press(m, " ")
	if m.running {
		t.Error("expected the halted monitor to stay stopped")
	}
	if !strings.Contains(m.View(), "STOPPED") {
		t.Error("expected the stopped banner")
	}
}

func TestCanvasTrace(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Trace([]float64{0, 10}, 0, 10)
	// Two points land on the last two dot columns: bottom-left to top-right.
	if c.Grid[1][3]&rune(pixelMap[3][0]) == 0 {
		t.Error("expected the bottom dot of the first point")
	}
	if c.Grid[0][3]&rune(pixelMap[0][1]) == 0 {
		t.Error("expected the top dot of the last point")
	}
	if c.Grid[0][0] != brailleBlank {
		t.Error("expected untouched cells to stay blank")
	}
}

func TestThemes(t *testing.T) {
	if GetTheme("nope").Name != "bedside" {
		t.Error("expected the bedside fallback")
	}
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("expected 3 themes, got %v", names)
	}
	if nextTheme(names[len(names)-1]).Name != names[0] {
		t.Error("expected themes to wrap around")
	}
}
