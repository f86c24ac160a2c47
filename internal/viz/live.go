package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/cvsim/internal/automation"
	"github.com/san-kum/cvsim/internal/cardio"
)

const (
	canvasWidth     = 60
	canvasHeight    = 10
	historyCapacity = canvasWidth * 2
	rateCapacity    = 240
	frameRate       = time.Second / 60
	defaultTilt     = 70
	pressureTop     = 160
	statsWindow     = 2.0
)

// Tunable lists the parameters the monitor lets the user nudge.
var Tunable = []cardio.Param{
	cardio.NominalHeartRate,
	cardio.ABRSetPoint,
	cardio.TotalBloodVolume,
	cardio.SplanchnicMicroResistance,
	cardio.LegMicroResistance,
	cardio.TiltAngle,
}

type TickMsg time.Time

// Options configure a Monitor.
type Options struct {
	Compression int
	Flags       cardio.Flags
	// SamplesPerTick advances the engine by this many samples per frame.
	SamplesPerTick int
	Theme          string
	// OnSample receives every sample after it is recorded.
	OnSample func(*cardio.Sample) error
}

// Monitor is the live Bubble Tea model. The engine must be initialized.
type Monitor struct {
	engine   *cardio.Engine
	opts     Options
	flags    cardio.Flags
	running  bool
	showHelp bool
	theme    Theme
	styles   styles
	canvas   *Canvas
	err      error
	halted   bool

	times     []float64
	aortic    []float64
	ventricle []float64
	atrial    []float64
	rates     []float64

	initial  cardio.Params
	selected int
}

func NewMonitor(e *cardio.Engine, opts Options) Monitor {
	if opts.Compression < 1 {
		opts.Compression = 16
	}
	if opts.SamplesPerTick < 1 {
		opts.SamplesPerTick = 1
	}
	theme := GetTheme(opts.Theme)
	return Monitor{
		engine:    e,
		opts:      opts,
		flags:     opts.Flags,
		running:   true,
		theme:     theme,
		styles:    newStyles(theme),
		canvas:    NewCanvas(canvasWidth, canvasHeight),
		times:     make([]float64, 0, historyCapacity),
		aortic:    make([]float64, 0, historyCapacity),
		ventricle: make([]float64, 0, historyCapacity),
		atrial:    make([]float64, 0, historyCapacity),
		rates:     make([]float64, 0, rateCapacity),
		initial:   e.Params(),
	}
}

func tick() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Monitor) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running && !m.halted
		case "r":
			m.reset()
		case "a":
			m.flags.ArterialBaroreflex = !m.flags.ArterialBaroreflex
		case "c":
			m.flags.Cardiopulmonary = !m.flags.Cardiopulmonary
		case "t":
			m.toggleTilt()
		case "tab":
			m.selected = (m.selected + 1) % len(Tunable)
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "v":
			m.theme = nextTheme(m.theme.Name)
			m.styles = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			for i := 0; i < m.opts.SamplesPerTick; i++ {
				if err := m.step(); err != nil {
					m.err = err
					m.halted = true
					m.running = false
					break
				}
			}
		}
		return m, tick()
	}
	return m, nil
}

// step advances the engine by one sample and records its traces.
func (m *Monitor) step() error {
	smp, err := m.engine.AdvanceSample(m.opts.Compression, m.flags)
	if err != nil {
		return err
	}
	m.times = appendCapped(m.times, smp.Time, historyCapacity)
	m.aortic = appendCapped(m.aortic, smp.Pressure[cardio.AscendingAorta], historyCapacity)
	m.ventricle = appendCapped(m.ventricle, smp.Pressure[cardio.LeftVentricle], historyCapacity)
	m.atrial = appendCapped(m.atrial, smp.Pressure[cardio.RightAtrium], historyCapacity)
	m.rates = appendCapped(m.rates, smp.HeartRate, rateCapacity)
	if m.opts.OnSample != nil {
		return m.opts.OnSample(smp)
	}
	return nil
}

func appendCapped(dst, src []float64, capacity int) []float64 {
	dst = append(dst, src...)
	if over := len(dst) - capacity; over > 0 {
		dst = append(dst[:0], dst[over:]...)
	}
	return dst
}

func (m *Monitor) toggleTilt() {
	ev := automation.Event{Action: automation.ActionTilt}
	if !m.flags.Tilt || m.flags.TiltStop > 0 {
		ev.On = true
		if m.engine.Params()[cardio.TiltAngle] == 0 {
			ev.Value = defaultTilt
		}
	}
	if err := ev.Apply(m.engine, &m.flags); err != nil {
		m.err = err
	}
}

func (m *Monitor) adjustParam(factor float64) {
	p := Tunable[m.selected]
	v := m.engine.Params()[p] * factor
	if p == cardio.TiltAngle {
		v = min(max(v, 1), 90)
	}
	// Rejected values leave the engine untouched and are reported in the panel.
	m.err = m.engine.UpdateParameter(p.String(), v)
}

// reset restores the tuned parameters and clears reflex history and traces.
func (m *Monitor) reset() {
	m.err = nil
	for _, p := range Tunable {
		if m.engine.Params()[p] == m.initial[p] {
			continue
		}
		if err := m.engine.UpdateParameter(p.String(), m.initial[p]); err != nil {
			m.err = err
		}
	}
	m.engine.Reset()
	m.halted = false
	m.flags = m.opts.Flags
	m.times = m.times[:0]
	m.aortic = m.aortic[:0]
	m.ventricle = m.ventricle[:0]
	m.atrial = m.atrial[:0]
	m.rates = m.rates[:0]
	m.running = true
}

// Vitals summarizes the traces of the last statsWindow seconds.
type Vitals struct {
	Systolic, Diastolic, Mean float64
	LVPeak                    float64
	AtrialMean                float64
	HeartRate                 float64
}

func (m Monitor) Vitals() Vitals {
	var v Vitals
	if len(m.times) == 0 {
		return v
	}
	from := m.times[len(m.times)-1] - statsWindow
	v.Diastolic = m.aortic[len(m.aortic)-1]
	n := 0
	for i, t := range m.times {
		if t < from {
			continue
		}
		v.Systolic = max(v.Systolic, m.aortic[i])
		v.Diastolic = min(v.Diastolic, m.aortic[i])
		v.LVPeak = max(v.LVPeak, m.ventricle[i])
		v.Mean += m.aortic[i]
		v.AtrialMean += m.atrial[i]
		n++
	}
	v.Mean /= float64(n)
	v.AtrialMean /= float64(n)
	v.HeartRate = m.rates[len(m.rates)-1]
	return v
}

// Flags returns the reflex and tilt gates of the next sample.
func (m Monitor) Flags() cardio.Flags { return m.flags }

// Err returns the last engine error, if any.
func (m Monitor) Err() error { return m.err }

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

// View renders the monitor.
func (m Monitor) View() string {
	st := m.styles
	state := m.engine.State()
	v := m.Vitals()

	m.canvas.Clear()
	m.canvas.Trace(m.aortic, 0, pressureTop)
	trace := st.panel.Render(
		st.arterial.Render("ABP  0-160 mmHg") + "\n" + st.arterial.Render(m.canvas.String()),
	)

	var s strings.Builder
	s.WriteString(st.header.Render("CVSIM MONITOR") + "\n")
	switch {
	case m.halted:
		s.WriteString(st.failed.Render("STOPPED: "+m.err.Error()) + "\n\n")
	case m.running:
		s.WriteString(st.running.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(st.paused.Render("PAUSED") + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + value + "\n")
	}
	row("Time", st.value.Render(fmt.Sprintf("%.2f s", m.engine.Time())))
	row("HR", st.rate.Render(fmt.Sprintf("%.0f bpm", v.HeartRate)))
	row("ABP", st.arterial.Render(fmt.Sprintf("%.0f/%.0f (%.0f)", v.Systolic, v.Diastolic, v.Mean)))
	row("LV peak", st.arterial.Render(fmt.Sprintf("%.0f mmHg", v.LVPeak)))
	row("RA mean", st.venous.Render(fmt.Sprintf("%.1f mmHg", v.AtrialMean)))
	row("Residual", st.value.Render(fmt.Sprintf("%.3f ml", m.engine.Residual())))
	row("Baroreflex", st.value.Render(onOff(m.flags.ArterialBaroreflex)))
	row("CP reflex", st.value.Render(onOff(m.flags.Cardiopulmonary)))
	row("Tilt", st.ProgressBar(state.Tilt.Angle/90, 12)+st.value.Render(fmt.Sprintf(" %.0f°", state.Tilt.Angle)))

	if len(m.rates) > 1 {
		chart := asciigraph.Plot(m.rates, asciigraph.Height(3), asciigraph.Width(30), asciigraph.Caption("Heart rate"))
		s.WriteString("\n" + st.rate.Render(chart) + "\n")
	}

	s.WriteString("\nPARAMETERS\n")
	params := m.engine.Params()
	for i, p := range Tunable {
		line := fmt.Sprintf("%-28s %10.2f", p.String(), params[p])
		if i == m.selected {
			s.WriteString(st.active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + st.value.Render(line) + "\n")
		}
	}
	if m.err != nil && !m.halted {
		s.WriteString(st.failed.Render(m.err.Error()) + "\n")
	}
	s.WriteString(st.help.Render(st.Separator(30) + "\nSP:Pause R:Reset Q:Quit\nA:Baro C:CP T:Tilt V:Theme\nTab ↑↓:Tune ?:Help"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, trace, st.panel.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset reflexes & params  ║
║  Q        - Quit                     ║
║  A        - Toggle baroreflex        ║
║  C        - Toggle CP reflex         ║
║  T        - Start/end head-up tilt   ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter (+5%) ║
║  Down/J   - Decrease parameter (-5%) ║
║  V        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + main
	}
	return main
}
