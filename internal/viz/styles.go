package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styles holds the lipgloss styles derived from a theme.
type styles struct {
	panel     lipgloss.Style
	header    lipgloss.Style
	label     lipgloss.Style
	value     lipgloss.Style
	arterial  lipgloss.Style
	venous    lipgloss.Style
	rate      lipgloss.Style
	active    lipgloss.Style
	running   lipgloss.Style
	paused    lipgloss.Style
	failed    lipgloss.Style
	help      lipgloss.Style
	sparkHigh lipgloss.Style
	sparkMid  lipgloss.Style
	sparkLow  lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1),
		header:    lipgloss.NewStyle().Foreground(t.Text).Bold(true).MarginBottom(1),
		label:     lipgloss.NewStyle().Foreground(t.Muted).Width(14),
		value:     lipgloss.NewStyle().Foreground(t.Text),
		arterial:  lipgloss.NewStyle().Foreground(t.Arterial).Bold(true),
		venous:    lipgloss.NewStyle().Foreground(t.Venous).Bold(true),
		rate:      lipgloss.NewStyle().Foreground(t.Rate).Bold(true),
		active:    lipgloss.NewStyle().Foreground(t.Active).Bold(true),
		running:   lipgloss.NewStyle().Foreground(t.Rate).Bold(true),
		paused:    lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		failed:    lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		help:      lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
		sparkHigh: lipgloss.NewStyle().Foreground(t.Rate),
		sparkMid:  lipgloss.NewStyle().Foreground(t.Warning),
		sparkLow:  lipgloss.NewStyle().Foreground(t.Error),
	}
}

// ProgressBar renders a bar filled to fraction of width.
func (s styles) ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return s.active.Render(strings.Repeat("█", filled)) + s.label.UnsetWidth().Render(strings.Repeat("░", width-filled))
}

// Sparkline renders a mini sparkline of the last width values.
func (s styles) Sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var b strings.Builder
	for _, v := range values {
		norm := (v - lo) / rng
		c := string(chars[int(norm*float64(len(chars)-1))])
		switch {
		case norm > 0.7:
			b.WriteString(s.sparkHigh.Render(c))
		case norm > 0.3:
			b.WriteString(s.sparkMid.Render(c))
		default:
			b.WriteString(s.sparkLow.Render(c))
		}
	}
	return b.String()
}

// Separator renders a muted rule.
func (s styles) Separator(width int) string {
	return s.label.UnsetWidth().Render(strings.Repeat("─", width))
}
