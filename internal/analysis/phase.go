package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/cvsim/internal/cardio"
)

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	XLabel, YLabel string
	Points         []struct{ X, Y float64 }
}

// PressureVolumeLoop pairs the volume (x) and pressure (y) series of one
// compartment, normally a ventricle.
func PressureVolumeLoop(s *cardio.Sample, c cardio.Compartment) (*PhasePortrait2D, error) {
	if !c.HasVolume() {
		return nil, fmt.Errorf("%s has no volume", c)
	}
	vol := s.Volume[c]
	prs := s.Pressure[c]
	if len(vol) != len(prs) {
		return nil, fmt.Errorf("%s: %d volumes for %d pressures", c, len(vol), len(prs))
	}

	portrait := &PhasePortrait2D{
		XLabel: "volume." + c.String(),
		YLabel: "pressure." + c.String(),
		Points: make([]struct{ X, Y float64 }, len(vol)),
	}
	for i := range vol {
		portrait.Points[i].X = vol[i]
		portrait.Points[i].Y = prs[i]
	}
	return portrait, nil
}

// Area returns the absolute area enclosed by the trajectory, closed from the
// last point back to the first. For a ventricular loop over one beat this is
// the stroke work in mmHg ml.
func (p *PhasePortrait2D) Area() float64 {
	n := len(p.Points)
	if n < 3 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		a, b := p.Points[i], p.Points[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return math.Abs(sum) / 2
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%.1f to %.1f)\n", portrait.YLabel, minY, maxY)
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	fmt.Fprintf(&sb, "%s (%.1f to %.1f)\n", portrait.XLabel, minX, maxX)
	return sb.String()
}
