package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/cvsim/internal/analysis"
)

// Point is one vertex of a drawn path.
type Point struct{ X, Y float64 }

// PathToSVG draws points as a single polyline scaled to width x height with a
// 10% margin around the data.
func PathToSVG(points []Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
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
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// SeriesToSVG draws x against t.
func SeriesToSVG(t, x []float64, width, height int, strokeColor string) (string, error) {
	if len(t) != len(x) {
		return "", fmt.Errorf("%d times for %d values", len(t), len(x))
	}
	points := make([]Point, len(t))
	for i := range t {
		points[i] = Point{t[i], x[i]}
	}
	return PathToSVG(points, width, height, strokeColor), nil
}

// LoopToSVG draws a phase portrait such as a pressure-volume loop.
func LoopToSVG(portrait *analysis.PhasePortrait2D, width, height int, strokeColor string) string {
	if portrait == nil {
		return ""
	}
	points := make([]Point, len(portrait.Points))
	for i, p := range portrait.Points {
		points[i] = Point{p.X, p.Y}
	}
	return PathToSVG(points, width, height, strokeColor)
}
