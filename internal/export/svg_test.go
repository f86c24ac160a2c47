package export

import (
	"strings"
	"testing"

	"github.com/san-kum/cvsim/internal/analysis"
)

func TestPathToSVG(t *testing.T) {
	svg := PathToSVG([]Point{{0, 0}, {10, 10}}, 120, 120, "#ff4444")
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("expected an svg document, got %q", svg)
	}
	// The 10% margin maps (0,0) to (10,110) and (10,10) to (110,10).
	if !strings.Contains(svg, `d="M10.0,110.0 L110.0,10.0"`) {
		t.Errorf("unexpected path in %q", svg)
	}
	if !strings.Contains(svg, `stroke="#ff4444"`) {
		t.Error("expected the stroke color")
	}
	if PathToSVG([]Point{{1, 1}}, 10, 10, "#fff") != "" {
		t.Error("expected no output for a single point")
	}
}

func TestSeriesToSVG(t *testing.T) {
	if _, err := SeriesToSVG([]float64{0, 1}, []float64{1}, 10, 10, "#fff"); err == nil {
		t.Error("expected error for mismatched lengths")
	}
	svg, err := SeriesToSVG([]float64{0, 1, 2}, []float64{80, 120, 80}, 100, 50, "#fff")
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if strings.Count(svg, " L") != 2 {
		t.Errorf("expected 3 vertices, got %q", svg)
	}
}

func TestLoopToSVG(t *testing.T) {
	loop := &analysis.PhasePortrait2D{Points: []struct{ X, Y float64 }{{50, 5}, {120, 10}, {120, 120}, {50, 100}}}
	if svg := LoopToSVG(loop, 100, 100, "#fff"); strings.Count(svg, " L") != 3 {
		t.Errorf("expected 4 vertices, got %q", svg)
	}
	if LoopToSVG(nil, 100, 100, "#fff") != "" {
		t.Error("expected no output for a nil loop")
	}
}
