package optim

import (
	"context"
	"testing"

	"github.com/san-kum/cvsim/internal/config"
	"github.com/san-kum/cvsim/internal/experiment"
)

func TestNewGridSearch(t *testing.T) {
	tests := []struct {
		name    string
		params  []string
		ranges  [][]float64
		wantErr bool
	}{
		{"valid", []string{"nominal_heart_rate"}, [][]float64{{60, 70}}, false},
		{"empty", nil, nil, true},
		{"mismatch", []string{"nominal_heart_rate"}, [][]float64{{60}, {70}}, true},
		{"unknown", []string{"mystery"}, [][]float64{{1}}, true},
		{"no values", []string{"nominal_heart_rate"}, [][]float64{{}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGridSearch(tt.params, tt.ranges, 1)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewGridSearch() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPoints(t *testing.T) {
	g, err := NewGridSearch([]string{"nominal_heart_rate", "abr_set_point"}, [][]float64{{60, 80}, {85, 90, 95}}, 1)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	points := g.Points()
	if len(points) != 6 {
		t.Fatalf("expected 6 points, got %d", len(points))
	}
	if points[0]["nominal_heart_rate"] != 60 || points[0]["abr_set_point"] != 85 {
		t.Errorf("unexpected first point %v", points[0])
	}
	if points[5]["nominal_heart_rate"] != 80 || points[5]["abr_set_point"] != 95 {
		t.Errorf("unexpected last point %v", points[5])
	}
}

func TestSearch(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Duration = 0.064
	cfg.Reflex.Arterial = false
	cfg.Reflex.Cardiopulmonary = false

	g, err := NewGridSearch([]string{"nominal_heart_rate"}, [][]float64{{60, 75, 90}}, 2)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	best, trials, err := g.Search(context.Background(), cfg, experiment.NewRegistry(), "heart_rate", 74, nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(trials) != 3 {
		t.Fatalf("expected 3 trials, got %d", len(trials))
	}
	if best.Params["nominal_heart_rate"] != 75 {
		t.Errorf("expected 75 bpm to win, got %v (value %f)", best.Params, best.Value)
	}

	if _, _, err := g.Search(context.Background(), cfg, experiment.NewRegistry(), "mystery", 1, nil); err == nil {
		t.Error("expected error for unknown metric")
	}
}
