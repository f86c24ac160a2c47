package sim

import "testing"

func TestConfigSamples(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want int
	}{
		{"exact", Config{Dt: 0.001, Duration: 2, Compression: 16}, 125},
		{"rounded", Config{Dt: 0.001, Duration: 1, Compression: 3}, 333},
		{"shorter than one sample", Config{Dt: 0.001, Duration: 0.001, Compression: 16}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Samples(); got != tt.want {
				t.Errorf("expected %d samples, got %d", tt.want, got)
			}
		})
	}
}
