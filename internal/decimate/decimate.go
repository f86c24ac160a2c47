// Package decimate compresses recorded series before they leave the engine.
package decimate

import "github.com/san-kum/cvsim/internal/cardio"

var _ cardio.Decimator = TurningPoint{}

// TurningPoint halves a series once per factor of two, keeping from each
// pair the point that turns the slope relative to the last kept point.
// Peaks and troughs of pressure waveforms survive the compression.
type TurningPoint struct{}

func (TurningPoint) Decimate(x []float64, factor int) []float64 {
	out := x
	for f := factor; f > 1 && f%2 == 0 && len(out) > 1; f /= 2 {
		out = halve(out)
	}
	return out
}

func halve(x []float64) []float64 {
	out := make([]float64, 0, (len(x)+1)/2)
	ref := x[0]
	for i := 0; i+1 < len(x); i += 2 {
		a, b := x[i], x[i+1]
		keep := b
		if (a-ref)*(b-a) < 0 {
			keep = a
		}
		out = append(out, keep)
		ref = keep
	}
	if len(x)%2 == 1 {
		out = append(out, x[len(x)-1])
	}
	return out
}
