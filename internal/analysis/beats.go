package analysis

import "fmt"

// DetectBeats returns the times at which x crosses threshold upwards,
// linearly interpolated between samples. Crossings closer than refractory to
// the previous beat are ignored.
func DetectBeats(t, x []float64, threshold, refractory float64) ([]float64, error) {
	if len(t) != len(x) {
		return nil, fmt.Errorf("%d times for %d values", len(t), len(x))
	}

	beats := make([]float64, 0)
	for i := 1; i < len(x); i++ {
		prev, curr := x[i-1], x[i]
		if prev >= threshold || curr < threshold {
			continue
		}
		frac := (threshold - prev) / (curr - prev)
		at := t[i-1] + frac*(t[i]-t[i-1])
		if n := len(beats); n > 0 && at-beats[n-1] <= refractory {
			continue
		}
		beats = append(beats, at)
	}
	return beats, nil
}

// HeartRates converts beat times into instantaneous rates, beats/min.
func HeartRates(beats []float64) []float64 {
	if len(beats) < 2 {
		return nil
	}
	rates := make([]float64, 0, len(beats)-1)
	for i := 1; i < len(beats); i++ {
		if rr := beats[i] - beats[i-1]; rr > 0 {
			rates = append(rates, 60/rr)
		}
	}
	return rates
}
