package analysis

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// Spectrum returns the one-sided amplitude spectrum of a uniformly sampled
// series with its mean removed, and the frequency of each bin in Hz.
func Spectrum(data []float64, dt float64) (freqs, power []float64, err error) {
	if len(data) < 2 {
		return nil, nil, fmt.Errorf("spectrum needs at least 2 points, got %d", len(data))
	}
	if dt <= 0 {
		return nil, nil, fmt.Errorf("dt must be positive, got %f", dt)
	}

	mean := stat.Mean(data, nil)
	seq := make([]float64, len(data))
	for i, v := range data {
		seq[i] = v - mean
	}

	fft := fourier.NewFFT(len(seq))
	coeff := fft.Coefficients(nil, seq)
	freqs = make([]float64, len(coeff))
	power = make([]float64, len(coeff))
	for i, c := range coeff {
		freqs[i] = fft.Freq(i) / dt
		power[i] = cmplx.Abs(c)
	}
	return freqs, power, nil
}

// DominantFrequency returns the frequency of the largest spectral peak in
// [fmin, fmax] Hz.
func DominantFrequency(data []float64, dt, fmin, fmax float64) (float64, error) {
	freqs, power, err := Spectrum(data, dt)
	if err != nil {
		return 0, err
	}

	best, at := -1.0, 0.0
	for i, f := range freqs {
		if f < fmin || f > fmax {
			continue
		}
		if power[i] > best {
			best, at = power[i], f
		}
	}
	if best < 0 {
		return 0, fmt.Errorf("no spectral bins within [%g, %g] Hz", fmin, fmax)
	}
	return at, nil
}
