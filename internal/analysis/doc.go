// Package analysis derives physiological summaries from recorded series.
//
//   - [PressureVolumeLoop]: chamber pressure against volume, with the loop
//     area as stroke work
//   - [DetectBeats]: upward threshold crossings with a refractory window
//   - [Spectrum] and [DominantFrequency]: power spectrum of a uniformly
//     sampled series
//
// # Heart Rate Check
//
// The dominant frequency of the aortic pressure gives the heart rate:
//
//	f, err := analysis.DominantFrequency(aorta, dt, 0.5, 4)
//	bpm := 60 * f
package analysis
