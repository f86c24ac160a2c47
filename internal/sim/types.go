package sim

import "github.com/san-kum/cvsim/internal/cardio"

// Metric summarizes a run one sample at a time.
type Metric interface {
	Name() string
	Observe(s *cardio.Sample)
	Value() float64
	Reset()
}

// Observer runs before every sample with the engine and the flags the
// sample will use. An error aborts the run.
type Observer interface {
	OnSample(t float64, e *cardio.Engine, f *cardio.Flags) error
}

type ObserverFunc func(t float64, e *cardio.Engine, f *cardio.Flags) error

func (fn ObserverFunc) OnSample(t float64, e *cardio.Engine, f *cardio.Flags) error {
	return fn(t, e, f)
}

type Config struct {
	Dt          float64
	Duration    float64
	Compression int
	Flags       cardio.Flags
}

// Samples returns the number of samples covering the duration.
func (c Config) Samples() int {
	n := int(c.Duration/(c.Dt*float64(c.Compression)) + 0.5)
	if n < 1 {
		n = 1
	}
	return n
}

type Result struct {
	Series   *cardio.Sample
	Metrics  map[string]float64
	Estimate cardio.Estimate
	Samples  int
	Beats    int
	Residual float64
}
