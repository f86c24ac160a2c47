package metrics

import (
	"math"

	"github.com/san-kum/cvsim/internal/cardio"
)

// DefaultResidualThreshold is the volume residual, ml, tolerated by Stability.
const DefaultResidualThreshold = 1.0

// Stability is the fraction of recorded points whose blood volume residual
// stays within the threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "volume_stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(smp *cardio.Sample) {
	for _, r := range smp.Residual {
		s.samples++
		if math.Abs(r) > s.threshold || math.IsNaN(r) {
			s.violations++
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
