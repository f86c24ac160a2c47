package cardio

import "fmt"

// Decimator compresses one raw series recorded over a sample.
type Decimator interface {
	Decimate(x []float64, factor int) []float64
}

// DecimatorFunc adapts a function to Decimator.
type DecimatorFunc func(x []float64, factor int) []float64

func (f DecimatorFunc) Decimate(x []float64, factor int) []float64 { return f(x, factor) }

// Identity keeps every recorded step.
var Identity Decimator = DecimatorFunc(func(x []float64, _ int) []float64 { return x })

var bedNames = [numBeds]string{"upper_body", "renal", "splanchnic", "leg"}

// Sample holds the series recorded over one AdvanceSample call, one entry
// per integration step before decimation.
type Sample struct {
	Time         []float64
	Pressure     [NumPressures][]float64
	Flow         [NumSegments][]float64
	Volume       [NumCompartments][]float64
	HeartRate    []float64
	EndSystolic  [2][]float64
	Resistance   [numBeds][]float64
	VenousVolume [numBeds][]float64
	Residual     []float64
}

type seriesRef struct {
	name string
	v    *[]float64
}

func (s *Sample) refs() []seriesRef {
	refs := make([]seriesRef, 0, 1+int(NumPressures)+int(NumSegments)+NumCompartments+12)
	refs = append(refs, seriesRef{"time", &s.Time})
	for i := range s.Pressure {
		refs = append(refs, seriesRef{"pressure." + Compartment(i).String(), &s.Pressure[i]})
	}
	for i := range s.Flow {
		refs = append(refs, seriesRef{"flow." + Segment(i).String(), &s.Flow[i]})
	}
	for i := range s.Volume {
		refs = append(refs, seriesRef{"volume." + Compartment(i).String(), &s.Volume[i]})
	}
	refs = append(refs,
		seriesRef{"heart_rate", &s.HeartRate},
		seriesRef{"end_systolic.right_ventricle", &s.EndSystolic[0]},
		seriesRef{"end_systolic.left_ventricle", &s.EndSystolic[1]},
	)
	for k := range s.Resistance {
		refs = append(refs, seriesRef{"resistance." + bedNames[k], &s.Resistance[k]})
	}
	for k := range s.VenousVolume {
		refs = append(refs, seriesRef{"venous_volume." + bedNames[k], &s.VenousVolume[k]})
	}
	return append(refs, seriesRef{"residual", &s.Residual})
}

func newSample(n int) *Sample {
	s := &Sample{}
	for _, ref := range s.refs() {
		*ref.v = make([]float64, 0, n)
	}
	return s
}

func (s *Sample) record(st *State, r *Reflex, residual float64) {
	s.Time = append(s.Time, st.Time.Absolute)
	for i, v := range st.Pressure {
		s.Pressure[i] = append(s.Pressure[i], v)
	}
	for i, v := range st.Flow {
		s.Flow[i] = append(s.Flow[i], v)
	}
	for i, v := range st.Volume {
		s.Volume[i] = append(s.Volume[i], v)
	}
	s.HeartRate = append(s.HeartRate, r.HeartRate)
	s.EndSystolic[0] = append(s.EndSystolic[0], r.EndSystolic[0])
	s.EndSystolic[1] = append(s.EndSystolic[1], r.EndSystolic[1])
	for k := 0; k < numBeds; k++ {
		s.Resistance[k] = append(s.Resistance[k], r.Resistance[k])
		s.VenousVolume[k] = append(s.VenousVolume[k], r.Volume[k])
	}
	s.Residual = append(s.Residual, residual)
}

func (s *Sample) decimate(d Decimator, factor int) {
	if d == nil {
		return
	}
	for _, ref := range s.refs() {
		*ref.v = d.Decimate(*ref.v, factor)
	}
}

// Len returns the number of points in the sample.
func (s *Sample) Len() int { return len(s.Time) }

// Names lists the series of a sample in a stable order.
func (s *Sample) Names() []string {
	refs := s.refs()
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.name
	}
	return names
}

// Series looks a series up by name, e.g. "pressure.left_ventricle".
func (s *Sample) Series(name string) ([]float64, error) {
	for _, ref := range s.refs() {
		if ref.name == name {
			return *ref.v, nil
		}
	}
	return nil, fmt.Errorf("unknown series %q", name)
}

// Append concatenates other onto s.
func (s *Sample) Append(other *Sample) {
	dst, src := s.refs(), other.refs()
	for i := range dst {
		*dst[i].v = append(*dst[i].v, *src[i].v...)
	}
}
