package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/cvsim/internal/cardio"
	"github.com/san-kum/cvsim/internal/decimate"
	"github.com/san-kum/cvsim/internal/metrics"
	"github.com/san-kum/cvsim/internal/sim"
)

type Registry struct {
	decimators map[string]func() cardio.Decimator
	metrics    map[string]func() sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		decimators: make(map[string]func() cardio.Decimator),
		metrics:    make(map[string]func() sim.Metric),
	}

	r.decimators["turning_point"] = func() cardio.Decimator { return decimate.TurningPoint{} }
	r.decimators["none"] = func() cardio.Decimator { return cardio.Identity }

	r.metrics["mean_arterial_pressure"] = func() sim.Metric { return metrics.NewMeanArterialPressure() }
	r.metrics["systolic_pressure"] = func() sim.Metric { return metrics.NewSystolicPressure() }
	r.metrics["diastolic_pressure"] = func() sim.Metric { return metrics.NewDiastolicPressure() }
	r.metrics["heart_rate"] = func() sim.Metric { return metrics.NewHeartRate() }
	r.metrics["cardiac_output"] = func() sim.Metric { return metrics.NewCardiacOutput() }
	r.metrics["stroke_volume"] = func() sim.Metric { return metrics.NewStrokeVolume() }
	r.metrics["lv_peak_pressure"] = func() sim.Metric { return metrics.NewLVPeak() }
	r.metrics["volume_stability"] = func() sim.Metric { return metrics.NewStability(metrics.DefaultResidualThreshold) }

	return r
}

func (r *Registry) GetDecimator(name string) (cardio.Decimator, error) {
	fn, ok := r.decimators[name]
	if !ok {
		return nil, fmt.Errorf("unknown decimation: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetMetric(name string) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns a fresh instance of every registered metric.
func (r *Registry) DefaultMetrics() []sim.Metric {
	names := r.ListMetrics()
	out := make([]sim.Metric, 0, len(names))
	for _, name := range names {
		out = append(out, r.metrics[name]())
	}
	return out
}
