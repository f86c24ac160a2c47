package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/cvsim/internal/cardio"
)

func testConfig() Config {
	return Config{
		Dt:          cardio.DefaultStepSize,
		Duration:    0.2,
		Compression: 10,
	}
}

func TestSimulatorRun(t *testing.T) {
	sim := New(cardio.New(cardio.DefaultParams()), nil)

	result, err := sim.Run(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Samples != 20 {
		t.Errorf("expected 20 samples, got %d", result.Samples)
	}
	if result.Series.Len() != 200 {
		t.Errorf("expected 200 points, got %d", result.Series.Len())
	}

	// Each step advances by the step actually taken, which the adaptive
	// integrator may shrink below the nominal size.
	times := result.Series.Time
	last := times[len(times)-1]
	if last != sim.Engine().Time() {
		t.Errorf("expected final time %f to match the engine, got %f", sim.Engine().Time(), last)
	}
	if last <= 0.1 || last > 0.2+1e-12 {
		t.Errorf("expected final time within (0.1, 0.2], got %f", last)
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			t.Fatalf("time does not advance at point %d: %f after %f", i, times[i], times[i-1])
		}
	}
	if math.Abs(result.Residual) > 0.01 {
		t.Errorf("unexpected volume residual %f", result.Residual)
	}
	if result.Estimate.Pressures[cardio.AscendingAorta] <= 0 {
		t.Error("expected the estimate to be reported")
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(cardio.New(cardio.DefaultParams()), nil)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0, Compression: 1}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0, Compression: 1}},
		{"zero duration", Config{Dt: 0.1, Duration: 0, Compression: 1}},
		{"negative duration", Config{Dt: 0.1, Duration: -1.0, Compression: 1}},
		{"zero compression", Config{Dt: 0.1, Duration: 1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), tt.cfg)
			if err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(s *cardio.Sample) {
	t.count++
	for _, v := range s.Pressure[cardio.AscendingAorta] {
		t.sum += v
	}
}
func (t *testMetric) Value() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sum / float64(t.count)
}
func (t *testMetric) Reset() {
	t.count = 0
	t.sum = 0
}

func TestSimulatorMetrics(t *testing.T) {
	sim := New(cardio.New(cardio.DefaultParams()), nil)

	metric := &testMetric{}
	sim.AddMetric(metric)

	result, err := sim.Run(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}
	if metric.count != 20 {
		t.Errorf("expected 20 observations, got %d", metric.count)
	}
}

func TestSimulatorObserver(t *testing.T) {
	sim := New(cardio.New(cardio.DefaultParams()), nil)

	var seen []cardio.Flags
	sim.AddObserver(ObserverFunc(func(now float64, e *cardio.Engine, f *cardio.Flags) error {
		if now >= 0.1 {
			f.ArterialBaroreflex = true
		}
		seen = append(seen, *f)
		return nil
	}))

	if _, err := sim.Run(context.Background(), testConfig()); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(seen) != 20 {
		t.Fatalf("expected 20 calls, got %d", len(seen))
	}
	if seen[0].ArterialBaroreflex || !seen[19].ArterialBaroreflex {
		t.Errorf("expected the gate to switch mid run, got %v and %v", seen[0], seen[19])
	}
}

func TestSimulatorObserverAborts(t *testing.T) {
	sim := New(cardio.New(cardio.DefaultParams()), nil)
	stop := errors.New("stop")
	sim.AddObserver(ObserverFunc(func(now float64, e *cardio.Engine, f *cardio.Flags) error {
		if now >= 0.05 {
			return stop
		}
		return nil
	}))

	result, err := sim.Run(context.Background(), testConfig())
	if !errors.Is(err, stop) {
		t.Fatalf("expected observer error, got %v", err)
	}
	if result == nil || result.Samples == 0 || result.Samples >= 20 {
		t.Errorf("expected a partial result, got %+v", result)
	}
}

func TestSimulatorCancel(t *testing.T) {
	sim := New(cardio.New(cardio.DefaultParams()), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := sim.Run(ctx, testConfig())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.Samples != 0 {
		t.Errorf("expected no samples, got %d", result.Samples)
	}
}

func TestRunWithCallback(t *testing.T) {
	sim := New(cardio.New(cardio.DefaultParams()), nil)
	cfg := testConfig()
	cfg.Duration = 0

	count := 0
	err := sim.RunWithCallback(context.Background(), cfg, func(s *cardio.Sample) bool {
		count++
		return count < 3
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 samples, got %d", count)
	}
}

func TestEnsembleRun(t *testing.T) {
	slow := cardio.DefaultParams()
	slow[cardio.NominalHeartRate] = 60
	fast := cardio.DefaultParams()
	fast[cardio.NominalHeartRate] = 90

	cfg := testConfig()
	jobs := []Job{
		{Name: "slow", Params: slow, Config: cfg},
		{Name: "fast", Params: fast, Config: cfg},
	}
	ens := NewEnsemble(2, func() []Metric { return []Metric{&testMetric{}} }, nil)

	results, err := ens.Run(context.Background(), jobs)
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Samples != 20 {
			t.Errorf("job %s: expected 20 samples, got %d", jobs[i].Name, res.Samples)
		}
	}
	if math.Abs(results[0].Series.HeartRate[0]-60) > 1e-9 || math.Abs(results[1].Series.HeartRate[0]-90) > 1e-9 {
		t.Errorf("results out of job order: %f %f", results[0].Series.HeartRate[0], results[1].Series.HeartRate[0])
	}
}

func TestEnsembleFailure(t *testing.T) {
	bad := cardio.DefaultParams()
	for _, c := range cardio.Compartments() {
		bad[cardio.ComplianceOf(c)] = 1e-9
	}
	bad[cardio.RightVentricularSystolicCompliance] = 1e-10
	bad[cardio.LeftVentricularSystolicCompliance] = 1e-10
	for s := cardio.Segment(0); s < cardio.NumSegments; s++ {
		bad[cardio.ResistanceOf(s)] = 1e9
	}

	cfg := testConfig()
	jobs := []Job{
		{Name: "ok", Params: cardio.DefaultParams(), Config: cfg},
		{Name: "bad", Params: bad, Config: cfg},
	}
	if _, err := NewEnsemble(0, nil, nil).Run(context.Background(), jobs); err == nil {
		t.Error("expected ensemble error")
	}
}
