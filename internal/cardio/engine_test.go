package cardio

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/cvsim/internal/dynamo"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e := New(DefaultParams(), opts...)
	if err := e.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return e
}

func run(t *testing.T, e *Engine, steps int, f Flags) {
	t.Helper()
	for i := 0; i < steps; i++ {
		if _, err := e.Step(DefaultStepSize, f); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

func TestStepBeforeInitialize(t *testing.T) {
	e := New(DefaultParams())
	if _, err := e.Step(DefaultStepSize, Flags{}); !errors.Is(err, dynamo.ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}

func TestInitializeConservesVolume(t *testing.T) {
	e := newTestEngine(t)
	s := e.State()
	p := e.Params()
	if d := math.Abs(s.Volume.Total() - p[TotalBloodVolume]); d > 1e-9 {
		t.Errorf("expected total volume %f, off by %g", p[TotalBloodVolume], d)
	}
	if s.Pressure[Intrathoracic] != p[IntrathoracicPressure] {
		t.Errorf("expected intrathoracic pressure %f, got %f", p[IntrathoracicPressure], s.Pressure[Intrathoracic])
	}
	if s.Pressure[AbdominalBias] != 0 || s.Pressure[LegBias] != 0 || s.Pressure[SensedPressure] != 0 {
		t.Error("expected zero bias pressures")
	}
}

func TestInitializeRejectsSingularNetwork(t *testing.T) {
	p := DefaultParams()
	for c := 0; c < NumCompartments; c++ {
		p[compliances[c]] = 1e-9
	}
	p[RightVentricularSystolicCompliance] = 1e-10
	p[LeftVentricularSystolicCompliance] = 1e-10
	for s := 0; s < int(NumSegments); s++ {
		p[resistances[s]] = 1e9
	}
	e := New(p)
	if err := e.Initialize(); !errors.Is(err, dynamo.ErrSingularMatrix) {
		t.Errorf("expected ErrSingularMatrix, got %v", err)
	}
}

func TestReflexOffKeepsNominalEffectors(t *testing.T) {
	e := newTestEngine(t)
	run(t, e, 2000, Flags{})

	p, r := e.Params(), e.Reflex()
	if r.HeartRate != 60/(60/p[NominalHeartRate]) {
		t.Errorf("expected nominal heart rate, got %f", r.HeartRate)
	}
	for k := 0; k < numBeds; k++ {
		if r.Resistance[k] != p[bedMicroResistance[k]] {
			t.Errorf("bed %d: resistance %f", k, r.Resistance[k])
		}
		if r.Volume[k] != p[bedVenousVolume[k]] {
			t.Errorf("bed %d: volume %f", k, r.Volume[k])
		}
	}
	for k, v := range e.Responses() {
		if v != 0 {
			t.Errorf("%s: expected zero response, got %f", KernelName(k), v)
		}
	}
}

func TestVolumeCorrection(t *testing.T) {
	tests := []struct {
		name    string
		correct bool
	}{
		{"residual persists without correction", false},
		{"residual removed with correction", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, WithVolumeCorrection(tt.correct))
			s := e.State()
			if err := e.UpdatePressure(SplanchnicArteries, s.Pressure[SplanchnicArteries]+10); err != nil {
				t.Fatalf("update: %v", err)
			}
			want := -10 * e.Params()[SplanchnicArteriesCompliance]
			if math.Abs(e.Residual()-want) > 1e-9 {
				t.Fatalf("expected residual %f, got %f", want, e.Residual())
			}

			run(t, e, 100, Flags{})
			if tt.correct {
				if math.Abs(e.Residual()) > 1e-6 {
					t.Errorf("expected corrected residual, got %g", e.Residual())
				}
				return
			}
			if math.Abs(e.Residual()-want) > 0.01 {
				t.Errorf("expected residual near %f, got %f", want, e.Residual())
			}
		})
	}
}

func TestZeroPressureVolumeRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		param Param
		value float64
	}{
		{"linear artery", UpperBodyArteriesVolume, 230},
		{"reflex venous bed", UpperBodyVeinsVolume, 600},
		{"nonlinear bed", SplanchnicVeinsVolume, 1250},
		{"nonlinear leg bed", LegVeinsVolume, 650},
		{"chamber", LeftVentricularVolume, 70},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			run(t, e, 50, DefaultFlags())
			c, _ := compartmentOf(tt.param)
			before := e.State()
			old := e.Params()[tt.param]

			if err := e.UpdateZeroPressureVolume(tt.param, tt.value); err != nil {
				t.Fatalf("update: %v", err)
			}
			mid := e.State()
			if math.Abs(mid.Volume[c]-before.Volume[c]) > 1e-9 {
				t.Errorf("volume changed from %f to %f", before.Volume[c], mid.Volume[c])
			}
			if err := e.UpdateZeroPressureVolume(tt.param, old); err != nil {
				t.Fatalf("restore: %v", err)
			}
			after := e.State()
			if math.Abs(after.Pressure[c]-before.Pressure[c]) > 1e-9 {
				t.Errorf("pressure %f not restored, got %f", before.Pressure[c], after.Pressure[c])
			}
		})
	}
}

func TestUpdateComplianceKeepsVolume(t *testing.T) {
	tests := []struct {
		name     string
		param    Param
		value    float64
		thoracic bool
	}{
		{"thoracic vessel", PulmonaryVeinsCompliance, 12, true},
		{"chamber", LeftVentricularDiastolicCompliance, 11, true},
		{"systemic vessel", RenalVeinsCompliance, 4, false},
		{"nonlinear bed", SplanchnicVeinsCompliance, 50, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			run(t, e, 30, DefaultFlags())
			c, _ := compartmentOf(tt.param)
			before := e.State().Volume[c]

			update := e.UpdateComplianceOutsideThorax
			if tt.thoracic {
				update = e.UpdateComplianceInsideThorax
			}
			if err := update(tt.param, tt.value); err != nil {
				t.Fatalf("update: %v", err)
			}
			if got := e.State().Volume[c]; math.Abs(got-before) > 1e-9 {
				t.Errorf("volume moved from %f to %f", before, got)
			}
			if e.Params()[tt.param] != tt.value {
				t.Errorf("param not stored")
			}
		})
	}
}

func TestUpdateComplianceWrongSide(t *testing.T) {
	e := newTestEngine(t)
	err := e.UpdateComplianceInsideThorax(LegVeinsCompliance, 10)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if e.Params()[LegVeinsCompliance] != 20 {
		t.Error("param changed by rejected update")
	}
}

func TestUpdateIntrathoracicPressure(t *testing.T) {
	e := newTestEngine(t)
	before := e.State()
	if err := e.UpdateIntrathoracicPressure(-8); err != nil {
		t.Fatalf("update: %v", err)
	}
	after := e.State()
	if after.Pressure[Intrathoracic] != -8 {
		t.Errorf("expected -8, got %f", after.Pressure[Intrathoracic])
	}
	for _, c := range Compartments() {
		if math.Abs(after.Volume[c]-before.Volume[c]) > 1e-9 {
			t.Errorf("%s: volume moved from %f to %f", c, before.Volume[c], after.Volume[c])
		}
		shifted := after.Pressure[c] - before.Pressure[c]
		if c.Thoracic() && math.Abs(shifted+4) > 1e-12 {
			t.Errorf("%s: expected shift -4, got %f", c, shifted)
		}
		if !c.Thoracic() && shifted != 0 {
			t.Errorf("%s: unexpected shift %f", c, shifted)
		}
	}
}

func TestUpdateTotalBloodVolume(t *testing.T) {
	e := newTestEngine(t)
	if err := e.UpdateTotalBloodVolume(4650); err != nil {
		t.Fatalf("update: %v", err)
	}
	s := e.State()
	if d := math.Abs(s.Volume.Total() - 4650); d > 1e-6 {
		t.Errorf("expected 4650 ml, off by %g", d)
	}
	if math.Abs(e.Residual()) > 1e-6 {
		t.Errorf("expected no residual, got %g", e.Residual())
	}

	err := e.UpdateTotalBloodVolume(2000)
	if !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
	if e.Params()[TotalBloodVolume] != 4650 {
		t.Error("rejected update changed the store")
	}
}

func TestUpdateParameter(t *testing.T) {
	e := newTestEngine(t)

	if err := e.UpdateParameter("nominal_heart_rate", 90); err != nil {
		t.Fatalf("update: %v", err)
	}
	if e.Params()[NominalHeartRate] != 90 {
		t.Error("heart rate not stored")
	}

	if err := e.UpdateParameter("beta_sympathetic_end", 20); err != nil {
		t.Fatalf("update kernel: %v", err)
	}
	want := NewKernel(2.5, 3.5, 20)
	if e.Kernels()[BetaSympathetic] != want {
		t.Error("kernel not rebuilt")
	}

	if err := e.UpdateParameter("mystery", 1); !errors.Is(err, dynamo.ErrUnknownParameter) {
		t.Errorf("expected ErrUnknownParameter, got %v", err)
	}
	if err := e.UpdateParameter("aortic_valve_resistance", -1); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
	if err := e.UpdatePressure(Intrathoracic, 3); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected rejection of a bias slot, got %v", err)
	}
}

func TestAdvanceSample(t *testing.T) {
	halve := DecimatorFunc(func(x []float64, factor int) []float64 {
		out := make([]float64, 0, len(x)/2)
		for i := 1; i < len(x); i += 2 {
			out = append(out, x[i])
		}
		return out
	})
	e := newTestEngine(t, WithDecimator(halve))

	smp, err := e.AdvanceSample(10, DefaultFlags())
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if smp.Len() != 5 {
		t.Fatalf("expected 5 points, got %d", smp.Len())
	}
	lv, err := smp.Series("pressure.left_ventricle")
	if err != nil || len(lv) != 5 {
		t.Fatalf("expected 5 LV points, got %d (%v)", len(lv), err)
	}
	if math.Abs(smp.Time[4]-e.Time()) > 1e-12 {
		t.Errorf("expected last time %f, got %f", e.Time(), smp.Time[4])
	}
	if _, err := e.AdvanceSample(0, DefaultFlags()); err == nil {
		t.Error("expected error for zero factor")
	}
}

func TestResetClearsController(t *testing.T) {
	e := newTestEngine(t)
	s := e.State()
	if err := e.UpdatePressure(AscendingAorta, s.Pressure[AscendingAorta]+40); err != nil {
		t.Fatalf("update: %v", err)
	}
	run(t, e, 1500, Flags{ArterialBaroreflex: true})
	if e.Responses()[Parasympathetic] == 0 {
		t.Fatal("expected a parasympathetic response")
	}
	e.Reset()
	if e.Responses() != [NumKernels]float64{} {
		t.Errorf("expected cleared responses, got %v", e.Responses())
	}
}

func TestStepAdvancesByStepTaken(t *testing.T) {
	e := newTestEngine(t)
	n := 300
	for i := 0; i < n; i++ {
		before := e.Time()
		if _, err := e.Step(DefaultStepSize, DefaultFlags()); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if d := e.Time() - before; d <= 0 || d > DefaultStepSize+1e-15 {
			t.Fatalf("step %d advanced by %g, want (0, %g]", i, d, DefaultStepSize)
		}
	}
	if e.Time() > float64(n)*DefaultStepSize+1e-12 {
		t.Errorf("expected at most %f s, got %f", float64(n)*DefaultStepSize, e.Time())
	}
}
