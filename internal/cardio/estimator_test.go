package cardio

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/cvsim/internal/dynamo"
)

func TestGaussJordanMatchesGonum(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const n = 12

	a := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a.Set(i, j, rng.Float64()-0.5)
		}
		a.Set(i, i, a.At(i, i)+float64(n))
	}
	b := make([]float64, n)
	for i := range b {
		b[i] = rng.Float64() * 10
	}
	orig := mat.DenseCopyOf(a)

	got, err := GaussJordan(a, b)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}

	var want mat.VecDense
	if err := want.SolveVec(a, mat.NewVecDense(n, append([]float64(nil), b...))); err != nil {
		t.Fatalf("gonum solve: %v", err)
	}
	for i := 0; i < n; i++ {
		if math.Abs(got[i]-want.AtVec(i)) > 1e-10 {
			t.Errorf("x[%d]: expected %f, got %f", i, want.AtVec(i), got[i])
		}
	}
	if !mat.Equal(a, orig) {
		t.Error("input matrix modified")
	}
}

func TestGaussJordanPivots(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{0, 1, 1, 0})
	x, err := GaussJordan(a, []float64{2, 3})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if x[0] != 3 || x[1] != 2 {
		t.Errorf("expected [3 2], got %v", x)
	}
}

func TestGaussJordanSingular(t *testing.T) {
	tests := []struct {
		name string
		a    *mat.Dense
	}{
		{"zero column", mat.NewDense(2, 2, []float64{1, 0, 2, 0})},
		{"dependent rows", mat.NewDense(2, 2, []float64{1, 2, 2, 4})},
		{"tiny pivot", mat.NewDense(2, 2, []float64{1e-7, 0, 0, 1})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GaussJordan(tt.a, []float64{1, 1})
			if !errors.Is(err, dynamo.ErrSingularMatrix) {
				t.Errorf("expected ErrSingularMatrix, got %v", err)
			}
		})
	}
}

func TestEstimateSteadyState(t *testing.T) {
	p := DefaultParams()
	est, err := EstimateSteadyState(&p)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if math.Abs(est.VolumeError) >= 1e-9 {
		t.Errorf("volume error %g", est.VolumeError)
	}

	P := est.Pressures
	chain := []Compartment{AscendingAorta, ThoracicAorta, AbdominalAorta, SplanchnicArteries, SplanchnicVeins, AbdominalVeins, InferiorVenaCava, RightAtrium}
	for i := 1; i < len(chain); i++ {
		if P[chain[i]] >= P[chain[i-1]] {
			t.Errorf("expected %s (%f) below %s (%f)", chain[i], P[chain[i]], chain[i-1], P[chain[i-1]])
		}
	}
	if est.LeftSystolic <= P[AscendingAorta] {
		t.Errorf("expected LV systolic %f above aortic %f", est.LeftSystolic, P[AscendingAorta])
	}
	if est.RightSystolic <= P[PulmonaryArteries] {
		t.Errorf("expected RV systolic %f above pulmonary %f", est.RightSystolic, P[PulmonaryArteries])
	}
}

func TestEstimateSingularNetwork(t *testing.T) {
	p := DefaultParams()
	for c := 0; c < NumCompartments; c++ {
		p[compliances[c]] = 1e-9
	}
	p[RightVentricularSystolicCompliance] = 1e-10
	p[LeftVentricularSystolicCompliance] = 1e-10
	for s := 0; s < int(NumSegments); s++ {
		p[resistances[s]] = 1e9
	}
	if _, err := EstimateSteadyState(&p); !errors.Is(err, dynamo.ErrSingularMatrix) {
		t.Errorf("expected ErrSingularMatrix, got %v", err)
	}
}

func TestArctangentLaw(t *testing.T) {
	const c, vmax = 60.0, 1500.0
	for _, x := range []float64{-20, -1, 0, 3, 15, 40} {
		v := stressedVolume(x, c, vmax)
		var g dynamo.Guard
		back := transmuralPressure(v, c, vmax, &g)
		if err := g.Err(); err != nil {
			t.Fatalf("x=%f: %v", x, err)
		}
		if math.Abs(back-x) > 1e-9 {
			t.Errorf("x=%f: round trip gave %f", x, back)
		}

		h := 1e-5
		fd := (stressedVolume(x+h, c, vmax) - stressedVolume(x-h, c, vmax)) / (2 * h)
		if eff := effectiveCompliance(x, c, vmax); math.Abs(fd-eff) > 1e-5 {
			t.Errorf("x=%f: expected compliance %f, got %f", x, fd, eff)
		}
	}
	if effectiveCompliance(0, c, vmax) != c {
		t.Error("expected linear compliance at zero transmural pressure")
	}

	var g dynamo.Guard
	transmuralPressure(vmax, c, vmax, &g)
	if !errors.Is(g.Err(), dynamo.ErrNonFinite) {
		t.Errorf("expected ErrNonFinite at saturation, got %v", g.Err())
	}
}
