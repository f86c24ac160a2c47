package cardio

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/cvsim/internal/dynamo"
)

const (
	// The estimator solves for the 21 compartment pressures, with the
	// ventricles at end diastole, plus the two end-systolic ventricular
	// pressures.
	rvSystolic  = NumCompartments
	lvSystolic  = NumCompartments + 1
	numUnknowns = NumCompartments + 2

	pivotEpsilon    = 1e-5
	volumeTolerance = 1e-11
	stagnationFloor = 1e-9
	maxNewtonIters  = 100
)

// Estimate is the steady-state operating point of the circulation.
type Estimate struct {
	// Pressures holds the compartment pressures with the ventricles at end
	// diastole.
	Pressures [NumCompartments]float64
	// RightSystolic and LeftSystolic are the end-systolic ventricular pressures.
	RightSystolic float64
	LeftSystolic  float64
	// VolumeError is the total blood volume mismatch of the solution.
	VolumeError float64
	Iterations  int
}

type network struct {
	p    *Params
	a    *mat.Dense
	rhs  []float64
	tsys float64
}

// conductance adds a two-terminal conductance to the node balances of i and j.
func (n *network) conductance(row map[int]int, i, j int, g float64) {
	if r, ok := row[i]; ok {
		n.a.Set(r, i, n.a.At(r, i)-g)
		n.a.Set(r, j, n.a.At(r, j)+g)
	}
	if r, ok := row[j]; ok {
		n.a.Set(r, j, n.a.At(r, j)-g)
		n.a.Set(r, i, n.a.At(r, i)+g)
	}
}

func (n *network) volumeTarget() float64 {
	p := n.p
	thoracic := 0.0
	for c := 0; c < NumCompartments; c++ {
		if Compartment(c).Thoracic() {
			thoracic += p[compliances[c]]
		}
	}
	return p[TotalBloodVolume] - p.TotalZeroVolume() + p[IntrathoracicPressure]*thoracic
}

// assemble builds the linearized steady-state network: the total blood
// volume in row 0, the node balances of the vascular compartments, and the
// ventricular balance and stroke equations with valve conductances weighted
// by the fraction of the cycle each valve is open.
func assemble(p *Params) *network {
	n := &network{p: p, a: mat.NewDense(numUnknowns, numUnknowns, nil), rhs: make([]float64, numUnknowns)}

	period := 60 / p[NominalHeartRate]
	n.tsys = p[VentricularSystoleInterval] * math.Sqrt(period)
	tdias := period - n.tsys
	g := func(q Param) float64 { return 1 / p[q] }

	dav := n.tsys / period * g(AorticValveResistance)
	dpv := n.tsys / period * g(PulmonicValveResistance)
	dtv := tdias / period * g(TricuspidValveResistance)
	dmv := tdias / period * g(MitralValveResistance)

	for c := 0; c < NumCompartments; c++ {
		n.a.Set(0, c, p[compliances[c]])
	}
	n.rhs[0] = n.volumeTarget()

	// The superior vena cava balance follows from the others; its row holds
	// the ascending aorta balance instead.
	row := map[int]int{int(AscendingAorta): int(SuperiorVenaCava)}
	for c := int(Brachiocephalic); c <= int(RightAtrium); c++ {
		if c != int(SuperiorVenaCava) {
			row[c] = c
		}
	}

	edges := []struct {
		i, j Compartment
		g    float64
	}{
		{AscendingAorta, Brachiocephalic, g(BrachiocephalicResistance)},
		{AscendingAorta, ThoracicAorta, g(ThoracicAortaResistance)},
		{Brachiocephalic, UpperBodyArteries, g(UpperBodyArteriesResistance)},
		{UpperBodyArteries, UpperBodyVeins, g(UpperBodyMicroResistance)},
		{UpperBodyVeins, SuperiorVenaCava, g(UpperBodyVeinsResistance)},
		{ThoracicAorta, AbdominalAorta, g(AbdominalAortaResistance)},
		{AbdominalAorta, RenalArteries, g(RenalArteriesResistance)},
		{AbdominalAorta, SplanchnicArteries, g(SplanchnicArteriesResistance)},
		{AbdominalAorta, LegArteries, g(LegArteriesResistance)},
		{RenalArteries, RenalVeins, g(RenalMicroResistance)},
		{RenalVeins, AbdominalVeins, g(RenalVeinsResistance)},
		{SplanchnicArteries, SplanchnicVeins, g(SplanchnicMicroResistance)},
		{SplanchnicVeins, AbdominalVeins, g(SplanchnicVeinsResistance)},
		{LegArteries, LegVeins, g(LegMicroResistance)},
		{LegVeins, AbdominalVeins, g(LegVeinsResistance)},
		{AbdominalVeins, InferiorVenaCava, g(AbdominalVeinsResistance)},
		{InferiorVenaCava, RightAtrium, g(InferiorVenaCavaResistance)},
		{SuperiorVenaCava, RightAtrium, g(SuperiorVenaCavaResistance)},
		{RightAtrium, RightVentricle, dtv},
	}
	for _, e := range edges {
		n.conductance(row, int(e.i), int(e.j), e.g)
	}
	// Left ventricular ejection into the ascending aorta.
	n.conductance(row, int(AscendingAorta), lvSystolic, dav)

	gpm := g(PulmonaryMicroResistance)
	gpv := g(PulmonaryVeinsResistance)
	itp := p[IntrathoracicPressure]
	set := func(r, c int, v float64) { n.a.Set(r, c, n.a.At(r, c)+v) }

	rv, pa, pv, la, lv := int(RightVentricle), int(PulmonaryArteries), int(PulmonaryVeins), int(LeftAtrium), int(LeftVentricle)

	set(rv, int(RightAtrium), dtv)
	set(rv, rv, -dtv)
	set(rv, rvSystolic, -dpv)
	set(rv, pa, dpv)

	set(pa, rvSystolic, dpv)
	set(pa, pa, -dpv-gpm)
	set(pa, pv, gpm)

	set(pv, pa, gpm)
	set(pv, pv, -gpm-gpv)
	set(pv, la, gpv)

	set(la, pv, gpv)
	set(la, la, -gpv-dmv)
	set(la, lv, dmv)

	set(lv, la, dmv)
	set(lv, lv, -dmv)
	set(lv, lvSystolic, -dav)
	set(lv, int(AscendingAorta), dav)

	crvd, crvs := p[RightVentricularDiastolicCompliance], p[RightVentricularSystolicCompliance]
	set(rvSystolic, rv, crvd)
	set(rvSystolic, rvSystolic, -(crvs + n.tsys*g(PulmonicValveResistance)))
	set(rvSystolic, pa, n.tsys*g(PulmonicValveResistance))
	n.rhs[rvSystolic] = itp * (crvd - crvs)

	clvd, clvs := p[LeftVentricularDiastolicCompliance], p[LeftVentricularSystolicCompliance]
	set(lvSystolic, int(AscendingAorta), n.tsys*g(AorticValveResistance))
	set(lvSystolic, lv, clvd)
	set(lvSystolic, lvSystolic, -(clvs + n.tsys*g(AorticValveResistance)))
	n.rhs[lvSystolic] = itp * (clvd - clvs)

	return n
}

// GaussJordan solves a·x = b by Gauss-Jordan elimination with partial
// pivoting. Neither argument is modified. A pivot smaller than 1e-5 in
// magnitude is reported as ErrSingularMatrix.
func GaussJordan(a mat.Matrix, b []float64) ([]float64, error) {
	r, c := a.Dims()
	if r != c || len(b) != r {
		return nil, fmt.Errorf("gauss-jordan: %dx%d system with %d right-hand sides", r, c, len(b))
	}
	m := mat.DenseCopyOf(a)
	x := make([]float64, r)
	copy(x, b)

	for col := 0; col < r; col++ {
		pivot := col
		for i := col + 1; i < r; i++ {
			if math.Abs(m.At(i, col)) > math.Abs(m.At(pivot, col)) {
				pivot = i
			}
		}
		if math.Abs(m.At(pivot, col)) < pivotEpsilon {
			return nil, fmt.Errorf("column %d pivot %g: %w", col, m.At(pivot, col), dynamo.ErrSingularMatrix)
		}
		if pivot != col {
			swapRows(m, pivot, col)
			x[pivot], x[col] = x[col], x[pivot]
		}

		inv := 1 / m.At(col, col)
		for j := col; j < r; j++ {
			m.Set(col, j, m.At(col, j)*inv)
		}
		x[col] *= inv

		for i := 0; i < r; i++ {
			if i == col {
				continue
			}
			f := m.At(i, col)
			if f == 0 {
				continue
			}
			for j := col; j < r; j++ {
				m.Set(i, j, m.At(i, j)-f*m.At(col, j))
			}
			x[i] -= f * x[col]
		}
	}
	return x, nil
}

func swapRows(m *mat.Dense, i, j int) {
	ri := mat.Row(nil, i, m)
	rj := mat.Row(nil, j, m)
	m.SetRow(i, rj)
	m.SetRow(j, ri)
}

// volumeError is the total blood volume row evaluated with the nonlinear
// venous laws in place of their linearizations.
func (n *network) volumeError(b []float64) float64 {
	p := n.p
	v := 0.0
	for c := 0; c < NumCompartments; c++ {
		cp := p[compliances[c]]
		if bed, ok := nonlinear(Compartment(c)); ok {
			v += stressedVolume(b[c], cp, p[bed.vmax])
			continue
		}
		v += cp * b[c]
	}
	return n.rhs[0] - v
}

// EstimateSteadyState computes the operating point of the circulation for p.
// The linear network is solved first; the nonlinear venous laws are then
// brought in by modified Newton iterations on the volume row.
func EstimateSteadyState(p *Params) (Estimate, error) {
	n := assemble(p)
	b, err := GaussJordan(n.a, n.rhs)
	if err != nil {
		return Estimate{}, fmt.Errorf("estimate: linear network: %w", err)
	}

	jac := mat.DenseCopyOf(n.a)
	f := make([]float64, numUnknowns)
	res := make([]float64, numUnknowns)

	last := math.Inf(1)
	iter := 0
	verr := n.volumeError(b)
	for math.Abs(verr) >= volumeTolerance {
		if iter >= maxNewtonIters {
			return Estimate{}, fmt.Errorf("estimate: volume error %g after %d iterations: %w", verr, iter, dynamo.ErrNoConvergence)
		}
		if math.Abs(verr) < stagnationFloor && math.Abs(verr) >= last {
			break
		}
		last = math.Abs(verr)

		mat.NewVecDense(numUnknowns, res).MulVec(n.a, mat.NewVecDense(numUnknowns, b))
		for i := range f {
			f[i] = n.rhs[i] - res[i]
		}
		f[0] = verr
		for _, bed := range nonlinearBeds {
			jac.Set(0, int(bed.c), effectiveCompliance(b[bed.c], p[compliances[bed.c]], p[bed.vmax]))
		}

		delta, err := GaussJordan(jac, f)
		if err != nil {
			return Estimate{}, fmt.Errorf("estimate: newton step %d: %w", iter, err)
		}
		for i := range b {
			b[i] += delta[i]
		}
		verr = n.volumeError(b)
		iter++
	}

	var est Estimate
	copy(est.Pressures[:], b[:NumCompartments])
	est.RightSystolic = b[rvSystolic]
	est.LeftSystolic = b[lvSystolic]
	est.VolumeError = verr
	est.Iterations = iter
	return est, nil
}

// initialState lays out the state and reflex defaults around an estimate.
func initialState(p *Params, est Estimate) (State, Reflex) {
	var s State
	copy(s.Pressure[:NumCompartments], est.Pressures[:])
	s.Pressure[Intrathoracic] = p[IntrathoracicPressure]
	s.EndSystolic = [2]float64{p[RightVentricularSystolicCompliance], p[LeftVentricularSystolicCompliance]}

	period := 60 / p[NominalHeartRate]
	scale := math.Sqrt(period)
	pr := p[PRInterval] * scale
	s.Time = Timing{
		PR:                 pr,
		AtrialSystole:      p[AtrialSystoleInterval] * scale,
		VentricularSystole: p[VentricularSystoleInterval] * scale,
		Ventricular:        -pr,
	}
	s.Next = NextCycle{
		PR:                 s.Time.PR,
		AtrialSystole:      s.Time.AtrialSystole,
		VentricularSystole: s.Time.VentricularSystole,
		VentricularClock:   -pr,
	}

	r := Reflex{
		HeartRate:   p[NominalHeartRate],
		Cumulative:  p[NominalHeartRate],
		BeatRate:    p[NominalHeartRate],
		EndSystolic: s.EndSystolic,
		Steps:       1,
	}
	for k := 0; k < numBeds; k++ {
		r.Resistance[k] = p[bedMicroResistance[k]]
		r.Volume[k] = p[bedVenousVolume[k]]
	}
	return s, r
}
