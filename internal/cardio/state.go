package cardio

// Chamber indexes the four time-varying compliances.
const (
	rightAtrium = iota
	rightVentricle
	leftAtrium
	leftVentricle
	numChambers
)

// Timing is the cardiac clock. Cardiac is the time since the last atrial
// onset; Ventricular is the time since the last ventricular onset and is
// negative during the PR delay.
type Timing struct {
	Absolute           float64
	Cardiac            float64
	PR                 float64
	AtrialSystole      float64
	VentricularSystole float64
	Ventricular        float64
	// Modified is the time the equations are evaluated at.
	Modified float64
}

// NextCycle holds the intervals staged for the next cycle and the clocks the
// pacemaker uses while a ventricular contraction is still gated.
type NextCycle struct {
	PR                 float64
	AtrialSystole      float64
	VentricularSystole float64
	AtrialClock        float64
	VentricularClock   float64
}

// Tilt holds the orthostatic perturbation derived from the tilt schedule.
type Tilt struct {
	Gravity      [15]float64
	Leak         [3]float64
	SensedOffset float64
	VolumeLoss   float64
	Angle        float64
}

// State is the physiological state of the circulation. It contains only
// arrays so a value copy is an independent snapshot.
type State struct {
	Pressure   Pressures
	Derivative Pressures
	Flow       Flows
	Volume     Volumes

	// Instantaneous chamber compliances and their time derivatives,
	// ordered right atrium, right ventricle, left atrium, left ventricle.
	Compliance     [numChambers]float64
	ComplianceRate [numChambers]float64

	// EndSystolic is the ventricular end-systolic compliance latched at the
	// last ventricular onset.
	EndSystolic [2]float64

	Time Timing
	Next NextCycle
	Tilt Tilt
}

// ChamberCompliance returns the instantaneous compliance of a heart chamber.
func (s *State) ChamberCompliance(c Compartment) (float64, bool) {
	i, ok := chamberIndex(c)
	if !ok {
		return 0, false
	}
	return s.Compliance[i], true
}

func chamberIndex(c Compartment) (int, bool) {
	switch c {
	case RightAtrium:
		return rightAtrium, true
	case RightVentricle:
		return rightVentricle, true
	case LeftAtrium:
		return leftAtrium, true
	case LeftVentricle:
		return leftVentricle, true
	}
	return 0, false
}

// Reflex is the effector state driven by the pacemaker and the reflex
// controller. Resistance and Volume are ordered upper body, renal,
// splanchnic, leg.
type Reflex struct {
	HeartRate   float64
	Cumulative  float64
	BeatRate    float64
	EndSystolic [2]float64
	Resistance  [4]float64
	Volume      [4]float64
	Steps       int
}

// Vascular beds under reflex control.
const (
	bedUpperBody = iota
	bedRenal
	bedSplanchnic
	bedLeg
	numBeds
)

var (
	bedMicroResistance = [numBeds]Param{UpperBodyMicroResistance, RenalMicroResistance, SplanchnicMicroResistance, LegMicroResistance}
	bedVenousVolume    = [numBeds]Param{UpperBodyVeinsVolume, RenalVeinsVolume, SplanchnicVeinsVolume, LegVeinsVolume}
	bedVein            = [numBeds]Compartment{UpperBodyVeins, RenalVeins, SplanchnicVeins, LegVeins}
)

// venousBed reports which reflex-controlled bed a venous compartment belongs to.
func venousBed(c Compartment) (int, bool) {
	for k, v := range bedVein {
		if v == c {
			return k, true
		}
	}
	return 0, false
}

// Flags selects the feedback loops and the perturbation applied while stepping.
type Flags struct {
	ArterialBaroreflex bool
	Cardiopulmonary    bool
	Tilt               bool
	// TiltStop overrides the time the table starts tilting back. Zero
	// schedules it after the tilt duration.
	TiltStop float64
}

// DefaultFlags enables both reflexes with the tilt table at rest.
func DefaultFlags() Flags {
	return Flags{ArterialBaroreflex: true, Cardiopulmonary: true}
}
