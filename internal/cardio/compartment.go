package cardio

import (
	"fmt"
	"strings"
)

// Compartment indexes the pressure space. The first NumCompartments entries
// are physical compartments that also carry a volume; the remaining slots are
// external pressures that only bias the equations.
type Compartment int

const (
	AscendingAorta Compartment = iota
	Brachiocephalic
	UpperBodyArteries
	UpperBodyVeins
	SuperiorVenaCava
	ThoracicAorta
	AbdominalAorta
	RenalArteries
	RenalVeins
	SplanchnicArteries
	SplanchnicVeins
	LegArteries
	LegVeins
	AbdominalVeins
	InferiorVenaCava
	RightAtrium
	RightVentricle
	PulmonaryArteries
	PulmonaryVeins
	LeftAtrium
	LeftVentricle

	// AbdominalBias is the external pressure around the abdominal compartments.
	AbdominalBias
	// LegBias is the external pressure around the leg compartments.
	LegBias
	// SensedPressure holds the last normalized arterial baroreceptor input.
	SensedPressure
	// Intrathoracic is the pressure surrounding the thoracic compartments.
	Intrathoracic

	NumPressures
)

// NumCompartments is the size of the volume index space.
const NumCompartments = int(AbdominalBias)

var compartmentNames = [NumPressures]string{
	AscendingAorta:     "ascending_aorta",
	Brachiocephalic:    "brachiocephalic_arteries",
	UpperBodyArteries:  "upper_body_arteries",
	UpperBodyVeins:     "upper_body_veins",
	SuperiorVenaCava:   "superior_vena_cava",
	ThoracicAorta:      "thoracic_aorta",
	AbdominalAorta:     "abdominal_aorta",
	RenalArteries:      "renal_arteries",
	RenalVeins:         "renal_veins",
	SplanchnicArteries: "splanchnic_arteries",
	SplanchnicVeins:    "splanchnic_veins",
	LegArteries:        "leg_arteries",
	LegVeins:           "leg_veins",
	AbdominalVeins:     "abdominal_veins",
	InferiorVenaCava:   "inferior_vena_cava",
	RightAtrium:        "right_atrium",
	RightVentricle:     "right_ventricle",
	PulmonaryArteries:  "pulmonary_arteries",
	PulmonaryVeins:     "pulmonary_veins",
	LeftAtrium:         "left_atrium",
	LeftVentricle:      "left_ventricle",
	AbdominalBias:      "abdominal_bias",
	LegBias:            "leg_bias",
	SensedPressure:     "sensed_pressure",
	Intrathoracic:      "intrathoracic",
}

func (c Compartment) String() string {
	if c < 0 || c >= NumPressures {
		return fmt.Sprintf("compartment(%d)", int(c))
	}
	return compartmentNames[c]
}

// HasVolume reports whether c belongs to the volume index space.
func (c Compartment) HasVolume() bool {
	return c >= 0 && int(c) < NumCompartments
}

// Thoracic reports whether c sits inside the chest and therefore sees the
// intrathoracic pressure as its external pressure.
func (c Compartment) Thoracic() bool {
	switch c {
	case AscendingAorta, Brachiocephalic, SuperiorVenaCava, ThoracicAorta,
		InferiorVenaCava, RightAtrium, RightVentricle, PulmonaryArteries,
		PulmonaryVeins, LeftAtrium, LeftVentricle:
		return true
	}
	return false
}

// Chamber reports whether c is one of the four contracting heart chambers.
func (c Compartment) Chamber() bool {
	switch c {
	case RightAtrium, RightVentricle, LeftAtrium, LeftVentricle:
		return true
	}
	return false
}

// Surrounding returns the external pressure slot a compartment's transmural
// pressure is measured against. The upper body compartments are referenced to
// atmosphere and report false.
func (c Compartment) Surrounding() (Compartment, bool) {
	switch {
	case c.Thoracic():
		return Intrathoracic, true
	case c == AbdominalAorta, c == RenalArteries, c == RenalVeins,
		c == SplanchnicArteries, c == SplanchnicVeins, c == AbdominalVeins:
		return AbdominalBias, true
	case c == LegArteries, c == LegVeins:
		return LegBias, true
	}
	return 0, false
}

// ParseCompartment looks a compartment up by name.
func ParseCompartment(name string) (Compartment, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for c, n := range compartmentNames {
		if n == key {
			return Compartment(c), nil
		}
	}
	return 0, fmt.Errorf("unknown compartment %q", name)
}

// Compartments lists the physical compartments in index order.
func Compartments() []Compartment {
	out := make([]Compartment, NumCompartments)
	for i := range out {
		out[i] = Compartment(i)
	}
	return out
}

// Segment indexes the flow space. Each segment connects two compartments.
type Segment int

const (
	AorticValve Segment = iota
	AscendingToBrachiocephalic
	BrachiocephalicToUpperBody
	UpperBodyMicrocirculation
	UpperBodyOutflow
	SuperiorVenaCavaOutflow
	AscendingToThoracic
	ThoracicToAbdominal
	AbdominalToRenal
	RenalMicrocirculation
	RenalOutflow
	AbdominalToSplanchnic
	SplanchnicMicrocirculation
	SplanchnicOutflow
	AbdominalToLeg
	LegMicrocirculation
	LegOutflow
	AbdominalVenousOutflow
	InferiorVenaCavaOutflow
	TricuspidValve
	PulmonicValve
	PulmonaryMicrocirculation
	PulmonaryVenousOutflow
	MitralValve

	NumSegments
)

type segmentInfo struct {
	name     string
	from, to Compartment
}

var segments = [NumSegments]segmentInfo{
	AorticValve:                {"aortic_valve", LeftVentricle, AscendingAorta},
	AscendingToBrachiocephalic: {"ascending_to_brachiocephalic", AscendingAorta, Brachiocephalic},
	BrachiocephalicToUpperBody: {"brachiocephalic_to_upper_body", Brachiocephalic, UpperBodyArteries},
	UpperBodyMicrocirculation:  {"upper_body_micro", UpperBodyArteries, UpperBodyVeins},
	UpperBodyOutflow:           {"upper_body_outflow", UpperBodyVeins, SuperiorVenaCava},
	SuperiorVenaCavaOutflow:    {"superior_vena_cava_outflow", SuperiorVenaCava, RightAtrium},
	AscendingToThoracic:        {"ascending_to_thoracic", AscendingAorta, ThoracicAorta},
	ThoracicToAbdominal:        {"thoracic_to_abdominal", ThoracicAorta, AbdominalAorta},
	AbdominalToRenal:           {"abdominal_to_renal", AbdominalAorta, RenalArteries},
	RenalMicrocirculation:      {"renal_micro", RenalArteries, RenalVeins},
	RenalOutflow:               {"renal_outflow", RenalVeins, AbdominalVeins},
	AbdominalToSplanchnic:      {"abdominal_to_splanchnic", AbdominalAorta, SplanchnicArteries},
	SplanchnicMicrocirculation: {"splanchnic_micro", SplanchnicArteries, SplanchnicVeins},
	SplanchnicOutflow:          {"splanchnic_outflow", SplanchnicVeins, AbdominalVeins},
	AbdominalToLeg:             {"abdominal_to_leg", AbdominalAorta, LegArteries},
	LegMicrocirculation:        {"leg_micro", LegArteries, LegVeins},
	LegOutflow:                 {"leg_outflow", LegVeins, AbdominalVeins},
	AbdominalVenousOutflow:     {"abdominal_venous_outflow", AbdominalVeins, InferiorVenaCava},
	InferiorVenaCavaOutflow:    {"inferior_vena_cava_outflow", InferiorVenaCava, RightAtrium},
	TricuspidValve:             {"tricuspid_valve", RightAtrium, RightVentricle},
	PulmonicValve:              {"pulmonic_valve", RightVentricle, PulmonaryArteries},
	PulmonaryMicrocirculation:  {"pulmonary_micro", PulmonaryArteries, PulmonaryVeins},
	PulmonaryVenousOutflow:     {"pulmonary_venous_outflow", PulmonaryVeins, LeftAtrium},
	MitralValve:                {"mitral_valve", LeftAtrium, LeftVentricle},
}

func (s Segment) String() string {
	if s < 0 || s >= NumSegments {
		return fmt.Sprintf("segment(%d)", int(s))
	}
	return segments[s].name
}

// From returns the upstream compartment of the segment.
func (s Segment) From() Compartment { return segments[s].from }

// To returns the downstream compartment of the segment.
func (s Segment) To() Compartment { return segments[s].to }

// Pressures is indexed by Compartment over the full pressure space.
type Pressures [NumPressures]float64

// Flows is indexed by Segment.
type Flows [NumSegments]float64

// Volumes is indexed by the physical compartments.
type Volumes [NumCompartments]float64

// Total sums all compartment volumes.
func (v Volumes) Total() float64 {
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum
}
