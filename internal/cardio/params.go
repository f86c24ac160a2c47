package cardio

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/cvsim/internal/dynamo"
)

// Param enumerates the parameter vocabulary of the 21-compartment model.
type Param int

const (
	// Compliances, ml/mmHg.
	AscendingAortaCompliance Param = iota
	BrachiocephalicCompliance
	UpperBodyArteriesCompliance
	ThoracicAortaCompliance
	AbdominalAortaCompliance
	RenalArteriesCompliance
	SplanchnicArteriesCompliance
	LegArteriesCompliance
	UpperBodyVeinsCompliance
	RenalVeinsCompliance
	SplanchnicVeinsCompliance
	LegVeinsCompliance
	AbdominalVeinsCompliance
	InferiorVenaCavaCompliance
	SuperiorVenaCavaCompliance
	PulmonaryArteriesCompliance
	PulmonaryVeinsCompliance
	RightAtrialDiastolicCompliance
	RightAtrialSystolicCompliance
	RightVentricularDiastolicCompliance
	RightVentricularSystolicCompliance
	LeftAtrialDiastolicCompliance
	LeftAtrialSystolicCompliance
	LeftVentricularDiastolicCompliance
	LeftVentricularSystolicCompliance

	// Resistances, mmHg s/ml.
	AorticValveResistance
	BrachiocephalicResistance
	UpperBodyArteriesResistance
	ThoracicAortaResistance
	AbdominalAortaResistance
	RenalArteriesResistance
	SplanchnicArteriesResistance
	LegArteriesResistance
	UpperBodyMicroResistance
	RenalMicroResistance
	SplanchnicMicroResistance
	LegMicroResistance
	UpperBodyVeinsResistance
	RenalVeinsResistance
	SplanchnicVeinsResistance
	LegVeinsResistance
	AbdominalVeinsResistance
	InferiorVenaCavaResistance
	SuperiorVenaCavaResistance
	TricuspidValveResistance
	PulmonicValveResistance
	PulmonaryMicroResistance
	PulmonaryVeinsResistance
	MitralValveResistance

	// Zero-pressure filling volumes, ml.
	AscendingAortaVolume
	BrachiocephalicVolume
	UpperBodyArteriesVolume
	ThoracicAortaVolume
	AbdominalAortaVolume
	RenalArteriesVolume
	SplanchnicArteriesVolume
	LegArteriesVolume
	UpperBodyVeinsVolume
	RenalVeinsVolume
	SplanchnicVeinsVolume
	LegVeinsVolume
	AbdominalVeinsVolume
	InferiorVenaCavaVolume
	SuperiorVenaCavaVolume
	PulmonaryArteriesVolume
	PulmonaryVeinsVolume
	RightAtrialVolume
	RightVentricularVolume
	LeftAtrialVolume
	LeftVentricularVolume

	// Maximal distending volumes of the nonlinear venous beds, ml.
	SplanchnicMaxVolume
	LegMaxVolume
	AbdominalMaxVolume

	// Vertical extent of each vessel segment, cm.
	AscendingAortaHeight
	BrachiocephalicHeight
	UpperBodyArteriesHeight
	UpperBodyVeinsHeight
	SuperiorVenaCavaHeight
	ThoracicAortaHeight
	AbdominalAortaHeight
	RenalArteriesHeight
	RenalVeinsHeight
	SplanchnicArteriesHeight
	SplanchnicVeinsHeight
	LegArteriesHeight
	LegVeinsHeight
	AbdominalVeinsHeight
	InferiorVenaCavaHeight

	// System level.
	TotalBloodVolume
	NominalHeartRate
	IntrathoracicPressure
	PRInterval
	AtrialSystoleInterval
	VentricularSystoleInterval

	// Anthropometrics.
	BodyHeight
	BodyWeight
	BodySurfaceArea

	// Arterial baroreflex.
	ABRSetPoint
	ABRScale
	ABRHeartRateSympatheticGain
	ABRHeartRateParasympatheticGain
	ABRUpperBodyResistanceGain
	ABRRenalResistanceGain
	ABRSplanchnicResistanceGain
	ABRLegResistanceGain
	ABRUpperBodyVenousGain
	ABRRenalVenousGain
	ABRSplanchnicVenousGain
	ABRLegVenousGain
	ABRRightContractilityGain
	ABRLeftContractilityGain

	// Cardiopulmonary reflex.
	CPRSetPoint
	CPRScale
	CPRUpperBodyResistanceGain
	CPRRenalResistanceGain
	CPRSplanchnicResistanceGain
	CPRLegResistanceGain
	CPRUpperBodyVenousGain
	CPRRenalVenousGain
	CPRSplanchnicVenousGain
	CPRLegVenousGain

	// Impulse response breakpoints, s.
	ParasympatheticDelay
	ParasympatheticPeak
	ParasympatheticEnd
	BetaSympatheticDelay
	BetaSympatheticPeak
	BetaSympatheticEnd
	AlphaArterialDelay
	AlphaArterialPeak
	AlphaArterialEnd
	AlphaVenousDelay
	AlphaVenousPeak
	AlphaVenousEnd
	CardiopulmonaryArterialDelay
	CardiopulmonaryArterialPeak
	CardiopulmonaryArterialEnd
	CardiopulmonaryVenousDelay
	CardiopulmonaryVenousPeak
	CardiopulmonaryVenousEnd

	// Tilt maneuver.
	TiltAngle
	TiltTime
	TiltOnset
	TiltDuration
	TiltMaxVolumeLoss
	SensedPressureOffset

	NumParams
)

// Kind groups parameters for validation and display.
type Kind int

const (
	KindCompliance Kind = iota
	KindResistance
	KindVolume
	KindHeight
	KindSystem
	KindTiming
	KindAnthropometric
	KindReflexGain
	KindKernel
	KindTilt
)

var kindNames = [...]string{
	KindCompliance:     "compliance",
	KindResistance:     "resistance",
	KindVolume:         "volume",
	KindHeight:         "height",
	KindSystem:         "system",
	KindTiming:         "timing",
	KindAnthropometric: "anthropometric",
	KindReflexGain:     "reflex",
	KindKernel:         "kernel",
	KindTilt:           "tilt",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

type paramInfo struct {
	name  string
	value float64
	kind  Kind
	unit  string
}

var catalog = [NumParams]paramInfo{
	AscendingAortaCompliance:            {"ascending_aorta_compliance", 0.28, KindCompliance, "ml/mmHg"},
	BrachiocephalicCompliance:           {"brachiocephalic_compliance", 0.13, KindCompliance, "ml/mmHg"},
	UpperBodyArteriesCompliance:         {"upper_body_arteries_compliance", 0.2, KindCompliance, "ml/mmHg"},
	ThoracicAortaCompliance:             {"thoracic_aorta_compliance", 0.1, KindCompliance, "ml/mmHg"},
	AbdominalAortaCompliance:            {"abdominal_aorta_compliance", 0.1, KindCompliance, "ml/mmHg"},
	RenalArteriesCompliance:             {"renal_arteries_compliance", 0.21, KindCompliance, "ml/mmHg"},
	SplanchnicArteriesCompliance:        {"splanchnic_arteries_compliance", 0.2, KindCompliance, "ml/mmHg"},
	LegArteriesCompliance:               {"leg_arteries_compliance", 0.2, KindCompliance, "ml/mmHg"},
	UpperBodyVeinsCompliance:            {"upper_body_veins_compliance", 7.0, KindCompliance, "ml/mmHg"},
	RenalVeinsCompliance:                {"renal_veins_compliance", 5.0, KindCompliance, "ml/mmHg"},
	SplanchnicVeinsCompliance:           {"splanchnic_veins_compliance", 60.0, KindCompliance, "ml/mmHg"},
	LegVeinsCompliance:                  {"leg_veins_compliance", 20.0, KindCompliance, "ml/mmHg"},
	AbdominalVeinsCompliance:            {"abdominal_veins_compliance", 1.3, KindCompliance, "ml/mmHg"},
	InferiorVenaCavaCompliance:          {"inferior_vena_cava_compliance", 0.5, KindCompliance, "ml/mmHg"},
	SuperiorVenaCavaCompliance:          {"superior_vena_cava_compliance", 1.3, KindCompliance, "ml/mmHg"},
	PulmonaryArteriesCompliance:         {"pulmonary_arteries_compliance", 3.4, KindCompliance, "ml/mmHg"},
	PulmonaryVeinsCompliance:            {"pulmonary_veins_compliance", 9.0, KindCompliance, "ml/mmHg"},
	RightAtrialDiastolicCompliance:      {"right_atrial_diastolic_compliance", 3.33, KindCompliance, "ml/mmHg"},
	RightAtrialSystolicCompliance:       {"right_atrial_systolic_compliance", 1.35, KindCompliance, "ml/mmHg"},
	RightVentricularDiastolicCompliance: {"right_ventricular_diastolic_compliance", 19.29, KindCompliance, "ml/mmHg"},
	RightVentricularSystolicCompliance:  {"right_ventricular_systolic_compliance", 1.30, KindCompliance, "ml/mmHg"},
	LeftAtrialDiastolicCompliance:       {"left_atrial_diastolic_compliance", 2.0, KindCompliance, "ml/mmHg"},
	LeftAtrialSystolicCompliance:        {"left_atrial_systolic_compliance", 1.64, KindCompliance, "ml/mmHg"},
	LeftVentricularDiastolicCompliance:  {"left_ventricular_diastolic_compliance", 9.69, KindCompliance, "ml/mmHg"},
	LeftVentricularSystolicCompliance:   {"left_ventricular_systolic_compliance", 0.40, KindCompliance, "ml/mmHg"},

	AorticValveResistance:        {"aortic_valve_resistance", 0.007, KindResistance, "mmHg s/ml"},
	BrachiocephalicResistance:    {"brachiocephalic_resistance", 0.003, KindResistance, "mmHg s/ml"},
	UpperBodyArteriesResistance:  {"upper_body_arteries_resistance", 0.014, KindResistance, "mmHg s/ml"},
	ThoracicAortaResistance:      {"thoracic_aorta_resistance", 0.011, KindResistance, "mmHg s/ml"},
	AbdominalAortaResistance:     {"abdominal_aorta_resistance", 0.01, KindResistance, "mmHg s/ml"},
	RenalArteriesResistance:      {"renal_arteries_resistance", 0.10, KindResistance, "mmHg s/ml"},
	SplanchnicArteriesResistance: {"splanchnic_arteries_resistance", 0.07, KindResistance, "mmHg s/ml"},
	LegArteriesResistance:        {"leg_arteries_resistance", 0.09, KindResistance, "mmHg s/ml"},
	UpperBodyMicroResistance:     {"upper_body_micro_resistance", 4.9, KindResistance, "mmHg s/ml"},
	RenalMicroResistance:         {"renal_micro_resistance", 4.1, KindResistance, "mmHg s/ml"},
	SplanchnicMicroResistance:    {"splanchnic_micro_resistance", 3.0, KindResistance, "mmHg s/ml"},
	LegMicroResistance:           {"leg_micro_resistance", 4.5, KindResistance, "mmHg s/ml"},
	UpperBodyVeinsResistance:     {"upper_body_veins_resistance", 0.11, KindResistance, "mmHg s/ml"},
	RenalVeinsResistance:         {"renal_veins_resistance", 0.11, KindResistance, "mmHg s/ml"},
	SplanchnicVeinsResistance:    {"splanchnic_veins_resistance", 0.07, KindResistance, "mmHg s/ml"},
	LegVeinsResistance:           {"leg_veins_resistance", 0.10, KindResistance, "mmHg s/ml"},
	AbdominalVeinsResistance:     {"abdominal_veins_resistance", 0.019, KindResistance, "mmHg s/ml"},
	InferiorVenaCavaResistance:   {"inferior_vena_cava_resistance", 0.008, KindResistance, "mmHg s/ml"},
	SuperiorVenaCavaResistance:   {"superior_vena_cava_resistance", 0.028, KindResistance, "mmHg s/ml"},
	TricuspidValveResistance:     {"tricuspid_valve_resistance", 0.006, KindResistance, "mmHg s/ml"},
	PulmonicValveResistance:      {"pulmonic_valve_resistance", 0.006, KindResistance, "mmHg s/ml"},
	PulmonaryMicroResistance:     {"pulmonary_micro_resistance", 0.07, KindResistance, "mmHg s/ml"},
	PulmonaryVeinsResistance:     {"pulmonary_veins_resistance", 0.006, KindResistance, "mmHg s/ml"},
	MitralValveResistance:        {"mitral_valve_resistance", 0.01, KindResistance, "mmHg s/ml"},

	AscendingAortaVolume:     {"ascending_aorta_volume", 21, KindVolume, "ml"},
	BrachiocephalicVolume:    {"brachiocephalic_volume", 5, KindVolume, "ml"},
	UpperBodyArteriesVolume:  {"upper_body_arteries_volume", 200, KindVolume, "ml"},
	ThoracicAortaVolume:      {"thoracic_aorta_volume", 16, KindVolume, "ml"},
	AbdominalAortaVolume:     {"abdominal_aorta_volume", 10, KindVolume, "ml"},
	RenalArteriesVolume:      {"renal_arteries_volume", 20, KindVolume, "ml"},
	SplanchnicArteriesVolume: {"splanchnic_arteries_volume", 300, KindVolume, "ml"},
	LegArteriesVolume:        {"leg_arteries_volume", 200, KindVolume, "ml"},
	UpperBodyVeinsVolume:     {"upper_body_veins_volume", 645, KindVolume, "ml"},
	RenalVeinsVolume:         {"renal_veins_volume", 30, KindVolume, "ml"},
	SplanchnicVeinsVolume:    {"splanchnic_veins_volume", 1146, KindVolume, "ml"},
	LegVeinsVolume:           {"leg_veins_volume", 716, KindVolume, "ml"},
	AbdominalVeinsVolume:     {"abdominal_veins_volume", 79, KindVolume, "ml"},
	InferiorVenaCavaVolume:   {"inferior_vena_cava_volume", 33, KindVolume, "ml"},
	SuperiorVenaCavaVolume:   {"superior_vena_cava_volume", 16, KindVolume, "ml"},
	PulmonaryArteriesVolume:  {"pulmonary_arteries_volume", 160, KindVolume, "ml"},
	PulmonaryVeinsVolume:     {"pulmonary_veins_volume", 430, KindVolume, "ml"},
	RightAtrialVolume:        {"right_atrial_volume", 14, KindVolume, "ml"},
	RightVentricularVolume:   {"right_ventricular_volume", 46, KindVolume, "ml"},
	LeftAtrialVolume:         {"left_atrial_volume", 24, KindVolume, "ml"},
	LeftVentricularVolume:    {"left_ventricular_volume", 55, KindVolume, "ml"},

	SplanchnicMaxVolume: {"splanchnic_max_volume", 1500, KindVolume, "ml"},
	LegMaxVolume:        {"leg_max_volume", 1000, KindVolume, "ml"},
	AbdominalMaxVolume:  {"abdominal_max_volume", 650, KindVolume, "ml"},

	AscendingAortaHeight:     {"ascending_aorta_height", 10, KindHeight, "cm"},
	BrachiocephalicHeight:    {"brachiocephalic_height", 4.5, KindHeight, "cm"},
	UpperBodyArteriesHeight:  {"upper_body_arteries_height", 20, KindHeight, "cm"},
	UpperBodyVeinsHeight:     {"upper_body_veins_height", 20, KindHeight, "cm"},
	SuperiorVenaCavaHeight:   {"superior_vena_cava_height", 14.5, KindHeight, "cm"},
	ThoracicAortaHeight:      {"thoracic_aorta_height", 16, KindHeight, "cm"},
	AbdominalAortaHeight:     {"abdominal_aorta_height", 14.5, KindHeight, "cm"},
	RenalArteriesHeight:      {"renal_arteries_height", 0, KindHeight, "cm"},
	RenalVeinsHeight:         {"renal_veins_height", 0, KindHeight, "cm"},
	SplanchnicArteriesHeight: {"splanchnic_arteries_height", 5, KindHeight, "cm"},
	SplanchnicVeinsHeight:    {"splanchnic_veins_height", 5, KindHeight, "cm"},
	LegArteriesHeight:        {"leg_arteries_height", 106, KindHeight, "cm"},
	LegVeinsHeight:           {"leg_veins_height", 106, KindHeight, "cm"},
	AbdominalVeinsHeight:     {"abdominal_veins_height", 14.5, KindHeight, "cm"},
	InferiorVenaCavaHeight:   {"inferior_vena_cava_height", 6, KindHeight, "cm"},

	TotalBloodVolume:           {"total_blood_volume", 5150, KindSystem, "ml"},
	NominalHeartRate:           {"nominal_heart_rate", 70, KindSystem, "beats/min"},
	IntrathoracicPressure:      {"intrathoracic_pressure", -4, KindSystem, "mmHg"},
	PRInterval:                 {"pr_interval", 0.12, KindTiming, "s"},
	AtrialSystoleInterval:      {"atrial_systole_interval", 0.2, KindTiming, "s"},
	VentricularSystoleInterval: {"ventricular_systole_interval", 0.3, KindTiming, "s"},

	BodyHeight:      {"body_height", 169.3, KindAnthropometric, "cm"},
	BodyWeight:      {"body_weight", 60.2, KindAnthropometric, "kg"},
	BodySurfaceArea: {"body_surface_area", 1.83, KindAnthropometric, "m^2"},

	ABRSetPoint:                     {"abr_set_point", 91, KindReflexGain, "mmHg"},
	ABRScale:                        {"abr_scale", 18, KindReflexGain, "mmHg"},
	ABRHeartRateSympatheticGain:     {"abr_hr_sympathetic_gain", 0.012, KindReflexGain, "s/mmHg"},
	ABRHeartRateParasympatheticGain: {"abr_hr_parasympathetic_gain", 0.009, KindReflexGain, "s/mmHg"},
	ABRUpperBodyResistanceGain:      {"abr_upper_body_resistance_gain", -0.13, KindReflexGain, "mmHg s/ml per mmHg"},
	ABRRenalResistanceGain:          {"abr_renal_resistance_gain", -0.13, KindReflexGain, "mmHg s/ml per mmHg"},
	ABRSplanchnicResistanceGain:     {"abr_splanchnic_resistance_gain", -0.13, KindReflexGain, "mmHg s/ml per mmHg"},
	ABRLegResistanceGain:            {"abr_leg_resistance_gain", -0.13, KindReflexGain, "mmHg s/ml per mmHg"},
	ABRUpperBodyVenousGain:          {"abr_upper_body_venous_gain", 5.3, KindReflexGain, "ml/mmHg"},
	ABRRenalVenousGain:              {"abr_renal_venous_gain", 1.3, KindReflexGain, "ml/mmHg"},
	ABRSplanchnicVenousGain:         {"abr_splanchnic_venous_gain", 13.3, KindReflexGain, "ml/mmHg"},
	ABRLegVenousGain:                {"abr_leg_venous_gain", 6.7, KindReflexGain, "ml/mmHg"},
	ABRRightContractilityGain:       {"abr_rv_contractility_gain", 0.021, KindReflexGain, "ml/mmHg^2"},
	ABRLeftContractilityGain:        {"abr_lv_contractility_gain", 0.014, KindReflexGain, "ml/mmHg^2"},

	CPRSetPoint:                 {"cpr_set_point", 8, KindReflexGain, "mmHg"},
	CPRScale:                    {"cpr_scale", 5, KindReflexGain, "mmHg"},
	CPRUpperBodyResistanceGain:  {"cpr_upper_body_resistance_gain", -0.3, KindReflexGain, "mmHg s/ml per mmHg"},
	CPRRenalResistanceGain:      {"cpr_renal_resistance_gain", -0.3, KindReflexGain, "mmHg s/ml per mmHg"},
	CPRSplanchnicResistanceGain: {"cpr_splanchnic_resistance_gain", -0.3, KindReflexGain, "mmHg s/ml per mmHg"},
	CPRLegResistanceGain:        {"cpr_leg_resistance_gain", -0.3, KindReflexGain, "mmHg s/ml per mmHg"},
	CPRUpperBodyVenousGain:      {"cpr_upper_body_venous_gain", 13.5, KindReflexGain, "ml/mmHg"},
	CPRRenalVenousGain:          {"cpr_renal_venous_gain", 2.7, KindReflexGain, "ml/mmHg"},
	CPRSplanchnicVenousGain:     {"cpr_splanchnic_venous_gain", 64, KindReflexGain, "ml/mmHg"},
	CPRLegVenousGain:            {"cpr_leg_venous_gain", 30, KindReflexGain, "ml/mmHg"},

	ParasympatheticDelay:         {"parasympathetic_delay", 0.59, KindKernel, "s"},
	ParasympatheticPeak:          {"parasympathetic_peak", 0.70, KindKernel, "s"},
	ParasympatheticEnd:           {"parasympathetic_end", 1.00, KindKernel, "s"},
	BetaSympatheticDelay:         {"beta_sympathetic_delay", 2.5, KindKernel, "s"},
	BetaSympatheticPeak:          {"beta_sympathetic_peak", 3.5, KindKernel, "s"},
	BetaSympatheticEnd:           {"beta_sympathetic_end", 15, KindKernel, "s"},
	AlphaArterialDelay:           {"alpha_arterial_delay", 2.5, KindKernel, "s"},
	AlphaArterialPeak:            {"alpha_arterial_peak", 3.5, KindKernel, "s"},
	AlphaArterialEnd:             {"alpha_arterial_end", 30, KindKernel, "s"},
	AlphaVenousDelay:             {"alpha_venous_delay", 5, KindKernel, "s"},
	AlphaVenousPeak:              {"alpha_venous_peak", 10, KindKernel, "s"},
	AlphaVenousEnd:               {"alpha_venous_end", 42, KindKernel, "s"},
	CardiopulmonaryArterialDelay: {"cp_arterial_delay", 2.5, KindKernel, "s"},
	CardiopulmonaryArterialPeak:  {"cp_arterial_peak", 5.5, KindKernel, "s"},
	CardiopulmonaryArterialEnd:   {"cp_arterial_end", 35, KindKernel, "s"},
	CardiopulmonaryVenousDelay:   {"cp_venous_delay", 5, KindKernel, "s"},
	CardiopulmonaryVenousPeak:    {"cp_venous_peak", 9, KindKernel, "s"},
	CardiopulmonaryVenousEnd:     {"cp_venous_end", 40, KindKernel, "s"},

	TiltAngle:            {"tilt_angle", 0, KindTilt, "deg"},
	TiltTime:             {"tilt_time", 2, KindTilt, "s"},
	TiltOnset:            {"tilt_onset", 200, KindTilt, "s"},
	TiltDuration:         {"tilt_duration", 240, KindTilt, "s"},
	TiltMaxVolumeLoss:    {"tilt_max_volume_loss", 300, KindTilt, "ml"},
	SensedPressureOffset: {"sensed_pressure_offset", -25, KindTilt, "mmHg"},
}

var paramsByName = func() map[string]Param {
	m := make(map[string]Param, NumParams)
	for i, info := range catalog {
		m[info.name] = Param(i)
	}
	return m
}()

func (p Param) String() string {
	if !p.valid() {
		return fmt.Sprintf("param(%d)", int(p))
	}
	return catalog[p].name
}

func (p Param) valid() bool { return p >= 0 && p < NumParams }

// Kind reports the parameter's group.
func (p Param) Kind() Kind { return catalog[p].kind }

// Unit reports the physical unit of the parameter.
func (p Param) Unit() string { return catalog[p].unit }

// Default reports the catalog value of the parameter.
func (p Param) Default() float64 { return catalog[p].value }

// ParseParam resolves a parameter name. Matching ignores case and accepts
// dashes in place of underscores.
func ParseParam(name string) (Param, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	if p, ok := paramsByName[key]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("%q: %w", name, dynamo.ErrUnknownParameter)
}

// ParamNames returns every parameter name, sorted.
func ParamNames() []string {
	names := make([]string, 0, NumParams)
	for _, info := range catalog {
		names = append(names, info.name)
	}
	sort.Strings(names)
	return names
}

// Params holds one value per Param.
type Params [NumParams]float64

// DefaultParams returns the reference adult parameter set.
func DefaultParams() Params {
	var p Params
	for i, info := range catalog {
		p[i] = info.value
	}
	return p
}

// Map exports the parameters keyed by name.
func (p *Params) Map() map[string]float64 {
	m := make(map[string]float64, NumParams)
	for i, v := range p {
		m[catalog[i].name] = v
	}
	return m
}

// Apply overwrites parameters by name after validating each value against
// the current set. The first rejected entry aborts the update and leaves p
// unchanged.
func (p *Params) Apply(values map[string]float64) error {
	next := *p
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		id, err := ParseParam(name)
		if err != nil {
			return err
		}
		if err := next.validate(id, values[name]); err != nil {
			return err
		}
		next[id] = values[name]
	}
	*p = next
	return nil
}

// Per-compartment lookups into the parameter vector. Chambers map to their
// diastolic compliance.
var (
	compliances = [NumCompartments]Param{
		AscendingAorta:     AscendingAortaCompliance,
		Brachiocephalic:    BrachiocephalicCompliance,
		UpperBodyArteries:  UpperBodyArteriesCompliance,
		UpperBodyVeins:     UpperBodyVeinsCompliance,
		SuperiorVenaCava:   SuperiorVenaCavaCompliance,
		ThoracicAorta:      ThoracicAortaCompliance,
		AbdominalAorta:     AbdominalAortaCompliance,
		RenalArteries:      RenalArteriesCompliance,
		RenalVeins:         RenalVeinsCompliance,
		SplanchnicArteries: SplanchnicArteriesCompliance,
		SplanchnicVeins:    SplanchnicVeinsCompliance,
		LegArteries:        LegArteriesCompliance,
		LegVeins:           LegVeinsCompliance,
		AbdominalVeins:     AbdominalVeinsCompliance,
		InferiorVenaCava:   InferiorVenaCavaCompliance,
		RightAtrium:        RightAtrialDiastolicCompliance,
		RightVentricle:     RightVentricularDiastolicCompliance,
		PulmonaryArteries:  PulmonaryArteriesCompliance,
		PulmonaryVeins:     PulmonaryVeinsCompliance,
		LeftAtrium:         LeftAtrialDiastolicCompliance,
		LeftVentricle:      LeftVentricularDiastolicCompliance,
	}

	zeroVolumes = [NumCompartments]Param{
		AscendingAorta:     AscendingAortaVolume,
		Brachiocephalic:    BrachiocephalicVolume,
		UpperBodyArteries:  UpperBodyArteriesVolume,
		UpperBodyVeins:     UpperBodyVeinsVolume,
		SuperiorVenaCava:   SuperiorVenaCavaVolume,
		ThoracicAorta:      ThoracicAortaVolume,
		AbdominalAorta:     AbdominalAortaVolume,
		RenalArteries:      RenalArteriesVolume,
		RenalVeins:         RenalVeinsVolume,
		SplanchnicArteries: SplanchnicArteriesVolume,
		SplanchnicVeins:    SplanchnicVeinsVolume,
		LegArteries:        LegArteriesVolume,
		LegVeins:           LegVeinsVolume,
		AbdominalVeins:     AbdominalVeinsVolume,
		InferiorVenaCava:   InferiorVenaCavaVolume,
		RightAtrium:        RightAtrialVolume,
		RightVentricle:     RightVentricularVolume,
		PulmonaryArteries:  PulmonaryArteriesVolume,
		PulmonaryVeins:     PulmonaryVeinsVolume,
		LeftAtrium:         LeftAtrialVolume,
		LeftVentricle:      LeftVentricularVolume,
	}

	resistances = [NumSegments]Param{
		AorticValve:                AorticValveResistance,
		AscendingToBrachiocephalic: BrachiocephalicResistance,
		BrachiocephalicToUpperBody: UpperBodyArteriesResistance,
		UpperBodyMicrocirculation:  UpperBodyMicroResistance,
		UpperBodyOutflow:           UpperBodyVeinsResistance,
		SuperiorVenaCavaOutflow:    SuperiorVenaCavaResistance,
		AscendingToThoracic:        ThoracicAortaResistance,
		ThoracicToAbdominal:        AbdominalAortaResistance,
		AbdominalToRenal:           RenalArteriesResistance,
		RenalMicrocirculation:      RenalMicroResistance,
		RenalOutflow:               RenalVeinsResistance,
		AbdominalToSplanchnic:      SplanchnicArteriesResistance,
		SplanchnicMicrocirculation: SplanchnicMicroResistance,
		SplanchnicOutflow:          SplanchnicVeinsResistance,
		AbdominalToLeg:             LegArteriesResistance,
		LegMicrocirculation:        LegMicroResistance,
		LegOutflow:                 LegVeinsResistance,
		AbdominalVenousOutflow:     AbdominalVeinsResistance,
		InferiorVenaCavaOutflow:    InferiorVenaCavaResistance,
		TricuspidValve:             TricuspidValveResistance,
		PulmonicValve:              PulmonicValveResistance,
		PulmonaryMicrocirculation:  PulmonaryMicroResistance,
		PulmonaryVenousOutflow:     PulmonaryVeinsResistance,
		MitralValve:                MitralValveResistance,
	}
)

// ComplianceOf returns the compliance parameter of a compartment.
func ComplianceOf(c Compartment) Param { return compliances[c] }

// ZeroVolumeOf returns the zero-pressure filling volume parameter of a compartment.
func ZeroVolumeOf(c Compartment) Param { return zeroVolumes[c] }

// ResistanceOf returns the resistance parameter of a segment.
func ResistanceOf(s Segment) Param { return resistances[s] }

// compartmentOf maps a compliance or zero-volume parameter back onto its
// compartment. Systolic chamber compliances map to their chamber.
func compartmentOf(p Param) (Compartment, bool) {
	switch p {
	case RightAtrialSystolicCompliance:
		return RightAtrium, true
	case RightVentricularSystolicCompliance:
		return RightVentricle, true
	case LeftAtrialSystolicCompliance:
		return LeftAtrium, true
	case LeftVentricularSystolicCompliance:
		return LeftVentricle, true
	}
	for c := 0; c < NumCompartments; c++ {
		if compliances[c] == p || zeroVolumes[c] == p {
			return Compartment(c), true
		}
	}
	return 0, false
}

// TotalZeroVolume sums the zero-pressure filling volumes of every compartment.
func (p *Params) TotalZeroVolume() float64 {
	sum := 0.0
	for _, id := range zeroVolumes {
		sum += p[id]
	}
	return sum
}
