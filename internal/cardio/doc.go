// Package cardio implements a closed-loop lumped-parameter model of the human
// circulation with 21 compartments.
//
// The model couples:
//
//   - a resistance/compliance network of the systemic and pulmonary
//     circulation with valves, a Starling resistor at the upper body venous
//     outflow and three nonlinear venous beds
//   - time-varying elastance heart chambers timed by an integral pulse
//     frequency modulation pacemaker
//   - arterial baroreflex and cardiopulmonary reflex loops acting through
//     impulse-response convolutions on heart rate, contractility, arteriolar
//     resistance and venous tone
//   - an optional head-up tilt maneuver with gravitational offsets and
//     transcapillary volume loss
//
// # Usage
//
//	e := cardio.New(cardio.DefaultParams(), cardio.WithLogger(log))
//	if err := e.Initialize(); err != nil {
//		return err
//	}
//	for i := 0; i < 1000; i++ {
//		if _, err := e.Step(cardio.DefaultStepSize, cardio.DefaultFlags()); err != nil {
//			return err
//		}
//	}
//	lv := e.State().Pressure[cardio.LeftVentricle]
//
// Parameter edits between steps go through the Update methods, which keep
// compartment volumes continuous and reject out-of-range values with a
// *ValidationError.
//
// An Engine is not safe for concurrent use.
package cardio
