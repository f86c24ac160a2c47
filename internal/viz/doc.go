// Package viz provides a terminal bedside monitor for the circulation engine.
//
// The monitor is a Bubble Tea program that advances the engine in real time
// and draws the arterial pressure trace on a Braille canvas:
//
//   - [Monitor]: the live model driven by [TickMsg]
//   - [Canvas]: Braille pixel canvas used for the pressure sweep
//   - Theme selection with 3 built-in color schemes
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset reflex history and tuned parameters
//	A     - Toggle the arterial baroreflex
//	C     - Toggle the cardiopulmonary reflex
//	T     - Start or end a head-up tilt
//	Tab   - Cycle tunable parameters
//	Up/K  - Increase parameter (+5%)
//	Down/J- Decrease parameter (-5%)
//	V     - Cycle color themes
//	?     - Show help overlay
package viz
