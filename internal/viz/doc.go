// Package viz renders rigid body scenes in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Picker]: scene selection with parameter editing
//   - [Model]: live stepping or replay of recorded frames
//   - [Canvas]: Braille-based pixel canvas with line, rect and circle drawing
//   - [Theme]: four colour schemes cycled with T
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	N     - Single step
//	R     - Reset to initial state
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	P     - Toggle trails
//	?     - Show help overlay
//	[]/   - Time travel (rewind/forward)
//
// # Recording
//
// The G key records the canvas as a GIF animation, written to rigid2d.gif
// unless [Model.SetGIFPath] says otherwise.
package viz
