// Package viz provides the terminal live view of a pendulum session.
//
// The view is a Bubble Tea program:
//
//   - [Model]: steps a [session.Session] once per tick and renders it
//   - [Canvas]: Braille-based pixel canvas for high-fidelity rendering
//   - [Projection]: maps pendulum coordinates onto the canvas
//
// # Key Bindings
//
//	Space    - Pause/Resume simulation
//	R        - Reset to initial state
//	Tab      - Select next slider (l1, l2, m1, m2)
//	Up/Down  - Move the selected slider by 1 (K/J by 10)
//	T        - Cycle color themes
//	?        - Show help
//	Q        - Quit
//
// Invalid parameters or a failed integration freeze the pendulum on its
// last valid frame and show the error in the status line.
package viz
