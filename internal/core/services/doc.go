// Package services implements the driving port interfaces.
// Services contain the core scheduling logic and orchestrate
// calls to driven ports (adapters).
//
// The central type is VsyncSchedule, which owns the tracker, dispatch and
// controller of one display and runs the hardware vsync state machine.
//
// Services are pure Go with no CGO or external dependencies.
package services
