// Package domain defines the core types for per-display vsync scheduling.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - DisplayID: Opaque identity of the physical display a schedule governs
//   - TimePoint, Period, Fps: Monotonic nanosecond time values
//   - HwVsyncState: The hardware vsync state machine value
//   - FeatureFlags: Capability flags supplied when a schedule is built
//   - ScheduleTiming: Arming parameters for a dispatch callback
//   - Tuning: Prediction and dispatch constants
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
