// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for a schedule to function:
//
//   - VsyncTracker: Statistical model of the display's vsync period
//   - VsyncDispatch: Timer queue firing callbacks near anticipated vsyncs
//   - VsyncController: Reconciles hardware pulses and fences into the tracker
//   - SchedulerCallback: Physically enables or disables hardware vsync
//   - EngineFactory: Builds the three engines with tuned constants
//   - Clock, Timer: Monotonic time and the dispatch alarm
//   - Display: A pulse source driven by a simulation session
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - TraceSink: Receives trace counters. Without it, tracing is dropped.
//   - TraceStore: Persists trace sessions for later inspection.
//   - ConfigStore: Application configuration. Defaults apply without it.
//   - ConfigWatcher: Reports config file changes for live reloads.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
