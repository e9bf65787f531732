package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
)

// SessionOptions controls how a simulation session is built.
type SessionOptions struct {
	// Record persists published trace counters into a new trace session.
	Record bool
}

// Simulator builds schedules driven by a simulated display.
type Simulator interface {
	// NewSession builds a schedule and display for cfg. The session is idle
	// until Run is called.
	NewSession(ctx context.Context, cfg domain.ScheduleConfig, opts SessionOptions) (SimulationSession, error)
}

// SimulationSession is one schedule paired with the display driving it.
// All methods are safe for concurrent use.
type SimulationSession interface {
	// Run enables hardware vsync and feeds pulses and present fences to the
	// schedule. It blocks until ctx is cancelled or Stop is called.
	Run(ctx context.Context) error

	// Stop ends a running Run.
	Stop()

	// Snapshot returns the current schedule and display state.
	Snapshot() domain.ScheduleSnapshot

	// Dump writes the schedule diagnostics.
	Dump(w io.Writer)

	// Resync asks for hardware vsync to re-anchor the model.
	Resync()

	// ToggleHardwareVsync disallows hardware vsync, or lifts a disallow and
	// resyncs. It returns whether hardware vsync is allowed afterwards.
	ToggleHardwareVsync() bool

	// SwitchRefreshRate changes the panel rate and starts a period transition.
	SwitchRefreshRate(fps domain.Fps)

	// TraceSession returns the recorded trace session, nil when not recording.
	TraceSession() *domain.TraceSession

	// Close stops the session and releases the schedule.
	Close() error
}
