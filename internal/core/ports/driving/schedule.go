package driving

import (
	"io"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driven"
)

// VsyncSchedule coordinates vsync timing for one physical display.
// All methods are safe for concurrent use.
type VsyncSchedule interface {
	// ID returns the governed display.
	ID() domain.DisplayID

	// Period returns the tracker's current period estimate.
	Period() domain.Period

	// VsyncDeadlineAfter returns the anticipated vsync at or after t.
	VsyncDeadlineAfter(t domain.TimePoint) domain.TimePoint

	// Dump writes the hardware vsync state followed by the controller and
	// dispatch diagnostics.
	Dump(w io.Writer)

	// EnableHardwareVsync turns hardware vsync on if it is Disabled.
	EnableHardwareVsync(callback driven.SchedulerCallback)

	// DisableHardwareVsync turns hardware vsync off. With disallow set the
	// schedule refuses to enable again until AllowHardwareVsync is called.
	DisableHardwareVsync(callback driven.SchedulerCallback, disallow bool)

	// IsHardwareVsyncAllowed reports whether the state is not Disallowed.
	IsHardwareVsyncAllowed() bool

	// AllowHardwareVsync lifts a disallow, leaving hardware vsync Disabled.
	AllowHardwareVsync()

	// AddResyncSample feeds a hardware vsync pulse to the controller and
	// enables or disables hardware vsync according to its answer.
	// Returns whether a pending period transition was confirmed.
	AddResyncSample(callback driven.SchedulerCallback, timestamp domain.TimePoint, hwcPeriod *domain.Period) bool

	// AddPresentFence feeds a presentation fence, enabling hardware vsync
	// when the controller needs more samples.
	AddPresentFence(callback driven.SchedulerCallback, fence *domain.FenceTime)

	// StartPeriodTransition moves the model to a new period and enables
	// hardware vsync to confirm it.
	StartPeriodTransition(callback driven.SchedulerCallback, period domain.Period, force bool)

	// State returns the current and last non-Disallowed hardware vsync states.
	State() (current, last domain.HwVsyncState)

	// Close releases the tracer registration and stops the dispatch.
	Close() error
}
