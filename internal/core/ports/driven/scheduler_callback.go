package driven

import "github.com/custodia-labs/vsync-cli/internal/core/domain"

// SchedulerCallback is the point where the core asks the platform to
// physically enable or disable hardware vsync generation.
//
// It is invoked while the schedule's state lock is held: implementations
// must not call back into the schedule or block indefinitely.
type SchedulerCallback interface {
	SetVsyncEnabled(id domain.DisplayID, enabled bool)
}

// SchedulerCallbackFunc adapts a function to SchedulerCallback.
type SchedulerCallbackFunc func(id domain.DisplayID, enabled bool)

// SetVsyncEnabled calls f(id, enabled).
func (f SchedulerCallbackFunc) SetVsyncEnabled(id domain.DisplayID, enabled bool) {
	f(id, enabled)
}
