package driven

import "github.com/custodia-labs/vsync-cli/internal/core/domain"

// Clock abstracts the monotonic clock for testability.
type Clock interface {
	// Now returns the current monotonic time.
	Now() domain.TimePoint
}

// Timer is a single-shot alarm on the monotonic clock.
type Timer interface {
	Clock

	// AlarmAt arranges for fn to be called at or after t, replacing any
	// pending alarm. fn runs on a goroutine owned by the timer.
	AlarmAt(fn func(), t domain.TimePoint)

	// AlarmCancel cancels the pending alarm, if any.
	AlarmCancel()
}
