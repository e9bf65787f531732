package domain

import "time"

// CallbackToken identifies a callback registered with a dispatch.
type CallbackToken uint64

// VsyncCallback is invoked by a dispatch near an anticipated vsync.
// vsyncTime is the targeted vsync, wakeupTime the instant the callback was
// due and readyTime the deadline by which its work must be ready.
type VsyncCallback func(vsyncTime, wakeupTime, readyTime TimePoint)

// ScheduleTiming arms the next firing of a callback.
//
// The callback targets the first anticipated vsync at or after both
// EarliestVsync and now+WorkDuration+ReadyDuration, and wakes at
// target-WorkDuration-ReadyDuration. The zero value targets the next vsync
// with no leeway.
type ScheduleTiming struct {
	// WorkDuration is how long the callback needs before the ready deadline.
	WorkDuration time.Duration

	// ReadyDuration is how far ahead of the vsync the work must be ready.
	ReadyDuration time.Duration

	// EarliestVsync is the earliest vsync the callback may target.
	EarliestVsync TimePoint
}

// CancelResult reports the outcome of cancelling an armed callback.
type CancelResult int

const (
	// CancelCancelled means the pending firing was removed.
	CancelCancelled CancelResult = iota
	// CancelTooLate means the callback was not armed or is already firing.
	CancelTooLate
	// CancelError means the token is unknown.
	CancelError
)

// String returns the result name.
func (r CancelResult) String() string {
	switch r {
	case CancelCancelled:
		return "Cancelled"
	case CancelTooLate:
		return "TooLate"
	default:
		return "Error"
	}
}
