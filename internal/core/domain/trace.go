package domain

import "time"

// TracePredictedVsyncName is the counter toggled at each predicted vsync.
const TracePredictedVsyncName = "VSYNC-predicted"

// TraceSession groups trace samples recorded for one schedule lifetime.
type TraceSession struct {
	// ID is the unique session identifier.
	ID string

	// Display is the display the session traced.
	Display DisplayID

	// StartedAt is when the session was created.
	StartedAt time.Time
}

// TraceSample is one counter value published by a traced ordinal.
type TraceSample struct {
	// SessionID identifies the owning session.
	SessionID string

	// Name is the counter name.
	Name string

	// Value is the counter value.
	Value int64

	// At is the monotonic time the value was published.
	At TimePoint
}
