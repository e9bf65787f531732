package domain

// ScheduleSnapshot is a point-in-time view of a running schedule and the
// display driving it.
type ScheduleSnapshot struct {
	// Display is the governed display.
	Display DisplayID

	// State and LastState are the hardware vsync states.
	State     HwVsyncState
	LastState HwVsyncState

	// Period is the tracker's current estimate.
	Period Period

	// PanelPeriod is the true period of the display.
	PanelPeriod Period

	// Now is when the snapshot was taken.
	Now TimePoint

	// NextVsync is the anticipated vsync at or after Now.
	NextVsync TimePoint

	// Traced reports whether the predicted vsync tracer is attached.
	Traced bool

	// Parity is the current predicted vsync trace value.
	Parity bool

	// TraceEvents is the number of counter values published.
	TraceEvents int64

	// Pulses, Enables and Disables are display counters.
	Pulses   int64
	Enables  int64
	Disables int64
}

// PeriodError returns the estimate minus the panel period.
func (s ScheduleSnapshot) PeriodError() Period {
	return s.Period - s.PanelPeriod
}
