package domain

// HwVsyncState is the hardware vsync state of one display.
//
// Disallowed is distinct from Disabled: a disallowed display stays off
// regardless of demand until hardware vsync is allowed again.
type HwVsyncState int

const (
	// HwVsyncDisabled means hardware vsync is off but may be enabled.
	HwVsyncDisabled HwVsyncState = iota
	// HwVsyncEnabled means hardware vsync pulses are being generated.
	HwVsyncEnabled
	// HwVsyncDisallowed means hardware vsync is off and enabling is forbidden.
	HwVsyncDisallowed
)

// String returns the state name.
func (s HwVsyncState) String() string {
	switch s {
	case HwVsyncDisabled:
		return "Disabled"
	case HwVsyncEnabled:
		return "Enabled"
	case HwVsyncDisallowed:
		return "Disallowed"
	default:
		return "Unknown"
	}
}
