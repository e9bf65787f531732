package driven

import (
	"io"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
)

// VsyncTracker maintains a model of the display's vsync period and phase.
// Implementations must be safe for concurrent use.
type VsyncTracker interface {
	// AddVsyncTimestamp feeds an observed vsync into the model.
	// Returns false if the sample was rejected as an outlier.
	AddVsyncTimestamp(timestamp domain.TimePoint) bool

	// NextAnticipatedVSyncTimeFrom returns the first predicted vsync at or after t.
	NextAnticipatedVSyncTimeFrom(t domain.TimePoint) domain.TimePoint

	// CurrentPeriod returns the latest period estimate in nanoseconds.
	CurrentPeriod() int64

	// SetPeriod replaces the ideal period and discards history.
	SetPeriod(period domain.Period)

	// ResetModel discards all history.
	// A resumed hardware signal cannot be assumed continuous with a stale model.
	ResetModel()

	// NeedsMoreSamples reports whether the model lacks enough samples for a fit.
	NeedsMoreSamples() bool

	// Dump writes diagnostics.
	Dump(w io.Writer)
}
