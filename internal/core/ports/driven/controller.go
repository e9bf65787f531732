package driven

import (
	"io"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
)

// VsyncController reconciles hardware vsync pulses and presentation fences
// into the tracker's model.
type VsyncController interface {
	// AddHwVsyncTimestamp feeds a hardware vsync pulse. hwcPeriod is the
	// period reported by the display, or nil when unknown.
	// needsHwVsync reports whether more hardware pulses are required;
	// periodFlushed is set when a pending period transition was confirmed.
	AddHwVsyncTimestamp(timestamp domain.TimePoint, hwcPeriod *domain.Period) (needsHwVsync, periodFlushed bool)

	// AddPresentFence feeds a presentation fence.
	// Returns whether hardware vsync is needed to refine the model.
	AddPresentFence(fence *domain.FenceTime) bool

	// StartPeriodTransition begins moving the model to period. With force
	// set the transition starts even if the period is unchanged.
	StartPeriodTransition(period domain.Period, force bool)

	// SetIgnorePresentFences disables fence ingestion.
	SetIgnorePresentFences(ignore bool)

	// Dump writes diagnostics.
	Dump(w io.Writer)
}
