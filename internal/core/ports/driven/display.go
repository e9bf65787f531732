package driven

import (
	"context"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
)

// PulseFunc receives each hardware vsync. hwcPeriod is the period the
// display reports, nil when it does not report one.
type PulseFunc func(timestamp domain.TimePoint, hwcPeriod *domain.Period)

// Display is a hardware vsync source that a schedule switches on and off.
type Display interface {
	SchedulerCallback

	// Run emits pulses while enabled, until ctx is cancelled.
	Run(ctx context.Context, pulse PulseFunc) error

	// PresentFence returns a fence for a frame presented at the latest vsync.
	PresentFence() *domain.FenceTime

	// SetRefreshRate changes the panel refresh rate.
	SetRefreshRate(fps domain.Fps)

	// Period returns the true panel period.
	Period() domain.Period

	// Pulses returns the number of pulses emitted.
	Pulses() int64

	// Enables returns the number of enable requests received.
	Enables() int64

	// Disables returns the number of disable requests received.
	Disables() int64
}

// DisplayFactory builds the display described by cfg.
type DisplayFactory func(cfg domain.ScheduleConfig) Display
