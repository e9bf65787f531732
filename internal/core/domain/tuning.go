package domain

import (
	"fmt"
	"time"
)

// Tuned engine constants. These trade dispatch precision and prediction
// latency against wakeups and battery.
const (
	// DefaultRefreshRate is the refresh rate assumed before any sample arrives.
	DefaultRefreshRate Fps = 60

	// DefaultHistorySize is the number of vsync samples kept by the tracker.
	DefaultHistorySize = 20

	// DefaultMinSamplesForPrediction is the sample count before the model is trusted.
	DefaultMinSamplesForPrediction = 6

	// DefaultDiscardOutlierPercent is the share of worst samples excluded from the fit.
	DefaultDiscardOutlierPercent = 20

	// DefaultGroupDispatchWithin groups callbacks due this close together into one wake.
	DefaultGroupDispatchWithin = 500 * time.Microsecond

	// DefaultSnapToSameVsyncWithin snaps callbacks this close to an already
	// dispatched vsync onto the following one.
	DefaultSnapToSameVsyncWithin = 3 * time.Millisecond

	// DefaultMaxPendingFences is the number of unsignalled present fences tracked.
	DefaultMaxPendingFences = 20
)

// TrackerTuning configures the vsync period predictor.
type TrackerTuning struct {
	// InitialPeriod is the period assumed before samples arrive.
	InitialPeriod Period

	// HistorySize is the number of timestamps retained.
	HistorySize int

	// MinSamplesForPrediction is the number of timestamps before the fit is used.
	MinSamplesForPrediction int

	// DiscardOutlierPercent is the percentage of samples dropped from the fit.
	DiscardOutlierPercent int
}

// DispatchTuning configures the timed callback dispatcher.
type DispatchTuning struct {
	// GroupDispatchWithin is the window in which due callbacks share one wake.
	GroupDispatchWithin time.Duration

	// SnapToSameVsyncWithin is the distance under which a target is treated as
	// the vsync already dispatched.
	SnapToSameVsyncWithin time.Duration
}

// ControllerTuning configures the hardware pulse reconciler.
type ControllerTuning struct {
	// MaxPendingFences caps the unsignalled fences kept.
	MaxPendingFences int

	// KernelIdleTimer is set when the display driver runs a kernel idle timer.
	KernelIdleTimer bool
}

// Tuning groups the constants used to build the three engines of a schedule.
type Tuning struct {
	Tracker    TrackerTuning
	Dispatch   DispatchTuning
	Controller ControllerTuning
}

// DefaultTuning returns the tuned defaults.
func DefaultTuning() Tuning {
	return Tuning{
		Tracker: TrackerTuning{
			InitialPeriod:           DefaultRefreshRate.Period(),
			HistorySize:             DefaultHistorySize,
			MinSamplesForPrediction: DefaultMinSamplesForPrediction,
			DiscardOutlierPercent:   DefaultDiscardOutlierPercent,
		},
		Dispatch: DispatchTuning{
			GroupDispatchWithin:   DefaultGroupDispatchWithin,
			SnapToSameVsyncWithin: DefaultSnapToSameVsyncWithin,
		},
		Controller: ControllerTuning{
			MaxPendingFences: DefaultMaxPendingFences,
		},
	}
}

// Validate checks that every constant is within range.
func (t Tuning) Validate() error {
	switch {
	case t.Tracker.InitialPeriod <= 0:
		return fmt.Errorf("%w: initial period must be positive", ErrInvalidConfig)
	case t.Tracker.HistorySize < 2:
		return fmt.Errorf("%w: history size must be at least 2", ErrInvalidConfig)
	case t.Tracker.MinSamplesForPrediction < 2 || t.Tracker.MinSamplesForPrediction > t.Tracker.HistorySize:
		return fmt.Errorf("%w: min samples must be between 2 and history size", ErrInvalidConfig)
	case t.Tracker.DiscardOutlierPercent < 0 || t.Tracker.DiscardOutlierPercent >= 100:
		return fmt.Errorf("%w: outlier percent must be in [0, 100)", ErrInvalidConfig)
	case t.Dispatch.GroupDispatchWithin < 0 || t.Dispatch.SnapToSameVsyncWithin < 0:
		return fmt.Errorf("%w: dispatch tolerances must not be negative", ErrInvalidConfig)
	case t.Controller.MaxPendingFences < 1:
		return fmt.Errorf("%w: max pending fences must be positive", ErrInvalidConfig)
	}
	return nil
}

// ScheduleConfig is the configuration of one display schedule and the
// simulated display that drives it.
type ScheduleConfig struct {
	// Display is the identity of the governed display.
	Display DisplayID

	// RefreshRate is the true rate of the simulated display.
	RefreshRate Fps

	// Jitter is the maximum deviation applied to simulated pulses.
	Jitter time.Duration

	// Features are the capability flags passed to the schedule.
	Features FeatureFlags

	// Tuning holds the engine constants.
	Tuning Tuning
}

// DefaultScheduleConfig returns sensible defaults for a single display.
func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{
		Display:     0,
		RefreshRate: DefaultRefreshRate,
		Tuning:      DefaultTuning(),
	}
}
