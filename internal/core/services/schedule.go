package services

import (
	"fmt"
	"io"
	"sync"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driving"
	"github.com/custodia-labs/vsync-cli/internal/logger"
)

// Ensure VsyncSchedule implements the interface.
var _ driving.VsyncSchedule = (*VsyncSchedule)(nil)

// VsyncSchedule coordinates vsync timing for a single physical display.
//
// It exclusively owns its tracker, dispatch and controller. The hardware
// vsync state is the only mutable state it holds directly and every
// transition runs under mu, including the scheduler callback.
type VsyncSchedule struct {
	id         domain.DisplayID
	tracker    driven.VsyncTracker
	dispatch   driven.VsyncDispatch
	controller driven.VsyncController
	tracer     *PredictedVsyncTracer
	log        logger.Component

	mu               sync.Mutex
	hwVsyncState     domain.HwVsyncState
	lastHwVsyncState domain.HwVsyncState

	closeOnce sync.Once
}

// ScheduleOption configures NewVsyncSchedule.
type ScheduleOption func(*scheduleOptions)

type scheduleOptions struct {
	tuning    domain.Tuning
	traceSink driven.TraceSink
}

// WithTuning replaces the default engine constants.
func WithTuning(tuning domain.Tuning) ScheduleOption {
	return func(o *scheduleOptions) {
		o.tuning = tuning
	}
}

// WithTraceSink sets where the predicted vsync tracer publishes its counter.
func WithTraceSink(sink driven.TraceSink) ScheduleOption {
	return func(o *scheduleOptions) {
		o.traceSink = sink
	}
}

// NewVsyncSchedule builds a fully wired schedule for display id.
//
// Engines are built in dependency order: tracker, then dispatch and
// controller on top of it. The controller ignores present fences unless
// FeaturePresentFences is set. With FeatureTracePredictedVsync a tracer is
// attached to the dispatch.
func NewVsyncSchedule(
	id domain.DisplayID,
	features domain.FeatureFlags,
	factory driven.EngineFactory,
	opts ...ScheduleOption,
) (*VsyncSchedule, error) {
	o := scheduleOptions{tuning: domain.DefaultTuning()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.tuning.Validate(); err != nil {
		return nil, err
	}

	tracker := factory.NewTracker(id, o.tuning.Tracker)
	dispatch := factory.NewDispatch(tracker, o.tuning.Dispatch)

	controllerTuning := o.tuning.Controller
	controllerTuning.KernelIdleTimer = features.Has(domain.FeatureKernelIdleTimer)
	controller := factory.NewController(id, tracker, controllerTuning)
	controller.SetIgnorePresentFences(!features.Has(domain.FeaturePresentFences))

	s := newVsyncSchedule(id, tracker, dispatch, controller)

	if features.Has(domain.FeatureTracePredictedVsync) {
		tracer, err := NewPredictedVsyncTracer(dispatch, o.traceSink)
		if err != nil {
			closeDispatch(dispatch)
			return nil, fmt.Errorf("creating tracer: %w", err)
		}
		s.tracer = tracer
	}

	s.log.Debug("schedule created, features=%s", features)
	return s, nil
}

// NewVsyncScheduleFromEngines builds a schedule around pre-built engines,
// bypassing tuning and feature wiring.
func NewVsyncScheduleFromEngines(
	id domain.DisplayID,
	tracker driven.VsyncTracker,
	dispatch driven.VsyncDispatch,
	controller driven.VsyncController,
) *VsyncSchedule {
	return newVsyncSchedule(id, tracker, dispatch, controller)
}

func newVsyncSchedule(
	id domain.DisplayID,
	tracker driven.VsyncTracker,
	dispatch driven.VsyncDispatch,
	controller driven.VsyncController,
) *VsyncSchedule {
	return &VsyncSchedule{
		id:               id,
		tracker:          tracker,
		dispatch:         dispatch,
		controller:       controller,
		log:              logger.For(id.String()),
		hwVsyncState:     domain.HwVsyncDisabled,
		lastHwVsyncState: domain.HwVsyncDisabled,
	}
}

// ID returns the governed display.
func (s *VsyncSchedule) ID() domain.DisplayID {
	return s.id
}

// Tracker returns the owned tracker.
func (s *VsyncSchedule) Tracker() driven.VsyncTracker {
	return s.tracker
}

// Dispatch returns the owned dispatch.
func (s *VsyncSchedule) Dispatch() driven.VsyncDispatch {
	return s.dispatch
}

// Controller returns the owned controller.
func (s *VsyncSchedule) Controller() driven.VsyncController {
	return s.controller
}

// Tracer returns the predicted vsync tracer, or nil when tracing is off.
func (s *VsyncSchedule) Tracer() *PredictedVsyncTracer {
	return s.tracer
}

// Period returns the tracker's current period estimate.
func (s *VsyncSchedule) Period() domain.Period {
	return domain.PeriodFromNs(s.tracker.CurrentPeriod())
}

// VsyncDeadlineAfter returns the anticipated vsync at or after t.
func (s *VsyncSchedule) VsyncDeadlineAfter(t domain.TimePoint) domain.TimePoint {
	return s.tracker.NextAnticipatedVSyncTimeFrom(t)
}

// Dump writes the hardware vsync state, then the controller and dispatch
// dumps. The lock is released before delegating.
func (s *VsyncSchedule) Dump(w io.Writer) {
	current, last := s.State()
	_, _ = fmt.Fprintf(w, "hwVsyncState=%s\n", current)
	_, _ = fmt.Fprintf(w, "lastHwVsyncState=%s\n", last)

	_, _ = io.WriteString(w, "VsyncController:\n")
	s.controller.Dump(w)

	_, _ = io.WriteString(w, "VsyncDispatch:\n")
	s.dispatch.Dump(w)
}

// State returns the current and last non-Disallowed hardware vsync states.
func (s *VsyncSchedule) State() (current, last domain.HwVsyncState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hwVsyncState, s.lastHwVsyncState
}

// EnableHardwareVsync turns hardware vsync on if it is Disabled, resetting
// the tracker model first. Redundant calls and calls while Disallowed are
// no-ops.
func (s *VsyncSchedule) EnableHardwareVsync(callback driven.SchedulerCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(callback, opEnable)
}

// DisableHardwareVsync turns hardware vsync off. The state becomes
// Disallowed if disallow is set and Disabled otherwise; the callback is only
// invoked when hardware vsync was Enabled.
func (s *VsyncSchedule) DisableHardwareVsync(callback driven.SchedulerCallback, disallow bool) {
	op := opDisable
	if disallow {
		op = opDisallow
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(callback, op)
}

// IsHardwareVsyncAllowed reports whether the state is not Disallowed.
func (s *VsyncSchedule) IsHardwareVsyncAllowed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hwVsyncState != domain.HwVsyncDisallowed
}

// AllowHardwareVsync lifts a disallow. Hardware vsync stays off until the
// next EnableHardwareVsync.
func (s *VsyncSchedule) AllowHardwareVsync() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(nil, opAllow)
}

// AddResyncSample feeds a hardware vsync pulse to the controller while
// hardware vsync is Enabled and disables it once the controller no longer
// needs pulses. Samples arriving in any other state are dropped.
func (s *VsyncSchedule) AddResyncSample(
	callback driven.SchedulerCallback,
	timestamp domain.TimePoint,
	hwcPeriod *domain.Period,
) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hwVsyncState != domain.HwVsyncEnabled {
		return false
	}

	needsHwVsync, periodFlushed := s.controller.AddHwVsyncTimestamp(timestamp, hwcPeriod)
	if !needsHwVsync {
		s.log.Debug("model settled at %s", domain.PeriodFromNs(s.tracker.CurrentPeriod()))
		s.applyLocked(callback, opDisable)
	}
	return periodFlushed
}

// AddPresentFence feeds a presentation fence and enables hardware vsync
// when the controller needs more samples.
func (s *VsyncSchedule) AddPresentFence(callback driven.SchedulerCallback, fence *domain.FenceTime) {
	if s.controller.AddPresentFence(fence) {
		s.EnableHardwareVsync(callback)
	}
}

// StartPeriodTransition moves the model towards period and enables
// hardware vsync so the controller can confirm it.
func (s *VsyncSchedule) StartPeriodTransition(callback driven.SchedulerCallback, period domain.Period, force bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Debug("period transition to %s (force=%t)", period, force)
	s.controller.StartPeriodTransition(period, force)
	s.applyLocked(callback, opEnable)
}

// applyLocked runs one state machine transition (caller must hold lock).
func (s *VsyncSchedule) applyLocked(callback driven.SchedulerCallback, op hwVsyncOp) {
	prev := s.hwVsyncState
	next, effect := transition(prev, op)

	switch effect {
	case effectEnable:
		s.tracker.ResetModel()
		callback.SetVsyncEnabled(s.id, true)
		s.lastHwVsyncState = domain.HwVsyncEnabled
	case effectDisable:
		callback.SetVsyncEnabled(s.id, false)
		s.lastHwVsyncState = domain.HwVsyncDisabled
	}
	s.hwVsyncState = next

	if prev != next {
		s.log.Debug("hw vsync %s: %s -> %s", op, prev, next)
	}
}

// Close releases the tracer registration, then stops the dispatch if it
// owns a timer. Safe to call multiple times.
func (s *VsyncSchedule) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.tracer != nil {
			s.tracer.Close()
		}
		err = closeDispatch(s.dispatch)
	})
	return err
}

func closeDispatch(dispatch driven.VsyncDispatch) error {
	if c, ok := dispatch.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
