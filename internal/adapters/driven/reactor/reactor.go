// Package reactor reconciles hardware vsync pulses and present fences into
// a tracker, and decides when hardware vsync is still needed.
package reactor

import (
	"fmt"
	"io"
	"sync"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/vsync-cli/internal/logger"
)

// Verify interface compliance.
var _ driven.VsyncController = (*Reactor)(nil)

// confirmAllowancePercent bounds the error of a pulse interval, as a share of
// the expected period, for it to confirm a period transition.
const confirmAllowancePercent = 10

// Reactor is a driven.VsyncController.
type Reactor struct {
	name            string
	clock           driven.Clock
	tracker         driven.VsyncTracker
	maxPending      int
	kernelIdleTimer bool
	log             logger.Component

	mu                sync.Mutex
	ignoreExternal    bool
	ignoreInternal    bool
	unfired           []*domain.FenceTime
	moreSamplesNeeded bool

	confirming     bool
	transitionTo   domain.Period
	hasTransition  bool
	lastHwVsync    domain.TimePoint
	hasLastHwVsync bool
}

// New creates a reactor feeding tracker.
func New(name string, clock driven.Clock, tracker driven.VsyncTracker, tuning domain.ControllerTuning) *Reactor {
	return &Reactor{
		name:            name,
		clock:           clock,
		tracker:         tracker,
		maxPending:      tuning.MaxPendingFences,
		kernelIdleTimer: tuning.KernelIdleTimer,
		log:             logger.For(name).With("reactor"),
	}
}

// SetIgnorePresentFences turns fence ingestion off or on. Pending fences
// are dropped when ignoring starts.
func (r *Reactor) SetIgnorePresentFences(ignore bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ignoreExternal = ignore
	if ignore {
		r.unfired = r.unfired[:0]
	}
}

// AddPresentFence records a present fence. Signalled fences, including any
// pending ones that signalled since, are fed to the tracker. It returns
// whether hardware vsync is needed to refine the model.
func (r *Reactor) AddPresentFence(fence *domain.FenceTime) bool {
	if fence == nil {
		return false
	}
	if _, status := fence.SignalTime(); status == domain.FenceInvalid {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ignoreExternal || r.ignoreInternal {
		return true
	}

	accepted := true
	kept := r.unfired[:0]
	for _, pending := range r.unfired {
		switch at, status := pending.SignalTime(); status {
		case domain.FencePending:
			kept = append(kept, pending)
		case domain.FenceSignaled:
			accepted = r.tracker.AddVsyncTimestamp(at) && accepted
		}
	}
	r.unfired = kept

	if at, status := fence.SignalTime(); status == domain.FenceSignaled {
		accepted = r.tracker.AddVsyncTimestamp(at) && accepted
	} else {
		if len(r.unfired) >= r.maxPending {
			r.unfired = append(r.unfired[:0], r.unfired[1:]...)
		}
		r.unfired = append(r.unfired, fence)
	}

	if !accepted {
		r.log.Debug("%s fence rejected by tracker, requesting hardware vsync", r.name)
		r.moreSamplesNeeded = true
		r.setIgnoreInternalLocked(true)
		r.confirming = true
	}
	return r.moreSamplesNeeded
}

// StartPeriodTransition begins moving the model to period. Unless force is
// set, a transition to the current period ends any confirmation instead.
func (r *Reactor) StartPeriodTransition(period domain.Period, force bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !force && period.Ns() == r.tracker.CurrentPeriod() {
		r.endTransitionLocked()
		r.setIgnoreInternalLocked(false)
		r.moreSamplesNeeded = false
		return
	}

	r.log.Debug("%s period transition to %s (force=%t)", r.name, period, force)
	r.confirming = true
	r.transitionTo = period
	r.hasTransition = true
	r.moreSamplesNeeded = true
	r.setIgnoreInternalLocked(true)
}

// AddHwVsyncTimestamp feeds a hardware pulse. hwcPeriod is the period the
// display reports, nil when unknown.
func (r *Reactor) AddHwVsyncTimestamp(timestamp domain.TimePoint, hwcPeriod *domain.Period) (needsHwVsync, periodFlushed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.periodConfirmedLocked(timestamp, hwcPeriod):
		if r.hasTransition {
			r.tracker.SetPeriod(r.transitionTo)
			periodFlushed = true
			r.log.Debug("%s period %s confirmed", r.name, r.transitionTo)
		}
		if r.hasLastHwVsync {
			r.tracker.AddVsyncTimestamp(r.lastHwVsync)
		}
		r.tracker.AddVsyncTimestamp(timestamp)
		r.endTransitionLocked()
		r.moreSamplesNeeded = r.tracker.NeedsMoreSamples()
	case r.confirming:
		r.lastHwVsync = timestamp
		r.hasLastHwVsync = true
		r.moreSamplesNeeded = true
	case !r.tracker.AddVsyncTimestamp(timestamp):
		r.moreSamplesNeeded = true
	default:
		r.moreSamplesNeeded = r.tracker.NeedsMoreSamples()
	}

	if !r.moreSamplesNeeded {
		r.setIgnoreInternalLocked(false)
	}
	return r.moreSamplesNeeded, periodFlushed
}

// Dump writes the reactor and tracker state.
func (r *Reactor) Dump(w io.Writer) {
	r.mu.Lock()
	_, _ = fmt.Fprintf(w, "  VsyncReactor %s:\n", r.name)
	_, _ = fmt.Fprintf(w, "    moreSamplesNeeded=%t\n", r.moreSamplesNeeded)
	_, _ = fmt.Fprintf(w, "    ignorePresentFences external=%t internal=%t\n", r.ignoreExternal, r.ignoreInternal)
	_, _ = fmt.Fprintf(w, "    unfiredFences=%d/%d\n", len(r.unfired), r.maxPending)
	_, _ = fmt.Fprintf(w, "    kernelIdleTimer=%t\n", r.kernelIdleTimer)
	if r.confirming {
		target := "current"
		if r.hasTransition {
			target = r.transitionTo.String()
		}
		_, _ = fmt.Fprintf(w, "    periodConfirmationInProgress to=%s\n", target)
	}
	if r.hasLastHwVsync {
		_, _ = fmt.Fprintf(w, "    lastHwVsync=%d (%s ago)\n", r.lastHwVsync.Ns(), r.clock.Now().Sub(r.lastHwVsync))
	}
	r.mu.Unlock()

	_, _ = fmt.Fprintf(w, "  VsyncTracker:\n")
	r.tracker.Dump(w)
}

func (r *Reactor) periodConfirmedLocked(timestamp domain.TimePoint, hwcPeriod *domain.Period) bool {
	if !r.confirming {
		return false
	}
	if !r.hasLastHwVsync && hwcPeriod == nil {
		return false
	}

	current := r.tracker.CurrentPeriod()
	changing := r.hasTransition && r.transitionTo.Ns() != current
	if r.kernelIdleTimer && !changing {
		// The idle timer makes the reported period unreliable once settled.
		hwcPeriod = nil
	}

	expected := current
	if r.hasTransition {
		expected = r.transitionTo.Ns()
	}
	allowance := expected * confirmAllowancePercent / 100

	if hwcPeriod != nil {
		return abs(hwcPeriod.Ns()-expected) < allowance
	}
	if !r.hasLastHwVsync {
		return false
	}
	return abs(timestamp.Sub(r.lastHwVsync).Nanoseconds()-expected) < allowance
}

func (r *Reactor) endTransitionLocked() {
	r.confirming = false
	r.hasTransition = false
	r.transitionTo = 0
	r.hasLastHwVsync = false
	r.lastHwVsync = 0
}

func (r *Reactor) setIgnoreInternalLocked(ignore bool) {
	r.ignoreInternal = ignore
	if ignore {
		r.unfired = r.unfired[:0]
	}
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
