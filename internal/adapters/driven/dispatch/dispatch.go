// Package dispatch implements a timer queue that wakes registered callbacks
// ahead of anticipated vsyncs.
//
// One alarm is armed at the earliest wakeup among all armed callbacks. When
// it fires, every callback due within the grouping window is delivered in the
// same wake. Deliveries are serialized on the timer goroutine.
package dispatch

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/vsync-cli/internal/logger"
)

// Verify interface compliance.
var (
	_ driven.VsyncDispatch = (*TimerQueue)(nil)
	_ io.Closer            = (*TimerQueue)(nil)
)

type entry struct {
	token    domain.CallbackToken
	name     string
	callback domain.VsyncCallback

	index   int // position in the wakeup heap, -1 when disarmed
	wakeup  domain.TimePoint
	vsync   domain.TimePoint
	ready   domain.TimePoint
	running bool

	lastDispatched domain.TimePoint
	hasDispatched  bool
}

func (e *entry) armed() bool {
	return e.index >= 0
}

type delivery struct {
	entry                *entry
	vsync, wakeup, ready domain.TimePoint
}

// TimerQueue is a driven.VsyncDispatch driven by a single Timer.
type TimerQueue struct {
	timer   driven.Timer
	tracker driven.VsyncTracker
	tuning  domain.DispatchTuning
	log     logger.Component

	// deliverMu serializes timer callbacks so no entry is re-entered.
	deliverMu sync.Mutex

	mu        sync.Mutex
	idle      *sync.Cond // signalled when a delivery batch completes
	entries   map[domain.CallbackToken]*entry
	armed     wakeupHeap
	nextToken domain.CallbackToken
	alarm     domain.TimePoint
	hasAlarm  bool
	closed    bool
}

// New creates a timer queue predicting vsyncs with tracker.
func New(timer driven.Timer, tracker driven.VsyncTracker, tuning domain.DispatchTuning) *TimerQueue {
	q := &TimerQueue{
		timer:   timer,
		tracker: tracker,
		tuning:  tuning,
		log:     logger.For("dispatch"),
		entries: make(map[domain.CallbackToken]*entry),
	}
	q.idle = sync.NewCond(&q.mu)
	return q
}

// Register adds a named callback. Tokens are never reused.
func (q *TimerQueue) Register(name string, callback domain.VsyncCallback) (domain.CallbackToken, error) {
	if callback == nil {
		return 0, fmt.Errorf("callback %q: %w", name, domain.ErrInvalidInput)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return 0, domain.ErrDispatchClosed
	}

	q.nextToken++
	q.entries[q.nextToken] = &entry{
		token:    q.nextToken,
		name:     name,
		callback: callback,
		index:    -1,
	}
	q.log.Debug("registered %s as %d", name, q.nextToken)
	return q.nextToken, nil
}

// Unregister removes token. When the callback is being delivered, Unregister
// waits for the delivery to return, so it must not be called from the
// callback itself.
func (q *TimerQueue) Unregister(token domain.CallbackToken) {
	q.mu.Lock()
	defer q.mu.Unlock()

	e, ok := q.entries[token]
	if !ok {
		return
	}
	delete(q.entries, token)
	q.armed.disarm(e)
	for e.running {
		q.idle.Wait()
	}
	q.rearmLocked()
	q.log.Debug("unregistered %s", e.name)
}

// Schedule arms the next firing of token and returns its wakeup time.
// Rescheduling an armed callback replaces its pending firing.
func (q *TimerQueue) Schedule(token domain.CallbackToken, timing domain.ScheduleTiming) (domain.TimePoint, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return 0, domain.ErrDispatchClosed
	}
	e, ok := q.entries[token]
	if !ok {
		return 0, fmt.Errorf("token %d: %w", token, domain.ErrUnknownToken)
	}

	now := q.timer.Now()
	lead := timing.WorkDuration + timing.ReadyDuration
	earliest := max(timing.EarliestVsync, now.Add(lead))
	target := q.tracker.NextAnticipatedVSyncTimeFrom(earliest)
	if e.hasDispatched && absDuration(target.Sub(e.lastDispatched)) < q.tuning.SnapToSameVsyncWithin {
		// Already delivered for this vsync: move to the following one.
		target = q.tracker.NextAnticipatedVSyncTimeFrom(target.Add(q.tuning.SnapToSameVsyncWithin))
	}

	e.vsync = target
	e.ready = target.Add(-timing.ReadyDuration)
	e.wakeup = target.Add(-lead)
	q.armed.arm(e)
	q.rearmLocked()
	return e.wakeup, nil
}

// Cancel disarms the pending firing of token.
func (q *TimerQueue) Cancel(token domain.CallbackToken) domain.CancelResult {
	q.mu.Lock()
	defer q.mu.Unlock()

	e, ok := q.entries[token]
	if !ok {
		return domain.CancelError
	}
	if !q.armed.disarm(e) {
		return domain.CancelTooLate
	}
	q.rearmLocked()
	return domain.CancelCancelled
}

// Close disarms every callback and cancels the alarm. Registrations stay
// valid for Unregister; Register and Schedule fail afterwards.
func (q *TimerQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	for q.armed.Len() > 0 {
		q.armed.disarm(q.armed.peek())
	}
	q.timer.AlarmCancel()
	q.hasAlarm = false
	q.log.Debug("closed with %d registrations", len(q.entries))
	return nil
}

// Dump writes the alarm and callback state.
func (q *TimerQueue) Dump(w io.Writer) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.timer.Now()
	_, _ = fmt.Fprintf(w, "  TimerQueue:\n")
	if q.hasAlarm {
		_, _ = fmt.Fprintf(w, "    intendedWakeup=%d (in %s)\n", q.alarm.Ns(), q.alarm.Sub(now))
	} else {
		_, _ = fmt.Fprintf(w, "    intendedWakeup=none\n")
	}
	_, _ = fmt.Fprintf(w, "    groupDispatchWithin=%s snapToSameVsyncWithin=%s\n",
		q.tuning.GroupDispatchWithin, q.tuning.SnapToSameVsyncWithin)
	_, _ = fmt.Fprintf(w, "    callbacks=%d\n", len(q.entries))

	tokens := make([]domain.CallbackToken, 0, len(q.entries))
	for token := range q.entries {
		tokens = append(tokens, token)
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i] < tokens[j] })

	for _, token := range tokens {
		e := q.entries[token]
		state := "disarmed"
		if e.armed() {
			state = fmt.Sprintf("armed wakeup=%d vsync=%d ready=%d", e.wakeup.Ns(), e.vsync.Ns(), e.ready.Ns())
		}
		_, _ = fmt.Fprintf(w, "      [%d] %s: %s", token, e.name, state)
		if e.hasDispatched {
			_, _ = fmt.Fprintf(w, " lastDispatched=%d", e.lastDispatched.Ns())
		}
		_, _ = fmt.Fprintln(w)
	}
}

// rearmLocked points the alarm at the earliest armed wakeup.
func (q *TimerQueue) rearmLocked() {
	next := q.armed.peek()
	if next == nil || q.closed {
		if q.hasAlarm {
			q.timer.AlarmCancel()
			q.hasAlarm = false
		}
		return
	}
	if q.hasAlarm && q.alarm == next.wakeup {
		return
	}
	q.alarm = next.wakeup
	q.hasAlarm = true
	q.timer.AlarmAt(q.onAlarm, next.wakeup)
}

// onAlarm runs on the timer goroutine.
func (q *TimerQueue) onAlarm() {
	q.deliverMu.Lock()
	defer q.deliverMu.Unlock()

	q.mu.Lock()
	q.hasAlarm = false
	now := q.timer.Now()
	horizon := now.Add(q.tuning.GroupDispatchWithin).Ns()

	var due []delivery
	for e := q.armed.popDue(horizon); e != nil; e = q.armed.popDue(horizon) {
		e.running = true
		e.lastDispatched = e.vsync
		e.hasDispatched = true
		due = append(due, delivery{entry: e, vsync: e.vsync, wakeup: e.wakeup, ready: e.ready})
	}
	if len(due) == 0 {
		// Early or stale alarm.
		q.rearmLocked()
		q.mu.Unlock()
		return
	}
	q.mu.Unlock()

	for _, d := range due {
		if late := now.Sub(d.wakeup); late > time.Millisecond {
			q.log.Debug("%s woke %s late", d.entry.name, late)
		}
		d.entry.callback(d.vsync, d.wakeup, d.ready)
	}

	q.mu.Lock()
	for _, d := range due {
		d.entry.running = false
	}
	q.idle.Broadcast()
	q.rearmLocked()
	q.mu.Unlock()
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
