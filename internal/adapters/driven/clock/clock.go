// Package clock provides the system monotonic clock and a single-shot timer.
package clock

import (
	"sync"
	"time"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driven"
)

// Verify interface compliance.
var (
	_ driven.Clock = (*System)(nil)
	_ driven.Timer = (*Timer)(nil)
)

// originOffset keeps time points strictly positive. Zero is reserved by
// fences for "not signalled".
const originOffset = time.Second

// System is the monotonic clock. Time points count nanoseconds from the
// clock's creation.
type System struct {
	origin time.Time
}

// NewSystem creates a clock anchored at the current instant.
func NewSystem() *System {
	return &System{origin: time.Now()}
}

// Now returns the current monotonic time.
func (c *System) Now() domain.TimePoint {
	return domain.TimePointFromNs(int64(time.Since(c.origin) + originOffset))
}

// Timer is a single-shot alarm backed by time.AfterFunc.
type Timer struct {
	clock *System

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// NewTimer creates a timer reading clock.
func NewTimer(clock *System) *Timer {
	return &Timer{clock: clock}
}

// Now returns the current time of the backing clock.
func (t *Timer) Now() domain.TimePoint {
	return t.clock.Now()
}

// AlarmAt replaces any pending alarm with one firing fn at or after at.
func (t *Timer) AlarmAt(fn func(), at domain.TimePoint) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	d := at.Sub(t.clock.Now())
	if d < 0 {
		d = 0
	}

	gen := t.gen
	t.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		if gen != t.gen {
			// Superseded while the runtime was already firing us.
			t.mu.Unlock()
			return
		}
		t.timer = nil
		t.mu.Unlock()
		fn()
	})
}

// AlarmCancel cancels the pending alarm, if any.
func (t *Timer) AlarmCancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Timer) stopLocked() {
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
