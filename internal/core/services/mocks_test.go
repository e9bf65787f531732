package services

import (
	"fmt"
	"io"
	"sync"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driven"
)

// --- Mock implementations for schedule testing ---

// mockTracker implements driven.VsyncTracker for testing.
type mockTracker struct {
	mu               sync.Mutex
	period           int64
	resetCount       int
	timestamps       []domain.TimePoint
	needsMoreSamples bool
}

func newMockTracker(period int64) *mockTracker {
	return &mockTracker{period: period}
}

func (m *mockTracker) AddVsyncTimestamp(ts domain.TimePoint) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timestamps = append(m.timestamps, ts)
	return true
}

func (m *mockTracker) NextAnticipatedVSyncTimeFrom(t domain.TimePoint) domain.TimePoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := domain.TimePoint(m.period)
	return (t/p + 1) * p
}

func (m *mockTracker) CurrentPeriod() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.period
}

func (m *mockTracker) SetPeriod(p domain.Period) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.period = p.Ns()
}

func (m *mockTracker) ResetModel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetCount++
}

func (m *mockTracker) NeedsMoreSamples() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.needsMoreSamples
}

func (m *mockTracker) Dump(w io.Writer) {
	fmt.Fprintf(w, "mockTracker period=%d\n", m.CurrentPeriod())
}

func (m *mockTracker) resets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resetCount
}

// mockDispatch implements driven.VsyncDispatch for testing.
// Callbacks only fire when the test calls fire.
type mockDispatch struct {
	mu          sync.Mutex
	nextToken   domain.CallbackToken
	callbacks   map[domain.CallbackToken]domain.VsyncCallback
	names       map[domain.CallbackToken]string
	schedules   []domain.ScheduleTiming
	unregisters []domain.CallbackToken
	registerErr error
	closed      bool
}

func newMockDispatch() *mockDispatch {
	return &mockDispatch{
		callbacks: make(map[domain.CallbackToken]domain.VsyncCallback),
		names:     make(map[domain.CallbackToken]string),
	}
}

func (m *mockDispatch) Register(name string, cb domain.VsyncCallback) (domain.CallbackToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.registerErr != nil {
		return 0, m.registerErr
	}
	m.nextToken++
	m.callbacks[m.nextToken] = cb
	m.names[m.nextToken] = name
	return m.nextToken, nil
}

func (m *mockDispatch) Unregister(token domain.CallbackToken) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.callbacks, token)
	m.unregisters = append(m.unregisters, token)
}

func (m *mockDispatch) Schedule(token domain.CallbackToken, timing domain.ScheduleTiming) (domain.TimePoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.callbacks[token]; !ok {
		return 0, domain.ErrUnknownToken
	}
	m.schedules = append(m.schedules, timing)
	return 0, nil
}

func (m *mockDispatch) Cancel(token domain.CallbackToken) domain.CancelResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.callbacks[token]; !ok {
		return domain.CancelError
	}
	return domain.CancelCancelled
}

func (m *mockDispatch) Dump(w io.Writer) {
	io.WriteString(w, "mockDispatch\n")
}

func (m *mockDispatch) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// fire invokes the callback of token as the dispatch goroutine would.
func (m *mockDispatch) fire(token domain.CallbackToken, vsync domain.TimePoint) bool {
	m.mu.Lock()
	cb, ok := m.callbacks[token]
	m.mu.Unlock()
	if !ok {
		return false
	}
	cb(vsync, vsync, vsync)
	return true
}

func (m *mockDispatch) scheduleCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.schedules)
}

// mockController implements driven.VsyncController for testing.
type mockController struct {
	mu                  sync.Mutex
	ignoreFences        bool
	needsHwVsync        bool
	periodFlushed       bool
	fenceNeedsHwVsync   bool
	hwVsyncTimestamps   []domain.TimePoint
	transitions         []domain.Period
	ignorePresentFences []bool
}

func (m *mockController) AddHwVsyncTimestamp(ts domain.TimePoint, _ *domain.Period) (bool, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hwVsyncTimestamps = append(m.hwVsyncTimestamps, ts)
	return m.needsHwVsync, m.periodFlushed
}

func (m *mockController) AddPresentFence(_ *domain.FenceTime) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fenceNeedsHwVsync
}

func (m *mockController) StartPeriodTransition(p domain.Period, _ bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions = append(m.transitions, p)
}

func (m *mockController) SetIgnorePresentFences(ignore bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ignoreFences = ignore
	m.ignorePresentFences = append(m.ignorePresentFences, ignore)
}

func (m *mockController) Dump(w io.Writer) {
	io.WriteString(w, "mockController\n")
}

// recordingCallback implements driven.SchedulerCallback and records every call.
type recordingCallback struct {
	mu    sync.Mutex
	calls []bool
	ids   []domain.DisplayID
}

func (r *recordingCallback) SetVsyncEnabled(id domain.DisplayID, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, enabled)
	r.ids = append(r.ids, id)
}

func (r *recordingCallback) count(enabled bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == enabled {
			n++
		}
	}
	return n
}

// mockFactory implements driven.EngineFactory and records build order.
type mockFactory struct {
	order            []string
	tracker          *mockTracker
	dispatch         *mockDispatch
	controller       *mockController
	trackerTuning    domain.TrackerTuning
	dispatchTuning   domain.DispatchTuning
	controllerTuning domain.ControllerTuning
}

func newMockFactory() *mockFactory {
	return &mockFactory{
		tracker:    newMockTracker(16666667),
		dispatch:   newMockDispatch(),
		controller: &mockController{},
	}
}

func (f *mockFactory) NewTracker(_ domain.DisplayID, tuning domain.TrackerTuning) driven.VsyncTracker {
	f.order = append(f.order, "tracker")
	f.trackerTuning = tuning
	return f.tracker
}

func (f *mockFactory) NewDispatch(tracker driven.VsyncTracker, tuning domain.DispatchTuning) driven.VsyncDispatch {
	f.order = append(f.order, "dispatch")
	f.dispatchTuning = tuning
	return f.dispatch
}

func (f *mockFactory) NewController(_ domain.DisplayID, _ driven.VsyncTracker, tuning domain.ControllerTuning) driven.VsyncController {
	f.order = append(f.order, "controller")
	f.controllerTuning = tuning
	return f.controller
}

// memorySink implements driven.TraceSink for testing.
type memorySink struct {
	mu     sync.Mutex
	values []int64
}

func (s *memorySink) Counter(_ string, value int64, _ domain.TimePoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = append(s.values, value)
}

// Ensure mocks implement interfaces
var (
	_ driven.VsyncTracker      = (*mockTracker)(nil)
	_ driven.VsyncDispatch     = (*mockDispatch)(nil)
	_ driven.VsyncController   = (*mockController)(nil)
	_ driven.SchedulerCallback = (*recordingCallback)(nil)
	_ driven.EngineFactory     = (*mockFactory)(nil)
	_ driven.TraceSink         = (*memorySink)(nil)
)
