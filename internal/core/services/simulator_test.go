package services

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driving"
)

// fakeDisplay emits the timestamps the test sends on feed.
type fakeDisplay struct {
	feed chan domain.TimePoint

	mu     sync.Mutex
	period domain.Period
	rates  []domain.Fps

	enables  atomic.Int64
	disables atomic.Int64
	pulses   atomic.Int64
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{
		feed:   make(chan domain.TimePoint),
		period: domain.Period(time.Millisecond),
	}
}

func (d *fakeDisplay) SetVsyncEnabled(_ domain.DisplayID, enabled bool) {
	if enabled {
		d.enables.Add(1)
	} else {
		d.disables.Add(1)
	}
}

func (d *fakeDisplay) Run(ctx context.Context, pulse driven.PulseFunc) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ts := <-d.feed:
			d.pulses.Add(1)
			pulse(ts, nil)
		}
	}
}

func (d *fakeDisplay) PresentFence() *domain.FenceTime {
	return domain.NewSignaledFence(0)
}

func (d *fakeDisplay) SetRefreshRate(fps domain.Fps) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rates = append(d.rates, fps)
	d.period = fps.Period()
}

func (d *fakeDisplay) Period() domain.Period {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.period
}

func (d *fakeDisplay) Pulses() int64   { return d.pulses.Load() }
func (d *fakeDisplay) Enables() int64  { return d.enables.Load() }
func (d *fakeDisplay) Disables() int64 { return d.disables.Load() }

var _ driven.Display = (*fakeDisplay)(nil)

// stepClock returns a fixed time.
type stepClock struct{ now atomic.Int64 }

func (c *stepClock) Now() domain.TimePoint { return domain.TimePoint(c.now.Load()) }

type simulatorFixture struct {
	factory *mockFactory
	display *fakeDisplay
	clock   *stepClock
}

func newSimulatorFixture(opts ...SimulatorOption) (*Simulator, *simulatorFixture) {
	f := &simulatorFixture{
		factory: newMockFactory(),
		display: newFakeDisplay(),
		clock:   &stepClock{},
	}
	sim := NewSimulator(f.factory, f.clock, func(domain.ScheduleConfig) driven.Display {
		return f.display
	}, opts...)
	return sim, f
}

func newTestSession(t *testing.T, sim *Simulator, cfg domain.ScheduleConfig) *Session {
	t.Helper()
	s, err := sim.NewSession(context.Background(), cfg, driving.SessionOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s.(*Session)
}

func runSession(t *testing.T, s *Session) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	t.Cleanup(cancel)
	return cancel, done
}

func TestSimulator_NewSessionBuildsSchedule(t *testing.T) {
	sim, f := newSimulatorFixture()
	cfg := domain.DefaultScheduleConfig()
	cfg.Display = 3
	cfg.Features = domain.NewFeatureFlags(domain.FeaturePresentFences)

	s := newTestSession(t, sim, cfg)

	assert.Equal(t, domain.DisplayID(3), s.Schedule().ID())
	assert.Equal(t, []string{"tracker", "dispatch", "controller"}, f.factory.order)
	assert.Equal(t, []bool{false}, f.factory.controller.ignorePresentFences)
	assert.Nil(t, s.TraceSession())
}

func TestSimulator_NewSessionRejectsBadTuning(t *testing.T) {
	sim, _ := newSimulatorFixture()
	cfg := domain.DefaultScheduleConfig()
	cfg.Tuning.Tracker.HistorySize = 0

	_, err := sim.NewSession(context.Background(), cfg, driving.SessionOptions{})

	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestSimulator_RecordNeedsStore(t *testing.T) {
	sim, _ := newSimulatorFixture()

	_, err := sim.NewSession(context.Background(), domain.DefaultScheduleConfig(), driving.SessionOptions{Record: true})

	assert.Error(t, err)
}

func TestSimulator_RecordOpensTraceSession(t *testing.T) {
	store := &mockTraceStore{}
	sim, f := newSimulatorFixture(WithTraceStore(store))
	cfg := domain.DefaultScheduleConfig()
	cfg.Features = domain.NewFeatureFlags(domain.FeatureTracePredictedVsync)

	s, err := sim.NewSession(context.Background(), cfg, driving.SessionOptions{Record: true})
	require.NoError(t, err)

	require.NotNil(t, s.TraceSession())
	assert.Equal(t, "session-1", s.TraceSession().ID)

	assert.True(t, f.factory.dispatch.fire(1, 100))
	require.NoError(t, s.Close())

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.samples, 1)
	assert.Equal(t, int64(1), store.samples[0].Value)
}

func TestSession_RunFeedsPulsesUntilStopped(t *testing.T) {
	sim, f := newSimulatorFixture()
	f.factory.controller.needsHwVsync = true
	s := newTestSession(t, sim, domain.DefaultScheduleConfig())

	_, done := runSession(t, s)
	require.Eventually(t, func() bool { return f.display.Enables() == 1 }, time.Second, time.Millisecond)

	f.display.feed <- 10
	f.display.feed <- 20

	assert.Eventually(t, func() bool {
		f.factory.controller.mu.Lock()
		defer f.factory.controller.mu.Unlock()
		return len(f.factory.controller.hwVsyncTimestamps) == 2
	}, time.Second, time.Millisecond)
	state, _ := s.Schedule().State()
	assert.Equal(t, domain.HwVsyncEnabled, state)

	s.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestSession_DisablesWhenModelSettles(t *testing.T) {
	sim, f := newSimulatorFixture()
	s := newTestSession(t, sim, domain.DefaultScheduleConfig())

	runSession(t, s)
	require.Eventually(t, func() bool { return f.display.Enables() == 1 }, time.Second, time.Millisecond)

	f.display.feed <- 10
	f.display.feed <- 20

	assert.Equal(t, int64(1), f.display.Disables())
	state, last := s.Schedule().State()
	assert.Equal(t, domain.HwVsyncDisabled, state)
	assert.Equal(t, domain.HwVsyncDisabled, last)

	f.factory.controller.mu.Lock()
	defer f.factory.controller.mu.Unlock()
	assert.Len(t, f.factory.controller.hwVsyncTimestamps, 1, "samples while disabled are ignored")
}

func TestSession_RunTransitionsToPanelPeriod(t *testing.T) {
	sim, f := newSimulatorFixture()
	f.display.SetRefreshRate(90)
	s := newTestSession(t, sim, domain.DefaultScheduleConfig())

	runSession(t, s)
	require.Eventually(t, func() bool { return f.display.Enables() == 1 }, time.Second, time.Millisecond)

	f.factory.controller.mu.Lock()
	defer f.factory.controller.mu.Unlock()
	assert.Equal(t, []domain.Period{domain.Fps(90).Period()}, f.factory.controller.transitions)
	state, _ := s.Schedule().State()
	assert.Equal(t, domain.HwVsyncEnabled, state)
}

func TestSession_RunReturnsContextError(t *testing.T) {
	sim, _ := newSimulatorFixture()
	s := newTestSession(t, sim, domain.DefaultScheduleConfig())

	cancel, done := runSession(t, s)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestSession_RunTwiceFails(t *testing.T) {
	sim, f := newSimulatorFixture()
	s := newTestSession(t, sim, domain.DefaultScheduleConfig())

	runSession(t, s)
	require.Eventually(t, func() bool { return f.display.Enables() == 1 }, time.Second, time.Millisecond)

	assert.Error(t, s.Run(context.Background()))
}

func TestSession_PresentFencesResync(t *testing.T) {
	sim, f := newSimulatorFixture()
	f.factory.controller.fenceNeedsHwVsync = true
	cfg := domain.DefaultScheduleConfig()
	cfg.Features = domain.NewFeatureFlags(domain.FeaturePresentFences)
	s := newTestSession(t, sim, cfg)

	runSession(t, s)
	require.Eventually(t, func() bool { return f.display.Enables() == 1 }, time.Second, time.Millisecond)
	f.display.feed <- 10

	assert.Eventually(t, func() bool { return f.display.Enables() >= 2 }, time.Second, time.Millisecond)
}

func TestSession_ToggleHardwareVsync(t *testing.T) {
	sim, f := newSimulatorFixture()
	s := newTestSession(t, sim, domain.DefaultScheduleConfig())

	assert.False(t, s.ToggleHardwareVsync())
	state, _ := s.Schedule().State()
	assert.Equal(t, domain.HwVsyncDisallowed, state)

	s.Resync()
	assert.Equal(t, int64(0), f.display.Enables(), "disallowed schedule must not enable")

	assert.True(t, s.ToggleHardwareVsync())
	state, _ = s.Schedule().State()
	assert.Equal(t, domain.HwVsyncEnabled, state)
	assert.Equal(t, int64(1), f.display.Enables())
}

func TestSession_SwitchRefreshRate(t *testing.T) {
	sim, f := newSimulatorFixture()
	s := newTestSession(t, sim, domain.DefaultScheduleConfig())

	s.SwitchRefreshRate(90)
	s.SwitchRefreshRate(0)

	assert.Equal(t, []domain.Fps{90}, f.display.rates)
	f.factory.controller.mu.Lock()
	assert.Equal(t, []domain.Period{domain.Fps(90).Period()}, f.factory.controller.transitions)
	f.factory.controller.mu.Unlock()
	assert.Equal(t, int64(1), f.display.Enables())
}

func TestSession_Snapshot(t *testing.T) {
	sim, f := newSimulatorFixture()
	f.clock.now.Store(1_000_000)
	cfg := domain.DefaultScheduleConfig()
	cfg.Display = 2
	cfg.Features = domain.NewFeatureFlags(domain.FeatureTracePredictedVsync)
	s := newTestSession(t, sim, cfg)

	snap := s.Snapshot()
	assert.Equal(t, domain.DisplayID(2), snap.Display)
	assert.Equal(t, domain.HwVsyncDisabled, snap.State)
	assert.Equal(t, domain.Period(16666667), snap.Period)
	assert.Equal(t, domain.Period(time.Millisecond), snap.PanelPeriod)
	assert.Equal(t, domain.TimePoint(1_000_000), snap.Now)
	assert.GreaterOrEqual(t, snap.NextVsync, snap.Now)
	assert.True(t, snap.Traced)
	assert.False(t, snap.Parity)

	require.True(t, f.factory.dispatch.fire(1, 100))

	snap = s.Snapshot()
	assert.True(t, snap.Parity)
	assert.Equal(t, int64(1), snap.TraceEvents)
}

func TestSession_DumpAndClose(t *testing.T) {
	sim, f := newSimulatorFixture()
	s := newTestSession(t, sim, domain.DefaultScheduleConfig())

	var buf bytes.Buffer
	s.Dump(&buf)
	assert.Contains(t, buf.String(), "hwVsyncState=Disabled")

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	f.factory.dispatch.mu.Lock()
	defer f.factory.dispatch.mu.Unlock()
	assert.True(t, f.factory.dispatch.closed)
}
