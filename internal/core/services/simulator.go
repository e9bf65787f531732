package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driving"
	"github.com/custodia-labs/vsync-cli/internal/logger"
)

// Ensure the simulation types implement the driving ports.
var (
	_ driving.Simulator         = (*Simulator)(nil)
	_ driving.SimulationSession = (*Session)(nil)
)

// Simulator builds sessions pairing a VsyncSchedule with a display.
type Simulator struct {
	factory    driven.EngineFactory
	clock      driven.Clock
	newDisplay driven.DisplayFactory
	traces     driven.TraceStore
	sink       driven.TraceSink
}

// SimulatorOption configures a Simulator.
type SimulatorOption func(*Simulator)

// WithTraceStore enables recorded sessions.
func WithTraceStore(store driven.TraceStore) SimulatorOption {
	return func(s *Simulator) {
		s.traces = store
	}
}

// WithSessionSink adds a sink that receives the counters of every session.
func WithSessionSink(sink driven.TraceSink) SimulatorOption {
	return func(s *Simulator) {
		s.sink = sink
	}
}

// NewSimulator creates a simulator. clock must be the clock the factory's
// engines read.
func NewSimulator(
	factory driven.EngineFactory,
	clock driven.Clock,
	newDisplay driven.DisplayFactory,
	opts ...SimulatorOption,
) *Simulator {
	s := &Simulator{
		factory:    factory,
		clock:      clock,
		newDisplay: newDisplay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSession builds the display and schedule described by cfg.
func (s *Simulator) NewSession(
	ctx context.Context,
	cfg domain.ScheduleConfig,
	opts driving.SessionOptions,
) (driving.SimulationSession, error) {
	session := &Session{
		cfg:   cfg,
		clock: s.clock,
		log:   logger.For(cfg.Display.String()).With("session"),
	}

	sinks := TeeSink{session.countingSink(), s.sink}
	if opts.Record {
		if s.traces == nil {
			return nil, errors.New("trace store not configured")
		}
		recorder, err := NewTraceRecorder(ctx, s.traces, cfg.Display, 0)
		if err != nil {
			return nil, err
		}
		session.recorder = recorder
		sinks = append(sinks, recorder)
	}

	schedule, err := NewVsyncSchedule(
		cfg.Display,
		cfg.Features,
		s.factory,
		WithTuning(cfg.Tuning),
		WithTraceSink(sinks),
	)
	if err != nil {
		if session.recorder != nil {
			session.recorder.Close()
		}
		return nil, fmt.Errorf("building schedule: %w", err)
	}
	session.schedule = schedule
	session.display = s.newDisplay(cfg)

	return session, nil
}

// Session runs one schedule against one display.
//
// Pulses from the display are fed to AddResyncSample on the display's
// goroutine. With FeaturePresentFences a present fence is fed once per
// panel period.
type Session struct {
	cfg      domain.ScheduleConfig
	schedule *VsyncSchedule
	display  driven.Display
	clock    driven.Clock
	recorder *TraceRecorder
	log      logger.Component

	events atomic.Int64

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	closeOnce sync.Once
	closeErr  error
}

// Schedule returns the session's schedule.
func (s *Session) Schedule() *VsyncSchedule {
	return s.schedule
}

// Run enables hardware vsync, moving the model to the panel period, and
// blocks until ctx is cancelled or Stop is called. It returns nil after Stop
// and ctx.Err() after cancellation.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("session already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	presenting := s.cfg.Features.Has(domain.FeaturePresentFences)
	if presenting {
		s.wg.Add(2)
	} else {
		s.wg.Add(1)
	}
	s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		s.wg.Wait()
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	go func() {
		defer s.wg.Done()
		if err := s.display.Run(runCtx, s.onPulse); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Warn("display stopped: %v", err)
		}
	}()

	if presenting {
		go func() {
			defer s.wg.Done()
			s.presentLoop(runCtx)
		}()
	}

	// The tracker starts from its configured initial period, which need not
	// match the panel. A transition to the panel period also enables hardware
	// vsync, and ends immediately when the two already agree.
	s.schedule.StartPeriodTransition(s.display, s.display.Period(), false)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-stopCh:
		return nil
	}
}

// Stop ends a running Run. It does nothing when the session is idle.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.stopCh == nil {
		return
	}
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
}

func (s *Session) onPulse(timestamp domain.TimePoint, hwcPeriod *domain.Period) {
	if s.schedule.AddResyncSample(s.display, timestamp, hwcPeriod) {
		s.log.Debug("period transition confirmed at %d", timestamp)
	}
}

// presentLoop presents one frame per panel period.
func (s *Session) presentLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.display.Period().Duration()):
			s.schedule.AddPresentFence(s.display, s.display.PresentFence())
		}
	}
}

// Snapshot returns the current schedule and display state.
func (s *Session) Snapshot() domain.ScheduleSnapshot {
	state, last := s.schedule.State()
	now := s.clock.Now()

	snap := domain.ScheduleSnapshot{
		Display:     s.cfg.Display,
		State:       state,
		LastState:   last,
		Period:      s.schedule.Period(),
		PanelPeriod: s.display.Period(),
		Now:         now,
		NextVsync:   s.schedule.VsyncDeadlineAfter(now),
		TraceEvents: s.events.Load(),
		Pulses:      s.display.Pulses(),
		Enables:     s.display.Enables(),
		Disables:    s.display.Disables(),
	}
	if tracer := s.schedule.Tracer(); tracer != nil {
		snap.Traced = true
		snap.Parity = tracer.Parity()
	}
	return snap
}

// Dump writes the schedule diagnostics.
func (s *Session) Dump(w io.Writer) {
	s.schedule.Dump(w)
}

// Resync asks for hardware vsync to re-anchor the model.
func (s *Session) Resync() {
	s.schedule.EnableHardwareVsync(s.display)
}

// ToggleHardwareVsync disallows hardware vsync, or lifts a disallow and
// resyncs.
func (s *Session) ToggleHardwareVsync() bool {
	if s.schedule.IsHardwareVsyncAllowed() {
		s.schedule.DisableHardwareVsync(s.display, true)
		return false
	}
	s.schedule.AllowHardwareVsync()
	s.schedule.EnableHardwareVsync(s.display)
	return true
}

// SwitchRefreshRate changes the panel rate and starts a period transition.
func (s *Session) SwitchRefreshRate(fps domain.Fps) {
	if fps <= 0 {
		return
	}
	s.display.SetRefreshRate(fps)
	s.schedule.StartPeriodTransition(s.display, fps.Period(), false)
}

// TraceSession returns the recorded trace session, nil when not recording.
func (s *Session) TraceSession() *domain.TraceSession {
	if s.recorder == nil {
		return nil
	}
	session := s.recorder.Session()
	return &session
}

// Close stops the session, then closes the schedule and flushes the
// recorder. Safe to call multiple times.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.Stop()
		s.wg.Wait()

		var errs []error
		if err := s.schedule.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing schedule: %w", err))
		}
		if s.recorder != nil {
			if err := s.recorder.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing trace recorder: %w", err))
			}
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

func (s *Session) countingSink() driven.TraceSink {
	return eventCounter{&s.events}
}

// eventCounter counts published trace values.
type eventCounter struct {
	n *atomic.Int64
}

func (c eventCounter) Counter(string, int64, domain.TimePoint) {
	c.n.Add(1)
}
