package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driving"
)

// mockConfigService implements driving.ConfigService for testing.
type mockConfigService struct {
	cfg     domain.ScheduleConfig
	loadErr error
	values  map[string]any
	setErr  error
	changes chan struct{}
}

func newMockConfigService() *mockConfigService {
	return &mockConfigService{
		cfg:    domain.DefaultScheduleConfig(),
		values: make(map[string]any),
	}
}

func (m *mockConfigService) Load() (domain.ScheduleConfig, error) { return m.cfg, m.loadErr }

func (m *mockConfigService) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockConfigService) Keys() []string { return []string{"display.id", "display.refresh_hz"} }
func (m *mockConfigService) Path() string   { return "/tmp/vsync/config.toml" }

func (m *mockConfigService) Watch(context.Context) (<-chan struct{}, error) {
	if m.changes == nil {
		return nil, errors.New("config watcher not configured")
	}
	return m.changes, nil
}

// mockTraceService implements driving.TraceService for testing.
type mockTraceService struct {
	sessions []domain.TraceSession
	samples  []domain.TraceSample
	err      error
	deleted  []string
	limit    int
}

func (m *mockTraceService) List(context.Context) ([]domain.TraceSession, error) {
	return m.sessions, m.err
}

func (m *mockTraceService) Samples(_ context.Context, _ string, limit int) ([]domain.TraceSample, error) {
	m.limit = limit
	return m.samples, m.err
}

func (m *mockTraceService) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

// mockSimulator implements driving.Simulator and records sessions.
type mockSimulator struct {
	mu       sync.Mutex
	sessions []*mockSession
	configs  []domain.ScheduleConfig
	opts     []driving.SessionOptions
	err      error
	runErr   error
}

func (m *mockSimulator) NewSession(
	_ context.Context,
	cfg domain.ScheduleConfig,
	opts driving.SessionOptions,
) (driving.SimulationSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	s := &mockSession{cfg: cfg, runErr: m.runErr}
	if opts.Record {
		s.trace = &domain.TraceSession{ID: "trace-1", Display: cfg.Display}
	}
	m.sessions = append(m.sessions, s)
	m.configs = append(m.configs, cfg)
	m.opts = append(m.opts, opts)
	return s, nil
}

func (m *mockSimulator) sessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// mockSession runs until its context is cancelled.
type mockSession struct {
	cfg    domain.ScheduleConfig
	trace  *domain.TraceSession
	runErr error

	mu     sync.Mutex
	runs   int
	closed bool
}

func (m *mockSession) Run(ctx context.Context) error {
	m.mu.Lock()
	m.runs++
	m.mu.Unlock()
	if m.runErr != nil {
		return m.runErr
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockSession) Stop() {}

func (m *mockSession) Snapshot() domain.ScheduleSnapshot {
	return domain.ScheduleSnapshot{
		Display:     m.cfg.Display,
		State:       domain.HwVsyncDisabled,
		Period:      m.cfg.RefreshRate.Period(),
		PanelPeriod: m.cfg.RefreshRate.Period(),
		Now:         domain.TimePoint(time.Second),
		NextVsync:   domain.TimePoint(time.Second + time.Millisecond),
	}
}

func (m *mockSession) Dump(w io.Writer) {
	io.WriteString(w, "hwVsyncState=Disabled\nlastHwVsyncState=Enabled\n")
}

func (m *mockSession) Resync()                            {}
func (m *mockSession) ToggleHardwareVsync() bool          { return true }
func (m *mockSession) SwitchRefreshRate(domain.Fps)       {}
func (m *mockSession) TraceSession() *domain.TraceSession { return m.trace }

func (m *mockSession) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockSession) wasClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var (
	_ driving.ConfigService     = (*mockConfigService)(nil)
	_ driving.TraceService      = (*mockTraceService)(nil)
	_ driving.Simulator         = (*mockSimulator)(nil)
	_ driving.SimulationSession = (*mockSession)(nil)
)

type cliFixture struct {
	config    *mockConfigService
	traces    *mockTraceService
	simulator *mockSimulator
}

// setupCLITest installs mock services and resets flags.
func setupCLITest(t *testing.T) *cliFixture {
	t.Helper()
	oldConfig, oldTraces, oldSim := configService, traceService, simulator
	oldBootstrap, oldClose := bootstrap, closeServices

	f := &cliFixture{
		config:    newMockConfigService(),
		traces:    &mockTraceService{},
		simulator: &mockSimulator{},
	}
	configService = f.config
	traceService = f.traces
	simulator = f.simulator
	bootstrap = nil
	closeServices = nil
	resetFlags()

	t.Cleanup(func() {
		configService, traceService, simulator = oldConfig, oldTraces, oldSim
		bootstrap, closeServices = oldBootstrap, oldClose
		resetFlags()
	})
	return f
}

func resetFlags() {
	verboseFlag = false
	configDirFlag = ""
	ephemeralFlag = false
	simulateDuration = 3 * time.Second
	simulateInterval = time.Second
	simulateRefreshHz = 0
	simulateWatch = false
	simulateRecord = false
	simulateDump = false
	dumpSettle = 500 * time.Millisecond
	traceShowLimit = 50
	monitorRecord = false
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
