package tui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/vsync-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/vsync-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/vsync-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/vsync-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/vsync-cli/internal/core/domain"
)

// App is the monitor model following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	styles *styles.Styles
	keys   *keymap.KeyMap
	status *status.Bar

	// snapshot is the latest sample; prev the one before it.
	snapshot domain.ScheduleSnapshot
	prev     domain.ScheduleSnapshot
	sampled  int

	showHelp bool
	showDump bool
	dump     string
	ended    bool

	width  int
	height int
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a monitor for the session in ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	return &App{
		ports:  ports,
		styles: s,
		keys:   km,
		status: status.NewBar(s, km),
		width:  80,
	}, nil
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("vsync monitor"),
		a.sample,
		a.tick(),
	)
}

func (a *App) tick() tea.Cmd {
	return tea.Tick(a.ports.interval(), func(t time.Time) tea.Msg {
		return messages.Tick{At: t}
	})
}

func (a *App) sample() tea.Msg {
	return messages.SnapshotTaken{Snapshot: a.ports.Session.Snapshot()}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.status.SetWidth(msg.Width)
		return a, nil

	case messages.Tick:
		if a.ended {
			return a, nil
		}
		return a, tea.Batch(a.sample, a.tick())

	case messages.SnapshotTaken:
		a.prev = a.snapshot
		a.snapshot = msg.Snapshot
		a.sampled++
		if a.showDump {
			a.dump = a.renderDump()
		}
		return a, nil

	case messages.SessionEnded:
		a.ended = true
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			a.status.SetMessage(status.LevelError, msg.Err.Error())
		} else {
			a.status.SetMessage(status.LevelInfo, "session ended")
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	session := a.ports.Session

	switch {
	case keymap.Matches(k, a.keys.Quit):
		return a, tea.Quit

	case keymap.Matches(k, a.keys.Help):
		a.showHelp = !a.showHelp

	case keymap.Matches(k, a.keys.Dump):
		a.showDump = !a.showDump
		if a.showDump {
			a.dump = a.renderDump()
		}

	case a.ended:
		a.status.SetMessage(status.LevelInfo, "session ended")

	case keymap.Matches(k, a.keys.Resync):
		session.Resync()
		a.status.SetMessage(status.LevelInfo, "resync requested")

	case keymap.Matches(k, a.keys.Toggle):
		if session.ToggleHardwareVsync() {
			a.status.SetMessage(status.LevelInfo, "hardware vsync allowed")
		} else {
			a.status.SetMessage(status.LevelInfo, "hardware vsync disallowed")
		}

	default:
		for _, r := range a.keys.Rates {
			if keymap.Matches(k, r.Binding) {
				session.SwitchRefreshRate(r.Fps)
				a.status.SetMessage(status.LevelInfo, fmt.Sprintf("switching to %.0f Hz", float64(r.Fps)))
				break
			}
		}
	}

	return a, a.sample
}

func (a *App) renderDump() string {
	var buf bytes.Buffer
	a.ports.Session.Dump(&buf)
	return buf.String()
}

// Snapshot returns the latest sampled state.
func (a *App) Snapshot() domain.ScheduleSnapshot {
	return a.snapshot
}

// Ended reports whether the session has stopped.
func (a *App) Ended() bool {
	return a.ended
}

// StatusMessage returns the status bar notice.
func (a *App) StatusMessage() string {
	return a.status.Message()
}

// vsyncRate is the predicted vsync rate measured from tracer toggles
// between the last two samples.
func (a *App) vsyncRate() (float64, bool) {
	if a.sampled < 2 || !a.snapshot.Traced {
		return 0, false
	}
	dt := a.snapshot.Now.Sub(a.prev.Now).Seconds()
	if dt <= 0 {
		return 0, false
	}
	return float64(a.snapshot.TraceEvents-a.prev.TraceEvents) / dt, true
}
