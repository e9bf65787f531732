// Package status provides status bar components for the TUI.
package status

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/vsync-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/vsync-cli/internal/adapters/driving/tui/styles"
)

// Level is the severity of the status message.
type Level int

const (
	// LevelInfo is a neutral notice.
	LevelInfo Level = iota
	// LevelError reports a failure.
	LevelError
)

// Bar displays the last notice and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	help    help.Model
	level   Level
	message string
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	h := help.New()
	h.Styles.ShortKey = s.Help
	h.Styles.ShortDesc = s.Muted
	h.Styles.FullKey = s.Help
	h.Styles.FullDesc = s.Muted

	return &Bar{
		styles: s,
		keymap: km,
		help:   h,
		width:  80,
	}
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.help.ShortHelpView(s.keymap.ShortHelp())

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// FullHelp renders every binding.
func (s *Bar) FullHelp() string {
	return s.help.FullHelpView(s.keymap.FullHelp())
}

func (s *Bar) renderLeft() string {
	if s.message == "" {
		return s.styles.Muted.Render("Monitoring")
	}
	if s.level == LevelError {
		return s.styles.Error.Render("Error: " + s.message)
	}
	return s.styles.Value.Render(s.message)
}

// SetMessage sets the notice shown on the left.
func (s *Bar) SetMessage(level Level, message string) {
	s.level = level
	s.message = message
}

// Message returns the current notice.
func (s *Bar) Message() string {
	return s.message
}

// Level returns the severity of the current notice.
func (s *Bar) Level() Level {
	return s.level
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
	s.help.Width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear removes the notice.
func (s *Bar) Clear() {
	s.level = LevelInfo
	s.message = ""
}
