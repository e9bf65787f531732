// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
)

// Theme defines the colour palette and styling for the TUI.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Secondary is the secondary accent colour.
	Secondary lipgloss.Color

	// Foreground is the default text colour.
	Foreground lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Success marks hardware vsync off with a trusted model.
	Success lipgloss.Color

	// Warning marks hardware vsync on while the model learns.
	Warning lipgloss.Color

	// Error marks a disallowed hardware vsync and failures.
	Error lipgloss.Color

	// Border is the border colour.
	Border lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#5FAFFF"),
		Secondary:  lipgloss.Color("#87D7AF"),
		Foreground: lipgloss.Color("#D0D0D0"),
		Muted:      lipgloss.Color("#767676"),
		Success:    lipgloss.Color("#5FD75F"),
		Warning:    lipgloss.Color("#FFD75F"),
		Error:      lipgloss.Color("#FF5F5F"),
		Border:     lipgloss.Color("#4E4E4E"),
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Title style for headers.
	Title lipgloss.Style

	// Label style for field names.
	Label lipgloss.Style

	// Value style for field values.
	Value lipgloss.Style

	// Muted style for less important text.
	Muted lipgloss.Style

	// Error style for error messages.
	Error lipgloss.Style

	// Enabled, Disabled and Disallowed colour the hardware vsync state.
	Enabled    lipgloss.Style
	Disabled   lipgloss.Style
	Disallowed lipgloss.Style

	// ParityHigh and ParityLow render the predicted vsync square wave.
	ParityHigh lipgloss.Style
	ParityLow  lipgloss.Style

	// Panel style for bordered sections.
	Panel lipgloss.Style

	// StatusBar style for the status bar.
	StatusBar lipgloss.Style

	// Help style for help text.
	Help lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Label: lipgloss.NewStyle().
			Foreground(theme.Secondary).
			Width(14),

		Value: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error),

		Enabled: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Warning),

		Disabled: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Success),

		Disallowed: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Error),

		ParityHigh: lipgloss.NewStyle().
			Foreground(theme.Primary),

		ParityLow: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(lipgloss.Color("#181825")).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(theme.Muted),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// State returns the style for a hardware vsync state.
func (s *Styles) State(state domain.HwVsyncState) lipgloss.Style {
	switch state {
	case domain.HwVsyncEnabled:
		return s.Enabled
	case domain.HwVsyncDisallowed:
		return s.Disallowed
	default:
		return s.Disabled
	}
}
