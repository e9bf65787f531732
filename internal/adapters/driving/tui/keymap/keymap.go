// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
)

// KeyMap defines all keybindings for the monitor.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help toggles the full help.
	Help key.Binding

	// Resync enables hardware vsync to re-anchor the model.
	Resync key.Binding

	// Toggle disallows or allows hardware vsync.
	Toggle key.Binding

	// Dump shows the schedule diagnostics.
	Dump key.Binding

	// Rates switches the panel refresh rate.
	Rates []RateBinding
}

// RateBinding switches the panel to Fps.
type RateBinding struct {
	key.Binding
	Fps domain.Fps
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Resync: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "resync"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "allow/disallow hw vsync"),
		),
		Dump: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "dump"),
		),
		Rates: []RateBinding{
			rate("1", "60 Hz", 60),
			rate("2", "90 Hz", 90),
			rate("3", "120 Hz", 120),
		},
	}
}

func rate(k, desc string, fps domain.Fps) RateBinding {
	return RateBinding{
		Binding: key.NewBinding(key.WithKeys(k), key.WithHelp(k, desc)),
		Fps:     fps,
	}
}

// ShortHelp returns a short list of keybindings for the help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Resync, k.Toggle, k.Dump, k.Help, k.Quit}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	rates := make([]key.Binding, 0, len(k.Rates))
	for _, r := range k.Rates {
		rates = append(rates, r.Binding)
	}
	return [][]key.Binding{
		{k.Resync, k.Toggle, k.Dump},
		rates,
		{k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
