package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render(fmt.Sprintf("vsync monitor  display %s", a.snapshot.Display)))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Panel.Render(a.renderState()))
	b.WriteString("\n")

	if a.showDump {
		b.WriteString(a.styles.Panel.Render(strings.TrimRight(a.dump, "\n")))
		b.WriteString("\n")
	}
	if a.showHelp {
		b.WriteString(a.status.FullHelp())
		b.WriteString("\n")
	}

	b.WriteString(a.status.View())
	return b.String()
}

func (a *App) renderState() string {
	s := a.snapshot
	rows := []string{
		a.row("Hardware vsync",
			a.styles.State(s.State).Render(s.State.String())+
				a.styles.Muted.Render(fmt.Sprintf("  last %s", s.LastState))),
		a.row("Model period", fmt.Sprintf("%s  %.3f Hz", s.Period, float64(s.Period.Fps()))),
		a.row("Panel period", fmt.Sprintf("%s  %.3f Hz", s.PanelPeriod, float64(s.PanelPeriod.Fps()))),
		a.row("Model error", a.renderError()),
		a.row("Next vsync", fmt.Sprintf("in %s", s.NextVsync.Sub(s.Now).Round(time.Microsecond))),
		a.row("Pulses", fmt.Sprintf("%d  enables %d  disables %d", s.Pulses, s.Enables, s.Disables)),
		a.row("Tracer", a.renderTracer()),
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a *App) row(label, value string) string {
	return a.styles.Label.Render(label) + a.styles.Value.Render(value)
}

func (a *App) renderError() string {
	d := a.snapshot.PeriodError().Duration().Round(100 * time.Nanosecond)
	text := d.String()
	if d >= 0 {
		text = "+" + text
	}
	if a.snapshot.PanelPeriod > 0 {
		pct := 100 * float64(a.snapshot.PeriodError()) / float64(a.snapshot.PanelPeriod)
		text += fmt.Sprintf("  (%+.3f%%)", pct)
	}
	return text
}

func (a *App) renderTracer() string {
	if !a.snapshot.Traced {
		return a.styles.Muted.Render("off")
	}

	parity := a.styles.ParityLow.Render("▄ 0")
	if a.snapshot.Parity {
		parity = a.styles.ParityHigh.Render("▀ 1")
	}
	text := fmt.Sprintf("%s  %d toggles", parity, a.snapshot.TraceEvents)
	if rate, ok := a.vsyncRate(); ok {
		text += fmt.Sprintf("  %.1f vsync/s", rate)
	}
	return text
}
