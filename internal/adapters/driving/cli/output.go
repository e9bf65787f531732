package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// formatSnapshot renders one status line.
func formatSnapshot(s domain.ScheduleSnapshot) string {
	line := fmt.Sprintf("hw=%-10s period=%s (%.2f Hz, err %s) next=+%s pulses=%d on/off=%d/%d",
		s.State,
		s.Period,
		float64(s.Period.Fps()),
		formatError(s.PeriodError()),
		s.NextVsync.Sub(s.Now).Round(time.Microsecond),
		s.Pulses,
		s.Enables,
		s.Disables,
	)
	if s.Traced {
		line += fmt.Sprintf(" parity=%d", boolToInt(s.Parity))
	}
	return line
}

func formatError(p domain.Period) string {
	d := p.Duration().Round(time.Microsecond)
	if d >= 0 {
		return "+" + d.String()
	}
	return d.String()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
