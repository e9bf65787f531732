package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/vsync-cli/internal/adapters/driving/tui"
	"github.com/custodia-labs/vsync-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driving"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Launch the live schedule monitor",
	Long: `Launch an interactive terminal view of a running schedule.

Controls:
  r       - Resync to hardware vsync
  h       - Allow / disallow hardware vsync
  1, 2, 3 - Switch the panel to 60, 90 or 120 Hz
  d       - Toggle the diagnostics dump
  ?       - Toggle help
  q       - Quit`,
	RunE: runMonitor,
}

var monitorRecord bool

// runProgram runs the Bubbletea program; replaced in tests.
var runProgram = func(p *tea.Program) error {
	_, err := p.Run()
	return err
}

func init() {
	monitorCmd.Flags().BoolVar(&monitorRecord, "record", false, "record the trace counters to the trace store")
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, _ []string) (err error) {
	if configService == nil || simulator == nil {
		return errors.New("simulator not configured")
	}

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in monitor: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("monitor panicked: %v", r)
		}
	}()

	cfg, err := configService.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	session, err := simulator.NewSession(ctx, cfg, driving.SessionOptions{Record: monitorRecord})
	if err != nil {
		return err
	}
	defer session.Close()

	app, err := tui.NewApp(tui.NewPorts(session))
	if err != nil {
		return err
	}

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	go func() {
		p.Send(messages.SessionEnded{Err: session.Run(ctx)})
	}()

	err = runProgram(p)
	cancel()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
