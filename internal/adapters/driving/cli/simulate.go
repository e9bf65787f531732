package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driving"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a schedule against a simulated display",
	Long: `Run a vsync schedule against a simulated display and print its state.

Hardware vsync is enabled at start; the schedule disables it once the
model has enough samples. Use --watch to rebuild the schedule whenever the
configuration file changes, and --record to persist the predicted vsync
trace.`,
	RunE: runSimulate,
}

var (
	simulateDuration  time.Duration
	simulateInterval  time.Duration
	simulateRefreshHz float64
	simulateWatch     bool
	simulateRecord    bool
	simulateDump      bool
)

func init() {
	simulateCmd.Flags().DurationVarP(&simulateDuration, "duration", "d", 3*time.Second, "how long to run, 0 to run until interrupted")
	simulateCmd.Flags().DurationVar(&simulateInterval, "interval", time.Second, "status print interval")
	simulateCmd.Flags().Float64Var(&simulateRefreshHz, "refresh-hz", 0, "override the panel refresh rate")
	simulateCmd.Flags().BoolVar(&simulateWatch, "watch", false, "rebuild the schedule when the configuration changes")
	simulateCmd.Flags().BoolVar(&simulateRecord, "record", false, "record the trace counters to the trace store")
	simulateCmd.Flags().BoolVar(&simulateDump, "dump", false, "print the schedule diagnostics before exiting")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	if configService == nil || simulator == nil {
		return errors.New("simulator not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if simulateDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, simulateDuration)
		defer cancel()
	}

	var changes <-chan struct{}
	if simulateWatch {
		ch, err := configService.Watch(ctx)
		if err != nil {
			return err
		}
		changes = ch
	}

	out := cmd.OutOrStdout()
	live := isTerminal(out)

	for {
		cfg, err := loadSimulationConfig()
		if err != nil {
			return err
		}

		session, err := simulator.NewSession(ctx, cfg, driving.SessionOptions{Record: simulateRecord})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Simulating display %s at %.2f Hz (features: %s)\n",
			cfg.Display, float64(cfg.RefreshRate), cfg.Features)
		if ts := session.TraceSession(); ts != nil {
			fmt.Fprintf(out, "Recording trace session %s\n", ts.ID)
		}

		changed, err := driveSession(ctx, session, out, live, changes)
		if live {
			fmt.Fprintln(out)
		}
		if simulateDump {
			session.Dump(out)
		}
		if closeErr := session.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		fmt.Fprintln(out, "Configuration changed, rebuilding schedule")
	}
}

// loadSimulationConfig loads the configuration and applies flag overrides.
func loadSimulationConfig() (domain.ScheduleConfig, error) {
	cfg, err := configService.Load()
	if err != nil {
		return cfg, fmt.Errorf("loading config: %w", err)
	}
	if simulateRefreshHz > 0 {
		cfg.RefreshRate = domain.Fps(simulateRefreshHz)
	}
	return cfg, nil
}

// driveSession runs session until ctx ends or a change arrives, printing a
// status line every interval. It reports whether a change ended the run.
func driveSession(
	ctx context.Context,
	session driving.SimulationSession,
	out io.Writer,
	live bool,
	changes <-chan struct{},
) (bool, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- session.Run(runCtx) }()

	interval := simulateInterval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	report := func() {
		line := formatSnapshot(session.Snapshot())
		if live {
			fmt.Fprintf(out, "\r\033[K%s", line)
			return
		}
		fmt.Fprintln(out, line)
	}

	for {
		select {
		case <-ticker.C:
			report()

		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			cancel()
			<-done
			return true, nil

		case err := <-done:
			report()
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return false, nil
			}
			return false, err
		}
	}
}
