package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vsync-cli/internal/core/ports/driving"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print schedule diagnostics",
	Long: `Build a schedule from the configuration, let it learn the simulated
panel for the settle time, then print its diagnostics: hardware vsync
state, controller and tracker model, and the dispatch callback queue.`,
	RunE: runDump,
}

var dumpSettle time.Duration

func init() {
	dumpCmd.Flags().DurationVar(&dumpSettle, "settle", 500*time.Millisecond, "how long to run before dumping")
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, _ []string) error {
	if configService == nil || simulator == nil {
		return errors.New("simulator not configured")
	}

	cfg, err := configService.Load()
	if err != nil {
		return err
	}

	session, err := simulator.NewSession(cmd.Context(), cfg, driving.SessionOptions{})
	if err != nil {
		return err
	}
	defer session.Close()

	if dumpSettle > 0 {
		ctx, cancel := context.WithTimeout(cmd.Context(), dumpSettle)
		defer cancel()
		if err := session.Run(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Display %s:\n", cfg.Display)
	session.Dump(out)
	return nil
}
