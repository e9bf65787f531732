// Package cli implements the vsync command line interface.
// It is a driving adapter: commands only talk to the core through the
// driving ports injected by main.
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vsync-cli/internal/core/ports/driving"
	"github.com/custodia-labs/vsync-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// skipBootstrap marks commands that run without services.
const skipBootstrap = "skip-bootstrap"

var (
	verboseFlag   bool
	configDirFlag string
	ephemeralFlag bool
)

var (
	configService driving.ConfigService
	traceService  driving.TraceService
	simulator     driving.Simulator
	closeServices func() error
)

// Services bundles the driving ports used by the commands.
type Services struct {
	Config    driving.ConfigService
	Traces    driving.TraceService
	Simulator driving.Simulator

	// Close releases the resources behind the services. May be nil.
	Close func() error
}

// BootstrapOptions carries the global flags that select the storage.
type BootstrapOptions struct {
	// ConfigDir is the configuration directory. Empty selects the default.
	ConfigDir string

	// Ephemeral keeps configuration and traces in memory.
	Ephemeral bool
}

// Bootstrap builds the services before a command runs.
type Bootstrap func(opts BootstrapOptions) (*Services, error)

var bootstrap Bootstrap

var rootCmd = &cobra.Command{
	Use:   "vsync",
	Short: "Per-display vsync schedule simulator",
	Long: `vsync drives a display vsync schedule against a simulated panel.

The schedule learns the panel period from hardware vsync pulses, switches
hardware vsync off once its model is trusted, and dispatches timed
callbacks ahead of each predicted vsync.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verboseFlag)
		logger.SetElapsed(verboseFlag)
		if bootstrap == nil || cmd.Annotations[skipBootstrap] == "true" {
			return nil
		}
		svc, err := bootstrap(BootstrapOptions{ConfigDir: configDirFlag, Ephemeral: ephemeralFlag})
		if err != nil {
			return err
		}
		SetServices(svc)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "print debug logs to stderr")
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "", "configuration directory (default ~/.vsync)")
	rootCmd.PersistentFlags().BoolVar(&ephemeralFlag, "ephemeral", false, "keep configuration and traces in memory")
}

// SetBootstrap installs the function that builds services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices injects the services directly.
func SetServices(svc *Services) {
	if svc == nil {
		return
	}
	configService = svc.Config
	traceService = svc.Traces
	simulator = svc.Simulator
	closeServices = svc.Close
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and releases the services afterwards.
func Execute() error {
	err := rootCmd.Execute()
	if closeServices != nil {
		if closeErr := closeServices(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		closeServices = nil
	}
	return err
}
