// Command vsync runs a per-display vsync schedule against a simulated panel.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/vsync-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/vsync-cli/internal/adapters/driven/display"
	"github.com/custodia-labs/vsync-cli/internal/adapters/driven/engine"
	"github.com/custodia-labs/vsync-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/vsync-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/vsync-cli/internal/adapters/driven/trace/logsink"
	"github.com/custodia-labs/vsync-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/vsync-cli/internal/core/domain"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/vsync-cli/internal/core/services"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap wires the adapters selected by opts into the driving services.
func bootstrap(opts cli.BootstrapOptions) (*cli.Services, error) {
	factory := engine.NewFactory()
	newDisplay := func(cfg domain.ScheduleConfig) driven.Display {
		return display.NewSimulated(cfg.Display, factory.Clock(), display.Config{
			RefreshRate:  cfg.RefreshRate,
			Jitter:       cfg.Jitter,
			ReportPeriod: cfg.Features.Has(domain.FeatureKernelIdleTimer),
			Seed:         uint64(time.Now().UnixNano()),
		})
	}

	if opts.Ephemeral {
		traces := memory.NewTraceStore()
		return &cli.Services{
			Config: services.NewConfigService(memory.NewConfigStore()),
			Traces: services.NewTraceService(traces),
			Simulator: services.NewSimulator(factory, factory.Clock(), newDisplay,
				services.WithTraceStore(traces),
				services.WithSessionSink(logsink.New()),
			),
		}, nil
	}

	configDir := opts.ConfigDir
	if configDir == "" {
		dir, err := file.DefaultConfigDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	configService := services.NewConfigService(configStore).
		WithWatcher(file.NewWatcher(configStore.Path()))

	store, err := sqlite.NewStore(filepath.Join(configDir, "data"))
	if err != nil {
		return nil, fmt.Errorf("opening trace store: %w", err)
	}

	return &cli.Services{
		Config: configService,
		Traces: services.NewTraceService(store.TraceStore()),
		Simulator: services.NewSimulator(factory, factory.Clock(), newDisplay,
			services.WithTraceStore(store.TraceStore()),
			services.WithSessionSink(logsink.New()),
		),
		Close: store.Close,
	}, nil
}
