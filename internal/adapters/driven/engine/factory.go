// Package engine builds the predictor, dispatch and reactor owned by a
// vsync schedule.
package engine

import (
	"github.com/custodia-labs/vsync-cli/internal/adapters/driven/clock"
	"github.com/custodia-labs/vsync-cli/internal/adapters/driven/dispatch"
	"github.com/custodia-labs/vsync-cli/internal/adapters/driven/predictor"
	"github.com/custodia-labs/vsync-cli/internal/adapters/driven/reactor"
	"github.com/custodia-labs/vsync-cli/internal/core/domain"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.EngineFactory = (*Factory)(nil)

// Factory is the production driven.EngineFactory. All engines it builds
// share one monotonic clock.
type Factory struct {
	clock *clock.System
}

// NewFactory creates a factory with a fresh system clock.
func NewFactory() *Factory {
	return NewFactoryWithClock(clock.NewSystem())
}

// NewFactoryWithClock creates a factory reading c.
func NewFactoryWithClock(c *clock.System) *Factory {
	return &Factory{clock: c}
}

// Clock returns the clock shared by the engines.
func (f *Factory) Clock() *clock.System {
	return f.clock
}

// NewTracker builds a predictor for display id.
func (f *Factory) NewTracker(id domain.DisplayID, tuning domain.TrackerTuning) driven.VsyncTracker {
	return predictor.New(id.String(), tuning)
}

// NewDispatch builds a timer queue with its own alarm.
func (f *Factory) NewDispatch(tracker driven.VsyncTracker, tuning domain.DispatchTuning) driven.VsyncDispatch {
	return dispatch.New(clock.NewTimer(f.clock), tracker, tuning)
}

// NewController builds a reactor for display id.
func (f *Factory) NewController(id domain.DisplayID, tracker driven.VsyncTracker, tuning domain.ControllerTuning) driven.VsyncController {
	return reactor.New(id.String(), f.clock, tracker, tuning)
}
