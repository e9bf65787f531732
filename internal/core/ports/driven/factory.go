package driven

import "github.com/custodia-labs/vsync-cli/internal/core/domain"

// EngineFactory builds the engines owned by a schedule.
// The schedule calls NewTracker, then NewDispatch, then NewController.
type EngineFactory interface {
	// NewTracker builds the period predictor for display id.
	NewTracker(id domain.DisplayID, tuning domain.TrackerTuning) VsyncTracker

	// NewDispatch builds the callback dispatcher driven by tracker.
	NewDispatch(tracker VsyncTracker, tuning domain.DispatchTuning) VsyncDispatch

	// NewController builds the pulse reconciler feeding tracker.
	NewController(id domain.DisplayID, tracker VsyncTracker, tuning domain.ControllerTuning) VsyncController
}
