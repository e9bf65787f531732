package services

import (
	"github.com/custodia-labs/vsync-cli/internal/core/domain"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/vsync-cli/internal/logger"
)

const predictedVsyncTracerName = "PredictedVsyncTracer"

// PredictedVsyncTracer toggles the VSYNC-predicted trace counter at every
// predicted vsync, producing a square wave at vsync cadence.
//
// Its callback runs on the dispatch goroutine: it flips the value, then
// issues exactly one new scheduling request.
type PredictedVsyncTracer struct {
	parity       *tracedBool
	registration *Registration
	log          logger.Component
}

// NewPredictedVsyncTracer registers with dispatch and schedules the first firing.
func NewPredictedVsyncTracer(dispatch driven.VsyncDispatch, sink driven.TraceSink) (*PredictedVsyncTracer, error) {
	t := &PredictedVsyncTracer{
		parity: newTracedBool(domain.TracePredictedVsyncName, sink),
		log:    logger.For(predictedVsyncTracerName),
	}

	registration, err := NewRegistration(dispatch, t.onVsync, predictedVsyncTracerName)
	if err != nil {
		return nil, err
	}
	t.registration = registration

	t.schedule()
	return t, nil
}

// onVsync is invoked from the dispatch goroutine.
func (t *PredictedVsyncTracer) onVsync(vsyncTime, _, _ domain.TimePoint) {
	t.parity.Toggle(vsyncTime)
	t.schedule()
}

// schedule targets the next vsync with no extra leeway.
func (t *PredictedVsyncTracer) schedule() {
	if _, err := t.registration.Schedule(domain.ScheduleTiming{}); err != nil {
		t.log.Debug("reschedule failed: %v", err)
	}
}

// Parity returns the current trace value.
func (t *PredictedVsyncTracer) Parity() bool {
	return t.parity.Load()
}

// Close releases the registration. No further callbacks fire.
func (t *PredictedVsyncTracer) Close() {
	t.registration.Close()
}
