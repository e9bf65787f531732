// Package logsink publishes trace counters to the debug log.
package logsink

import (
	"github.com/custodia-labs/vsync-cli/internal/core/domain"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/vsync-cli/internal/logger"
)

// Verify interface compliance.
var _ driven.TraceSink = Sink{}

// Sink writes each counter as a debug line. Output appears only in verbose mode.
type Sink struct {
	log logger.Component
}

// New creates a sink logging under the "trace" component.
func New() Sink {
	return Sink{log: logger.For("trace")}
}

// Counter logs the value.
func (s Sink) Counter(name string, value int64, at domain.TimePoint) {
	s.log.Debug("%s=%d at %d", name, value, at.Ns())
}
