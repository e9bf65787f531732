// Package tui provides the live schedule monitor for vsync.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"time"

	"github.com/custodia-labs/vsync-cli/internal/core/ports/driving"
)

// DefaultRefreshInterval is how often the monitor samples the session.
const DefaultRefreshInterval = 100 * time.Millisecond

// Ports aggregates the driving ports required by the TUI.
type Ports struct {
	// Session is the running schedule being monitored.
	Session driving.SimulationSession

	// RefreshInterval overrides DefaultRefreshInterval when positive.
	RefreshInterval time.Duration
}

// NewPorts creates a new Ports aggregate for session.
func NewPorts(session driving.SimulationSession) *Ports {
	return &Ports{Session: session}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Session == nil {
		return ErrMissingSession
	}
	return nil
}

func (p *Ports) interval() time.Duration {
	if p.RefreshInterval > 0 {
		return p.RefreshInterval
	}
	return DefaultRefreshInterval
}
