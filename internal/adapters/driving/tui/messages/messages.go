// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"time"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
)

// Tick asks the monitor to sample the session.
type Tick struct {
	At time.Time
}

// SnapshotTaken carries a fresh session snapshot.
type SnapshotTaken struct {
	Snapshot domain.ScheduleSnapshot
}

// SessionEnded is sent when the session stops running.
type SessionEnded struct {
	Err error
}
