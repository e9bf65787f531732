package driven

import (
	"context"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
)

// TraceSink receives trace counter values.
// Implementations must be cheap and non-blocking: they are called from
// dispatch callbacks.
type TraceSink interface {
	Counter(name string, value int64, at domain.TimePoint)
}

// TraceStore persists trace sessions and their samples.
type TraceStore interface {
	// CreateSession starts a new session for display.
	CreateSession(ctx context.Context, display domain.DisplayID) (*domain.TraceSession, error)

	// RecordSample appends a sample to a session.
	RecordSample(ctx context.Context, sample domain.TraceSample) error

	// ListSessions returns all sessions, most recent first.
	ListSessions(ctx context.Context) ([]domain.TraceSession, error)

	// Samples returns up to limit samples of a session in time order.
	// Returns ErrNotFound if the session does not exist.
	Samples(ctx context.Context, sessionID string, limit int) ([]domain.TraceSample, error)

	// DeleteSession removes a session and its samples.
	DeleteSession(ctx context.Context, sessionID string) error
}
