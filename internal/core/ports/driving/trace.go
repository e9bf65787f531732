package driving

import (
	"context"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
)

// TraceService browses recorded trace sessions.
type TraceService interface {
	// List returns all sessions, most recent first.
	List(ctx context.Context) ([]domain.TraceSession, error)

	// Samples returns up to limit samples of a session. A non-positive
	// limit returns all samples.
	Samples(ctx context.Context, sessionID string, limit int) ([]domain.TraceSample, error)

	// Delete removes a session and its samples.
	Delete(ctx context.Context, sessionID string) error
}
