package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driving"
)

// Ensure TraceService implements the interface.
var _ driving.TraceService = (*TraceService)(nil)

// TraceService browses sessions held by a TraceStore.
type TraceService struct {
	store driven.TraceStore
}

// NewTraceService creates a trace service over store.
func NewTraceService(store driven.TraceStore) *TraceService {
	return &TraceService{store: store}
}

// List returns all sessions, most recent first.
func (s *TraceService) List(ctx context.Context) ([]domain.TraceSession, error) {
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing trace sessions: %w", err)
	}
	return sessions, nil
}

// Samples returns up to limit samples of a session in time order.
func (s *TraceService) Samples(ctx context.Context, sessionID string, limit int) ([]domain.TraceSample, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}
	samples, err := s.store.Samples(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("reading trace samples: %w", err)
	}
	return samples, nil
}

// Delete removes a session and its samples.
func (s *TraceService) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}
	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("deleting trace session %s: %w", sessionID, err)
	}
	return nil
}
