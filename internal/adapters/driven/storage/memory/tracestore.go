package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driven"
)

// Ensure TraceStore implements the interface.
var _ driven.TraceStore = (*TraceStore)(nil)

// TraceStore is an in-memory implementation of driven.TraceStore.
type TraceStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.TraceSession
	samples  map[string][]domain.TraceSample
}

// NewTraceStore creates an empty trace store.
func NewTraceStore() *TraceStore {
	return &TraceStore{
		sessions: make(map[string]domain.TraceSession),
		samples:  make(map[string][]domain.TraceSample),
	}
}

// CreateSession starts a session for display.
func (s *TraceStore) CreateSession(_ context.Context, display domain.DisplayID) (*domain.TraceSession, error) {
	session := domain.TraceSession{
		ID:        uuid.NewString(),
		Display:   display,
		StartedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return &session, nil
}

// RecordSample appends a sample to its session.
func (s *TraceStore) RecordSample(_ context.Context, sample domain.TraceSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sample.SessionID]; !ok {
		return fmt.Errorf("session %s: %w", sample.SessionID, domain.ErrNotFound)
	}
	s.samples[sample.SessionID] = append(s.samples[sample.SessionID], sample)
	return nil
}

// ListSessions returns sessions, most recent first.
func (s *TraceStore) ListSessions(_ context.Context) ([]domain.TraceSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]domain.TraceSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].StartedAt.Equal(sessions[j].StartedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].StartedAt.After(sessions[j].StartedAt)
	})
	return sessions, nil
}

// Samples returns up to limit samples of a session in time order.
// A non-positive limit returns all samples.
func (s *TraceStore) Samples(_ context.Context, sessionID string, limit int) ([]domain.TraceSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}

	samples := append([]domain.TraceSample(nil), s.samples[sessionID]...)
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].At < samples[j].At })
	if limit > 0 && len(samples) > limit {
		samples = samples[:limit]
	}
	return samples, nil
}

// DeleteSession removes a session and its samples.
func (s *TraceStore) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	delete(s.samples, sessionID)
	return nil
}
