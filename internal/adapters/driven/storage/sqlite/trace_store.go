package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driven"
)

// startedAtLayout is fixed width so that text order is time order.
const startedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// traceStore implements driven.TraceStore.
type traceStore struct {
	store *Store
}

var _ driven.TraceStore = (*traceStore)(nil)

// CreateSession starts a new session for display.
func (s *traceStore) CreateSession(ctx context.Context, display domain.DisplayID) (*domain.TraceSession, error) {
	session := &domain.TraceSession{
		ID:        uuid.NewString(),
		Display:   display,
		StartedAt: time.Now().UTC(),
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO trace_sessions (id, display_id, started_at)
		VALUES (?, ?, ?)
	`, session.ID, int64(session.Display), session.StartedAt.Format(startedAtLayout))
	if err != nil {
		return nil, fmt.Errorf("creating trace session: %w", err)
	}
	return session, nil
}

// RecordSample appends a sample to its session.
// Returns ErrNotFound if the session does not exist.
func (s *traceStore) RecordSample(ctx context.Context, sample domain.TraceSample) error {
	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO trace_samples (session_id, name, value, at_ns)
		SELECT ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM trace_sessions WHERE id = ?)
	`, sample.SessionID, sample.Name, sample.Value, sample.At.Ns(), sample.SessionID)
	if err != nil {
		return fmt.Errorf("recording trace sample: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("recording trace sample: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("session %s: %w", sample.SessionID, domain.ErrNotFound)
	}
	return nil
}

// ListSessions returns all sessions, most recent first.
func (s *traceStore) ListSessions(ctx context.Context) ([]domain.TraceSession, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, display_id, started_at
		FROM trace_sessions
		ORDER BY started_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying trace sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.TraceSession //nolint:prealloc // size unknown from query
	for rows.Next() {
		session, err := scanTraceSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating trace sessions: %w", err)
	}

	return sessions, nil
}

// Samples returns up to limit samples of a session in time order.
// A non-positive limit returns all samples.
func (s *traceStore) Samples(ctx context.Context, sessionID string, limit int) ([]domain.TraceSample, error) {
	var exists int
	err := s.store.db.QueryRowContext(ctx, "SELECT 1 FROM trace_sessions WHERE id = ?", sessionID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up trace session: %w", err)
	}

	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT session_id, name, value, at_ns
		FROM trace_samples
		WHERE session_id = ?
		ORDER BY at_ns, id
		LIMIT ?
	`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying trace samples: %w", err)
	}
	defer rows.Close()

	var samples []domain.TraceSample //nolint:prealloc // size unknown from query
	for rows.Next() {
		var sample domain.TraceSample
		var at int64
		if err := rows.Scan(&sample.SessionID, &sample.Name, &sample.Value, &at); err != nil {
			return nil, fmt.Errorf("scanning trace sample: %w", err)
		}
		sample.At = domain.TimePointFromNs(at)
		samples = append(samples, sample)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating trace samples: %w", err)
	}

	return samples, nil
}

// DeleteSession removes a session; its samples cascade.
func (s *traceStore) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM trace_sessions WHERE id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("deleting trace session: %w", err)
	}
	return nil
}

func scanTraceSession(rows *sql.Rows) (*domain.TraceSession, error) {
	var session domain.TraceSession
	var display int64
	var startedAt string

	if err := rows.Scan(&session.ID, &display, &startedAt); err != nil {
		return nil, fmt.Errorf("scanning trace session: %w", err)
	}

	t, err := time.Parse(startedAtLayout, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing session start %q: %w", startedAt, err)
	}
	session.Display = domain.DisplayID(uint64(display))
	session.StartedAt = t
	return &session, nil
}
