package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
)

// mockTraceStore records samples; block, when set, stalls RecordSample.
type mockTraceStore struct {
	mu         sync.Mutex
	samples    []domain.TraceSample
	createErr  error
	recordErr  error
	block      chan struct{}
	displayArg domain.DisplayID
}

func (m *mockTraceStore) CreateSession(_ context.Context, display domain.DisplayID) (*domain.TraceSession, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.displayArg = display
	return &domain.TraceSession{ID: "session-1", Display: display}, nil
}

func (m *mockTraceStore) RecordSample(_ context.Context, sample domain.TraceSample) error {
	if m.block != nil {
		<-m.block
	}
	if m.recordErr != nil {
		return m.recordErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, sample)
	return nil
}

func (m *mockTraceStore) ListSessions(context.Context) ([]domain.TraceSession, error) {
	return nil, nil
}

func (m *mockTraceStore) Samples(context.Context, string, int) ([]domain.TraceSample, error) {
	return nil, nil
}

func (m *mockTraceStore) DeleteSession(context.Context, string) error {
	return nil
}

func TestTraceRecorder_FlushesOnClose(t *testing.T) {
	store := &mockTraceStore{}
	r, err := NewTraceRecorder(context.Background(), store, 9, 0)
	require.NoError(t, err)
	assert.Equal(t, "session-1", r.Session().ID)
	assert.Equal(t, domain.DisplayID(9), store.displayArg)

	for i := 0; i < 10; i++ {
		r.Counter(domain.TracePredictedVsyncName, int64(i%2), domain.TimePoint(i))
	}
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	require.Len(t, store.samples, 10)
	assert.Equal(t, "session-1", store.samples[0].SessionID)
	assert.Equal(t, domain.TimePoint(9), store.samples[9].At)

	// Samples after Close are discarded quietly.
	r.Counter(domain.TracePredictedVsyncName, 1, 100)
	assert.Len(t, store.samples, 10)
}

func TestTraceRecorder_DropsWhenFull(t *testing.T) {
	store := &mockTraceStore{block: make(chan struct{})}
	r, err := NewTraceRecorder(context.Background(), store, 0, 1)
	require.NoError(t, err)

	// One sample may be in flight, one queued; the rest overflow.
	for i := 0; i < 10; i++ {
		r.Counter("x", 1, domain.TimePoint(i))
	}
	assert.GreaterOrEqual(t, r.Dropped(), int64(8))

	close(store.block)
	require.NoError(t, r.Close())
	assert.Equal(t, int64(10), r.Dropped()+int64(len(store.samples)))
}

func TestTraceRecorder_CountsStoreFailures(t *testing.T) {
	store := &mockTraceStore{recordErr: errors.New("disk full")}
	r, err := NewTraceRecorder(context.Background(), store, 0, 0)
	require.NoError(t, err)

	r.Counter("x", 1, 1)
	r.Counter("x", 0, 2)
	require.NoError(t, r.Close())

	assert.Equal(t, int64(2), r.Failed())
}

func TestTraceRecorder_SessionError(t *testing.T) {
	store := &mockTraceStore{createErr: errors.New("locked")}

	_, err := NewTraceRecorder(context.Background(), store, 0, 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating trace session")
}

func TestTeeSink_ForwardsToAll(t *testing.T) {
	a, b := &memorySink{}, &memorySink{}
	tee := TeeSink{a, nil, b}

	tee.Counter(domain.TracePredictedVsyncName, 1, 5)

	assert.Equal(t, []int64{1}, a.values)
	assert.Equal(t, []int64{1}, b.values)
}
