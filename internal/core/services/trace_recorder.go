package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/vsync-cli/internal/logger"
)

// Verify interface compliance.
var (
	_ driven.TraceSink = (*TraceRecorder)(nil)
	_ driven.TraceSink = TeeSink(nil)
)

const defaultTraceBuffer = 256

// TraceRecorder persists published counters into one TraceStore session.
//
// Counter never blocks: samples are queued and written by a background
// goroutine. When the queue is full the sample is dropped and counted.
type TraceRecorder struct {
	store   driven.TraceStore
	session domain.TraceSession
	log     logger.Component

	mu     sync.RWMutex
	closed bool
	queue  chan domain.TraceSample
	done   chan struct{}

	dropped atomic.Int64
	failed  atomic.Int64
}

// NewTraceRecorder opens a session for display and starts the writer.
// A non-positive buffer selects the default queue size.
func NewTraceRecorder(ctx context.Context, store driven.TraceStore, display domain.DisplayID, buffer int) (*TraceRecorder, error) {
	session, err := store.CreateSession(ctx, display)
	if err != nil {
		return nil, fmt.Errorf("creating trace session: %w", err)
	}
	if buffer <= 0 {
		buffer = defaultTraceBuffer
	}

	r := &TraceRecorder{
		store:   store,
		session: *session,
		log:     logger.For("trace"),
		queue:   make(chan domain.TraceSample, buffer),
		done:    make(chan struct{}),
	}
	go r.run()
	return r, nil
}

// Session returns the session samples are written to.
func (r *TraceRecorder) Session() domain.TraceSession {
	return r.session
}

// Counter queues a sample. Samples published after Close are discarded.
func (r *TraceRecorder) Counter(name string, value int64, at domain.TimePoint) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return
	}
	sample := domain.TraceSample{SessionID: r.session.ID, Name: name, Value: value, At: at}
	select {
	case r.queue <- sample:
	default:
		r.dropped.Add(1)
	}
}

// Dropped returns the number of samples discarded on a full queue.
func (r *TraceRecorder) Dropped() int64 {
	return r.dropped.Load()
}

// Failed returns the number of samples the store refused.
func (r *TraceRecorder) Failed() int64 {
	return r.failed.Load()
}

// Close flushes queued samples and stops the writer. Safe to call multiple times.
func (r *TraceRecorder) Close() error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	<-r.done
	if n := r.dropped.Load(); n > 0 {
		r.log.Warn("session %s dropped %d samples", r.session.ID, n)
	}
	return nil
}

func (r *TraceRecorder) run() {
	defer close(r.done)
	for sample := range r.queue {
		if err := r.store.RecordSample(context.Background(), sample); err != nil {
			r.failed.Add(1)
			r.log.Debug("recording %s: %v", sample.Name, err)
		}
	}
}

// TeeSink publishes every counter to each of its sinks. Nil sinks are skipped.
type TeeSink []driven.TraceSink

// Counter forwards the value to every sink.
func (t TeeSink) Counter(name string, value int64, at domain.TimePoint) {
	for _, sink := range t {
		if sink != nil {
			sink.Counter(name, value, at)
		}
	}
}
