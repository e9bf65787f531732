package services

import (
	"fmt"
	"sync"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driven"
)

// Registration owns one callback registered with a dispatch.
// Close releases it; afterwards Schedule fails and no firing starts.
type Registration struct {
	dispatch driven.VsyncDispatch
	token    domain.CallbackToken
	name     string

	mu     sync.Mutex
	closed bool
}

// NewRegistration registers callback with dispatch under name.
func NewRegistration(dispatch driven.VsyncDispatch, callback domain.VsyncCallback, name string) (*Registration, error) {
	token, err := dispatch.Register(name, callback)
	if err != nil {
		return nil, fmt.Errorf("registering %s: %w", name, err)
	}
	return &Registration{
		dispatch: dispatch,
		token:    token,
		name:     name,
	}, nil
}

// Token returns the dispatch token.
func (r *Registration) Token() domain.CallbackToken {
	return r.token
}

// Schedule arms the next firing and returns its wakeup time.
func (r *Registration) Schedule(timing domain.ScheduleTiming) (domain.TimePoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0, fmt.Errorf("scheduling %s: %w", r.name, domain.ErrRegistrationClosed)
	}
	return r.dispatch.Schedule(r.token, timing)
}

// Cancel disarms a pending firing.
func (r *Registration) Cancel() domain.CancelResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return domain.CancelError
	}
	return r.dispatch.Cancel(r.token)
}

// Close unregisters the callback. Safe to call multiple times.
// It must not be called from the registration's own callback.
func (r *Registration) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	// An in-flight callback may still call Schedule; it sees closed and
	// returns, letting Unregister finish waiting for it.
	r.dispatch.Unregister(r.token)
}
