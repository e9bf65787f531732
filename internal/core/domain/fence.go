package domain

import "sync/atomic"

// FenceStatus describes the signal state of a presentation fence.
type FenceStatus int

const (
	// FencePending means the fence has not signalled yet.
	FencePending FenceStatus = iota
	// FenceSignaled means the fence signalled at a known time.
	FenceSignaled
	// FenceInvalid means the fence will never carry a usable time.
	FenceInvalid
)

const (
	fencePendingValue int64 = 0
	fenceInvalidValue int64 = -1
)

// FenceTime marks the completion of a frame's presentation.
// It is safe for concurrent use: the producer signals while the
// controller polls.
type FenceTime struct {
	signal atomic.Int64
}

// NewPendingFence returns a fence that has not signalled.
func NewPendingFence() *FenceTime {
	return &FenceTime{}
}

// NewSignaledFence returns a fence that signalled at t.
func NewSignaledFence(t TimePoint) *FenceTime {
	f := &FenceTime{}
	f.Signal(t)
	return f
}

// NewInvalidFence returns a fence that will never signal.
func NewInvalidFence() *FenceTime {
	f := &FenceTime{}
	f.signal.Store(fenceInvalidValue)
	return f
}

// Signal records the presentation time. Only the first call takes effect.
func (f *FenceTime) Signal(t TimePoint) {
	if t <= 0 {
		f.signal.CompareAndSwap(fencePendingValue, fenceInvalidValue)
		return
	}
	f.signal.CompareAndSwap(fencePendingValue, int64(t))
}

// SignalTime returns the presentation time and the fence status.
func (f *FenceTime) SignalTime() (TimePoint, FenceStatus) {
	switch v := f.signal.Load(); v {
	case fencePendingValue:
		return 0, FencePending
	case fenceInvalidValue:
		return 0, FenceInvalid
	default:
		return TimePoint(v), FenceSignaled
	}
}
