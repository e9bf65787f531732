package services

import (
	"sync/atomic"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driven"
)

// tracedBool is a boolean whose every change is published as a 0/1 trace counter.
type tracedBool struct {
	name  string
	sink  driven.TraceSink
	value atomic.Bool
}

func newTracedBool(name string, sink driven.TraceSink) *tracedBool {
	return &tracedBool{name: name, sink: sink}
}

// Toggle flips the value and publishes it at time at.
func (b *tracedBool) Toggle(at domain.TimePoint) bool {
	var next bool
	for {
		cur := b.value.Load()
		next = !cur
		if b.value.CompareAndSwap(cur, next) {
			break
		}
	}
	if b.sink != nil {
		var v int64
		if next {
			v = 1
		}
		b.sink.Counter(b.name, v, at)
	}
	return next
}

// Load returns the current value.
func (b *tracedBool) Load() bool {
	return b.value.Load()
}
