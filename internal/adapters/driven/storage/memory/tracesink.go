package memory

import (
	"sync"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driven"
)

// Ensure TraceSink implements the interface.
var _ driven.TraceSink = (*TraceSink)(nil)

// CounterValue is one published counter value.
type CounterValue struct {
	Value int64
	At    domain.TimePoint
}

// TraceSink keeps every published counter value in memory.
type TraceSink struct {
	mu       sync.RWMutex
	counters map[string][]CounterValue
}

// NewTraceSink creates an empty sink.
func NewTraceSink() *TraceSink {
	return &TraceSink{counters: make(map[string][]CounterValue)}
}

// Counter records a counter value.
func (s *TraceSink) Counter(name string, value int64, at domain.TimePoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[name] = append(s.counters[name], CounterValue{Value: value, At: at})
}

// Values returns the values published for name, oldest first.
func (s *TraceSink) Values(name string) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values := make([]int64, len(s.counters[name]))
	for i, v := range s.counters[name] {
		values[i] = v.Value
	}
	return values
}

// Last returns the newest value published for name.
func (s *TraceSink) Last(name string) (CounterValue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values := s.counters[name]
	if len(values) == 0 {
		return CounterValue{}, false
	}
	return values[len(values)-1], true
}

// Len returns the number of values published for name.
func (s *TraceSink) Len(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.counters[name])
}
