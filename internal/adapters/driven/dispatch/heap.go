package dispatch

import "container/heap"

// wakeupHeap orders armed entries by wakeup time, earliest first.
// Ties break on token so delivery order is deterministic.
type wakeupHeap []*entry

func (h wakeupHeap) Len() int { return len(h) }

func (h wakeupHeap) Less(i, j int) bool {
	if h[i].wakeup == h[j].wakeup {
		return h[i].token < h[j].token
	}
	return h[i].wakeup < h[j].wakeup
}

func (h wakeupHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *wakeupHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *wakeupHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// arm inserts e or repositions it after its wakeup changed.
func (h *wakeupHeap) arm(e *entry) {
	if e.index >= 0 {
		heap.Fix(h, e.index)
		return
	}
	heap.Push(h, e)
}

// disarm removes e if it is armed.
func (h *wakeupHeap) disarm(e *entry) bool {
	if e.index < 0 {
		return false
	}
	heap.Remove(h, e.index)
	return true
}

// peek returns the earliest entry, or nil when empty.
func (h wakeupHeap) peek() *entry {
	if len(h) == 0 {
		return nil
	}
	return h[0]
}

// popDue removes and returns the earliest entry if it wakes at or before t.
func (h *wakeupHeap) popDue(t int64) *entry {
	if e := h.peek(); e != nil && e.wakeup.Ns() <= t {
		return heap.Pop(h).(*entry)
	}
	return nil
}
