package core

import (
	"container/heap"

	"github.com/movlab/v2v-sim/pkg/v2v/types"
)

// PriorityQueue orders messages by (priority, timestamp) ascending, with
// EMERGENCY strictly ahead of NORMAL. It backs both a
// vehicle's inbound queue and, conceptually, the outbound ordering the
// engine already imposes by calling CWM sends before BSM sends each
// tick — sends are synchronous in this protocol, so no
// separate outbound buffering structure is needed; this type exists for
// the one place buffering actually happens: the receiver side.
type PriorityQueue struct {
	items messageHeap
}

// NewPriorityQueue returns an empty queue ready to use.
func NewPriorityQueue() *PriorityQueue {
	pq := &PriorityQueue{}
	heap.Init(&pq.items)
	return pq
}

// Push enqueues m.
func (q *PriorityQueue) Push(m types.Message) {
	heap.Push(&q.items, m)
}

// Pop removes and returns the highest-priority, earliest-timestamp
// message. The second return value is false if the queue is empty.
func (q *PriorityQueue) Pop() (types.Message, bool) {
	if q.items.Len() == 0 {
		return nil, false
	}
	return heap.Pop(&q.items).(types.Message), true
}

// Len reports the number of queued messages.
func (q *PriorityQueue) Len() int {
	return q.items.Len()
}

// messageHeap implements container/heap.Interface over types.Message,
// ordered by types.Less. FIFO among equal priority and timestamp is not
// guaranteed by container/heap; that tie-break is not load-bearing here.
type messageHeap []types.Message

func (h messageHeap) Len() int            { return len(h) }
func (h messageHeap) Less(i, j int) bool  { return types.Less(h[i], h[j]) }
func (h messageHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *messageHeap) Push(x interface{}) { *h = append(*h, x.(types.Message)) }
func (h *messageHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
