package internal

import "container/heap"

// An OrderedQueue restores synchronous block order across blocks that
// complete compression or decompression out of order. Items are
// pushed tagged with their monotonic position in the stream; Pop only
// ever returns the item whose index equals the number of items
// already popped, and otherwise returns nil without blocking. Callers
// push as completions arrive and drain with Pop after every push.
//
// The queue itself never blocks: it is meant to be polled from a
// single-threaded event loop, not waited on from a separate
// goroutine.
type OrderedQueue struct {
	next int
	heap orderedHeap
}

// NewOrderedQueue returns an empty OrderedQueue whose first expected
// index is 0.
func NewOrderedQueue() *OrderedQueue {
	return &OrderedQueue{}
}

// Push enqueues value, tagged with its position index in the stream.
// index may arrive in any order relative to other pushed indices.
func (q *OrderedQueue) Push(index int, value *BlockData) {
	heap.Push(&q.heap, &orderedItem{index: index, value: value})
}

// Pop returns the next item in order, or nil if the item with index
// equal to the queue's next expected position hasn't been pushed yet.
func (q *OrderedQueue) Pop() *BlockData {
	if len(q.heap) == 0 || q.heap[0].index != q.next {
		return nil
	}
	item := heap.Pop(&q.heap).(*orderedItem)
	q.next++
	return item.value
}

// Len returns the number of items currently buffered, waiting for
// their turn.
func (q *OrderedQueue) Len() int { return len(q.heap) }

// Next returns the index Pop is currently waiting for.
func (q *OrderedQueue) Next() int { return q.next }

type orderedItem struct {
	index int
	value *BlockData
}

type orderedHeap []*orderedItem

func (h orderedHeap) Len() int            { return len(h) }
func (h orderedHeap) Less(i, j int) bool  { return h[i].index < h[j].index }
func (h orderedHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *orderedHeap) Push(x interface{}) { *h = append(*h, x.(*orderedItem)) }

func (h *orderedHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
