package datastructure

import "errors"

var (
	ErrEmptyHeap    = errors.New("heap is empty")
	ErrItemNotFound = errors.New("item not in heap")
)

type PriorityQueueNode[T comparable] struct {
	Rank float64
	Item T
}

func NewPriorityQueueNode[T comparable](rank float64, item T) PriorityQueueNode[T] {
	return PriorityQueueNode[T]{Rank: rank, Item: item}
}

// MinHeap indexed binary min-heap. pos keeps the heap index of every item so DecreaseKey is O(logN).
type MinHeap[T comparable] struct {
	heap []PriorityQueueNode[T]
	pos  map[T]int
}

func NewMinHeap[T comparable]() *MinHeap[T] {
	return &MinHeap[T]{
		heap: make([]PriorityQueueNode[T], 0),
		pos:  make(map[T]int),
	}
}

func (h *MinHeap[T]) parent(index int) int {
	return (index - 1) / 2
}

func (h *MinHeap[T]) leftChild(index int) int {
	return 2*index + 1
}

func (h *MinHeap[T]) rightChild(index int) int {
	return 2*index + 2
}

func (h *MinHeap[T]) swap(i, j int) {
	h.heap[i], h.heap[j] = h.heap[j], h.heap[i]
	h.pos[h.heap[i].Item] = i
	h.pos[h.heap[j].Item] = j
}

func (h *MinHeap[T]) heapifyUp(index int) {
	for index != 0 && h.heap[index].Rank < h.heap[h.parent(index)].Rank {
		h.swap(index, h.parent(index))
		index = h.parent(index)
	}
}

func (h *MinHeap[T]) heapifyDown(index int) {
	for {
		smallest := index
		left := h.leftChild(index)
		right := h.rightChild(index)

		if left < len(h.heap) && h.heap[left].Rank < h.heap[smallest].Rank {
			smallest = left
		}
		if right < len(h.heap) && h.heap[right].Rank < h.heap[smallest].Rank {
			smallest = right
		}
		if smallest == index {
			return
		}
		h.swap(index, smallest)
		index = smallest
	}
}

func (h *MinHeap[T]) Size() int {
	return len(h.heap)
}

func (h *MinHeap[T]) Contains(item T) bool {
	_, ok := h.pos[item]
	return ok
}

func (h *MinHeap[T]) GetMin() (PriorityQueueNode[T], error) {
	if len(h.heap) == 0 {
		return PriorityQueueNode[T]{}, ErrEmptyHeap
	}
	return h.heap[0], nil
}

// Insert a new item. an item already in the heap gets its rank decreased instead.
func (h *MinHeap[T]) Insert(key PriorityQueueNode[T]) {
	if _, ok := h.pos[key.Item]; ok {
		_ = h.DecreaseKey(key)
		return
	}
	h.heap = append(h.heap, key)
	index := len(h.heap) - 1
	h.pos[key.Item] = index
	h.heapifyUp(index)
}

func (h *MinHeap[T]) ExtractMin() (PriorityQueueNode[T], error) {
	if len(h.heap) == 0 {
		return PriorityQueueNode[T]{}, ErrEmptyHeap
	}
	root := h.heap[0]
	last := len(h.heap) - 1
	h.swap(0, last)
	h.heap = h.heap[:last]
	delete(h.pos, root.Item)
	h.heapifyDown(0)

	return root, nil
}

// DecreaseKey lower the rank of an item already in the heap. a larger rank is ignored.
func (h *MinHeap[T]) DecreaseKey(key PriorityQueueNode[T]) error {
	index, ok := h.pos[key.Item]
	if !ok {
		return ErrItemNotFound
	}
	if key.Rank >= h.heap[index].Rank {
		return nil
	}
	h.heap[index].Rank = key.Rank
	h.heapifyUp(index)
	return nil
}
