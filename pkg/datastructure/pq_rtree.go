package datastructure

type PriorityQueueNodeRtree2 struct {
	Rank float64
	Item BoundedItem
}

func NewPriorityQueueNodeRtree2(rank float64, item BoundedItem) PriorityQueueNodeRtree2 {
	return PriorityQueueNodeRtree2{rank, item}
}

// less orders by rank. on equal rank data records come before tree nodes, and records with the
// smaller node id first, so equidistant queries always return the same node.
func (a PriorityQueueNodeRtree2) less(b PriorityQueueNodeRtree2) bool {
	if a.Rank != b.Rank {
		return a.Rank < b.Rank
	}
	aData, bData := a.Item.IsData(), b.Item.IsData()
	if aData != bData {
		return aData
	}
	if aData {
		return a.Item.(*RtreeEntry).NodeID < b.Item.(*RtreeEntry).NodeID
	}
	return false
}

// MinHeapRtree binary heap priorityqueue
type MinHeapRtree struct {
	heap []PriorityQueueNodeRtree2
}

func NewMinHeapRtree() *MinHeapRtree {
	return &MinHeapRtree{
		heap: make([]PriorityQueueNodeRtree2, 0),
	}
}

func (h *MinHeapRtree) parent(index int) int {
	return (index - 1) / 2
}

func (h *MinHeapRtree) leftChild(index int) int {
	return 2*index + 1
}

func (h *MinHeapRtree) rightChild(index int) int {
	return 2*index + 2
}

// heapifyUp swap with the parent while the parent is larger. O(logN)
func (h *MinHeapRtree) heapifyUp(index int) {
	for index != 0 && h.heap[index].less(h.heap[h.parent(index)]) {
		h.heap[index], h.heap[h.parent(index)] = h.heap[h.parent(index)], h.heap[index]

		index = h.parent(index)
	}
}

// heapifyDown swap with the smallest child while a child is smaller. O(logN)
func (h *MinHeapRtree) heapifyDown(index int) {
	for {
		smallest := index
		left := h.leftChild(index)
		right := h.rightChild(index)

		if left < len(h.heap) && h.heap[left].less(h.heap[smallest]) {
			smallest = left
		}
		if right < len(h.heap) && h.heap[right].less(h.heap[smallest]) {
			smallest = right
		}
		if smallest == index {
			return
		}
		h.heap[index], h.heap[smallest] = h.heap[smallest], h.heap[index]
		index = smallest
	}
}

func (h *MinHeapRtree) isEmpty() bool {
	return len(h.heap) == 0
}

func (h *MinHeapRtree) Size() int {
	return len(h.heap)
}

func (h *MinHeapRtree) GetMin() (PriorityQueueNodeRtree2, bool) {
	if h.isEmpty() {
		return PriorityQueueNodeRtree2{}, false
	}
	return h.heap[0], true
}

func (h *MinHeapRtree) Insert(key PriorityQueueNodeRtree2) {
	h.heap = append(h.heap, key)
	h.heapifyUp(h.Size() - 1)
}

// ExtractMin pop the root. O(logN)
func (h *MinHeapRtree) ExtractMin() (PriorityQueueNodeRtree2, bool) {
	if h.isEmpty() {
		return PriorityQueueNodeRtree2{}, false
	}
	root := h.heap[0]
	h.heap[0] = h.heap[h.Size()-1]
	h.heap = h.heap[:h.Size()-1]
	h.heapifyDown(0)

	return root, true
}
