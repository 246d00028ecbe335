package datastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func generateRandomInteger(rd *rand.Rand, min int, max int) int {
	return min + rd.Intn(max-min)
}

func TestPriorityQueue(t *testing.T) {
	rd := rand.New(rand.NewSource(1))
	pq := NewMinHeap[int32]()

	for i := 0; i < 10000; i++ {
		item := PriorityQueueNode[int32]{Rank: float64(generateRandomInteger(rd, 1000, 10000)), Item: int32(i)}
		pq.Insert(item)

		if (i+1)%100 == 0 {
			item.Rank = float64(generateRandomInteger(rd, 0, 999))
			require.NoError(t, pq.DecreaseKey(item))
		}
	}
	assert.Equal(t, 10000, pq.Size())

	prevItem, err := pq.ExtractMin()
	require.NoError(t, err)
	for i := 1; i < 10000; i++ {
		item, err := pq.ExtractMin()
		require.NoError(t, err)

		if prevItem.Rank > item.Rank {
			t.Errorf("PriorityQueue is not sorted")
		}
		prevItem = item
	}

	_, err = pq.ExtractMin()
	assert.ErrorIs(t, err, ErrEmptyHeap)
}

func TestPriorityQueueDecreaseKey(t *testing.T) {
	pq := NewMinHeap[int32]()
	pq.Insert(NewPriorityQueueNode[int32](10, 1))
	pq.Insert(NewPriorityQueueNode[int32](20, 2))
	pq.Insert(NewPriorityQueueNode[int32](30, 3))

	require.NoError(t, pq.DecreaseKey(NewPriorityQueueNode[int32](5, 3)))
	top, err := pq.GetMin()
	require.NoError(t, err)
	assert.Equal(t, int32(3), top.Item)
	assert.Equal(t, 5.0, top.Rank)

	// a larger rank is ignored
	require.NoError(t, pq.DecreaseKey(NewPriorityQueueNode[int32](100, 1)))
	assert.ErrorIs(t, pq.DecreaseKey(NewPriorityQueueNode[int32](1, 42)), ErrItemNotFound)

	// inserting an existing item behaves like decrease key
	pq.Insert(NewPriorityQueueNode[int32](1, 2))
	assert.Equal(t, 3, pq.Size())

	order := []int32{}
	for pq.Size() > 0 {
		item, err := pq.ExtractMin()
		require.NoError(t, err)
		order = append(order, item.Item)
		assert.False(t, pq.Contains(item.Item))
	}
	assert.Equal(t, []int32{2, 3, 1}, order)
}
