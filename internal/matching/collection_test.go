package matching

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionAppendAssignsSequence(t *testing.T) {
	c := NewOrderCollection(Buy)
	assert.Equal(t, Buy, c.Side())

	for i := 1; i <= 3; i++ {
		o := c.Append(NewOrder(uint64(i), 0, "X", Buy, px("10"), 1))
		assert.Equal(t, uint64(i), o.Sequence)
	}
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, int64(3), c.Appended())

	var ids []uint64
	for o := range c.All() {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []uint64{3, 2, 1}, ids, "traversal runs newest first")
}

func TestCollectionTraversalRestartable(t *testing.T) {
	c := NewOrderCollection(Sell)
	c.Append(NewOrder(1, 0, "X", Sell, px("10"), 1))
	c.Append(NewOrder(2, 0, "X", Sell, px("10"), 1))

	seq := c.All()
	for range 2 {
		n := 0
		for range seq {
			n++
		}
		assert.Equal(t, 2, n)
	}

	// early break
	for o := range seq {
		assert.Equal(t, uint64(2), o.ID)
		break
	}
}

func TestCollectionCompact(t *testing.T) {
	c := NewOrderCollection(Buy)
	orders := make([]*Order, 6)
	for i := range orders {
		orders[i] = c.Append(NewOrder(uint64(i+1), 0, "X", Buy, px("10"), 1))
	}

	// fill head, an interior order and the tail
	for _, i := range []int{5, 2, 0} {
		require.Equal(t, int64(1), orders[i].take(1))
	}

	live := 0
	for range c.Live() {
		live++
	}
	assert.Equal(t, 3, live)
	assert.Equal(t, 6, c.Len())

	assert.Equal(t, 3, c.Compact())
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, int64(3), c.Unlinked())

	var ids []uint64
	for o := range c.All() {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []uint64{5, 4, 2}, ids)

	assert.Equal(t, 0, c.Compact(), "nothing left to unlink")
}

func TestCollectionCompactEverythingFilled(t *testing.T) {
	c := NewOrderCollection(Sell)
	for i := 1; i <= 4; i++ {
		o := c.Append(NewOrder(uint64(i), 0, "X", Sell, px("10"), 2))
		o.take(2)
	}
	assert.Equal(t, 4, c.Compact())
	assert.Equal(t, 0, c.Len())

	n := 0
	for range c.All() {
		n++
	}
	assert.Zero(t, n)
}

func TestCollectionConcurrentAppendAndCompact(t *testing.T) {
	const (
		producers = 8
		perWorker = 500
	)
	c := NewOrderCollection(Buy)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				o := c.Append(NewOrder(uint64(p*perWorker+i+1), 0, "X", Buy, px("10"), 1))
				// every other order fills immediately
				if i%2 == 0 {
					o.take(1)
				}
			}
		}(p)
	}

	done := make(chan struct{})
	var compactors sync.WaitGroup
	for range 2 {
		compactors.Add(1)
		go func() {
			defer compactors.Done()
			for {
				select {
				case <-done:
					return
				default:
					c.Compact()
				}
			}
		}()
	}

	wg.Wait()
	close(done)
	compactors.Wait()
	c.Compact()

	total := producers * perWorker
	assert.Equal(t, int64(total), c.Appended())
	assert.Equal(t, total/2, c.Len())

	seen := make(map[uint64]bool)
	for o := range c.All() {
		assert.False(t, o.IsFilled())
		assert.False(t, seen[o.Sequence], "duplicate sequence %d", o.Sequence)
		seen[o.Sequence] = true
	}
	assert.Len(t, seen, total/2)
}
