package matching

import (
	"iter"
	"sync/atomic"
)

type node struct {
	order *Order
	next  atomic.Pointer[node]
}

// OrderCollection holds every live order submitted to one side of one
// instrument. Appends are lock-free: a new node is prepended to the list
// with a CAS on the head, retried under contention. Traversal runs from the
// most recently appended order backwards.
//
// Filled orders stay linked until Compact unlinks them. Appenders only ever
// write the head, and at most one compaction runs at a time, so the
// compactor is the single writer of interior links.
type OrderCollection struct {
	side SideType
	head atomic.Pointer[node]

	seq        atomic.Uint64
	appended   atomic.Int64
	unlinked   atomic.Int64
	compacting atomic.Bool
}

// NewOrderCollection creates an empty collection for one side
func NewOrderCollection(side SideType) *OrderCollection {
	return &OrderCollection{side: side}
}

// Side returns the side this collection holds
func (c *OrderCollection) Side() SideType {
	return c.side
}

// Append assigns the order its arrival sequence and publishes it. The
// returned handle is the order itself.
func (c *OrderCollection) Append(o *Order) *Order {
	o.Sequence = c.seq.Add(1)
	n := &node{order: o}
	for {
		head := c.head.Load()
		n.next.Store(head)
		if c.head.CompareAndSwap(head, n) {
			c.appended.Add(1)
			return o
		}
	}
}

// All yields every linked order, filled or not. Each call starts a fresh
// traversal from the current head.
func (c *OrderCollection) All() iter.Seq[*Order] {
	return func(yield func(*Order) bool) {
		for n := c.head.Load(); n != nil; n = n.next.Load() {
			if !yield(n.order) {
				return
			}
		}
	}
}

// Live yields linked orders with remaining quantity
func (c *OrderCollection) Live() iter.Seq[*Order] {
	return func(yield func(*Order) bool) {
		for o := range c.All() {
			if o.Remaining() == 0 {
				continue
			}
			if !yield(o) {
				return
			}
		}
	}
}

// Len is the number of linked nodes, including filled orders not yet compacted
func (c *OrderCollection) Len() int {
	return int(c.appended.Load() - c.unlinked.Load())
}

// Appended is the number of orders ever appended
func (c *OrderCollection) Appended() int64 {
	return c.appended.Load()
}

// Unlinked is the number of filled orders removed by compaction
func (c *OrderCollection) Unlinked() int64 {
	return c.unlinked.Load()
}

// Compact unlinks filled orders and returns how many it removed. If another
// compaction of this collection is already running it returns 0 at once.
//
// Unlinked nodes keep their next pointer, so a traversal standing on one
// continues into the list. They are reclaimed by the garbage collector once
// no traversal references them.
func (c *OrderCollection) Compact() int {
	if !c.compacting.CompareAndSwap(false, true) {
		return 0
	}
	defer c.compacting.Store(false)

	removed := 0

	// The head is shared with appenders; move it only by CAS. A failed CAS
	// means a new order was prepended, and the filled node is now interior.
	for {
		head := c.head.Load()
		if head == nil || head.order.Remaining() != 0 {
			break
		}
		if !c.head.CompareAndSwap(head, head.next.Load()) {
			break
		}
		removed++
	}

	prev := c.head.Load()
	if prev == nil {
		c.unlinked.Add(int64(removed))
		return removed
	}
	for cur := prev.next.Load(); cur != nil; cur = cur.next.Load() {
		if cur.order.Remaining() == 0 {
			prev.next.Store(cur.next.Load())
			removed++
			continue
		}
		prev = cur
	}

	c.unlinked.Add(int64(removed))
	return removed
}
