package numa

// Cluster is a minimal helper wrapping a possibly-empty ring of Nodes. It
// never owns its Nodes' storage, only the ring linkage between them (spec
// §3, §4.6). Splicing nodes into an existing ring is an external builder's
// job (see Scheduler) — Cluster itself only ever reads the ring it was
// handed.
type Cluster struct {
	head *Node
	size int
}

// NewCluster returns an empty cluster.
func NewCluster() *Cluster {
	return &Cluster{}
}

// ClusterFrom wraps a single, freshly pinned Node into a one-element
// self-looped ring.
func ClusterFrom(n *Node) *Cluster {
	n.next = n
	return &Cluster{head: n, size: 1}
}

// Len reports the number of Nodes in the ring.
func (c *Cluster) Len() int {
	return c.size
}

// Iter walks the ring once, starting at the head.
func (c *Cluster) Iter() *RingIter {
	return newRingIter(c.head)
}

// RingIter walks a Node ring exactly once, starting at some node and
// stopping the moment it would revisit that starting node.
type RingIter struct {
	first *Node
	cur   *Node
}

func newRingIter(first *Node) *RingIter {
	return &RingIter{first: first, cur: first}
}

// Next returns the next Node in the ring, or (nil, false) once the walk has
// covered every Node exactly once.
func (it *RingIter) Next() (*Node, bool) {
	if it.cur == nil {
		return nil, false
	}
	n := it.cur
	next := n.next
	if next == it.first {
		next = nil
	}
	it.cur = next
	return n, true
}
