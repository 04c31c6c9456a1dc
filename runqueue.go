package numa

// Push is the sole ingress of the run queue (spec §4.5, §6). Pushing an
// empty batch is a no-op; a batch with a nil head or tail is a
// precondition violation (spec §7).
func (n *Node) Push(batch Batch) {
	if batch.Len() == 0 {
		return
	}
	head, tail := batch.head, batch.tail
	if head == nil || tail == nil {
		violate("Push", "batch has a nil head or tail")
	}

	prev := n.runqHead.Swap(tail)
	if prev == nil {
		violate("Push", "run queue head swapped out a nil predecessor")
	}
	prev.next.Store(head)
}

// TryAcquirePolling acquires the Node's single-consumer polling token. It
// returns (nil, false) if another NodePoller is already live for this Node.
// The returned handle is not safe to hand across goroutines/threads — only
// the acquirer should drive it (spec §4.5, §9).
func (n *Node) TryAcquirePolling() (*NodePoller, bool) {
	if n.runqPolling.CompareAndSwap(0, 1) {
		return &NodePoller{node: n}, true
	}
	return nil, false
}

// NodePoller is a scoped acquisition of a Node's run queue polling token.
// Call Close when done draining — typically via defer — to release the
// token for the next consumer.
type NodePoller struct {
	node   *Node
	closed bool
}

// Close releases the polling token. Safe to call more than once.
func (p *NodePoller) Close() {
	if p.closed {
		return
	}
	p.closed = true
	p.node.runqPolling.Store(0)
}

// Next dequeues the next Task in FIFO order, or reports (nil, false) if the
// queue is empty or a concurrent push is mid-publish — callers should try
// again later rather than treat false as "drained forever" (spec §4.5,
// §7).
func (p *NodePoller) Next() (*Task, bool) {
	n := p.node
	stub := &n.runqStub

	tail := n.runqTail
	next := tail.next.Load()

	if tail == stub {
		if next == nil {
			return nil, false
		}
		tail = next
		n.runqTail = tail
		next = tail.next.Load()
	}

	if next != nil {
		n.runqTail = next
		return tail, true
	}

	head := n.runqHead.Load()
	if tail != head {
		return nil, false
	}

	n.Push(BatchOf(stub))

	next = tail.next.Load()
	if next == nil {
		return nil, false
	}
	n.runqTail = next
	return tail, true
}
