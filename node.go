package numa

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/numapool/numapool/internal/cachepad"
)

// paddedTaskPtr is runq_head: swapped by every producer, so it gets its own
// cache line the same way ultrapool pads its hot pointer fields.
type paddedTaskPtr struct {
	atomic.Pointer[Task]
	_ [cachepad.Size - 8]byte
}

// Node is a NUMA-style locality domain: a pinned, fixed-size array of
// worker slots plus the idle queue and run queue that arbitrate them (spec
// §3). A Node must never move once constructed — both its own ring
// neighbors and every live Thread's WorkerSlot pointer reference it and its
// slot array directly.
type Node struct {
	next      *Node // ring link; written once at splice time, read-only afterward
	scheduler *Scheduler

	workers []WorkerSlot

	workersActive cachepad.Int64
	idleQueue     cachepad.Uint64

	runqPolling cachepad.Uint32
	runqHead    paddedTaskPtr
	runqTail    *Task // consumer-only; only ever touched while holding the polling token
	runqStub    Task  // sentinel embedded directly in the Node, never exposed
}

// NewNode allocates a Node with the given number of worker slots, threaded
// into an idle stack (spec §3, "Lifecycle"). It does not yet belong to a
// ring or a Scheduler; use New to build a complete, wired
// cluster, or set Node fields directly for a single-node test fixture.
//
// Open Question (a) from spec §9: this implementation REJECTS worker
// counts above MaxWorkers rather than silently truncating, since an
// over-large request is a caller configuration mistake, not a programming
// bug in the core's own invariants — see DESIGN.md.
func NewNode(workerCount int) (*Node, error) {
	if workerCount < 0 {
		return nil, fmt.Errorf("numa: negative worker count %d", workerCount)
	}
	if workerCount > MaxWorkers {
		return nil, fmt.Errorf("numa: worker count %d exceeds MaxWorkers (%d)", workerCount, MaxWorkers)
	}

	n := &Node{workers: make([]WorkerSlot, workerCount)}

	var top uint32 // 0 = none
	for i := 0; i < workerCount; i++ {
		n.workers[i].storeWorker(top)
		top = uint32(i + 1)
	}
	n.idleQueue.Store(encodeIdle(StateReady, top, 0))
	return n, nil
}

// Init links the run queue to its embedded stub, making the queue ready to
// accept pushes and polls (spec §3, "Lifecycle").
func (n *Node) Init() {
	n.runqStub.next.Store(nil)
	stub := &n.runqStub
	n.runqHead.Store(stub)
	n.runqTail = stub
}

// Deinit asserts the Node has fully quiesced: no active workers, idle
// queue in Shutdown, and an empty run queue (spec §3, "Lifecycle"). Any
// violation is a precondition failure.
func (n *Node) Deinit() {
	if n.workersActive.Load() != 0 {
		violate("Deinit", "workers_active != 0")
	}
	if state, _, _ := decodeIdle(n.idleQueue.Load()); state != StateShutdown {
		violate("Deinit", "idle_queue state is not Shutdown")
	}
	if n.runqPolling.Load() != 0 {
		violate("Deinit", "run queue still has a live poller")
	}
	if n.runqHead.Load() != &n.runqStub {
		violate("Deinit", "run queue is not empty")
	}
}

// Len reports the Node's fixed worker slot count.
func (n *Node) Len() int { return len(n.workers) }

// WorkersActive reports the number of slots currently backing a running or
// waking thread.
func (n *Node) WorkersActive() int64 { return n.workersActive.Load() }

// Threads returns every live (currently thread-backed) slot's Thread, in
// slot order. Not part of the distilled spec, but present in the original
// Rust source (`Node::threads`) and useful for post-mortem / status
// tooling (SPEC_FULL.md §12).
func (n *Node) Threads() []*Thread {
	var out []*Thread
	for i := range n.workers {
		if ref := n.workers[i].load(); ref != nil && ref.kind == refThread {
			out = append(out, ref.thread)
		}
	}
	return out
}

// NodeSnapshot is a diagnostic point-in-time view of a Node, modeled on the
// status reporting HackStrix's orchestrator exposes over its own worker
// pool (SPEC_FULL.md §12).
type NodeSnapshot struct {
	WorkersActive int64
	WorkersTotal  int
	IdleState     string
	LiveThreads   []string // ids of currently thread-backed slots, from Threads()
}

// Snapshot captures a NodeSnapshot for diagnostics.
func (n *Node) Snapshot() NodeSnapshot {
	state, _, _ := decodeIdle(n.idleQueue.Load())
	threads := n.Threads()
	ids := make([]string, len(threads))
	for i, t := range threads {
		ids[i] = t.ID()
	}
	return NodeSnapshot{
		WorkersActive: n.workersActive.Load(),
		WorkersTotal:  len(n.workers),
		LiveThreads:   ids,
		IdleState:     state.String(),
	}
}

func (n *Node) slotAt(index uint32) *WorkerSlot {
	return &n.workers[index-1]
}

func (n *Node) indexOf(slot *WorkerSlot) uint32 {
	base := unsafe.Pointer(&n.workers[0])
	idx := (uintptr(unsafe.Pointer(slot)) - uintptr(base)) / unsafe.Sizeof(n.workers[0])
	return uint32(idx) + 1
}

// TryResumeWorker attempts to resume (or spawn) one idle worker on this
// Node only (spec §4.2).
func (n *Node) TryResumeWorker() (ResumeResult, bool) {
	return n.resumeWorker(false)
}

// TryResumeSomeWorker scans the ring starting at this Node and returns the
// first successful resume (spec §4.2).
func (n *Node) TryResumeSomeWorker() (ResumeResult, bool) {
	it := newRingIter(n)
	for {
		node, ok := it.Next()
		if !ok {
			return ResumeResult{}, false
		}
		if r, ok := node.TryResumeWorker(); ok {
			return r, true
		}
	}
}

// StopWaking is called by a waking thread that just found work: it first
// tries to hand the waking baton to a fresh worker on the same Node, and
// failing that widens the search to the rest of the ring (spec §4.2).
func (n *Node) StopWaking() (ResumeResult, bool) {
	if r, ok := n.resumeWorker(true); ok {
		return r, true
	}
	it := newRingIter(n)
	it.Next() // discard self
	for {
		node, ok := it.Next()
		if !ok {
			return ResumeResult{}, false
		}
		if r, ok := node.TryResumeSomeWorker(); ok {
			return r, true
		}
	}
}

func (n *Node) resumeWorker(wasWaking bool) (ResumeResult, bool) {
	cur := n.idleQueue.Load()
	for {
		state, index, aba := decodeIdle(cur)

		switch state {
		case StateShutdown:
			violate("resumeWorker", "resume while Shutdown")
		case StateNotified:
			return ResumeResult{}, false
		case StateReady:
			state = StateWaking
		case StateWaking:
			if !wasWaking {
				return ResumeResult{}, false
			}
		}

		var result ResumeResult
		newIndex := index

		if index == 0 {
			state = StateNotified
			result = ResumeResult{kind: resumeNotified}
		} else {
			slot := n.slotAt(index)
			ref := slot.load()
			switch ref.kind {
			case refThreadID:
				violate("resumeWorker", "resume found an already shut-down slot")
			case refNode:
				violate("resumeWorker", "resume found a spawn already in flight")
			case refThread:
				t := ref.thread
				nxt, _ := t.nextIdx()
				newIndex = nxt
				result = ResumeResult{kind: resumeResume, thread: t}
			case refWorker:
				newIndex = ref.nextIdx
				result = ResumeResult{kind: resumeSpawn, slot: slot}
			}
		}

		newWord := encodeIdle(state, newIndex, aba)
		if !n.idleQueue.CompareAndSwap(cur, newWord) {
			cur = n.idleQueue.Load()
			continue
		}

		newActiveWorker := false
		switch result.kind {
		case resumeResume:
			result.thread.setState(ThreadWaking)
			newActiveWorker = true
		case resumeSpawn:
			result.slot.storeNode(n)
			newActiveWorker = true
		}

		if newActiveWorker {
			if n.workersActive.Add(1) == 1 {
				if n.scheduler == nil {
					violate("resumeWorker", "node has no bound scheduler")
				}
				n.scheduler.nodesActive.Add(1)
			}
		}

		return result, true
	}
}

// SuspendWorker is called by a thread on itself when it has no more work
// (spec §4.3). It returns the set of threads freed by a shutdown cascade
// if — and only if — this call suspended the last active worker of the
// last active Node in the scheduler; otherwise it returns (nil, false).
//
// The Rust original returns a lazy iterator; a slice is the idiomatic Go
// equivalent for a bounded, one-shot sweep like this, and is eagerly
// computed here since Go has no zero-cost lazy iterator for this shape.
func (n *Node) SuspendWorker(t *Thread) ([]*Thread, bool) {
	oldThreadState := t.setState(ThreadSuspended)
	if oldThreadState == ThreadShutdown {
		violate("SuspendWorker", "suspend called on an already shut-down thread")
	}

	slot := t.worker
	slot.storeThread(t)

	cur := n.idleQueue.Load()
	var oldIdleState IdleState
	for {
		state, index, aba := decodeIdle(cur)
		oldIdleState = state

		if state == StateShutdown {
			violate("SuspendWorker", "suspend called on a shut-down node")
		}

		newIndex := index
		if state != StateNotified {
			newIndex = n.indexOf(slot)
			t.setNextIdx(index)
		}

		if oldThreadState == ThreadWaking {
			state = StateReady
		}

		newWord := encodeIdle(state, newIndex, aba+1)
		if !n.idleQueue.CompareAndSwap(cur, newWord) {
			cur = n.idleQueue.Load()
			continue
		}
		break
	}

	if oldIdleState == StateNotified {
		t.setState(oldThreadState)
	}

	if n.workersActive.Add(-1) != 0 {
		return nil, false
	}

	if n.scheduler == nil {
		violate("SuspendWorker", "node has no bound scheduler")
	}
	if n.scheduler.nodesActive.Add(-1) != 0 {
		return nil, false
	}

	return n.cascadeShutdown(), true
}

// cascadeShutdown drains every Node in the ring exactly once, starting
// from n, and returns every thread freed in ring order (spec §4.4).
func (n *Node) cascadeShutdown() []*Thread {
	var all []*Thread
	all = append(all, n.shutdown()...)

	it := newRingIter(n)
	it.Next() // discard self, already drained above
	for {
		node, ok := it.Next()
		if !ok {
			return all
		}
		all = append(all, node.shutdown()...)
	}
}

// shutdown is called on each Node exactly once, by the shutdown cascade
// driver (spec §4.4). The pre-swap idle state is not asserted: a node's own
// last-active-worker suspend can leave the waking baton consumed (state
// Ready, per the worked single-worker scenario in spec §8) before this same
// suspend also turns out to be the globally-last one, so both Ready and
// Waking are legitimate pre-shutdown states.
func (n *Node) shutdown() []*Thread {
	oldWord := n.idleQueue.Swap(encodeIdle(StateShutdown, 0, 0))
	_, index, _ := decodeIdle(oldWord)

	var collected []*Thread
	found := 0
	for index != 0 {
		slot := n.slotAt(index)
		ref := slot.load()
		switch ref.kind {
		case refNode:
			violate("shutdown", "slot has a spawn in flight during shutdown")
		case refThreadID:
			violate("shutdown", "slot already shut down")
		case refWorker:
			found++
			index = ref.nextIdx
		case refThread:
			found++
			t := ref.thread
			nxt, _ := t.nextIdx()
			index = nxt
			t.setState(ThreadShutdown)
			slot.storeThreadID(t.id)
			collected = append(collected, t)
		}
	}

	if found != len(n.workers) {
		violate("shutdown", "idle stack did not cover every slot")
	}

	// The Rust original conses each freed thread onto a list as it's
	// found, so the final order is the reverse of discovery order; match
	// that rather than discovery order.
	threads := make([]*Thread, len(collected))
	for i, t := range collected {
		threads[len(collected)-1-i] = t
	}
	return threads
}
