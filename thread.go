package numa

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// ThreadState is the lifecycle state of a Thread as seen by the scheduling
// core (spec §3).
type ThreadState int32

const (
	ThreadRunning ThreadState = iota
	ThreadWaking
	ThreadSuspended
	ThreadShutdown
)

func (s ThreadState) String() string {
	switch s {
	case ThreadRunning:
		return "running"
	case ThreadWaking:
		return "waking"
	case ThreadSuspended:
		return "suspended"
	case ThreadShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Thread is the core's view of a running OS thread (or, in the goroutine
// demo, a goroutine standing in for one). It must be address-stable for its
// full lifetime: both the idle stack and WorkerSlot tags hold raw pointers
// to it.
type Thread struct {
	state     atomic.Int32
	nextIndex atomic.Uint32 // 0 = none; else 1-based index of the next slot on the idle stack
	worker    *WorkerSlot
	id        string
}

// NewThread allocates a Thread with a fresh opaque identifier. The thread
// starts Running; the caller installs it into a WorkerSlot via
// WorkerSlot.InstallThread before handing it to the scheduler.
func NewThread() *Thread {
	return &Thread{id: uuid.NewString()}
}

// ID returns the thread's opaque, process-external-safe identifier.
func (t *Thread) ID() string { return t.id }

// Worker returns the slot this thread currently backs.
func (t *Thread) Worker() *WorkerSlot { return t.worker }

// State reads the thread's current lifecycle state.
func (t *Thread) State() ThreadState { return ThreadState(t.state.Load()) }

// MarkRunning records that a Waking thread has finished its scan for work
// (regardless of whether it handed the baton on via Node.StopWaking or
// found nothing to hand off) and is no longer the Node's designated waker.
// Callers must invoke this before a subsequent SuspendWorker so that a
// thread which no longer holds the baton doesn't reset the idle state to
// Ready on behalf of whichever worker holds it now
// (spec §4.2 "stop_waking", §4.3 step 3).
func (t *Thread) MarkRunning() {
	t.state.CompareAndSwap(int32(ThreadWaking), int32(ThreadRunning))
}

func (t *Thread) setState(s ThreadState) ThreadState {
	return ThreadState(t.state.Swap(int32(s)))
}

func (t *Thread) nextIdx() (uint32, bool) {
	v := t.nextIndex.Load()
	return v, v != 0
}

func (t *Thread) setNextIdx(v uint32) {
	t.nextIndex.Store(v)
}
