// Package numa implements the lock-free core of a NUMA-aware multi-worker
// task scheduler: a ring of Nodes, each owning a fixed array of worker
// slots, a packed idle queue that doubles as a wake-state machine, and an
// intrusive MPSC run queue with a single polling consumer.
//
// The package is a library, not a runtime: spawning OS threads, parking and
// unparking them, I/O reactors, timers, and the enclosing Scheduler's own
// bookkeeping beyond its nodes-active counter are all collaborators left to
// callers. See SPEC_FULL.md in the module root for the full contract.
package numa
