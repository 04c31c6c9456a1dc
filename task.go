package numa

import "sync/atomic"

// Task is opaque to the scheduling core beyond its intrusive next link: the
// core only ever chains, swaps, and dequeues Tasks, never inspects Run.
// Tasks are pinned (must not move) while linked into a run queue.
type Task struct {
	next atomic.Pointer[Task]
	Run  func()
}

// NewTask wraps fn as a schedulable unit of work.
func NewTask(fn func()) *Task {
	return &Task{Run: fn}
}

// Batch is a pre-linked chain of Tasks ready for a single Node.Push call.
// The zero value is an empty batch.
type Batch struct {
	head, tail *Task
	n          int
}

// BatchOf links tasks into a single batch in the given order. Each task's
// next pointer is (re)established here, so a Task must not belong to more
// than one in-flight batch at a time.
func BatchOf(tasks ...*Task) Batch {
	var b Batch
	for _, t := range tasks {
		b.Push(t)
	}
	return b
}

// Push appends t to the batch, extending its intrusive chain.
func (b *Batch) Push(t *Task) {
	t.next.Store(nil)
	if b.tail == nil {
		b.head = t
	} else {
		b.tail.next.Store(t)
	}
	b.tail = t
	b.n++
}

// Len reports the number of tasks chained into the batch.
func (b Batch) Len() int {
	return b.n
}
