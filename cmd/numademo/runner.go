package main

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/numapool/numapool"
	"github.com/numapool/numapool/telemetry"
)

// runner stands in for the out-of-scope collaborators spec.md §1 leaves to
// callers: thread spawning, parking/unparking, and the reactor loop that
// turns a ResumeResult into an actual goroutine doing actual work. None of
// this lives in the numa core package itself.
type runner struct {
	sched *numa.Scheduler
	nodes []*numa.Node
	obs   telemetry.Observer

	park sync.Map // thread id (string) -> chan struct{}

	eg     *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
}

func newRunner(sched *numa.Scheduler, obs telemetry.Observer) *runner {
	ctx, cancel := context.WithCancel(context.Background())
	eg, egCtx := errgroup.WithContext(ctx)

	r := &runner{sched: sched, obs: obs, eg: eg, ctx: egCtx, cancel: cancel}

	it := sched.Cluster().Iter()
	for {
		n, ok := it.Next()
		if !ok {
			break
		}
		r.nodes = append(r.nodes, n)
	}
	return r
}

// Submit pushes task onto the given node's run queue and tries to wake a
// worker to pick it up.
func (r *runner) Submit(nodeIdx int, task *numa.Task) {
	node := r.nodes[nodeIdx]
	node.Push(numa.BatchOf(task))

	if res, ok := node.TryResumeWorker(); ok {
		r.applyResume(res, node, nodeIdx)
	}
}

// applyResume reacts to a ResumeResult that may name a worker on any Node in
// the ring — Node.StopWaking widens its search across the whole cluster, so
// nodeIdx/node are only a fallback label for a same-node resume; a Spawn
// result always carries its true owning Node on the slot itself.
func (r *runner) applyResume(res numa.ResumeResult, node *numa.Node, nodeIdx int) {
	if slot, ok := res.Spawn(); ok {
		owner, ok := slot.Node()
		if !ok {
			owner = node
		}
		r.spawn(owner, slot, r.nodeIndex(owner, nodeIdx))
		return
	}
	if t, ok := res.Resume(); ok {
		r.obs.OnResume(nodeIdx, t.ID())
		r.unpark(t.ID())
		return
	}
	// Notified: nothing further to do; the next idler observes it.
}

// nodeIndex returns n's position among the runner's nodes, falling back to
// fallback if n isn't found (it always will be; this only guards against a
// future caller passing a foreign Node).
func (r *runner) nodeIndex(n *numa.Node, fallback int) int {
	for i, rn := range r.nodes {
		if rn == n {
			return i
		}
	}
	return fallback
}

func (r *runner) spawn(node *numa.Node, slot *numa.WorkerSlot, nodeIdx int) {
	r.eg.Go(func() error {
		t := numa.NewThread()
		slot.InstallThread(t)

		ch := make(chan struct{}, 1)
		r.park.Store(t.ID(), ch)
		r.obs.OnSpawn(nodeIdx, t.ID())

		r.driveThread(node, t, nodeIdx, ch)
		return nil
	})
}

func (r *runner) driveThread(node *numa.Node, t *numa.Thread, nodeIdx int, ch chan struct{}) {
	for {
		foundWork := r.drain(node)

		// A Waking thread that found at least one task hands the baton on
		// to a fresh worker (or widens the search) before going back to
		// idle, per the stop_waking protocol — and stops being the Node's
		// designated waker itself even if nobody else picked it up.
		if foundWork && t.State() == numa.ThreadWaking {
			if res, ok := node.StopWaking(); ok {
				r.applyResume(res, node, nodeIdx)
			}
			t.MarkRunning()
		}

		threads, shutdownFired := node.SuspendWorker(t)
		r.obs.OnSuspend(nodeIdx, t.ID())

		if shutdownFired {
			r.finishShutdown(threads)
			return
		}

		switch t.State() {
		case numa.ThreadShutdown:
			return
		case numa.ThreadSuspended:
			select {
			case <-ch:
				// Unparked by a resume; its state is already Waking.
			case <-r.ctx.Done():
				return
			}
		default:
			// Rescued out of Notified inside SuspendWorker: already
			// effectively resumed, go straight back to draining.
		}
	}
}

// drain exhausts the Node's run queue (if this thread wins the polling
// token) and reports whether it ran at least one task.
func (r *runner) drain(node *numa.Node) bool {
	poller, ok := node.TryAcquirePolling()
	if !ok {
		return false
	}
	defer poller.Close()

	ran := false
	for {
		task, ok := poller.Next()
		if !ok {
			return ran
		}
		task.Run()
		ran = true
	}
}

func (r *runner) unpark(id string) {
	if v, ok := r.park.Load(id); ok {
		ch := v.(chan struct{})
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// LogStatus reports a diagnostic snapshot of every Node in the ring — the
// demo's `/status`-equivalent (SPEC_FULL.md §12).
func (r *runner) LogStatus() {
	for i, n := range r.nodes {
		r.obs.OnStatus(i, n.Snapshot())
	}
}

func (r *runner) finishShutdown(threads []*numa.Thread) {
	for _, t := range threads {
		r.obs.OnShutdown(0, t.ID())
		r.unpark(t.ID())
	}
}

// Shutdown cancels the runner's context and waits for every spawned
// goroutine to observe it and exit.
func (r *runner) Shutdown(ctx context.Context) {
	r.cancel()
	_ = r.eg.Wait()
}
