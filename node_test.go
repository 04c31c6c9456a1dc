package numa

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Scenario 1 (spec §8): single worker, single task, full lifecycle down to
// the shutdown cascade it itself triggers.
func TestSingleWorkerSingleTaskLifecycle(t *testing.T) {
	sched, err := New([]int{1})
	require.NoError(t, err)

	node, ok := sched.Cluster().Iter().Next()
	require.True(t, ok)

	ran := false
	task := NewTask(func() { ran = true })
	node.Push(BatchOf(task))

	res, ok := node.TryResumeWorker()
	require.True(t, ok)
	slot, isSpawn := res.Spawn()
	require.True(t, isSpawn)

	require.EqualValues(t, 1, node.WorkersActive())
	require.EqualValues(t, 1, sched.NodesActive())

	thread := NewThread()
	slot.InstallThread(thread)
	require.Equal(t, ThreadWaking, thread.State())

	poller, ok := node.TryAcquirePolling()
	require.True(t, ok)
	polled, ok := poller.Next()
	require.True(t, ok)
	require.Same(t, task, polled)
	polled.Run()
	require.True(t, ran)
	_, ok = poller.Next()
	require.False(t, ok)
	poller.Close()

	threads, shutdown := node.SuspendWorker(thread)
	require.True(t, shutdown, "last worker of last active node must trigger the cascade")
	require.Len(t, threads, 1)
	require.Same(t, thread, threads[0])
	require.Equal(t, ThreadShutdown, thread.State())

	id, ok := slot.ThreadID()
	require.True(t, ok)
	require.Equal(t, thread.ID(), id)

	require.EqualValues(t, 0, node.WorkersActive())
	require.EqualValues(t, 0, sched.NodesActive())
}

// Scenario 2 (spec §8): a resume against an empty idle stack returns
// Notified; a second resume before any suspend is a no-op.
func TestNotifiedAbsorption(t *testing.T) {
	sched, err := New([]int{0, 0})
	require.NoError(t, err)

	nodeA, ok := sched.Cluster().Iter().Next()
	require.True(t, ok)

	res, ok := nodeA.TryResumeWorker()
	require.True(t, ok)
	require.True(t, res.IsNotified())

	_, ok = nodeA.TryResumeWorker()
	require.False(t, ok, "a second resume while Notified must be a no-op")
}

// Scenario 3 (spec §8): the waking baton is single-holder until the
// current waking thread hands it off via StopWaking.
func TestWakingBaton(t *testing.T) {
	sched, err := New([]int{2})
	require.NoError(t, err)

	node, ok := sched.Cluster().Iter().Next()
	require.True(t, ok)

	res1, ok := node.TryResumeWorker()
	require.True(t, ok)
	slot1, isSpawn := res1.Spawn()
	require.True(t, isSpawn)

	_, ok = node.TryResumeWorker()
	require.False(t, ok, "baton already held, second resume is a no-op")

	t1 := NewThread()
	slot1.InstallThread(t1)

	res2, ok := node.StopWaking()
	require.True(t, ok)
	slot2, isSpawn := res2.Spawn()
	require.True(t, isSpawn)

	require.EqualValues(t, 2, node.WorkersActive())

	t2 := NewThread()
	slot2.InstallThread(t2)
	require.Equal(t, ThreadWaking, t2.State())
}

// Scenario 6 (spec §8): pushing an empty batch is a no-op.
func TestEmptyBatchPushIsNoop(t *testing.T) {
	sched, err := New([]int{1})
	require.NoError(t, err)
	node, ok := sched.Cluster().Iter().Next()
	require.True(t, ok)

	before := node.runqHead.Load()
	node.Push(Batch{})
	require.Same(t, before, node.runqHead.Load())
}

func TestPreconditionOnResumeWhileShutdown(t *testing.T) {
	sched, err := New([]int{1})
	require.NoError(t, err)
	node, ok := sched.Cluster().Iter().Next()
	require.True(t, ok)

	res, ok := node.TryResumeWorker()
	require.True(t, ok)
	slot, _ := res.Spawn()
	thread := NewThread()
	slot.InstallThread(thread)
	_, shutdown := node.SuspendWorker(thread)
	require.True(t, shutdown)

	require.Panics(t, func() {
		node.TryResumeWorker()
	})
}

func TestNodeRejectsOversizedWorkerCount(t *testing.T) {
	_, err := NewNode(MaxWorkers + 1)
	require.Error(t, err)
}

func TestDeinitAssertsQuiescence(t *testing.T) {
	n, err := NewNode(1)
	require.NoError(t, err)
	n.Init()

	require.Panics(t, func() {
		n.Deinit()
	}, "idle_queue is still Ready, not Shutdown")
}
