package numa

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// Scenario 4 (spec §8): two producers concurrently push a 3-task batch each;
// a single poller drains. Exactly 6 tasks emerge, and each producer's 3 are
// contiguous and in insertion order.
func TestRunQueueConcurrentProducersSinglePoller(t *testing.T) {
	node, err := NewNode(0)
	require.NoError(t, err)
	node.Init()

	const perProducer = 3
	producer := func(label string) Batch {
		tasks := make([]*Task, perProducer)
		for i := range tasks {
			i := i
			tasks[i] = NewTask(func() { _ = i })
		}
		return BatchOf(tasks...)
	}

	batchA := producer("a")
	batchB := producer("b")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); node.Push(batchA) }()
	go func() { defer wg.Done(); node.Push(batchB) }()
	wg.Wait()

	poller, ok := node.TryAcquirePolling()
	require.True(t, ok)
	defer poller.Close()

	var drained []*Task
	for {
		task, ok := poller.Next()
		if !ok {
			if len(drained) == 2*perProducer {
				break
			}
			continue
		}
		drained = append(drained, task)
	}

	require.Len(t, drained, 2*perProducer)

	// Each producer's batch must appear contiguously and in push order,
	// though either batch may come first depending on which Push won the
	// race for runqHead.
	firstRun := drained[:perProducer]
	secondRun := drained[perProducer:]
	require.True(t, sameBatch(firstRun, batchA) || sameBatch(firstRun, batchB))
	require.True(t, sameBatch(secondRun, batchA) || sameBatch(secondRun, batchB))
	require.False(t, sameBatch(firstRun, batchB) && sameBatch(secondRun, batchB))
}

func sameBatch(got []*Task, b Batch) bool {
	if len(got) != b.Len() {
		return false
	}
	cur := b.head
	for _, t := range got {
		if cur != t {
			return false
		}
		cur = cur.next.Load()
	}
	return true
}

// TryAcquirePolling refuses a second concurrent acquirer while one is live.
func TestRunQueuePollingTokenIsExclusive(t *testing.T) {
	node, err := NewNode(0)
	require.NoError(t, err)
	node.Init()

	poller, ok := node.TryAcquirePolling()
	require.True(t, ok)

	_, ok = node.TryAcquirePolling()
	require.False(t, ok)

	poller.Close()

	_, ok = node.TryAcquirePolling()
	require.True(t, ok)
}

func TestRunQueuePushPanicsOnMalformedBatch(t *testing.T) {
	node, err := NewNode(0)
	require.NoError(t, err)
	node.Init()

	require.Panics(t, func() {
		node.Push(Batch{head: nil, tail: &Task{}, n: 1})
	})
}
