package numa

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdleWordRoundTrip(t *testing.T) {
	cases := []struct {
		state IdleState
		index uint32
		aba   uint8
	}{
		{StateReady, 0, 0},
		{StateWaking, 1, 255},
		{StateNotified, 12345, 7},
		{StateShutdown, 0, 0},
	}
	for _, c := range cases {
		word := encodeIdle(c.state, c.index, c.aba)
		gotState, gotIndex, gotAba := decodeIdle(word)
		require.Equal(t, c.state, gotState)
		require.Equal(t, c.index, gotIndex)
		require.Equal(t, c.aba, gotAba)
	}
}

// ABA robustness (spec §8): repeated push/pop cycles on the same slot must
// advance the ABA tag by exactly one per cycle, distinct modulo 256 across
// adjacent attempts, and must wrap rather than panic at the 8-bit boundary.
func TestABATagAdvancesAndWraps(t *testing.T) {
	// A second node is kept permanently active so the cycling node's own
	// suspend/resume pair never drains the scheduler's global
	// nodes-active counter to zero and fires the shutdown cascade.
	sched, err := New([]int{1, 1})
	require.NoError(t, err)

	it := sched.Cluster().Iter()
	node, ok := it.Next()
	require.True(t, ok)
	keepAliveNode, ok := it.Next()
	require.True(t, ok)

	keepAliveRes, ok := keepAliveNode.TryResumeWorker()
	require.True(t, ok)
	keepAliveSlot, _ := keepAliveRes.Spawn()
	keepAliveSlot.InstallThread(NewThread())

	res, ok := node.TryResumeWorker()
	require.True(t, ok)
	slot, _ := res.Spawn()
	thread := NewThread()
	slot.InstallThread(thread)

	_, _, lastAba := decodeIdle(node.idleQueue.Load())

	for i := 0; i < 300; i++ {
		_, shutdown := node.SuspendWorker(thread)
		require.False(t, shutdown)

		_, _, aba := decodeIdle(node.idleQueue.Load())
		require.Equal(t, uint8(lastAba+1), aba, "cycle %d: aba must advance by exactly one (mod 256)", i)
		lastAba = aba

		res, ok := node.TryResumeWorker()
		require.True(t, ok)
		resumed, isResume := res.Resume()
		require.True(t, isResume)
		require.Same(t, thread, resumed)
	}
}
