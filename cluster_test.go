package numa

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmptyClusterIterYieldsNothing(t *testing.T) {
	c := NewCluster()
	require.Equal(t, 0, c.Len())

	_, ok := c.Iter().Next()
	require.False(t, ok)
}

func TestClusterFromSingleNodeSelfLoops(t *testing.T) {
	n, err := NewNode(1)
	require.NoError(t, err)

	c := ClusterFrom(n)
	require.Equal(t, 1, c.Len())
	require.Same(t, n, n.next)

	it := c.Iter()
	got, ok := it.Next()
	require.True(t, ok)
	require.Same(t, n, got)

	_, ok = it.Next()
	require.False(t, ok, "a one-element ring must stop after its single node, not loop back")
}

func TestRingIterVisitsEachNodeOnce(t *testing.T) {
	sched, err := New([]int{0, 0, 0})
	require.NoError(t, err)

	it := sched.Cluster().Iter()
	var visited []*Node
	for {
		n, ok := it.Next()
		if !ok {
			break
		}
		visited = append(visited, n)
	}
	require.Len(t, visited, 3)
	require.Same(t, visited[0].next, visited[1])
	require.Same(t, visited[1].next, visited[2])
	require.Same(t, visited[2].next, visited[0])
}
