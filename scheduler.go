package numa

import (
	"errors"
	"fmt"

	"github.com/numapool/numapool/internal/cachepad"
)

// Scheduler is the minimal collaborator the core requires (spec §6): an
// atomic nodes-active counter that only Node.resumeWorker /
// Node.SuspendWorker ever mutate, plus the Cluster ring those Nodes live
// on. Everything else a real scheduler needs — task submission policy,
// reactor integration, thread-pool sizing policy — is explicitly out of
// scope (spec §1) and left to callers; Scheduler here exists only so the
// core has something to bind to and so tests/demos can exercise a whole
// ring end to end.
type Scheduler struct {
	nodesActive cachepad.Int64
	cluster     *Cluster
}

// New builds a Scheduler with one Node per entry in workerCounts, spliced
// into a ring in the given order (the "external builder" spec §4.6 defers
// to), each bound back to this Scheduler and Init'ed.
func New(workerCounts []int) (*Scheduler, error) {
	if len(workerCounts) == 0 {
		return nil, errors.New("numa: scheduler needs at least one node")
	}

	nodes := make([]*Node, len(workerCounts))
	for i, wc := range workerCounts {
		n, err := NewNode(wc)
		if err != nil {
			return nil, fmt.Errorf("numa: building node %d: %w", i, err)
		}
		nodes[i] = n
	}

	for i, n := range nodes {
		n.next = nodes[(i+1)%len(nodes)]
	}

	s := &Scheduler{cluster: &Cluster{head: nodes[0], size: len(nodes)}}
	for _, n := range nodes {
		n.scheduler = s
		n.Init()
	}
	return s, nil
}

// NodesActive reports how many Nodes currently have at least one active
// (running or waking) worker.
func (s *Scheduler) NodesActive() int64 { return s.nodesActive.Load() }

// Cluster returns the ring of Nodes this Scheduler owns.
func (s *Scheduler) Cluster() *Cluster { return s.cluster }
