// Command numademo wires the numa scheduling core into a small, runnable
// demo: goroutines stand in for OS threads (actual thread spawning is an
// out-of-scope collaborator per spec.md §1), a flag-configured ring of
// Nodes accepts a burst of tasks, and a zap-backed Observer logs every
// lifecycle transition. Modeled on HackStrix's flag-driven, setter-style
// main.go rather than a config-struct/env-var main — see SPEC_FULL.md §10.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sync"

	"go.uber.org/zap"

	"github.com/numapool/numapool"
	"github.com/numapool/numapool/telemetry"
)

func main() {
	nodeCount := flag.Int("nodes", 2, "number of NUMA nodes in the demo ring")
	workersPerNode := flag.Int("workers-per-node", 4, "worker slots per node")
	taskCount := flag.Int("tasks", 100, "number of demo tasks to push to node 0")
	flag.Parse()

	zlog, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck
	obs := telemetry.NewZapObserver(zlog)

	workerCounts := make([]int, *nodeCount)
	for i := range workerCounts {
		workerCounts[i] = *workersPerNode
	}

	sched, err := numa.New(workerCounts)
	if err != nil {
		log.Fatalf("building scheduler: %v", err)
	}

	r := newRunner(sched, obs)

	var wg sync.WaitGroup
	wg.Add(*taskCount)
	for i := 0; i < *taskCount; i++ {
		i := i
		task := numa.NewTask(func() {
			defer wg.Done()
			fmt.Printf("task %d executed\n", i)
		})
		r.Submit(0, task)
	}

	wg.Wait()
	r.LogStatus()
	r.Shutdown(context.Background())
}
