// Package telemetry is the ambient logging surface that sits one layer
// above the numa core (SPEC_FULL.md §10). The core package never imports
// a logger — a CAS loop has no business calling into one — so this
// package, and its zap-backed implementation, is only ever wired in by the
// demo Scheduler runner and its tests.
package telemetry

import (
	"go.uber.org/zap"

	"github.com/numapool/numapool"
)

// Observer receives best-effort lifecycle notifications from a Scheduler
// runner. Every method must be cheap and non-blocking — it is called from
// the hot resume/suspend path of whatever goroutine is driving the demo.
type Observer interface {
	OnSpawn(nodeIndex int, threadID string)
	OnResume(nodeIndex int, threadID string)
	OnSuspend(nodeIndex int, threadID string)
	OnShutdown(nodeIndex int, threadID string)
	// OnStatus reports a point-in-time diagnostic snapshot of a Node —
	// the demo's `/status`-equivalent (SPEC_FULL.md §12), logged instead
	// of served over HTTP since this is a CLI demo, not a server.
	OnStatus(nodeIndex int, snapshot numa.NodeSnapshot)
}

// ZapObserver logs every lifecycle event through a structured zap logger.
type ZapObserver struct {
	log *zap.SugaredLogger
}

// NewZapObserver wraps a *zap.Logger as an Observer.
func NewZapObserver(log *zap.Logger) *ZapObserver {
	return &ZapObserver{log: log.Sugar()}
}

func (o *ZapObserver) OnSpawn(nodeIndex int, threadID string) {
	o.log.Infow("thread spawned", "node", nodeIndex, "thread", threadID)
}

func (o *ZapObserver) OnResume(nodeIndex int, threadID string) {
	o.log.Debugw("thread resumed", "node", nodeIndex, "thread", threadID)
}

func (o *ZapObserver) OnSuspend(nodeIndex int, threadID string) {
	o.log.Debugw("thread suspended", "node", nodeIndex, "thread", threadID)
}

func (o *ZapObserver) OnShutdown(nodeIndex int, threadID string) {
	o.log.Infow("thread shut down", "node", nodeIndex, "thread", threadID)
}

func (o *ZapObserver) OnStatus(nodeIndex int, snapshot numa.NodeSnapshot) {
	o.log.Infow("node status",
		"node", nodeIndex,
		"workers_active", snapshot.WorkersActive,
		"workers_total", snapshot.WorkersTotal,
		"idle_state", snapshot.IdleState,
		"live_threads", snapshot.LiveThreads,
	)
}

// NoopObserver discards every event. Useful as a default when no logger is
// configured.
type NoopObserver struct{}

func (NoopObserver) OnSpawn(int, string)             {}
func (NoopObserver) OnResume(int, string)            {}
func (NoopObserver) OnSuspend(int, string)           {}
func (NoopObserver) OnShutdown(int, string)          {}
func (NoopObserver) OnStatus(int, numa.NodeSnapshot) {}
