package numa

// IdleState is the 2-bit wake state packed into a Node's idle queue word
// (spec §4.2).
type IdleState uint8

const (
	// StateReady: no resume in flight; the idle stack may hold idle slots.
	StateReady IdleState = iota
	// StateWaking: exactly one resumed thread is scanning for work.
	StateWaking
	// StateNotified: a wake signal was delivered but consumed no worker.
	StateNotified
	// StateShutdown: terminal.
	StateShutdown
)

func (s IdleState) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateWaking:
		return "waking"
	case StateNotified:
		return "notified"
	case StateShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Bit layout of the packed idle word: top bits worker index, next 2 bits
// idle state, low 8 bits ABA tag (spec §4.2, §9). worker_index == 0 is the
// null sentinel; all other indices are 1-based.
const (
	idleStateShift = 8
	idleIndexShift = 10
	idleStateMask  = 0b11
	idleAbaMask    = 0xFF
)

// MaxWorkers bounds every index the packed idle word can encode: the
// 64-bit idle word's width minus the 8 ABA bits and 2 state bits (spec §3).
const MaxWorkers = 1<<(64-idleIndexShift) - 1

func encodeIdle(state IdleState, index uint32, aba uint8) uint64 {
	return (uint64(index) << idleIndexShift) | (uint64(state) << idleStateShift) | uint64(aba)
}

func decodeIdle(word uint64) (IdleState, uint32, uint8) {
	state := IdleState((word >> idleStateShift) & idleStateMask)
	index := uint32(word >> idleIndexShift)
	aba := uint8(word & idleAbaMask)
	return state, index, aba
}

// resumeKind discriminates the outcome of a resume attempt (spec §4.2).
type resumeKind uint8

const (
	resumeNotified resumeKind = iota
	resumeSpawn
	resumeResume
)

// ResumeResult is the outcome of Node.TryResumeWorker /
// Node.TryResumeSomeWorker / Node.StopWaking.
type ResumeResult struct {
	kind   resumeKind
	slot   *WorkerSlot
	thread *Thread
}

// IsNotified reports whether the resume delivered a wake signal that
// consumed no worker — the next idler will see it and stay hot.
func (r ResumeResult) IsNotified() bool { return r.kind == resumeNotified }

// Spawn returns the slot a caller must start a fresh thread for, if the
// resume popped an uninitialized worker off the idle stack (spec §6,
// "To spawner code").
func (r ResumeResult) Spawn() (*WorkerSlot, bool) {
	if r.kind != resumeSpawn {
		return nil, false
	}
	return r.slot, true
}

// Resume returns the thread a caller must un-park, if the resume popped a
// previously suspended thread off the idle stack (spec §6, "To executing
// threads"). Its state is already committed to Waking.
func (r ResumeResult) Resume() (*Thread, bool) {
	if r.kind != resumeResume {
		return nil, false
	}
	return r.thread, true
}
