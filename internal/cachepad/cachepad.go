// Package cachepad pads hot atomics so independent producers and a node's
// single consumer don't bounce the same cache line between cores.
//
// Grounded on ultrapool's own `_cacheLinePadN [N]byte` fields in WorkerPool
// and poolShard: explicit, hand-sized byte-array padding rather than a
// build-tag-selected struct. This package just gives those padded atomics a
// name so every hot Node field doesn't re-derive the byte count by hand.
package cachepad

import "sync/atomic"

// Size is the assumed cache line size on the platforms this module ships
// on (x86_64 and arm64 server parts). Only needs to be "big enough".
const Size = 64

// Uint64 is an atomic.Uint64 padded out to its own cache line.
type Uint64 struct {
	atomic.Uint64
	_ [Size - 8]byte
}

// Int64 is an atomic.Int64 padded out to its own cache line.
type Int64 struct {
	atomic.Int64
	_ [Size - 8]byte
}

// Uint32 is an atomic.Uint32 padded out to its own cache line.
type Uint32 struct {
	atomic.Uint32
	_ [Size - 4]byte
}
