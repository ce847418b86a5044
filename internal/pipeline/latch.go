package pipeline

import "sync/atomic"

// Latch is the process-wide "runtime stopped answering" flag. It trips the
// first time a model call hits a timeout and never resets: once a local
// runtime starts timing out it rarely recovers within a session, and every
// further attempt would cost the caller the full timeout again.
//
// The latch is a one-way bool, so concurrent extraction requests can read
// and trip it without a lock. A lost racing trip costs one extra timeout,
// not correctness.
type Latch struct {
	tripped atomic.Bool
}

// NewLatch returns an untripped latch
func NewLatch() *Latch {
	return &Latch{}
}

// Trip marks the runtime as unavailable for the rest of the process
func (l *Latch) Trip() {
	l.tripped.Store(true)
}

// Tripped reports whether a timeout has been seen
func (l *Latch) Tripped() bool {
	return l.tripped.Load()
}
