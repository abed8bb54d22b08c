package sat

import "sync/atomic"

// BudgetTracker is a process-wide, lock-free conflict-budget hysteresis
// counter. Every Core shares one: repeated LIMIT results widen the
// budget for everyone, on the theory that a hard instance this run is
// likely hard for the rest of the run too. Reads and writes are
// deliberately relaxed (no synchronization beyond atomics) — this is an
// advisory heuristic, not a correctness-critical value.
type BudgetTracker struct {
	current atomic.Int64
	trips   atomic.Int64
}

// NewBudgetTracker starts the shared budget at initial conflicts.
func NewBudgetTracker(initial int64) *BudgetTracker {
	b := &BudgetTracker{}
	b.current.Store(initial)
	return b
}

// Current returns the conflict budget a new solve should use.
func (b *BudgetTracker) Current() int64 {
	return b.current.Load()
}

// RecordLimit widens the shared budget after a solve hit LIMIT. The
// budget grows ×10 after enough repeated trips to filter out one-off
// unlucky probes.
func (b *BudgetTracker) RecordLimit() {
	trips := b.trips.Add(1)
	if trips%4 == 0 {
		cur := b.current.Load()
		b.current.CompareAndSwap(cur, cur*10)
	}
}

// RecordCompletion resets the trip counter after a clean solve, so the
// hysteresis only reacts to sustained difficulty, not a single outlier.
func (b *BudgetTracker) RecordCompletion() {
	b.trips.Store(0)
}
