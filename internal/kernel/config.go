// Package kernel implements the core of a CFS-style process scheduler:
// the virtual-runtime-ordered red-black tree of runnable tasks, the
// weight/time-slice arithmetic, the preemption decision, and the per-CPU
// scheduling loop that drives them.
package kernel

// Config holds the scheduler's compile-time tuning constants as runtime
// values, so tests can exercise non-default tunables without touching
// package state.
type Config struct {
	// NPROC is the maximum number of tasks the run queue may hold.
	NPROC int

	// Latency is the target epoch length, in ticks, when the tree is
	// lightly loaded.
	Latency uint64

	// MinGranularity is the minimum number of ticks a task runs before
	// it may be preempted in favor of a better candidate.
	MinGranularity uint64
}

// DefaultConfig returns the standard tuning constants: NPROC=64,
// latency=NPROC/2, min_granularity=2.
func DefaultConfig() Config {
	const nproc = 64

	return Config{
		NPROC:          nproc,
		Latency:        nproc / 2,
		MinGranularity: 2,
	}
}
