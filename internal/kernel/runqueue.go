package kernel

import "sync"

// RunQueue is the single global run-queue structure: the
// red-black tree of runnable tasks plus the aggregates (count, total
// weight, period) and the lock that protects all of it. A task is a
// member of the tree iff its State is StateRunnable and it is not the
// task currently executing on any CPU (invariant 5); RB link fields are
// meaningful only while a task is linked in, and are cleared on
// extraction.
type RunQueue struct {
	mu sync.Mutex

	cfg Config
	t   tree

	totalWeight uint64
	period      uint64
}

// NewRunQueue initializes an empty run queue (rq_init).
func NewRunQueue(cfg Config) *RunQueue {
	return &RunQueue{
		cfg:    cfg,
		period: cfg.Latency,
	}
}

// insertLocked performs the BST-insert-and-fixup assuming the
// caller already holds rq.mu. It is shared by Insert (which takes the
// lock itself) and Wake (which has already taken it to read the cached
// minimum).
func (rq *RunQueue) insertLocked(task *Task) bool {
	if task.node != nil {
		panic("kernel: rq_insert on a task already linked into the run queue")
	}

	if rq.t.size == rq.cfg.NPROC {
		// Tree full: silent no-op. Caller must check Size if
		// capacity matters.
		return false
	}

	n := &node{task: task}
	task.node = n
	rq.t.insert(n)
	rq.totalWeight += task.Weight

	return true
}

// Insert requires task.State == StateRunnable and that the task is not
// already in the tree. It reports whether the task was
// admitted; false means the tree was full and the call was a no-op.
func (rq *RunQueue) Insert(task *Task) bool {
	if task.State != StateRunnable {
		panic("kernel: rq_insert requires task.State == StateRunnable")
	}

	rq.mu.Lock()
	defer rq.mu.Unlock()

	return rq.insertLocked(task)
}

// ExtractMin removes and returns the task with the smallest vruntime,
// stamping its time slice before returning it.
// It returns nil if the tree is empty or if the cached minimum's state
// is not RUNNABLE — a SLEEPING or killed task may still be linked during
// a narrow race window, and the scheduler simply treats that as "no work
// right now" rather than removing it.
func (rq *RunQueue) ExtractMin() *Task {
	rq.mu.Lock()
	defer rq.mu.Unlock()

	if rq.t.min == nil {
		return nil
	}

	if rq.t.min.task.State != StateRunnable {
		return nil
	}

	n := rq.t.deleteMin()
	task := n.task
	task.node = nil
	rq.totalWeight -= task.Weight

	// Invariant 6: period = max(latency, count * min_granularity), using
	// the post-removal count.
	if rq.t.size > 0 {
		rq.period = maxU64(rq.cfg.Latency, uint64(rq.t.size)*rq.cfg.MinGranularity)
	} else {
		rq.period = rq.cfg.Latency
	}

	// Slice is period * weight / max(total_weight, weight), using the
	// remaining total weight after subtracting the extracted task's own
	// weight. The denominator floors to the extracted task's own weight,
	// not 1, so a lone task still gets total_weight == weight (its whole
	// share of the period) rather than the division collapsing toward
	// period * weight once the tree empties out.
	task.MaxExecTime = rq.period * task.Weight / maxU64(rq.totalWeight, task.Weight)

	return task
}

// Wake applies the vruntime floor (so a long-sleeping task
// cannot monopolize the CPU on return), marks the task RUNNABLE, and
// reinserts it.
func (rq *RunQueue) Wake(task *Task) bool {
	rq.mu.Lock()
	defer rq.mu.Unlock()

	if rq.t.min != nil && rq.t.min.task.VRuntime > task.VRuntime {
		task.VRuntime = rq.t.min.task.VRuntime
	}

	task.State = StateRunnable

	return rq.insertLocked(task)
}

// OnTick accounts one timer tick delivered to a RUNNING task:
// current_runtime advances by one tick, vruntime by 1024/weight rounded
// up to at least 1 so it is always strictly monotonic.
func (rq *RunQueue) OnTick(task *Task) {
	rq.mu.Lock()
	defer rq.mu.Unlock()

	task.CurrentRuntime++

	delta := scaledTick(task.Weight)
	task.VRuntime += delta
}

func scaledTick(weight uint64) uint64 {
	delta := uint64(1024) / weight
	if delta == 0 {
		delta = 1
	}

	return delta
}

// IsEmpty reports whether the run queue holds no tasks.
func (rq *RunQueue) IsEmpty() bool {
	rq.mu.Lock()
	defer rq.mu.Unlock()

	return rq.t.size == 0
}

// IsFull reports whether the run queue is at NPROC capacity.
func (rq *RunQueue) IsFull() bool {
	rq.mu.Lock()
	defer rq.mu.Unlock()

	return rq.t.size == rq.cfg.NPROC
}

// Size returns the number of tasks currently in the run queue.
func (rq *RunQueue) Size() int {
	rq.mu.Lock()
	defer rq.mu.Unlock()

	return rq.t.size
}

// AggregateWeight returns the sum of weights over all tasks currently in
// the run queue.
func (rq *RunQueue) AggregateWeight() uint64 {
	rq.mu.Lock()
	defer rq.mu.Unlock()

	return rq.totalWeight
}

// Period returns the length of the current scheduling epoch, in ticks.
func (rq *RunQueue) Period() uint64 {
	rq.mu.Lock()
	defer rq.mu.Unlock()

	return rq.period
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}

	return b
}
