package kernel

import "github.com/sirupsen/logrus"

// CPU is a physical CPU's scheduling state: which task it currently runs,
// if any. The per-CPU saved context a real swtch would need is an
// external collaborator and is not modeled here.
type CPU struct {
	ID      int
	Current *Task
}

// Execute models the opaque swtch(&save, target) primitive together with
// everything that happens on the other side of it: the task runs until
// it yields, sleeps, exits, or is preempted, then reports whether it is
// still runnable. It is the caller's job (not the core's) to decide that
// outcome — the core only needs the answer so it can reinsert the task.
type Execute func(cpu *CPU, task *Task) (stillRunnable bool)

// Kernel couples the run queue with the per-CPU scheduling loop
// and the adapter that maps task state transitions onto it.
type Kernel struct {
	cfg Config
	rq  *RunQueue
	log *logrus.Logger

	cpus []*CPU
}

// NewKernel builds a Kernel around a fresh run queue. A nil logger gets
// NewLogger()'s defaults.
func NewKernel(cfg Config, log *logrus.Logger) *Kernel {
	if log == nil {
		log = NewLogger()
	}

	return &Kernel{
		cfg: cfg,
		rq:  NewRunQueue(cfg),
		log: log,
	}
}

// RunQueue exposes the kernel's run queue for direct inspection (tests,
// the procdump-style CLI) without widening the Kernel API surface.
func (k *Kernel) RunQueue() *RunQueue { return k.rq }

// NewCPU registers and returns a new per-CPU scheduling context.
func (k *Kernel) NewCPU(id int) *CPU {
	cpu := &CPU{ID: id}
	k.cpus = append(k.cpus, cpu)

	return cpu
}

// Admit inserts a task that has just become RUNNABLE for the first time
// (fork completing). The caller is responsible for having set
// task.State = StateRunnable beforehand.
func (k *Kernel) Admit(task *Task) bool {
	return k.rq.Insert(task)
}

// Wake transitions a SLEEPING task to RUNNABLE, applying the vruntime
// floor so it cannot monopolize the CPU on return.
func (k *Kernel) Wake(task *Task) bool {
	return k.rq.Wake(task)
}

// Kill sets the deferred-cancellation flag: the target observes it
// on its own next return to user mode. If the target is SLEEPING, it is
// forced RUNNABLE and reinserted so it runs far enough to notice.
func (k *Kernel) Kill(task *Task) {
	task.Killed.Store(true)

	if task.State == StateSleeping {
		k.rq.Wake(task)
	}
}

// OnTick delivers one timer tick to the currently RUNNING task.
func (k *Kernel) OnTick(task *Task) {
	k.rq.OnTick(task)
}

// Preempt reports whether cpu's currently running task should be
// displaced in favor of the run queue's minimum, per the preemption
// oracle. It does not itself displace anything — the caller's
// scheduling loop acts on the answer (by having execute return early).
func (k *Kernel) Preempt(cpu *CPU) bool {
	if cpu.Current == nil {
		return false
	}

	candidate := k.rq.peekMin()

	return ShouldPreempt(cpu.Current, candidate, k.cfg.MinGranularity)
}

// peekMin returns the run queue's cached minimum task without extracting
// it, or nil if empty. Used only by the preemption oracle, which must
// not mutate the tree to answer "should I preempt".
func (rq *RunQueue) peekMin() *Task {
	rq.mu.Lock()
	defer rq.mu.Unlock()

	if rq.t.min == nil {
		return nil
	}

	return rq.t.min.task
}

// Run drives one iteration of the per-CPU scheduling loop:
//
//	p <- extract_min()
//	if p is nil: idle
//	cpu.Current <- p; p.State <- RUNNING; p.CurrentRuntime <- 0
//	execute(cpu, p)   // the opaque swtch(&save, p.context)
//	cpu.Current <- nil
//	if still runnable: reinsert p
//
// It reports whether a task was found to run; false means the run queue
// was empty (or its cached minimum was momentarily not RUNNABLE) and the
// CPU should idle.
func (k *Kernel) Run(cpu *CPU, execute Execute) bool {
	task := k.rq.ExtractMin()
	if task == nil {
		return false
	}

	if task.State == StateRunning {
		panic("kernel: context switch attempted while task state is RUNNING")
	}

	cpu.Current = task
	task.State = StateRunning
	task.CurrentRuntime = 0

	k.log.WithFields(logrus.Fields{
		"cpu":      cpu.ID,
		"task":     task.Name,
		"nice":     task.Nice,
		"slice":    task.MaxExecTime,
		"vruntime": task.VRuntime,
	}).Debug("context switch in")

	stillRunnable := execute(cpu, task)

	cpu.Current = nil

	if stillRunnable {
		task.State = StateRunnable
		k.rq.Insert(task)

		k.log.WithFields(logrus.Fields{
			"cpu":  cpu.ID,
			"task": task.Name,
		}).Debug("reinserted after preemption/yield")
	} else {
		k.log.WithFields(logrus.Fields{
			"cpu":  cpu.ID,
			"task": task.Name,
		}).Info("task left the run queue (sleep or exit)")
	}

	return true
}
