package kernel

import "testing"

func TestKernel_RunIdlesOnEmptyQueue(t *testing.T) {
	k := NewKernel(DefaultConfig(), nil)
	cpu := k.NewCPU(0)

	ran := k.Run(cpu, func(cpu *CPU, task *Task) bool {
		t.Fatalf("execute should never be invoked with nothing runnable")
		return false
	})

	if ran {
		t.Fatalf("Run on an empty queue should report false")
	}
}

func TestKernel_RunExecutesAndReinsertsOnYield(t *testing.T) {
	k := NewKernel(DefaultConfig(), nil)
	cpu := k.NewCPU(0)

	tsk := NewTask("A", 0)
	tsk.State = StateRunnable
	k.Admit(tsk)

	executed := false
	ran := k.Run(cpu, func(cpu *CPU, task *Task) bool {
		executed = true

		if task != tsk {
			t.Fatalf("execute got the wrong task")
		}

		if task.State != StateRunning {
			t.Fatalf("task.State during execute = %v, want StateRunning", task.State)
		}

		if cpu.Current != task {
			t.Fatalf("cpu.Current not set to the running task during execute")
		}

		return true // yields, still runnable
	})

	if !ran || !executed {
		t.Fatalf("Run should have found and executed the admitted task")
	}

	if cpu.Current != nil {
		t.Fatalf("cpu.Current should be cleared once execute returns")
	}

	if tsk.State != StateRunnable {
		t.Fatalf("a yielding task must be left RUNNABLE")
	}

	if k.RunQueue().Size() != 1 {
		t.Fatalf("a yielding task must be reinserted into the run queue")
	}
}

func TestKernel_RunDoesNotReinsertOnSleepOrExit(t *testing.T) {
	k := NewKernel(DefaultConfig(), nil)
	cpu := k.NewCPU(0)

	tsk := NewTask("A", 0)
	tsk.State = StateRunnable
	k.Admit(tsk)

	k.Run(cpu, func(cpu *CPU, task *Task) bool {
		task.State = StateSleeping
		return false
	})

	if k.RunQueue().Size() != 0 {
		t.Fatalf("a task that slept or exited must not be reinserted")
	}
}

func TestKernel_RunIdlesWhenCachedMinimumIsAlreadyRunning(t *testing.T) {
	k := NewKernel(DefaultConfig(), nil)
	cpu := k.NewCPU(0)

	tsk := NewTask("A", 0)
	tsk.State = StateRunnable
	k.Admit(tsk)

	// Corrupt the state out from under the run queue: ExtractMin refuses a
	// cached minimum that is not RUNNABLE, so Run must idle rather than
	// switch to it.
	tsk.State = StateRunning

	ran := k.Run(cpu, func(cpu *CPU, task *Task) bool {
		t.Fatalf("execute should never be invoked for a non-RUNNABLE minimum")
		return false
	})

	if ran {
		t.Fatalf("Run should report false when the cached minimum is already RUNNING")
	}

	if k.RunQueue().Size() != 1 {
		t.Fatalf("the non-RUNNABLE minimum must stay linked, size = %d, want 1", k.RunQueue().Size())
	}
}

func TestKernel_WakeAppliesVRuntimeFloorThroughTheKernel(t *testing.T) {
	k := NewKernel(DefaultConfig(), nil)

	a := NewTask("A", 0)
	a.State = StateRunnable
	a.VRuntime = 42
	k.Admit(a)

	b := NewTask("B", 0)
	b.State = StateSleeping

	if !k.Wake(b) {
		t.Fatalf("Wake should admit a sleeping task")
	}

	if b.VRuntime != 42 {
		t.Fatalf("B.VRuntime = %d, want 42 (floored to the run queue's minimum)", b.VRuntime)
	}
}

func TestKernel_KillForcesASleepingTaskRunnable(t *testing.T) {
	k := NewKernel(DefaultConfig(), nil)

	tsk := NewTask("A", 0)
	tsk.State = StateSleeping

	k.Kill(tsk)

	if !tsk.Killed.Load() {
		t.Fatalf("Kill must set the killed flag")
	}

	if tsk.State != StateRunnable {
		t.Fatalf("Kill must force a SLEEPING task back to RUNNABLE so it observes the flag")
	}

	if k.RunQueue().Size() != 1 {
		t.Fatalf("Kill must reinsert the forced-runnable task")
	}
}

func TestKernel_KillOnARunningTaskOnlySetsTheFlag(t *testing.T) {
	k := NewKernel(DefaultConfig(), nil)

	tsk := NewTask("A", 0)
	tsk.State = StateRunning

	k.Kill(tsk)

	if !tsk.Killed.Load() {
		t.Fatalf("Kill must set the killed flag regardless of state")
	}

	if tsk.State != StateRunning {
		t.Fatalf("Kill must not disturb a RUNNING task's state")
	}
}

func TestKernel_PreemptIdleCPUNeverPreempts(t *testing.T) {
	k := NewKernel(DefaultConfig(), nil)
	cpu := k.NewCPU(0)

	if k.Preempt(cpu) {
		t.Fatalf("an idle CPU (nil Current) has nothing to preempt")
	}
}

func TestKernel_PreemptConsultsTheRunQueueWithoutExtracting(t *testing.T) {
	k := NewKernel(DefaultConfig(), nil)
	cpu := k.NewCPU(0)

	cpu.Current = NewTask("running", 0)
	cpu.Current.VRuntime = 100
	cpu.Current.CurrentRuntime = 10
	cpu.Current.MaxExecTime = 32

	waiting := NewTask("waiting", 0)
	waiting.State = StateRunnable
	waiting.VRuntime = 1
	k.Admit(waiting)

	if !k.Preempt(cpu) {
		t.Fatalf("a strictly better waiting task past the granularity floor should trigger preemption")
	}

	if k.RunQueue().Size() != 1 {
		t.Fatalf("Preempt must only peek, never extract")
	}
}
