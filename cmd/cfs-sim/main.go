// Command cfs-sim drives a small in-memory scheduling session against the
// internal/kernel package and prints a procdump-style table of the
// outcome. It exists purely as a debug/demo harness; it has no bearing on
// the scheduler core's own semantics.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fakharzadehAmir/XV6-CFS-Scheduler/internal/cpuinfo"
	"github.com/fakharzadehAmir/XV6-CFS-Scheduler/internal/kernel"
)

type taskSpec struct {
	name string
	nice int
}

type runOpts struct {
	tasks          string
	ticks          int
	nproc          int
	latency        uint64
	minGranularity uint64
	verbose        bool
}

func main() {
	var o runOpts

	root := &cobra.Command{
		Use:   "cfs-sim",
		Short: "Simulate a CFS-style run queue and print the resulting schedule",
		Long: `cfs-sim admits a set of simulated tasks into a single-CPU run queue,
drives the scheduling loop for a fixed number of ticks, and prints a
procdump-style table of each task's final vruntime, weight, and state.

It is a debug harness around internal/kernel, not a production scheduler.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o)
		},
	}

	root.Flags().StringVarP(&o.tasks, "tasks", "t", "A:0,B:0,C:5",
		"comma-separated name:nice pairs to admit, e.g. A:0,B:5,C:10")
	root.Flags().IntVar(&o.ticks, "ticks", 200, "number of scheduling ticks to simulate")
	root.Flags().IntVar(&o.nproc, "nproc", 64, "run queue capacity (NPROC)")
	root.Flags().Uint64Var(&o.latency, "latency", 32, "target epoch length in ticks")
	root.Flags().Uint64Var(&o.minGranularity, "min-granularity", 2,
		"minimum ticks a task runs before it may be preempted")
	root.Flags().BoolVarP(&o.verbose, "verbose", "v", false, "log every context switch at debug level")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(o runOpts) error {
	specs, err := parseTasks(o.tasks)
	if err != nil {
		return fmt.Errorf("cfs-sim: %w", err)
	}

	log := kernel.NewLogger()
	if o.verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}

	announceHardware(log)

	cfg := kernel.Config{
		NPROC:          o.nproc,
		Latency:        o.latency,
		MinGranularity: o.minGranularity,
	}

	k := kernel.NewKernel(cfg, log)
	cpu := k.NewCPU(0)

	tasks := make([]*kernel.Task, 0, len(specs))

	for _, s := range specs {
		tsk := kernel.NewTask(s.name, s.nice)
		tsk.State = kernel.StateRunnable

		if !k.Admit(tsk) {
			log.Warnf("run queue full, refusing to admit %q", s.name)
			continue
		}

		tasks = append(tasks, tsk)
	}

	log.Infof("admitted %d task(s), simulating %d tick(s)", len(tasks), o.ticks)

	start := time.Now()
	simulate(k, cpu, o.ticks)
	log.Infof("simulation finished in %v", time.Since(start))

	procdump(tasks)

	return nil
}

// simulate drives the per-CPU loop until the requested number of ticks has
// been delivered, or the run queue idles. Each dispatched task is ticked
// one scheduling quantum at a time; it yields back to the loop as soon as
// either its own slice is exhausted or the preemption oracle favors the
// run queue's current minimum, mirroring the two conditions of
// ShouldPreempt.
func simulate(k *kernel.Kernel, cpu *kernel.CPU, ticks int) {
	delivered := 0

	for delivered < ticks {
		ran := k.Run(cpu, func(cpu *kernel.CPU, task *kernel.Task) bool {
			for delivered < ticks {
				k.OnTick(task)
				delivered++

				if task.CurrentRuntime >= task.MaxExecTime {
					return true
				}

				if k.Preempt(cpu) {
					return true
				}
			}

			return true
		})

		if !ran {
			break
		}
	}
}

func procdump(tasks []*kernel.Task) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "NAME\tNICE\tWEIGHT\tVRUNTIME\tSTATE")
	fmt.Fprintln(tw, "----\t----\t------\t--------\t-----")

	for _, tsk := range tasks {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", tsk.Name, tsk.Nice, tsk.Weight, tsk.VRuntime, tsk.State)
	}

	tw.Flush()
}

func announceHardware(log *logrus.Logger) {
	features := cpuinfo.Detect()

	log.WithFields(logrus.Fields{
		"avx2":        features.AVX2,
		"aes":         features.AES,
		"rdrand":      features.RDRAND,
		"cacheline_b": cpuinfo.CacheLineSize(),
	}).Info("host capabilities detected")
}

func parseTasks(spec string) ([]taskSpec, error) {
	fields := strings.Split(spec, ",")
	specs := make([]taskSpec, 0, len(fields))

	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}

		parts := strings.SplitN(f, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed task spec %q, want name:nice", f)
		}

		nice, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("malformed nice value in %q: %w", f, err)
		}

		specs = append(specs, taskSpec{name: strings.TrimSpace(parts[0]), nice: nice})
	}

	if len(specs) == 0 {
		return nil, fmt.Errorf("no tasks specified")
	}

	return specs, nil
}
