package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fakharzadehAmir/XV6-CFS-Scheduler/internal/kernel"
)

func TestParseTasks(t *testing.T) {
	specs, err := parseTasks("A:0, B:5 ,C:10")
	require.NoError(t, err)
	require.Equal(t, []taskSpec{
		{name: "A", nice: 0},
		{name: "B", nice: 5},
		{name: "C", nice: 10},
	}, specs)
}

func TestParseTasksRejectsMalformedEntries(t *testing.T) {
	_, err := parseTasks("A")
	require.Error(t, err)

	_, err = parseTasks("A:not-a-number")
	require.Error(t, err)

	_, err = parseTasks("")
	require.Error(t, err)
}

func TestSimulateDrainsTicksAcrossMultipleTasks(t *testing.T) {
	cfg := kernel.DefaultConfig()
	k := kernel.NewKernel(cfg, nil)
	cpu := k.NewCPU(0)

	a := kernel.NewTask("A", 0)
	a.State = kernel.StateRunnable
	require.True(t, k.Admit(a))

	b := kernel.NewTask("B", 10)
	b.State = kernel.StateRunnable
	require.True(t, k.Admit(b))

	simulate(k, cpu, 500)

	require.Greater(t, a.VRuntime, uint64(0), "A should have accumulated runtime")
	require.Greater(t, b.VRuntime, uint64(0), "B should have accumulated runtime")
	require.True(t, a.State == kernel.StateRunnable || a.State == kernel.StateRunning)
}
