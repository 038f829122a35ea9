/*
Package process provides the bounded process table of the kernel.

The table holds a fixed number of process slots allocated through a bitmap.
Slot 0 is seeded at construction with the root (scheduler) process, which has
no parent. Every other slot is created by Exec and goes through the same
protocol:

  - Exec: a free slot is allocated, a PCB is constructed with the caller as
    parent, and the process execution context is started.
  - Join: the parent blocks until the child publishes its exit code, reads
    it, and acknowledges it.
  - Exit: the child records its exit code, wakes the parent, and blocks until
    the acknowledgement arrives. Only then is its slot released.

# Slot States

A slot moves through the following states:

  - Free: no process in the slot
  - Allocated: a live process
  - ExitedPendingJoin: exit code published, waiting for the parent
  - Reclaimed: slot released and PCB discarded

A child that is never joined stays in ExitedPendingJoin until the kernel
halts.

# Usage

	table, err := process.NewTable(process.MaxProcess, "scheduler",
		process.WithLauncher(start),
		process.WithHalter(halt),
	)
	if err != nil {
		// Handle error
	}

	pid, err := table.ExecUpdate(process.RootID, "ping")
	if err != nil {
		// Handle error
	}

	code, err := table.JoinUpdate(ctx, process.RootID, pid)
*/
package process
