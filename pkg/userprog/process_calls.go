package userprog

import (
	"fmt"

	"nachos/pkg/process"
	"nachos/pkg/process/ipc"
)

// MaxExecName is the longest program name Exec accepts.
const MaxExecName = 32

type haltCall struct{}

func (haltCall) Code() Code { return CodeHalt }

func (haltCall) handle(d *Dispatcher, t *Thread) (int32, error) {
	d.logger.Info("shutdown, initiated by user program", "pid", t.ID)
	d.halt()
	d.terminate(t)
	return 0, nil
}

type exitCall struct{ status int32 }

func (exitCall) Code() Code { return CodeExit }

func (c exitCall) handle(d *Dispatcher, t *Thread) (int32, error) {
	code, err := d.procs.ExitUpdate(d.ctx, t.ID, int(c.status))
	if err != nil {
		d.logger.Debug("exit did not complete the handshake", "pid", t.ID, "err", err)
	}
	d.terminate(t)
	return int32(code), nil
}

type execCall struct{ nameAddr int32 }

func (execCall) Code() Code { return CodeExec }

func (c execCall) handle(d *Dispatcher, t *Thread) (int32, error) {
	name, err := t.Machine.UserToKernel(int(c.nameAddr), MaxExecName+1)
	if err != nil {
		return -1, err
	}
	if len(name) > MaxExecName {
		return -1, fmt.Errorf("%w: longer than %d bytes", process.ErrInvalidName, MaxExecName)
	}
	if !d.programs.Exists(name) {
		return -1, fmt.Errorf("%w: %q", ErrNoProgram, name)
	}
	id, err := d.procs.ExecUpdate(t.ID, name)
	return int32(id), err
}

type joinCall struct{ id int32 }

func (joinCall) Code() Code { return CodeJoin }

func (c joinCall) handle(d *Dispatcher, t *Thread) (int32, error) {
	code, err := d.procs.JoinUpdate(d.ctx, t.ID, int(c.id))
	return int32(code), err
}

type createSemaphoreCall struct{ nameAddr, count int32 }

func (createSemaphoreCall) Code() Code { return CodeCreateSemaphore }

func (c createSemaphoreCall) handle(d *Dispatcher, t *Thread) (int32, error) {
	name, err := t.Machine.UserToKernel(int(c.nameAddr), ipc.MaxNameLength+1)
	if err != nil {
		return -1, err
	}
	if err := d.sems.Create(name, int(c.count)); err != nil {
		return -1, err
	}
	return 0, nil
}

type downCall struct{ nameAddr int32 }

func (downCall) Code() Code { return CodeDown }

func (c downCall) handle(d *Dispatcher, t *Thread) (int32, error) {
	name, err := t.Machine.UserToKernel(int(c.nameAddr), ipc.MaxNameLength+1)
	if err != nil {
		return -1, err
	}
	if err := d.sems.Down(d.ctx, name); err != nil {
		return -1, err
	}
	return 0, nil
}

type upCall struct{ nameAddr int32 }

func (upCall) Code() Code { return CodeUp }

func (c upCall) handle(d *Dispatcher, t *Thread) (int32, error) {
	name, err := t.Machine.UserToKernel(int(c.nameAddr), ipc.MaxNameLength+1)
	if err != nil {
		return -1, err
	}
	if err := d.sems.Up(name); err != nil {
		return -1, err
	}
	return 0, nil
}
