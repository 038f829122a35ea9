package userprog

import (
	"errors"
	"io"
	"strings"

	"nachos/pkg/vfs"
)

// EOFResult is the result of Read at end of file.
const EOFResult = -2

type createFileCall struct{ nameAddr int32 }

func (createFileCall) Code() Code { return CodeCreateFile }

func (c createFileCall) handle(d *Dispatcher, t *Thread) (int32, error) {
	name, err := t.Machine.UserToKernel(int(c.nameAddr), vfs.MaxNameLength+1)
	if err != nil {
		return -1, err
	}
	if err := d.files.Create(name); err != nil {
		return -1, err
	}
	return 0, nil
}

type openCall struct{ nameAddr, mode int32 }

func (openCall) Code() Code { return CodeOpen }

func (c openCall) handle(d *Dispatcher, t *Thread) (int32, error) {
	mode := vfs.Mode(c.mode)
	if !mode.IsValid() {
		return -1, vfs.ErrInvalidMode
	}

	var name string
	if !mode.IsConsole() {
		var err error
		name, err = t.Machine.UserToKernel(int(c.nameAddr), vfs.MaxNameLength+1)
		if err != nil {
			return -1, err
		}
	}

	id, err := d.files.Open(name, mode)
	return int32(id), err
}

type closeCall struct{ id int32 }

func (closeCall) Code() Code { return CodeClose }

func (c closeCall) handle(d *Dispatcher, t *Thread) (int32, error) {
	if err := d.files.Close(int(c.id)); err != nil {
		return -1, err
	}
	return 0, nil
}

type readCall struct{ addr, size, id int32 }

func (readCall) Code() Code { return CodeRead }

func (c readCall) handle(d *Dispatcher, t *Thread) (int32, error) {
	if c.size < 0 {
		return -1, ErrInvalidArgument
	}
	f, err := d.files.Get(int(c.id))
	if err != nil {
		return -1, err
	}

	if f.Mode() == vfs.ModeConsoleOutput {
		return -1, ErrWrongDirection
	}
	// The destination must fit before anything is consumed.
	if err := t.Machine.CheckRange(int(c.addr), int(c.size)); err != nil {
		return -1, err
	}

	var data []byte
	switch f.Mode() {
	case vfs.ModeConsoleInput:
		line, err := d.readLine()
		if err != nil {
			return -1, err
		}
		if len(line) > int(c.size) {
			line = line[:c.size]
		}
		data = []byte(line)
	default:
		data, err = f.Read(int(c.size))
		if errors.Is(err, io.EOF) {
			return EOFResult, nil
		}
		if err != nil {
			return -1, err
		}
	}

	if _, err := t.Machine.KernelToUser(int(c.addr), data); err != nil {
		return -1, err
	}
	return int32(len(data)), nil
}

type writeCall struct{ addr, size, id int32 }

func (writeCall) Code() Code { return CodeWrite }

func (c writeCall) handle(d *Dispatcher, t *Thread) (int32, error) {
	if c.size < 0 {
		return -1, ErrInvalidArgument
	}
	f, err := d.files.Get(int(c.id))
	if err != nil {
		return -1, err
	}

	switch f.Mode() {
	case vfs.ModeConsoleInput, vfs.ModeReadOnly:
		return -1, ErrWrongDirection
	}

	var s string
	if c.size > 0 {
		s, err = t.Machine.UserToKernel(int(c.addr), int(c.size))
		if err != nil {
			return -1, err
		}
	}

	if f.Mode() == vfs.ModeConsoleOutput {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[:i]
		}
		if _, err := d.console.WriteString(s + "\n"); err != nil {
			return -1, err
		}
		return int32(len(s)), nil
	}

	n, err := f.Write([]byte(s))
	if err != nil {
		return -1, err
	}
	return int32(n), nil
}

type seekCall struct{ pos, id int32 }

func (seekCall) Code() Code { return CodeSeek }

func (c seekCall) handle(d *Dispatcher, t *Thread) (int32, error) {
	if c.id == vfs.ConsoleInput || c.id == vfs.ConsoleOutput {
		return -1, ErrWrongDirection
	}
	f, err := d.files.Get(int(c.id))
	if err != nil {
		return -1, err
	}
	pos, err := f.Seek(int64(c.pos))
	if err != nil {
		return -1, err
	}
	return int32(pos), nil
}
