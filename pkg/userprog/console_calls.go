package userprog

import (
	"errors"
	"io"
	"math"
	"strconv"

	"nachos/pkg/console"
)

// MaxPrintString bounds the string copied in by PrintString.
const MaxPrintString = 1024

// readLine reads one console line. End of input reads as an empty line.
func (d *Dispatcher) readLine() (string, error) {
	line, err := d.console.ReadLine()
	if errors.Is(err, io.EOF) {
		return line, nil
	}
	return line, err
}

// reportNumber prints the diagnostic of a failed number conversion.
func (d *Dispatcher) reportNumber(err error) {
	var ne *console.NumberError
	if errors.As(err, &ne) {
		d.console.WriteString(ne.Message() + "\n")
	}
}

type readIntCall struct{}

func (readIntCall) Code() Code { return CodeReadInt }

func (readIntCall) handle(d *Dispatcher, t *Thread) (int32, error) {
	line, err := d.readLine()
	if err != nil {
		return 0, err
	}
	n, err := console.ParseInt(line)
	if err != nil {
		d.reportNumber(err)
		return 0, err
	}
	return n, nil
}

type printIntCall struct{ n int32 }

func (printIntCall) Code() Code { return CodePrintInt }

func (c printIntCall) handle(d *Dispatcher, t *Thread) (int32, error) {
	_, err := d.console.WriteString(strconv.FormatInt(int64(c.n), 10))
	return 0, err
}

type readFloatCall struct{}

func (readFloatCall) Code() Code { return CodeReadFloat }

func (readFloatCall) handle(d *Dispatcher, t *Thread) (int32, error) {
	line, err := d.readLine()
	if err != nil {
		return 0, err
	}
	f, err := console.ParseFloat(line)
	if err != nil {
		d.reportNumber(err)
		return 0, err
	}
	return int32(math.Float32bits(f)), nil
}

type printFloatCall struct{ bits int32 }

func (printFloatCall) Code() Code { return CodePrintFloat }

func (c printFloatCall) handle(d *Dispatcher, t *Thread) (int32, error) {
	f := math.Float32frombits(uint32(c.bits))
	_, err := d.console.WriteString(console.FormatFloat(f))
	return 0, err
}

type compareFloatCall struct{ a, b int32 }

func (compareFloatCall) Code() Code { return CodeCompareFloat }

func (c compareFloatCall) handle(d *Dispatcher, t *Thread) (int32, error) {
	a := math.Float32frombits(uint32(c.a))
	b := math.Float32frombits(uint32(c.b))
	return int32(console.CompareFloat(a, b)), nil
}

type floatToStringCall struct{ bits, addr int32 }

func (floatToStringCall) Code() Code { return CodeFloatToString }

func (c floatToStringCall) handle(d *Dispatcher, t *Thread) (int32, error) {
	text := console.FloatText(math.Float32frombits(uint32(c.bits)))
	if _, err := t.Machine.KernelToUser(int(c.addr), append([]byte(text), 0)); err != nil {
		return -1, err
	}
	return int32(len(text)), nil
}

type readCharCall struct{}

func (readCharCall) Code() Code { return CodeReadChar }

func (readCharCall) handle(d *Dispatcher, t *Thread) (int32, error) {
	line, err := d.readLine()
	if err != nil {
		return 0, err
	}
	switch {
	case len(line) == 1:
		return int32(line[0]), nil
	case len(line) > 1:
		d.console.WriteString("ERROR: You can only enter 1 character!\n")
	default:
		d.console.WriteString("ERROR: Empty character!\n")
	}
	return 0, ErrInvalidArgument
}

type printCharCall struct{ c int32 }

func (printCharCall) Code() Code { return CodePrintChar }

func (c printCharCall) handle(d *Dispatcher, t *Thread) (int32, error) {
	if b := byte(c.c); b != 0 {
		if _, err := d.console.Write([]byte{b}); err != nil {
			return 0, err
		}
	}
	return 0, nil
}

type readStringCall struct{ addr, size int32 }

func (readStringCall) Code() Code { return CodeReadString }

func (c readStringCall) handle(d *Dispatcher, t *Thread) (int32, error) {
	if c.size <= 0 {
		return -1, ErrInvalidArgument
	}
	line, err := d.readLine()
	if err != nil {
		return -1, err
	}
	if len(line) > int(c.size)-1 {
		line = line[:c.size-1]
	}
	if _, err := t.Machine.KernelToUser(int(c.addr), append([]byte(line), 0)); err != nil {
		return -1, err
	}
	return int32(len(line)), nil
}

type printStringCall struct{ addr int32 }

func (printStringCall) Code() Code { return CodePrintString }

func (c printStringCall) handle(d *Dispatcher, t *Thread) (int32, error) {
	s, err := t.Machine.UserToKernel(int(c.addr), MaxPrintString)
	if err != nil {
		return -1, err
	}
	if _, err := d.console.WriteString(s); err != nil {
		return -1, err
	}
	return int32(len(s)), nil
}
