// Package console provides the synchronized line console shared by all user
// processes, and the text conversions the console syscalls perform.
package console

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/mattn/go-tty"
)

// ErrClosed is returned by operations on a closed console.
var ErrClosed = errors.New("console: closed")

// Console serializes line reads and writes from concurrent processes.
type Console struct {
	rmu      sync.Mutex
	wmu      sync.Mutex
	readLine func() (string, error)
	out      io.Writer
	closer   io.Closer
	closed   atomic.Bool
}

// New creates a console reading lines from r and writing to w.
func New(r io.Reader, w io.Writer) *Console {
	br := bufio.NewReader(r)
	return &Console{
		readLine: func() (string, error) {
			line, err := br.ReadString('\n')
			if err == io.EOF && line != "" {
				err = nil
			}
			return strings.TrimRight(line, "\r\n"), err
		},
		out: w,
	}
}

// OpenTTY creates a console on the controlling terminal. Input is echoed
// as it is typed.
func OpenTTY() (*Console, error) {
	t, err := tty.Open()
	if err != nil {
		return nil, err
	}
	return &Console{
		readLine: t.ReadString,
		out:      t.Output(),
		closer:   t,
	}, nil
}

// ReadLine reads one line without its terminator. At end of input it
// returns an empty line and io.EOF.
func (c *Console) ReadLine() (string, error) {
	c.rmu.Lock()
	defer c.rmu.Unlock()

	if c.closed.Load() {
		return "", ErrClosed
	}
	return c.readLine()
}

// Write writes p as one unit.
func (c *Console) Write(p []byte) (int, error) {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	if c.closed.Load() {
		return 0, ErrClosed
	}
	return c.out.Write(p)
}

// WriteString writes s as one unit.
func (c *Console) WriteString(s string) (int, error) {
	return c.Write([]byte(s))
}

// Close releases the underlying terminal, if any.
func (c *Console) Close() error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	if c.closed.Swap(true) {
		return nil
	}
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}
