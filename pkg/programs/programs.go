// Package programs holds the user programs shipped with the kernel.
package programs

import (
	"nachos/pkg/userlib"
)

// Program names.
const (
	Scheduler  = "scheduler"
	Ping       = "ping"
	Pong       = "pong"
	Help       = "help"
	ASCII      = "ascii"
	Sort       = "sort"
	Echo       = "echo"
	Cat        = "cat"
	Copy       = "copy"
	CreateFile = "createfile"

	ScanPassenger = "scan_passenger"
	Passenger     = "passenger"
	Scan          = "scan"
)

// Register adds every bundled program to l.
func Register(l *userlib.Loader) error {
	progs := map[string]userlib.Program{
		Scheduler:  scheduler,
		Ping:       ping,
		Pong:       pong,
		Help:       help,
		ASCII:      ascii,
		Sort:       quicksort,
		Echo:       echo,
		Cat:        cat,
		Copy:       copyFile,
		CreateFile: createFile,

		ScanPassenger: scanPassenger,
		Passenger:     passenger,
		Scan:          scan,
	}
	for name, prog := range progs {
		if err := l.Register(name, prog); err != nil {
			return err
		}
	}
	return nil
}

// Default returns a loader holding every bundled program.
func Default() *userlib.Loader {
	l := userlib.NewLoader()
	// Names are distinct constants; Register cannot fail on a fresh loader.
	_ = Register(l)
	return l
}

// readLine prompts and reads a console line of at most size-1 bytes.
func readLine(p *userlib.Proc, prompt string, buf, size int) string {
	if prompt != "" {
		p.PrintString(prompt)
	}
	if p.ReadString(buf, size) < 0 {
		return ""
	}
	return p.PeekString(buf, size)
}
