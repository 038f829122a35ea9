package programs

import (
	"strconv"
	"strings"

	"nachos/pkg/userlib"
)

const bufferSize = 1024

// help prints the contents of mota.txt.
func help(p *userlib.Proc) int {
	id := p.Open("mota.txt", userlib.OpenReadOnly)
	if id == -1 {
		p.PrintString("Can't open file\n")
		return 1
	}
	defer p.Close(id)

	buf, err := p.Malloc(bufferSize)
	if err != nil {
		return 1
	}
	n := p.Read(buf, bufferSize-1, id)
	if n > 0 {
		p.Poke(buf+n, []byte{0})
		p.PrintString(p.PeekString(buf, bufferSize))
	}
	p.PrintString("File read successfully\n")
	return 0
}

// asciiTable renders the ASCII code table as CSV.
func asciiTable() string {
	control := []string{
		"NULL", "SOH", "STX", "ETX", "EOT", "ENQ", "ACK", "BEL",
		"BS", "HT", "LF", "VT", "FF", "CR", "SO", "SI",
		"DLE", "DC1", "DC2", "DC3", "DC4", "NAK", "SYN", "ETB",
		"CAN", "EM", "SUB", "ESC", "FS", "GS", "RS", "US",
	}

	var b strings.Builder
	b.WriteString("Decimal,Char\n")
	for c := 0; c < 128; c++ {
		b.WriteString(strconv.Itoa(c))
		b.WriteByte(',')
		switch {
		case c < len(control):
			b.WriteString(control[c])
		case c == ' ':
			b.WriteString("SPACE")
		case c == 127:
			b.WriteString("DEL")
		default:
			b.WriteByte(byte(c))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ascii writes the ASCII table to ascii.csv and echoes it.
func ascii(p *userlib.Proc) int {
	p.PrintString("*====================================================*\n")
	p.PrintString("|   Welcome to the ASCII Table program in Nachos!    |\n")
	p.PrintString("*====================================================*\n\n")

	table := asciiTable()
	p.CreateFile("ascii.csv")
	id := p.Open("ascii.csv", userlib.OpenReadWrite)
	if id == -1 {
		p.PrintString("Can't open file\n")
		return 1
	}
	defer p.Close(id)

	addr, err := p.Malloc(len(table) + 1)
	if err != nil {
		return 1
	}
	p.Poke(addr, append([]byte(table), 0))
	p.PrintString(table)

	if p.Write(addr, len(table), id) == -1 {
		p.PrintString("!!!ERROR: File is not found or id is out of range or the file is not opened in write mode\n")
		return 1
	}
	p.PrintString("\nWrite content to file ascii.csv successfully\n")
	return 0
}

// cat prints a file chosen on the console.
func cat(p *userlib.Proc) int {
	buf, err := p.Malloc(bufferSize)
	if err != nil {
		return 1
	}

	name := readLine(p, "Enter file name: ", buf, 64)
	id := p.Open(name, userlib.OpenReadOnly)
	if id == -1 {
		p.PrintString("Can't open file\n")
		return 1
	}
	defer p.Close(id)

	for {
		n := p.Read(buf, bufferSize-1, id)
		if n <= 0 {
			break
		}
		p.Poke(buf+n, []byte{0})
		p.PrintString(p.PeekString(buf, bufferSize))
	}
	p.PrintString("\n")
	return 0
}

// copyFile copies one file into another, both chosen on the console.
func copyFile(p *userlib.Proc) int {
	buf, err := p.Malloc(bufferSize)
	if err != nil {
		return 1
	}

	src := readLine(p, "Enter source file: ", buf, 64)
	dst := readLine(p, "Enter destination file: ", buf, 64)

	in := p.Open(src, userlib.OpenReadOnly)
	if in == -1 {
		p.PrintString("Can't open source file\n")
		return 1
	}
	defer p.Close(in)

	if p.CreateFile(dst) == -1 {
		p.PrintString("Can't create destination file\n")
		return 1
	}
	out := p.Open(dst, userlib.OpenReadWrite)
	if out == -1 {
		p.PrintString("Can't open destination file\n")
		return 1
	}
	defer p.Close(out)

	total := 0
	for {
		n := p.Read(buf, bufferSize, in)
		if n <= 0 {
			break
		}
		data, _ := p.Peek(buf, n)
		// Write stops at NUL, so copy byte runs between NULs one write at a time.
		for len(data) > 0 {
			if data[0] == 0 {
				data = data[1:]
				continue
			}
			run := len(data)
			for i, c := range data {
				if c == 0 {
					run = i
					break
				}
			}
			p.Poke(buf, data[:run])
			total += p.Write(buf, run, out)
			data = data[run:]
		}
	}

	p.PrintString("Copied " + strconv.Itoa(total) + " bytes\n")
	return 0
}

// createFile creates an empty file named on the console.
func createFile(p *userlib.Proc) int {
	buf, err := p.Malloc(64)
	if err != nil {
		return 1
	}

	name := readLine(p, "Enter file name: ", buf, 64)
	if p.CreateFile(name) == -1 {
		p.PrintString("Can't create file " + name + "\n")
		return 1
	}
	p.PrintString("Created file " + name + "\n")
	return 0
}

// echo reads a line and prints it back.
func echo(p *userlib.Proc) int {
	buf, err := p.Malloc(256)
	if err != nil {
		return 1
	}
	line := readLine(p, "Enter a string: ", buf, 256)
	p.PrintString(line + "\n")
	return 0
}
