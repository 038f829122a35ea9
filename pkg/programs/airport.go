package programs

import (
	"strconv"
	"strings"

	"nachos/pkg/userlib"
)

// Files shared by the airport security programs.
const (
	airportInput     = "input.txt"
	airportOutput    = "output.txt"
	airportPassenger = "passenger.txt"
	airportScan      = "scan.txt"
	airportResult    = "result.txt"
)

// Semaphores shared by the airport security programs.
const (
	semMain      = "main"
	semPassenger = "passenger"
	semScan      = "scan"
	semResult    = "m_s"
)

// scanners is the number of security scanners.
const scanners = 3

// readAll reads id to end of file through the user buffer at buf.
func readAll(p *userlib.Proc, buf, id int) (string, bool) {
	var b strings.Builder
	for {
		n := p.Read(buf, bufferSize, id)
		if n == -1 {
			return "", false
		}
		if n <= 0 {
			break
		}
		data, err := p.Peek(buf, n)
		if err != nil {
			return "", false
		}
		b.Write(data)
	}
	return b.String(), true
}

// readFile opens name read-only and returns its contents.
func readFile(p *userlib.Proc, buf int, name string) (string, bool) {
	id := p.Open(name, userlib.OpenReadOnly)
	if id == -1 {
		return "", false
	}
	defer p.Close(id)
	return readAll(p, buf, id)
}

// writeFile replaces the contents of name with s.
func writeFile(p *userlib.Proc, name, s string) bool {
	if p.CreateFile(name) == -1 {
		return false
	}
	id := p.Open(name, userlib.OpenReadWrite)
	if id == -1 {
		return false
	}
	defer p.Close(id)
	return s == "" || p.WriteString(s, id) == len(s)
}

// scanPassenger reads the passenger lines of input.txt, hands each one to
// the passenger process and writes the scanner assigned to every piece of
// luggage to output.txt.
func scanPassenger(p *userlib.Proc) int {
	buf, err := p.Malloc(bufferSize)
	if err != nil {
		return 1
	}
	p.PrintString("Security scanning system starting...\n")

	for _, name := range []string{semMain, semPassenger, semScan, semResult} {
		if p.CreateSemaphore(name, 0) == -1 {
			p.PrintString("Can't create semaphore " + name + "\n")
			return 1
		}
	}

	if p.CreateFile(airportOutput) == -1 {
		p.PrintString("Can't create " + airportOutput + "\n")
		return 1
	}
	input, ok := readFile(p, buf, airportInput)
	if !ok {
		p.PrintString("Can't open " + airportInput + "\n")
		return 1
	}
	out := p.Open(airportOutput, userlib.OpenReadWrite)
	if out == -1 {
		p.PrintString("Can't open " + airportOutput + "\n")
		return 1
	}
	defer p.Close(out)

	lines := strings.Split(strings.ReplaceAll(input, "\r", ""), "\n")
	count, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil || count < 0 {
		p.PrintString("Expected passenger count on the first line\n")
		return 1
	}
	lines = lines[1:]
	if count > len(lines) {
		count = len(lines)
	}

	if p.Exec(Passenger) == -1 || p.Exec(Scan) == -1 {
		p.PrintString("Can't start the scanners\n")
		return 1
	}

	for _, line := range lines[:count] {
		luggage := strings.Fields(line)
		if len(luggage) == 0 {
			p.WriteString("\r\n", out)
			continue
		}

		if !writeFile(p, airportPassenger, strings.Join(luggage, " ")) {
			return 1
		}
		p.Up(semPassenger)
		if p.Down(semMain) == -1 {
			return 1
		}

		result, ok := readFile(p, buf, airportResult)
		if !ok {
			return 1
		}
		n := min(len(luggage), len(result))
		pairs := make([]string, n)
		for i := 0; i < n; i++ {
			pairs[i] = luggage[i] + " " + result[i:i+1]
		}
		p.WriteString(strings.Join(pairs, "\t\t")+"\r\n", out)
	}

	p.PrintString("Security scanning system finished\n")
	return 0
}

// passenger feeds the luggage of each passenger to the scanner one piece at
// a time. The last piece is marked with a '*'.
func passenger(p *userlib.Proc) int {
	buf, err := p.Malloc(bufferSize)
	if err != nil {
		return 1
	}
	for {
		if p.Down(semPassenger) == -1 {
			return 1
		}
		if p.CreateFile(airportResult) == -1 {
			return 1
		}
		p.Up(semResult)

		line, ok := readFile(p, buf, airportPassenger)
		if !ok {
			return 1
		}
		luggage := strings.Fields(line)
		for i, weight := range luggage {
			if i == len(luggage)-1 {
				weight += "*"
			}
			if !writeFile(p, airportScan, weight) {
				return 1
			}
			p.Up(semScan)
			if p.Down(semPassenger) == -1 {
				return 1
			}
		}
		p.Up(semMain)
	}
}

// scan sends each piece of luggage to the least loaded scanner and appends
// the scanner number to result.txt.
func scan(p *userlib.Proc) int {
	buf, err := p.Malloc(bufferSize)
	if err != nil {
		return 1
	}
	for {
		if p.Down(semResult) == -1 {
			return 1
		}
		result := p.Open(airportResult, userlib.OpenReadWrite)
		if result == -1 {
			return 1
		}

		var load [scanners]int
		for {
			if p.Down(semScan) == -1 {
				return 1
			}
			item, ok := readFile(p, buf, airportScan)
			if !ok {
				return 1
			}
			last := strings.HasSuffix(item, "*")
			weight, _ := strconv.Atoi(strings.TrimSuffix(item, "*"))

			if weight > 0 {
				best := 0
				for i := 1; i < scanners; i++ {
					if load[i] < load[best] {
						best = i
					}
				}
				load[best] += weight
				p.WriteString(strconv.Itoa(best+1), result)
			}

			if last {
				p.Close(result)
				p.Up(semPassenger)
				break
			}
			p.Up(semPassenger)
		}
	}
}
