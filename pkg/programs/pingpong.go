package programs

import "nachos/pkg/userlib"

// Rounds is the number of characters ping and pong each print.
const Rounds = 10

// scheduler creates the ping and pong semaphores, starts both players and
// waits for them.
func scheduler(p *userlib.Proc) int {
	if p.CreateSemaphore("ping", 5) == -1 {
		return 1
	}
	if p.CreateSemaphore("pong", 0) == -1 {
		return 1
	}

	p.PrintString("Ping-Pong test starting...\n\n")
	pingID := p.Exec(Ping)
	pongID := p.Exec(Pong)
	p.Join(pingID)
	p.Join(pongID)
	p.PrintString("\n")
	return 0
}

func ping(p *userlib.Proc) int {
	for i := 0; i < Rounds; i++ {
		if p.Down("ping") == -1 {
			return 1
		}
		p.PrintChar('A')
		p.Up("pong")
	}
	return 0
}

func pong(p *userlib.Proc) int {
	for i := 0; i < Rounds; i++ {
		if p.Down("pong") == -1 {
			return 1
		}
		p.PrintChar('B')
		p.Up("ping")
	}
	return 0
}
