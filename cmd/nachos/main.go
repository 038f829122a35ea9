// nachos boots the teaching kernel and runs a root user program on the
// host console until it halts.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"nachos/pkg/kernel"
	"nachos/pkg/programs"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON configuration file")
	root := flag.String("x", "", "root program to execute")
	fsRoot := flag.String("fs", "", "host directory backing the file system (default in-memory)")
	level := flag.String("d", "", "log level (trace, debug, info, warn, error)")
	useTTY := flag.Bool("tty", false, "use the controlling terminal as console")
	list := flag.Bool("list", false, "list the bundled programs and exit")
	flag.Parse()

	if *list {
		for _, name := range programs.Default().Names() {
			fmt.Println(name)
		}
		return
	}

	cfg := kernel.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = kernel.LoadConfig(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("Invalid environment: %v", err)
	}

	// Flags win over the config file and the environment
	if *root != "" {
		cfg.RootProgram = *root
	}
	if *fsRoot != "" {
		cfg.FilesystemRoot = *fsRoot
	}
	if *level != "" {
		cfg.LogLevel = *level
	}
	if *useTTY {
		cfg.ConsoleTTY = true
	}

	k, err := kernel.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create kernel: %v", err)
	}
	defer k.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := k.Run(ctx); err != nil {
		log.Fatalf("Kernel error: %v", err)
	}

	// A process blocked on console input cannot be released; do not wait
	// for it forever.
	done := make(chan error, 1)
	go func() { done <- k.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			log.Printf("Process error: %v", err)
		}
	case <-time.After(2 * time.Second):
		log.Printf("Some processes did not stop after halt")
	}
}
