package kernel

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/hashicorp/go-hclog"

	"nachos/pkg/machine"
	"nachos/pkg/process"
	"nachos/pkg/process/ipc"
	"nachos/pkg/vfs"
)

// Configuration errors.
var (
	ErrInvalidConfig = errors.New("invalid kernel configuration")
)

// Environment variables read by ApplyEnv.
const (
	EnvLogLevel    = "NACHOS_LOG_LEVEL"
	EnvRootProgram = "NACHOS_ROOT_PROGRAM"
	EnvFSRoot      = "NACHOS_FS_ROOT"
	EnvMaxProcess  = "NACHOS_MAX_PROCESS"
)

// Config holds kernel configuration.
type Config struct {
	MaxProcess   int    `json:"max_process"`
	MaxSemaphore int    `json:"max_semaphore"`
	MaxOpenFiles int    `json:"max_open_files"`
	MemorySize   int    `json:"memory_size"`
	RootProgram  string `json:"root_program"`
	// FilesystemRoot is the host directory backing the file system. Empty
	// selects an in-memory file system.
	FilesystemRoot string `json:"filesystem_root"`
	LogLevel       string `json:"log_level"`
	ConsoleTTY     bool   `json:"console_tty"`
}

// DefaultConfig returns the default kernel configuration.
func DefaultConfig() Config {
	return Config{
		MaxProcess:   process.MaxProcess,
		MaxSemaphore: ipc.MaxSemaphore,
		MaxOpenFiles: vfs.MaxOpenFiles,
		MemorySize:   machine.DefaultMemorySize,
		RootProgram:  "scheduler",
		LogLevel:     "info",
	}
}

// LoadConfig reads a JSON configuration file. Fields missing from the file
// keep their default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvRootProgram); v != "" {
		c.RootProgram = v
	}
	if v := os.Getenv(EnvFSRoot); v != "" {
		c.FilesystemRoot = v
	}
	if v := os.Getenv(EnvMaxProcess); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxProcess, err)
		}
		c.MaxProcess = n
	}
	return nil
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch {
	case c.MaxProcess < 1:
		return fmt.Errorf("%w: max_process must be positive", ErrInvalidConfig)
	case c.MaxSemaphore < 1:
		return fmt.Errorf("%w: max_semaphore must be positive", ErrInvalidConfig)
	case c.MaxOpenFiles < 2:
		return fmt.Errorf("%w: max_open_files must hold the console slots", ErrInvalidConfig)
	case c.MemorySize < 2*4096:
		return fmt.Errorf("%w: memory_size too small", ErrInvalidConfig)
	case c.RootProgram == "":
		return fmt.Errorf("%w: root_program is empty", ErrInvalidConfig)
	}
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}
