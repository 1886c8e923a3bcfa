package tempo

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"
)

// Config carries the tunables shared by the runners and ParForEach. Zero
// values fall back to the defaults, so a partial config file is fine.
type Config struct {
	// Workers is the goroutine count used for data-parallel iteration.
	// Defaults to GOMAXPROCS.
	Workers int `toml:"workers"`

	// TimeBudget is the soft per-tick budget. Once exceeded, no further
	// systems are started that tick; in-flight systems always finish.
	// Zero means unlimited.
	TimeBudget time.Duration `toml:"time_budget"`

	// ShutdownBudget bounds how long GracefulShutdown drains background
	// tasks before giving up.
	ShutdownBudget time.Duration `toml:"shutdown_budget"`

	// EventPollInterval is how long the parallel runner blocks on its event
	// channel before ticking the compute pool and re-checking.
	EventPollInterval time.Duration `toml:"event_poll_interval"`

	// ParallelThreshold is the index count below which ParForEach iterates
	// sequentially to avoid goroutine overhead.
	ParallelThreshold int `toml:"parallel_threshold"`

	// MinBatchSize floors the ParForEach chunk size.
	MinBatchSize int `toml:"min_batch_size"`
}

// DefaultConfig returns the built-in tuning.
func DefaultConfig() *Config {
	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	return &Config{
		Workers:           workers,
		TimeBudget:        0,
		ShutdownBudget:    5 * time.Second,
		EventPollInterval: time.Millisecond,
		ParallelThreshold: 256,
		MinBatchSize:      64,
	}
}

// LoadConfig reads a TOML config file over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg.normalized(), nil
}

// normalized fills zero fields with defaults and returns the receiver for
// chaining. Runners call this on whatever config they were handed.
func (c *Config) normalized() *Config {
	if c == nil {
		return DefaultConfig()
	}
	def := DefaultConfig()
	out := *c
	if out.Workers <= 0 {
		out.Workers = def.Workers
	}
	if out.ShutdownBudget <= 0 {
		out.ShutdownBudget = def.ShutdownBudget
	}
	if out.EventPollInterval <= 0 {
		out.EventPollInterval = def.EventPollInterval
	}
	if out.ParallelThreshold <= 0 {
		out.ParallelThreshold = def.ParallelThreshold
	}
	if out.MinBatchSize <= 0 {
		out.MinBatchSize = def.MinBatchSize
	}
	return &out
}
