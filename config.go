package demystify

import (
	"os"
	"runtime"
	"strconv"
)

// Config holds the process-wide knobs the ambient stack reads from the
// environment at startup, mirroring the way the original keeps a single
// OnceLock-initialized RunMethod: here each field is just a plain struct
// field, loaded once by Load and then passed explicitly to whatever
// needs it (no global mutable state).
type Config struct {
	// ConflictBudget seeds the shared sat.BudgetTracker every SAT Core
	// in a run draws from.
	ConflictBudget int64
	// ContainerRunMethod selects how the compile package's Toolchain
	// invokes conjure/savilerow: "native", "docker", "podman", or ""
	// to auto-detect the way the original's detect_run_method does.
	ContainerRunMethod string
	// Workers sizes the sat.Pool the puzzlesolver fans its probes out
	// across.
	Workers int
}

const (
	envConflictBudget = "DEMYSTIFY_CONFLICT_BUDGET"
	envContainer      = "DEMYSTIFY_CONTAINER"
	envWorkers        = "DEMYSTIFY_WORKERS"
)

// Load reads Config from the environment, falling back to the defaults
// spec_full.md §6 names for any variable that is unset or unparsable.
func Load() Config {
	cfg := Config{
		ConflictBudget: 1000,
		Workers:        runtime.NumCPU(),
	}
	if v := os.Getenv(envConflictBudget); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.ConflictBudget = n
		}
	}
	if v := os.Getenv(envContainer); v != "" {
		cfg.ContainerRunMethod = v
	}
	if v := os.Getenv(envWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	return cfg
}
