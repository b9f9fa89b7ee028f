package orbit

import (
	"fmt"
	"runtime"
)

// Config controls a single orbit mapping run. It is resolved into concrete
// Algorithm and Mode values at the start of MapSequential or MapParallel.
//
// Worker pool sizing:
//   - Workers = 0: auto-detect min(NumCPU, WorkerCap)
//   - Workers > 0: use that exact count
//
// Cycle walks are CPU-bound, so auto-detection does not oversubscribe cores.
//
// Example JSON:
//
//	{
//	  "algorithm": "floyd",
//	  "mode": "period",
//	  "workers": 8,
//	  "claims": true,
//	  "observer": "slog"
//	}
type Config struct {
	// Algorithm is "auto", "enumeration" or "floyd".
	Algorithm string `json:"algorithm,omitempty" yaml:"algorithm,omitempty"`

	// Mode is "period" or "full".
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty"`

	// Workers is the exact parallel worker count (0 = auto-detect).
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty"`

	// WorkerCap limits auto-detected workers (default: 16).
	WorkerCap int `json:"worker_cap,omitempty" yaml:"worker_cap,omitempty"`

	// ClaimsNil enables the shared claim registry for invertible operators.
	// Use Claims() to access. When nil, defaults to true.
	ClaimsNil *bool `json:"claims,omitempty" yaml:"claims,omitempty"`

	// Observer names the observer implementation ("noop", "slog", etc.).
	Observer string `json:"observer,omitempty" yaml:"observer,omitempty"`
}

// DefaultConfig returns auto algorithm selection, period-only mode,
// auto-detected workers capped at 16, claims enabled and no observer output.
func DefaultConfig() Config {
	claims := true
	return Config{
		Algorithm: Auto.String(),
		Mode:      PeriodOnly.String(),
		Workers:   0,
		WorkerCap: 16,
		ClaimsNil: &claims,
		Observer:  "noop",
	}
}

func (c *Config) Claims() bool {
	if c.ClaimsNil == nil {
		return true
	}
	return *c.ClaimsNil
}

// Merge overlays non-zero fields from source.
func (c *Config) Merge(source *Config) {
	if source.Algorithm != "" {
		c.Algorithm = source.Algorithm
	}

	if source.Mode != "" {
		c.Mode = source.Mode
	}

	if source.Workers > 0 {
		c.Workers = source.Workers
	}

	if source.WorkerCap > 0 {
		c.WorkerCap = source.WorkerCap
	}

	if source.ClaimsNil != nil {
		c.ClaimsNil = source.ClaimsNil
	}

	if source.Observer != "" {
		c.Observer = source.Observer
	}
}

// WorkerCount returns the number of workers a parallel run would use.
func (c *Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}

	workers := runtime.NumCPU()
	if c.WorkerCap > 0 {
		workers = min(workers, c.WorkerCap)
	}
	return max(workers, 1)
}

type settings struct {
	algorithm Algorithm
	mode      Mode
}

func (c *Config) resolve() (settings, error) {
	alg, err := ParseAlgorithm(c.Algorithm)
	if err != nil {
		return settings{}, err
	}
	mode, err := ParseMode(c.Mode)
	if err != nil {
		return settings{}, err
	}
	if c.Workers < 0 {
		return settings{}, fmt.Errorf("%w: %d", ErrNoWorkers, c.Workers)
	}
	return settings{algorithm: alg, mode: mode}, nil
}
