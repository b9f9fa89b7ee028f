package analysis

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/lfsr/cache"
	"github.com/tailored-agentic-units/lfsr/orbit"
)

// defaultParallelThreshold is the smallest state space worth splitting
// across workers.
const defaultParallelThreshold uint64 = 1 << 12

// defaultMaxStates caps q^d for a single analysis.
const defaultMaxStates uint64 = 1 << 24

// Config holds initialization parameters for an Analyzer. Each section
// delegates to that package's config.
//
// Example YAML:
//
//	orbit:
//	  algorithm: floyd
//	  workers: 8
//	cache:
//	  backend: badger
//	  path: /var/lib/lfsr
//	parallel_threshold: 65536
//	max_states: 16777216
//	fallback: true
//	observer: slog
type Config struct {
	Orbit orbit.Config `json:"orbit" yaml:"orbit"`
	Cache cache.Config `json:"cache" yaml:"cache"`

	// ParallelThreshold is the minimum q^d for the parallel path.
	ParallelThreshold uint64 `json:"parallel_threshold,omitempty" yaml:"parallel_threshold,omitempty"`

	// MaxStates is the largest q^d an Analyzer will decompose. Larger
	// specifications fail with ErrStateLimit before anything is allocated.
	MaxStates uint64 `json:"max_states,omitempty" yaml:"max_states,omitempty"`

	// FallbackNil re-runs a failed parallel map sequentially. Use
	// Fallback() to access. When nil, defaults to true.
	FallbackNil *bool `json:"fallback,omitempty" yaml:"fallback,omitempty"`

	// Observer names the observer for analyzer events.
	Observer string `json:"observer,omitempty" yaml:"observer,omitempty"`
}

// DefaultConfig returns orbit defaults, no cache, a parallel threshold of
// 4096 states, a limit of 2^24 states, fallback enabled and slog output.
func DefaultConfig() Config {
	fallback := true
	return Config{
		Orbit:             orbit.DefaultConfig(),
		Cache:             cache.DefaultConfig(),
		ParallelThreshold: defaultParallelThreshold,
		MaxStates:         defaultMaxStates,
		FallbackNil:       &fallback,
		Observer:          "slog",
	}
}

func (c *Config) Fallback() bool {
	if c.FallbackNil == nil {
		return true
	}
	return *c.FallbackNil
}

// Merge applies non-zero values from source into c, delegating to each
// section's Merge.
func (c *Config) Merge(source *Config) {
	c.Orbit.Merge(&source.Orbit)
	c.Cache.Merge(&source.Cache)

	if source.ParallelThreshold > 0 {
		c.ParallelThreshold = source.ParallelThreshold
	}
	if source.MaxStates > 0 {
		c.MaxStates = source.MaxStates
	}
	if source.FallbackNil != nil {
		c.FallbackNil = source.FallbackNil
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
}

// LoadConfig reads a config file, YAML for .yaml and .yml and JSON
// otherwise, and merges it over the defaults.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &loaded)
	default:
		err = json.Unmarshal(data, &loaded)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
