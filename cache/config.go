package cache

import (
	"fmt"
	"log/slog"
)

const (
	BackendNone   = ""
	BackendFile   = "file"
	BackendBadger = "badger"
)

// Config selects and configures the result store.
//
// Example JSON:
//
//	{
//	  "backend": "badger",
//	  "path": "/var/lib/lfsr/cache"
//	}
type Config struct {
	// Backend is "file", "badger", or empty to disable caching.
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`

	// Path is the store root directory. Required unless InMemory is set.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// InMemory runs the badger backend without a directory.
	InMemory bool `json:"in_memory,omitempty" yaml:"in_memory,omitempty"`

	// SyncWrites fsyncs every badger commit.
	SyncWrites bool `json:"sync_writes,omitempty" yaml:"sync_writes,omitempty"`
}

// DefaultConfig returns a disabled cache.
func DefaultConfig() Config {
	return Config{}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Backend != "" {
		c.Backend = source.Backend
	}
	if source.Path != "" {
		c.Path = source.Path
	}
	if source.InMemory {
		c.InMemory = true
	}
	if source.SyncWrites {
		c.SyncWrites = true
	}
}

// NewStore opens the configured backend. It returns a nil Store when
// caching is disabled.
func NewStore(cfg *Config, logger *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case BackendNone:
		return nil, nil
	case BackendFile:
		if cfg.Path == "" {
			return nil, fmt.Errorf("file cache requires a path")
		}
		return NewFileStore(cfg.Path), nil
	case BackendBadger:
		db, err := OpenBadger(BadgerConfig{
			Path:       cfg.Path,
			InMemory:   cfg.InMemory,
			SyncWrites: cfg.SyncWrites,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		return NewBadgerStore(db), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}
