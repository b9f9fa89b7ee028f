package cache

import "errors"

// Sentinel errors for store and cache operations.
var (
	ErrKeyNotFound    = errors.New("key not found")
	ErrLoadFailed     = errors.New("load failed")
	ErrSaveFailed     = errors.New("save failed")
	ErrCorrupt        = errors.New("corrupt cache entry")
	ErrUnknownBackend = errors.New("unknown cache backend")
)
