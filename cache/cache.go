package cache

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Cache holds decoded scalar results in memory in front of a Store. Values
// staged with Stage reach the store on the next Flush. All methods are safe
// for concurrent use.
type Cache struct {
	store Store
	group singleflight.Group

	mu      sync.Mutex
	values  map[string]uint64
	pending map[string]uint64
}

func New(store Store) *Cache {
	return &Cache{
		store:   store,
		values:  make(map[string]uint64),
		pending: make(map[string]uint64),
	}
}

// Store returns the backing store.
func (c *Cache) Store() Store {
	return c.store
}

// Warm loads every result under ResultsPrefix into memory and returns how
// many were loaded.
func (c *Cache) Warm(ctx context.Context) (int, error) {
	keys, err := c.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("warm: %w", err)
	}

	var results []string
	for _, key := range keys {
		if strings.HasPrefix(key, ResultsPrefix) {
			results = append(results, key)
		}
	}
	if len(results) == 0 {
		return 0, nil
	}

	entries, err := c.store.Load(ctx, results...)
	if err != nil {
		return 0, fmt.Errorf("warm: %w", err)
	}

	decoded := make(map[string]uint64, len(entries))
	for _, e := range entries {
		v, err := decode(e)
		if err != nil {
			return 0, err
		}
		decoded[e.Key] = v
	}

	c.mu.Lock()
	maps.Copy(c.values, decoded)
	c.mu.Unlock()
	return len(decoded), nil
}

// Lookup returns the value stored under key, reading through to the store
// on a miss. A key absent from both reports ok == false without error.
func (c *Cache) Lookup(ctx context.Context, key string) (value uint64, ok bool, err error) {
	c.mu.Lock()
	value, ok = c.values[key]
	c.mu.Unlock()
	if ok {
		return value, true, nil
	}

	entries, err := c.store.Load(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}

	value, err = decode(entries[0])
	if err != nil {
		return 0, false, err
	}

	c.mu.Lock()
	c.values[key] = value
	c.mu.Unlock()
	return value, true, nil
}

// Stage records value under key in memory. It is written on the next Flush.
func (c *Cache) Stage(key string, value uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.values[key] = value
	c.pending[key] = value
}

// Pending returns the number of staged values not yet flushed.
func (c *Cache) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Flush writes staged values to the store. A key restaged with a different
// value while the write was in flight stays pending.
func (c *Cache) Flush(ctx context.Context) error {
	c.mu.Lock()
	batch := maps.Clone(c.pending)
	c.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	entries := make([]Entry, 0, len(batch))
	for key, v := range batch {
		e, err := encode(key, v)
		if err != nil {
			return err
		}
		entries = append(entries, e)
	}

	if err := c.store.Save(ctx, entries...); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	c.mu.Lock()
	for key, v := range batch {
		if c.pending[key] == v {
			delete(c.pending, key)
		}
	}
	c.mu.Unlock()
	return nil
}

// Forget drops keys from memory and from the store.
func (c *Cache) Forget(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.values, key)
		delete(c.pending, key)
	}
	c.mu.Unlock()

	if err := c.store.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("forget: %w", err)
	}
	return nil
}

// Memoize returns the value stored under key, or computes, stages and
// flushes it. Concurrent calls for the same key share one computation. The
// boolean reports whether the value came from the cache.
//
// The shared computation runs detached from any single caller's
// cancellation, so one caller giving up never fails the others. A caller
// whose ctx ends stops waiting and gets ctx.Err().
func (c *Cache) Memoize(ctx context.Context, key string, compute func(context.Context) (uint64, error)) (uint64, bool, error) {
	if v, ok, err := c.Lookup(ctx, key); err != nil || ok {
		return v, ok, err
	}

	type outcome struct {
		value  uint64
		cached bool
	}

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		if v, ok, err := c.Lookup(shared, key); err != nil || ok {
			return outcome{value: v, cached: ok}, err
		}

		v, err := compute(shared)
		if err != nil {
			return outcome{}, err
		}
		c.Stage(key, v)
		if err := c.Flush(shared); err != nil {
			return outcome{}, err
		}
		return outcome{value: v}, nil
	})

	select {
	case <-ctx.Done():
		return 0, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return 0, false, res.Err
		}
		out := res.Val.(outcome)
		return out.value, out.cached, nil
	}
}

func encode(key string, v uint64) (Entry, error) {
	raw, err := proto.Marshal(wrapperspb.UInt64(v))
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %s: %v", ErrSaveFailed, key, err)
	}
	return Entry{Key: key, Value: raw}, nil
}

func decode(e Entry) (uint64, error) {
	var msg wrapperspb.UInt64Value
	if err := proto.Unmarshal(e.Value, &msg); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrCorrupt, e.Key, err)
	}
	return msg.GetValue(), nil
}
