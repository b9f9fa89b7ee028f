package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/tailored-agentic-units/lfsr/cache"
	"github.com/tailored-agentic-units/lfsr/lfsr"
)

func scalar(t *testing.T, key string, v uint64) cache.Entry {
	t.Helper()
	raw, err := proto.Marshal(wrapperspb.UInt64(v))
	require.NoError(t, err)
	return cache.Entry{Key: key, Value: raw}
}

func TestCache_Warm(t *testing.T) {
	ctx := context.Background()
	store := cache.NewFileStore(t.TempDir())
	require.NoError(t, store.Save(ctx,
		scalar(t, "results/a", 6),
		scalar(t, "results/b", 16),
		cache.Entry{Key: "notes/c", Value: []byte("not a scalar")},
	))

	c := cache.New(store)
	n, err := c.Warm(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, store.Delete(ctx, "results/a"))
	v, ok, err := c.Lookup(ctx, "results/a")
	require.NoError(t, err)
	assert.True(t, ok, "warmed values are served from memory")
	assert.Equal(t, uint64(6), v)
}

func TestCache_Warm_Corrupt(t *testing.T) {
	ctx := context.Background()
	store := cache.NewFileStore(t.TempDir())
	require.NoError(t, store.Save(ctx, cache.Entry{Key: "results/bad", Value: []byte{0xff, 0xff, 0xff}}))

	_, err := cache.New(store).Warm(ctx)
	assert.ErrorIs(t, err, cache.ErrCorrupt)
}

func TestCache_StageAndFlush(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := cache.New(store)

			_, ok, err := c.Lookup(ctx, "results/missing")
			require.NoError(t, err)
			assert.False(t, ok)

			c.Stage("results/max", 15)
			assert.Equal(t, 1, c.Pending())

			v, ok, err := c.Lookup(ctx, "results/max")
			require.NoError(t, err)
			assert.True(t, ok, "staged values are visible before flush")
			assert.Equal(t, uint64(15), v)

			_, ok, err = cache.New(store).Lookup(ctx, "results/max")
			require.NoError(t, err)
			assert.False(t, ok, "nothing persisted before flush")

			require.NoError(t, c.Flush(ctx))
			assert.Zero(t, c.Pending())

			v, ok, err = cache.New(store).Lookup(ctx, "results/max")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, uint64(15), v)
		})
	}
}

func TestCache_Lookup_Corrupt(t *testing.T) {
	ctx := context.Background()
	store := cache.NewFileStore(t.TempDir())
	require.NoError(t, store.Save(ctx, cache.Entry{Key: "results/bad", Value: []byte{0xff, 0xff, 0xff}}))

	_, _, err := cache.New(store).Lookup(ctx, "results/bad")
	assert.ErrorIs(t, err, cache.ErrCorrupt)
}

func TestCache_Forget(t *testing.T) {
	ctx := context.Background()
	store := newBadgerStore(t)
	c := cache.New(store)

	c.Stage("results/x", 3)
	require.NoError(t, c.Flush(ctx))
	require.NoError(t, c.Forget(ctx, "results/x"))

	_, ok, err := c.Lookup(ctx, "results/x")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Load(ctx, "results/x")
	assert.ErrorIs(t, err, cache.ErrKeyNotFound)
}

func TestCache_Memoize(t *testing.T) {
	ctx := context.Background()
	store := newBadgerStore(t)
	c := cache.New(store)

	var calls atomic.Int32
	compute := func(context.Context) (uint64, error) {
		calls.Add(1)
		return 27, nil
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _, err := c.Memoize(ctx, "results/sum", compute)
			assert.NoError(t, err)
			assert.Equal(t, uint64(27), v)
		}()
	}
	wg.Wait()

	v, cached, err := c.Memoize(ctx, "results/sum", compute)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, uint64(27), v)
	assert.Equal(t, int32(1), calls.Load())

	// persisted for a new process
	v, cached, err = cache.New(store).Memoize(ctx, "results/sum", compute)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, uint64(27), v)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCache_Memoize_ComputeError(t *testing.T) {
	ctx := context.Background()
	c := cache.New(cache.NewFileStore(t.TempDir()))
	boom := errors.New("boom")

	_, _, err := c.Memoize(ctx, "results/x", func(context.Context) (uint64, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)

	_, ok, err := c.Lookup(ctx, "results/x")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, c.Pending())
}

func TestCache_Memoize_CallerCancelled(t *testing.T) {
	c := cache.New(newBadgerStore(t))

	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	compute := func(ctx context.Context) (uint64, error) {
		calls.Add(1)
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return 27, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, _, err := c.Memoize(ctx, "results/max", compute)
		first <- err
	}()

	<-started
	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)

	type result struct {
		value uint64
		err   error
	}
	second := make(chan result, 1)
	go func() {
		v, _, err := c.Memoize(context.Background(), "results/max", compute)
		second <- result{value: v, err: err}
	}()
	close(release)

	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, uint64(27), res.value)
	assert.Equal(t, int32(1), calls.Load())

	v, cached, err := c.Lookup(context.Background(), "results/max")
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, uint64(27), v)
}

func TestKey(t *testing.T) {
	a := lfsr.Spec{Coefficients: []uint32{1, 1, 0, 1}, FieldOrder: 2}
	b := lfsr.Spec{Coefficients: []uint32{1, 1, 0, 1}, FieldOrder: 2}
	affine := lfsr.Spec{Coefficients: []uint32{1, 1, 0, 1}, FieldOrder: 2, Constant: 1}
	wider := lfsr.Spec{Coefficients: []uint32{1, 10}, FieldOrder: 11}
	narrower := lfsr.Spec{Coefficients: []uint32{1, 1, 0}, FieldOrder: 11}

	key := cache.Key(a, "max_period")
	assert.Equal(t, key, cache.Key(b, "max_period"))
	assert.Len(t, key, len(cache.ResultsPrefix)+64)
	assert.Contains(t, key, cache.ResultsPrefix)

	assert.NotEqual(t, key, cache.Key(a, "orbit_count"))
	assert.NotEqual(t, key, cache.Key(affine, "max_period"))
	assert.NotEqual(t, cache.Key(wider, "max_period"), cache.Key(narrower, "max_period"))
}
