package orbit

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/tailored-agentic-units/lfsr/observability"
)

// MapParallel decomposes the state space across workers and merges their
// results.
//
// The driver builds one probe operator through factory to learn the space
// size and invertibility, partitions [0, q^d) into contiguous chunks, and
// runs ProcessChunk for each chunk in its own goroutine. Results are
// collected by chunk index and handed to Merge.
//
// The first failing worker cancels the others. Worker failures surface as
// *ParallelError, accounting failures as *InvariantError. Callers that want
// a degraded path re-run MapSequential on error.
//
// The claim registry is used only when cfg.Claims() is true and the
// operator is invertible. Enabling or disabling it never changes the
// resulting Map.
//
// Observer events:
//   - EventParallelStart: after partitioning
//   - EventWorkerStart, EventWorkerComplete: around each chunk
//   - EventMergeComplete: after a successful merge
//   - EventParallelComplete: when the run finishes
func MapParallel(ctx context.Context, factory Factory, cfg Config) (*Map, error) {
	s, err := cfg.resolve()
	if err != nil {
		return nil, err
	}

	observer, err := observability.GetObserver(cfg.Observer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve observer: %w", err)
	}

	probe, err := factory()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReconstruct, err)
	}
	size, invertible := probe.Size(), probe.Invertible()

	chunks := Partition(size, cfg.WorkerCount())
	useClaims := cfg.Claims() && invertible

	ctx, span := tracer.Start(ctx, "orbit.MapParallel",
		trace.WithAttributes(
			attribute.Int64("orbit.size", int64(size)),
			attribute.Int("orbit.workers", len(chunks)),
			attribute.String("orbit.mode", s.mode.String()),
			attribute.Bool("orbit.invertible", invertible),
			attribute.Bool("orbit.claims", useClaims),
		),
	)
	defer span.End()

	start := time.Now()

	observer.OnEvent(ctx, observability.Event{
		Type:      EventParallelStart,
		Level:     observability.LevelInfo,
		Timestamp: start,
		Source:    "orbit.MapParallel",
		Data: map[string]any{
			"size":         size,
			"worker_count": len(chunks),
			"algorithm":    s.algorithm.Resolve(size).String(),
			"mode":         s.mode.String(),
			"invertible":   invertible,
			"claims":       useClaims,
		},
	})

	opts := ChunkOptions{Algorithm: s.algorithm, Mode: s.mode}
	if useClaims {
		opts.Claims = NewClaims(size)
	}

	results := make([]ChunkResult, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		g.Go(func() error {
			observer.OnEvent(gctx, observability.Event{
				Type:      EventWorkerStart,
				Level:     observability.LevelVerbose,
				Timestamp: time.Now(),
				Source:    "orbit.MapParallel",
				Data: map[string]any{
					"chunk": chunk.ID,
					"start": chunk.Start,
					"end":   chunk.End,
				},
			})

			results[i] = ProcessChunk(gctx, chunk, factory, opts)
			claimSkips.Add(float64(results[i].Skipped))

			observer.OnEvent(gctx, observability.Event{
				Type:      EventWorkerComplete,
				Level:     observability.LevelVerbose,
				Timestamp: time.Now(),
				Source:    "orbit.MapParallel",
				Data: map[string]any{
					"chunk":     chunk.ID,
					"cycles":    len(results[i].Cycles),
					"processed": results[i].Processed,
					"skipped":   results[i].Skipped,
					"error":     results[i].Err() != nil,
				},
			})

			return results[i].Err()
		})
	}
	_ = g.Wait()

	var m *Map
	if ctx.Err() != nil {
		err = fmt.Errorf("parallel execution cancelled: %w", ctx.Err())
	} else {
		dropSiblingCancellations(results)
		m, err = Merge(results, size, invertible, s.mode)
	}

	mapsTotal.WithLabelValues("parallel", outcome(err)).Inc()
	mapDuration.WithLabelValues("parallel").Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observer.OnEvent(ctx, observability.Event{
			Type:      EventParallelComplete,
			Level:     observability.LevelError,
			Timestamp: time.Now(),
			Source:    "orbit.MapParallel",
			Data: map[string]any{
				"error":    true,
				"reason":   err.Error(),
				"duration": time.Since(start),
			},
		})
		return nil, err
	}

	observer.OnEvent(ctx, observability.Event{
		Type:      EventMergeComplete,
		Level:     observability.LevelVerbose,
		Timestamp: time.Now(),
		Source:    "orbit.MapParallel",
		Data: map[string]any{
			"records": countRecords(results),
			"orbits":  len(m.Orbits),
		},
	})

	span.SetAttributes(
		attribute.Int("orbit.count", len(m.Orbits)),
		attribute.Int64("orbit.max_period", int64(m.MaxPeriod)),
	)
	span.SetStatus(codes.Ok, "")

	observer.OnEvent(ctx, observability.Event{
		Type:      EventParallelComplete,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "orbit.MapParallel",
		Data: map[string]any{
			"error":      false,
			"orbits":     len(m.Orbits),
			"max_period": m.MaxPeriod,
			"period_sum": m.PeriodSum,
			"duration":   time.Since(start),
		},
	})

	return m, nil
}

// dropSiblingCancellations removes the context.Canceled errors of workers
// stopped because another worker failed, leaving only root causes. It is a
// no-op unless some worker failed for another reason.
func dropSiblingCancellations(results []ChunkResult) {
	cancelled := func(e WorkerError) bool { return errors.Is(e.Err, context.Canceled) }

	rootCause := false
	for _, r := range results {
		if slices.ContainsFunc(r.Errors, func(e WorkerError) bool { return !cancelled(e) }) {
			rootCause = true
			break
		}
	}
	if !rootCause {
		return
	}
	for i := range results {
		results[i].Errors = slices.DeleteFunc(results[i].Errors, cancelled)
	}
}

func countRecords(results []ChunkResult) int {
	n := 0
	for _, r := range results {
		n += len(r.Cycles)
	}
	return n
}
