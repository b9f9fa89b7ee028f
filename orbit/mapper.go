package orbit

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tailored-agentic-units/lfsr/observability"
)

// cancelCheckMask sets how often long scans poll their context.
const cancelCheckMask = 1<<12 - 1

// MaxSingularStates bounds the state space of a singular operator, whose
// decomposition keeps one orbit index per state.
const MaxSingularStates = math.MaxUint32 - 1

const (
	unassigned uint32 = math.MaxUint32
	inProgress uint32 = math.MaxUint32 - 1
)

// MapSequential decomposes the state space of op into orbits in a single
// goroutine.
//
// For an invertible operator every state lies on exactly one cycle. States
// are scanned in ascending order and each one not yet visited starts a new
// cycle; it is necessarily the smallest member and becomes the
// representative.
//
// For a singular operator the state graph is a functional graph: each state
// is attributed to the cycle its trajectory runs into, and Orbit.Size counts
// the cycle plus its transient tails.
//
// The run fails with *InvariantError when the orbit sizes do not sum to the
// state-space size, and with *BoundError when a cycle search fails to close.
func MapSequential(ctx context.Context, op Operator, cfg Config) (*Map, error) {
	s, err := cfg.resolve()
	if err != nil {
		return nil, err
	}

	observer, err := observability.GetObserver(cfg.Observer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve observer: %w", err)
	}

	size := op.Size()
	alg := s.algorithm.Resolve(size)

	ctx, span := tracer.Start(ctx, "orbit.MapSequential",
		trace.WithAttributes(
			attribute.Int64("orbit.size", int64(size)),
			attribute.String("orbit.algorithm", alg.String()),
			attribute.String("orbit.mode", s.mode.String()),
			attribute.Bool("orbit.invertible", op.Invertible()),
		),
	)
	defer span.End()

	start := time.Now()

	observer.OnEvent(ctx, observability.Event{
		Type:      EventMapStart,
		Level:     observability.LevelInfo,
		Timestamp: start,
		Source:    "orbit.MapSequential",
		Data: map[string]any{
			"size":       size,
			"algorithm":  alg.String(),
			"mode":       s.mode.String(),
			"invertible": op.Invertible(),
		},
	})

	var m *Map
	if op.Invertible() {
		m, err = mapPermutation(ctx, op, alg, s.mode)
	} else {
		m, err = mapFunctional(ctx, op, s.mode)
	}

	mapsTotal.WithLabelValues("sequential", outcome(err)).Inc()
	mapDuration.WithLabelValues("sequential").Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observer.OnEvent(ctx, observability.Event{
			Type:      EventMapComplete,
			Level:     observability.LevelError,
			Timestamp: time.Now(),
			Source:    "orbit.MapSequential",
			Data: map[string]any{
				"error":    true,
				"reason":   err.Error(),
				"duration": time.Since(start),
			},
		})
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("orbit.count", len(m.Orbits)),
		attribute.Int64("orbit.max_period", int64(m.MaxPeriod)),
	)
	span.SetStatus(codes.Ok, "")

	observer.OnEvent(ctx, observability.Event{
		Type:      EventMapComplete,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "orbit.MapSequential",
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

func mapPermutation(ctx context.Context, op Operator, alg Algorithm, mode Mode) (*Map, error) {
	size := op.Size()
	visited := newBitset(size)
	m := &Map{Size: size, Mode: mode, Invertible: true}

	for state := uint64(0); state < size; state++ {
		if state&cancelCheckMask == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if visited.test(state) {
			continue
		}

		var members []uint64
		var revisited bool
		visit := func(s uint64) {
			if visited.test(s) {
				revisited = true
			}
			visited.set(s)
			if mode == FullSequence {
				members = append(members, s)
			}
		}

		var period uint64
		var err error
		switch alg {
		case Floyd:
			period, err = floydPeriod(state, op)
			if err == nil && walk(state, op, period, visit) != state {
				err = &BoundError{Start: state, Bound: size, Algorithm: Floyd}
			}
		default:
			period, _, err = enumerate(state, op, visit)
		}
		if err != nil {
			return nil, err
		}
		if revisited {
			return nil, &InvariantError{Reason: fmt.Sprintf("cycle through %d overlaps an earlier cycle", state)}
		}

		m.Orbits = append(m.Orbits, Orbit{
			Representative: state,
			Period:         period,
			Size:           period,
			Members:        members,
		})
	}

	if err := m.finish(); err != nil {
		return nil, err
	}
	return m, nil
}

func mapFunctional(ctx context.Context, op Operator, mode Mode) (*Map, error) {
	size := op.Size()
	if size > MaxSingularStates {
		return nil, fmt.Errorf("%w: singular operator over %d states", ErrSpaceTooLarge, size)
	}

	orbitOf := make([]uint32, size)
	for i := range orbitOf {
		orbitOf[i] = unassigned
	}

	m := &Map{Size: size, Mode: mode}
	var path []uint64

	for state := uint64(0); state < size; state++ {
		if state&cancelCheckMask == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if orbitOf[state] != unassigned {
			continue
		}

		path = path[:0]
		cur := state
		for orbitOf[cur] == unassigned {
			orbitOf[cur] = inProgress
			path = append(path, cur)
			cur = op.Step(cur)
		}

		id := orbitOf[cur]
		tail := path
		if id == inProgress {
			at := slices.Index(path, cur)
			cycle := path[at:]
			tail = path[:at]

			o := Orbit{Period: uint64(len(cycle)), Representative: slices.Min(cycle)}
			if mode == FullSequence {
				o.Members = rotate(cycle)
			}
			id = uint32(len(m.Orbits))
			m.Orbits = append(m.Orbits, o)
		}

		for _, s := range path {
			orbitOf[s] = id
		}

		o := &m.Orbits[id]
		o.Size += uint64(len(path))
		if mode == FullSequence {
			o.Transients = append(o.Transients, tail...)
		}
	}

	for i := range m.Orbits {
		slices.Sort(m.Orbits[i].Transients)
	}

	if err := m.finish(); err != nil {
		return nil, err
	}
	return m, nil
}
