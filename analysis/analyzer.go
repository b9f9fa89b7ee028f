// Package analysis drives orbit decomposition for LFSR specifications. It
// chooses between the sequential and parallel mappers, falls back to the
// sequential path when a parallel run fails, and memoizes scalar results in
// an optional cache.
//
//	a, err := analysis.New(&cfg)
//	defer a.Close()
//	report, err := a.MapOrbits(ctx, lfsr.Spec{Coefficients: []uint32{1, 1, 0, 0}, FieldOrder: 2})
package analysis

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/lfsr/cache"
	"github.com/tailored-agentic-units/lfsr/lfsr"
	"github.com/tailored-agentic-units/lfsr/matrix"
	"github.com/tailored-agentic-units/lfsr/observability"
	"github.com/tailored-agentic-units/lfsr/orbit"
)

// Path records which mapper produced a Report.
type Path string

const (
	PathSequential Path = "sequential"
	PathParallel   Path = "parallel"

	// PathFallback means the parallel mapper failed and the sequential
	// mapper produced the result.
	PathFallback Path = "fallback"
)

// Report is the outcome of one MapOrbits call.
type Report struct {
	RunID    string        `json:"run_id"`
	Spec     lfsr.Spec     `json:"spec"`
	Path     Path          `json:"path"`
	Map      *orbit.Map    `json:"map"`
	Duration time.Duration `json:"duration"`
}

// FactoryFunc builds the operator factory for a specification.
type FactoryFunc func(spec lfsr.Spec) orbit.Factory

// OperatorFactory rebuilds an lfsr.Operator from spec on every call.
func OperatorFactory(spec lfsr.Spec) orbit.Factory {
	return func() (orbit.Operator, error) {
		op, err := lfsr.NewOperator(spec)
		if err != nil {
			return nil, err
		}
		return op, nil
	}
}

// Option configures an Analyzer after config-driven initialization.
type Option func(*Analyzer)

// WithObserver overrides the configured observer.
func WithObserver(o observability.Observer) Option {
	return func(a *Analyzer) { a.observer = o }
}

// WithStore overrides the configured result store.
func WithStore(s cache.Store) Option {
	return func(a *Analyzer) { a.store = s }
}

// WithFactory overrides how operators are built from specifications.
func WithFactory(f FactoryFunc) Option {
	return func(a *Analyzer) { a.factory = f }
}

// Analyzer runs orbit analyses. It is safe for concurrent use.
type Analyzer struct {
	orbit     orbit.Config
	threshold uint64
	maxStates uint64
	fallback  bool
	observer  observability.Observer
	store     cache.Store
	results   *cache.Cache
	factory   FactoryFunc
}

// New creates an Analyzer from configuration. Options applied afterwards
// can replace any configured component.
func New(cfg *Config, opts ...Option) (*Analyzer, error) {
	observer, err := observability.GetObserver(cfg.Observer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve observer: %w", err)
	}

	store, err := cache.NewStore(&cfg.Cache, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to create result store: %w", err)
	}

	a := &Analyzer{
		orbit:     cfg.Orbit,
		threshold: cfg.ParallelThreshold,
		maxStates: cmp.Or(cfg.MaxStates, defaultMaxStates),
		fallback:  cfg.Fallback(),
		observer:  observer,
		store:     store,
		factory:   OperatorFactory,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.store != nil {
		a.results = cache.New(a.store)
		if _, err := a.results.Warm(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to warm result cache: %w", err)
		}
	}

	return a, nil
}

// Close releases the result store.
func (a *Analyzer) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

// MapOrbits decomposes the state space of spec.
//
// The parallel mapper runs when more than one worker is configured and q^d
// reaches the parallel threshold. If it fails and fallback is enabled, the
// sequential mapper runs instead and an EventFallback warning is emitted. A
// sequential failure, including ErrBoundExceeded, is returned as is.
//
// A spec whose q^d exceeds the configured limit fails with ErrStateLimit
// before any mapper runs. For a linear invertible register the lcm of the
// orbit periods must equal the order of its companion matrix; a mismatch
// is reported as *orbit.InvariantError.
func (a *Analyzer) MapOrbits(ctx context.Context, spec lfsr.Spec) (*Report, error) {
	factory := a.factory(spec)
	op, err := factory()
	if err != nil {
		return nil, err
	}
	if err := a.admit(spec, op.Size()); err != nil {
		return nil, err
	}

	report := &Report{
		RunID: uuid.Must(uuid.NewV7()).String(),
		Spec:  spec,
	}
	size := op.Size()
	start := time.Now()

	a.observer.OnEvent(ctx, observability.Event{
		Type:      EventRunStart,
		Level:     observability.LevelInfo,
		Timestamp: start,
		Source:    "analysis.MapOrbits",
		Data: map[string]any{
			"run_id":     report.RunID,
			"spec":       spec.String(),
			"size":       size,
			"invertible": op.Invertible(),
		},
	})

	var m *orbit.Map
	if a.orbit.WorkerCount() > 1 && size >= a.threshold {
		report.Path = PathParallel
		m, err = orbit.MapParallel(ctx, factory, a.orbit)
		if err != nil && ctx.Err() == nil && a.fallback {
			fallbacks.Inc()
			a.observer.OnEvent(ctx, observability.Event{
				Type:      EventFallback,
				Level:     observability.LevelWarning,
				Timestamp: time.Now(),
				Source:    "analysis.MapOrbits",
				Data: map[string]any{
					"run_id": report.RunID,
					"reason": err.Error(),
				},
			})
			report.Path = PathFallback
			m, err = orbit.MapSequential(ctx, op, a.orbit)
		}
	} else {
		report.Path = PathSequential
		m, err = orbit.MapSequential(ctx, op, a.orbit)
	}

	if err == nil {
		err = verifyOrder(op, m)
	}
	if err != nil {
		a.observer.OnEvent(ctx, observability.Event{
			Type:      EventError,
			Level:     observability.LevelError,
			Timestamp: time.Now(),
			Source:    "analysis.MapOrbits",
			Data: map[string]any{
				"run_id": report.RunID,
				"path":   string(report.Path),
				"error":  err.Error(),
			},
		})
		return nil, fmt.Errorf("map orbits of %s: %w", spec, err)
	}

	report.Map = m
	report.Duration = time.Since(start)

	if err := a.record(ctx, spec, m); err != nil {
		return nil, err
	}

	a.observer.OnEvent(ctx, observability.Event{
		Type:      EventRunComplete,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "analysis.MapOrbits",
		Data: map[string]any{
			"run_id":     report.RunID,
			"path":       string(report.Path),
			"orbits":     len(m.Orbits),
			"max_period": m.MaxPeriod,
			"duration":   report.Duration,
		},
	})

	return report, nil
}

func (a *Analyzer) admit(spec lfsr.Spec, size uint64) error {
	if size > a.maxStates {
		return fmt.Errorf("%w: %s has %d states, limit %d", ErrStateLimit, spec, size, a.maxStates)
	}
	return nil
}

// companion is an operator that exposes its update matrix.
type companion interface {
	orbit.Operator
	Spec() lfsr.Spec
	Matrix() *matrix.Matrix
}

// verifyOrder cross-checks m against the companion matrix of a linear
// invertible register. Other operators are not checked.
func verifyOrder(op orbit.Operator, m *orbit.Map) error {
	reg, ok := op.(companion)
	if !ok || !reg.Invertible() || reg.Spec().Affine() {
		return nil
	}

	want := m.Order()
	got, err := reg.Matrix().Order(want)
	if err != nil && !errors.Is(err, matrix.ErrOrderBound) {
		return err
	}
	if got != want {
		return &orbit.InvariantError{
			Reason: "lcm of orbit periods differs from companion matrix order",
			Got:    got,
			Want:   want,
		}
	}
	return nil
}

// FindPeriod returns the period of the cycle reached from state, given as
// a vector of field elements. For a singular operator only Floyd accepts a
// transient state; Enumeration reports orbit.ErrBoundExceeded. The state
// limit applies here too, since a single search may step q^d times.
func (a *Analyzer) FindPeriod(ctx context.Context, spec lfsr.Spec, state []uint32, alg orbit.Algorithm) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	op, err := lfsr.NewOperator(spec)
	if err != nil {
		return 0, err
	}
	if err := a.admit(spec, op.Size()); err != nil {
		return 0, err
	}
	code, err := op.Encode(state)
	if err != nil {
		return 0, err
	}
	return orbit.FindPeriod(code, op, alg)
}

// Quantity names.
const (
	QuantityMaxPeriod  = "max_period"
	QuantityOrbitCount = "orbit_count"
	QuantityPeriodSum  = "period_sum"
	QuantityOrder      = "order"
)

var quantities = []string{QuantityMaxPeriod, QuantityOrbitCount, QuantityPeriodSum, QuantityOrder}

// Quantity returns a scalar summary of the orbit map of spec, from the
// cache when one is configured. The boolean reports a cache hit. The state
// limit applies even when the value is cached.
func (a *Analyzer) Quantity(ctx context.Context, spec lfsr.Spec, name string) (uint64, bool, error) {
	if !slices.Contains(quantities, name) {
		return 0, false, fmt.Errorf("%w: %s", ErrUnknownQuantity, name)
	}
	op, err := a.factory(spec)()
	if err != nil {
		return 0, false, err
	}
	if err := a.admit(spec, op.Size()); err != nil {
		return 0, false, err
	}

	compute := func(ctx context.Context) (uint64, error) {
		report, err := a.MapOrbits(ctx, spec)
		if err != nil {
			return 0, err
		}
		return quantity(report.Map, name)
	}

	if a.results == nil {
		v, err := compute(ctx)
		return v, false, err
	}

	v, cached, err := a.results.Memoize(ctx, cache.Key(spec, name), compute)
	if err == nil && cached {
		a.observer.OnEvent(ctx, observability.Event{
			Type:      EventCacheHit,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    "analysis.Quantity",
			Data: map[string]any{
				"spec":     spec.String(),
				"quantity": name,
			},
		})
	}
	return v, cached, err
}

// record stores every scalar of m so later Quantity calls hit the cache.
func (a *Analyzer) record(ctx context.Context, spec lfsr.Spec, m *orbit.Map) error {
	if a.results == nil {
		return nil
	}
	for _, name := range quantities {
		v, _ := quantity(m, name)
		a.results.Stage(cache.Key(spec, name), v)
	}
	if err := a.results.Flush(ctx); err != nil {
		return fmt.Errorf("failed to persist results: %w", err)
	}
	return nil
}

func quantity(m *orbit.Map, name string) (uint64, error) {
	switch name {
	case QuantityMaxPeriod:
		return m.MaxPeriod, nil
	case QuantityOrbitCount:
		return uint64(len(m.Orbits)), nil
	case QuantityPeriodSum:
		return m.PeriodSum, nil
	case QuantityOrder:
		return m.Order(), nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownQuantity, name)
	}
}
