package analysis_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/lfsr/analysis"
	"github.com/tailored-agentic-units/lfsr/cache"
	"github.com/tailored-agentic-units/lfsr/lfsr"
	"github.com/tailored-agentic-units/lfsr/observability"
	"github.com/tailored-agentic-units/lfsr/orbit"
)

var primitive = lfsr.Spec{Coefficients: []uint32{1, 1, 0, 0}, FieldOrder: 2}

func testConfig(workers int) *analysis.Config {
	cfg := analysis.DefaultConfig()
	cfg.Observer = "noop"
	cfg.Orbit.Workers = workers
	cfg.ParallelThreshold = 1
	return &cfg
}

func newAnalyzer(t *testing.T, cfg *analysis.Config, opts ...analysis.Option) *analysis.Analyzer {
	t.Helper()
	a, err := analysis.New(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

// collapse sends every state to zero while claiming to be a permutation.
type collapse struct{}

func (collapse) Step(uint64) uint64 { return 0 }
func (collapse) Size() uint64       { return 16 }
func (collapse) Invertible() bool   { return true }

func TestAnalyzer_MapOrbits_Paths(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		want    analysis.Path
	}{
		{name: "single worker", workers: 1, want: analysis.PathSequential},
		{name: "parallel", workers: 4, want: analysis.PathParallel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &observability.Recorder{}
			a := newAnalyzer(t, testConfig(tt.workers), analysis.WithObserver(rec))

			report, err := a.MapOrbits(context.Background(), primitive)
			require.NoError(t, err)

			assert.Equal(t, tt.want, report.Path)
			assert.Equal(t, []uint64{1, 15}, report.Map.Periods())
			assert.Equal(t, uint64(16), report.Map.PeriodSum)
			assert.NotEmpty(t, report.RunID)
			assert.Equal(t, primitive, report.Spec)
			assert.Equal(t, []observability.EventType{analysis.EventRunStart, analysis.EventRunComplete}, rec.Types())
		})
	}
}

func TestAnalyzer_MapOrbits_BelowThreshold(t *testing.T) {
	cfg := testConfig(4)
	cfg.ParallelThreshold = 1 << 20

	report, err := newAnalyzer(t, cfg).MapOrbits(context.Background(), primitive)
	require.NoError(t, err)
	assert.Equal(t, analysis.PathSequential, report.Path)
}

func failingWorkers(calls *atomic.Int32) analysis.FactoryFunc {
	return func(spec lfsr.Spec) orbit.Factory {
		base := analysis.OperatorFactory(spec)
		return func() (orbit.Operator, error) {
			// the analyzer's operator and the parallel probe succeed
			if calls.Add(1) > 2 {
				return nil, errors.New("worker out of memory")
			}
			return base()
		}
	}
}

func TestAnalyzer_MapOrbits_Fallback(t *testing.T) {
	var calls atomic.Int32
	rec := &observability.Recorder{}
	a := newAnalyzer(t, testConfig(4), analysis.WithObserver(rec), analysis.WithFactory(failingWorkers(&calls)))

	report, err := a.MapOrbits(context.Background(), primitive)
	require.NoError(t, err)

	assert.Equal(t, analysis.PathFallback, report.Path)
	assert.Equal(t, []uint64{1, 15}, report.Map.Periods())

	var warnings []observability.Event
	for _, e := range rec.Events() {
		if e.Type == analysis.EventFallback {
			warnings = append(warnings, e)
		}
	}
	require.Len(t, warnings, 1)
	assert.Equal(t, observability.LevelWarning, warnings[0].Level)
	assert.Contains(t, warnings[0].Data["reason"], "worker out of memory")
}

func TestAnalyzer_MapOrbits_FallbackDisabled(t *testing.T) {
	var calls atomic.Int32
	cfg := testConfig(4)
	off := false
	cfg.FallbackNil = &off

	a := newAnalyzer(t, cfg, analysis.WithFactory(failingWorkers(&calls)))

	_, err := a.MapOrbits(context.Background(), primitive)
	require.Error(t, err)

	var parallelErr *orbit.ParallelError
	assert.ErrorAs(t, err, &parallelErr)
}

func TestAnalyzer_MapOrbits_SequentialBoundIsFatal(t *testing.T) {
	factory := func(lfsr.Spec) orbit.Factory {
		return func() (orbit.Operator, error) { return collapse{}, nil }
	}
	cfg := testConfig(1)
	cfg.Orbit.Algorithm = "enumeration"

	_, err := newAnalyzer(t, cfg, analysis.WithFactory(factory)).MapOrbits(context.Background(), primitive)
	assert.ErrorIs(t, err, orbit.ErrBoundExceeded)
}

func TestAnalyzer_MapOrbits_InvalidSpec(t *testing.T) {
	a := newAnalyzer(t, testConfig(1))

	_, err := a.MapOrbits(context.Background(), lfsr.Spec{Coefficients: []uint32{1, 3}, FieldOrder: 2})
	assert.ErrorIs(t, err, lfsr.ErrInvalidSpec)
}

func TestAnalyzer_FindPeriod(t *testing.T) {
	a := newAnalyzer(t, testConfig(1))
	ctx := context.Background()

	period, err := a.FindPeriod(ctx, primitive, []uint32{0, 0, 0, 1}, orbit.Floyd)
	require.NoError(t, err)
	assert.Equal(t, uint64(15), period)

	period, err = a.FindPeriod(ctx, primitive, []uint32{0, 0, 0, 0}, orbit.Enumeration)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), period)

	_, err = a.FindPeriod(ctx, primitive, []uint32{2, 0, 0, 0}, orbit.Auto)
	assert.ErrorIs(t, err, lfsr.ErrInvalidState)

	degenerate := lfsr.Spec{Coefficients: []uint32{0, 0, 0, 0}, FieldOrder: 2}
	period, err = a.FindPeriod(ctx, degenerate, []uint32{1, 0, 1, 1}, orbit.Floyd)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), period)

	_, err = a.FindPeriod(ctx, degenerate, []uint32{1, 0, 1, 1}, orbit.Enumeration)
	assert.ErrorIs(t, err, orbit.ErrBoundExceeded)
}

func TestAnalyzer_Quantity_Cached(t *testing.T) {
	db, err := cache.OpenBadger(cache.BadgerConfig{InMemory: true})
	require.NoError(t, err)

	rec := &observability.Recorder{}
	a := newAnalyzer(t, testConfig(2), analysis.WithStore(cache.NewBadgerStore(db)), analysis.WithObserver(rec))
	ctx := context.Background()

	v, cached, err := a.Quantity(ctx, primitive, analysis.QuantityMaxPeriod)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, uint64(15), v)

	// the map computed above recorded its other scalars too
	v, cached, err = a.Quantity(ctx, primitive, analysis.QuantityOrbitCount)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, uint64(2), v)

	v, cached, err = a.Quantity(ctx, primitive, analysis.QuantityPeriodSum)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, uint64(16), v)

	assert.Contains(t, rec.Types(), analysis.EventCacheHit)
}

func TestAnalyzer_Quantity_NoCache(t *testing.T) {
	a := newAnalyzer(t, testConfig(1))

	v, cached, err := a.Quantity(context.Background(), lfsr.Spec{Coefficients: []uint32{1, 2, 1}, FieldOrder: 3}, analysis.QuantityOrbitCount)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, uint64(9), v)

	_, _, err = a.Quantity(context.Background(), primitive, "entropy")
	assert.ErrorIs(t, err, analysis.ErrUnknownQuantity)
}

func TestAnalyzer_Quantity_Order(t *testing.T) {
	tests := []struct {
		name string
		spec lfsr.Spec
		want uint64
	}{
		{name: "primitive", spec: primitive, want: 15},
		{name: "reducible", spec: lfsr.Spec{Coefficients: []uint32{1, 1, 0, 1}, FieldOrder: 2}, want: 6},
		{name: "ternary", spec: lfsr.Spec{Coefficients: []uint32{1, 2, 1}, FieldOrder: 3}, want: 4},
		{name: "affine", spec: lfsr.Spec{Coefficients: []uint32{1, 1}, FieldOrder: 2, Constant: 1}, want: 3},
		{name: "singular", spec: lfsr.Spec{Coefficients: []uint32{0, 1, 0}, FieldOrder: 2}, want: 2},
	}

	a := newAnalyzer(t, testConfig(2))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _, err := a.Quantity(context.Background(), tt.spec, analysis.QuantityOrder)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

// frozen keeps the companion matrix of a real register but fixes every
// state, so its orbits disagree with the matrix order.
type frozen struct{ *lfsr.Operator }

func (frozen) Step(s uint64) uint64 { return s }

func TestAnalyzer_MapOrbits_OrderMismatch(t *testing.T) {
	factory := func(spec lfsr.Spec) orbit.Factory {
		return func() (orbit.Operator, error) {
			op, err := lfsr.NewOperator(spec)
			if err != nil {
				return nil, err
			}
			return frozen{op}, nil
		}
	}

	_, err := newAnalyzer(t, testConfig(1), analysis.WithFactory(factory)).MapOrbits(context.Background(), primitive)
	require.ErrorIs(t, err, orbit.ErrInvariantViolation)

	var invariantErr *orbit.InvariantError
	require.ErrorAs(t, err, &invariantErr)
	assert.Equal(t, uint64(1), invariantErr.Want)
}

func TestAnalyzer_StateLimit(t *testing.T) {
	cfg := testConfig(2)
	cfg.MaxStates = 8
	a := newAnalyzer(t, cfg)
	ctx := context.Background()

	_, err := a.MapOrbits(ctx, primitive)
	assert.ErrorIs(t, err, analysis.ErrStateLimit)

	_, _, err = a.Quantity(ctx, primitive, analysis.QuantityMaxPeriod)
	assert.ErrorIs(t, err, analysis.ErrStateLimit)

	_, err = a.FindPeriod(ctx, primitive, []uint32{0, 0, 0, 1}, orbit.Floyd)
	assert.ErrorIs(t, err, analysis.ErrStateLimit)

	report, err := a.MapOrbits(ctx, lfsr.Spec{Coefficients: []uint32{1, 0, 1}, FieldOrder: 2})
	require.NoError(t, err)
	assert.Equal(t, uint64(8), report.Map.Size)
}

func TestAnalyzer_StateLimit_Default(t *testing.T) {
	rec := &observability.Recorder{}
	a := newAnalyzer(t, testConfig(2), analysis.WithObserver(rec))

	wide := lfsr.Spec{Coefficients: make([]uint32, 30), FieldOrder: 2}
	wide.Coefficients[0] = 1

	_, err := a.MapOrbits(context.Background(), wide)
	assert.ErrorIs(t, err, analysis.ErrStateLimit)
	assert.Empty(t, rec.Types())
}

func TestNew_UnknownObserver(t *testing.T) {
	cfg := testConfig(1)
	cfg.Observer = "missing"

	_, err := analysis.New(cfg)
	assert.ErrorIs(t, err, observability.ErrUnknownObserver)
}
