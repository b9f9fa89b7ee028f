package service_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/lfsr/analysis"
	"github.com/tailored-agentic-units/lfsr/lfsr"
	"github.com/tailored-agentic-units/lfsr/orbit"
	"github.com/tailored-agentic-units/lfsr/service"
)

var primitive = lfsr.Spec{Coefficients: []uint32{1, 1, 0, 0}, FieldOrder: 2}

func newServer(t *testing.T, a service.Analyzer) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	path, handler := service.NewHandler(a)
	mux.Handle(path, handler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newAnalyzer(t *testing.T) *analysis.Analyzer {
	t.Helper()
	cfg := analysis.DefaultConfig()
	cfg.Observer = "noop"
	cfg.Orbit.Workers = 2
	cfg.Orbit.Mode = "full"

	a, err := analysis.New(&cfg)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestClient_RoundTrip(t *testing.T) {
	srv := newServer(t, newAnalyzer(t))
	client := service.NewClient(srv.Client(), srv.URL)
	ctx := context.Background()

	period, err := client.FindPeriod(ctx, primitive, []uint32{0, 0, 0, 1}, orbit.Floyd)
	require.NoError(t, err)
	assert.Equal(t, uint64(15), period)

	report, err := client.MapOrbits(ctx, primitive)
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, primitive, report.Spec)
	assert.Equal(t, analysis.PathSequential, report.Path)
	assert.Equal(t, orbit.FullSequence, report.Map.Mode)
	assert.Equal(t, []uint64{1, 15}, report.Map.Periods())
	assert.Len(t, report.Map.Orbits[1].Members, 15)

	value, cached, err := client.Quantity(ctx, lfsr.Spec{Coefficients: []uint32{1, 2, 1}, FieldOrder: 3}, analysis.QuantityOrbitCount)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, uint64(9), value)
}

func TestClient_ErrorCodes(t *testing.T) {
	srv := newServer(t, newAnalyzer(t))
	client := service.NewClient(srv.Client(), srv.URL+"/")
	ctx := context.Background()

	_, err := client.MapOrbits(ctx, lfsr.Spec{Coefficients: []uint32{1, 5}, FieldOrder: 2})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = client.FindPeriod(ctx, primitive, []uint32{0, 1}, orbit.Floyd)
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, _, err = client.Quantity(ctx, primitive, "entropy")
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	degenerate := lfsr.Spec{Coefficients: []uint32{0, 0, 0, 0}, FieldOrder: 2}
	_, err = client.FindPeriod(ctx, degenerate, []uint32{1, 1, 1, 1}, orbit.Enumeration)
	assert.Equal(t, connect.CodeInternal, connect.CodeOf(err))
}

func TestClient_StateLimit(t *testing.T) {
	srv := newServer(t, newAnalyzer(t))
	client := service.NewClient(srv.Client(), srv.URL)
	ctx := context.Background()

	wide := lfsr.Spec{Coefficients: make([]uint32, 30), FieldOrder: 2}
	wide.Coefficients[0] = 1

	_, err := client.MapOrbits(ctx, wide)
	require.Error(t, err)
	assert.Equal(t, connect.CodeResourceExhausted, connect.CodeOf(err))

	_, _, err = client.Quantity(ctx, wide, analysis.QuantityMaxPeriod)
	assert.Equal(t, connect.CodeResourceExhausted, connect.CodeOf(err))

	_, err = client.MapOrbits(ctx, lfsr.Spec{Coefficients: make([]uint32, 41), FieldOrder: 2})
	assert.Equal(t, connect.CodeResourceExhausted, connect.CodeOf(err))
}

type brokenAnalyzer struct{ service.Analyzer }

func (brokenAnalyzer) MapOrbits(context.Context, lfsr.Spec) (*analysis.Report, error) {
	return nil, &orbit.InvariantError{Reason: "orbit sizes do not cover the state space", Got: 15, Want: 16}
}

func TestClient_InvariantViolationIsInternal(t *testing.T) {
	srv := newServer(t, brokenAnalyzer{})
	client := service.NewClient(srv.Client(), srv.URL)

	_, err := client.MapOrbits(context.Background(), primitive)
	require.Error(t, err)
	assert.Equal(t, connect.CodeInternal, connect.CodeOf(err))
	assert.Contains(t, err.Error(), "orbit invariant violated")
}

func TestHandler_PlainJSON(t *testing.T) {
	srv := newServer(t, newAnalyzer(t))

	body := `{"spec":{"coefficients":[1,1,0,1],"field_order":2},"state":[0,0,0,1],"algorithm":"enumeration"}`
	resp, err := http.Post(srv.URL+service.FindPeriodProcedure, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"period":6}`, string(data))
}

func TestHandler_MalformedRequest(t *testing.T) {
	srv := newServer(t, newAnalyzer(t))

	body := `{"spec":{"coefficients":"one","field_order":2}}`
	resp, err := http.Post(srv.URL+service.MapOrbitsProcedure, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
