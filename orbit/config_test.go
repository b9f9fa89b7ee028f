package orbit_test

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/lfsr/orbit"
)

func TestDefaultConfig(t *testing.T) {
	cfg := orbit.DefaultConfig()

	assert.Equal(t, "auto", cfg.Algorithm)
	assert.Equal(t, "period", cfg.Mode)
	assert.Equal(t, 0, cfg.Workers)
	assert.Equal(t, 16, cfg.WorkerCap)
	assert.True(t, cfg.Claims())
	assert.Equal(t, "noop", cfg.Observer)
}

func TestConfig_Claims_NilDefaultsTrue(t *testing.T) {
	var cfg orbit.Config
	assert.True(t, cfg.Claims())

	off := false
	cfg.ClaimsNil = &off
	assert.False(t, cfg.Claims())
}

func TestConfig_Merge(t *testing.T) {
	cfg := orbit.DefaultConfig()

	var loaded orbit.Config
	require.NoError(t, json.Unmarshal([]byte(`{"algorithm":"floyd","workers":6,"claims":false}`), &loaded))
	cfg.Merge(&loaded)

	assert.Equal(t, "floyd", cfg.Algorithm)
	assert.Equal(t, "period", cfg.Mode)
	assert.Equal(t, 6, cfg.Workers)
	assert.Equal(t, 16, cfg.WorkerCap)
	assert.False(t, cfg.Claims())
	assert.Equal(t, "noop", cfg.Observer)
}

func TestConfig_WorkerCount(t *testing.T) {
	cfg := orbit.Config{Workers: 3}
	assert.Equal(t, 3, cfg.WorkerCount())

	cfg = orbit.Config{WorkerCap: 1}
	assert.Equal(t, 1, cfg.WorkerCount())

	cfg = orbit.Config{}
	assert.Equal(t, runtime.NumCPU(), cfg.WorkerCount())
}
