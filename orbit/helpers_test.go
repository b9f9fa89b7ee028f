package orbit_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/lfsr/lfsr"
	"github.com/tailored-agentic-units/lfsr/orbit"
)

func spec(q uint32, coeffs ...uint32) lfsr.Spec {
	return lfsr.Spec{Coefficients: coeffs, FieldOrder: q}
}

func newOperator(t *testing.T, s lfsr.Spec) *lfsr.Operator {
	t.Helper()
	op, err := lfsr.NewOperator(s)
	require.NoError(t, err)
	return op
}

func factoryFor(s lfsr.Spec) orbit.Factory {
	return func() (orbit.Operator, error) {
		op, err := lfsr.NewOperator(s)
		if err != nil {
			return nil, err
		}
		return op, nil
	}
}

func config(algorithm, mode string) orbit.Config {
	cfg := orbit.DefaultConfig()
	cfg.Algorithm = algorithm
	cfg.Mode = mode
	return cfg
}

// collapse sends every state to zero while claiming to be a permutation.
type collapse struct{ size uint64 }

func (c collapse) Step(uint64) uint64 { return 0 }
func (c collapse) Size() uint64       { return c.size }
func (c collapse) Invertible() bool   { return true }
