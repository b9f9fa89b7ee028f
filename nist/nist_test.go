package nist_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/lfsr/lfsr"
	"github.com/tailored-agentic-units/lfsr/nist"
)

func parse(t *testing.T, s string) []uint8 {
	t.Helper()
	bits := make([]uint8, len(s))
	for i, c := range s {
		require.Contains(t, "01", string(c))
		bits[i] = uint8(c - '0')
	}
	return bits
}

func TestFrequency(t *testing.T) {
	tests := []struct {
		name string
		bits string
		want float64
	}{
		{"reference example", "1011010101", 0.527089},
		{"balanced", "0101010101", 1},
		{"all ones", "1111111111", 0.001565},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := nist.Frequency(parse(t, tt.bits))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, p, 1e-6)
		})
	}
}

func TestRuns(t *testing.T) {
	p, err := nist.Runs(parse(t, "1001101011"))
	require.NoError(t, err)
	assert.InDelta(t, 0.147232, p, 1e-6)
	assert.True(t, nist.Passed(p))
}

func TestRuns_FrequencyPrerequisite(t *testing.T) {
	p, err := nist.Runs(parse(t, strings.Repeat("1", 20)))
	require.NoError(t, err)
	assert.Zero(t, p)
	assert.False(t, nist.Passed(p))
}

func TestTooShort(t *testing.T) {
	_, err := nist.Frequency(nil)
	assert.ErrorIs(t, err, nist.ErrTooShort)

	_, err = nist.Runs([]uint8{1})
	assert.ErrorIs(t, err, nist.ErrTooShort)
}

func TestInvalidBit(t *testing.T) {
	_, err := nist.Frequency([]uint8{0, 1, 2})
	assert.ErrorIs(t, err, nist.ErrInvalidBit)
}

func TestPrimitiveKeystream(t *testing.T) {
	spec := lfsr.Spec{Coefficients: []uint32{1, 1, 0, 0}, FieldOrder: 2}
	reg, err := lfsr.NewRegister(spec, []uint32{0, 0, 0, 1})
	require.NoError(t, err)

	// One full period of an m-sequence has 8 ones and 7 zeros.
	bits, err := lfsr.Bits(reg.Keystream(15))
	require.NoError(t, err)

	p, err := nist.Frequency(bits)
	require.NoError(t, err)
	assert.InDelta(t, 0.796253, p, 1e-6)
	assert.True(t, nist.Passed(p))
}
