// Package nist implements two tests from NIST SP 800-22 for binary
// keystreams: the frequency (monobit) test and the runs test.
//
// Both return a p-value. A sequence passes at significance level Alpha when
// the p-value is at least Alpha.
package nist

import (
	"errors"
	"fmt"
	"math"
)

// Alpha is the significance level SP 800-22 recommends.
const Alpha = 0.01

var (
	ErrTooShort   = errors.New("sequence too short")
	ErrInvalidBit = errors.New("invalid bit")
)

// Passed reports whether p is at or above Alpha.
func Passed(p float64) bool {
	return p >= Alpha
}

// Frequency returns the p-value of the monobit test: whether ones and zeros
// occur in roughly equal proportion.
func Frequency(bits []uint8) (float64, error) {
	if err := check(bits, 1); err != nil {
		return 0, err
	}

	var sum int
	for _, b := range bits {
		sum += 2*int(b) - 1
	}

	n := float64(len(bits))
	obs := math.Abs(float64(sum)) / math.Sqrt(n)
	return math.Erfc(obs / math.Sqrt2), nil
}

// Runs returns the p-value of the runs test: whether oscillation between
// runs of ones and zeros is as fast as expected. A sequence that fails the
// frequency prerequisite has p-value 0.
func Runs(bits []uint8) (float64, error) {
	if err := check(bits, 2); err != nil {
		return 0, err
	}

	n := float64(len(bits))
	var ones int
	for _, b := range bits {
		ones += int(b)
	}
	pi := float64(ones) / n

	if math.Abs(pi-0.5) >= 2/math.Sqrt(n) {
		return 0, nil
	}

	runs := 1
	for k := 1; k < len(bits); k++ {
		if bits[k] != bits[k-1] {
			runs++
		}
	}

	spread := pi * (1 - pi)
	num := math.Abs(float64(runs) - 2*n*spread)
	den := 2 * math.Sqrt(2*n) * spread
	return math.Erfc(num / den), nil
}

func check(bits []uint8, min int) error {
	if len(bits) < min {
		return fmt.Errorf("%w: %d bits, need at least %d", ErrTooShort, len(bits), min)
	}
	for i, b := range bits {
		if b > 1 {
			return fmt.Errorf("%w: %d at position %d", ErrInvalidBit, b, i)
		}
	}
	return nil
}
