// Package lfsr describes linear (and affine) feedback shift registers over
// GF(q) and rebuilds their state-update operators from plain data.
//
// A Spec is the serializable description that crosses worker boundaries.
// An Operator is the live object built from it; each goroutine that steps
// states builds its own.
package lfsr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tailored-agentic-units/lfsr/field"
)

// Spec is the primitive description of a register: feedback coefficients
// c_0..c_{d-1}, the field order q, and an optional constant feedback term.
//
// Example JSON:
//
//	{"coefficients": [1, 1, 0, 0], "field_order": 2}
type Spec struct {
	Coefficients []uint32 `json:"coefficients" yaml:"coefficients"`
	FieldOrder   uint32   `json:"field_order" yaml:"field_order"`
	Constant     uint32   `json:"constant,omitempty" yaml:"constant,omitempty"`
}

// Degree is the register length d.
func (s Spec) Degree() int {
	return len(s.Coefficients)
}

// Affine reports whether the feedback has a non-homogeneous term.
func (s Spec) Affine() bool {
	return s.Constant != 0
}

// Validate checks the spec against its field without building an operator.
func (s Spec) Validate() error {
	if len(s.Coefficients) == 0 {
		return fmt.Errorf("%w: no coefficients", ErrInvalidSpec)
	}
	f, err := field.New(s.FieldOrder)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}
	for i, c := range s.Coefficients {
		if !f.Contains(c) {
			return fmt.Errorf("%w: coefficient %d=%d not in %v", ErrInvalidSpec, i, c, f)
		}
	}
	if !f.Contains(s.Constant) {
		return fmt.Errorf("%w: constant %d not in %v", ErrInvalidSpec, s.Constant, f)
	}
	return nil
}

// String renders the spec canonically, e.g. "GF(2)[1,1,0,0]" or
// "GF(3)[1,2,1]+2".
func (s Spec) String() string {
	parts := make([]string, len(s.Coefficients))
	for i, c := range s.Coefficients {
		parts[i] = strconv.FormatUint(uint64(c), 10)
	}
	out := fmt.Sprintf("GF(%d)[%s]", s.FieldOrder, strings.Join(parts, ","))
	if s.Constant != 0 {
		out += "+" + strconv.FormatUint(uint64(s.Constant), 10)
	}
	return out
}

// ParseCoefficients parses a comma separated list such as "1,1,0,1".
func ParseCoefficients(text string) ([]uint32, error) {
	fields := strings.Split(text, ",")
	out := make([]uint32, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSpec, f, err)
		}
		out = append(out, uint32(v))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty coefficient list", ErrInvalidSpec)
	}
	return out, nil
}
