// Package space enumerates the state space GF(q)^d of a degree-d register.
//
// A state is a uint64 code: the base-q number whose most significant digit
// is component 0. Numeric order of codes is lexicographic order of the
// tuples, so the smallest code in a set is its canonical representative.
package space

import (
	"fmt"
	"iter"
	"math/bits"

	"github.com/tailored-agentic-units/lfsr/field"
)

// MaxStates bounds q^d so that visited sets stay addressable.
const MaxStates uint64 = 1 << 40

// Space is the vector space GF(q)^dim.
type Space struct {
	f    *field.Field
	dim  int
	size uint64
}

func New(f *field.Field, dim int) (*Space, error) {
	if dim < 1 {
		return nil, fmt.Errorf("%w: dimension %d", ErrDimension, dim)
	}

	size := uint64(1)
	q := uint64(f.Order())
	for i := 0; i < dim; i++ {
		hi, lo := bits.Mul64(size, q)
		if hi != 0 || lo > MaxStates {
			return nil, fmt.Errorf("%w: %d^%d exceeds %d states", ErrTooLarge, q, dim, MaxStates)
		}
		size = lo
	}

	return &Space{f: f, dim: dim, size: size}, nil
}

func (s *Space) Field() *field.Field { return s.f }
func (s *Space) Dim() int            { return s.dim }
func (s *Space) Size() uint64        { return s.size }

// Encode maps a vector to its state code.
func (s *Space) Encode(v []uint32) uint64 {
	q := uint64(s.f.Order())
	var code uint64
	for _, x := range v[:s.dim] {
		code = code*q + uint64(x)
	}
	return code
}

// Decode writes the components of code into dst, which must have length
// at least Dim.
func (s *Space) Decode(code uint64, dst []uint32) {
	q := uint64(s.f.Order())
	for i := s.dim - 1; i >= 0; i-- {
		dst[i] = uint32(code % q)
		code /= q
	}
}

// Vector returns the components of code in a fresh slice.
func (s *Space) Vector(code uint64) []uint32 {
	v := make([]uint32, s.dim)
	s.Decode(code, v)
	return v
}

// Validate checks that v is a vector of this space.
func (s *Space) Validate(v []uint32) error {
	if len(v) != s.dim {
		return fmt.Errorf("%w: vector has %d components, want %d", ErrDimension, len(v), s.dim)
	}
	for i, x := range v {
		if !s.f.Contains(x) {
			return fmt.Errorf("%w: component %d=%d not in %v", ErrComponent, i, x, s.f)
		}
	}
	return nil
}

// States yields every state code in canonical order.
func (s *Space) States() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for code := uint64(0); code < s.size; code++ {
			if !yield(code) {
				return
			}
		}
	}
}
