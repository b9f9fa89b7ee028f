package lfsr

import "fmt"

// Register clocks an Operator from a seed state and emits one field
// element per step: component 0 of the state before the step.
type Register struct {
	op    *Operator
	state uint64
}

// NewRegister builds a register for spec, seeded with the given state.
func NewRegister(spec Spec, seed []uint32) (*Register, error) {
	op, err := NewOperator(spec)
	if err != nil {
		return nil, err
	}
	state, err := op.Encode(seed)
	if err != nil {
		return nil, err
	}
	return &Register{op: op, state: state}, nil
}

func (r *Register) Operator() *Operator { return r.op }

// State returns the current register contents.
func (r *Register) State() []uint32 {
	return r.op.Space().Vector(r.state)
}

// Next emits the output digit and advances the register.
func (r *Register) Next() uint32 {
	out := uint32(r.state / r.lowWeight())
	r.state = r.op.Step(r.state)
	return out
}

// Keystream returns the next n output digits.
func (r *Register) Keystream(n int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = r.Next()
	}
	return out
}

// Bits converts a binary keystream to bits, rejecting digits above 1.
func Bits(stream []uint32) ([]uint8, error) {
	bits := make([]uint8, len(stream))
	for i, v := range stream {
		if v > 1 {
			return nil, fmt.Errorf("%w: digit %d at position %d is not a bit", ErrInvalidState, v, i)
		}
		bits[i] = uint8(v)
	}
	return bits, nil
}

// lowWeight is q^(d-1), the place value of component 0.
func (r *Register) lowWeight() uint64 {
	return r.op.Size() / uint64(r.op.Field().Order())
}
