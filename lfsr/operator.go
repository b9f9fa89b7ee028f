package lfsr

import (
	"fmt"

	"github.com/tailored-agentic-units/lfsr/field"
	"github.com/tailored-agentic-units/lfsr/matrix"
	"github.com/tailored-agentic-units/lfsr/space"
)

// Operator is the state-update map S -> S·C (+ constant in the feedback
// position) acting on state codes.
//
// Operator keeps scratch vectors and is not safe for concurrent use.
type Operator struct {
	spec       Spec
	field      *field.Field
	space      *space.Space
	matrix     *matrix.Matrix
	invertible bool

	cur  []uint32
	next []uint32
}

// NewOperator rebuilds field, space and update matrix from spec.
func NewOperator(spec Spec) (*Operator, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	f, err := field.New(spec.FieldOrder)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	sp, err := space.New(f, spec.Degree())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	m, err := matrix.Companion(f, spec.Coefficients)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	d := spec.Degree()
	return &Operator{
		spec:       Spec{Coefficients: append([]uint32(nil), spec.Coefficients...), FieldOrder: spec.FieldOrder, Constant: spec.Constant},
		field:      f,
		space:      sp,
		matrix:     m,
		invertible: m.IsInvertible(),
		cur:        make([]uint32, d),
		next:       make([]uint32, d),
	}, nil
}

func (o *Operator) Spec() Spec             { return o.spec }
func (o *Operator) Field() *field.Field    { return o.field }
func (o *Operator) Space() *space.Space    { return o.space }
func (o *Operator) Matrix() *matrix.Matrix { return o.matrix }
func (o *Operator) Size() uint64           { return o.space.Size() }

// Invertible reports whether the operator permutes the state space. An
// affine map is a bijection exactly when its linear part is.
func (o *Operator) Invertible() bool { return o.invertible }

// Step applies the operator to a state code.
func (o *Operator) Step(state uint64) uint64 {
	o.space.Decode(state, o.cur)
	o.matrix.Apply(o.next, o.cur)
	if o.spec.Constant != 0 {
		last := len(o.next) - 1
		o.next[last] = o.field.Add(o.next[last], o.spec.Constant)
	}
	return o.space.Encode(o.next)
}

// StepVector applies the operator to a vector, returning a fresh slice.
func (o *Operator) StepVector(v []uint32) ([]uint32, error) {
	if err := o.space.Validate(v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	return o.space.Vector(o.Step(o.space.Encode(v))), nil
}

// Encode validates a vector and returns its state code.
func (o *Operator) Encode(v []uint32) (uint64, error) {
	if err := o.space.Validate(v); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	return o.space.Encode(v), nil
}
