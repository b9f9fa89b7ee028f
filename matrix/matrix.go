// Package matrix provides square matrices over a finite field and the
// shift-register update matrix used to drive LFSR state transitions.
//
// Vectors are row vectors and a step is S_{i+1} = S_i · M.
package matrix

import (
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/lfsr/field"
)

// Matrix is an n×n matrix over a field, stored row-major.
type Matrix struct {
	f    *field.Field
	n    int
	data []uint32
}

// New returns the n×n zero matrix.
func New(f *field.Field, n int) *Matrix {
	return &Matrix{f: f, n: n, data: make([]uint32, n*n)}
}

// Identity returns the n×n identity matrix.
func Identity(f *field.Field, n int) *Matrix {
	m := New(f, n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m
}

// FromRows builds a matrix from square row data.
func FromRows(f *field.Field, rows [][]uint32) (*Matrix, error) {
	n := len(rows)
	m := New(f, n)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d entries, want %d", ErrDimension, i, len(row), n)
		}
		for j, v := range row {
			if !f.Contains(v) {
				return nil, fmt.Errorf("%w: entry (%d,%d)=%d not in %v", ErrElement, i, j, v, f)
			}
			m.data[i*n+j] = v
		}
	}
	return m, nil
}

// Companion builds the update matrix of a shift register with the given
// feedback coefficients c_0..c_{d-1}:
//
//	s'_j     = s_{j+1}        for j < d-1
//	s'_{d-1} = Σ c_j · s_j
//
// The characteristic polynomial is x^d - Σ c_j x^j.
func Companion(f *field.Field, coefficients []uint32) (*Matrix, error) {
	d := len(coefficients)
	if d == 0 {
		return nil, fmt.Errorf("%w: no coefficients", ErrDimension)
	}

	m := New(f, d)
	for i, c := range coefficients {
		if !f.Contains(c) {
			return nil, fmt.Errorf("%w: coefficient %d=%d not in %v", ErrElement, i, c, f)
		}
		m.data[i*d+d-1] = c
		if i > 0 {
			m.data[i*d+i-1] = 1
		}
	}
	return m, nil
}

func (m *Matrix) Field() *field.Field { return m.f }
func (m *Matrix) Size() int           { return m.n }

func (m *Matrix) At(i, j int) uint32 {
	return m.data[i*m.n+j]
}

func (m *Matrix) Set(i, j int, v uint32) {
	m.data[i*m.n+j] = v
}

// Clone returns an independent copy.
func (m *Matrix) Clone() *Matrix {
	c := New(m.f, m.n)
	copy(c.data, m.data)
	return c
}

func (m *Matrix) Equal(o *Matrix) bool {
	if m.n != o.n || m.f.Order() != o.f.Order() {
		return false
	}
	for i, v := range m.data {
		if o.data[i] != v {
			return false
		}
	}
	return true
}

// Apply writes the row vector v·M into dst. dst and v must not alias.
func (m *Matrix) Apply(dst, v []uint32) {
	n := m.n
	for j := 0; j < n; j++ {
		var acc uint32
		for i := 0; i < n; i++ {
			if v[i] == 0 {
				continue
			}
			if e := m.data[i*n+j]; e != 0 {
				acc = m.f.Add(acc, m.f.Mul(v[i], e))
			}
		}
		dst[j] = acc
	}
}

// Mul returns m·o.
func (m *Matrix) Mul(o *Matrix) (*Matrix, error) {
	if m.n != o.n {
		return nil, fmt.Errorf("%w: %d×%d · %d×%d", ErrDimension, m.n, m.n, o.n, o.n)
	}
	n := m.n
	r := New(m.f, n)
	for i := 0; i < n; i++ {
		// row i of m·o is (row i of m)·o
		o.Apply(r.data[i*n:(i+1)*n], m.data[i*n:(i+1)*n])
	}
	return r, nil
}

// Pow returns m^e by square-and-multiply.
func (m *Matrix) Pow(e uint64) *Matrix {
	result := Identity(m.f, m.n)
	base := m.Clone()
	for e > 0 {
		if e&1 == 1 {
			result, _ = result.Mul(base)
		}
		base, _ = base.Mul(base)
		e >>= 1
	}
	return result
}

func (m *Matrix) String() string {
	var b strings.Builder
	for i := 0; i < m.n; i++ {
		b.WriteString(fmt.Sprint(m.data[i*m.n : (i+1)*m.n]))
		if i < m.n-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
