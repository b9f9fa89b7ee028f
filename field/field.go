// Package field implements arithmetic in the finite field GF(q), where q is a
// prime or a prime power.
//
// Elements are encoded as integers in [0, q). For a prime field the code is
// the residue itself. For an extension field GF(p^k) the code is the base-p
// digit vector of the polynomial representative, least significant digit
// first, so 0 and 1 are always the additive and multiplicative identities.
//
//	f, err := field.New(9)
//	x := f.Mul(f.Add(a, b), f.Inv(c))
package field

import (
	"fmt"
	"math"
)

const (
	// MaxPrimeOrder bounds prime fields so products fit in a uint64.
	MaxPrimeOrder = math.MaxInt32

	// MaxExtensionOrder bounds extension fields, which keep exp/log tables.
	MaxExtensionOrder = 1 << 16
)

// Field is an immutable GF(q) instance. It is safe for concurrent use.
type Field struct {
	order  uint32
	char   uint32
	degree int

	// extension fields only
	exp []uint32 // exp[i] = g^i, doubled to skip a modulo in Mul
	log []uint32 // log[a] = i with g^i = a, log[0] unused
}

// New builds GF(order). The order must be a prime power.
func New(order uint32) (*Field, error) {
	p, k, ok := primePower(order)
	if !ok {
		return nil, fmt.Errorf("%w: %d is not a prime power", ErrInvalidOrder, order)
	}

	f := &Field{order: order, char: p, degree: k}
	if k == 1 {
		if order > MaxPrimeOrder {
			return nil, fmt.Errorf("%w: prime order %d exceeds %d", ErrInvalidOrder, order, MaxPrimeOrder)
		}
		return f, nil
	}

	if order > MaxExtensionOrder {
		return nil, fmt.Errorf("%w: extension order %d exceeds %d", ErrInvalidOrder, order, MaxExtensionOrder)
	}
	if err := f.buildTables(); err != nil {
		return nil, err
	}
	return f, nil
}

// MustNew is New for orders known to be valid at compile time.
func MustNew(order uint32) *Field {
	f, err := New(order)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Field) Order() uint32          { return f.order }
func (f *Field) Characteristic() uint32 { return f.char }
func (f *Field) Degree() int            { return f.degree }

// Contains reports whether a is a valid element code.
func (f *Field) Contains(a uint32) bool {
	return a < f.order
}

func (f *Field) Add(a, b uint32) uint32 {
	if f.degree == 1 {
		return uint32((uint64(a) + uint64(b)) % uint64(f.order))
	}
	if f.char == 2 {
		return a ^ b
	}
	return f.digitwise(a, b, func(x, y uint32) uint32 { return (x + y) % f.char })
}

func (f *Field) Neg(a uint32) uint32 {
	if a == 0 {
		return 0
	}
	if f.degree == 1 {
		return f.order - a
	}
	if f.char == 2 {
		return a
	}
	return f.digitwise(a, 0, func(x, _ uint32) uint32 { return (f.char - x) % f.char })
}

func (f *Field) Sub(a, b uint32) uint32 {
	return f.Add(a, f.Neg(b))
}

func (f *Field) Mul(a, b uint32) uint32 {
	if a == 0 || b == 0 {
		return 0
	}
	if f.degree == 1 {
		return uint32(uint64(a) * uint64(b) % uint64(f.order))
	}
	return f.exp[f.log[a]+f.log[b]]
}

// Inv returns the multiplicative inverse of a.
func (f *Field) Inv(a uint32) (uint32, error) {
	if a == 0 {
		return 0, ErrZeroInverse
	}
	if f.degree == 1 {
		return f.pow(a, uint64(f.order)-2), nil
	}
	n := f.order - 1
	return f.exp[(n-f.log[a])%n], nil
}

// Div returns a / b.
func (f *Field) Div(a, b uint32) (uint32, error) {
	inv, err := f.Inv(b)
	if err != nil {
		return 0, err
	}
	return f.Mul(a, inv), nil
}

func (f *Field) pow(a uint32, e uint64) uint32 {
	result := uint32(1)
	for e > 0 {
		if e&1 == 1 {
			result = f.Mul(result, a)
		}
		a = f.Mul(a, a)
		e >>= 1
	}
	return result
}

func (f *Field) String() string {
	if f.degree == 1 {
		return fmt.Sprintf("GF(%d)", f.order)
	}
	return fmt.Sprintf("GF(%d^%d)", f.char, f.degree)
}

func (f *Field) digitwise(a, b uint32, op func(x, y uint32) uint32) uint32 {
	var result, scale uint32 = 0, 1
	for i := 0; i < f.degree; i++ {
		result += op(a%f.char, b%f.char) * scale
		a /= f.char
		b /= f.char
		scale *= f.char
	}
	return result
}

// primePower reports whether n = p^k for a prime p and k >= 1.
func primePower(n uint32) (p uint32, k int, ok bool) {
	if n < 2 {
		return 0, 0, false
	}
	p = smallestFactor(n)
	for n%p == 0 {
		n /= p
		k++
	}
	return p, k, n == 1
}

func smallestFactor(n uint32) uint32 {
	if n%2 == 0 {
		return 2
	}
	for d := uint64(3); d*d <= uint64(n); d += 2 {
		if uint64(n)%d == 0 {
			return uint32(d)
		}
	}
	return n
}
