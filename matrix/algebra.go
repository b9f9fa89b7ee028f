package matrix

import "fmt"

// Determinant computes det(m) by Gaussian elimination over the field.
func (m *Matrix) Determinant() uint32 {
	f := m.f
	n := m.n
	a := m.Clone().data
	det := uint32(1)

	for col := 0; col < n; col++ {
		pivot := -1
		for row := col; row < n; row++ {
			if a[row*n+col] != 0 {
				pivot = row
				break
			}
		}
		if pivot < 0 {
			return 0
		}
		if pivot != col {
			for j := 0; j < n; j++ {
				a[col*n+j], a[pivot*n+j] = a[pivot*n+j], a[col*n+j]
			}
			det = f.Neg(det)
		}

		p := a[col*n+col]
		det = f.Mul(det, p)
		inv, _ := f.Inv(p)

		for row := col + 1; row < n; row++ {
			factor := f.Mul(a[row*n+col], inv)
			if factor == 0 {
				continue
			}
			for j := col; j < n; j++ {
				a[row*n+j] = f.Sub(a[row*n+j], f.Mul(factor, a[col*n+j]))
			}
		}
	}

	return det
}

// IsInvertible reports whether m is non-singular.
func (m *Matrix) IsInvertible() bool {
	return m.Determinant() != 0
}

// Order returns the multiplicative order of m, the smallest k >= 1 with
// m^k = I, given a known multiple of it. The order is found by dividing
// out prime factors of multiple while m raised to the quotient stays I.
// If m^multiple is not I the result is ErrOrderBound.
func (m *Matrix) Order(multiple uint64) (uint64, error) {
	if !m.IsInvertible() {
		return 0, ErrNotInvertible
	}

	id := Identity(m.f, m.n)
	if multiple == 0 || !m.Pow(multiple).Equal(id) {
		return 0, fmt.Errorf("%w: m^%d is not the identity", ErrOrderBound, multiple)
	}

	order := multiple
	for _, p := range primeFactors(multiple) {
		for order%p == 0 && m.Pow(order/p).Equal(id) {
			order /= p
		}
	}
	return order, nil
}

// primeFactors returns the distinct primes dividing n in increasing order.
func primeFactors(n uint64) []uint64 {
	var out []uint64
	for p := uint64(2); p*p <= n; p++ {
		if n%p != 0 {
			continue
		}
		out = append(out, p)
		for n%p == 0 {
			n /= p
		}
	}
	if n > 1 {
		out = append(out, n)
	}
	return out
}
