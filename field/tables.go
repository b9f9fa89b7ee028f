package field

import "fmt"

// buildTables searches monic degree-k polynomials over GF(p) in code order
// for one in which x generates the multiplicative group, then records the
// powers of x as exp/log tables.
func (f *Field) buildTables() error {
	p, k := f.char, f.degree
	n := f.order - 1

	exp := make([]uint32, 2*n)
	log := make([]uint32, f.order)
	modulus := make([]uint32, k)
	digits := make([]uint32, k)

	// candidates enumerate the k low coefficients; the constant term must be
	// non-zero or x is not invertible.
	for candidate := uint32(1); candidate < f.order; candidate++ {
		c := candidate
		for i := range modulus {
			modulus[i] = c % p
			c /= p
		}
		if modulus[0] == 0 {
			continue
		}

		if generates(p, modulus, digits, exp[:n]) {
			for i := uint32(0); i < n; i++ {
				exp[n+i] = exp[i]
				log[exp[i]] = i
			}
			f.exp = exp
			f.log = log
			return nil
		}
	}

	return fmt.Errorf("%w: no primitive polynomial of degree %d over GF(%d)", ErrInvalidOrder, k, p)
}

// generates walks the powers of x modulo the monic polynomial
// x^k + modulus(x), writing them into powers. It reports whether x has
// order exactly len(powers).
func generates(p uint32, modulus, digits, powers []uint32) bool {
	k := len(modulus)
	clear(digits)
	digits[0] = 1

	for i := range powers {
		code := encodeDigits(p, digits)
		if i > 0 && code == 1 {
			return false
		}
		powers[i] = code

		// multiply by x: shift up, then fold the overflow digit back in
		top := digits[k-1]
		for j := k - 1; j > 0; j-- {
			digits[j] = (digits[j-1] + (p-top)*modulus[j]%p) % p
		}
		digits[0] = (p - top) * modulus[0] % p
	}

	return encodeDigits(p, digits) == 1
}

func encodeDigits(p uint32, digits []uint32) uint32 {
	var code uint32
	for i := len(digits) - 1; i >= 0; i-- {
		code = code*p + digits[i]
	}
	return code
}
