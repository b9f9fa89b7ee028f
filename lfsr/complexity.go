package lfsr

import (
	"slices"

	"github.com/tailored-agentic-units/lfsr/field"
)

// LinearComplexity runs Berlekamp-Massey over GF(q) and returns the length
// L of the shortest register generating seq, together with its connection
// polynomial C(x) = 1 + C_1 x + ... + C_L x^L, which satisfies
//
//	s_n + C_1 s_{n-1} + ... + C_L s_{n-L} = 0   for n >= L.
func LinearComplexity(f *field.Field, seq []uint32) (int, []uint32) {
	c := []uint32{1}
	b := []uint32{1}
	l, m := 0, 1
	lastDiscrepancy := uint32(1)

	for n := range seq {
		d := seq[n]
		for i := 1; i <= l && i < len(c); i++ {
			d = f.Add(d, f.Mul(c[i], seq[n-i]))
		}

		if d == 0 {
			m++
			continue
		}

		coef, _ := f.Div(d, lastDiscrepancy)
		prev := slices.Clone(c)
		c = subtractShifted(f, c, b, coef, m)

		if 2*l <= n {
			l = n + 1 - l
			b = prev
			lastDiscrepancy = d
			m = 1
		} else {
			m++
		}
	}

	if len(c) < l+1 {
		c = append(c, make([]uint32, l+1-len(c))...)
	}
	return l, c[:l+1]
}

// FeedbackCoefficients converts a connection polynomial of length l into
// register coefficients c_0..c_{l-1} as used by Spec.
func FeedbackCoefficients(f *field.Field, connection []uint32) []uint32 {
	l := len(connection) - 1
	out := make([]uint32, l)
	for i := 1; i <= l; i++ {
		out[l-i] = f.Neg(connection[i])
	}
	return out
}

// subtractShifted returns c - coef·x^shift·b.
func subtractShifted(f *field.Field, c, b []uint32, coef uint32, shift int) []uint32 {
	need := len(b) + shift
	if need > len(c) {
		c = append(c, make([]uint32, need-len(c))...)
	}
	for i, v := range b {
		if v != 0 {
			c[i+shift] = f.Sub(c[i+shift], f.Mul(coef, v))
		}
	}
	return c
}
