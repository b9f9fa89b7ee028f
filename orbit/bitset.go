package orbit

// bitset is a fixed-size visited set over [0, n).
type bitset []uint64

func newBitset(n uint64) bitset {
	return make(bitset, (n+63)/64)
}

func (b bitset) test(i uint64) bool {
	return b[i>>6]&(1<<(i&63)) != 0
}

func (b bitset) set(i uint64) {
	b[i>>6] |= 1 << (i & 63)
}
