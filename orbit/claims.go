package orbit

import "sync/atomic"

// Claims is a lock-free registry of states already taken by some worker's
// cycle traversal. It is advisory: a worker that sees a claimed state skips
// it, but a missed claim only produces a duplicate cycle record that the
// merger removes.
//
// Claims are sound only for invertible operators, where every state lies on
// exactly one cycle and the traversal that claimed it reports that cycle.
type Claims struct {
	words []atomic.Uint64
	size  uint64
}

// NewClaims returns an empty registry over [0, size).
func NewClaims(size uint64) *Claims {
	return &Claims{
		words: make([]atomic.Uint64, (size+63)/64),
		size:  size,
	}
}

// Claim marks state and reports whether this call set it.
func (c *Claims) Claim(state uint64) bool {
	mask := uint64(1) << (state & 63)
	return c.words[state>>6].Or(mask)&mask == 0
}

// Claimed reports whether any worker has claimed state.
func (c *Claims) Claimed(state uint64) bool {
	return c.words[state>>6].Load()&(1<<(state&63)) != 0
}

// Size returns the number of states the registry covers.
func (c *Claims) Size() uint64 {
	return c.size
}
