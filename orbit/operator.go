package orbit

// Operator is a state-update map on the integer-coded state space
// [0, Size()). Implementations need not be safe for concurrent use.
type Operator interface {
	Step(state uint64) uint64
	Size() uint64
	Invertible() bool
}

// Factory rebuilds an Operator from plain data. Parallel workers each call
// it once so that no live operator is shared between goroutines.
type Factory func() (Operator, error)
