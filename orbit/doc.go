// Package orbit decomposes the state space of a finite state-update operator
// into orbits.
//
// An Operator maps integer-coded states in [0, q^d) to states. For an
// invertible operator (a permutation) every state lies on exactly one cycle
// and the orbits are those cycles. For a singular operator the state graph
// is a functional graph and each orbit is a cycle together with the
// transient tails that run into it.
//
// # Cycle finding
//
// FindPeriod measures the cycle through a state with Enumeration (step until
// the start recurs) or Floyd (tortoise and hare, then measure from the
// meeting point). Both are bounded at q^d operator applications.
//
// # Mapping
//
// MapSequential scans states in ascending order. MapParallel partitions the
// space into contiguous chunks, runs ProcessChunk on each chunk in its own
// goroutine with an operator rebuilt through a Factory, and combines the
// results with Merge:
//
//	factory := func() (orbit.Operator, error) { return lfsr.NewOperator(spec) }
//	m, err := orbit.MapParallel(ctx, factory, orbit.DefaultConfig())
//	if err != nil {
//	    op, _ := factory()
//	    m, err = orbit.MapSequential(ctx, op, orbit.DefaultConfig())
//	}
//
// Each orbit is identified by its representative, the smallest state code on
// its cycle, so results are reproducible across worker counts.
//
// # Invariant
//
// The sizes of all orbits sum to q^d. Every mapping run checks this and
// returns *InvariantError when it fails.
package orbit
