package orbit

import "fmt"

// FindPeriod returns the length of the cycle containing start.
//
// Enumeration requires start to lie on a cycle, which holds for every state
// of an invertible operator. Floyd also accepts a state on a transient tail
// of a singular operator and reports the period of the cycle that tail runs
// into. For an operator reporting itself invertible both algorithms fail
// with a *BoundError when start does not return to itself. Every search is
// bounded at op.Size() applications.
func FindPeriod(start uint64, op Operator, alg Algorithm) (uint64, error) {
	switch alg.Resolve(op.Size()) {
	case Enumeration:
		period, _, err := enumerate(start, op, nil)
		return period, err
	case Floyd:
		period, err := floydPeriod(start, op)
		if err != nil {
			return 0, err
		}
		if op.Invertible() && walk(start, op, period, nil) != start {
			return 0, &BoundError{Start: start, Bound: op.Size(), Algorithm: Floyd}
		}
		return period, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, alg)
	}
}

// FindCycle returns the cycle members in traversal order starting at start,
// together with the period.
func FindCycle(start uint64, op Operator) ([]uint64, uint64, error) {
	var members []uint64
	period, _, err := enumerate(start, op, func(s uint64) {
		members = append(members, s)
	})
	if err != nil {
		return nil, 0, err
	}
	return members, period, nil
}

// enumerate walks from start until the trajectory returns to it, calling
// visit once per cycle member. It also tracks the smallest member.
func enumerate(start uint64, op Operator, visit func(uint64)) (period, least uint64, err error) {
	bound := op.Size()
	cur, least := start, start
	for {
		if visit != nil {
			visit(cur)
		}
		period++
		cur = op.Step(cur)
		if cur == start {
			return period, least, nil
		}
		if period >= bound {
			return 0, 0, &BoundError{Start: start, Bound: bound, Algorithm: Enumeration}
		}
		if cur < least {
			least = cur
		}
	}
}

// floydPeriod returns the period of the cycle the trajectory from start
// eventually enters.
func floydPeriod(start uint64, op Operator) (uint64, error) {
	meet, err := meetingPoint(start, op)
	if err != nil {
		return 0, err
	}
	period, _, err := cycleLength(meet, op)
	return period, err
}

// meetingPoint runs tortoise and hare from start and returns a state on
// the eventual cycle.
func meetingPoint(start uint64, op Operator) (uint64, error) {
	bound := op.Size()
	tortoise := op.Step(start)
	hare := op.Step(tortoise)
	for steps := uint64(1); tortoise != hare; steps++ {
		if steps > bound {
			return 0, &BoundError{Start: start, Bound: bound, Algorithm: Floyd}
		}
		tortoise = op.Step(tortoise)
		hare = op.Step(op.Step(hare))
	}
	return tortoise, nil
}

// cycleLength measures the cycle through onCycle and its smallest member.
func cycleLength(onCycle uint64, op Operator) (period, least uint64, err error) {
	bound := op.Size()
	period, least = 1, onCycle
	for probe := op.Step(onCycle); probe != onCycle; probe = op.Step(probe) {
		if period >= bound {
			return 0, 0, &BoundError{Start: onCycle, Bound: bound, Algorithm: Floyd}
		}
		period++
		if probe < least {
			least = probe
		}
	}
	return period, least, nil
}

// tailLength counts the steps from start to the first state on its cycle,
// given any state meet on that cycle reached after a multiple of the
// period.
func tailLength(start, meet uint64, op Operator) uint64 {
	var mu uint64
	for a, b := start, meet; a != b; mu++ {
		a = op.Step(a)
		b = op.Step(b)
	}
	return mu
}

// walk applies op n times from start, calling visit, when set, on each
// state before stepping, and returns the state reached.
func walk(start uint64, op Operator, n uint64, visit func(uint64)) uint64 {
	cur := start
	for i := uint64(0); i < n; i++ {
		if visit != nil {
			visit(cur)
		}
		cur = op.Step(cur)
	}
	return cur
}

// rotate returns members reordered to begin at the smallest one.
func rotate(members []uint64) []uint64 {
	if len(members) == 0 {
		return members
	}
	at := 0
	for i, s := range members {
		if s < members[at] {
			at = i
		}
	}
	out := make([]uint64, 0, len(members))
	out = append(out, members[at:]...)
	return append(out, members[:at]...)
}
