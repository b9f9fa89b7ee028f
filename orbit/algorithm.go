package orbit

import (
	"fmt"
	"strings"
)

// Algorithm selects the cycle-finding strategy.
type Algorithm int

const (
	// Auto resolves to Enumeration for small state spaces and Floyd for
	// large ones.
	Auto Algorithm = iota

	// Enumeration steps from the start state until it comes back.
	// One application per step, O(1) memory in period-only use.
	Enumeration

	// Floyd runs tortoise and hare to a meeting point, then measures the
	// cycle from there. About three applications per step, O(1) memory,
	// and it tolerates transient tails.
	Floyd
)

// autoEnumerationLimit is the largest state space for which Auto picks
// Enumeration.
const autoEnumerationLimit uint64 = 1 << 24

func (a Algorithm) String() string {
	switch a {
	case Auto:
		return "auto"
	case Enumeration:
		return "enumeration"
	case Floyd:
		return "floyd"
	default:
		return fmt.Sprintf("algorithm(%d)", int(a))
	}
}

// ParseAlgorithm accepts "auto", "enumeration" and "floyd". The empty string
// is Auto.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return Auto, nil
	case "enumeration", "enum":
		return Enumeration, nil
	case "floyd":
		return Floyd, nil
	default:
		return Auto, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

// Resolve replaces Auto with a concrete algorithm for a space of the given
// size. Concrete algorithms are returned unchanged.
func (a Algorithm) Resolve(size uint64) Algorithm {
	if a != Auto {
		return a
	}
	if size <= autoEnumerationLimit {
		return Enumeration
	}
	return Floyd
}

// Mode selects how much of each orbit is retained.
type Mode int

const (
	// PeriodOnly keeps scalar periods and sizes.
	PeriodOnly Mode = iota

	// FullSequence also keeps every member state, O(q^d) memory.
	FullSequence
)

func (m Mode) String() string {
	switch m {
	case PeriodOnly:
		return "period"
	case FullSequence:
		return "full"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts "period" and "full". The empty string is PeriodOnly.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "period":
		return PeriodOnly, nil
	case "full":
		return FullSequence, nil
	default:
		return PeriodOnly, fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
}
