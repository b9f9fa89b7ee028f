package orbit

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for orbit analysis.
var (
	ErrBoundExceeded      = errors.New("cycle search exceeded state-space bound")
	ErrInvariantViolation = errors.New("orbit invariant violated")
	ErrReconstruct        = errors.New("operator reconstruction failed")
	ErrUnknownAlgorithm   = errors.New("unknown cycle-finding algorithm")
	ErrUnknownMode        = errors.New("unknown mapping mode")
	ErrNoWorkers          = errors.New("invalid worker count")
	ErrSpaceTooLarge      = errors.New("state space too large")
)

// BoundError reports a cycle search that applied the operator q^d times
// without returning to its start. For an invertible operator this means the
// operator or field arithmetic is broken.
type BoundError struct {
	Start     uint64
	Bound     uint64
	Algorithm Algorithm
}

func (e *BoundError) Error() string {
	return fmt.Sprintf("%s search from state %d did not close within %d steps", e.Algorithm, e.Start, e.Bound)
}

func (e *BoundError) Unwrap() error {
	return ErrBoundExceeded
}

// InvariantError reports a state-accounting failure: orbit sizes that do
// not sum to q^d, or inconsistent cycle records. It points at partitioning,
// visitation or deduplication rather than at a single cycle search.
type InvariantError struct {
	Reason string
	Got    uint64
	Want   uint64
}

func (e *InvariantError) Error() string {
	if e.Got == 0 && e.Want == 0 {
		return fmt.Sprintf("%v: %s", ErrInvariantViolation, e.Reason)
	}
	return fmt.Sprintf("%v: %s: got %d, want %d", ErrInvariantViolation, e.Reason, e.Got, e.Want)
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolation
}

// WorkerError captures a failure inside one parallel worker, tied to the
// chunk and the state being processed when it happened.
type WorkerError struct {
	Chunk int
	State uint64
	Err   error
}

func (e WorkerError) Error() string {
	return fmt.Sprintf("chunk %d, state %d: %v", e.Chunk, e.State, e.Err)
}

func (e WorkerError) Unwrap() error {
	return e.Err
}

// ParallelError aggregates worker failures. Any worker failure makes the
// parallel result untrustworthy.
//
// Error message formats:
//   - Single failure: "parallel orbit mapping failed: chunk 2, state 17: ..."
//   - Multiple failures: "parallel orbit mapping failed: 3 workers failed with
//     2 error types: 'x' (2 workers), 'y' (1 worker)"
type ParallelError struct {
	Errors []WorkerError
}

func (e *ParallelError) Error() string {
	if len(e.Errors) == 0 {
		return "parallel orbit mapping failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("parallel orbit mapping failed: %v", e.Errors[0])
	}

	errorCounts := make(map[string]int)
	for _, workerErr := range e.Errors {
		errorCounts[workerErr.Err.Error()]++
	}

	type errorSummary struct {
		msg   string
		count int
	}
	var summaries []errorSummary
	for msg, count := range errorCounts {
		summaries = append(summaries, errorSummary{msg, count})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].count == summaries[j].count {
			return summaries[i].msg < summaries[j].msg
		}
		return summaries[i].count > summaries[j].count
	})

	var parts []string
	for _, s := range summaries {
		if s.count == 1 {
			parts = append(parts, fmt.Sprintf("'%s' (1 worker)", s.msg))
		} else {
			parts = append(parts, fmt.Sprintf("'%s' (%d workers)", s.msg, s.count))
		}
	}

	return fmt.Sprintf(
		"parallel orbit mapping failed: %d workers failed with %d error types: %s",
		len(e.Errors), len(errorCounts), strings.Join(parts, ", "),
	)
}

// Unwrap returns every underlying worker error so errors.Is and errors.As
// search across all of them.
func (e *ParallelError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, workerErr := range e.Errors {
		errs[i] = workerErr.Err
	}
	return errs
}
