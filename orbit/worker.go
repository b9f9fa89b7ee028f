package orbit

import (
	"context"
	"fmt"
	"slices"
)

// CycleRecord is one worker's report of a cycle it traversed.
type CycleRecord struct {
	// Representative is the smallest state on the cycle.
	Representative uint64 `json:"representative"`
	Period         uint64 `json:"period"`

	// Owned counts the states of the reporting worker's chunk attributed to
	// this cycle, tails included.
	Owned uint64 `json:"owned"`

	// Members is the cycle starting at Representative. Full mode only.
	Members []uint64 `json:"members,omitempty"`

	// Transients are chunk states on tails into the cycle. Full mode only.
	Transients []uint64 `json:"transients,omitempty"`
}

// ChunkResult is everything one worker reports for its chunk.
type ChunkResult struct {
	Chunk     Chunk         `json:"chunk"`
	Cycles    []CycleRecord `json:"cycles"`
	Processed uint64        `json:"processed"`
	Skipped   uint64        `json:"skipped"`
	Errors    []WorkerError `json:"-"`
}

// Err returns the first worker error, or nil.
func (r *ChunkResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return r.Errors[0]
}

// ChunkOptions carries the resolved run settings into a worker.
type ChunkOptions struct {
	Algorithm Algorithm
	Mode      Mode

	// Claims is the shared registry, or nil to disable claiming. It must be
	// nil for singular operators.
	Claims *Claims
}

// ProcessChunk finds every cycle reachable from the states of chunk.
//
// The worker rebuilds its own operator through factory and keeps a visited
// set covering only its chunk. Every cycle walk runs to completion even
// when it leaves the chunk, so the representative is the exact minimum over
// the whole cycle, but states outside the chunk are never marked. A cycle
// that crosses chunk boundaries may therefore be reported by several
// workers; Merge removes the duplicates.
//
// Failures do not panic: the result carries a WorkerError naming the state
// being processed, and the worker stops.
func ProcessChunk(ctx context.Context, chunk Chunk, factory Factory, opts ChunkOptions) ChunkResult {
	result := ChunkResult{Chunk: chunk}

	op, err := factory()
	if err != nil {
		result.Errors = append(result.Errors, WorkerError{
			Chunk: chunk.ID,
			State: chunk.Start,
			Err:   fmt.Errorf("%w: %w", ErrReconstruct, err),
		})
		return result
	}

	w := &worker{
		chunk:   chunk,
		op:      op,
		opts:    opts,
		alg:     opts.Algorithm.Resolve(op.Size()),
		visited: newBitset(chunk.Len()),
		records: make(map[uint64]int),
		result:  &result,
	}
	if !op.Invertible() {
		w.opts.Claims = nil
	}

	for seq, state := range chunk.States() {
		if uint64(seq)&cancelCheckMask == 0 {
			if err := ctx.Err(); err != nil {
				result.Errors = append(result.Errors, WorkerError{Chunk: chunk.ID, State: state, Err: err})
				return result
			}
		}

		result.Processed++
		if w.visited.test(uint64(seq)) {
			continue
		}
		if w.opts.Claims != nil && w.opts.Claims.Claimed(state) {
			result.Skipped++
			continue
		}

		if op.Invertible() {
			err = w.traverseCycle(state)
		} else {
			err = w.traverseTail(state)
		}
		if err != nil {
			result.Errors = append(result.Errors, WorkerError{Chunk: chunk.ID, State: state, Err: err})
			return result
		}
	}

	for i := range result.Cycles {
		slices.Sort(result.Cycles[i].Transients)
	}
	return result
}

type worker struct {
	chunk   Chunk
	op      Operator
	opts    ChunkOptions
	alg     Algorithm
	visited bitset

	// records maps a representative to its index in result.Cycles.
	records map[uint64]int
	result  *ChunkResult
}

func (w *worker) own(s uint64) (uint64, bool) {
	if !w.chunk.Contains(s) {
		return 0, false
	}
	return s - w.chunk.Start, true
}

// traverseCycle walks the cycle through start, which must lie on a cycle.
func (w *worker) traverseCycle(start uint64) error {
	var owned uint64
	var members []uint64
	least := start
	visit := func(s uint64) {
		if i, ok := w.own(s); ok {
			w.visited.set(i)
			owned++
		}
		if w.opts.Claims != nil {
			w.opts.Claims.Claim(s)
		}
		if w.opts.Mode == FullSequence {
			members = append(members, s)
		}
		least = min(least, s)
	}

	var period uint64
	var err error
	switch w.alg {
	case Floyd:
		period, err = floydPeriod(start, w.op)
		if err == nil && walk(start, w.op, period, visit) != start {
			err = &BoundError{Start: start, Bound: w.op.Size(), Algorithm: Floyd}
		}
	default:
		period, _, err = enumerate(start, w.op, visit)
	}
	if err != nil {
		return err
	}

	rec := CycleRecord{Representative: least, Period: period, Owned: owned}
	if w.opts.Mode == FullSequence {
		rec.Members = rotate(members)
	}
	w.result.Cycles = append(w.result.Cycles, rec)
	return nil
}

// traverseTail handles a start state of a singular operator, which may sit
// on a transient tail. It locates the eventual cycle with Floyd, then walks
// from start marking chunk states until it reaches one already attributed.
func (w *worker) traverseTail(start uint64) error {
	meet, err := meetingPoint(start, w.op)
	if err != nil {
		return err
	}
	period, least, err := cycleLength(meet, w.op)
	if err != nil {
		return err
	}
	mu := tailLength(start, meet, w.op)

	idx, ok := w.records[least]
	if !ok {
		rec := CycleRecord{Representative: least, Period: period}
		if w.opts.Mode == FullSequence {
			members := make([]uint64, 0, period)
			walk(least, w.op, period, func(s uint64) { members = append(members, s) })
			rec.Members = members
		}
		idx = len(w.result.Cycles)
		w.records[least] = idx
		w.result.Cycles = append(w.result.Cycles, rec)
	}
	rec := &w.result.Cycles[idx]

	cur := start
	for i := uint64(0); i < mu+period; i++ {
		if seq, ok := w.own(cur); ok {
			if w.visited.test(seq) {
				break
			}
			w.visited.set(seq)
			rec.Owned++
			if i < mu && w.opts.Mode == FullSequence {
				rec.Transients = append(rec.Transients, cur)
			}
		}
		cur = w.op.Step(cur)
	}
	return nil
}
