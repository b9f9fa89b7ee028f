package orbit

import "iter"

// Chunk is a contiguous half-open range [Start, End) of state codes owned by
// one worker.
type Chunk struct {
	ID    int    `json:"id"`
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}

// Len returns the number of states in the chunk.
func (c Chunk) Len() uint64 {
	return c.End - c.Start
}

// Contains reports whether state falls inside the chunk.
func (c Chunk) Contains(state uint64) bool {
	return state >= c.Start && state < c.End
}

// States yields (sequence index, state code) pairs in ascending order.
func (c Chunk) States() iter.Seq2[int, uint64] {
	return func(yield func(int, uint64) bool) {
		for i, s := 0, c.Start; s < c.End; i, s = i+1, s+1 {
			if !yield(i, s) {
				return
			}
		}
	}
}

// Partition splits [0, size) into contiguous non-overlapping chunks of
// size/workers states each, the last chunk taking the remainder. It never
// returns more chunks than states, and returns none for an empty space or a
// non-positive worker count.
func Partition(size uint64, workers int) []Chunk {
	if size == 0 || workers <= 0 {
		return nil
	}

	n := uint64(workers)
	if n > size {
		n = size
	}

	width := size / n
	chunks := make([]Chunk, n)
	for i := range chunks {
		start := uint64(i) * width
		end := start + width
		if i == len(chunks)-1 {
			end = size
		}
		chunks[i] = Chunk{ID: i, Start: start, End: end}
	}
	return chunks
}
