package orbit

import (
	"fmt"
	"slices"
)

// Merge combines per-chunk results into one Map.
//
// Cycle records with the same representative and period describe the same
// orbit and are deduplicated, their owned counts and transients summed. A
// representative reported with two different periods is an invariant
// violation. Any worker error aborts the merge with a *ParallelError.
//
// For an invertible operator each orbit's Size is its Period, and when no
// worker skipped a state through the claim registry the owned counts must
// add up to the period exactly. For a singular operator Size is the sum of
// owned counts. In both cases the sizes must cover the state space.
func Merge(results []ChunkResult, size uint64, invertible bool, mode Mode) (*Map, error) {
	var failures []WorkerError
	var skipped uint64
	for _, r := range results {
		failures = append(failures, r.Errors...)
		skipped += r.Skipped
	}
	if len(failures) > 0 {
		return nil, &ParallelError{Errors: failures}
	}

	m := &Map{Size: size, Mode: mode, Invertible: invertible}
	index := make(map[uint64]int)
	owned := make([]uint64, 0)

	for _, r := range results {
		for _, rec := range r.Cycles {
			cycleRecords.Inc()

			if i, ok := index[rec.Representative]; ok {
				o := &m.Orbits[i]
				if o.Period != rec.Period {
					return nil, &InvariantError{
						Reason: fmt.Sprintf("representative %d reported with conflicting periods", rec.Representative),
						Got:    rec.Period,
						Want:   o.Period,
					}
				}
				duplicateRecords.Inc()
				owned[i] += rec.Owned
				if o.Members == nil && rec.Members != nil {
					o.Members = slices.Clone(rec.Members)
				}
				o.Transients = append(o.Transients, rec.Transients...)
				continue
			}

			index[rec.Representative] = len(m.Orbits)
			owned = append(owned, rec.Owned)
			m.Orbits = append(m.Orbits, Orbit{
				Representative: rec.Representative,
				Period:         rec.Period,
				Members:        slices.Clone(rec.Members),
				Transients:     slices.Clone(rec.Transients),
			})
		}
	}

	for i := range m.Orbits {
		o := &m.Orbits[i]
		if !invertible {
			o.Size = owned[i]
			slices.Sort(o.Transients)
			continue
		}

		o.Size = o.Period
		if skipped == 0 && owned[i] != o.Period {
			return nil, &InvariantError{
				Reason: fmt.Sprintf("cycle %d states owned across chunks do not match its period", o.Representative),
				Got:    owned[i],
				Want:   o.Period,
			}
		}
	}

	if err := m.finish(); err != nil {
		return nil, err
	}
	return m, nil
}
