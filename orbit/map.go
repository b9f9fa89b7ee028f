package orbit

import (
	"cmp"
	"slices"
)

// Orbit is one connected component of the state graph: a cycle plus, for a
// singular operator, the transient states that fall into it.
type Orbit struct {
	Index int `json:"index"`

	// Representative is the smallest state code on the cycle.
	Representative uint64 `json:"representative"`

	// Period is the cycle length.
	Period uint64 `json:"period"`

	// Size counts every state in the component. It equals Period for an
	// invertible operator.
	Size uint64 `json:"size"`

	// Members lists the cycle starting at Representative in traversal
	// order. Full mode only.
	Members []uint64 `json:"members,omitempty"`

	// Transients lists the tail states in ascending order. Full mode and
	// singular operators only.
	Transients []uint64 `json:"transients,omitempty"`
}

// Map is the orbit decomposition of a whole state space.
type Map struct {
	Orbits     []Orbit `json:"orbits"`
	MaxPeriod  uint64  `json:"max_period"`
	PeriodSum  uint64  `json:"period_sum"`
	Size       uint64  `json:"size"`
	Mode       Mode    `json:"mode"`
	Invertible bool    `json:"invertible"`
}

// Periods returns the multiset of cycle lengths in ascending order.
func (m *Map) Periods() []uint64 {
	periods := make([]uint64, len(m.Orbits))
	for i, o := range m.Orbits {
		periods[i] = o.Period
	}
	slices.Sort(periods)
	return periods
}

// Order returns the least common multiple of the cycle periods: the
// smallest k >= 1 for which k steps return every cyclic state to itself.
// For an invertible operator this is its order as a permutation.
func (m *Map) Order() uint64 {
	order := uint64(1)
	for _, o := range m.Orbits {
		a, b := order, o.Period
		for b != 0 {
			a, b = b, a%b
		}
		order = order / a * o.Period
	}
	return order
}

// Lookup returns the orbit with the given representative.
func (m *Map) Lookup(representative uint64) (Orbit, bool) {
	i, found := slices.BinarySearchFunc(m.Orbits, representative, func(o Orbit, rep uint64) int {
		return cmp.Compare(o.Representative, rep)
	})
	if !found {
		return Orbit{}, false
	}
	return m.Orbits[i], true
}

// finish orders orbits by representative, numbers them and fills the
// aggregate fields, then checks that every state was accounted for once.
func (m *Map) finish() error {
	slices.SortFunc(m.Orbits, func(a, b Orbit) int {
		return cmp.Compare(a.Representative, b.Representative)
	})

	m.MaxPeriod, m.PeriodSum = 0, 0
	for i := range m.Orbits {
		o := &m.Orbits[i]
		o.Index = i
		m.PeriodSum += o.Size
		m.MaxPeriod = max(m.MaxPeriod, o.Period)
	}

	if m.PeriodSum != m.Size {
		return &InvariantError{Reason: "orbit sizes do not cover the state space", Got: m.PeriodSum, Want: m.Size}
	}
	return nil
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name.
func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
