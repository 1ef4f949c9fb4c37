package render

import "github.com/san-kum/mandelscope/internal/fractal"

// Stats summarises the outcomes of a render.
type Stats struct {
	Pixels  int
	Escaped int
	Bounded int
	// Histogram[i] counts pixels that escaped at iteration i.
	Histogram []int
}

// NewStats tallies outcomes. The histogram runs up to the latest escape seen, so
// its length does not depend on the iteration budget.
func NewStats(outcomes []fractal.Outcome) Stats {
	last := -1
	for _, o := range outcomes {
		if o.Escaped && o.Iteration > last {
			last = o.Iteration
		}
	}
	s := Stats{
		Pixels:    len(outcomes),
		Histogram: make([]int, last+1),
	}
	for _, o := range outcomes {
		if !o.Escaped {
			s.Bounded++
			continue
		}
		s.Escaped++
		s.Histogram[o.Iteration]++
	}
	return s
}

// BoundedFraction is Bounded/Pixels, or 0 for an empty render.
func (s Stats) BoundedFraction() float64 {
	if s.Pixels == 0 {
		return 0
	}
	return float64(s.Bounded) / float64(s.Pixels)
}
