package weapons

// Pattern holds the precomputed horizontal recoil offsets for one weapon
// instance. The sequence is fixed at build time and repeats forever; firing
// never re-randomizes it, so a burst of N shots always walks the same N
// offsets from wherever the cursor currently points.
type Pattern struct {
	offsets []float64
	cursor  int
}

// BuildPattern enumerates offsets from span.Min to span.Max inclusive,
// stepping interval degrees. A zero span produces the single offset 0, as
// does a non-positive interval.
func BuildPattern(span RecoilSpan, interval float64) *Pattern {
	if span.zero() || interval <= 0 {
		return &Pattern{offsets: []float64{0}}
	}
	offsets := make([]float64, 0, int((span.Max-span.Min)/interval)+1)
	for v := span.Min; v <= span.Max; v += interval {
		offsets = append(offsets, v)
	}
	if len(offsets) == 0 {
		offsets = []float64{0}
	}
	return &Pattern{offsets: offsets}
}

// Next returns the offset under the cursor and advances it, wrapping back to
// the first entry after the last.
func (p *Pattern) Next() float64 {
	v := p.offsets[p.cursor]
	p.cursor = (p.cursor + 1) % len(p.offsets)
	return v
}

// Len returns the number of entries in the cycle.
func (p *Pattern) Len() int {
	return len(p.offsets)
}
