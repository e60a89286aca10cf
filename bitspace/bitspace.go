// Package bitspace assigns every Input, Internal, and Output bit of a
// loaded chunk set a single global bit index. The three sections occupy
// disjoint, contiguous ranges in a fixed order (Inputs, then Internals,
// then Outputs) so the wavefront executor can route a commit to the right
// section with a range test instead of a per-bit tag.
package bitspace

import "fmt"

// Section identifies which bit array a local index belongs to.
type Section uint8

const (
	Input Section = iota
	Internal
	Output
)

func (s Section) String() string {
	switch s {
	case Input:
		return "input"
	case Internal:
		return "internal"
	case Output:
		return "output"
	default:
		return "unknown"
	}
}

// ChunkCounts is the bit count triple a chunk contributes to the layout.
type ChunkCounts struct {
	Ni, No, Nn uint32
}

// Layout holds the prefix-sum base offsets for every loaded chunk and the
// size of each section's global range. Section ranges are ordered
// Inputs-block, Internals-block, Outputs-block; this ordering is part of
// the engine's public contract (§4.1) and must not change.
type Layout struct {
	baseIn  []uint32 // per-chunk base offset within the Inputs block
	baseInt []uint32 // per-chunk base offset within the Internals block
	baseOut []uint32 // per-chunk base offset within the Outputs block
	counts  []ChunkCounts

	totalIn, totalInt, totalOut uint32
}

// Build computes base offsets for a loaded chunk set via prefix sums over
// Ni, Nn, No respectively.
func Build(counts []ChunkCounts) *Layout {
	l := &Layout{
		baseIn:  make([]uint32, len(counts)),
		baseInt: make([]uint32, len(counts)),
		baseOut: make([]uint32, len(counts)),
		counts:  append([]ChunkCounts(nil), counts...),
	}
	var in, in2, out uint32
	for i, c := range counts {
		l.baseIn[i] = in
		l.baseInt[i] = in2
		l.baseOut[i] = out
		in += c.Ni
		in2 += c.Nn
		out += c.No
	}
	l.totalIn, l.totalInt, l.totalOut = in, in2, out
	return l
}

// NumChunks returns the number of chunks in this layout.
func (l *Layout) NumChunks() int { return len(l.counts) }

// TotalBits returns the global bit count of each section, and the grand total.
func (l *Layout) TotalBits() (inputs, internals, outputs, total uint32) {
	return l.totalIn, l.totalInt, l.totalOut, l.totalIn + l.totalInt + l.totalOut
}

// Global returns the global bit index for (section, chunk, local index).
func (l *Layout) Global(section Section, chunk int, local uint32) (uint32, error) {
	if chunk < 0 || chunk >= len(l.counts) {
		return 0, fmt.Errorf("bitspace: chunk index %d out of range [0,%d)", chunk, len(l.counts))
	}
	c := l.counts[chunk]
	switch section {
	case Input:
		if local >= c.Ni {
			return 0, fmt.Errorf("bitspace: input local index %d out of range for chunk %d (Ni=%d)", local, chunk, c.Ni)
		}
		return l.baseIn[chunk] + local, nil
	case Internal:
		if local >= c.Nn {
			return 0, fmt.Errorf("bitspace: internal local index %d out of range for chunk %d (Nn=%d)", local, chunk, c.Nn)
		}
		// Internals occupy the range immediately after all Inputs.
		return l.totalIn + l.baseInt[chunk] + local, nil
	case Output:
		if local >= c.No {
			return 0, fmt.Errorf("bitspace: output local index %d out of range for chunk %d (No=%d)", local, chunk, c.No)
		}
		// Outputs occupy the range after all Inputs and all Internals.
		return l.totalIn + l.totalInt + l.baseOut[chunk] + local, nil
	default:
		return 0, fmt.Errorf("bitspace: unknown section %d", section)
	}
}

// SectionOf classifies a global bit index into its section, chunk, and
// local offset, by range test against the fixed Inputs/Internals/Outputs
// ordering. This is the data-oblivious dispatch the Executor's commit step
// relies on (§4.1, §9 "global bit numbering").
func (l *Layout) SectionOf(global uint32) (section Section, chunk int, local uint32, err error) {
	_, _, _, total := l.TotalBits()
	if global >= total {
		return 0, 0, 0, fmt.Errorf("bitspace: global index %d out of range [0,%d)", global, total)
	}
	switch {
	case global < l.totalIn:
		return sectionLocate(l.baseIn, l.counts, global, Input, func(c ChunkCounts) uint32 { return c.Ni })
	case global < l.totalIn+l.totalInt:
		return sectionLocate(l.baseInt, l.counts, global-l.totalIn, Internal, func(c ChunkCounts) uint32 { return c.Nn })
	default:
		return sectionLocate(l.baseOut, l.counts, global-l.totalIn-l.totalInt, Output, func(c ChunkCounts) uint32 { return c.No })
	}
}

// sectionLocate finds which chunk a within-section offset belongs to via a
// linear scan of base offsets. Chunk counts are small in practice (tens to
// low thousands); a binary search over baseX would also work but isn't
// worth the complexity at this scale.
func sectionLocate(base []uint32, counts []ChunkCounts, offset uint32, section Section, width func(ChunkCounts) uint32) (Section, int, uint32, error) {
	for i := len(base) - 1; i >= 0; i-- {
		if offset >= base[i] {
			local := offset - base[i]
			if local >= width(counts[i]) {
				return 0, 0, 0, fmt.Errorf("bitspace: offset %d falls in padding past chunk %d", offset, i)
			}
			return section, i, local, nil
		}
	}
	return 0, 0, 0, fmt.Errorf("bitspace: offset %d not owned by any chunk", offset)
}

// BaseInternal returns chunk i's base offset within the Internals block
// (local, not global) — used by the SCC utility which only ever looks at
// the Internal→Internal sub-graph.
func (l *Layout) BaseInternal(chunk int) uint32 { return l.baseInt[chunk] }

// GlobalInternalBase returns the global index of the first Internal bit of
// chunk i.
func (l *Layout) GlobalInternalBase(chunk int) uint32 { return l.totalIn + l.baseInt[chunk] }
