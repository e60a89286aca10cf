package bitspace

import "testing"

func TestBuildLayoutOffsets(t *testing.T) {
	counts := []ChunkCounts{
		{Ni: 2, Nn: 3, No: 1},
		{Ni: 4, Nn: 0, No: 2},
	}
	l := Build(counts)

	inputs, internals, outputs, total := l.TotalBits()
	if inputs != 6 || internals != 3 || outputs != 3 || total != 12 {
		t.Fatalf("unexpected section totals: in=%d int=%d out=%d total=%d", inputs, internals, outputs, total)
	}

	// Chunk 0's Input[1] is global index 1; chunk 1's Input[0] starts right
	// after chunk 0's two Input bits.
	g, err := l.Global(Input, 0, 1)
	if err != nil || g != 1 {
		t.Fatalf("Global(Input,0,1) = %d, %v, want 1, nil", g, err)
	}
	g, err = l.Global(Input, 1, 0)
	if err != nil || g != 2 {
		t.Fatalf("Global(Input,1,0) = %d, %v, want 2, nil", g, err)
	}

	// Internals occupy the range right after all Inputs (total 6 bits).
	g, err = l.Global(Internal, 0, 0)
	if err != nil || g != 6 {
		t.Fatalf("Global(Internal,0,0) = %d, %v, want 6, nil", g, err)
	}

	// Outputs occupy the range after Inputs (6) and Internals (3) = 9.
	g, err = l.Global(Output, 0, 0)
	if err != nil || g != 9 {
		t.Fatalf("Global(Output,0,0) = %d, %v, want 9, nil", g, err)
	}
	g, err = l.Global(Output, 1, 1)
	if err != nil || g != 11 {
		t.Fatalf("Global(Output,1,1) = %d, %v, want 11, nil", g, err)
	}
}

func TestGlobalOutOfRange(t *testing.T) {
	l := Build([]ChunkCounts{{Ni: 1, Nn: 1, No: 1}})
	if _, err := l.Global(Input, 0, 1); err == nil {
		t.Fatal("expected out-of-range error for local index 1 against Ni=1")
	}
	if _, err := l.Global(Input, 5, 0); err == nil {
		t.Fatal("expected out-of-range error for chunk index 5")
	}
}

// TestSectionOfRoundTrip checks SectionOf inverts Global for every bit
// across a multi-chunk layout, the property the Executor's commit dispatch
// depends on (§4.1).
func TestSectionOfRoundTrip(t *testing.T) {
	counts := []ChunkCounts{
		{Ni: 2, Nn: 3, No: 1},
		{Ni: 4, Nn: 0, No: 2},
		{Ni: 0, Nn: 5, No: 0},
	}
	l := Build(counts)
	sections := []Section{Input, Internal, Output}
	widths := func(c ChunkCounts, s Section) uint32 {
		switch s {
		case Input:
			return c.Ni
		case Internal:
			return c.Nn
		default:
			return c.No
		}
	}

	for chunkIdx, c := range counts {
		for _, sec := range sections {
			for local := uint32(0); local < widths(c, sec); local++ {
				g, err := l.Global(sec, chunkIdx, local)
				if err != nil {
					t.Fatalf("Global(%v,%d,%d): %v", sec, chunkIdx, local, err)
				}
				gotSec, gotChunk, gotLocal, err := l.SectionOf(g)
				if err != nil {
					t.Fatalf("SectionOf(%d): %v", g, err)
				}
				if gotSec != sec || gotChunk != chunkIdx || gotLocal != local {
					t.Fatalf("SectionOf(%d) = (%v,%d,%d), want (%v,%d,%d)", g, gotSec, gotChunk, gotLocal, sec, chunkIdx, local)
				}
			}
		}
	}
}
