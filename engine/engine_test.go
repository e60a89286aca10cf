package engine

import (
	"testing"

	"github.com/mycos-engine/mycos/chunkbin"
	"github.com/mycos-engine/mycos/state"
)

// TestCrossChunk wires two chunks through a Link (chunk 0's output drives
// chunk 1's input) and verifies the effect propagates across ticks through
// the full LoadChunks/LoadLinks/SetInputs/Tick/GetOutputs surface, rather
// than poking wavefront or adjacency directly.
func TestCrossChunk(t *testing.T) {
	// Chunk 0: one input bit Enable-wires an internal bit, which in turn
	// Enable-wires the chunk's one output bit.
	chunk0 := &chunkbin.Chunk{
		Ni: 1, Nn: 1, No: 1,
		Connections: []chunkbin.Connection{
			{FromSection: chunkbin.SecInput, ToSection: chunkbin.SecInternal, Trigger: chunkbin.TriggerOn, Action: chunkbin.ActionEnable, FromIndex: 0, ToIndex: 0, OrderTag: 0},
			{FromSection: chunkbin.SecInternal, ToSection: chunkbin.SecOutput, Trigger: chunkbin.TriggerOn, Action: chunkbin.ActionEnable, FromIndex: 0, ToIndex: 0, OrderTag: 0},
		},
	}

	// Chunk 1: one input bit Toggle-wired to its one internal bit.
	chunk1 := &chunkbin.Chunk{
		Ni: 1, Nn: 1, No: 0,
		Connections: []chunkbin.Connection{
			{FromSection: chunkbin.SecInput, ToSection: chunkbin.SecInternal, Trigger: chunkbin.TriggerOn, Action: chunkbin.ActionToggle, FromIndex: 0, ToIndex: 0, OrderTag: 0},
		},
	}

	if err := chunkbin.ValidateChunk(chunk0); err != nil {
		t.Fatalf("ValidateChunk(chunk0): %v", err)
	}
	if err := chunkbin.ValidateChunk(chunk1); err != nil {
		t.Fatalf("ValidateChunk(chunk1): %v", err)
	}

	blobs := [][]byte{chunkbin.EncodeChunk(chunk0), chunkbin.EncodeChunk(chunk1)}

	// Link: chunk 0's output bit 0 -> chunk 1's input bit 0, On-triggered, Enable.
	links := []chunkbin.Link{
		{FromChunk: 0, FromOutIdx: 0, Trigger: chunkbin.TriggerOn, Action: chunkbin.ActionEnable, ToChunk: 1, ToInIdx: 0, OrderTag: 0},
	}
	linkBlob := chunkbin.EncodeLinks(links)

	eng := New(DefaultConfig(), nil)
	if err := eng.LoadChunks(blobs); err != nil {
		t.Fatalf("LoadChunks: %v", err)
	}
	if err := eng.LoadLinks(linkBlob); err != nil {
		t.Fatalf("LoadLinks: %v", err)
	}

	if err := eng.SetInputs(0, 0, 1, []byte{1}); err != nil {
		t.Fatalf("SetInputs: %v", err)
	}

	// A single tick settles the whole cascade: chunk 0's input sets its
	// internal bit, which sets its output bit, which (via the Link) sets
	// chunk 1's input bit, which toggles chunk 1's internal bit — all
	// within one Tick's round loop, since the loop keeps running rounds
	// until no section (Input, Internal, or Output) changes any further.
	m, err := eng.Tick()
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	// The Internal->Output commit that settles chunk 0's cascade happens in
	// a later round than the Input->Internal commit, with no further
	// Internal change of its own; the cycle-hash ring must not mistake that
	// feed-forward round for a repeat of an earlier one.
	if m.Oscillator {
		t.Fatalf("expected no oscillation on this purely feed-forward cascade, got %+v", m)
	}
	out, err := eng.GetOutputs(0, 0, 1)
	if err != nil {
		t.Fatalf("GetOutputs: %v", err)
	}
	if out[0]&1 == 0 {
		t.Fatalf("expected chunk 0 output bit 0 set after the tick")
	}
	if !eng.store.GetBit(state.Internals, 1) {
		t.Fatalf("expected chunk 1's internal bit toggled on via the cross-chunk link")
	}

	// A second tick with no new inputs has nothing left to settle.
	m, err = eng.Tick()
	if err != nil {
		t.Fatalf("Tick 2: %v", err)
	}
	if m.Rounds != 0 || m.EffectsApplied != 0 {
		t.Fatalf("expected a steady-state tick to do no work, got %+v", m)
	}

	snap := eng.Snapshot()
	if snap.NumChunks != 2 {
		t.Fatalf("expected 2 chunks in snapshot, got %d", snap.NumChunks)
	}
	if snap.TotalInputBits != 2 || snap.TotalInternalBits != 2 || snap.TotalOutputBits != 1 {
		t.Fatalf("unexpected snapshot totals: %+v", snap)
	}
}
