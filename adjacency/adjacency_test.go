package adjacency

import (
	"testing"

	"github.com/mycos-engine/mycos/bitspace"
	"github.com/mycos-engine/mycos/chunkbin"
)

func TestBuildOnTriggerCSR(t *testing.T) {
	ch := &chunkbin.Chunk{
		Ni: 1, Nn: 2,
		Connections: []chunkbin.Connection{
			{FromSection: chunkbin.SecInput, ToSection: chunkbin.SecInternal, Trigger: chunkbin.TriggerOn, Action: chunkbin.ActionEnable, FromIndex: 0, ToIndex: 0, OrderTag: 1},
			{FromSection: chunkbin.SecInput, ToSection: chunkbin.SecInternal, Trigger: chunkbin.TriggerOn, Action: chunkbin.ActionEnable, FromIndex: 0, ToIndex: 1, OrderTag: 2},
		},
	}
	layout := bitspace.Build([]bitspace.ChunkCounts{{Ni: 1, Nn: 2}})
	tables, err := Build(layout, []*chunkbin.Chunk{ch}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Global bit 0 is the chunk's Input[0], the source of both connections.
	effects := tables.On.Slice(0)
	if len(effects) != 2 {
		t.Fatalf("expected 2 effects for source bit 0, got %d", len(effects))
	}
	if effects[0].ToBit != 1 || effects[1].ToBit != 2 {
		t.Fatalf("unexpected target ordering: %+v", effects)
	}

	if len(tables.Off.Slice(0)) != 0 || len(tables.Toggle.Slice(0)) != 0 {
		t.Fatal("expected no Off or Toggle effects for this chunk")
	}
}

func TestBuildDuplicateOrderTagRejected(t *testing.T) {
	chunks := []*chunkbin.Chunk{
		{
			Ni: 2, Nn: 1,
			Connections: []chunkbin.Connection{
				{FromSection: chunkbin.SecInput, ToSection: chunkbin.SecInternal, Trigger: chunkbin.TriggerOn, Action: chunkbin.ActionEnable, FromIndex: 0, ToIndex: 0, OrderTag: 1},
				{FromSection: chunkbin.SecInput, ToSection: chunkbin.SecInternal, Trigger: chunkbin.TriggerOn, Action: chunkbin.ActionDisable, FromIndex: 1, ToIndex: 0, OrderTag: 1},
			},
		},
	}
	layout := bitspace.Build([]bitspace.ChunkCounts{{Ni: 2, Nn: 1}})
	if _, err := Build(layout, chunks, nil); err == nil {
		t.Fatal("expected an error for two sources sharing (target bit, order_tag)")
	}
}

func TestBuildLowersLinks(t *testing.T) {
	chunks := []*chunkbin.Chunk{
		{Ni: 0, No: 1},
		{Ni: 1, Nn: 1, Connections: []chunkbin.Connection{
			{FromSection: chunkbin.SecInput, ToSection: chunkbin.SecInternal, Trigger: chunkbin.TriggerOn, Action: chunkbin.ActionEnable, FromIndex: 0, ToIndex: 0, OrderTag: 0},
		}},
	}
	links := []chunkbin.Link{
		{FromChunk: 0, FromOutIdx: 0, Trigger: chunkbin.TriggerOn, Action: chunkbin.ActionEnable, ToChunk: 1, ToInIdx: 0, OrderTag: 1},
	}
	layout := bitspace.Build([]bitspace.ChunkCounts{{No: 1}, {Ni: 1, Nn: 1}})
	tables, err := Build(layout, chunks, links)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Chunk 0's Output[0] is global bit 2 (after the one-bit Inputs block
	// and the one-bit Internals block, both chunk 1's); its On effect must
	// target chunk 1's Input[0] (global bit 0).
	outBit, err := layout.Global(bitspace.Output, 0, 0)
	if err != nil {
		t.Fatalf("Global: %v", err)
	}
	effects := tables.On.Slice(outBit)
	if len(effects) != 1 {
		t.Fatalf("expected 1 effect lowered from the link, got %d", len(effects))
	}
	wantTarget, _ := layout.Global(bitspace.Input, 1, 0)
	if effects[0].ToBit != wantTarget {
		t.Fatalf("link effect targets bit %d, want %d", effects[0].ToBit, wantTarget)
	}
}
