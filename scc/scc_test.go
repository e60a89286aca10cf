package scc

import (
	"testing"

	"github.com/mycos-engine/mycos/adjacency"
	"github.com/mycos-engine/mycos/bitspace"
	"github.com/mycos-engine/mycos/chunkbin"
)

func buildTables(t *testing.T, ni, nn uint32, conns []chunkbin.Connection) (*bitspace.Layout, *adjacency.Tables) {
	t.Helper()
	ch := &chunkbin.Chunk{Ni: ni, Nn: nn, Connections: conns}
	if err := chunkbin.ValidateChunk(ch); err != nil {
		t.Fatalf("ValidateChunk: %v", err)
	}
	layout := bitspace.Build([]bitspace.ChunkCounts{{Ni: ni, Nn: nn}})
	tables, err := adjacency.Build(layout, []*chunkbin.Chunk{ch}, nil)
	if err != nil {
		t.Fatalf("adjacency.Build: %v", err)
	}
	return layout, tables
}

// TestBuildTwoCycle checks a single 2-cycle collapses to one component.
func TestBuildTwoCycle(t *testing.T) {
	conns := []chunkbin.Connection{
		{FromSection: chunkbin.SecInternal, ToSection: chunkbin.SecInternal, Trigger: chunkbin.TriggerToggle, Action: chunkbin.ActionToggle, FromIndex: 0, ToIndex: 1, OrderTag: 0},
		{FromSection: chunkbin.SecInternal, ToSection: chunkbin.SecInternal, Trigger: chunkbin.TriggerToggle, Action: chunkbin.ActionToggle, FromIndex: 1, ToIndex: 0, OrderTag: 1},
	}
	layout, tables := buildTables(t, 0, 2, conns)
	lo := layout.GlobalInternalBase(0)
	hi := lo + 2

	g := Build(tables, lo, hi)
	if g.Component[lo] != g.Component[lo+1] {
		t.Fatalf("expected bits %d and %d in the same SCC, got components %d and %d", lo, lo+1, g.Component[lo], g.Component[lo+1])
	}
}

// TestBuildDisjointForestAssignsDistinctComponents reproduces the scenario
// that exposed a condensation-edge bug: two disjoint DFS trees (neither
// reachable from the other) must each get correct component ids, not have
// the second tree's edges aliased onto component 0 because its nodes were
// unvisited when the first tree's edges were recorded.
func TestBuildDisjointForestAssignsDistinctComponents(t *testing.T) {
	conns := []chunkbin.Connection{
		// Internal[0] -> Internal[1]: a simple chain, tree rooted at 0.
		{FromSection: chunkbin.SecInternal, ToSection: chunkbin.SecInternal, Trigger: chunkbin.TriggerOn, Action: chunkbin.ActionEnable, FromIndex: 0, ToIndex: 1, OrderTag: 0},
		// Internal[2] -> Internal[3]: a second, disjoint chain.
		{FromSection: chunkbin.SecInternal, ToSection: chunkbin.SecInternal, Trigger: chunkbin.TriggerOn, Action: chunkbin.ActionEnable, FromIndex: 2, ToIndex: 3, OrderTag: 0},
	}
	layout, tables := buildTables(t, 0, 4, conns)
	lo := layout.GlobalInternalBase(0)
	hi := lo + 4

	g := Build(tables, lo, hi)
	seen := map[int]bool{}
	for local := uint32(0); local < 4; local++ {
		seen[g.Component[lo+local]] = true
	}
	if len(seen) != 4 {
		t.Fatalf("expected 4 distinct trivial components across two disjoint chains, got %d: %+v", len(seen), g.Component)
	}
	// Level of the second node in each chain must be exactly one more than
	// the first, not corrupted by a spurious cross-tree edge.
	c0, c1 := g.Component[lo], g.Component[lo+1]
	if g.Level[c1] != g.Level[c0]+1 {
		t.Fatalf("chain 0->1: level[%d]=%d, level[%d]=%d, want level[c1]=level[c0]+1", c0, g.Level[c0], c1, g.Level[c1])
	}
	c2, c3 := g.Component[lo+2], g.Component[lo+3]
	if g.Level[c3] != g.Level[c2]+1 {
		t.Fatalf("chain 2->3: level[%d]=%d, level[%d]=%d, want level[c3]=level[c2]+1", c2, g.Level[c2], c3, g.Level[c3])
	}
}
