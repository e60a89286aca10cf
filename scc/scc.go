// Package scc computes strongly connected components and topological
// levels over the Internal→Internal sub-graph of a loaded chunk set
// (§4.6). It is an offline utility some quench policies may consult to
// bound propagation depth inside a detected cycle; the wavefront executor
// itself does not require it to run.
package scc

import "github.com/mycos-engine/mycos/adjacency"

// Graph is the condensation of the Internal→Internal edge set: every
// Internal bit maps to a component id, and every component has a
// topological level (0 for components with no incoming edges from another
// component, increasing along the DAG).
type Graph struct {
	// Component maps a global Internal bit index to its component id.
	// Indexing is by global bit index directly (sparse but simple; the
	// Internals range is contiguous so callers subtract the Internals
	// base themselves if they want a dense local index).
	Component map[uint32]int
	// Level maps a component id to its topological level in the
	// condensation DAG.
	Level []int
}

// Build runs Tarjan's algorithm over the Internal→Internal edges present
// in tables (any trigger), then computes topological levels over the
// resulting condensation via longest-path relaxation in topological
// order (Kahn's algorithm). Internal bits with no Internal→Internal edges at all
// are omitted from Component (callers treat absence as "trivial,
// level 0").
func Build(tables *adjacency.Tables, internalLo, internalHi uint32) *Graph {
	adj := internalAdjacency(tables, internalLo, internalHi)

	t := &tarjan{
		adj:     adj,
		index:   make(map[uint32]int),
		low:     make(map[uint32]int),
		onStack: make(map[uint32]bool),
	}
	for v := range adj {
		if _, seen := t.index[v]; !seen {
			t.strongconnect(v)
		}
	}
	t.recordComponentEdges()

	g := &Graph{Component: t.comp, Level: computeLevels(t.sccEdges, t.numComponents)}
	return g
}

// internalAdjacency collects, for each Internal source bit, the set of
// distinct Internal target bits reached by any trigger/action. Duplicate
// (source, target) pairs across triggers collapse to one edge — the SCC
// graph only cares about reachability, not the specific effect.
func internalAdjacency(tables *adjacency.Tables, lo, hi uint32) map[uint32]map[uint32]struct{} {
	adj := make(map[uint32]map[uint32]struct{})
	add := func(csr adjacency.CSR) {
		for s := lo; s < hi; s++ {
			for _, e := range csr.Slice(s) {
				if e.ToBit < lo || e.ToBit >= hi {
					continue
				}
				if adj[s] == nil {
					adj[s] = make(map[uint32]struct{})
				}
				adj[s][e.ToBit] = struct{}{}
			}
		}
	}
	add(tables.On)
	add(tables.Off)
	add(tables.Toggle)
	return adj
}

type tarjan struct {
	adj       map[uint32]map[uint32]struct{}
	index     map[uint32]int
	low       map[uint32]int
	onStack   map[uint32]bool
	stack     []uint32
	nextIndex int

	comp          map[uint32]int
	numComponents int
	sccEdges      map[int]map[int]struct{}
}

// strongconnect is an iterative (explicit-stack) Tarjan SCC pass, avoiding
// recursion depth limits for large chunk sets.
func (t *tarjan) strongconnect(start uint32) {
	type frame struct {
		v        uint32
		children []uint32
		ci       int
	}
	if t.comp == nil {
		t.comp = make(map[uint32]int)
		t.sccEdges = make(map[int]map[int]struct{})
	}

	var work []*frame
	push := func(v uint32) *frame {
		t.index[v] = t.nextIndex
		t.low[v] = t.nextIndex
		t.nextIndex++
		t.stack = append(t.stack, v)
		t.onStack[v] = true
		children := make([]uint32, 0, len(t.adj[v]))
		for c := range t.adj[v] {
			children = append(children, c)
		}
		f := &frame{v: v, children: children}
		work = append(work, f)
		return f
	}

	push(start)
	for len(work) > 0 {
		f := work[len(work)-1]
		if f.ci < len(f.children) {
			w := f.children[f.ci]
			f.ci++
			if _, seen := t.index[w]; !seen {
				push(w)
				continue
			} else if t.onStack[w] {
				if t.index[w] < t.low[f.v] {
					t.low[f.v] = t.index[w]
				}
			}
			continue
		}

		// Done with f.v's children.
		work = work[:len(work)-1]
		if len(work) > 0 {
			parent := work[len(work)-1]
			if t.low[f.v] < t.low[parent.v] {
				t.low[parent.v] = t.low[f.v]
			}
		}

		if t.low[f.v] == t.index[f.v] {
			id := t.numComponents
			t.numComponents++
			for {
				n := len(t.stack) - 1
				w := t.stack[n]
				t.stack = t.stack[:n]
				t.onStack[w] = false
				t.comp[w] = id
				if w == f.v {
					break
				}
			}
		}
	}
}

// recordComponentEdges builds the condensation's inter-component edge set.
// It must run only after every DFS root has been visited and t.comp is
// fully populated — running it per-root (inside strongconnect) would read
// comp ids for not-yet-visited nodes as the map's zero value, aliasing them
// onto component 0 and corrupting the condensation.
func (t *tarjan) recordComponentEdges() {
	for v, targets := range t.adj {
		for w := range targets {
			cv, cw := t.comp[v], t.comp[w]
			if cv == cw {
				continue
			}
			if t.sccEdges[cv] == nil {
				t.sccEdges[cv] = make(map[int]struct{})
			}
			t.sccEdges[cv][cw] = struct{}{}
		}
	}
}

// computeLevels assigns each component a topological level: 0 if it has no
// incoming condensation edge, otherwise one more than the maximum level of
// any predecessor. The condensation of an SCC decomposition is always a
// DAG, so a simple relaxation to a fixed point terminates.
func computeLevels(edges map[int]map[int]struct{}, numComponents int) []int {
	level := make([]int, numComponents)
	indegree := make([]int, numComponents)
	for _, targets := range edges {
		for w := range targets {
			indegree[w]++
		}
	}

	queue := make([]int, 0, numComponents)
	for c := 0; c < numComponents; c++ {
		if indegree[c] == 0 {
			queue = append(queue, c)
		}
	}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for w := range edges[c] {
			if level[c]+1 > level[w] {
				level[w] = level[c] + 1
			}
			indegree[w]--
			if indegree[w] == 0 {
				queue = append(queue, w)
			}
		}
	}
	return level
}
