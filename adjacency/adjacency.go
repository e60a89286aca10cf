// Package adjacency lowers a validated chunk set's connection tables and
// link table into the three CSR-by-trigger tables the wavefront executor
// expands against every round (§3, §4.2).
package adjacency

import (
	"fmt"
	"sort"

	"github.com/mycos-engine/mycos/bitspace"
	"github.com/mycos-engine/mycos/chunkbin"
)

// Effect is a candidate mutation against a target bit, carried from a
// single connection or link: (to_bit, order_tag, action).
type Effect struct {
	ToBit    uint32
	OrderTag uint32
	Action   chunkbin.Action
}

// CSR is the CSR-by-trigger adjacency for one trigger kind: offs[0..B] and
// a flat effects array, where a source bit s's out-edges are
// effects[offs[s]:offs[s+1]].
type CSR struct {
	Offs    []uint32
	Effects []Effect
}

// Slice returns the effect slice for source bit s.
func (c *CSR) Slice(s uint32) []Effect {
	return c.Effects[c.Offs[s]:c.Offs[s+1]]
}

// Tables holds the three per-trigger CSR tables built from a loaded chunk
// set plus the global bit layout they were built against.
type Tables struct {
	On, Off, Toggle CSR
	Layout          *bitspace.Layout
}

type lowered struct {
	source   uint32
	toWord   uint32
	toBit    uint32
	orderTag uint32
	action   chunkbin.Action
}

// Build lowers chunks and links into global-bit-keyed CSR tables. chunks
// must already have passed chunkbin.ValidateChunk, and links must already
// have passed chunkbin.ValidateLinks, against the same layout.
func Build(layout *bitspace.Layout, chunks []*chunkbin.Chunk, links []chunkbin.Link) (*Tables, error) {
	buckets := map[chunkbin.Trigger][]lowered{
		chunkbin.TriggerOn:     nil,
		chunkbin.TriggerOff:    nil,
		chunkbin.TriggerToggle: nil,
	}

	for chunkIdx, ch := range chunks {
		for connIdx, conn := range ch.Connections {
			fromGlobal, err := layout.Global(toBitspaceSection(conn.FromSection), chunkIdx, conn.FromIndex)
			if err != nil {
				return nil, fmt.Errorf("adjacency: chunk %d connection %d: %w", chunkIdx, connIdx, err)
			}
			toGlobal, err := layout.Global(toBitspaceSection(conn.ToSection), chunkIdx, conn.ToIndex)
			if err != nil {
				return nil, fmt.Errorf("adjacency: chunk %d connection %d: %w", chunkIdx, connIdx, err)
			}
			buckets[conn.Trigger] = append(buckets[conn.Trigger], lowered{
				source: fromGlobal, toWord: toGlobal >> 5, toBit: toGlobal,
				orderTag: conn.OrderTag, action: conn.Action,
			})
		}
	}

	for linkIdx, l := range links {
		fromGlobal, err := layout.Global(bitspace.Output, int(l.FromChunk), l.FromOutIdx)
		if err != nil {
			return nil, fmt.Errorf("adjacency: link %d: %w", linkIdx, err)
		}
		toGlobal, err := layout.Global(bitspace.Input, int(l.ToChunk), l.ToInIdx)
		if err != nil {
			return nil, fmt.Errorf("adjacency: link %d: %w", linkIdx, err)
		}
		buckets[l.Trigger] = append(buckets[l.Trigger], lowered{
			source: fromGlobal, toWord: toGlobal >> 5, toBit: toGlobal,
			orderTag: l.OrderTag, action: l.Action,
		})
	}

	_, _, _, total := layout.TotalBits()

	build := func(trig chunkbin.Trigger) (CSR, error) {
		entries := buckets[trig]
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].source != entries[j].source {
				return entries[i].source < entries[j].source
			}
			if entries[i].toWord != entries[j].toWord {
				return entries[i].toWord < entries[j].toWord
			}
			return entries[i].orderTag < entries[j].orderTag
		})

		if err := checkDistinctOrderTags(entries); err != nil {
			return CSR{}, fmt.Errorf("adjacency: trigger %v: %w", trig, err)
		}

		offs := make([]uint32, total+1)
		for _, e := range entries {
			offs[e.source+1]++
		}
		for i := uint32(0); i < total; i++ {
			offs[i+1] += offs[i]
		}

		effects := make([]Effect, len(entries))
		cursor := append([]uint32(nil), offs...)
		for _, e := range entries {
			effects[cursor[e.source]] = Effect{ToBit: e.toBit, OrderTag: e.orderTag, Action: e.action}
			cursor[e.source]++
		}
		return CSR{Offs: offs, Effects: effects}, nil
	}

	var t Tables
	t.Layout = layout
	var err error
	if t.On, err = build(chunkbin.TriggerOn); err != nil {
		return nil, err
	}
	if t.Off, err = build(chunkbin.TriggerOff); err != nil {
		return nil, err
	}
	if t.Toggle, err = build(chunkbin.TriggerToggle); err != nil {
		return nil, err
	}
	return &t, nil
}

// checkDistinctOrderTags enforces the adjacency contract (§4.2): for any
// two distinct connections/links sharing the same target bit and trigger,
// their order_tag values must be strictly distinct.
func checkDistinctOrderTags(entries []lowered) error {
	byTarget := append([]lowered(nil), entries...)
	sort.Slice(byTarget, func(i, j int) bool {
		if byTarget[i].toBit != byTarget[j].toBit {
			return byTarget[i].toBit < byTarget[j].toBit
		}
		return byTarget[i].orderTag < byTarget[j].orderTag
	})
	for i := 1; i < len(byTarget); i++ {
		if byTarget[i].toBit == byTarget[i-1].toBit && byTarget[i].orderTag == byTarget[i-1].orderTag {
			return fmt.Errorf("duplicate order_tag %d for target bit %d", byTarget[i].orderTag, byTarget[i].toBit)
		}
	}
	return nil
}

func toBitspaceSection(s chunkbin.Section) bitspace.Section {
	switch s {
	case chunkbin.SecInput:
		return bitspace.Input
	case chunkbin.SecInternal:
		return bitspace.Internal
	case chunkbin.SecOutput:
		return bitspace.Output
	default:
		return bitspace.Input
	}
}
