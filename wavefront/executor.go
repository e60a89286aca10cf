// Package wavefront drives the per-tick round loop: edge detection over the
// packed state store, CSR-by-trigger expansion, last-writer-wins conflict
// resolution, word-level commit, and cycle-hash oscillation detection
// (§4.4, §4.5). It is the engine's executor — every other core package
// exists to feed it a Layout, a set of Tables, and a Store.
package wavefront

import (
	"sort"

	"github.com/mycos-engine/mycos/adjacency"
	"github.com/mycos-engine/mycos/bitspace"
	"github.com/mycos-engine/mycos/chunkbin"
	"github.com/mycos-engine/mycos/state"
)

// Executor owns one tick's worth of round-loop state against a fixed
// Layout/Tables/Store triple. It is reused across ticks; scratch slices are
// grown, never reallocated from scratch, to keep steady-state ticks
// allocation-light the way the teacher's GigagasExecutor reuses its
// per-block result buffers.
type Executor struct {
	layout *bitspace.Layout
	tables *adjacency.Tables
	store  *state.Store
	cfg    Config
	ring   *ring

	proposals []proposal

	// shadowInput and shadowOutput are the executor's own round-to-round
	// "previous value" baselines for the Inputs and Outputs sections.
	// Store's real Prev for these two sections is host contract (refreshed
	// only at Finalize, so get_outputs sees a stable post-tick snapshot and
	// set_inputs always lands against a known-old Curr) and must not be
	// touched mid-tick. Internal's Prev can self-promote every round
	// because nothing outside the executor ever reads it; Inputs and
	// Outputs cannot, so they get a private shadow copy that plays the
	// same role without disturbing the host-visible buffers.
	shadowInput, shadowOutput []uint32
}

// proposal is one candidate effect carried forward from CSR expansion,
// before resolution.
type proposal struct {
	toBit    uint32
	orderTag uint32
	action   chunkbin.Action
}

// New builds an Executor over an already-populated Store/Tables/Layout
// triple. The cycle-hash ring persists for the Executor's lifetime, so
// oscillation spanning tick boundaries is still detected (§4.4 step 6).
func New(layout *bitspace.Layout, tables *adjacency.Tables, store *state.Store, cfg Config) *Executor {
	return &Executor{
		layout: layout,
		tables: tables,
		store:  store,
		cfg:    cfg,
		ring:   newRing(cfg.CycleWindow),
	}
}

// SetPolicy implements the host operation set_policy: it changes which
// quench strategy future oscillation detections resolve with, without
// resetting the cycle-hash ring.
func (e *Executor) SetPolicy(p Policy) { e.cfg.Policy = p }

// edgeSet partitions the source bits that changed since their section's
// Prev snapshot into rising (0→1), falling (1→0), and the union of both —
// the three source sets the On/Off/Toggle CSR tables are each keyed by.
type edgeSet struct {
	rising, falling, any []uint32
}

// detectEdges scans curr against prev (same section, same width) for
// bit-level differences and classifies each changed bit's direction
// (§4.4 step 1).
func detectEdges(curr, prev []uint32, nbits, base uint32) edgeSet {
	var es edgeSet
	for w := range curr {
		diff := curr[w] ^ prev[w]
		if diff == 0 {
			continue
		}
		for b := uint32(0); b < 32; b++ {
			local := uint32(w)*32 + b
			if local >= nbits {
				break
			}
			if diff&(1<<b) == 0 {
				continue
			}
			g := base + local
			es.any = append(es.any, g)
			if curr[w]&(1<<b) != 0 {
				es.rising = append(es.rising, g)
			} else {
				es.falling = append(es.falling, g)
			}
		}
	}
	return es
}

func mergeEdges(into *edgeSet, from edgeSet) {
	into.rising = append(into.rising, from.rising...)
	into.falling = append(into.falling, from.falling...)
	into.any = append(into.any, from.any...)
}

// internalsEqual reports whether two Internals word snapshots are
// bit-identical. Used to gate the cycle-hash ring on an actual Internal
// change rather than on "this round produced a winner" (a winner landing
// entirely in Inputs or Outputs leaves Internals untouched).
func internalsEqual(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// sectionBase returns the global-index base of a state.Section, so
// detectEdges can report global bit indices directly.
func sectionBase(layout *bitspace.Layout, sec state.Section) uint32 {
	inputs, internals, _, _ := layout.TotalBits()
	switch sec {
	case state.Inputs:
		return 0
	case state.Internals:
		return inputs
	case state.Outputs:
		return inputs + internals
	default:
		return 0
	}
}

// expand walks one trigger's CSR table over a source set, appending every
// matching effect to e.proposals. It is the "two-pass" expansion's second
// pass; the first pass (counting) is folded into the MaxEffects guard
// check in Tick so a capacity breach is caught before any allocation past
// the guard threshold.
func (e *Executor) expand(csr *adjacency.CSR, sources []uint32) {
	for _, s := range sources {
		for _, eff := range csr.Slice(s) {
			e.proposals = append(e.proposals, proposal{toBit: eff.ToBit, orderTag: eff.OrderTag, action: eff.Action})
		}
	}
}

func countEffects(csr *adjacency.CSR, sources []uint32) uint64 {
	var n uint64
	for _, s := range sources {
		n += uint64(len(csr.Slice(s)))
	}
	return n
}

// Tick runs the round loop to completion (or until a guard trips) and
// returns the tick's Metrics. It does not call Store.Finalize; the caller
// (engine.Engine) does that once, after Tick returns, so Prev/Curr for
// Inputs and Outputs still reflect "this tick's" values for get_outputs
// until the next set_inputs/tick cycle.
func (e *Executor) Tick() (Metrics, error) {
	var m Metrics
	m.Policy = e.cfg.Policy.String()

	inBase := sectionBase(e.layout, state.Inputs)
	intBase := sectionBase(e.layout, state.Internals)
	outBase := sectionBase(e.layout, state.Outputs)

	e.shadowInput = append(e.shadowInput[:0], e.store.PrevWords(state.Inputs)...)
	e.shadowOutput = append(e.shadowOutput[:0], e.store.PrevWords(state.Outputs)...)

	for round := uint32(0); ; round++ {
		es := detectEdges(e.store.CurrWords(state.Inputs), e.shadowInput, e.store.NumBits(state.Inputs), inBase)
		internalEdges := detectEdges(e.store.CurrWords(state.Internals), e.store.PrevWords(state.Internals), e.store.NumBits(state.Internals), intBase)
		outputEdges := detectEdges(e.store.CurrWords(state.Outputs), e.shadowOutput, e.store.NumBits(state.Outputs), outBase)
		mergeEdges(&es, internalEdges)
		mergeEdges(&es, outputEdges)

		e.shadowInput = append(e.shadowInput[:0], e.store.CurrWords(state.Inputs)...)
		e.shadowOutput = append(e.shadowOutput[:0], e.store.CurrWords(state.Outputs)...)

		if len(es.any) == 0 {
			break
		}

		proposalCount := countEffects(&e.tables.On, es.rising) +
			countEffects(&e.tables.Off, es.falling) +
			countEffects(&e.tables.Toggle, es.any)
		if m.Proposals+proposalCount > e.cfg.MaxEffects {
			return m, ErrEffectCapacityExceeded
		}

		e.proposals = e.proposals[:0]
		e.expand(&e.tables.On, es.rising)
		e.expand(&e.tables.Off, es.falling)
		e.expand(&e.tables.Toggle, es.any)
		m.Proposals += uint64(len(e.proposals))

		winners := resolve(e.proposals)
		m.Winners += uint64(len(winners))

		// Promote BEFORE commit: Prev must capture this round's starting
		// Internal state (the basis the NEXT round's detectEdges diffs
		// against), not the state after this round's own commit — otherwise
		// every round's delta would be erased before it could ever be
		// observed, and Internal→Internal connections would never fire past
		// round 0. This is also what keeps a bit's own flip from
		// retriggering itself within the same round (§4.3).
		snapshot := e.store.SnapshotInternal()
		e.store.PromoteInternal()
		changed := commit(e.store, e.layout, winners)
		m.EffectsApplied += uint64(len(winners))

		// The cycle-hash ring only ever hashes Curr_Internal (§3, §4.4 step
		// 6), so it must only be fed/consulted when Curr_Internal actually
		// moved this round: gating on "this round produced a winner"
		// instead of "Internal changed" misreports any purely feed-forward
		// cascade as an oscillator the moment a later round's only winner
		// lands in Inputs or Outputs, since Curr_Internal then sits
		// byte-identical to the hash the ring already stored for the round
		// before.
		oscillatedThisRound := false
		if !internalsEqual(snapshot, e.store.CurrWords(state.Internals)) {
			h := hashInternal(e.store.CurrWords(state.Internals))
			matched, period := e.ring.observe(h)
			if matched && !m.Oscillator {
				m.Oscillator = true
				m.Period = period
				e.applyQuench(snapshot, h)
				oscillatedThisRound = true
			}
		}

		m.Rounds = round + 1

		// §4.4 lists "cycle detected and the policy requests immediate
		// termination" as its own termination branch, and all three quench
		// policies are specified to end with "...then stop" — a newly
		// detected oscillation always ends the round loop right here,
		// rather than falling through to the ordinary changed/MaxRounds
		// checks below (which would let a genuine toggle cycle keep
		// re-proposing the same toggles every round until MaxRounds).
		if oscillatedThisRound {
			break
		}

		// A round that changed no bit at all (Input, Internal, or Output)
		// leaves nothing new for the next round's edge detection to find;
		// anything that would have been a further source has already been
		// accounted for. Stopping on Internal-only change would miss a
		// settled Output bit that a cross-chunk Link still needs one more
		// round to observe as a rising/falling source.
		if !changed {
			break
		}
		if round+1 >= e.cfg.MaxRounds {
			m.GuardTripped = true
			break
		}
	}

	return m, nil
}

// resolve stable-sorts proposals by (toBit, orderTag) and keeps the last
// entry per toBit group as the winner — the highest order_tag wins
// (§4.4 step 3); ties across triggers fall back to trigger evaluation
// order (On, Off, Toggle) and then source-ascending order, preserved by
// sort.SliceStable.
func resolve(proposals []proposal) []proposal {
	sorted := append([]proposal(nil), proposals...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].toBit != sorted[j].toBit {
			return sorted[i].toBit < sorted[j].toBit
		}
		return sorted[i].orderTag < sorted[j].orderTag
	})

	winners := make([]proposal, 0, len(sorted))
	for i, p := range sorted {
		if i+1 < len(sorted) && sorted[i+1].toBit == p.toBit {
			continue
		}
		winners = append(winners, p)
	}
	return winners
}

// commit applies every winner to Curr via word-level ops and reports
// whether any bit's value actually flipped, in any section. A flip in
// Outputs or Inputs matters just as much as one in Internals: a cross-chunk
// Link can source off a chunk's Output bit, and a Link can target another
// chunk's Input bit, so either can feed a further round's edge detection
// exactly like an Internal→Internal cascade does. Gating continuation on
// Internal-only changes would silently drop any Output-sourced or
// Input-targeted Link from ever being observed.
func commit(store *state.Store, layout *bitspace.Layout, winners []proposal) bool {
	changed := false
	for _, w := range winners {
		sec, _, local, err := layout.SectionOf(w.toBit)
		if err != nil {
			continue
		}
		stSec := toStateSection(sec)
		wordIdx := local / 32
		mask := uint32(1) << (local % 32)

		before := store.GetBit(stSec, local)
		store.ApplyWord(stSec, wordIdx, actionToOp(w.action), mask)
		after := store.GetBit(stSec, local)

		if before != after {
			changed = true
		}
	}
	return changed
}

func actionToOp(a chunkbin.Action) state.WordOp {
	switch a {
	case chunkbin.ActionEnable:
		return state.OpEnable
	case chunkbin.ActionDisable:
		return state.OpDisable
	default:
		return state.OpToggle
	}
}

func toStateSection(s bitspace.Section) state.Section {
	switch s {
	case bitspace.Input:
		return state.Inputs
	case bitspace.Internal:
		return state.Internals
	default:
		return state.Outputs
	}
}
