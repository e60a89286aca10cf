// Package engine wires bitspace, chunkbin, adjacency, state, and wavefront
// together behind the six host operations described in §4.3 and §7:
// load_chunks, load_links, set_inputs, tick, get_outputs, and set_policy.
// An Engine is the unit a host process (cmd/mycos, or any embedder) drives.
package engine

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mycos-engine/mycos/adjacency"
	"github.com/mycos-engine/mycos/bitspace"
	"github.com/mycos-engine/mycos/chunkbin"
	"github.com/mycos-engine/mycos/metrics"
	"github.com/mycos-engine/mycos/mlog"
	"github.com/mycos-engine/mycos/state"
	"github.com/mycos-engine/mycos/wavefront"
)

var log = mlog.Default().Component("engine")

// Engine holds one loaded chunk set's complete runtime state. It is not
// safe for concurrent use from multiple goroutines without external
// synchronization beyond what Lock/Unlock-style host operations expect —
// callers serialize their own load_chunks/load_links/tick sequence, same as
// the wire protocol's operations are inherently ordered.
type Engine struct {
	mu sync.Mutex

	cfg     Config
	metrics *metrics.Collectors

	chunks []*chunkbin.Chunk
	layout *bitspace.Layout
	store  *state.Store
	tables *adjacency.Tables
	exec   *wavefront.Executor

	chunksLoaded bool
	linksLoaded  bool
	lastMetrics  wavefront.Metrics
}

// New creates an unloaded Engine. Call LoadChunks then LoadLinks before any
// other operation.
func New(cfg Config, reg prometheus.Registerer) *Engine {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &Engine{cfg: cfg, metrics: metrics.NewCollectors(reg)}
}

// LoadChunks implements the host operation load_chunks: it decodes and
// validates each chunk binary (§6), builds the global bit layout (§4.1),
// allocates the packed state store, and seeds Curr from each chunk's
// initial bit state.
func (e *Engine) LoadChunks(blobs [][]byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	chunks := make([]*chunkbin.Chunk, len(blobs))
	counts := make([]bitspace.ChunkCounts, len(blobs))
	for i, blob := range blobs {
		ch, err := chunkbin.DecodeChunk(blob)
		if err != nil {
			return fmt.Errorf("%w: chunk %d: %v", ErrInvalidBinary, i, err)
		}
		if err := chunkbin.ValidateChunk(ch); err != nil {
			return fmt.Errorf("%w: chunk %d: %v", ErrInvalidBinary, i, err)
		}
		chunks[i] = ch
		counts[i] = bitspace.ChunkCounts{Ni: ch.Ni, No: ch.No, Nn: ch.Nn}
	}

	layout := bitspace.Build(counts)
	inputs, internals, outputs, _ := layout.TotalBits()
	store := state.New(inputs, internals, outputs)

	for i, ch := range chunks {
		base, err := layout.Global(bitspace.Input, i, 0)
		if ch.Ni > 0 {
			if err != nil {
				return fmt.Errorf("%w: chunk %d: %v", ErrInvalidBinary, i, err)
			}
			store.WriteInitial(state.Inputs, base, ch.Ni, ch.InitInputs)
		}
		if ch.Nn > 0 {
			base, err := layout.Global(bitspace.Internal, i, 0)
			if err != nil {
				return fmt.Errorf("%w: chunk %d: %v", ErrInvalidBinary, i, err)
			}
			// Store indexes each section from 0; drop the blocks that
			// precede this section in the global numbering.
			store.WriteInitial(state.Internals, base-inputs, ch.Nn, ch.InitInternals)
		}
		if ch.No > 0 {
			base, err := layout.Global(bitspace.Output, i, 0)
			if err != nil {
				return fmt.Errorf("%w: chunk %d: %v", ErrInvalidBinary, i, err)
			}
			store.WriteInitial(state.Outputs, base-inputs-internals, ch.No, ch.InitOutputs)
		}
	}
	store.Finalize()

	e.chunks = chunks
	e.layout = layout
	e.store = store
	e.tables = nil
	e.exec = nil
	e.chunksLoaded = true
	e.linksLoaded = false
	log.Info("chunks loaded", "count", len(chunks), "total_bits", inputs+internals+outputs)
	return nil
}

// LoadLinks implements the host operation load_links: it decodes and
// validates the flat link table against the already-loaded chunks' (Ni,
// No) shapes, then builds the CSR-by-trigger adjacency tables and a fresh
// Executor over them. load_chunks must have been called first.
func (e *Engine) LoadLinks(blob []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.chunksLoaded {
		return ErrNotInitialized
	}

	links, err := chunkbin.DecodeLinks(blob)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBinary, err)
	}

	counts := make([]chunkbin.ChunkCount, len(e.chunks))
	for i, ch := range e.chunks {
		counts[i] = chunkbin.ChunkCount{Ni: ch.Ni, No: ch.No}
	}
	if err := chunkbin.ValidateLinks(links, counts); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBinary, err)
	}

	tables, err := adjacency.Build(e.layout, e.chunks, links)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBinary, err)
	}

	e.tables = tables
	e.exec = wavefront.New(e.layout, e.tables, e.store, e.cfg.toWavefront())
	e.linksLoaded = true
	log.Info("links loaded", "count", len(links))
	return nil
}

// SetInputs implements the host operation set_inputs: a bit-exact copy of
// nbits packed bits into chunk's Input section, starting at localOffset,
// ahead of the next Tick call.
func (e *Engine) SetInputs(chunk int, localOffset, nbits uint32, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.linksLoaded {
		return ErrNotInitialized
	}
	base, err := e.layout.Global(bitspace.Input, chunk, localOffset)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCapacityExceeded, err)
	}
	e.store.WriteInputs(base, nbits, data)
	return nil
}

// GetOutputs implements the host operation get_outputs: it reads nbits
// packed bits from Prev Outputs (the last fully-settled tick's snapshot).
func (e *Engine) GetOutputs(chunk int, localOffset, nbits uint32) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.linksLoaded {
		return nil, ErrNotInitialized
	}
	base, err := e.layout.Global(bitspace.Output, chunk, localOffset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapacityExceeded, err)
	}
	// Store indexes Outputs from 0; drop the Inputs and Internals blocks
	// that precede it in the global numbering.
	inputs, internals, _, _ := e.layout.TotalBits()
	return e.store.ReadOutputs(base-inputs-internals, nbits), nil
}

// SetPolicy implements the host operation set_policy: it changes the
// quench strategy applied to future oscillation detections.
func (e *Engine) SetPolicy(p wavefront.Policy) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.linksLoaded {
		return ErrNotInitialized
	}
	e.exec.SetPolicy(p)
	e.cfg.Policy = p
	return nil
}

// Tick implements the host operation tick: it runs the wavefront round
// loop to completion, finalizes the state store (Prev := Curr for every
// section), records the result against the Prometheus collectors, and
// returns the tick's Metrics.
func (e *Engine) Tick() (wavefront.Metrics, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.linksLoaded {
		return wavefront.Metrics{}, ErrNotInitialized
	}

	m, err := e.exec.Tick()
	if err != nil {
		log.Error("tick aborted", "error", err)
		return m, fmt.Errorf("%w: %v", ErrCapacityExceeded, err)
	}
	e.store.Finalize()

	e.metrics.Observe(metrics.TickResult{
		Rounds: m.Rounds, Proposals: m.Proposals, EffectsApplied: m.EffectsApplied,
		Winners: m.Winners, GuardTripped: m.GuardTripped, Oscillator: m.Oscillator, Period: m.Period,
	})
	e.lastMetrics = m
	if m.Oscillator {
		log.Warn("oscillation detected", "period", m.Period, "policy", m.Policy)
	}
	if m.GuardTripped {
		log.Warn("rounds guard tripped", "max_rounds", e.cfg.MaxRounds)
	}
	return m, nil
}

// Snapshot is a supplemented diagnostic operation beyond the wire
// protocol: a point-in-time summary of the loaded chunk set and the most
// recent tick's Metrics, useful for a CLI driver or a debugging endpoint.
type Snapshot struct {
	NumChunks         int
	TotalInputBits    uint32
	TotalInternalBits uint32
	TotalOutputBits   uint32
	LastMetrics       wavefront.Metrics
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	var s Snapshot
	if e.layout != nil {
		s.NumChunks = e.layout.NumChunks()
		s.TotalInputBits, s.TotalInternalBits, s.TotalOutputBits, _ = e.layout.TotalBits()
	}
	s.LastMetrics = e.lastMetrics
	return s
}

// MetricsCollectors returns the Prometheus collectors the engine updates
// after every tick.
func (e *Engine) MetricsCollectors() *metrics.Collectors {
	return e.metrics
}
