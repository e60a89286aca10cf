// Package chunkbin parses, validates, and encodes the chunk and link wire
// formats of §6. It is the core's host-facing intake: load_chunks and
// load_links both funnel through Decode + Validate here before the
// adjacency builder ever sees a connection or link.
package chunkbin

// Trigger is the edge condition that fires a Connection or Link.
type Trigger uint8

const (
	TriggerOn Trigger = iota
	TriggerOff
	TriggerToggle
)

func (t Trigger) String() string {
	switch t {
	case TriggerOn:
		return "on"
	case TriggerOff:
		return "off"
	case TriggerToggle:
		return "toggle"
	default:
		return "unknown"
	}
}

// Action is the effect applied to a target bit when a trigger fires.
type Action uint8

const (
	ActionEnable Action = iota
	ActionDisable
	ActionToggle
)

func (a Action) String() string {
	switch a {
	case ActionEnable:
		return "enable"
	case ActionDisable:
		return "disable"
	case ActionToggle:
		return "toggle"
	default:
		return "unknown"
	}
}

// Section mirrors bitspace.Section but is kept independent here so
// chunkbin has no dependency on the layout package — it only describes
// wire-level section tags (Input/Internal/Output), not global offsets.
type Section uint8

const (
	SecInput Section = iota
	SecInternal
	SecOutput
)

// Connection is an intra-chunk edge. Only three (from_section, to_section)
// pairs are admissible: Input→Internal, Internal→Internal, Internal→Output.
type Connection struct {
	FromSection Section
	ToSection   Section
	Trigger     Trigger
	Action      Action
	FromIndex   uint32
	ToIndex     uint32
	OrderTag    uint32
}

// Chunk is a packed bit-state record: input/output/internal counts plus a
// validated, sorted connection table.
type Chunk struct {
	Ni, No, Nn uint32
	Connections []Connection

	// InitInputs, InitInternals, InitOutputs are the chunk's packed
	// initial bit state as read from the binary's bit sections, LSB-first
	// within each byte. Length ceil(N/8).
	InitInputs    []byte
	InitInternals []byte
	InitOutputs   []byte
}

// Link is an inter-chunk Output→Input edge.
type Link struct {
	FromChunk  uint32
	FromOutIdx uint32
	Trigger    Trigger
	Action     Action
	ToChunk    uint32
	ToInIdx    uint32
	OrderTag   uint32
}
