package chunkbin

import (
	"encoding/binary"
	"fmt"
)

var chunkMagic = [8]byte{'M', 'Y', 'C', 'O', 'S', 'C', 'H', '0'}

const (
	chunkHeaderSize      = 32
	connectionRecordSize = 16
	linkRecordSize       = 24
	supportedVersion     = 1
)

// cursor is a minimal byte-slice reader with bounds-checked reads, mirroring
// the teacher's rlp.Stream cursor-over-a-byte-slice approach (pkg/rlp) but
// specialized for mycos's fixed-width little-endian records instead of RLP.
type cursor struct {
	data []byte
	pos  int
}

func (c *cursor) remaining() int { return len(c.data) - c.pos }

func (c *cursor) take(n int) ([]byte, error) {
	if c.remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, n, c.pos, c.remaining())
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) u16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *cursor) u32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) u8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func bitBytes(n uint32) int { return int((n + 7) / 8) }

// DecodeChunk parses a v1 chunk binary per §6: a 32-byte header, three bit
// sections (Inputs, Outputs, Internals — in that wire order), the
// connection table, and an optional 4-byte-aligned TLV trailer (skipped;
// the core has no use for trailer payloads today). DecodeChunk performs no
// semantic validation beyond what's needed to safely read the bytes;
// callers must run ValidateChunk before handing the result to the adjacency
// builder.
func DecodeChunk(data []byte) (*Chunk, error) {
	c := &cursor{data: data}

	magic, err := c.take(8)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	for i := range chunkMagic {
		if magic[i] != chunkMagic[i] {
			return nil, fmt.Errorf("%w: got %x", ErrBadMagic, magic)
		}
	}

	version, err := c.u16()
	if err != nil {
		return nil, err
	}
	if version != supportedVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	if _, err := c.u16(); err != nil { // flags, reserved for future use
		return nil, err
	}
	ni, err := c.u32()
	if err != nil {
		return nil, err
	}
	no, err := c.u32()
	if err != nil {
		return nil, err
	}
	nn, err := c.u32()
	if err != nil {
		return nil, err
	}
	nc, err := c.u32()
	if err != nil {
		return nil, err
	}
	if _, err := c.u32(); err != nil { // reserved
		return nil, err
	}

	inputs, err := c.take(bitBytes(ni))
	if err != nil {
		return nil, fmt.Errorf("chunkbin: inputs section: %w", err)
	}
	outputs, err := c.take(bitBytes(no))
	if err != nil {
		return nil, fmt.Errorf("chunkbin: outputs section: %w", err)
	}
	internals, err := c.take(bitBytes(nn))
	if err != nil {
		return nil, fmt.Errorf("chunkbin: internals section: %w", err)
	}

	conns := make([]Connection, 0, nc)
	for i := uint32(0); i < nc; i++ {
		rec, err := c.take(connectionRecordSize)
		if err != nil {
			return nil, fmt.Errorf("chunkbin: connection %d: %w", i, err)
		}
		conns = append(conns, Connection{
			FromSection: Section(rec[0]),
			ToSection:   Section(rec[1]),
			Trigger:     Trigger(rec[2]),
			Action:      Action(rec[3]),
			FromIndex:   binary.LittleEndian.Uint32(rec[4:8]),
			ToIndex:     binary.LittleEndian.Uint32(rec[8:12]),
			OrderTag:    binary.LittleEndian.Uint32(rec[12:16]),
		})
	}

	// Optional TLV trailer: u16 type, u16 len, len bytes, 4-byte aligned.
	// The core doesn't interpret trailer contents; skip any number of them.
	for c.remaining() >= 4 {
		tlvType, err := c.u16()
		if err != nil {
			return nil, err
		}
		tlvLen, err := c.u16()
		if err != nil {
			return nil, err
		}
		_ = tlvType
		padded := int(tlvLen)
		if padded%4 != 0 {
			padded += 4 - padded%4
		}
		if _, err := c.take(padded); err != nil {
			return nil, fmt.Errorf("chunkbin: TLV trailer: %w", err)
		}
	}

	return &Chunk{
		Ni: ni, No: no, Nn: nn,
		Connections:   conns,
		InitInputs:    append([]byte(nil), inputs...),
		InitOutputs:   append([]byte(nil), outputs...),
		InitInternals: append([]byte(nil), internals...),
	}, nil
}

// DecodeLinks parses a link binary: a flat sequence of 24-byte records,
// no header.
func DecodeLinks(data []byte) ([]Link, error) {
	if len(data)%linkRecordSize != 0 {
		return nil, fmt.Errorf("%w: link binary length %d not a multiple of %d", ErrTruncated, len(data), linkRecordSize)
	}
	n := len(data) / linkRecordSize
	links := make([]Link, 0, n)
	c := &cursor{data: data}
	for i := 0; i < n; i++ {
		rec, err := c.take(linkRecordSize)
		if err != nil {
			return nil, fmt.Errorf("chunkbin: link %d: %w", i, err)
		}
		links = append(links, Link{
			FromChunk:  binary.LittleEndian.Uint32(rec[0:4]),
			FromOutIdx: binary.LittleEndian.Uint32(rec[4:8]),
			Trigger:    Trigger(rec[8]),
			Action:     Action(rec[9]),
			// rec[10:12] is reserved.
			ToChunk:  binary.LittleEndian.Uint32(rec[12:16]),
			ToInIdx:  binary.LittleEndian.Uint32(rec[16:20]),
			OrderTag: binary.LittleEndian.Uint32(rec[20:24]),
		})
	}
	return links, nil
}
