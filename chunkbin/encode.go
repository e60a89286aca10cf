package chunkbin

import "encoding/binary"

// EncodeChunk serializes a Chunk back to the v1 wire format with no TLV
// trailer. Parse(Encode(chunk)) must be bit-identical to the original
// bytes for any chunk produced by DecodeChunk (§8 round-trip property).
func EncodeChunk(ch *Chunk) []byte {
	out := make([]byte, 0, chunkHeaderSize+bitBytes(ch.Ni)+bitBytes(ch.No)+bitBytes(ch.Nn)+len(ch.Connections)*connectionRecordSize)

	out = append(out, chunkMagic[:]...)
	out = appendU16(out, supportedVersion)
	out = appendU16(out, 0) // flags
	out = appendU32(out, ch.Ni)
	out = appendU32(out, ch.No)
	out = appendU32(out, ch.Nn)
	out = appendU32(out, uint32(len(ch.Connections)))
	out = appendU32(out, 0) // reserved

	out = append(out, padTo(ch.InitInputs, bitBytes(ch.Ni))...)
	out = append(out, padTo(ch.InitOutputs, bitBytes(ch.No))...)
	out = append(out, padTo(ch.InitInternals, bitBytes(ch.Nn))...)

	for _, conn := range ch.Connections {
		out = append(out, byte(conn.FromSection), byte(conn.ToSection), byte(conn.Trigger), byte(conn.Action))
		out = appendU32(out, conn.FromIndex)
		out = appendU32(out, conn.ToIndex)
		out = appendU32(out, conn.OrderTag)
	}
	return out
}

// EncodeLinks serializes a link table back to its flat 24-byte-record
// binary form.
func EncodeLinks(links []Link) []byte {
	out := make([]byte, 0, len(links)*linkRecordSize)
	for _, l := range links {
		out = appendU32(out, l.FromChunk)
		out = appendU32(out, l.FromOutIdx)
		out = append(out, byte(l.Trigger), byte(l.Action))
		out = appendU16(out, 0) // reserved
		out = appendU32(out, l.ToChunk)
		out = appendU32(out, l.ToInIdx)
		out = appendU32(out, l.OrderTag)
	}
	return out
}

func appendU16(dst []byte, v uint16) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return append(dst, b[:]...)
}

func appendU32(dst []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(dst, b[:]...)
}

// padTo returns src extended with zero bytes to length n, or truncated if
// somehow longer (defensive; callers always supply ceil(N/8)-sized slices).
func padTo(src []byte, n int) []byte {
	if len(src) >= n {
		return src[:n]
	}
	out := make([]byte, n)
	copy(out, src)
	return out
}
