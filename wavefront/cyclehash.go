package wavefront

import (
	"encoding/binary"
	"math/bits"

	"github.com/cespare/xxhash/v2"
	"github.com/holiman/uint256"
)

// Four distinct 64-bit seeds, each a different rotation of a single base
// constant, modeling the spec's "four parallel mixers (seeded with
// different rotations of each word)" (§4.4 step 6). Using
// github.com/cespare/xxhash/v2 for the mixer digests and
// github.com/holiman/uint256 to hold and compare the resulting 128-bit
// value reuses two real dependencies from the teacher's closure instead of
// hand-rolling a 128-bit hash type.
const cycleHashBaseSeed uint64 = 0x9E3779B97F4A7C15

func mixerSeeds() [4]uint64 {
	return [4]uint64{
		cycleHashBaseSeed,
		bits.RotateLeft64(cycleHashBaseSeed, 16),
		bits.RotateLeft64(cycleHashBaseSeed, 32),
		bits.RotateLeft64(cycleHashBaseSeed, 48),
	}
}

// hashInternal computes a 128-bit hash of the Internals slice of Curr.
// Four xxhash digests, each seeded with a different rotation of the base
// seed, consume the same little-endian byte view of the word array; their
// Sum64 outputs are folded pairwise into the low and high 64-bit halves of
// a uint256.Int, then a mix of the word count is XORed into the low half so
// that word arrays of different lengths do not collide on zero-padding
// alone.
func hashInternal(words []uint32) uint256.Int {
	buf := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}

	seeds := mixerSeeds()
	var sums [4]uint64
	for i, seed := range seeds {
		d := xxhash.NewWithSeed(seed)
		d.Write(buf)
		sums[i] = d.Sum64()
	}

	low := sums[0] ^ sums[2]
	high := sums[1] ^ sums[3]

	lengthMix := uint64(len(words))*0x100000001B3 + 0xCBF29CE484222325
	low ^= lengthMix

	var h uint256.Int
	h.SetUint64(high)
	h.Lsh(&h, 64)
	var lowPart uint256.Int
	lowPart.SetUint64(low)
	h.Or(&h, &lowPart)
	return h
}

// ring is the cycle-hash ring (§3, §4.4 step 6): R 128-bit hashes, a
// position cursor, and enough history to detect repetition across tick
// boundaries (the ring is never cleared at tick end, only per-round
// writes advance it).
type ring struct {
	hashes []uint256.Int
	filled []bool
	pos    int
}

func newRing(size int) *ring {
	return &ring{hashes: make([]uint256.Int, size), filled: make([]bool, size)}
}

// observe compares h against every filled slot in the ring, then records h
// at the current position and advances. It returns whether a match was
// found and, if so, the detected period.
func (r *ring) observe(h uint256.Int) (matched bool, period int) {
	n := len(r.hashes)
	for i := 0; i < n; i++ {
		if r.filled[i] && r.hashes[i].Eq(&h) {
			matched = true
			period = (n + r.pos - i) % n
			if period == 0 {
				// i == r.pos: the match is against the slot exactly one
				// full lap back, i.e. a period of n rounds, not 0.
				period = n
			}
		}
	}
	r.hashes[r.pos] = h
	r.filled[r.pos] = true
	r.pos = (r.pos + 1) % n
	return matched, period
}
