package state

// WriteInputs copies nbits worth of packed bytes (LSB-first within each
// byte, per §6's wire format) into Curr Inputs starting at bit offset
// localOffset. This implements the host operation set_inputs (§4.3, §6):
// a bit-exact copy with no normalization.
func (s *Store) WriteInputs(localOffset, nbits uint32, src []byte) {
	writeBytesIntoWords(s.buf(Inputs).curr, localOffset, nbits, src)
}

// ReadOutputs copies nbits worth of bits out of Prev Outputs starting at
// bit offset localOffset into a freshly allocated packed byte slice
// (§4.3: "read_outputs... copies from Prev Outputs (post-tick snapshot)").
func (s *Store) ReadOutputs(localOffset, nbits uint32) []byte {
	return readWordsIntoBytes(s.buf(Outputs).prev, localOffset, nbits)
}

// WriteInitial seeds Curr (and, transitively via the caller's Finalize
// call, Prev) for a section at localOffset from packed bytes. Used once at
// load_chunks time to install each chunk's initial bit state.
func (s *Store) WriteInitial(sec Section, localOffset, nbits uint32, src []byte) {
	writeBytesIntoWords(s.buf(sec).curr, localOffset, nbits, src)
}

func getBit(words []uint32, idx uint32) bool {
	return words[idx/wordBits]&(1<<(idx%wordBits)) != 0
}

func setBit(words []uint32, idx uint32, v bool) {
	w := idx / wordBits
	m := uint32(1) << (idx % wordBits)
	if v {
		words[w] |= m
	} else {
		words[w] &^= m
	}
}

// writeBytesIntoWords copies nbits bits from src (LSB-first within each
// byte) into words starting at bit offset dstOffset. Bit-by-bit; nbits is
// always bounded by a single chunk's section width, so this never runs hot
// relative to the per-tick CSR expansion.
func writeBytesIntoWords(words []uint32, dstOffset, nbits uint32, src []byte) {
	for i := uint32(0); i < nbits; i++ {
		byteIdx := i / 8
		bitIdx := i % 8
		var bit bool
		if byteIdx < uint32(len(src)) {
			bit = src[byteIdx]&(1<<bitIdx) != 0
		}
		setBit(words, dstOffset+i, bit)
	}
}

// readWordsIntoBytes copies nbits bits starting at bit offset srcOffset
// from words into a freshly allocated packed byte slice, LSB-first.
func readWordsIntoBytes(words []uint32, srcOffset, nbits uint32) []byte {
	out := make([]byte, (nbits+7)/8)
	for i := uint32(0); i < nbits; i++ {
		if getBit(words, srcOffset+i) {
			out[i/8] |= 1 << (i % 8)
		}
	}
	return out
}
