package wavefront

import (
	"math/bits"

	"github.com/holiman/uint256"

	"github.com/mycos-engine/mycos/state"
)

// applyQuench resolves a just-detected oscillation deterministically
// according to e.cfg.Policy (§4.4 step 6, Open Question: quench
// semantics). snapshot is CurrInternal as it stood before this round's
// commit; currentHash is the hash of CurrInternal after the commit that
// triggered detection.
func (e *Executor) applyQuench(snapshot []uint32, currentHash uint256.Int) {
	switch e.cfg.Policy {
	case PolicyFreezeLastStable:
		e.store.RestoreInternal(snapshot)
	case PolicyClampCommutative:
		// Tick breaks the round loop the instant oscillation is detected
		// (§4.4's "policy requests immediate termination" branch), so this
		// round's commit — whatever mix of Enable/Disable/Toggle effects it
		// applied — is the last one the tick will ever make; keeping
		// Curr_Internal as committed is the clamp.
	case PolicyParityQuench:
		current := e.store.CurrWords(state.Internals)
		if popcount(snapshot) > popcount(current) {
			e.store.RestoreInternal(snapshot)
		}
	}
	_ = currentHash
}

func popcount(words []uint32) int {
	n := 0
	for _, w := range words {
		n += bits.OnesCount32(w)
	}
	return n
}
