package wavefront

// Policy selects the deterministic quench strategy applied once the
// cycle-hash ring detects a repeating Internal state within a tick (§4.4
// step 6). All three are resolved the same way regardless of which chunk
// or link produced the cycle — policy selection is global per Config, set
// via the host operation set_policy.
type Policy uint8

const (
	// PolicyFreezeLastStable reverts Curr_Internal to the snapshot taken at
	// the start of the round in which the repeat was detected, then ends
	// the round loop. The net is left exactly as it was the last time its
	// state was new.
	PolicyFreezeLastStable Policy = iota
	// PolicyClampCommutative keeps the detecting round's commit exactly as
	// applied (Enable, Disable and Toggle effects alike) and ends the round
	// loop; no effect of that round is undone.
	PolicyClampCommutative
	// PolicyParityQuench compares Curr_Internal after the detecting round's
	// commit with Curr_Internal as it stood at the start of that round:
	// whichever has more bits set is kept as final, and the round loop
	// ends. Ties (equal popcount) keep the current state.
	PolicyParityQuench
)

func (p Policy) String() string {
	switch p {
	case PolicyFreezeLastStable:
		return "freeze_last_stable"
	case PolicyClampCommutative:
		return "clamp_commutative"
	case PolicyParityQuench:
		return "parity_quench"
	default:
		return "unknown"
	}
}

// Config bounds and tunes a single Executor's round loop.
type Config struct {
	// MaxRounds caps rounds per tick. Hitting it while the last round still
	// changed a bit (in any section) trips the (non-fatal) rounds guard, folded into
	// Metrics.GuardTripped.
	MaxRounds uint32
	// MaxEffects caps the cumulative number of proposals considered across
	// a tick's rounds. Exceeding it returns ErrEffectCapacityExceeded.
	MaxEffects uint64
	// CycleWindow is the cycle-hash ring size R.
	CycleWindow int
	// Policy is the quench strategy applied on oscillation detection.
	Policy Policy
}

// DefaultConfig matches the engine's documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxRounds:   1024,
		MaxEffects:  5_000_000,
		CycleWindow: 8,
		Policy:      PolicyFreezeLastStable,
	}
}
