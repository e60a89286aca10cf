package wavefront

import "errors"

// ErrEffectCapacityExceeded is returned when a single tick's cumulative
// proposal count would exceed Config.MaxEffects (§7 CapacityExceeded). It
// is the one wavefront-level guard that aborts a tick outright rather than
// folding into Metrics, since an unbounded effect count means the caller's
// max_effects budget was sized wrong for this chunk set, not that the net
// merely needs more rounds.
var ErrEffectCapacityExceeded = errors.New("wavefront: effect capacity exceeded")
