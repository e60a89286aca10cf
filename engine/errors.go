package engine

import "errors"

// Error kinds surfaced across the host operations (§7). GuardTripped and
// Oscillator are deliberately absent here — both are non-fatal and folded
// into wavefront.Metrics instead of being returned as errors.
var (
	ErrInvalidBinary    = errors.New("engine: invalid binary")
	ErrCapacityExceeded = errors.New("engine: capacity exceeded")
	ErrDeviceError      = errors.New("engine: device error")
	ErrNotInitialized   = errors.New("engine: not initialized")
)
