package engine

import "github.com/mycos-engine/mycos/wavefront"

// Config bounds and tunes the engine's executor. It mirrors
// wavefront.Config field for field (Policy is a wavefront.Policy) and is
// converted with toWavefront when LoadLinks builds the Executor.
type Config struct {
	MaxRounds   uint32
	MaxEffects  uint64
	CycleWindow int
	Policy      wavefront.Policy
}

// DefaultConfig matches §3's documented defaults: max_rounds=1024,
// max_effects=5,000,000, cycle_hash_window R=8, policy=freeze_last_stable.
func DefaultConfig() Config {
	d := wavefront.DefaultConfig()
	return Config{MaxRounds: d.MaxRounds, MaxEffects: d.MaxEffects, CycleWindow: d.CycleWindow, Policy: d.Policy}
}

func (c Config) toWavefront() wavefront.Config {
	return wavefront.Config{MaxRounds: c.MaxRounds, MaxEffects: c.MaxEffects, CycleWindow: c.CycleWindow, Policy: c.Policy}
}
