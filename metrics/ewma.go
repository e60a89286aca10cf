package metrics

import (
	"math"
	"sync"
	"sync/atomic"
)

// EWMA is an exponentially weighted moving average, safe for concurrent
// use. Adapted from the teacher's hand-rolled rate tracker; the engine
// uses one to smooth tick throughput the same way the teacher smoothed
// gas-per-second.
type EWMA struct {
	alpha     float64
	uncounted atomic.Int64
	mu        sync.Mutex
	rate      float64
	init      bool
	interval  float64
}

// StandardEWMA creates an EWMA with the given alpha decay factor and a
// 5-second tick interval.
func StandardEWMA(alpha float64) *EWMA {
	return &EWMA{alpha: alpha, interval: 5.0}
}

// NewEWMA1 creates a 1-minute EWMA.
func NewEWMA1() *EWMA { return StandardEWMA(1 - math.Exp(-5.0/60.0)) }

// Update adds n samples to the uncounted total.
func (e *EWMA) Update(n int64) { e.uncounted.Add(n) }

// Tick decays the rate and incorporates uncounted samples. Called at
// regular intervals (every 5 seconds) by the owning Meter.
func (e *EWMA) Tick() {
	count := e.uncounted.Swap(0)
	instantRate := float64(count) / e.interval

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.init {
		e.rate += e.alpha * (instantRate - e.rate)
	} else {
		e.rate = instantRate
		e.init = true
	}
}

// Rate returns the current rate per second.
func (e *EWMA) Rate() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rate
}
