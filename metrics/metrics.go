// Package metrics exposes the engine's counters and gauges to Prometheus
// via the real client_golang collectors, and tracks tick throughput with an
// exponentially weighted moving average in the same shape the teacher's
// hand-rolled metrics package used for its Meter (§7: Metrics is folded
// into the host-visible surface, not just returned per-tick).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collectors bundles every Prometheus instrument the engine updates. It is
// safe to register once per process; engine.Engine holds one instance and
// updates it after every tick.
type Collectors struct {
	Ticks          prometheus.Counter
	Rounds         prometheus.Counter
	Proposals      prometheus.Counter
	EffectsApplied prometheus.Counter
	Winners        prometheus.Counter
	GuardTrips     prometheus.Counter
	Oscillations   prometheus.Counter
	RoundsPerTick  prometheus.Histogram
	OscillatorNow  prometheus.Gauge
	PeriodNow      prometheus.Gauge

	rate            *Meter // ticks/sec
	oscillationRate *Meter // oscillation detections/sec
	guardTripRate   *Meter // guard trips/sec
}

// NewCollectors builds and registers a fresh set of collectors against reg.
// Passing prometheus.NewRegistry() isolates metrics for tests; passing
// prometheus.DefaultRegisterer wires the engine into the process-wide
// /metrics endpoint.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mycos_ticks_total", Help: "Total number of ticks executed.",
		}),
		Rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mycos_rounds_total", Help: "Cumulative wavefront rounds across all ticks.",
		}),
		Proposals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mycos_proposals_total", Help: "Cumulative candidate effects considered before resolution.",
		}),
		EffectsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mycos_effects_applied_total", Help: "Cumulative effects committed to state.",
		}),
		Winners: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mycos_winners_total", Help: "Cumulative last-writer-wins survivors across all ticks.",
		}),
		GuardTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mycos_guard_trips_total", Help: "Ticks that hit max_rounds before settling.",
		}),
		Oscillations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mycos_oscillations_total", Help: "Ticks in which the cycle-hash ring detected a repeat.",
		}),
		RoundsPerTick: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "mycos_rounds_per_tick", Help: "Distribution of rounds needed to settle a tick.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		OscillatorNow: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mycos_oscillator", Help: "1 if the most recent tick detected oscillation, else 0.",
		}),
		PeriodNow: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mycos_oscillation_period", Help: "Detected period of the most recent oscillation, in rounds.",
		}),
		rate:            NewMeter(),
		oscillationRate: NewMeter(),
		guardTripRate:   NewMeter(),
	}
	reg.MustRegister(
		c.Ticks, c.Rounds, c.Proposals, c.EffectsApplied, c.Winners,
		c.GuardTrips, c.Oscillations, c.RoundsPerTick, c.OscillatorNow, c.PeriodNow,
	)
	return c
}

// TickResult is the subset of wavefront.Metrics the collectors need;
// defined locally so this package does not import wavefront (metrics is
// lower in the dependency order — engine wires the two together).
type TickResult struct {
	Rounds         uint32
	Proposals      uint64
	EffectsApplied uint64
	Winners        uint64
	GuardTripped   bool
	Oscillator     bool
	Period         int
}

// Observe records one tick's result against every collector and marks the
// tick-rate, oscillation-rate, and guard-trip-rate meters. The latter two
// are marked every tick (with 0 on a tick that didn't trip) rather than
// only on a hit, so their EWMA decays toward zero across a quiet run
// instead of freezing at whatever rate was last observed.
func (c *Collectors) Observe(r TickResult) {
	c.Ticks.Inc()
	c.Rounds.Add(float64(r.Rounds))
	c.Proposals.Add(float64(r.Proposals))
	c.EffectsApplied.Add(float64(r.EffectsApplied))
	c.Winners.Add(float64(r.Winners))
	c.RoundsPerTick.Observe(float64(r.Rounds))
	if r.GuardTripped {
		c.GuardTrips.Inc()
		c.guardTripRate.Mark(1)
	} else {
		c.guardTripRate.Mark(0)
	}
	if r.Oscillator {
		c.Oscillations.Inc()
		c.OscillatorNow.Set(1)
		c.PeriodNow.Set(float64(r.Period))
		c.oscillationRate.Mark(1)
	} else {
		c.OscillatorNow.Set(0)
		c.PeriodNow.Set(0)
		c.oscillationRate.Mark(0)
	}
	c.rate.Mark(1)
}

// TickRate1 returns the 1-minute EWMA of ticks per second.
func (c *Collectors) TickRate1() float64 { return c.rate.Rate1() }

// OscillationRate1 returns the 1-minute EWMA of oscillation detections per
// second — a domain-specific signal (not just raw tick throughput) for a
// host to watch for a chunk set that's drifting toward chronically cyclic
// behavior.
func (c *Collectors) OscillationRate1() float64 { return c.oscillationRate.Rate1() }

// GuardTripRate1 returns the 1-minute EWMA of rounds-guard trips per
// second — a host watching this climb knows max_rounds is undersized for
// the loaded chunk set well before any single tick returns an error.
func (c *Collectors) GuardTripRate1() float64 { return c.guardTripRate.Rate1() }
