package main

import (
	"flag"
	"fmt"
	"strconv"

	"github.com/mycos-engine/mycos/engine"
	"github.com/mycos-engine/mycos/wavefront"
)

// cliConfig is the CLI-bound configuration: engine.Config plus the driver's
// own input/output/serving options.
type cliConfig struct {
	engine.Config

	ChunkFiles  string
	LinkFile    string
	InputsFile  string
	Ticks       int
	Verbosity   int
	Metrics     bool
	MetricsAddr string
	PolicyName  string
}

func defaultCLIConfig() cliConfig {
	d := engine.DefaultConfig()
	return cliConfig{
		Config:      d,
		Ticks:       1,
		Verbosity:   3,
		MetricsAddr: ":9090",
		PolicyName:  d.Policy.String(),
	}
}

// flagSet wraps flag.FlagSet to add uint64 support, mirroring the
// teacher's CLI: the standard library's flag package has no Uint64Var
// until a Value wrapper supplies one.
type flagSet struct {
	*flag.FlagSet
}

func newCustomFlagSet(name string) *flagSet {
	return &flagSet{FlagSet: flag.NewFlagSet(name, flag.ContinueOnError)}
}

func (fs *flagSet) Uint64Var(p *uint64, name string, value uint64, usage string) {
	fs.FlagSet.Var(&uint64Value{p: p}, name, usage)
	*p = value
}

type uint64Value struct{ p *uint64 }

func (v *uint64Value) String() string {
	if v.p == nil {
		return "0"
	}
	return strconv.FormatUint(*v.p, 10)
}

func (v *uint64Value) Set(s string) error {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid uint64 value %q", s)
	}
	*v.p = n
	return nil
}

func newFlagSet(cfg *cliConfig) *flagSet {
	fs := newCustomFlagSet("mycos")
	fs.StringVar(&cfg.ChunkFiles, "chunks", cfg.ChunkFiles, "comma-separated chunk binary files (§6 wire format)")
	fs.StringVar(&cfg.LinkFile, "links", cfg.LinkFile, "link table binary file (§6 wire format); may be empty (no cross-chunk links)")
	fs.StringVar(&cfg.InputsFile, "inputs", cfg.InputsFile, "line-oriented input fixture: one line per tick, \"chunk:offset:bits\" assignments")
	fs.IntVar(&cfg.Ticks, "ticks", cfg.Ticks, "number of ticks to run")
	fs.IntVar(&cfg.Verbosity, "verbosity", cfg.Verbosity, "log level 0-5 (parsed but not applied: logging stays at info level)")
	fs.BoolVar(&cfg.Metrics, "metrics", cfg.Metrics, "serve Prometheus metrics over HTTP")
	fs.StringVar(&cfg.MetricsAddr, "metrics.addr", cfg.MetricsAddr, "address to serve /metrics on")
	fs.StringVar(&cfg.PolicyName, "policy", cfg.PolicyName, "quench policy: freeze_last_stable, clamp_commutative, parity_quench")
	fs.Var(&uint32FlagValue{&cfg.Config.MaxRounds}, "max-rounds", "max wavefront rounds per tick")
	fs.Uint64Var(&cfg.Config.MaxEffects, "max-effects", cfg.Config.MaxEffects, "max cumulative proposals per tick")
	fs.IntVar(&cfg.Config.CycleWindow, "cycle-window", cfg.Config.CycleWindow, "cycle-hash ring size R")
	return fs
}

// uint32FlagValue implements flag.Value for uint32 flags (MaxRounds),
// following the same pattern as uint64Value.
type uint32FlagValue struct{ p *uint32 }

func (v *uint32FlagValue) String() string {
	if v.p == nil {
		return "0"
	}
	return strconv.FormatUint(uint64(*v.p), 10)
}

func (v *uint32FlagValue) Set(s string) error {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid uint32 value %q", s)
	}
	*v.p = uint32(n)
	return nil
}

func parsePolicy(name string) (wavefront.Policy, error) {
	switch name {
	case "freeze_last_stable":
		return wavefront.PolicyFreezeLastStable, nil
	case "clamp_commutative":
		return wavefront.PolicyClampCommutative, nil
	case "parity_quench":
		return wavefront.PolicyParityQuench, nil
	default:
		return 0, fmt.Errorf("unknown policy %q", name)
	}
}
