// Command mycos drives a loaded chunk set through a fixed number of ticks,
// printing each tick's Metrics (§4.5, §7).
//
// Usage:
//
//	mycos --chunks=a.chunk,b.chunk --links=net.links --ticks=100
//
// Flags:
//
//	--chunks        Comma-separated chunk binary files (§6 wire format)
//	--links         Link table binary file (§6 wire format)
//	--ticks         Number of ticks to run (default: 1)
//	--verbosity     Log level 0-5 (default: 3; parsed, not applied)
//	--metrics       Serve Prometheus metrics over HTTP (default: false)
//	--metrics.addr  Address to serve /metrics on (default: :9090)
//	--policy        Quench policy (default: freeze_last_stable)
//	--max-rounds    Max wavefront rounds per tick
//	--max-effects   Max cumulative proposals per tick
//	--cycle-window  Cycle-hash ring size R
//	--inputs        Line-oriented input fixture (one line per tick)
package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mycos-engine/mycos/engine"
	"github.com/mycos-engine/mycos/mlog"
)

var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the actual entry point, returning an exit code. It accepts CLI
// arguments without the program name so it can be tested in isolation.
func run(args []string) int {
	cfg := defaultCLIConfig()
	fs := newFlagSet(&cfg)
	showVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	if *showVersion {
		fmt.Printf("mycos %s (commit %s)\n", version, commit)
		return 0
	}

	policy, err := parsePolicy(cfg.PolicyName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	cfg.Config.Policy = policy

	log := mlog.Default().Component("cmd")
	log.Info("mycos starting", "version", version, "ticks", cfg.Ticks, "policy", cfg.PolicyName)

	if cfg.ChunkFiles == "" {
		fmt.Fprintln(os.Stderr, "Error: --chunks is required")
		return 2
	}

	chunkPaths := strings.Split(cfg.ChunkFiles, ",")
	blobs := make([][]byte, len(chunkPaths))
	for i, p := range chunkPaths {
		data, err := os.ReadFile(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading chunk file %s: %v\n", p, err)
			return 1
		}
		blobs[i] = data
	}

	var linkBlob []byte
	if cfg.LinkFile != "" {
		data, err := os.ReadFile(cfg.LinkFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading link file %s: %v\n", cfg.LinkFile, err)
			return 1
		}
		linkBlob = data
	}

	var fixture [][]inputAssignment
	if cfg.InputsFile != "" {
		fixture, err = parseFixture(cfg.InputsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading inputs fixture %s: %v\n", cfg.InputsFile, err)
			return 1
		}
	}

	reg := prometheus.NewRegistry()
	eng := engine.New(cfg.Config, reg)

	if err := eng.LoadChunks(blobs); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading chunks: %v\n", err)
		return 1
	}
	if err := eng.LoadLinks(linkBlob); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading links: %v\n", err)
		return 1
	}

	if cfg.Metrics {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			log.Info("serving metrics", "addr", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Error("metrics server stopped", "error", err)
			}
		}()
	}

	for i := 0; i < cfg.Ticks; i++ {
		if i < len(fixture) {
			for _, a := range fixture[i] {
				if err := eng.SetInputs(a.Chunk, a.Offset, uint32(len(a.Bits)), bitsToPacked(a.Bits)); err != nil {
					fmt.Fprintf(os.Stderr, "Error applying fixture at tick %d: %v\n", i, err)
					return 1
				}
			}
		}
		m, err := eng.Tick()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error on tick %d: %v\n", i, err)
			return 1
		}
		fmt.Printf("tick %d: rounds=%d proposals=%d effects=%d winners=%d oscillator=%v period=%d guard_tripped=%v\n",
			i, m.Rounds, m.Proposals, m.EffectsApplied, m.Winners, m.Oscillator, m.Period, m.GuardTripped)
	}

	return 0
}
