package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// inputAssignment is one set_inputs call to issue before a given tick:
// write the packed bits of Bits (a string of '0'/'1' characters, left to
// right corresponding to increasing local bit offset) into chunk Chunk's
// Input section starting at local offset Offset.
type inputAssignment struct {
	Chunk  int
	Offset uint32
	Bits   string
}

// parseFixture reads a simple line-oriented fixture file: one line per
// tick, each line a whitespace-separated list of "chunk:offset:bits"
// assignments. Blank lines and lines starting with '#' are skipped and take
// no tick slot, so the first assignment line drives tick 0. A fixture
// shorter than --ticks simply runs its remaining ticks with whatever inputs
// are already latched in Curr.
func parseFixture(path string) ([][]inputAssignment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixture: %w", err)
	}

	var ticks [][]inputAssignment
	for lineNo, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		var assigns []inputAssignment
		for _, tok := range strings.Fields(trimmed) {
			a, err := parseAssignment(tok)
			if err != nil {
				return nil, fmt.Errorf("fixture: line %d: %w", lineNo+1, err)
			}
			assigns = append(assigns, a)
		}
		ticks = append(ticks, assigns)
	}
	return ticks, nil
}

func parseAssignment(tok string) (inputAssignment, error) {
	parts := strings.Split(tok, ":")
	if len(parts) != 3 {
		return inputAssignment{}, fmt.Errorf("malformed assignment %q (want chunk:offset:bits)", tok)
	}
	chunk, err := strconv.Atoi(parts[0])
	if err != nil {
		return inputAssignment{}, fmt.Errorf("bad chunk index in %q: %w", tok, err)
	}
	offset, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return inputAssignment{}, fmt.Errorf("bad offset in %q: %w", tok, err)
	}
	for _, c := range parts[2] {
		if c != '0' && c != '1' {
			return inputAssignment{}, fmt.Errorf("bad bit char %q in %q", c, tok)
		}
	}
	return inputAssignment{Chunk: chunk, Offset: uint32(offset), Bits: parts[2]}, nil
}

// bitsToPacked converts a '0'/'1' string into the LSB-first packed byte
// form set_inputs expects (§6).
func bitsToPacked(bits string) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, c := range bits {
		if c == '1' {
			out[i/8] |= 1 << (uint(i) % 8)
		}
	}
	return out
}
