package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestParseFixture(t *testing.T) {
	path := writeFixture(t, "# tick 0: drive chunk 0's input bit 0 high\n0:0:1\n\n1:2:101\n")
	ticks, err := parseFixture(path)
	if err != nil {
		t.Fatalf("parseFixture: %v", err)
	}
	if len(ticks) != 2 {
		t.Fatalf("expected 2 ticks, got %d: %+v", len(ticks), ticks)
	}
	if len(ticks[0]) != 1 || ticks[0][0] != (inputAssignment{Chunk: 0, Offset: 0, Bits: "1"}) {
		t.Fatalf("tick 0 assignment = %+v", ticks[0])
	}
	if len(ticks[1]) != 1 || ticks[1][0] != (inputAssignment{Chunk: 1, Offset: 2, Bits: "101"}) {
		t.Fatalf("tick 1 assignment = %+v", ticks[1])
	}
}

func TestParseFixtureMultipleAssignmentsPerLine(t *testing.T) {
	path := writeFixture(t, "0:0:1 1:0:01\n")
	ticks, err := parseFixture(path)
	if err != nil {
		t.Fatalf("parseFixture: %v", err)
	}
	if len(ticks) != 1 || len(ticks[0]) != 2 {
		t.Fatalf("expected 1 tick with 2 assignments, got %+v", ticks)
	}
}

func TestParseFixtureMalformed(t *testing.T) {
	path := writeFixture(t, "not-an-assignment\n")
	if _, err := parseFixture(path); err == nil {
		t.Fatal("expected an error for a malformed assignment token")
	}
}

func TestBitsToPacked(t *testing.T) {
	got := bitsToPacked("10110010")
	want := byte(0b01001101)
	if got[0] != want {
		t.Fatalf("bitsToPacked(\"10110010\") = %08b, want %08b", got[0], want)
	}
}
