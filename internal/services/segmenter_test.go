package services

import (
	"strings"
	"testing"
)

func TestSegmenter_MarkerSplit(t *testing.T) {
	seg := NewSegmenter(1000)

	var units []string
	fragments := []string{"Hello ", "world<BREAK> Second part", " continues", ""}
	for _, fragment := range fragments {
		units = append(units, seg.Push(fragment)...)
	}
	units = append(units, seg.Flush()...)

	expected := []string{"Hello world", "Second part continues"}
	if len(units) != len(expected) {
		t.Fatalf("Expected %d units, got %d: %v", len(expected), len(units), units)
	}
	for i, unit := range units {
		if unit != expected[i] {
			t.Errorf("Unit %d: expected %q, got %q", i, expected[i], unit)
		}
	}
}

func TestSegmenter_MarkerSplitAcrossFragments(t *testing.T) {
	seg := NewSegmenter(1000)

	var units []string
	for _, fragment := range []string{"first<BR", "EAK>sec", "ond"} {
		units = append(units, seg.Push(fragment)...)
	}
	units = append(units, seg.Flush()...)

	if len(units) != 2 || units[0] != "first" || units[1] != "second" {
		t.Errorf("Expected [first second], got %v", units)
	}
}

func TestSegmenter_UnitCountAndReconstruction(t *testing.T) {
	// N markers and no overflow yields N+1 units (minus empty-after-trim),
	// and the concatenation equals the input modulo markers and trimming.
	seg := NewSegmenter(1000)

	text := "alpha beta<BREAK>gamma<BREAK> delta epsilon <BREAK>zeta"
	var units []string
	// Push one rune at a time to exercise arbitrary granularity.
	for _, r := range text {
		units = append(units, seg.Push(string(r))...)
	}
	units = append(units, seg.Flush()...)

	expected := []string{"alpha beta", "gamma", "delta epsilon", "zeta"}
	if len(units) != len(expected) {
		t.Fatalf("Expected %d units, got %d: %v", len(expected), len(units), units)
	}
	for i, unit := range units {
		if unit != expected[i] {
			t.Errorf("Unit %d: expected %q, got %q", i, expected[i], unit)
		}
	}
}

func TestSegmenter_EmptySegmentsDropped(t *testing.T) {
	seg := NewSegmenter(1000)

	units := seg.Push("<BREAK>  <BREAK>only one<BREAK>   ")
	units = append(units, seg.Flush()...)

	if len(units) != 1 || units[0] != "only one" {
		t.Errorf("Expected exactly [only one], got %v", units)
	}
}

func TestSegmenter_LengthOverflow(t *testing.T) {
	seg := NewSegmenter(20)

	var units []string
	units = append(units, seg.Push("aaaa bbbb cccc dddd eeee ffff")...)
	units = append(units, seg.Flush()...)

	if len(units) < 2 {
		t.Fatalf("Expected overflow to force multiple units, got %v", units)
	}
	for i, unit := range units {
		if len(unit) > 20 {
			t.Errorf("Unit %d exceeds ceiling: %d bytes (%q)", i, len(unit), unit)
		}
	}

	joined := strings.Join(units, " ")
	if joined != "aaaa bbbb cccc dddd eeee ffff" {
		t.Errorf("Reconstruction mismatch: %q", joined)
	}
}

func TestSegmenter_HardCutWithoutWhitespace(t *testing.T) {
	seg := NewSegmenter(10)

	var units []string
	units = append(units, seg.Push(strings.Repeat("x", 25))...)
	units = append(units, seg.Flush()...)

	if len(units) != 3 {
		t.Fatalf("Expected 3 units, got %d: %v", len(units), units)
	}
	for i, unit := range units {
		if len(unit) > 10 {
			t.Errorf("Unit %d exceeds ceiling: %q", i, unit)
		}
	}
	if strings.Join(units, "") != strings.Repeat("x", 25) {
		t.Errorf("Hard cut lost content: %v", units)
	}
}

func TestSegmenter_EmptyFragmentIsNoOp(t *testing.T) {
	seg := NewSegmenter(100)

	if units := seg.Push(""); len(units) != 0 {
		t.Errorf("Empty fragment should emit nothing, got %v", units)
	}
	if units := seg.Flush(); len(units) != 0 {
		t.Errorf("Empty buffer should flush nothing, got %v", units)
	}
}

func TestSplitMessage(t *testing.T) {
	units := SplitMessage("part one<BREAK>part two", 100)
	if len(units) != 2 || units[0] != "part one" || units[1] != "part two" {
		t.Errorf("Expected [part one, part two], got %v", units)
	}

	// Long text without markers packs at word boundaries under the ceiling.
	long := strings.Repeat("word ", 50)
	units = SplitMessage(long, 25)
	for i, unit := range units {
		if len(unit) > 25 {
			t.Errorf("Unit %d exceeds ceiling: %q", i, unit)
		}
	}
	if strings.Join(units, " ") != strings.TrimSpace(long) {
		t.Errorf("Reconstruction mismatch: %v", units)
	}
}
