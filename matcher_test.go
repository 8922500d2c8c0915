package turbosqueeze

import (
	"bytes"
	"testing"
)

func TestMatchLen(t *testing.T) {
	src := bytes.Repeat([]byte("abcdefgh"), 32) // 256 bytes, period 8

	tests := []struct {
		name                             string
		first, second, anchor, size, max int
		want                             int
	}{
		{"capped by gap", 0, 8, 256, 256, 16, 8}, // second-first caps at 8
		{"long run", 0, 64, 256, 256, 16, 16},
		{"extended", 0, 64, 256, 256, 64, 64},
		{"capped by anchor", 0, 64, 10, 256, 16, 10},
		{"capped by size", 240, 248, 256, 256, 16, 8},
		{"under min", 0, 64, 3, 256, 16, 0},
	}
	for _, tt := range tests {
		if got := matchLen(src, tt.first, tt.second, tt.anchor, tt.size, tt.max); got != tt.want {
			t.Errorf("%s: matchLen = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestMatchLenDiverging(t *testing.T) {
	src := make([]byte, 64)
	copy(src, "abcdefgh")
	copy(src[32:], "abcdefXX")
	if got := matchLen(src, 0, 32, 64, 64, 16); got != 6 {
		t.Errorf("matchLen = %d, want 6", got)
	}
}

func TestFastTableProbe(t *testing.T) {
	ft := newFastTable()
	ft.reset()
	src := []byte("abcdefghijklmnopabcdefgh")

	// First sighting indexes, no match.
	if l, _ := ft.probe(src, 0, 0, len(src), 16); l != 0 {
		t.Fatalf("first probe matched with length %d", l)
	}
	// Second sighting matches the first position.
	l, p := ft.probe(src, 16, 16, len(src), 16)
	if l < minMatch || p != 0 {
		t.Fatalf("second probe: got (%d, %d), want match at 0", l, p)
	}
	// The hit moved latestPos forward.
	src = append(src, []byte("abcdefgh")...)
	l, p = ft.probe(src, 24, 24, len(src), 16)
	if l < minMatch || p != 16 {
		t.Fatalf("third probe: got (%d, %d), want match at 16", l, p)
	}
}

func TestFastTableResetClears(t *testing.T) {
	ft := newFastTable()
	ft.reset()
	src := []byte("abcdefghabcdefgh")
	ft.probe(src, 0, 0, len(src), 16)
	ft.reset()
	if l, _ := ft.probe(src, 8, 8, len(src), 16); l != 0 {
		t.Errorf("probe after reset matched with length %d", l)
	}
}

func TestMultiTablePicksBestOccurrence(t *testing.T) {
	// Three occurrences of "abcdefgh": the first two are followed by
	// different bytes, the third probe should match whichever earlier
	// occurrence extends furthest.
	src := []byte("abcdefghXXXXXXXXabcdefgMMMMMMMMMabcdefgh")
	src[16+7] = 'h' // occurrence at 16 also runs 8 bytes
	mt := newMultiTable(3)
	mt.reset()

	mt.probe(src, 0, 0, len(src), 16)
	l, p := mt.probe(src, 16, 16, len(src), 16)
	if l != 8 || p != 0 {
		t.Fatalf("second occurrence: got (%d, %d), want (8, 0)", l, p)
	}
	// Both stored occurrences run 8 bytes; the tie resolves to the
	// later one.
	l, p = mt.probe(src, 32, 32, len(src), 16)
	if l != 8 || p != 16 {
		t.Fatalf("third occurrence: got (%d, %d), want (8, 16)", l, p)
	}
}

func TestMultiTableFarOccurrenceSkipped(t *testing.T) {
	// Occurrences further than maxOffset from the anchor must not be
	// chosen even if they are the longest.
	src := make([]byte, 70000)
	copy(src, "abcdefgh")
	copy(src[8:], "abcdefgh")
	copy(src[66010:], "abcdefgh")
	mt := newMultiTable(2)
	mt.reset()

	mt.probe(src, 0, 0, len(src), 16)
	if l, p := mt.probe(src, 8, 8, len(src), 16); l != 8 || p != 0 {
		t.Fatalf("second occurrence: got (%d, %d), want (8, 0)", l, p)
	}
	if l, _ := mt.probe(src, 66010, 66010, len(src), 16); l != 0 {
		t.Fatalf("got length %d for occurrences %d bytes back, want 0", l, 66010)
	}
}

func TestHashRanges(t *testing.T) {
	for _, v := range []uint32{0, 1, 0xFFFFFFFF, 0x12345678, 0xDEADBEEF} {
		if h := fastHash(v); h >= fastTableSize {
			t.Errorf("fastHash(%#x) = %#x out of range", v, h)
		}
		if h := multiHash(v); h >= multiTableSize {
			t.Errorf("multiHash(%#x) = %#x out of range", v, h)
		}
	}
}
