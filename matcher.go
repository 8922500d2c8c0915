package turbosqueeze

import (
	"encoding/binary"
	"math/bits"
)

// A matcher is the dictionary half of the block encoder: it indexes the
// 4-byte sequence at every scanned position and reports a usable earlier
// occurrence when there is one. Probing mutates the index, so the scan
// order of the encoder is part of the wire format's determinism.
type matcher interface {
	// reset prepares the index for a new block.
	reset()

	// probe looks up the 4 bytes at input[i:] and returns the length and
	// position of a match of at least minMatch bytes, or (0, 0). anchor
	// is the pair base the eventual back-reference would be measured
	// from; maxLen caps the reported length (maxMatch, or maxMatchExt
	// with extensions).
	probe(input []byte, i, anchor, size, maxLen int) (length, pos int)
}

// fastHash folds the bits of a 4-byte read above hashBits into its low
// hashBits bits.
func fastHash(v uint32) uint32 {
	return (v&^(fastTableSize-1))>>(32-hashBits) ^ v&(fastTableSize-1)
}

func multiHash(v uint32) uint32 {
	return (v&^(multiTableSize-1))>>(32-blockBits) ^ v&(multiTableSize-1)
}

// matchLen returns the length of the common prefix of input[first:] and
// input[second:], or 0 if it is shorter than minMatch. The length is
// capped by maxLen, by the bytes already emitted (the referenced run may
// not reach the anchor), by the end of the block, and by the gap between
// the two positions (the runs may not overlap). The first minMatch bytes
// are known equal from the bucket lookup.
func matchLen(input []byte, first, second, anchor, size, maxLen int) int {
	if m := anchor - first; m < maxLen {
		maxLen = m
	}
	if m := size - second; m < maxLen {
		maxLen = m
	}
	if m := second - first; m < maxLen {
		maxLen = m
	}
	if maxLen < minMatch {
		return 0
	}
	n := minMatch
	for n+8 <= maxLen {
		x := binary.LittleEndian.Uint64(input[first+n:]) ^ binary.LittleEndian.Uint64(input[second+n:])
		if x != 0 {
			n += bits.TrailingZeros64(x) >> 3
			if n > maxLen {
				n = maxLen
			}
			return n
		}
		n += 8
	}
	for n < maxLen && input[first+n] == input[second+n] {
		n++
	}
	return n
}

// fastTable is the level-0 index: one latest position per indexed 4-byte
// sequence, up to bucketWidth distinct sequences per hash bucket.
type fastTable struct {
	entries []fastEntry
	count   []uint8
}

type fastEntry struct {
	sym4      uint32
	latestPos uint32
}

func newFastTable() *fastTable {
	return &fastTable{
		entries: make([]fastEntry, fastTableSize*bucketWidth),
		count:   make([]uint8, fastTableSize),
	}
}

func (t *fastTable) reset() {
	// Clearing the count table is enough; stale entries above the count
	// are never read.
	clear(t.count)
}

func (t *fastTable) probe(input []byte, i, anchor, size, maxLen int) (int, int) {
	if i+4 > size {
		return 0, 0
	}
	sym4 := binary.LittleEndian.Uint32(input[i:])
	h := fastHash(sym4)
	idx := int(h) * bucketWidth
	n := int(t.count[h])
	k := 0
	for k < n && t.entries[idx+k].sym4 != sym4 {
		k++
	}
	if k < n {
		e := &t.entries[idx+k]
		if l := matchLen(input, int(e.latestPos), i, anchor, size, maxLen); l >= minMatch {
			pos := int(e.latestPos)
			e.latestPos = uint32(i)
			return l, pos
		}
		return 0, 0
	}
	if k < bucketWidth {
		t.entries[idx+k] = fastEntry{sym4: sym4, latestPos: uint32(i)}
		t.count[h] = uint8(n + 1)
	}
	return 0, 0
}

// multiTable is the level-N index: it remembers up to width occurrences
// per indexed sequence in a shared positions arena and picks the longest
// usable match among them.
type multiTable struct {
	entries   []multiEntry
	count     []uint8
	positions []uint32
	posIdx    int
	width     int
}

type multiEntry struct {
	sym4 uint32
	// position holds the sole occurrence while occurrences == 1; from
	// the second occurrence on it is the entry's slot offset in the
	// positions arena.
	position    uint32
	occurrences uint32
}

const positionsArenaSize = 1 << 20

func newMultiTable(level int) *multiTable {
	width := 1 << level
	if width > 1<<10 {
		width = 1 << 10
	}
	return &multiTable{
		entries:   make([]multiEntry, multiTableSize*bucketWidth),
		count:     make([]uint8, multiTableSize),
		positions: make([]uint32, positionsArenaSize),
		width:     width,
	}
}

func (t *multiTable) reset() {
	clear(t.count)
	t.posIdx = 0
}

func (t *multiTable) probe(input []byte, i, anchor, size, maxLen int) (int, int) {
	if i+4 > size {
		return 0, 0
	}
	sym4 := binary.LittleEndian.Uint32(input[i:])
	h := multiHash(sym4)
	idx := int(h) * bucketWidth
	n := int(t.count[h])
	k := 0
	for k < n && t.entries[idx+k].sym4 != sym4 {
		k++
	}
	if k < n {
		e := &t.entries[idx+k]
		if e.occurrences == 1 {
			l := matchLen(input, int(e.position), i, anchor, size, maxLen)
			if l < minMatch {
				return 0, 0
			}
			pos := int(e.position)
			// Promote the entry to a positions-arena slot holding both
			// occurrences. If the arena is exhausted the match is still
			// usable, the entry just keeps its single position.
			if t.posIdx+t.width <= len(t.positions) {
				slot := t.posIdx
				t.positions[slot] = e.position
				t.positions[slot+1] = uint32(i)
				e.position = uint32(slot)
				e.occurrences = 2
				t.posIdx += t.width
			}
			return l, pos
		}
		nOcc := int(e.occurrences)
		if nOcc > t.width {
			nOcc = t.width
		}
		slot := int(e.position)
		bestLen, bestPos := 0, -1
		for c := 0; c < nOcc; c++ {
			p := int(t.positions[slot+c])
			if p >= anchor || anchor-p >= maxOffset {
				continue
			}
			l := matchLen(input, p, i, anchor, size, maxLen)
			// Equal lengths resolve to the later occurrence.
			if l > bestLen || l == bestLen && p > bestPos {
				bestLen, bestPos = l, p
			}
		}
		if bestLen < minMatch {
			return 0, 0
		}
		t.positions[slot+int(e.occurrences)%t.width] = uint32(i)
		e.occurrences++
		return bestLen, bestPos
	}
	if k < bucketWidth {
		t.entries[idx+k] = multiEntry{sym4: sym4, position: uint32(i), occurrences: 1}
		t.count[h] = uint8(n + 1)
	}
	return 0, 0
}
