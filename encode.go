package turbosqueeze

// A pending symbol: either a literal run of 1..16 source bytes or a
// back-reference of 4..16 (32/48/64 with extensions) bytes. base is the
// pair base the symbol's offset is measured from.
type symbol struct {
	match  bool
	length uint8
	pos    uint32
	base   uint32
}

// Encode compresses src as one block into dst and returns the number of
// bytes written. len(dst) must be at least OutputSize and len(src) at
// most BlockSize. Given the same level and extensions flag the output is
// a pure function of src.
func (c *Context) Encode(dst, src []byte, extensions bool) (int, error) {
	size := len(src)
	if size > BlockSize {
		return 0, ErrBlockTooLarge
	}
	if len(dst) < OutputSize {
		return 0, ErrShortBuffer
	}

	c.index.reset()

	maxLen := maxMatch
	if extensions {
		maxLen = maxMatchExt
	}

	dst[0] = byte(size)
	dst[1] = byte(size >> 8)
	dst[2] = byte(size >> 16)
	j := 3

	// Up to 9 symbols can be pending: a full group of 8 plus the match
	// emitted in the same step as its preceding literal run.
	var group [9]symbol
	nsym := 0

	i := 0
	rep := 0 // pair base: output position at the last even symbol boundary

	for i < size {
		runStart := i
		hitLen, hitPos := 0, 0
		for i < size && i-runStart < maxLiteral {
			l, p := c.index.probe(src, i, rep, size, maxLen)
			if l >= minMatch && rep-p < maxOffset && p+l < rep {
				hitLen, hitPos = l, p
				break
			}
			i++
		}

		if i > runStart {
			group[nsym] = symbol{length: uint8(i - runStart), pos: uint32(runStart), base: uint32(rep)}
			nsym++
			if nsym&1 == 0 {
				rep = i
			}
		}

		// The literal above may have moved rep past the window that was
		// checked at probe time; rep is now the base the offset will be
		// measured from, so the match is only usable if that final
		// offset still fits. A dropped match is rescanned from the same
		// position (the dropped occurrence is out of reach of the
		// advanced rep, so the next probe either misses or finds a
		// nearer occurrence).
		if hitLen > 0 && rep-hitPos <= maxEmitOffset {
			el := emittedLen(hitLen, extensions)
			group[nsym] = symbol{match: true, length: uint8(el), pos: uint32(hitPos), base: uint32(rep)}
			nsym++
			i += el
			if nsym&1 == 0 {
				rep = i
			}
		}

		if nsym >= 8 {
			j += writeGroup(dst[j:], src, group[:8])
			group[0] = group[8]
			nsym -= 8
		}
	}

	for nsym > 0 {
		n := nsym
		if n > 8 {
			n = 8
		}
		j += writeGroup(dst[j:], src, group[:n])
		nsym -= n
	}

	return j, nil
}

// emittedLen maps a raw match length to the length the wire format can
// carry: 4..16 directly, and with extensions the dilated steps 32, 48
// and 64 for runs that reach them.
func emittedLen(k int, extensions bool) int {
	if !extensions || k <= maxMatch {
		if k > maxMatch {
			return maxMatch
		}
		return k
	}
	switch {
	case k < 32:
		return maxMatch
	case k < 48:
		return 32
	case k < 64:
		return 48
	default:
		return 64
	}
}

// sizeNibble encodes a symbol's length as its 4-bit size code: length-1
// for literals and direct match lengths, 0/1/2 for the dilated lengths
// 32/48/64. Codes 0..2 are unambiguous on back-references because a
// match is never shorter than minMatch.
func sizeNibble(s symbol) byte {
	if !s.match || s.length <= maxMatch {
		return s.length - 1
	}
	switch s.length {
	case 32:
		return 0
	case 48:
		return 1
	default:
		return 2
	}
}

// writeGroup emits one group: the control byte (MSB first, 1 = literal,
// 0 = back-reference), four size bytes (two nibbles each, even symbol in
// the high half), then the payloads in symbol order. A partial final
// group is padded with literal control bits and zero nibbles; the
// decoder stops at the announced size and never decodes the padding.
func writeGroup(dst, src []byte, g []symbol) int {
	n := len(g)

	ctrl := byte(0)
	for k := 0; k < 8; k++ {
		ctrl <<= 1
		if k >= n || !g[k].match {
			ctrl |= 1
		}
	}
	dst[0] = ctrl

	for k := 0; k < 4; k++ {
		var b byte
		if 2*k < n {
			b = sizeNibble(g[2*k]) << 4
		}
		if 2*k+1 < n {
			b |= sizeNibble(g[2*k+1])
		}
		dst[1+k] = b
	}

	j := 5
	for k := 0; k < n; k++ {
		s := g[k]
		if s.match {
			off := s.base - s.pos
			dst[j] = byte(off)
			dst[j+1] = byte(off >> 8)
			j += 2
			continue
		}
		l := int(s.length)
		p := int(s.pos)
		if p+16 <= len(src) {
			copy16(dst[j:], src[p:])
		} else {
			copy(dst[j:j+l], src[p:p+l])
		}
		j += l
	}
	return j
}
