package turbosqueeze

import (
	"bytes"
	"testing"
)

func encodeBlock(t *testing.T, src []byte, level int, extensions bool) []byte {
	t.Helper()
	comp := make([]byte, OutputSize)
	n, err := NewContext(level).Encode(comp, src, extensions)
	if err != nil {
		t.Fatal(err)
	}
	return comp[:n]
}

func TestDecodeRejectsOversizedHeader(t *testing.T) {
	src := []byte{0xFF, 0xFF, 0xFF, 0x00, 0x00}
	if n, err := Decode(make([]byte, OutputSize), src, false); err != ErrCorrupt || n != 0 {
		t.Errorf("got (%d, %v), want (0, ErrCorrupt)", n, err)
	}
}

func TestDecodeRejectsShortInput(t *testing.T) {
	for _, src := range [][]byte{nil, {1}, {1, 0}} {
		if n, err := Decode(make([]byte, OutputSize), src, false); err != ErrCorrupt || n != 0 {
			t.Errorf("len %d: got (%d, %v), want (0, ErrCorrupt)", len(src), n, err)
		}
	}
}

func TestDecodeShortDestination(t *testing.T) {
	comp := encodeBlock(t, []byte(corpusText), 1, true)
	if _, err := Decode(make([]byte, OutputSize-1), comp, true); err != ErrShortBuffer {
		t.Errorf("got %v, want ErrShortBuffer", err)
	}
}

func TestDecodeEmptyBlock(t *testing.T) {
	n, err := Decode(make([]byte, OutputSize), []byte{0, 0, 0}, false)
	if n != 0 || err != nil {
		t.Errorf("got (%d, %v), want (0, nil)", n, err)
	}
}

func TestDecodeTruncated(t *testing.T) {
	comp := encodeBlock(t, []byte(corpusText), 1, true)
	dst := make([]byte, OutputSize)
	for cut := 1; cut < len(comp); cut += 7 {
		if n, err := Decode(dst, comp[:len(comp)-cut], true); err == nil {
			t.Fatalf("truncated by %d bytes: decoded %d bytes, want ErrCorrupt", cut, n)
		}
	}
}

func TestDecodeRejectsBadOffset(t *testing.T) {
	// One group whose first symbol is a back-reference of length 4 at
	// offset 0, with nothing decoded yet.
	src := []byte{
		4, 0, 0, // uncompressed size
		0x7F,          // control: symbol 0 is a back-reference
		0x30, 0, 0, 0, // size bytes: length 4
		0, 0, // offset 0
	}
	if n, err := Decode(make([]byte, OutputSize), src, false); err != ErrCorrupt || n != 0 {
		t.Errorf("got (%d, %v), want (0, ErrCorrupt)", n, err)
	}
}

// Flipping any single byte of a valid block must never panic or touch
// memory out of bounds; either the decoder rejects it or it returns some
// decoded payload.
func TestDecodeMutationSafety(t *testing.T) {
	for _, ext := range []bool{false, true} {
		src := repeatedText(4096)
		comp := encodeBlock(t, src, 2, ext)
		dst := make([]byte, OutputSize)
		for i := range comp {
			mut := bytes.Clone(comp)
			mut[i] ^= 0xA5
			Decode(dst, mut, ext)
		}
	}
}

// The fast loop must hand over to the safe tail without desynchronizing
// on blocks whose size straddles the handover margins.
func TestDecodeHandoverSizes(t *testing.T) {
	for _, n := range []int{500, 511, 512, 513, 767, 768, 769, 1023, 1024, 1025, 1100, 4096} {
		for _, ext := range []bool{false, true} {
			src := repeatedText(n)
			comp := encodeBlock(t, src, 1, ext)
			dst := make([]byte, OutputSize)
			m, err := Decode(dst, comp, ext)
			if err != nil || m != n {
				t.Fatalf("size %d ext %v: got (%d, %v)", n, ext, m, err)
			}
			if !bytes.Equal(dst[:m], src) {
				t.Fatalf("size %d ext %v: round trip mismatch", n, ext)
			}
		}
	}
}
