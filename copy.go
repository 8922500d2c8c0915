package turbosqueeze

import "encoding/binary"

// Fixed-width copy helpers for the codec hot loops. All loads happen
// before any store so that a copy whose source runs into not-yet-written
// territory still reproduces the bytes that were present when it began.
// Callers guarantee the width is available on both sides.

func copy16(dst, src []byte) {
	a := binary.LittleEndian.Uint64(src)
	b := binary.LittleEndian.Uint64(src[8:])
	binary.LittleEndian.PutUint64(dst, a)
	binary.LittleEndian.PutUint64(dst[8:], b)
}

func copy32(dst, src []byte) {
	a := binary.LittleEndian.Uint64(src)
	b := binary.LittleEndian.Uint64(src[8:])
	c := binary.LittleEndian.Uint64(src[16:])
	d := binary.LittleEndian.Uint64(src[24:])
	binary.LittleEndian.PutUint64(dst, a)
	binary.LittleEndian.PutUint64(dst[8:], b)
	binary.LittleEndian.PutUint64(dst[16:], c)
	binary.LittleEndian.PutUint64(dst[24:], d)
}

func copy48(dst, src []byte) {
	copy32(dst, src)
	copy16(dst[32:], src[32:])
}

func copy64(dst, src []byte) {
	copy32(dst, src)
	copy32(dst[32:], src[32:])
}

// le16 reads a little-endian 16-bit value. binary.LittleEndian assembles
// it byte-wise, so big-endian hosts decode offsets correctly.
func le16(b []byte) uint32 {
	return uint32(binary.LittleEndian.Uint16(b))
}
