package turbosqueeze

// Largest input footprint of one group in the fast loop: 5 header bytes,
// 8 payloads of at most 16 bytes, and the 16-byte overread of the last
// fixed-width literal copy.
const fastGroupIn = 5 + 8*maxLiteral + 16

// Decode decompresses one block from src into dst and returns the
// decoded size. len(dst) must be at least OutputSize: the fast path
// writes with fixed-width copies that can run up to a copy width past
// the decoded data. The extensions flag must match the encoder's.
//
// Corrupt input is rejected with ErrCorrupt and a size of 0; Decode
// never reads outside src nor writes outside dst.
func Decode(dst, src []byte, extensions bool) (int, error) {
	if len(dst) < OutputSize {
		return 0, ErrShortBuffer
	}
	if len(src) < blockLenSize {
		return 0, ErrCorrupt
	}
	size := int(src[0]) | int(src[1])<<8 | int(src[2])<<16
	if size > BlockSize {
		return 0, ErrCorrupt
	}
	if size == 0 {
		return 0, nil
	}

	// The fast loop decodes whole groups, so it must stop while every
	// remaining group is still certainly full: one group covers at most
	// 128 output bytes, or 512 with dilated back-references.
	margin := 256
	if extensions {
		margin = 512
	}
	fastEnd := 0
	if size > 2*margin {
		fastEnd = size - margin
	}

	i, j := blockLenSize, 0

	for j < fastEnd && i+fastGroupIn <= len(src) {
		ctrl := src[i]
		var sizes [4]byte
		copy(sizes[:], src[i+1:i+5])
		i += 5
		mask := byte(0x80)

		for k := 0; k < 4; k++ {
			base := j
			sb := sizes[k]
			for half := 0; half < 2; half++ {
				nib := int(sb >> 4)
				if half == 1 {
					nib = int(sb & 15)
				}
				if ctrl&mask != 0 {
					l := nib + 1
					copy16(dst[j:], src[i:])
					j += l
					i += l
				} else {
					off := int(le16(src[i:]))
					i += 2
					if off == 0 || off > base {
						return 0, ErrCorrupt
					}
					p := base - off
					if extensions && nib < 3 {
						switch nib {
						case 0:
							copy32(dst[j:], dst[p:])
							j += 32
						case 1:
							copy48(dst[j:], dst[p:])
							j += 48
						default:
							copy64(dst[j:], dst[p:])
							j += 64
						}
					} else {
						copy16(dst[j:], dst[p:])
						j += nib + 1
					}
				}
				mask >>= 1
			}
		}
	}

	// Safe tail: exact-length copies with every bound checked, stopping
	// the moment the announced size is reached so the final group's
	// padding is never decoded.
	for j < size {
		if i+5 > len(src) {
			return 0, ErrCorrupt
		}
		ctrl := src[i]
		var sizes [4]byte
		copy(sizes[:], src[i+1:i+5])
		i += 5
		mask := byte(0x80)

		for k := 0; k < 4 && j < size; k++ {
			base := j
			sb := sizes[k]
			for half := 0; half < 2 && j < size; half++ {
				nib := int(sb >> 4)
				if half == 1 {
					nib = int(sb & 15)
				}
				if ctrl&mask != 0 {
					l := nib + 1
					if i+l > len(src) || j+l > size {
						return 0, ErrCorrupt
					}
					copy(dst[j:j+l], src[i:i+l])
					j += l
					i += l
				} else {
					if i+2 > len(src) {
						return 0, ErrCorrupt
					}
					off := int(le16(src[i:]))
					i += 2
					if off == 0 || off > base {
						return 0, ErrCorrupt
					}
					l := nib + 1
					if extensions && nib < 3 {
						l = 32 + nib*16
					}
					if j+l > size {
						return 0, ErrCorrupt
					}
					p := base - off
					copy(dst[j:j+l], dst[p:p+l])
					j += l
				}
				mask >>= 1
			}
		}
	}

	return size, nil
}
