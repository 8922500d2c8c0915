package turbosqueeze

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// CompressFile compresses src into a TSQ1 container at dst on the
// calling goroutine, one block at a time, without the pipeline.
func CompressFile(dst, src string, extensions bool, level int) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("turbosqueeze: open input: %w", err)
	}
	defer in.Close()

	st, err := in.Stat()
	if err != nil {
		return fmt.Errorf("turbosqueeze: stat input: %w", err)
	}
	size := st.Size()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("turbosqueeze: create output: %w", err)
	}
	defer out.Close()

	nBlocks := uint64((size + BlockSize - 1) / BlockSize)

	var hdr [headerSize]byte
	copy(hdr[:4], magic[:])
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(nBlocks))
	binary.LittleEndian.PutUint64(hdr[8:16], uint64(size))
	if _, err := out.Write(hdr[:]); err != nil {
		return err
	}

	ctx := NewContext(level)
	inBuf := make([]byte, BlockSize)
	outBuf := make([]byte, OutputSize)

	for remain := size; remain > 0; {
		toRead := remain
		if toRead > BlockSize {
			toRead = BlockSize
		}
		if _, err := io.ReadFull(in, inBuf[:toRead]); err != nil {
			return fmt.Errorf("turbosqueeze: read input: %w", err)
		}
		n, err := ctx.Encode(outBuf, inBuf[:toRead], extensions)
		if err != nil {
			return err
		}
		mask := uint32(n)
		if extensions {
			mask |= extFlag
		}
		pre := [blockLenSize]byte{byte(mask), byte(mask >> 8), byte(mask >> 16)}
		if _, err := out.Write(pre[:]); err != nil {
			return err
		}
		if _, err := out.Write(outBuf[:n]); err != nil {
			return err
		}
		remain -= toRead
	}

	return out.Close()
}

// DecompressFile decompresses the TSQ1 container at src into dst on the
// calling goroutine.
func DecompressFile(dst, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("turbosqueeze: open input: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("turbosqueeze: create output: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, NewReader(in)); err != nil {
		return err
	}
	return out.Close()
}
