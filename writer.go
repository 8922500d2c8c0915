package turbosqueeze

import (
	"encoding/binary"
	"fmt"
	"io"
)

// A Writer compresses a stream into a TSQ1 container, one block at a
// time, on the calling goroutine. The container header carries the block
// count and total size, which are only known at Close, so the
// destination must be an io.WriteSeeker (an os.File, for example): the
// header is written as a placeholder up front and patched on Close.
type Writer struct {
	w          io.WriteSeeker
	ctx        *Context
	extensions bool

	in     []byte
	n      int
	out    []byte
	blocks uint32
	total  uint64
	start  int64
	err    error
}

// NewWriter returns a Writer compressing to w at the given level.
func NewWriter(w io.WriteSeeker, extensions bool, level int) (*Writer, error) {
	start, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("turbosqueeze: destination not seekable: %w", err)
	}
	z := &Writer{
		w:          w,
		ctx:        NewContext(level),
		extensions: extensions,
		in:         make([]byte, BlockSize),
		out:        make([]byte, OutputSize),
		start:      start,
	}
	var hdr [headerSize]byte
	copy(hdr[:4], magic[:])
	if _, err := w.Write(hdr[:]); err != nil {
		return nil, err
	}
	return z, nil
}

func (z *Writer) Write(p []byte) (int, error) {
	if z.err != nil {
		return 0, z.err
	}
	written := len(p)
	for len(p) > 0 {
		n := copy(z.in[z.n:], p)
		z.n += n
		p = p[n:]
		if z.n == BlockSize {
			if z.err = z.flushBlock(); z.err != nil {
				return written - len(p), z.err
			}
		}
	}
	z.total += uint64(written)
	return written, nil
}

func (z *Writer) flushBlock() error {
	n, err := z.ctx.Encode(z.out, z.in[:z.n], z.extensions)
	if err != nil {
		return err
	}
	mask := uint32(n)
	if z.extensions {
		mask |= extFlag
	}
	pre := [blockLenSize]byte{byte(mask), byte(mask >> 8), byte(mask >> 16)}
	if _, err := z.w.Write(pre[:]); err != nil {
		return err
	}
	if _, err := z.w.Write(z.out[:n]); err != nil {
		return err
	}
	z.blocks++
	z.n = 0
	return nil
}

// Close flushes the pending partial block and patches the container
// header. It does not close the underlying writer. Closing before any
// data was written returns ErrEmptyInput: a TSQ1 container cannot
// represent an empty stream (decoders reject a zero block count), and
// the placeholder header already emitted should be discarded with the
// destination.
func (z *Writer) Close() error {
	if z.err != nil {
		return z.err
	}
	if z.total == 0 {
		z.err = ErrEmptyInput
		return z.err
	}
	if z.n > 0 {
		if z.err = z.flushBlock(); z.err != nil {
			return z.err
		}
	}

	end, err := z.w.Seek(0, io.SeekCurrent)
	if err != nil {
		z.err = err
		return err
	}
	if _, err := z.w.Seek(z.start, io.SeekStart); err != nil {
		z.err = err
		return err
	}
	var hdr [headerSize]byte
	copy(hdr[:4], magic[:])
	binary.LittleEndian.PutUint32(hdr[4:8], z.blocks)
	binary.LittleEndian.PutUint64(hdr[8:16], z.total)
	if _, err := z.w.Write(hdr[:]); err != nil {
		z.err = err
		return err
	}
	if _, err := z.w.Seek(end, io.SeekStart); err != nil {
		z.err = err
		return err
	}
	z.err = errWriterClosed
	return nil
}

var errWriterClosed = fmt.Errorf("turbosqueeze: writer is closed")
