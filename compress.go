package turbosqueeze

import (
	"encoding/binary"
	"io"
	"os"
	"runtime"
)

// A Compressor runs the parallel compression pipeline: a reader
// goroutine slicing inputs into blocks, one worker per CPU encoding
// them, and a writer emitting the container in block order. A Compressor
// may be reused for any number of jobs; Close shuts it down.
type Compressor struct {
	p *pipeline
}

func NewCompressor() *Compressor {
	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	c := &Compressor{p: newPipeline(n)}
	c.p.wg.Add(n + 2)
	go c.readLoop()
	for id := 0; id < n; id++ {
		go c.workLoop(id)
	}
	go c.writeLoop()
	return c
}

// Close waits for in-flight jobs to complete, then stops the pipeline.
// It must not be called concurrently with submissions.
func (c *Compressor) Close() { c.p.close() }

// Compress runs one compression job and blocks until it completes,
// reporting success. See CompressAsync for the argument contract.
func (c *Compressor) Compress(in Input, out *Output, extensions bool, level int) bool {
	done := make(chan bool, 1)
	c.CompressAsync(in, out, extensions, level, func(_ uint32, ok bool) { done <- ok }, nil)
	return <-done
}

// CompressAsync queues a compression job and returns its ID (non-zero),
// or 0 after invoking completion with success == false if the job cannot
// be accepted. The input must be a non-empty file or buffer. For memory
// outputs the result buffer is stored into out before completion runs.
// Callbacks are invoked from the writer goroutine.
func (c *Compressor) CompressAsync(in Input, out *Output, extensions bool, level int,
	completion CompletionFunc, progress ProgressFunc) uint32 {

	fail := func() uint32 {
		if completion != nil {
			completion(0, false)
		}
		return 0
	}
	if out == nil {
		return fail()
	}
	if level < 0 {
		level = 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}

	jb := &job{extensions: extensions, level: level, progress: progress}

	if in.Path != "" {
		f, err := os.Open(in.Path)
		if err != nil {
			return fail()
		}
		st, err := f.Stat()
		if err != nil || st.Size() == 0 {
			f.Close()
			return fail()
		}
		jb.inFile = f
		jb.inSize = st.Size()
	} else {
		if len(in.Data) == 0 {
			return fail()
		}
		jb.inData = in.Data
		jb.inSize = int64(len(in.Data))
	}

	jb.nBlocks = uint64((jb.inSize + BlockSize - 1) / BlockSize)

	var hdr [headerSize]byte
	copy(hdr[:4], magic[:])
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(jb.nBlocks))
	binary.LittleEndian.PutUint64(hdr[8:16], uint64(jb.inSize))

	if out.Path != "" {
		f, err := os.Create(out.Path)
		if err != nil {
			jb.close()
			return fail()
		}
		if _, err := f.Write(hdr[:]); err != nil {
			f.Close()
			jb.close()
			return fail()
		}
		jb.outFile = f
	} else {
		jb.outBuf = make([]byte, headerSize+int(jb.nBlocks)*(blockLenSize+OutputSize))
		copy(jb.outBuf, hdr[:])
	}
	jb.outOff = headerSize

	// finishJob closes the output file (and clears jb.outFile) before the
	// completion runs, so the destination kind is captured here.
	toFile := jb.outFile != nil
	jb.completion = func(id uint32, ok bool) {
		if !toFile {
			out.Data = jb.outBuf[:jb.outOff]
		}
		out.Size = int64(jb.outOff)
		if completion != nil {
			completion(id, ok)
		}
	}

	return c.p.enqueue(jb)
}

// readLoop dispatches each queued job's blocks round-robin over the
// workers, in submission order.
func (c *Compressor) readLoop() {
	defer c.p.wg.Done()
	nw := uint64(len(c.p.workers))
	for {
		jb := c.p.waitJob()
		if jb == nil {
			return
		}
		for b := jb.startBlock; b < jb.startBlock+jb.nBlocks; b++ {
			w := c.p.workers[b%nw]
			if !c.p.waitInputSlot(w) {
				return
			}
			slot := &w.inputs[w.readPos.Load()%ringSize]
			slot.job = jb
			slot.ext = jb.extensions
			slot.level = jb.level
			slot.buf = nil
			slot.size = 0

			off := int64(b-jb.startBlock) * BlockSize
			toRead := jb.inSize - off
			if toRead > BlockSize {
				toRead = BlockSize
			}
			if toRead > 0 {
				if jb.inFile != nil {
					if _, err := io.ReadFull(jb.inFile, slot.owned[:toRead]); err == nil {
						slot.buf = slot.owned
						slot.size = int(toRead)
					}
				} else {
					slot.buf = jb.inData[off : off+toRead]
					slot.size = int(toRead)
				}
			}

			w.readPos.Add(1)
			w.signalInput()
		}
		c.p.popJob()
	}
}

// workLoop encodes blocks from the worker's input ring into its output
// ring. A nil input buffer (an upstream read error) passes through as a
// nil output.
func (c *Compressor) workLoop(id int) {
	defer c.p.wg.Done()
	w := c.p.workers[id]
	var ctx *Context
	for {
		if !w.waitInput(&c.p.exit) {
			return
		}
		in := &w.inputs[w.workIn.Load()%ringSize]
		if !w.waitOutputSlot(&c.p.exit) {
			return
		}
		out := &w.outputs[w.workOut.Load()%ringSize]

		out.job = in.job
		out.ext = in.ext
		out.buf = nil
		out.size = 0

		if in.buf != nil {
			if ctx == nil || ctx.level != in.level {
				ctx = NewContext(in.level)
			}
			if n, err := ctx.Encode(out.owned, in.buf[:in.size], in.ext); err == nil {
				out.buf = out.owned
				out.size = n
			}
		}

		w.workIn.Add(1)
		c.p.signalReader()
		w.workOut.Add(1)
		w.signalOutput()
	}
}

// writeLoop drains the workers in global block order, prefixing each
// payload with its 3-byte length (bit 23 carries the extensions flag)
// and firing the progress and completion callbacks.
func (c *Compressor) writeLoop() {
	defer c.p.wg.Done()
	nw := uint64(len(c.p.workers))
	for i := uint64(0); ; i++ {
		w := c.p.workers[i%nw]
		if !w.waitOutput(&c.p.exit) {
			return
		}
		out := &w.outputs[w.writePos.Load()%ringSize]
		jb := out.job

		if out.buf == nil || out.size == 0 {
			jb.errored = true
		}
		if !jb.errored {
			mask := uint32(out.size)
			if out.ext {
				mask |= extFlag
			}
			pre := [blockLenSize]byte{byte(mask), byte(mask >> 8), byte(mask >> 16)}
			if jb.outFile != nil {
				if _, err := jb.outFile.Write(pre[:]); err != nil {
					jb.errored = true
				} else if _, err := jb.outFile.Write(out.buf[:out.size]); err != nil {
					jb.errored = true
				} else {
					jb.outOff += blockLenSize + out.size
				}
			} else {
				copy(jb.outBuf[jb.outOff:], pre[:])
				copy(jb.outBuf[jb.outOff+blockLenSize:], out.buf[:out.size])
				jb.outOff += blockLenSize + out.size
			}
		}

		if jb.progress != nil && jb.nBlocks > 0 {
			pr := float64(i+1-jb.startBlock) / float64(jb.nBlocks)
			if pr > 1 {
				pr = 1
			}
			jb.progress(jb.id, pr)
		}

		if i == jb.startBlock+jb.nBlocks-1 {
			c.p.finishJob(jb)
		}

		w.writePos.Add(1)
		w.signalOutput()
	}
}
