package turbosqueeze

import (
	"encoding/binary"
	"io"
	"os"
	"runtime"
)

// A Decompressor is the mirror pipeline: the reader splits a container
// into compressed blocks, the workers decode them, and the writer
// reassembles the original byte stream in block order.
type Decompressor struct {
	p *pipeline
}

func NewDecompressor() *Decompressor {
	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	d := &Decompressor{p: newPipeline(n)}
	d.p.wg.Add(n + 2)
	go d.readLoop()
	for id := 0; id < n; id++ {
		go d.workLoop(id)
	}
	go d.writeLoop()
	return d
}

// Close waits for in-flight jobs to complete, then stops the pipeline.
// It must not be called concurrently with submissions.
func (d *Decompressor) Close() { d.p.close() }

// Decompress runs one decompression job and blocks until it completes,
// reporting success. See DecompressAsync for the argument contract.
func (d *Decompressor) Decompress(in Input, out *Output) bool {
	done := make(chan bool, 1)
	d.DecompressAsync(in, out, func(_ uint32, ok bool) { done <- ok }, nil)
	return <-done
}

// DecompressAsync validates the container header, queues the job, and
// returns its ID (non-zero), or 0 after invoking completion with
// success == false. A magic mismatch or a zero block count fails the
// submission immediately. For memory outputs the decoded buffer is
// stored into out before completion runs. Callbacks are invoked from
// the writer goroutine.
func (d *Decompressor) DecompressAsync(in Input, out *Output,
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

	jb := &job{}
	var hdr [headerSize]byte

	if in.Path != "" {
		f, err := os.Open(in.Path)
		if err != nil {
			return fail()
		}
		if _, err := io.ReadFull(f, hdr[:]); err != nil {
			f.Close()
			return fail()
		}
		jb.inFile = f
	} else {
		if len(in.Data) < headerSize {
			return fail()
		}
		copy(hdr[:], in.Data)
		jb.inData = in.Data
		jb.inPos = headerSize
	}

	if hdr[0] != magic[0] || hdr[1] != magic[1] || hdr[2] != magic[2] || hdr[3] != magic[3] {
		jb.close()
		return fail()
	}
	nBlocks := binary.LittleEndian.Uint32(hdr[4:8])
	total := binary.LittleEndian.Uint64(hdr[8:16])
	if nBlocks == 0 {
		jb.close()
		return fail()
	}
	jb.nBlocks = uint64(nBlocks)

	// Sanity-check the header against the container itself before
	// sizing the output: every block needs at least its length prefix,
	// and no block inflates past BlockSize.
	inLen := int64(len(jb.inData))
	if jb.inFile != nil {
		st, err := jb.inFile.Stat()
		if err != nil {
			jb.close()
			return fail()
		}
		inLen = st.Size()
	}
	if int64(jb.nBlocks) > inLen/blockLenSize || total > jb.nBlocks*BlockSize {
		jb.close()
		return fail()
	}

	if out.Path != "" {
		f, err := os.Create(out.Path)
		if err != nil {
			jb.close()
			return fail()
		}
		jb.outFile = f
	} else {
		jb.outBuf = make([]byte, total+32)
	}

	jb.progress = progress
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

	return d.p.enqueue(jb)
}

// readLoop parses each block's 3-byte length prefix, splits off the
// extensions bit, and hands the payload to the block's worker. Short
// reads and implausible lengths pass a nil buffer down the pipeline.
func (d *Decompressor) readLoop() {
	defer d.p.wg.Done()
	nw := uint64(len(d.p.workers))
	for {
		jb := d.p.waitJob()
		if jb == nil {
			return
		}
		for b := jb.startBlock; b < jb.startBlock+jb.nBlocks; b++ {
			w := d.p.workers[b%nw]
			if !d.p.waitInputSlot(w) {
				return
			}
			slot := &w.inputs[w.readPos.Load()%ringSize]
			slot.job = jb
			slot.buf = nil
			slot.size = 0

			if jb.inFile != nil {
				var pre [blockLenSize]byte
				if _, err := io.ReadFull(jb.inFile, pre[:]); err == nil {
					mask := int(pre[0]) | int(pre[1])<<8 | int(pre[2])<<16
					n := mask & blockLenMask
					if n > 0 && n <= OutputSize {
						if _, err := io.ReadFull(jb.inFile, slot.owned[:n]); err == nil {
							slot.buf = slot.owned
							slot.size = n
							slot.ext = mask&extFlag != 0
						}
					}
				}
			} else if jb.inPos+blockLenSize <= len(jb.inData) {
				pre := jb.inData[jb.inPos:]
				mask := int(pre[0]) | int(pre[1])<<8 | int(pre[2])<<16
				n := mask & blockLenMask
				if n > 0 && n <= OutputSize && jb.inPos+blockLenSize+n <= len(jb.inData) {
					slot.buf = jb.inData[jb.inPos+blockLenSize : jb.inPos+blockLenSize+n]
					slot.size = n
					slot.ext = mask&extFlag != 0
					jb.inPos += blockLenSize + n
				}
			}

			w.readPos.Add(1)
			w.signalInput()
		}
		d.p.popJob()
	}
}

func (d *Decompressor) workLoop(id int) {
	defer d.p.wg.Done()
	w := d.p.workers[id]
	for {
		if !w.waitInput(&d.p.exit) {
			return
		}
		in := &w.inputs[w.workIn.Load()%ringSize]
		if !w.waitOutputSlot(&d.p.exit) {
			return
		}
		out := &w.outputs[w.workOut.Load()%ringSize]

		out.job = in.job
		out.buf = nil
		out.size = 0

		if in.buf != nil {
			if n, err := Decode(out.owned, in.buf[:in.size], in.ext); err == nil && n > 0 {
				out.buf = out.owned
				out.size = n
			}
		}

		w.workIn.Add(1)
		d.p.signalReader()
		w.workOut.Add(1)
		w.signalOutput()
	}
}

// writeLoop appends decoded blocks to the job's output in global block
// order. A zero-size block marks the job errored; its remaining blocks
// are drained but not written.
func (d *Decompressor) writeLoop() {
	defer d.p.wg.Done()
	nw := uint64(len(d.p.workers))
	for i := uint64(0); ; i++ {
		w := d.p.workers[i%nw]
		if !w.waitOutput(&d.p.exit) {
			return
		}
		out := &w.outputs[w.writePos.Load()%ringSize]
		jb := out.job

		if out.size == 0 {
			jb.errored = true
		}
		if !jb.errored {
			if jb.outFile != nil {
				if _, err := jb.outFile.Write(out.buf[:out.size]); err != nil {
					jb.errored = true
				} else {
					jb.outOff += out.size
				}
			} else if jb.outOff+out.size <= len(jb.outBuf) {
				copy(jb.outBuf[jb.outOff:], out.buf[:out.size])
				jb.outOff += out.size
			} else {
				jb.errored = true
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
			d.p.finishJob(jb)
		}

		w.writePos.Add(1)
		w.signalOutput()
	}
}
