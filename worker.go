package turbosqueeze

import (
	"sync"
	"sync/atomic"
)

const ringSize = 3

// A block is one ring slot. buf is nil when an upstream error poisoned
// the block; owned is the slot's preallocated backing buffer.
type block struct {
	buf   []byte
	owned []byte
	job   *job
	size  int
	ext   bool
	level int
}

// A worker owns a 3-slot input ring fed by the reader and a 3-slot
// output ring drained by the writer. The four indices grow monotonically
// and obey writePos ≤ workOut, workIn ≤ readPos ≤ workIn+ringSize,
// workOut ≤ writePos+ringSize; each index has exactly one writer
// goroutine, which is what makes slot ownership race-free.
type worker struct {
	inputs  [ringSize]block
	outputs [ringSize]block

	readPos  atomic.Uint64 // raised by the reader: input slot filled
	workIn   atomic.Uint64 // raised by the worker: input slot consumed
	workOut  atomic.Uint64 // raised by the worker: output slot produced
	writePos atomic.Uint64 // raised by the writer: output slot drained

	inMu   sync.Mutex
	inCond *sync.Cond

	outMu   sync.Mutex
	outCond *sync.Cond
}

func newWorker() *worker {
	w := &worker{}
	w.inCond = sync.NewCond(&w.inMu)
	w.outCond = sync.NewCond(&w.outMu)
	for s := range w.inputs {
		w.inputs[s].owned = make([]byte, OutputSize)
	}
	for s := range w.outputs {
		w.outputs[s].owned = make([]byte, OutputSize)
	}
	return w
}

// waitInput blocks until the reader has filled a slot the worker has not
// consumed yet. It returns false on shutdown.
func (w *worker) waitInput(exit *atomic.Bool) bool {
	w.inMu.Lock()
	for w.readPos.Load() <= w.workIn.Load() && !exit.Load() {
		w.inCond.Wait()
	}
	w.inMu.Unlock()
	return !exit.Load()
}

// waitOutputSlot blocks until the output ring has a free slot.
func (w *worker) waitOutputSlot(exit *atomic.Bool) bool {
	w.outMu.Lock()
	for w.workOut.Load()-w.writePos.Load() >= ringSize && !exit.Load() {
		w.outCond.Wait()
	}
	w.outMu.Unlock()
	return !exit.Load()
}

// waitOutput blocks until the worker has produced a block the writer has
// not drained yet.
func (w *worker) waitOutput(exit *atomic.Bool) bool {
	w.outMu.Lock()
	for w.workOut.Load() <= w.writePos.Load() && !exit.Load() {
		w.outCond.Wait()
	}
	w.outMu.Unlock()
	return !exit.Load()
}

func (w *worker) signalInput() {
	w.inMu.Lock()
	w.inCond.Signal()
	w.inMu.Unlock()
}

func (w *worker) signalOutput() {
	w.outMu.Lock()
	w.outCond.Signal()
	w.outMu.Unlock()
}
