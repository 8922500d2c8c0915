package turbosqueeze

import (
	"sync"
	"sync/atomic"
)

// pipeline is the stage plumbing shared by Compressor and Decompressor:
// the FIFO job queue, the worker array with its round-robin block
// numbering, in-flight accounting, and cooperative shutdown.
type pipeline struct {
	workers []*worker

	queueMu   sync.Mutex
	queueCond *sync.Cond
	queue     []*job
	nextBlock uint64
	maxJobID  uint32

	// The reader parks here when its target worker's input ring is full;
	// every worker signals it after consuming a slot.
	readerMu   sync.Mutex
	readerCond *sync.Cond

	reqMu    sync.Mutex
	reqCond  *sync.Cond
	inflight int

	exit atomic.Bool
	wg   sync.WaitGroup
}

func newPipeline(n int) *pipeline {
	p := &pipeline{workers: make([]*worker, n)}
	p.queueCond = sync.NewCond(&p.queueMu)
	p.readerCond = sync.NewCond(&p.readerMu)
	p.reqCond = sync.NewCond(&p.reqMu)
	for i := range p.workers {
		p.workers[i] = newWorker()
	}
	return p
}

// enqueue assigns the job its ID and global block range and appends it
// to the queue. Job IDs start at 1; 0 is the failure sentinel.
func (p *pipeline) enqueue(jb *job) uint32 {
	p.reqMu.Lock()
	p.inflight++
	p.reqMu.Unlock()

	p.queueMu.Lock()
	p.maxJobID++
	jb.id = p.maxJobID
	jb.startBlock = p.nextBlock
	p.nextBlock += jb.nBlocks
	p.queue = append(p.queue, jb)
	p.queueMu.Unlock()
	p.queueCond.Broadcast()
	return jb.id
}

// waitJob blocks until a job is queued, returning nil on shutdown. The
// job stays at the head of the queue until popJob so that submissions
// keep FIFO order.
func (p *pipeline) waitJob() *job {
	p.queueMu.Lock()
	defer p.queueMu.Unlock()
	for len(p.queue) == 0 && !p.exit.Load() {
		p.queueCond.Wait()
	}
	if p.exit.Load() {
		return nil
	}
	return p.queue[0]
}

func (p *pipeline) popJob() {
	p.queueMu.Lock()
	p.queue = p.queue[1:]
	p.queueMu.Unlock()
	p.queueCond.Broadcast()
}

// waitInputSlot blocks until worker w's input ring has a free slot,
// returning false on shutdown.
func (p *pipeline) waitInputSlot(w *worker) bool {
	p.readerMu.Lock()
	for w.readPos.Load()-w.workIn.Load() >= ringSize && !p.exit.Load() {
		p.readerCond.Wait()
	}
	p.readerMu.Unlock()
	return !p.exit.Load()
}

func (p *pipeline) signalReader() {
	p.readerMu.Lock()
	p.readerCond.Signal()
	p.readerMu.Unlock()
}

// finishJob fires the job's completion trampoline exactly once, releases
// its files, and retires it from the in-flight count.
func (p *pipeline) finishJob(jb *job) {
	jb.close()
	if jb.completion != nil {
		jb.completion(jb.id, !jb.errored)
	}
	p.reqMu.Lock()
	p.inflight--
	p.reqMu.Unlock()
	p.reqCond.Broadcast()
}

// close waits for every in-flight job, then raises the shutdown flag,
// broadcasts every condition variable, and joins the stage goroutines.
func (p *pipeline) close() {
	p.reqMu.Lock()
	for p.inflight > 0 {
		p.reqCond.Wait()
	}
	p.reqMu.Unlock()

	p.exit.Store(true)

	p.queueMu.Lock()
	p.queueCond.Broadcast()
	p.queueMu.Unlock()

	p.readerMu.Lock()
	p.readerCond.Broadcast()
	p.readerMu.Unlock()

	for _, w := range p.workers {
		w.inMu.Lock()
		w.inCond.Broadcast()
		w.inMu.Unlock()
		w.outMu.Lock()
		w.outCond.Broadcast()
		w.outMu.Unlock()
	}

	p.wg.Wait()
}
