package turbosqueeze

import "os"

// An Input names the source of a job: a file by path, or a memory
// buffer. Path takes precedence when both are set.
type Input struct {
	Path string
	Data []byte
}

// An Output names the destination of a job. For a memory destination
// (empty Path) the pipeline allocates the buffer and patches Data and
// Size in before the completion callback runs; for a file destination
// Size reports the bytes written.
type Output struct {
	Path string
	Data []byte
	Size int64
}

// A CompletionFunc is invoked exactly once per accepted job, from the
// writer goroutine, with success reporting whether every block of the
// job was written. Rejected submissions invoke it once with job ID 0.
type CompletionFunc func(jobID uint32, success bool)

// A ProgressFunc is invoked from the writer goroutine after each block,
// with progress in [0, 1].
type ProgressFunc func(jobID uint32, progress float64)

// job is one submitted request. It lives from submission until its
// completion callback has fired.
type job struct {
	id         uint32
	startBlock uint64
	nBlocks    uint64
	extensions bool
	level      int

	inData []byte
	inFile *os.File
	inSize int64
	inPos  int // memory-input cursor (decompression)

	outFile *os.File
	outBuf  []byte
	outOff  int

	errored bool

	completion func(id uint32, success bool)
	progress   ProgressFunc
}

func (jb *job) close() {
	if jb.inFile != nil {
		jb.inFile.Close()
		jb.inFile = nil
	}
	if jb.outFile != nil {
		jb.outFile.Close()
		jb.outFile = nil
	}
}
