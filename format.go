package turbosqueeze

import "errors"

const (
	blockBits = 18

	// BlockSize is the number of uncompressed bytes processed as one
	// independent unit. Inputs larger than this are split into blocks.
	BlockSize = 1 << blockBits

	// OutputSize is the required length of an encode or decode
	// destination buffer. It leaves room for the worst-case expansion of
	// an incompressible block and for the fixed-width copies the hot
	// loops use.
	OutputSize = BlockSize + BlockSize/4

	// MaxLevel is the highest compression level. Levels above it are
	// clamped.
	MaxLevel = 10

	hashBits       = blockBits - 1
	fastTableSize  = 1 << hashBits
	multiTableSize = 1 << blockBits
	bucketWidth    = 4

	minMatch    = 4
	maxMatch    = 16
	maxMatchExt = 64
	maxLiteral  = 16

	// Back-reference offsets are measured from the pair base and must
	// stay well under 1<<16 so that a dilated copy cannot reach past it.
	maxOffset = 1<<16 - 32

	// maxEmitOffset bounds the offset a packed symbol may carry. The
	// window checks during probing use maxOffset against the pair base
	// of that moment, but the base can still advance by the pending
	// symbols before the match is packed; the final offset must fit the
	// two-byte field.
	maxEmitOffset = 1<<16 - 5

	headerSize   = 16
	blockLenSize = 3
	extFlag      = 0x800000
	blockLenMask = 0x7FFFFF
)

var magic = [4]byte{'T', 'S', 'Q', '1'}

var (
	// ErrCorrupt is returned when compressed input cannot be decoded.
	ErrCorrupt = errors.New("turbosqueeze: corrupt input")

	// ErrBlockTooLarge is returned when a source block exceeds BlockSize.
	ErrBlockTooLarge = errors.New("turbosqueeze: block exceeds BlockSize")

	// ErrShortBuffer is returned when a destination buffer is smaller
	// than OutputSize.
	ErrShortBuffer = errors.New("turbosqueeze: destination buffer shorter than OutputSize")

	// ErrHeader is returned when a container does not start with the
	// TSQ1 magic or announces zero blocks.
	ErrHeader = errors.New("turbosqueeze: invalid container header")

	// ErrEmptyInput is returned when a Writer is closed without any
	// data: the container format cannot represent an empty stream.
	ErrEmptyInput = errors.New("turbosqueeze: empty input")
)
