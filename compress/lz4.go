package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse.
// The lz4.Compressor maintains internal state that benefits from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// The lz4 block format cannot represent an incompressible block
// (CompressBlock reports 0 bytes), so every payload carries a one-byte
// marker and incompressible input is stored raw behind it.
const (
	lz4BlockRaw        byte = 0
	lz4BlockCompressed byte = 1
)

// LZ4Compressor is the default chunk codec. Raster rows compress well under
// LZ4 and decompression cost dominates in random-access training reads.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses the input data using LZ4 block compression.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, 1+lz4.CompressBlockBound(len(data)))
	dst[0] = lz4BlockCompressed

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst[1:])
	if err != nil {
		return nil, err
	}
	if n == 0 || n >= len(data) {
		// Incompressible block, store it raw.
		out := make([]byte, 1+len(data))
		out[0] = lz4BlockRaw
		copy(out[1:], data)

		return out, nil
	}

	return dst[:1+n], nil
}

// Decompress decompresses an LZ4 block.
//
// The decompressed size is not stored in the block format, so the buffer
// starts at 4x the compressed size and doubles on short-buffer errors, up to
// a 128MB safety limit that guards against corrupted input.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	body := data[1:]
	switch data[0] {
	case lz4BlockRaw:
		out := make([]byte, len(body))
		copy(out, body)

		return out, nil
	case lz4BlockCompressed:
	default:
		return nil, fmt.Errorf("invalid lz4 block marker %d", data[0])
	}

	bufSize := max(len(body)*4, 64)
	const maxSize = 128 * 1024 * 1024

	for bufSize <= maxSize {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(body, buf)
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && bufSize < maxSize {
				bufSize *= 2
				continue
			}

			return nil, err
		}

		return buf[:n], nil
	}

	return nil, lz4.ErrInvalidSourceShortBuffer
}
