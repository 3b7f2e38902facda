package compress

import "github.com/klauspost/compress/s2"

// S2Compressor trades compression ratio for speed; useful when import time
// matters more than on-disk size. Chunk payloads of encoded raster rows are
// dominated by repeated sample words, which S2 handles well at full speed.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates a new S2 compressor.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Compress compresses a chunk payload with S2, pre-sizing the destination
// from the encoder's worst-case bound to avoid growth reallocations.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, 0, s2.MaxEncodedLen(len(data)))

	return s2.Encode(dst, data), nil
}

// Decompress restores a chunk payload. The S2 framing stores the decoded
// length, so no adaptive buffer sizing is needed here.
func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Decode(nil, data)
}
