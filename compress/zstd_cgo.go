//go:build nobuild

package compress

import "github.com/valyala/gozstd"

// cgoZstdLevel is the Zstandard compression level for chunk payloads.
// Level 3 matches the pure-Go default path so stores written with either
// build are size-comparable.
const cgoZstdLevel = 3

// Compress compresses a chunk payload through the cgo Zstandard bindings.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, cgoZstdLevel), nil
}

// Decompress restores a chunk payload through the cgo Zstandard bindings.
func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.Decompress(nil, data)
}
