// Package pool provides pooled byte buffers for chunk encoding.
//
// Chunk payloads are encoded into pooled buffers before compression so a
// full-raster write allocates a bounded amount of scratch memory regardless
// of the number of chunks written.
package pool

import "sync"

const (
	// ChunkBufferDefaultSize is the initial capacity of a pooled buffer,
	// sized for a typical chunk of a few hundred KiB before compression.
	ChunkBufferDefaultSize = 256 * 1024

	// ChunkBufferMaxThreshold is the largest capacity returned to the pool.
	// Oversized buffers from unusually wide rasters are dropped instead of
	// pinning memory.
	ChunkBufferMaxThreshold = 8 * 1024 * 1024
)

// ByteBuffer is a reusable byte slice wrapper.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// Reset resets the buffer to be empty, retaining allocated memory for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

var chunkBufferPool = sync.Pool{
	New: func() any {
		return &ByteBuffer{B: make([]byte, 0, ChunkBufferDefaultSize)}
	},
}

// GetChunkBuffer obtains an empty ByteBuffer from the pool.
func GetChunkBuffer() *ByteBuffer {
	bb, _ := chunkBufferPool.Get().(*ByteBuffer)
	bb.Reset()

	return bb
}

// PutChunkBuffer returns a ByteBuffer to the pool.
func PutChunkBuffer(bb *ByteBuffer) {
	if bb == nil || cap(bb.B) > ChunkBufferMaxThreshold {
		return
	}
	chunkBufferPool.Put(bb)
}
