package store

import (
	"fmt"
	"math"

	"github.com/rasterly/gridstore/compress"
	"github.com/rasterly/gridstore/endian"
	"github.com/rasterly/gridstore/format"
	"github.com/rasterly/gridstore/internal/hash"
	"github.com/rasterly/gridstore/internal/pool"
)

// chunkChecksumSize is the xxhash64 prefix guarding every chunk payload.
const chunkChecksumSize = 8

type arrayMeta struct {
	ZarrFormat int    `json:"zarr_format"`
	Shape      [2]int `json:"shape"`
	Chunks     [2]int `json:"chunks"`
	Bands      int    `json:"bands"`
	Dtype      string `json:"dtype"`
	Compressor string `json:"compressor"`
	FillValue  any    `json:"fill_value"`
	Order      string `json:"order"`
}

// Array is one chunked 2D array of band tuples: each of the
// height x width cells holds one value per band. Chunks span whole rows
// (chunkRows x width), are compressed with the array's codec and carry an
// xxhash64 content checksum.
//
// Writes are sequential and row-aligned; reads are random-access by row
// range.
type Array[T format.Element] struct {
	c     *Container
	name  string
	meta  arrayMeta
	comp  format.CompressionType
	codec compress.Codec
	attrs Attributes

	rowsWritten int
}

// CreateArray adds a new chunked array to a container under construction.
//
// chunkRows is the chunk height; it is clamped to the image height. The
// element type is fixed by T: float32 arrays store ordinal bands, int32
// arrays categorical codes.
func CreateArray[T format.Element](c *Container, name string, height, width, bands, chunkRows int, comp format.CompressionType) (*Array[T], error) {
	if c.finalized {
		return nil, ErrFinalized
	}
	if name == "" {
		return nil, fmt.Errorf("array name must not be empty")
	}
	if height < 1 || width < 1 || bands < 1 {
		return nil, fmt.Errorf("invalid array shape %dx%dx%d", height, width, bands)
	}
	if chunkRows < 1 {
		return nil, fmt.Errorf("chunk rows must be positive, got %d", chunkRows)
	}
	chunkRows = min(chunkRows, height)

	codec, err := compress.CreateCodec(comp, name)
	if err != nil {
		return nil, err
	}

	a := &Array[T]{
		c:    c,
		name: name,
		meta: arrayMeta{
			ZarrFormat: storageFormat,
			Shape:      [2]int{height, width},
			Chunks:     [2]int{chunkRows, width},
			Bands:      bands,
			Dtype:      dtypeName[T](),
			Compressor: comp.String(),
			Order:      "C",
		},
		comp:  comp,
		codec: codec,
		attrs: Attributes{},
	}
	c.arrays = append(c.arrays, a)

	return a, nil
}

// OpenArray opens an array of a finalized container for reading. The element
// type T must match the stored dtype.
func OpenArray[T format.Element](c *Container, name string) (*Array[T], error) {
	a := &Array[T]{c: c, name: name, attrs: Attributes{}}
	if err := c.getJSON(name+"/"+keyArray, &a.meta); err != nil {
		return nil, err
	}
	if err := c.getJSON(name+"/"+keyAttrs, &a.attrs); err != nil {
		return nil, err
	}
	if want := dtypeName[T](); a.meta.Dtype != want {
		return nil, fmt.Errorf("array %s has dtype %s, want %s", name, a.meta.Dtype, want)
	}

	a.comp = format.CompressionTypeFromString(a.meta.Compressor)
	codec, err := compress.GetCodec(a.comp)
	if err != nil {
		return nil, fmt.Errorf("array %s: %w", name, err)
	}
	a.codec = codec
	a.rowsWritten = a.meta.Shape[0]

	return a, nil
}

// Name returns the array's name within the container.
func (a *Array[T]) Name() string { return a.name }

// Height returns the number of rows.
func (a *Array[T]) Height() int { return a.meta.Shape[0] }

// Width returns the number of columns.
func (a *Array[T]) Width() int { return a.meta.Shape[1] }

// Bands returns the tuple size per cell.
func (a *Array[T]) Bands() int { return a.meta.Bands }

// ChunkRows returns the chunk height. Chunk shape is a layout parameter
// fixed at creation; it never changes for a written store.
func (a *Array[T]) ChunkRows() int { return a.meta.Chunks[0] }

// Compression returns the chunk codec type.
func (a *Array[T]) Compression() format.CompressionType { return a.comp }

// SetAttr sets an array attribute, persisted when the container finalizes.
func (a *Array[T]) SetAttr(key string, value any) {
	a.attrs[key] = value
}

// Attr returns an array attribute.
func (a *Array[T]) Attr(key string) (any, bool) {
	v, ok := a.attrs[key]
	return v, ok
}

// Attrs returns the array's attribute document.
func (a *Array[T]) Attrs() Attributes {
	return a.attrs
}

// WriteRows appends a slab of rows starting at startRow.
//
// Writes must be sequential and chunk-aligned: startRow equals the rows
// already written and falls on a chunk boundary, and the slab spans at most
// one chunk. data holds rows*width*bands values in row-major band-interleaved
// order. The block streaming of the writer satisfies this by construction
// when chunk height equals the source block height.
func (a *Array[T]) WriteRows(startRow int, data []T) error {
	if a.c.finalized {
		return ErrFinalized
	}

	rowLen := a.meta.Shape[1] * a.meta.Bands
	if len(data) == 0 || len(data)%rowLen != 0 {
		return fmt.Errorf("array %s: %d values is not a whole number of rows", a.name, len(data))
	}
	rows := len(data) / rowLen

	chunkRows := a.meta.Chunks[0]
	switch {
	case startRow != a.rowsWritten:
		return fmt.Errorf("array %s: non-sequential write at row %d, expected %d", a.name, startRow, a.rowsWritten)
	case startRow%chunkRows != 0:
		return fmt.Errorf("array %s: write at row %d is not chunk-aligned (%d rows per chunk)", a.name, startRow, chunkRows)
	case rows > chunkRows:
		return fmt.Errorf("array %s: %d rows exceed the chunk height %d", a.name, rows, chunkRows)
	case startRow+rows > a.meta.Shape[0]:
		return fmt.Errorf("array %s: rows %d..%d exceed the image height %d", a.name, startRow, startRow+rows, a.meta.Shape[0])
	case rows < chunkRows && startRow+rows != a.meta.Shape[0]:
		return fmt.Errorf("array %s: short chunk of %d rows before the final row", a.name, rows)
	}

	bb := pool.GetChunkBuffer()
	defer pool.PutChunkBuffer(bb)

	engine := endian.GetLittleEndianEngine()
	for _, v := range data {
		bb.B = engine.AppendUint32(bb.B, elemBits(v))
	}

	compressed, err := a.codec.Compress(bb.Bytes())
	if err != nil {
		return fmt.Errorf("array %s: compressing chunk: %w", a.name, err)
	}

	payload := make([]byte, chunkChecksumSize+len(compressed))
	engine.PutUint64(payload[:chunkChecksumSize], hash.Checksum(compressed))
	copy(payload[chunkChecksumSize:], compressed)

	key := fmt.Sprintf("%s/%d.0", a.name, startRow/chunkRows)
	if err := a.c.backend.Put(key, payload); err != nil {
		return err
	}
	a.rowsWritten = startRow + rows

	return nil
}

// ReadRows reads rows [startRow, startRow+rows) of a finalized array,
// validating the checksum of every chunk touched.
func (a *Array[T]) ReadRows(startRow, rows int) ([]T, error) {
	height := a.meta.Shape[0]
	if startRow < 0 || rows < 0 || startRow+rows > height {
		return nil, fmt.Errorf("array %s: rows %d..%d outside 0..%d", a.name, startRow, startRow+rows, height)
	}

	rowLen := a.meta.Shape[1] * a.meta.Bands
	chunkRows := a.meta.Chunks[0]
	out := make([]T, rows*rowLen)

	for row := startRow; row < startRow+rows; {
		ci := row / chunkRows
		chunk, err := a.readChunk(ci)
		if err != nil {
			return nil, err
		}

		chunkStart := ci * chunkRows
		from := (row - chunkStart) * rowLen
		n := min((startRow+rows-row)*rowLen, len(chunk)-from)
		copy(out[(row-startRow)*rowLen:], chunk[from:from+n])
		row += n / rowLen
	}

	return out, nil
}

func (a *Array[T]) readChunk(ci int) ([]T, error) {
	payload, err := a.c.backend.Get(fmt.Sprintf("%s/%d.0", a.name, ci))
	if err != nil {
		return nil, err
	}
	if len(payload) < chunkChecksumSize {
		return nil, fmt.Errorf("array %s: chunk %d is truncated", a.name, ci)
	}

	engine := endian.GetLittleEndianEngine()
	want := engine.Uint64(payload[:chunkChecksumSize])
	compressed := payload[chunkChecksumSize:]
	if got := hash.Checksum(compressed); got != want {
		return nil, fmt.Errorf("array %s: chunk %d checksum mismatch: %x != %x", a.name, ci, got, want)
	}

	raw, err := a.codec.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("array %s: chunk %d: %w", a.name, ci, err)
	}

	rowsInChunk := min(a.meta.Chunks[0], a.meta.Shape[0]-ci*a.meta.Chunks[0])
	elems := rowsInChunk * a.meta.Shape[1] * a.meta.Bands
	if len(raw) != elems*4 {
		return nil, fmt.Errorf("array %s: chunk %d has %d bytes, want %d", a.name, ci, len(raw), elems*4)
	}

	out := make([]T, elems)
	for i := range out {
		out[i] = elemFromBits[T](engine.Uint32(raw[i*4:]))
	}

	return out, nil
}

// finish validates completeness and persists the array metadata. Called by
// Container.Finalize.
func (a *Array[T]) finish() error {
	if a.rowsWritten != a.meta.Shape[0] {
		return fmt.Errorf("array %s is incomplete: %d of %d rows written", a.name, a.rowsWritten, a.meta.Shape[0])
	}
	if err := a.c.putJSON(a.name+"/"+keyArray, a.meta); err != nil {
		return err
	}

	return a.c.putJSON(a.name+"/"+keyAttrs, a.attrs)
}

// dtypeName returns the zarr-style dtype string for the element type:
// little-endian 4-byte float or int.
func dtypeName[T format.Element]() string {
	var zero T
	switch any(zero).(type) {
	case float32:
		return "<f4"
	default:
		return "<i4"
	}
}

func elemBits[T format.Element](v T) uint32 {
	switch x := any(v).(type) {
	case float32:
		return math.Float32bits(x)
	case int32:
		return uint32(x)
	default:
		panic("unreachable")
	}
}

func elemFromBits[T format.Element](bits uint32) T {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(math.Float32frombits(bits)).(T)
	default:
		return any(int32(bits)).(T)
	}
}
