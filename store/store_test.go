package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rasterly/gridstore/format"
)

func TestMemoryBackend(t *testing.T) {
	b := NewMemoryBackend()

	_, err := b.Get("missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, b.Put("k", []byte{1, 2}))
	got, err := b.Get("k")
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, got)
	require.Equal(t, 1, b.Len())
}

func TestContainer_WriteReadRoundTrip(t *testing.T) {
	backend := NewMemoryBackend()
	c, err := Create(backend)
	require.NoError(t, err)

	// 5 rows x 3 cols x 2 bands, chunked at 2 rows.
	arr, err := CreateArray[float32](c, "ordinal_data", 5, 3, 2, 2, format.CompressionLZ4)
	require.NoError(t, err)
	require.Equal(t, 2, arr.ChunkRows())

	data := make([]float32, 5*3*2)
	for i := range data {
		data[i] = float32(i) * 0.25
	}
	rowLen := 3 * 2
	require.NoError(t, arr.WriteRows(0, data[0:2*rowLen]))
	require.NoError(t, arr.WriteRows(2, data[2*rowLen:4*rowLen]))
	require.NoError(t, arr.WriteRows(4, data[4*rowLen:]))

	arr.SetAttr("labels", []string{"a", "b"})
	c.SetAttr("height", 5)
	require.NoError(t, c.Finalize())

	// Reopen and read back, including a range spanning a chunk boundary.
	rc, err := Open(backend)
	require.NoError(t, err)

	rarr, err := OpenArray[float32](rc, "ordinal_data")
	require.NoError(t, err)
	require.Equal(t, 5, rarr.Height())
	require.Equal(t, 3, rarr.Width())
	require.Equal(t, 2, rarr.Bands())

	got, err := rarr.ReadRows(0, 5)
	require.NoError(t, err)
	require.Equal(t, data, got)

	got, err = rarr.ReadRows(1, 3)
	require.NoError(t, err)
	require.Equal(t, data[rowLen:4*rowLen], got)

	labels, ok := rarr.Attr("labels")
	require.True(t, ok)
	require.Equal(t, []any{"a", "b"}, labels)
}

func TestContainer_Int32Array(t *testing.T) {
	backend := NewMemoryBackend()
	c, err := Create(backend)
	require.NoError(t, err)

	arr, err := CreateArray[int32](c, "categorical_data", 2, 2, 1, 2, format.CompressionZstd)
	require.NoError(t, err)

	data := []int32{0, -5, 42, 7}
	require.NoError(t, arr.WriteRows(0, data))
	require.NoError(t, c.Finalize())

	rc, err := Open(backend)
	require.NoError(t, err)
	rarr, err := OpenArray[int32](rc, "categorical_data")
	require.NoError(t, err)

	got, err := rarr.ReadRows(0, 2)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestOpenArray_DtypeMismatch(t *testing.T) {
	backend := NewMemoryBackend()
	c, err := Create(backend)
	require.NoError(t, err)

	arr, err := CreateArray[int32](c, "categorical_data", 1, 1, 1, 1, format.CompressionNone)
	require.NoError(t, err)
	require.NoError(t, arr.WriteRows(0, []int32{1}))
	require.NoError(t, c.Finalize())

	rc, err := Open(backend)
	require.NoError(t, err)
	_, err = OpenArray[float32](rc, "categorical_data")
	require.ErrorContains(t, err, "dtype")
}

func TestWriteRows_Validation(t *testing.T) {
	c, err := Create(NewMemoryBackend())
	require.NoError(t, err)

	arr, err := CreateArray[float32](c, "a", 4, 2, 1, 2, format.CompressionNone)
	require.NoError(t, err)

	// Partial row.
	require.Error(t, arr.WriteRows(0, []float32{1}))
	// Not at the write cursor.
	require.ErrorContains(t, arr.WriteRows(2, []float32{1, 2, 3, 4}), "non-sequential")
	// More rows than one chunk.
	require.ErrorContains(t, arr.WriteRows(0, make([]float32, 3*2)), "exceed the chunk height")

	require.NoError(t, arr.WriteRows(0, []float32{1, 2, 3, 4}))
	// Short chunk before the final row.
	require.ErrorContains(t, arr.WriteRows(2, []float32{1, 2}), "short chunk")
}

func TestFinalize_IncompleteArray(t *testing.T) {
	c, err := Create(NewMemoryBackend())
	require.NoError(t, err)

	arr, err := CreateArray[float32](c, "a", 4, 2, 1, 2, format.CompressionNone)
	require.NoError(t, err)
	require.NoError(t, arr.WriteRows(0, []float32{1, 2, 3, 4}))

	require.ErrorContains(t, c.Finalize(), "incomplete")
}

func TestOpen_NotFinalized(t *testing.T) {
	backend := NewMemoryBackend()
	_, err := Create(backend)
	require.NoError(t, err)

	_, err = Open(backend)
	require.Error(t, err)
}

func TestReadChunk_ChecksumMismatch(t *testing.T) {
	backend := NewMemoryBackend()
	c, err := Create(backend)
	require.NoError(t, err)

	arr, err := CreateArray[float32](c, "a", 1, 2, 1, 1, format.CompressionNone)
	require.NoError(t, err)
	require.NoError(t, arr.WriteRows(0, []float32{1, 2}))
	require.NoError(t, c.Finalize())

	// Flip a payload byte behind the checksum.
	payload, err := backend.Get("a/0.0")
	require.NoError(t, err)
	payload[len(payload)-1] ^= 0xFF
	require.NoError(t, backend.Put("a/0.0", payload))

	rc, err := Open(backend)
	require.NoError(t, err)
	rarr, err := OpenArray[float32](rc, "a")
	require.NoError(t, err)

	_, err = rarr.ReadRows(0, 1)
	require.ErrorContains(t, err, "checksum")
}

func TestLocalBackend_AtomicCommit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "features.gzs")

	backend, err := CreateLocal(path)
	require.NoError(t, err)

	c, err := Create(backend)
	require.NoError(t, err)
	arr, err := CreateArray[float32](c, "a", 1, 1, 1, 1, format.CompressionLZ4)
	require.NoError(t, err)
	require.NoError(t, arr.WriteRows(0, []float32{3.5}))

	// Before finalize nothing is published at the target path.
	_, err = OpenLocal(path)
	require.Error(t, err)

	require.NoError(t, c.Finalize())

	reopened, err := OpenLocal(path)
	require.NoError(t, err)
	rc, err := Open(reopened)
	require.NoError(t, err)

	rarr, err := OpenArray[float32](rc, "a")
	require.NoError(t, err)
	got, err := rarr.ReadRows(0, 1)
	require.NoError(t, err)
	require.Equal(t, []float32{3.5}, got)
}

func TestLocalBackend_Abandon(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "features.gzs")

	backend, err := CreateLocal(path)
	require.NoError(t, err)
	require.NoError(t, backend.Put("k", []byte{1}))
	require.NoError(t, backend.Abandon())

	// Neither the target nor the staging directory survives.
	_, err = OpenLocal(path)
	require.Error(t, err)
	_, err = OpenLocal(path + ".partial")
	require.Error(t, err)
}

func TestCreateLocal_ExistingDestination(t *testing.T) {
	dir := t.TempDir()

	_, err := CreateLocal(dir)
	require.ErrorContains(t, err, "already exists")
}
