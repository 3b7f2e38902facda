package gridstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rasterly/gridstore/format"
	"github.com/rasterly/gridstore/geometry"
	"github.com/rasterly/gridstore/raster"
	"github.com/rasterly/gridstore/store"
	"github.com/rasterly/gridstore/writer"
)

func testOrdinalStack(t *testing.T) raster.Stack[float32] {
	t.Helper()

	data := []float32{
		1, 2, 3,
		-9999, 5, 6,
		7, 8, 9,
		10, 11, -9999,
	}
	s, err := raster.NewMemStack(4, 3, 2,
		geometry.Affine{A: 0.5, C: 100.0, E: -0.5, F: 40.0}, "EPSG:4326",
		[]string{"elevation"},
		[]format.Sentinel[float32]{format.SomeSentinel[float32](-9999)}, data)
	require.NoError(t, err)

	return s
}

func TestImportOpenCycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.gzs")

	md, err := Import(path, testOrdinalStack(t), nil)
	require.NoError(t, err)
	require.NotNil(t, md.Ordinal)
	require.Len(t, md.Ordinal.Means, 1)

	// Nothing left staged after a successful publish.
	_, err = os.Stat(path + ".partial")
	require.True(t, os.IsNotExist(err))

	c, err := Open(path)
	require.NoError(t, err)

	arr, err := store.OpenArray[float32](c, writer.OrdinalArray)
	require.NoError(t, err)
	require.Equal(t, 4, arr.Height())
	require.Equal(t, 3, arr.Width())

	rows, err := arr.ReadRows(1, 2)
	require.NoError(t, err)
	require.Len(t, rows, 6)
	require.Equal(t, float32(-9999), rows[0])

	loaded, err := Metadata(path)
	require.NoError(t, err)
	require.Equal(t, md, loaded)
}

func TestImport_FailureLeavesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.gzs")

	data := make([]float32, 12)
	s, err := raster.NewMemStack(4, 3, 2,
		geometry.Affine{A: 0.5, C: 100.0, E: -0.5, F: 40.0}, "EPSG:4326",
		[]string{"flat"},
		[]format.Sentinel[float32]{format.NoSentinel[float32]()}, data)
	require.NoError(t, err)

	_, err = Import(path, s, nil)
	var zv *writer.ZeroVarianceError
	require.ErrorAs(t, err, &zv)

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(path + ".partial")
	require.True(t, os.IsNotExist(err))
}

func TestImport_ExistingDestination(t *testing.T) {
	path := t.TempDir()

	_, err := Import(path, testOrdinalStack(t), nil)
	require.ErrorContains(t, err, "already exists")
}

func TestImportInto(t *testing.T) {
	backend := store.NewMemoryBackend()

	md, err := ImportInto(backend, testOrdinalStack(t), nil, writer.WithCompression(format.CompressionS2))
	require.NoError(t, err)
	require.NotNil(t, md.Ordinal)

	c, err := store.Open(backend)
	require.NoError(t, err)

	arr, err := store.OpenArray[float32](c, writer.OrdinalArray)
	require.NoError(t, err)
	require.Equal(t, format.CompressionS2, arr.Compression())
}
