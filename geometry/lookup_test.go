package geometry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	increasing = []float64{100.0, 100.5, 101.0, 101.5, 102.0}
	decreasing = []float64{40.0, 39.5, 39.0, 38.5}
)

func TestWorldToImage_Increasing(t *testing.T) {
	idx, err := WorldToImage([]float64{100.0, 100.4, 100.5, 101.9}, increasing)
	require.NoError(t, err)
	require.Equal(t, []int64{0, 0, 1, 3}, idx)
}

func TestWorldToImage_Decreasing(t *testing.T) {
	idx, err := WorldToImage([]float64{40.0, 39.6, 39.5, 38.6}, decreasing)
	require.NoError(t, err)
	require.Equal(t, []int64{0, 0, 1, 2}, idx)
}

func TestWorldToImage_ClosedUpperInterval(t *testing.T) {
	// A point exactly on the outermost edge belongs to the last pixel.
	idx, err := WorldToImage([]float64{102.0}, increasing)
	require.NoError(t, err)
	require.Equal(t, []int64{int64(len(increasing) - 2)}, idx)

	idx, err = WorldToImage([]float64{38.5}, decreasing)
	require.NoError(t, err)
	require.Equal(t, []int64{int64(len(decreasing) - 2)}, idx)
}

func TestWorldToImage_OutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		point float64
		edges []float64
	}{
		{"below increasing", 99.9, increasing},
		{"above increasing", 102.1, increasing},
		{"above decreasing", 40.1, decreasing},
		{"below decreasing", 38.4, decreasing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := WorldToImage([]float64{tt.point}, tt.edges)
			require.Error(t, err)

			var rangeErr *RangeError
			require.ErrorAs(t, err, &rangeErr)
			require.Equal(t, tt.point, rangeErr.Value)
		})
	}
}

func TestWorldToImage_TooFewEdges(t *testing.T) {
	_, err := WorldToImage([]float64{1.0}, []float64{1.0})
	require.ErrorIs(t, err, ErrTooFewEdges)
}

func TestImageToWorld(t *testing.T) {
	coords, err := ImageToWorld([]int64{0, 2, 3}, increasing)
	require.NoError(t, err)
	require.Equal(t, []float64{100.0, 101.0, 101.5}, coords)
}

func TestImageToWorld_OutOfRange(t *testing.T) {
	for _, ix := range []int64{-1, int64(len(increasing)) - 1} {
		_, err := ImageToWorld([]int64{ix}, increasing)

		var rangeErr *RangeError
		require.ErrorAs(t, err, &rangeErr, "index %d", ix)
	}
}

// Round-trip exactness: a coordinate produced by ImageToWorld must resolve
// back to its original index with zero tolerance, for both edge directions.
func TestRoundTrip_Exact(t *testing.T) {
	// Deliberately awkward pixel size that does not represent exactly in
	// binary floating point.
	tr := Affine{A: 0.1, C: -17.3, E: -0.3, F: 51.7}
	xEdges, yEdges, err := PixelEdges(1000, 800, tr)
	require.NoError(t, err)

	for _, edges := range [][]float64{xEdges, yEdges} {
		n := len(edges) - 1
		indices := make([]int64, n)
		for i := range indices {
			indices[i] = int64(i)
		}

		coords, err := ImageToWorld(indices, edges)
		require.NoError(t, err)

		back, err := WorldToImage(coords, edges)
		require.NoError(t, err)
		require.Equal(t, indices, back)
	}
}
