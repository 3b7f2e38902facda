package geometry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueryBatches_RowMajorComplete(t *testing.T) {
	var batches []Batch
	for b := range QueryBatches(3, 2, 4) {
		batches = append(batches, b)
	}

	// 6 pixels at batch size 4: one full batch, one remainder.
	require.Len(t, batches, 2)
	require.Len(t, batches[0].X, 4)
	require.Len(t, batches[1].X, 2)

	var xs, ys []int64
	for _, b := range batches {
		xs = append(xs, b.X...)
		ys = append(ys, b.Y...)
	}
	require.Equal(t, []int64{0, 1, 2, 0, 1, 2}, xs)
	require.Equal(t, []int64{0, 0, 0, 1, 1, 1}, ys)
}

func TestQueryBatches_SingleBatch(t *testing.T) {
	var count int
	for b := range QueryBatches(2, 2, 100) {
		count++
		require.Len(t, b.X, 4)
	}
	require.Equal(t, 1, count)
}

func TestQueryBatches_EmptyImage(t *testing.T) {
	for range QueryBatches(0, 0, 4) {
		t.Fatal("no batches expected for an empty image")
	}
}

func TestQueryBatches_BadBatchSize(t *testing.T) {
	require.Panics(t, func() { QueryBatches(3, 2, 0) })
}

func TestTrainingBatches(t *testing.T) {
	xEdges, yEdges, err := PixelEdges(4, 2, northUp)
	require.NoError(t, err)

	coords := [][2]float64{
		{100.1, 39.9}, // pixel (0, 0)
		{101.6, 39.9}, // pixel (3, 0)
		{100.6, 39.4}, // pixel (1, 1)
	}

	var batches []Batch
	for b, err := range TrainingBatches(coords, xEdges, yEdges, 2) {
		require.NoError(t, err)
		batches = append(batches, b)
	}

	require.Len(t, batches, 2)
	require.Equal(t, []int64{0, 3}, batches[0].X)
	require.Equal(t, []int64{0, 0}, batches[0].Y)
	require.Equal(t, []int64{1}, batches[1].X)
	require.Equal(t, []int64{1}, batches[1].Y)
}

func TestTrainingBatches_OffRasterPoint(t *testing.T) {
	xEdges, yEdges, err := PixelEdges(4, 2, northUp)
	require.NoError(t, err)

	coords := [][2]float64{{99.0, 39.5}}

	var sawErr error
	for _, err := range TrainingBatches(coords, xEdges, yEdges, 8) {
		if err != nil {
			sawErr = err
		}
	}

	var rangeErr *RangeError
	require.ErrorAs(t, sawErr, &rangeErr)
}
