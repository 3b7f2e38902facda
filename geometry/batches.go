package geometry

import (
	"fmt"
	"iter"
)

// Batch is one batch of pixel indices produced by the coordinate iterators.
// X holds column indices and Y row indices; both have equal length.
type Batch struct {
	X []int64
	Y []int64
}

// TrainingBatches partitions target world coordinates into consecutive
// batches of batchSize (the last batch may be shorter) and converts each
// batch to pixel indices through WorldToImage.
//
// The sequence is finite, forward-only and single-pass. A coordinate outside
// the image yields a non-nil error for that batch and terminates the
// sequence; no retry applies.
func TrainingBatches(coords [][2]float64, xEdges, yEdges []float64, batchSize int) iter.Seq2[Batch, error] {
	return func(yield func(Batch, error) bool) {
		if batchSize < 1 {
			yield(Batch{}, fmt.Errorf("batch size must be positive, got %d", batchSize))
			return
		}

		for start := 0; start < len(coords); start += batchSize {
			stop := min(start+batchSize, len(coords))

			xs := make([]float64, stop-start)
			ys := make([]float64, stop-start)
			for i, c := range coords[start:stop] {
				xs[i] = c[0]
				ys[i] = c[1]
			}

			px, err := WorldToImage(xs, xEdges)
			if err != nil {
				yield(Batch{}, err)
				return
			}
			py, err := WorldToImage(ys, yEdges)
			if err != nil {
				yield(Batch{}, err)
				return
			}

			if !yield(Batch{X: px, Y: py}, nil) {
				return
			}
		}
	}
}

// QueryBatches enumerates every pixel of a height x width grid in row-major
// order (rows outer, columns inner) and partitions the enumeration into
// batches of batchSize. The total count over all batches is width*height.
//
// Panics if batchSize < 1.
func QueryBatches(width, height, batchSize int) iter.Seq[Batch] {
	if batchSize < 1 {
		panic(fmt.Sprintf("batch size must be positive, got %d", batchSize))
	}

	return func(yield func(Batch) bool) {
		total := width * height
		for start := 0; start < total; start += batchSize {
			stop := min(start+batchSize, total)

			b := Batch{
				X: make([]int64, stop-start),
				Y: make([]int64, stop-start),
			}
			for i := start; i < stop; i++ {
				b.X[i-start] = int64(i % width)
				b.Y[i-start] = int64(i / width)
			}

			if !yield(b) {
				return
			}
		}
	}
}
