package geometry

import (
	"fmt"
	"sort"
)

// ErrTooFewEdges reports an edge array with fewer than two entries, which
// describes an image with no pixels.
var ErrTooFewEdges = fmt.Errorf("pixel edge array needs at least two entries")

// WorldToImage maps world coordinates to pixel indices.
//
// Each point is located in the half-open pixel interval
// [edges[i], edges[i+1]) by binary search, with decreasing edge arrays
// handled by searching the reversed order. A point exactly equal to the
// final edge belongs to the last pixel, closing the outer interval.
//
// The lookup is exact: values taken from the edge table itself resolve by
// comparison, not interpolation, so ImageToWorld output fed back in returns
// the original indices with zero tolerance.
//
// Returns a RangeError if any point lies outside the image.
func WorldToImage(points, edges []float64) ([]int64, error) {
	n := len(edges)
	if n < 2 {
		return nil, ErrTooFewEdges
	}

	last := edges[n-1]
	reverse := edges[1] < edges[0]

	idx := make([]int64, len(points))
	for i, p := range points {
		var j int
		if reverse {
			// Search the reversed (increasing) view: find the first edge >= p,
			// then translate back to the original orientation.
			r := sort.Search(n, func(k int) bool { return edges[n-1-k] >= p })
			j = n - (r + 1)
		} else {
			// Rightmost interval whose lower edge is <= p.
			j = sort.Search(n, func(k int) bool { return edges[k] > p }) - 1
		}
		if p == last {
			// Closed upper interval: the outermost edge belongs to the last pixel.
			j--
		}
		if j < 0 || j > n-2 {
			return nil, &RangeError{Value: p, Edges: n}
		}
		idx[i] = int64(j)
	}

	return idx, nil
}

// ImageToWorld maps pixel indices to the world coordinate of each pixel's
// minimum-magnitude edge by direct table lookup. Indices must satisfy
// 0 <= index < len(edges)-1; a RangeError is returned otherwise.
func ImageToWorld(indices []int64, edges []float64) ([]float64, error) {
	n := len(edges)
	if n < 2 {
		return nil, ErrTooFewEdges
	}

	coords := make([]float64, len(indices))
	for i, ix := range indices {
		if ix < 0 || ix >= int64(n-1) {
			return nil, &RangeError{Value: float64(ix), Edges: n}
		}
		coords[i] = edges[ix]
	}

	return coords, nil
}
