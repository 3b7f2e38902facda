// Package geometry implements the exact bidirectional mapping between world
// coordinates and pixel indices of a gridded raster.
//
// The canonical structure is the pixel edge array: for a dimension of k
// pixels it holds k+1 world coordinates of the pixel cell edges, derived once
// from the raster's affine transform. All lookups are table lookups or binary
// searches into that array, so a coordinate produced by ImageToWorld maps
// back through WorldToImage to the original index with zero floating-point
// drift.
package geometry

import (
	"errors"
	"fmt"
)

// ErrNotRectilinear reports an affine transform with non-zero shear terms.
// Pixel edge arrays are only defined for rectilinear rasters.
var ErrNotRectilinear = errors.New("affine transform is not rectilinear")

// ErrNegativeDimension reports a negative raster width or height.
var ErrNegativeDimension = errors.New("raster dimension must not be negative")

// ErrLengthMismatch reports slice arguments whose lengths disagree.
var ErrLengthMismatch = errors.New("coordinate slice lengths do not match")

// RangeError reports a coordinate or index lookup outside the image extent.
// It always signals a caller-side bug: the queried location is genuinely
// off-raster. It is never retried.
type RangeError struct {
	// Value is the offending world coordinate or pixel index.
	Value float64
	// Edges is the length of the pixel edge array used for the lookup.
	Edges int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("queried location %v is not in the image (%d pixel edges)", e.Value, e.Edges)
}

// Affine is a world transform in rasterio coefficient order:
//
//	x = A*col + B*row + C
//	y = D*col + E*row + F
//
// A and E are the pixel sizes (E is negative for north-up rasters), C and F
// the origin of the upper-left pixel corner, B and D the shear terms.
type Affine struct {
	A, B, C, D, E, F float64
}

// Rectilinear reports whether the transform has zero shear.
func (a Affine) Rectilinear() bool {
	return a.B == 0 && a.D == 0
}

// BoundingBox holds the four world coordinates bounding an image: the corner
// of pixel (0,0) and the outer corner of the last pixel. The coordinates are
// taken verbatim from the edge arrays and are not sorted, so X0 > Xn is
// legal for negative pixel sizes.
type BoundingBox struct {
	X0, Xn float64
	Y0, Yn float64
}

// PixelEdges builds the canonical pixel edge arrays for a raster.
//
// The transform must be rectilinear and the dimensions non-negative. For a
// width of w pixels the x array has w+1 entries with edge[i] = i*A + C, and
// likewise for y with E and F. Outputs are float64 regardless of the source
// raster's sample type.
func PixelEdges(width, height int, tr Affine) (xEdges, yEdges []float64, err error) {
	if !tr.Rectilinear() {
		return nil, nil, ErrNotRectilinear
	}
	if width < 0 || height < 0 {
		return nil, nil, fmt.Errorf("%w: %dx%d", ErrNegativeDimension, width, height)
	}

	xEdges = make([]float64, width+1)
	for i := range xEdges {
		xEdges[i] = float64(i)*tr.A + tr.C
	}
	yEdges = make([]float64, height+1)
	for i := range yEdges {
		yEdges[i] = float64(i)*tr.E + tr.F
	}

	return xEdges, yEdges, nil
}

// Bounds returns the bounding box of an image from its edge arrays: the
// first and last element of each, unchanged. Callers needing min/max must
// normalize; InBounds does so explicitly.
func Bounds(xEdges, yEdges []float64) BoundingBox {
	return BoundingBox{
		X0: xEdges[0],
		Xn: xEdges[len(xEdges)-1],
		Y0: yEdges[0],
		Yn: yEdges[len(yEdges)-1],
	}
}

// InBounds tests each (x, y) pair against the closed interval of the
// bounding box, independent of edge array direction. The coordinate slices
// must have equal length.
func InBounds(xs, ys []float64, bbox BoundingBox) ([]bool, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d x vs %d y", ErrLengthMismatch, len(xs), len(ys))
	}

	minX, maxX := minmax(bbox.X0, bbox.Xn)
	minY, maxY := minmax(bbox.Y0, bbox.Yn)

	in := make([]bool, len(xs))
	for i := range xs {
		in[i] = xs[i] >= minX && xs[i] <= maxX && ys[i] >= minY && ys[i] <= maxY
	}

	return in, nil
}

func minmax(a, b float64) (float64, float64) {
	if a <= b {
		return a, b
	}

	return b, a
}
