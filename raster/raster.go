// Package raster defines the block-streaming interface between gridstore and
// external raster readers.
//
// Decoding raster files (GeoTIFF and friends) is out of scope for this
// module; a reader plugs in by implementing Stack. The unit of streaming is
// the Block: a contiguous slab of rows with all bands interleaved per pixel,
// consumed once and discarded, so peak memory stays bounded by one block no
// matter how large the raster is.
package raster

import (
	"fmt"
	"iter"

	"github.com/rasterly/gridstore/format"
	"github.com/rasterly/gridstore/geometry"
)

// Block is a rectangular slab of raster samples. Data holds
// Rows*Cols*Bands values in row-major order with bands interleaved per
// pixel: Data[(r*Cols+c)*Bands+b].
type Block[T format.Element] struct {
	// StartRow is the block's first row in image coordinates.
	StartRow int
	Rows     int
	Cols     int
	Bands    int
	Data     []T
}

// Len returns the expected flat length Rows*Cols*Bands.
func (b Block[T]) Len() int {
	return b.Rows * b.Cols * b.Bands
}

// Mask builds the per-element validity mask for a block: entry i is true
// (masked, excluded) when its band's sentinel is defined and the value
// equals it. The sentinel list length must equal the band count.
func (b Block[T]) Mask(missing []format.Sentinel[T]) ([]bool, error) {
	if len(missing) != b.Bands {
		return nil, fmt.Errorf("%d missing values for %d bands", len(missing), b.Bands)
	}

	mask := make([]bool, len(b.Data))
	for i, v := range b.Data {
		mask[i] = missing[i%b.Bands].Matches(v)
	}

	return mask, nil
}

// Stack is one logical feature stack exposed by an external raster reader.
//
// Blocks must return a fresh, restartable sequence covering the whole raster
// exactly once in fixed row-major traversal order; the writer iterates the
// source twice when standardizing. Every block but the last must have
// BlockRows rows, and yielded blocks are owned by the consumer (the writer
// rewrites categorical blocks in place).
type Stack[T format.Element] interface {
	Height() int
	Width() int
	// BlockRows is the natural block height of the traversal; it also
	// becomes the chunk height of the destination arrays.
	BlockRows() int
	Affine() geometry.Affine
	CRS() string
	Labels() []string
	Missing() []format.Sentinel[T]
	Blocks() iter.Seq2[Block[T], error]
}
