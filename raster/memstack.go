package raster

import (
	"fmt"
	"iter"
	"slices"

	"github.com/rasterly/gridstore/format"
	"github.com/rasterly/gridstore/geometry"
)

// MemStack is an in-memory Stack implementation, used in tests and as the
// reference for reader authors. It holds the full raster, which defeats the
// streaming design for anything big; real readers should decode blocks
// lazily.
type MemStack[T format.Element] struct {
	height    int
	width     int
	blockRows int
	tr        geometry.Affine
	crs       string
	labels    []string
	missing   []format.Sentinel[T]
	data      []T
}

var _ Stack[float32] = (*MemStack[float32])(nil)

// NewMemStack creates a MemStack over data, which must hold
// height*width*len(labels) samples band-interleaved in row-major order.
// blockRows sets the traversal block height.
func NewMemStack[T format.Element](
	height, width, blockRows int,
	tr geometry.Affine,
	crs string,
	labels []string,
	missing []format.Sentinel[T],
	data []T,
) (*MemStack[T], error) {
	if blockRows < 1 {
		return nil, fmt.Errorf("block rows must be positive, got %d", blockRows)
	}
	if len(missing) != len(labels) {
		return nil, fmt.Errorf("%d missing values for %d bands", len(missing), len(labels))
	}
	if want := height * width * len(labels); len(data) != want {
		return nil, fmt.Errorf("%d samples for a %dx%dx%d stack, want %d",
			len(data), height, width, len(labels), want)
	}

	return &MemStack[T]{
		height:    height,
		width:     width,
		blockRows: blockRows,
		tr:        tr,
		crs:       crs,
		labels:    labels,
		missing:   missing,
		data:      data,
	}, nil
}

func (s *MemStack[T]) Height() int                   { return s.height }
func (s *MemStack[T]) Width() int                    { return s.width }
func (s *MemStack[T]) BlockRows() int                { return s.blockRows }
func (s *MemStack[T]) Affine() geometry.Affine       { return s.tr }
func (s *MemStack[T]) CRS() string                   { return s.crs }
func (s *MemStack[T]) Labels() []string              { return s.labels }
func (s *MemStack[T]) Missing() []format.Sentinel[T] { return s.missing }

// Blocks yields consecutive row slabs of blockRows rows (the last may be
// shorter). Each call starts a fresh traversal, and each block's Data is a
// copy, so consumers may rewrite it without corrupting later passes.
func (s *MemStack[T]) Blocks() iter.Seq2[Block[T], error] {
	bands := len(s.labels)
	rowLen := s.width * bands

	return func(yield func(Block[T], error) bool) {
		for start := 0; start < s.height; start += s.blockRows {
			rows := min(s.blockRows, s.height-start)
			b := Block[T]{
				StartRow: start,
				Rows:     rows,
				Cols:     s.width,
				Bands:    bands,
				Data:     slices.Clone(s.data[start*rowLen : (start+rows)*rowLen]),
			}
			if !yield(b, nil) {
				return
			}
		}
	}
}
