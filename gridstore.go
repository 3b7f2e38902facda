// Package gridstore ingests large, possibly larger-than-memory gridded
// raster data and produces a normalized, chunked, compressed on-disk array
// representation suitable for repeated random-access reads during model
// training and inference.
//
// # Core Features
//
//   - Exact, aliasing-free world <-> pixel index mapping via pixel edge arrays
//   - Single-pass streaming mean/variance for ordinal standardization
//   - Incremental dense recoding of categorical bands with missing sentinels
//   - Block-streaming writer with bounded memory, independent of raster size
//   - Chunked storage with pluggable compression (None, Zstd, S2, LZ4) and
//     per-chunk xxhash64 checksums
//   - Atomic publication: an aborted import never leaves a readable store
//
// # Basic Usage
//
// Importing an in-memory ordinal stack with standardization:
//
//	import "github.com/rasterly/gridstore"
//
//	ord, _ := raster.NewMemStack[float32](height, width, blockRows,
//	    tr, "EPSG:4326", []string{"elevation"},
//	    []format.Sentinel[float32]{format.SomeSentinel[float32](-9999)},
//	    samples)
//
//	md, err := gridstore.Import("features.gzs", ord, nil)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(md.Ordinal.Means)
//
// Reading it back for training:
//
//	c, _ := gridstore.Open("features.gzs")
//	arr, _ := store.OpenArray[float32](c, writer.OrdinalArray)
//	rows, _ := arr.ReadRows(128, 16)
//
// # Package Structure
//
// This package provides thin wrappers over the writer and store packages for
// the common import/open cycle. The geometry, stats and category packages
// hold the coordinate mapping, streaming statistics and categorical recoding
// that the writer composes; use them directly for fine-grained control.
package gridstore

import (
	"errors"

	"github.com/rasterly/gridstore/meta"
	"github.com/rasterly/gridstore/raster"
	"github.com/rasterly/gridstore/store"
	"github.com/rasterly/gridstore/writer"
)

// Import streams the given stacks into a new feature store directory at
// path, published atomically on success. At least one stack must be non-nil.
// The staging directory is removed on failure.
func Import(path string, ord raster.Stack[float32], cat raster.Stack[int32], opts ...writer.Option) (*meta.FeatureSet, error) {
	backend, err := store.CreateLocal(path)
	if err != nil {
		return nil, err
	}

	md, err := importInto(backend, ord, cat, opts...)
	if err != nil {
		return nil, errors.Join(err, backend.Abandon())
	}

	return md, nil
}

// ImportInto streams the given stacks into an arbitrary backend, for callers
// providing their own storage. The container is finalized on success; on
// failure the backend holds an unfinalized (invalid) container.
func ImportInto(backend store.Backend, ord raster.Stack[float32], cat raster.Stack[int32], opts ...writer.Option) (*meta.FeatureSet, error) {
	return importInto(backend, ord, cat, opts...)
}

func importInto(backend store.Backend, ord raster.Stack[float32], cat raster.Stack[int32], opts ...writer.Option) (*meta.FeatureSet, error) {
	c, err := store.Create(backend)
	if err != nil {
		return nil, err
	}

	return writer.Write(c, ord, cat, opts...)
}

// Open opens a finalized feature store directory for reading.
func Open(path string) (*store.Container, error) {
	backend, err := store.OpenLocal(path)
	if err != nil {
		return nil, err
	}

	return store.Open(backend)
}

// Metadata loads the typed metadata document of a finalized store.
func Metadata(path string) (*meta.FeatureSet, error) {
	c, err := Open(path)
	if err != nil {
		return nil, err
	}

	return meta.Load(c)
}
