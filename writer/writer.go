// Package writer orchestrates the streaming import of raster feature stacks
// into a chunked compressed store.
//
// The writer pulls one block at a time from each source stack, fully
// processes it and discards it, so peak memory is one block plus the
// statistics accumulators and category tables regardless of raster size.
// Ordinal standardization uses two passes over a restartable source: one to
// accumulate moments, one to write transformed blocks. Categorical recoding
// is single-pass because codes are assigned on first sight and never change.
//
// Everything is single-threaded and pull-based. A failure during any block
// aborts the write and the destination container is never finalized, which
// readers treat as invalid.
package writer

import (
	"fmt"
	"math"
	"slices"

	"github.com/rasterly/gridstore/category"
	"github.com/rasterly/gridstore/format"
	"github.com/rasterly/gridstore/geometry"
	"github.com/rasterly/gridstore/meta"
	"github.com/rasterly/gridstore/raster"
	"github.com/rasterly/gridstore/stats"
	"github.com/rasterly/gridstore/store"
)

// Array names within the destination container.
const (
	OrdinalArray     = "ordinal_data"
	CategoricalArray = "categorical_data"
)

// ErrStackMismatch reports ordinal and categorical stacks whose geometry
// disagrees. Both stacks must describe the same image.
var ErrStackMismatch = fmt.Errorf("ordinal and categorical image specifications do not match")

// ZeroVarianceError reports ordinal bands whose variance is zero, which
// standardization cannot rescale.
type ZeroVarianceError struct {
	Labels []string
}

func (e *ZeroVarianceError) Error() string {
	return fmt.Sprintf("bands with zero variance cannot be standardized: %v", e.Labels)
}

// Write streams one or two feature stacks into the container and finalizes
// it. At least one stack must be non-nil; when both are given their
// height, width and pixel edge arrays must be identical.
//
// Returns the metadata document that was persisted as the container's
// "metadata" attribute.
func Write(c *store.Container, ord raster.Stack[float32], cat raster.Stack[int32], opts ...Option) (*meta.FeatureSet, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	log := cfg.logger

	var global interface {
		Height() int
		Width() int
		Affine() geometry.Affine
		CRS() string
	}
	switch {
	case ord != nil:
		global = ord
	case cat != nil:
		global = cat
	default:
		return nil, meta.ErrNoStacks
	}

	xEdges, yEdges, err := geometry.PixelEdges(global.Width(), global.Height(), global.Affine())
	if err != nil {
		return nil, err
	}
	if ord != nil && cat != nil {
		if err := checkStackable(ord, cat); err != nil {
			return nil, err
		}
	}

	image := meta.ImageSpec{
		Height: global.Height(),
		Width:  global.Width(),
		CRS:    global.CRS(),
		XEdges: xEdges,
		YEdges: yEdges,
	}

	log.Info("writing global attributes", "height", image.Height, "width", image.Width, "crs", image.CRS)
	c.SetAttr("height", image.Height)
	c.SetAttr("width", image.Width)
	c.SetAttr("crs", image.CRS)
	c.SetAttr("x_coordinates", xEdges)
	c.SetAttr("y_coordinates", yEdges)

	fs := &meta.FeatureSet{Image: image}
	if ord != nil {
		fs.Ordinal, err = writeOrdinal(c, ord, cfg)
		if err != nil {
			return nil, err
		}
	}
	if cat != nil {
		fs.Categorical, err = writeCategorical(c, cat, cfg)
		if err != nil {
			return nil, err
		}
	}

	c.SetAttr(meta.AttrMetadata, fs)
	if err := c.Finalize(); err != nil {
		return nil, err
	}
	log.Info("container finalized")

	return fs, nil
}

// checkStackable verifies both stacks describe the same image: equal
// dimensions and identical pixel edge arrays.
func checkStackable(ord raster.Stack[float32], cat raster.Stack[int32]) error {
	if ord.Height() != cat.Height() || ord.Width() != cat.Width() {
		return fmt.Errorf("%w: %dx%d vs %dx%d", ErrStackMismatch,
			ord.Height(), ord.Width(), cat.Height(), cat.Width())
	}

	ox, oy, err := geometry.PixelEdges(ord.Width(), ord.Height(), ord.Affine())
	if err != nil {
		return err
	}
	cx, cy, err := geometry.PixelEdges(cat.Width(), cat.Height(), cat.Affine())
	if err != nil {
		return err
	}
	if !slices.Equal(ox, cx) || !slices.Equal(oy, cy) {
		return fmt.Errorf("%w: pixel edge arrays differ", ErrStackMismatch)
	}

	return nil
}

func writeOrdinal(c *store.Container, ord raster.Stack[float32], cfg *config) (*meta.Ordinal, error) {
	log := cfg.logger
	labels := ord.Labels()
	missing := ord.Missing()
	bands := len(labels)

	arr, err := store.CreateArray[float32](c, OrdinalArray,
		ord.Height(), ord.Width(), bands, ord.BlockRows(), cfg.compression)
	if err != nil {
		return nil, err
	}
	log.Info("created ordinal array", "bands", bands, "chunk_rows", arr.ChunkRows(), "compression", cfg.compression.String())

	arr.SetAttr("labels", labels)
	arr.SetAttr("missing_values", missing)

	m := &meta.Ordinal{Labels: labels, Missing: missing}

	if !cfg.standardize {
		arr.SetAttr("mean", nil)
		arr.SetAttr("variance", nil)

		log.Info("writing ordinal data")
		if err := forEachBlock(ord, bands, func(b raster.Block[float32]) error {
			return arr.WriteRows(b.StartRow, b.Data)
		}); err != nil {
			return nil, err
		}

		return m, nil
	}

	// Pass 1: masked moments over every block, in traversal order.
	log.Info("computing ordinal statistics for standardisation")
	acc := stats.NewAccumulator(bands)
	err = forEachBlock(ord, bands, func(b raster.Block[float32]) error {
		mask, err := b.Mask(missing)
		if err != nil {
			return err
		}

		return acc.Update(b.Data, mask)
	})
	if err != nil {
		return nil, err
	}

	mean, err := acc.Mean()
	if err != nil {
		return nil, err
	}
	variance, err := acc.Variance()
	if err != nil {
		return nil, err
	}
	if zeroed := zeroVarianceLabels(variance, labels); len(zeroed) > 0 {
		return nil, &ZeroVarianceError{Labels: zeroed}
	}

	stddev := make([]float64, bands)
	for f := range stddev {
		stddev[f] = math.Sqrt(variance[f])
	}

	// Pass 2: transform on the masked view, sentinel values pass through
	// untouched.
	log.Info("writing standardised ordinal data")
	err = forEachBlock(ord, bands, func(b raster.Block[float32]) error {
		mask, err := b.Mask(missing)
		if err != nil {
			return err
		}
		for i, v := range b.Data {
			if mask[i] {
				continue
			}
			f := i % bands
			b.Data[i] = float32((float64(v) - mean[f]) / stddev[f])
		}

		return arr.WriteRows(b.StartRow, b.Data)
	})
	if err != nil {
		return nil, err
	}

	arr.SetAttr("mean", mean)
	arr.SetAttr("variance", variance)
	m.Means = mean
	m.Variances = variance

	return m, nil
}

func writeCategorical(c *store.Container, cat raster.Stack[int32], cfg *config) (*meta.Categorical, error) {
	log := cfg.logger
	labels := cat.Labels()
	missing := cat.Missing()
	bands := len(labels)

	arr, err := store.CreateArray[int32](c, CategoricalArray,
		cat.Height(), cat.Width(), bands, cat.BlockRows(), cfg.compression)
	if err != nil {
		return nil, err
	}
	log.Info("created categorical array", "bands", bands, "chunk_rows", arr.ChunkRows(), "compression", cfg.compression.String())

	enc, err := category.NewEncoder(missing, category.WithMaxCategories(cfg.maxCategories))
	if err != nil {
		return nil, err
	}

	// Single pass: codes are monotonic and table lookups idempotent, so
	// blocks recoded early stay consistent with the final tables.
	log.Info("transforming and writing categorical data")
	err = forEachBlock(cat, bands, func(b raster.Block[int32]) error {
		if err := enc.Observe(b.Data); err != nil {
			return err
		}

		return arr.WriteRows(b.StartRow, b.Data)
	})
	if err != nil {
		return nil, err
	}

	tables := enc.Tables()
	m := &meta.Categorical{
		Labels:      labels,
		Missing:     make([]format.Sentinel[int32], bands),
		Mappings:    make([][]int32, bands),
		NCategories: make([]int, bands),
	}
	for f, t := range tables {
		m.Mappings[f] = t.Values
		m.NCategories[f] = len(t.Values)
		if t.Missing.Defined {
			// Recoding maps every sentinel to code 0.
			m.Missing[f] = format.SomeSentinel[int32](0)
		}
	}

	arr.SetAttr("labels", labels)
	arr.SetAttr("missing_values", m.Missing)
	arr.SetAttr("mappings", m.Mappings)
	arr.SetAttr("ncategories", m.NCategories)

	return m, nil
}

// forEachBlock runs fn over one full traversal of the stack, validating
// block shape against the stack geometry.
func forEachBlock[T format.Element](s raster.Stack[T], bands int, fn func(raster.Block[T]) error) error {
	for b, err := range s.Blocks() {
		if err != nil {
			return err
		}
		if b.Cols != s.Width() || b.Bands != bands || b.Len() != len(b.Data) {
			return fmt.Errorf("malformed block at row %d: %dx%dx%d with %d values",
				b.StartRow, b.Rows, b.Cols, b.Bands, len(b.Data))
		}
		if err := fn(b); err != nil {
			return err
		}
	}

	return nil
}

func zeroVarianceLabels(variance []float64, labels []string) []string {
	var zeroed []string
	for f, v := range variance {
		if v == 0 {
			zeroed = append(zeroed, labels[f])
		}
	}

	return zeroed
}
