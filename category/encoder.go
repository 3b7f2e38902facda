// Package category implements incremental re-encoding of raw categorical
// raster values to dense zero-based integer codes.
//
// Code 0 is the missing slot of every feature: a defined sentinel maps to it
// before the first block is observed and that entry never changes; without a
// sentinel the slot stays unoccupied. Real values are coded from 1 upward on
// first sight and codes are never reused, so a block recoded early in a
// stream stays consistent with the finished table: recoding is idempotent
// and the mapping only grows. Within one block, previously unseen values are
// discovered by a sorted-unique scan and numbered in ascending value order,
// which makes the full code assignment a deterministic function of the block
// sequence.
package category

import (
	"fmt"
	"slices"

	"github.com/rasterly/gridstore/format"
	"github.com/rasterly/gridstore/internal/options"
)

// DefaultMaxCategories bounds the table size of a single feature before the
// import is aborted. High-cardinality columns are almost always a mislabeled
// ordinal band.
const DefaultMaxCategories = 5000

// CapacityError reports a feature whose category table exceeded the
// configured maximum. Fatal; there is no recovery policy.
type CapacityError struct {
	Feature int
	Limit   int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("feature %d exceeds the maximum of %d categories", e.Feature, e.Limit)
}

type featureTable struct {
	values []int32         // raw value by code; index 0 is the missing slot
	codes  map[int32]int32 // raw value -> code
}

// Encoder maps raw categorical values to dense codes, one table per feature.
// It is owned by a single traversal and is not safe for concurrent use.
type Encoder struct {
	maxCategories int
	missing       []format.Sentinel[int32]
	feats         []featureTable
}

// Option configures an Encoder.
type Option = options.Option[*Encoder]

// WithMaxCategories overrides DefaultMaxCategories.
func WithMaxCategories(n int) Option {
	return options.New(func(e *Encoder) error {
		if n < 1 {
			return fmt.Errorf("max categories must be positive, got %d", n)
		}
		e.maxCategories = n

		return nil
	})
}

// NewEncoder creates an encoder for len(missing) features. Every feature
// reserves code 0 as its missing slot; a feature with a defined sentinel has
// {sentinel -> 0} mapped from the start, and that entry never changes.
func NewEncoder(missing []format.Sentinel[int32], opts ...Option) (*Encoder, error) {
	e := &Encoder{
		maxCategories: DefaultMaxCategories,
		missing:       slices.Clone(missing),
		feats:         make([]featureTable, len(missing)),
	}
	if err := options.Apply(e, opts...); err != nil {
		return nil, err
	}

	for f := range e.feats {
		ft := &e.feats[f]
		ft.codes = make(map[int32]int32)
		if missing[f].Defined {
			ft.values = []int32{missing[f].Value}
			ft.codes[missing[f].Value] = 0
		} else {
			// Unoccupied missing slot; no raw value resolves to code 0.
			ft.values = []int32{0}
		}
	}

	return e, nil
}

// NFeatures returns the number of feature tables.
func (e *Encoder) NFeatures() int {
	return len(e.feats)
}

// Observe recodes a block in place.
//
// The block is samples x features in row-major order, so len(data) must be
// a multiple of NFeatures(). Unseen raw values extend each feature's table
// in ascending value order before the rewrite; values already mapped keep
// their existing codes. The original raw values are not retained in the
// block.
//
// Returns a CapacityError if any feature's table would exceed the
// configured maximum.
func (e *Encoder) Observe(data []int32) error {
	nf := len(e.feats)
	if nf == 0 || len(data)%nf != 0 {
		return fmt.Errorf("block of %d values is not a multiple of %d features", len(data), nf)
	}
	samples := len(data) / nf

	for f := range e.feats {
		ft := &e.feats[f]

		// Sorted-unique scan of values not yet in the table.
		var fresh []int32
		for s := 0; s < samples; s++ {
			v := data[s*nf+f]
			if _, ok := ft.codes[v]; !ok {
				fresh = append(fresh, v)
			}
		}
		if len(fresh) > 0 {
			slices.Sort(fresh)
			fresh = slices.Compact(fresh)

			if len(ft.values)+len(fresh) > e.maxCategories {
				return &CapacityError{Feature: f, Limit: e.maxCategories}
			}
			for _, v := range fresh {
				ft.codes[v] = int32(len(ft.values))
				ft.values = append(ft.values, v)
			}
		}

		for s := 0; s < samples; s++ {
			i := s*nf + f
			data[i] = ft.codes[data[i]]
		}
	}

	return nil
}

// Table is the frozen mapping for one feature.
type Table struct {
	// Values holds the raw value for each code, so len(Values) is the
	// feature's cardinality including the missing slot. Values[0] inverts
	// code 0 only when Missing is defined.
	Values []int32
	// Missing is the sentinel occupying code 0, if the feature has one.
	Missing format.Sentinel[int32]
}

// Tables returns a snapshot of every feature's mapping.
func (e *Encoder) Tables() []Table {
	out := make([]Table, len(e.feats))
	for f := range e.feats {
		out[f] = Table{
			Values:  slices.Clone(e.feats[f].values),
			Missing: e.missing[f],
		}
	}

	return out
}
