// Package stats implements single-pass streaming mean and variance over
// partially-masked numeric blocks.
//
// An Accumulator holds one (mean, m2, count) triple per feature and merges
// batch moments with the parallel combination rule, so a raster larger than
// memory can be standardized from one forward pass over its blocks. Merging
// is mathematically associative but floating-point results track the literal
// arrival order of the blocks; callers must feed blocks in a fixed order for
// reproducible output.
package stats

import (
	"errors"
	"fmt"
	"math"
)

// ErrTooFewSamples reports a moment read on a feature observed in fewer than
// two valid samples across the whole stream. This is a precondition
// violation, not a recoverable condition.
var ErrTooFewSamples = errors.New("feature needs at least 2 valid samples")

// ErrBlockShape reports a block whose flat length is not a whole number of
// samples, or a batch of fewer than two samples.
var ErrBlockShape = errors.New("invalid block shape")

// ErrMaskLength reports a mask whose length differs from the block's.
var ErrMaskLength = errors.New("mask length does not match block length")

// Accumulator is a per-feature streaming moment accumulator. The zero value
// is not usable; construct with NewAccumulator.
type Accumulator struct {
	mean  []float64
	m2    []float64
	count []int64
}

// NewAccumulator creates an accumulator for nFeatures features.
func NewAccumulator(nFeatures int) *Accumulator {
	return &Accumulator{
		mean:  make([]float64, nFeatures),
		m2:    make([]float64, nFeatures),
		count: make([]int64, nFeatures),
	}
}

// NFeatures returns the number of features tracked.
func (a *Accumulator) NFeatures() int {
	return len(a.mean)
}

// Update merges one block into the accumulator.
//
// The block is interpreted as samples x features in row-major order, so
// len(data) must be a multiple of NFeatures() and describe more than one
// sample. mask marks excluded entries element-for-element; a nil mask means
// every entry is valid.
//
// Per feature the batch count, mean and population moment are computed over
// the unmasked entries and merged as
//
//	delta = batchMean - mean
//	weight = batchCount / (batchCount + count)
//	mean += delta * weight
//	m2 += batchM2 + delta*delta*float64(count)*weight
//	count += batchCount
//
// with count read before the merge. Blocks must arrive in traversal order.
func (a *Accumulator) Update(data []float32, mask []bool) error {
	nf := len(a.mean)
	if nf == 0 || len(data)%nf != 0 {
		return fmt.Errorf("%w: %d values for %d features", ErrBlockShape, len(data), nf)
	}
	samples := len(data) / nf
	if samples < 2 {
		return fmt.Errorf("%w: need more than 1 sample, got %d", ErrBlockShape, samples)
	}
	if mask != nil && len(mask) != len(data) {
		return fmt.Errorf("%w: %d mask entries for %d values", ErrMaskLength, len(mask), len(data))
	}

	for f := 0; f < nf; f++ {
		var (
			batchCount int64
			batchMean  float64
			batchM2    float64
		)
		// Welford over the feature column; one pass, masked entries skipped.
		for s := 0; s < samples; s++ {
			i := s*nf + f
			if mask != nil && mask[i] {
				continue
			}
			batchCount++
			d := float64(data[i]) - batchMean
			batchMean += d / float64(batchCount)
			batchM2 += d * (float64(data[i]) - batchMean)
		}
		if batchCount == 0 {
			continue
		}

		delta := batchMean - a.mean[f]
		weight := float64(batchCount) / float64(batchCount+a.count[f])
		a.mean[f] += delta * weight
		a.m2[f] += batchM2 + delta*delta*float64(a.count[f])*weight
		a.count[f] += batchCount
	}

	return nil
}

// Count returns the number of valid samples seen per feature.
func (a *Accumulator) Count() []int64 {
	out := make([]int64, len(a.count))
	copy(out, a.count)

	return out
}

// Mean returns the accumulated mean per feature. Fails with ErrTooFewSamples
// if any feature has seen fewer than two valid samples.
func (a *Accumulator) Mean() ([]float64, error) {
	if err := a.check(); err != nil {
		return nil, err
	}
	out := make([]float64, len(a.mean))
	copy(out, a.mean)

	return out, nil
}

// Variance returns the accumulated population variance (m2/n, ddof=0) per
// feature. Fails with ErrTooFewSamples if any feature has seen fewer than
// two valid samples.
func (a *Accumulator) Variance() ([]float64, error) {
	if err := a.check(); err != nil {
		return nil, err
	}
	out := make([]float64, len(a.m2))
	for f := range out {
		out[f] = a.m2[f] / float64(a.count[f])
	}

	return out, nil
}

// StdDev returns the per-feature population standard deviation.
func (a *Accumulator) StdDev() ([]float64, error) {
	v, err := a.Variance()
	if err != nil {
		return nil, err
	}
	for f := range v {
		v[f] = math.Sqrt(v[f])
	}

	return v, nil
}

func (a *Accumulator) check() error {
	for f, n := range a.count {
		if n <= 1 {
			return fmt.Errorf("%w: feature %d has %d", ErrTooFewSamples, f, n)
		}
	}

	return nil
}
