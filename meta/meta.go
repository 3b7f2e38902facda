// Package meta defines the typed metadata model persisted alongside a
// written feature store: image geometry, per-band labels and sentinels, and
// the derived standardization statistics and category tables.
//
// Everything here is JSON-serializable; the writer stores a FeatureSet as
// the container's "metadata" root attribute and training code loads it back
// with Load. Absent values are explicit: a store written without
// standardization carries null means and variances, never zeros.
package meta

import (
	"encoding/json"
	"errors"

	"github.com/rasterly/gridstore/format"
	"github.com/rasterly/gridstore/store"
)

// AttrMetadata is the root attribute key holding the FeatureSet document.
const AttrMetadata = "metadata"

// ErrNoStacks reports a feature set with neither ordinal nor categorical
// features.
var ErrNoStacks = errors.New("feature set needs at least one of ordinal and categorical features")

// ImageSpec is the shared image geometry of a feature set.
type ImageSpec struct {
	Height int       `json:"height"`
	Width  int       `json:"width"`
	CRS    string    `json:"crs"`
	XEdges []float64 `json:"x_coordinates"`
	YEdges []float64 `json:"y_coordinates"`
}

// Ordinal describes the ordinal feature array. Means and Variances are nil
// when standardization was not requested, which serializes to an explicit
// null marker.
type Ordinal struct {
	Labels    []string                   `json:"labels"`
	Missing   []format.Sentinel[float32] `json:"missing_values"`
	Means     []float64                  `json:"mean"`
	Variances []float64                  `json:"variance"`
}

// Categorical describes the categorical feature array after recoding.
// Mappings[f][code] is the raw value behind each dense code; Missing holds
// the post-recode sentinels, which are 0 for every band that had one.
type Categorical struct {
	Labels      []string                 `json:"labels"`
	Missing     []format.Sentinel[int32] `json:"missing_values"`
	Mappings    [][]int32                `json:"mappings"`
	NCategories []int                    `json:"ncategories"`
}

// FeatureSet is the complete metadata document of one written store.
type FeatureSet struct {
	Image       ImageSpec    `json:"image"`
	Ordinal     *Ordinal     `json:"ordinal"`
	Categorical *Categorical `json:"categorical"`
}

// Validate checks the structural invariant: at least one feature kind.
func (m *FeatureSet) Validate() error {
	if m.Ordinal == nil && m.Categorical == nil {
		return ErrNoStacks
	}

	return nil
}

// Load reads the FeatureSet document back from a finalized container.
func Load(c *store.Container) (*FeatureSet, error) {
	raw, ok := c.Attr(AttrMetadata)
	if !ok {
		return nil, errors.New("container has no metadata attribute")
	}

	// The attribute document round-trips through generic JSON on read, so
	// re-marshal into the typed form.
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	m := &FeatureSet{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}
