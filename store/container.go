package store

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	keyGroup = ".zgroup"
	keyAttrs = ".zattrs"
	keyArray = ".zarray"

	// attrFinalized marks a completely written container. Readers refuse
	// containers without it; a partial store is invalid, never partially
	// usable.
	attrFinalized = "finalized"

	storageFormat = 2
)

// ErrNotFinalized reports an attempt to open a container that was never
// finalized, i.e. the output of an aborted write.
var ErrNotFinalized = errors.New("container is not finalized")

// ErrFinalized reports a write to an already finalized container.
var ErrFinalized = errors.New("container is already finalized")

// Attributes is a JSON-serializable attribute document attached to the
// container root and to each array.
type Attributes map[string]any

type group struct {
	ZarrFormat int `json:"zarr_format"`
}

// Container is one on-disk (or in-memory) feature store: a group of chunked
// compressed arrays plus attribute documents. A container under construction
// is exclusively owned by its writer; Finalize publishes it and freezes it.
type Container struct {
	backend   Backend
	attrs     Attributes
	arrays    []finisher
	finalized bool
}

type finisher interface {
	finish() error
}

// Create starts a new container on the given backend.
func Create(backend Backend) (*Container, error) {
	c := &Container{
		backend: backend,
		attrs:   Attributes{},
	}
	if err := c.putJSON(keyGroup, group{ZarrFormat: storageFormat}); err != nil {
		return nil, err
	}

	return c, nil
}

// Open opens a finalized container for reading. Fails with ErrNotFinalized
// if the finalized marker is absent, which identifies aborted writes.
func Open(backend Backend) (*Container, error) {
	c := &Container{backend: backend, finalized: true}

	var g group
	if err := c.getJSON(keyGroup, &g); err != nil {
		return nil, err
	}
	if g.ZarrFormat != storageFormat {
		return nil, fmt.Errorf("unsupported storage format %d", g.ZarrFormat)
	}
	if err := c.getJSON(keyAttrs, &c.attrs); err != nil {
		return nil, err
	}
	if done, _ := c.attrs[attrFinalized].(bool); !done {
		return nil, ErrNotFinalized
	}

	return c, nil
}

// SetAttr sets a root attribute. Attributes are persisted at Finalize.
func (c *Container) SetAttr(key string, value any) {
	c.attrs[key] = value
}

// Attr returns a root attribute. JSON decoding rules apply to containers
// opened from a backend: numbers come back as float64.
func (c *Container) Attr(key string) (any, bool) {
	v, ok := c.attrs[key]
	return v, ok
}

// Attrs returns the root attribute document.
func (c *Container) Attrs() Attributes {
	return c.attrs
}

// Finalize completes the container: every array must be fully written, the
// attribute documents are persisted with the finalized marker, and a staging
// backend is committed. After Finalize the container is read-only.
func (c *Container) Finalize() error {
	if c.finalized {
		return ErrFinalized
	}

	for _, a := range c.arrays {
		if err := a.finish(); err != nil {
			return err
		}
	}

	c.attrs[attrFinalized] = true
	if err := c.putJSON(keyAttrs, c.attrs); err != nil {
		return err
	}

	if committer, ok := c.backend.(Committer); ok {
		if err := committer.Commit(); err != nil {
			return err
		}
	}
	c.finalized = true

	return nil
}

func (c *Container) putJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return c.backend.Put(key, data)
}

func (c *Container) getJSON(key string, v any) error {
	data, err := c.backend.Get(key)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, v)
}
