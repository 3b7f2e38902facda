package format

import (
	"bytes"
	"encoding/json"
)

// Element constrains the raster sample types gridstore stores: float32 for
// ordinal bands and int32 for categorical bands.
type Element interface {
	float32 | int32
}

// Sentinel is a per-band missing-value marker. An undefined sentinel disables
// missing-value masking for that band entirely.
//
// The zero value is an undefined sentinel. Sentinel equality is literal value
// equality: a defined sentinel of 0 masks samples equal to 0, it is never
// treated as "unset".
type Sentinel[T Element] struct {
	Value   T
	Defined bool
}

// SomeSentinel returns a defined sentinel for the given raw value.
func SomeSentinel[T Element](v T) Sentinel[T] {
	return Sentinel[T]{Value: v, Defined: true}
}

// NoSentinel returns an undefined sentinel.
func NoSentinel[T Element]() Sentinel[T] {
	return Sentinel[T]{}
}

// Matches reports whether v is the missing value for this band.
// Always false for an undefined sentinel.
func (s Sentinel[T]) Matches(v T) bool {
	return s.Defined && v == s.Value
}

var jsonNull = []byte("null")

// MarshalJSON encodes a defined sentinel as its raw value and an undefined
// sentinel as null, so attribute documents carry an explicit "absent" marker.
func (s Sentinel[T]) MarshalJSON() ([]byte, error) {
	if !s.Defined {
		return jsonNull, nil
	}

	return json.Marshal(s.Value)
}

// UnmarshalJSON decodes null as an undefined sentinel.
func (s *Sentinel[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		*s = Sentinel[T]{}
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = Sentinel[T]{Value: v, Defined: true}

	return nil
}
