// Package hash computes chunk content checksums.
package hash

import "github.com/cespare/xxhash/v2"

// Checksum computes the xxHash64 of a chunk payload.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}
