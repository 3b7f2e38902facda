// Package store implements the chunked, compressed on-disk array container
// that gridstore writes feature data into.
//
// A container is a flat key space (a directory on disk or a map in memory)
// holding a group marker, JSON attribute documents and one compressed chunk
// file per chunk of each array, following the zarr v2 layout: ".zgroup",
// ".zattrs", "<array>/.zarray", "<array>/.zattrs" and chunk keys of the form
// "<array>/<i>.0". Chunks span whole rows and carry an xxhash64 checksum
// ahead of the compressed payload.
//
// Containers under construction are invisible to readers: the local backend
// stages everything in a ".partial" directory that is renamed into place at
// Finalize, and Open refuses any container missing the finalized marker
// attribute. A failed write therefore never yields a partially usable store.
package store
