package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotFound reports a missing key in a backend.
var ErrNotFound = errors.New("key not found")

// Backend is the flat key-value surface a container persists into. Keys are
// slash-separated logical paths ("ordinal_data/3.0", ".zattrs").
type Backend interface {
	Get(key string) ([]byte, error)
	Put(key string, data []byte) error
}

// Committer is implemented by backends that stage writes and publish them
// atomically. A container calls Commit exactly once, at finalization; an
// aborted write never reaches the published location.
type Committer interface {
	Commit() error
}

// MemoryBackend keeps all keys in memory. Used in tests and for small
// derived stores that never touch disk.
type MemoryBackend struct {
	mu   sync.Mutex
	data map[string][]byte
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (b *MemoryBackend) Get(key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	d, ok := b.data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	return d, nil
}

func (b *MemoryBackend) Put(key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	cp := make([]byte, len(data))
	copy(cp, data)
	b.data[key] = cp

	return nil
}

// Len returns the number of stored keys.
func (b *MemoryBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.data)
}

// LocalBackend stores each key as a file under a root directory.
//
// A backend created with CreateLocal stages everything in a ".partial"
// sibling of the target directory; Commit renames it into place, so a
// crashed or aborted write never leaves a half-built store at the published
// path. OpenLocal reads a committed directory.
type LocalBackend struct {
	root    string
	staging string // non-empty until committed
}

var (
	_ Backend   = (*LocalBackend)(nil)
	_ Committer = (*LocalBackend)(nil)
)

// CreateLocal creates a staging directory for a store that will be published
// at path on Commit. Fails if path already exists.
func CreateLocal(path string) (*LocalBackend, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(abs); err == nil {
		return nil, fmt.Errorf("destination already exists: %s", abs)
	}

	staging := abs + ".partial"
	if err := os.RemoveAll(staging); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return nil, err
	}

	return &LocalBackend{root: abs, staging: staging}, nil
}

// OpenLocal opens a committed store directory for reading.
func OpenLocal(path string) (*LocalBackend, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, err
	}

	return &LocalBackend{root: abs}, nil
}

func (b *LocalBackend) dir() string {
	if b.staging != "" {
		return b.staging
	}

	return b.root
}

func (b *LocalBackend) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(b.dir(), filepath.FromSlash(key)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	return data, err
}

func (b *LocalBackend) Put(key string, data []byte) error {
	path := filepath.Join(b.dir(), filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// Commit publishes the staging directory at the target path.
func (b *LocalBackend) Commit() error {
	if b.staging == "" {
		return nil
	}
	if err := os.Rename(b.staging, b.root); err != nil {
		return err
	}
	b.staging = ""

	return nil
}

// Abandon removes the staging directory of an uncommitted backend.
func (b *LocalBackend) Abandon() error {
	if b.staging == "" {
		return nil
	}

	return os.RemoveAll(b.staging)
}
