package mmap

import (
	"errors"
	"os"
	"sync/atomic"
	"unsafe"
)

// Mapping represents a read-write memory mapping.
// It owns the underlying byte slice and is responsible for unmapping it.
type Mapping struct {
	data   []byte
	size   int
	closed atomic.Bool
	// unmap is the platform-specific function to unmap the memory.
	unmap func([]byte) error
	// path is the backing file of a shared mapping.
	path string
	// owner mappings unlink path on Close.
	owner bool
}

// MapAnon creates a private, zero-filled anonymous mapping of size bytes.
func MapAnon(size int) (*Mapping, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	data, unmapFunc, err := osMapAnon(size)
	if err != nil {
		return nil, err
	}

	return &Mapping{
		data:  data,
		size:  size,
		unmap: unmapFunc,
	}, nil
}

// CreateShared creates the file at path, sizes it to size bytes and maps it
// read-write and shared. The file must not exist yet.
//
// The returned mapping owns the file: Close unmaps it and removes path.
func CreateShared(path string, size int) (*Mapping, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := f.Truncate(int64(size)); err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	data, unmapFunc, err := osMapShared(f, size)
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	return &Mapping{
		data:  data,
		size:  size,
		unmap: unmapFunc,
		path:  path,
		owner: true,
	}, nil
}

// OpenShared maps an existing file created by CreateShared.
// Close unmaps but leaves the file in place.
func OpenShared(path string) (*Mapping, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size := fi.Size()
	if size <= 0 || int64(int(size)) != size {
		return nil, ErrInvalidSize
	}

	data, unmapFunc, err := osMapShared(f, int(size))
	if err != nil {
		return nil, err
	}

	return &Mapping{
		data:  data,
		size:  int(size),
		unmap: unmapFunc,
		path:  path,
	}, nil
}

// Close unmaps the memory and, for owned shared mappings, removes the backing
// file. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil // Already closed
	}
	var err error
	if m.unmap != nil && m.data != nil {
		err = m.unmap(m.data)
	}
	if m.owner && m.path != "" {
		if rmErr := os.Remove(m.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = errors.Join(err, rmErr)
		}
	}
	return err
}

// Bytes returns the underlying byte slice.
// Warning: The slice is valid only until Close() is called.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Uint32s returns the first n 32-bit words of the mapping.
// Warning: The slice is valid only until Close() is called.
func (m *Mapping) Uint32s(n int) ([]uint32, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	if n < 0 || n*4 > m.size {
		return nil, ErrOutOfBounds
	}
	if n == 0 {
		return nil, nil
	}
	// Mappings are page aligned, which satisfies uint32 alignment.
	return unsafe.Slice((*uint32)(unsafe.Pointer(&m.data[0])), n), nil //nolint:gosec // page-aligned mapping
}

// Size returns the size of the mapping in bytes.
func (m *Mapping) Size() int {
	return m.size
}

// Path returns the backing file of a shared mapping, or "" for anonymous ones.
func (m *Mapping) Path() string {
	return m.path
}
