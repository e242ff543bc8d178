package mmap

import (
	"io"
	"math"
	"os"
	"sync/atomic"
)

// Mapping holds the bytes of one record file for the duration of a load.
// The zero-length file maps to an empty, still usable Mapping.
type Mapping struct {
	data    []byte
	closed  atomic.Bool
	release func([]byte) error
}

// Open maps the record file at path read-only.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	switch size := fi.Size(); {
	case size == 0:
		return &Mapping{}, nil
	case size < 0 || size > math.MaxInt:
		return nil, ErrInvalidSize
	default:
		data, release, err := osMap(f, int(size))
		if err != nil {
			return nil, err
		}
		return &Mapping{data: data, release: release}, nil
	}
}

// Close releases the mapping. Calling it twice is a no-op.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) || m.release == nil {
		return nil
	}
	return m.release(m.data)
}

// Bytes returns the whole file. Decoders must finish with it before Close.
func (m *Mapping) Bytes() ([]byte, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	return m.data, nil
}

// Slice returns up to n bytes starting at off, without copying.
func (m *Mapping) Slice(off, n int64) ([]byte, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	if off < 0 || n < 0 {
		return nil, ErrInvalidOffset
	}
	if off >= int64(len(m.data)) {
		return nil, io.EOF
	}
	return m.data[off : off+min(n, int64(len(m.data))-off)], nil
}

// Size is the file length in bytes.
func (m *Mapping) Size() int64 {
	return int64(len(m.data))
}

// Advise hints the expected read pattern to the kernel.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if len(m.data) == 0 {
		return nil
	}
	return osAdvise(m.data, pattern)
}

// ReadAt implements io.ReaderAt on top of Slice.
func (m *Mapping) ReadAt(p []byte, off int64) (int, error) {
	b, err := m.Slice(off, int64(len(p)))
	if err != nil {
		return 0, err
	}
	n := copy(p, b)
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
