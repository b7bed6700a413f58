// Package mmap provides read-only memory-mapped file access, used to
// serve coordinate datasets without copying them through the heap.
package mmap

import (
	"errors"
	"io"
	"os"
)

// ErrInvalidOffset is returned by ReadAt for a negative offset.
var ErrInvalidOffset = errors.New("mmap: invalid offset")

// File is a read-only memory-mapped file. The mapped bytes stay valid
// until Close.
type File struct {
	data []byte
	f    *os.File
}

// Open maps the file at path into memory read-only.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	size := fi.Size()
	if size == 0 {
		return &File{f: f}, nil
	}
	if size < 0 || size != int64(int(size)) {
		f.Close()
		return nil, errors.New("mmap: unmappable file size")
	}

	data, err := mmap(f, int(size))
	if err != nil {
		f.Close()
		return nil, err
	}

	return &File{data: data, f: f}, nil
}

// Bytes returns the mapped contents. The slice must not be written to
// and is only valid until Close.
func (m *File) Bytes() []byte { return m.data }

// Size returns the length of the mapping in bytes.
func (m *File) Size() int { return len(m.data) }

// ReadAt implements io.ReaderAt over the mapping.
func (m *File) ReadAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, ErrInvalidOffset
	}
	if m.data == nil || off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n = copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close unmaps the memory and closes the underlying file.
func (m *File) Close() error {
	if m == nil {
		return nil
	}
	var err error
	if m.data != nil {
		err = munmap(m.data)
		m.data = nil
	}
	if m.f != nil {
		if closeErr := m.f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		m.f = nil
	}
	return err
}
