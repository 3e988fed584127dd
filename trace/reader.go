// Package trace provides access to the record buffer shared between an
// instrumented program and the analyzer.
package trace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sarchlab/memfoot/record"
)

// DefaultSharedMemoryName is the shared memory object the instrumented
// runtime writes to.
const DefaultSharedMemoryName = "newcomair_123456789"

// SharedMemoryDir is where POSIX shared memory objects are visible as files.
var SharedMemoryDir = "/dev/shm"

// ErrTruncated reports a buffer that ends in the middle of a record.
var ErrTruncated = errors.New("trace ends with a partial record")

// Reader reads records sequentially from a byte buffer.
type Reader struct {
	buf    []byte
	off    int
	closer func() error
}

// NewReader creates a reader over an in-memory buffer.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Open maps a trace file into memory and returns a reader over it. The
// producer must have finished writing the file.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat trace: %w", err)
	}
	if info.Size() == 0 {
		return NewReader(nil), nil
	}

	buf, unmap, err := mapFile(f, int(info.Size()))
	if err != nil {
		return nil, fmt.Errorf("failed to map trace %s: %w", path, err)
	}

	return &Reader{buf: buf, closer: unmap}, nil
}

// SharedMemoryPath returns the file backing a shared memory object.
func SharedMemoryPath(name string) string {
	return filepath.Join(SharedMemoryDir, filepath.Base(name))
}

// OpenSharedMemory opens the shared memory object written by the runtime.
func OpenSharedMemory(name string) (*Reader, error) {
	return Open(SharedMemoryPath(name))
}

// Unlink removes a shared memory object once it has been analyzed.
func Unlink(name string) error {
	if err := os.Remove(SharedMemoryPath(name)); err != nil {
		return fmt.Errorf("failed to unlink shared memory %s: %w", name, err)
	}
	return nil
}

// Next returns the next record. It returns io.EOF at the end of the buffer
// and ErrTruncated if fewer than record.Size bytes remain.
func (r *Reader) Next() (record.Record, error) {
	remaining := len(r.buf) - r.off
	if remaining == 0 {
		return record.Record{}, io.EOF
	}
	if remaining < record.Size {
		r.off = len(r.buf)
		return record.Record{}, ErrTruncated
	}

	rec, err := record.Unmarshal(r.buf[r.off : r.off+record.Size])
	if err != nil {
		return record.Record{}, err
	}
	r.off += record.Size
	return rec, nil
}

// Offset returns the byte offset of the next record.
func (r *Reader) Offset() int {
	return r.off
}

// Len returns the size of the underlying buffer in bytes.
func (r *Reader) Len() int {
	return len(r.buf)
}

// Close releases the mapping, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer()
	r.closer = nil
	r.buf = nil
	return err
}
