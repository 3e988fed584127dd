package trace

import (
	"bufio"
	"io"

	"github.com/sarchlab/memfoot/record"
)

// Writer appends records the way the instrumented runtime does. It is used
// to produce synthetic traces.
type Writer struct {
	w   *bufio.Writer
	buf []byte
	n   uint64
	err error
}

// NewWriter creates a writer on top of w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:   bufio.NewWriter(w),
		buf: make([]byte, 0, record.Size),
	}
}

// Write appends one record. After the first failure every call returns the
// same error.
func (w *Writer) Write(rec record.Record) error {
	if w.err != nil {
		return w.err
	}
	w.buf = rec.AppendBinary(w.buf[:0])
	if _, err := w.w.Write(w.buf); err != nil {
		w.err = err
		return err
	}
	w.n++
	return nil
}

// Load appends a read of a scalar site.
func (w *Writer) Load(addr uint64, length uint32, site int32) error {
	return w.Write(record.Load(addr, length, site))
}

// Store appends a write of a scalar site.
func (w *Writer) Store(addr uint64, length uint32, site int32) error {
	return w.Write(record.Store(addr, length, site))
}

// IO appends a load whose address is not observable.
func (w *Writer) IO(site int32) error {
	return w.Write(record.Load(0, 0, site))
}

// Indvar appends a begin or end observation of a strided site.
func (w *Writer) Indvar(addr uint64, elementLength uint32, site int32) error {
	return w.Write(record.Load(addr, elementLength, site))
}

// Delimiter appends an iteration boundary.
func (w *Writer) Delimiter() error {
	return w.Write(record.Delimiter())
}

// Cost appends the terminator carrying the loop's iteration count.
func (w *Writer) Cost(cost uint64) error {
	return w.Write(record.Terminator(cost))
}

// Count returns the number of records written.
func (w *Writer) Count() uint64 {
	return w.n
}

// Flush writes buffered records to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.w.Flush()
	return w.err
}
