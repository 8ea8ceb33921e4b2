package recordio

import (
	"bufio"
	"io"

	"github.com/duynguyendang/listmembers/pkg/expand"
)

// Writer writes records as tab-separated lines. Output is buffered; call
// Flush when done.
type Writer struct {
	w     *bufio.Writer
	count int
}

// NewWriter creates a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Emit writes one record.
func (w *Writer) Emit(rec expand.Record) error {
	for i, f := range rec.Fields() {
		if i > 0 {
			if err := w.w.WriteByte('\t'); err != nil {
				return err
			}
		}
		if _, err := w.w.WriteString(f); err != nil {
			return err
		}
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	w.count++
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	return w.count
}

// Flush writes buffered records to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
