package dataset

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/piwi3910/StuffGen/internal/model"
)

// Writer appends episode records to a dataset stream. It is safe for
// concurrent use; every record is encoded in full and handed to the
// destination in a single write, so a failed encode or write is reported as
// ErrSerialization for that record alone. Writes are unbuffered so a failure
// surfaces on the record that caused it.
type Writer struct {
	mu     sync.Mutex
	format Format
	out    io.Writer
	closer io.Closer
	count  int
}

// NewWriter returns a writer encoding records to w.
func NewWriter(w io.Writer, f Format) (*Writer, error) {
	if _, err := ParseFormat(string(f)); err != nil {
		return nil, err
	}
	dw := &Writer{format: f, out: w}
	if c, ok := w.(io.Closer); ok {
		dw.closer = c
	}
	return dw, nil
}

// Create creates (or truncates) the dataset file at path, making parent
// directories as needed.
func Create(path string, f Format) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create dataset directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset file: %w", err)
	}
	w, err := NewWriter(file, f)
	if err != nil {
		file.Close()
		return nil, err
	}
	return w, nil
}

// Write appends one episode record.
func (w *Writer) Write(ep model.Episode) error {
	data, err := Encode(ep, w.format)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	n, err := w.out.Write(data)
	if err == nil && n < len(data) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return fmt.Errorf("%w: failed to write episode %d: %v", ErrSerialization, ep.Index, err)
	}
	w.count++
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close closes the underlying file, if any.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closer != nil {
		if err := w.closer.Close(); err != nil {
			return fmt.Errorf("failed to close dataset file: %w", err)
		}
	}
	return nil
}

// Encode renders one complete record, framing included.
func Encode(ep model.Episode, f Format) ([]byte, error) {
	switch f {
	case FormatJSONL:
		data, err := json.Marshal(ep)
		if err != nil {
			return nil, fmt.Errorf("%w: episode %d: %v", ErrSerialization, ep.Index, err)
		}
		return append(data, '\n'), nil
	case FormatMsgpack:
		data, err := msgpack.Marshal(ep)
		if err != nil {
			return nil, fmt.Errorf("%w: episode %d: %v", ErrSerialization, ep.Index, err)
		}
		framed := make([]byte, 4+len(data))
		binary.BigEndian.PutUint32(framed, uint32(len(data)))
		copy(framed[4:], data)
		return framed, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}
