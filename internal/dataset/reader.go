package dataset

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/piwi3910/StuffGen/internal/model"
)

// Reader decodes episode records one at a time.
type Reader struct {
	format Format
	r      *bufio.Reader
	line   int
}

// NewReader returns a reader for records in format f.
func NewReader(r io.Reader, f Format) (*Reader, error) {
	if _, err := ParseFormat(string(f)); err != nil {
		return nil, err
	}
	return &Reader{format: f, r: bufio.NewReader(r)}, nil
}

// Next returns the next episode, or io.EOF after the last one.
func (r *Reader) Next() (model.Episode, error) {
	r.line++
	var ep model.Episode
	switch r.format {
	case FormatMsgpack:
		var prefix [4]byte
		if _, err := io.ReadFull(r.r, prefix[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return ep, io.EOF
			}
			return ep, fmt.Errorf("failed to read record %d length: %w", r.line, err)
		}
		data := make([]byte, binary.BigEndian.Uint32(prefix[:]))
		if _, err := io.ReadFull(r.r, data); err != nil {
			return ep, fmt.Errorf("failed to read record %d: %w", r.line, err)
		}
		if err := msgpack.Unmarshal(data, &ep); err != nil {
			return ep, fmt.Errorf("failed to parse record %d: %w", r.line, err)
		}
		return ep, nil
	default:
		for {
			data, err := r.r.ReadBytes('\n')
			data = bytes.TrimSpace(data)
			if len(data) == 0 {
				if err != nil {
					if errors.Is(err, io.EOF) {
						return ep, io.EOF
					}
					return ep, fmt.Errorf("failed to read line %d: %w", r.line, err)
				}
				r.line++
				continue
			}
			if err := json.Unmarshal(data, &ep); err != nil {
				return ep, fmt.Errorf("failed to parse line %d: %w", r.line, err)
			}
			return ep, nil
		}
	}
}

// All iterates over the remaining episodes. Iteration stops after the first
// error, which is yielded.
func (r *Reader) All() iter.Seq2[model.Episode, error] {
	return func(yield func(model.Episode, error) bool) {
		for {
			ep, err := r.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(ep, err) || err != nil {
				return
			}
		}
	}
}

// ReadFile loads every episode from a dataset file; the format follows the
// file extension.
func ReadFile(path string) ([]model.Episode, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	r, err := NewReader(file, f)
	if err != nil {
		return nil, err
	}
	var episodes []model.Episode
	for ep, err := range r.All() {
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, ep)
	}
	return episodes, nil
}
