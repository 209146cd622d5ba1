// Package dataset serializes episodes to and from dataset files.
package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/piwi3910/StuffGen/internal/model"
)

var (
	// ErrSerialization is returned when an episode cannot be encoded. Only
	// that episode is affected.
	ErrSerialization = errors.New("episode serialization failed")
	// ErrUnknownFormat is returned for an unsupported dataset format.
	ErrUnknownFormat = errors.New("unknown dataset format")
)

// Format is an on-disk record encoding.
type Format string

const (
	// FormatJSONL writes one JSON object per line.
	FormatJSONL Format = "jsonl"
	// FormatMsgpack writes msgpack records framed by a 4-byte big-endian length.
	FormatMsgpack Format = "msgpack"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSONL:
		return FormatJSONL, nil
	case FormatMsgpack:
		return FormatMsgpack, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Path returns the dataset file for a mode: <outDir>/<mode>/train.<format>.
func Path(outDir string, mode model.Mode, f Format) string {
	return filepath.Join(outDir, string(mode), "train."+string(f))
}

// ManifestPath returns the manifest written next to a mode's dataset file.
func ManifestPath(outDir string, mode model.Mode) string {
	return filepath.Join(outDir, string(mode), "manifest.json")
}
