// Package pairtable persists bpe pair tables.
//
// A table is stored as its (id, left, right) triples sorted ascending by id,
// either in a compact binary layout or as JSON. Both may be wrapped in zstd.
package pairtable

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/samcharles93/pairmerge/pkg/bpe"
)

const (
	MagicPairTable = "BPT\x00"

	// Current Major Version: 1 (Breaking changes only)
	CurrentMajor uint16 = 1

	// Current Minor Version
	CurrentMinor uint16 = 0

	headerSize = 16
	entrySize  = 12
)

// Format selects the on-disk encoding of a table.
type Format int

const (
	FormatBinary Format = iota
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "binary"
	case FormatJSON:
		return "json"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat converts a format name ("binary", "bin", "json").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "binary", "bin":
		return FormatBinary, nil
	case "json":
		return FormatJSON, nil
	default:
		return 0, fmt.Errorf("unknown table format %q", s)
	}
}

// FormatForPath derives the encoding from a file name: "*.json" selects JSON,
// anything else binary. A trailing ".zst" requests zstd compression.
func FormatForPath(path string) (Format, bool) {
	name := strings.ToLower(filepath.Base(path))
	compressed := strings.HasSuffix(name, ".zst")
	name = strings.TrimSuffix(name, ".zst")
	if strings.HasSuffix(name, ".json") {
		return FormatJSON, compressed
	}
	return FormatBinary, compressed
}

// fromSorted builds a table from triples that must be strictly ascending.
func fromSorted(entries []bpe.Entry) (bpe.Table, error) {
	for i := 1; i < len(entries); i++ {
		if entries[i].ID <= entries[i-1].ID {
			return nil, fmt.Errorf("%w: id %d after %d", ErrUnsortedEntries, entries[i].ID, entries[i-1].ID)
		}
	}
	return bpe.FromEntries(entries)
}
