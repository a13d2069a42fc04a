package pairtable

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/samcharles93/pairmerge/pkg/bpe"
)

// Triple is the JSON form of one entry: [id, left, right].
type Triple [3]bpe.Symbol

// Document is the JSON layout of a persisted table.
type Document struct {
	Version int      `json:"version"`
	Entries []Triple `json:"entries"`
}

// Triples returns t's entries as JSON triples, ascending by id.
func Triples(t bpe.Table) []Triple {
	entries := t.Entries()
	out := make([]Triple, len(entries))
	for i, e := range entries {
		out[i] = Triple{e.ID, e.Left, e.Right}
	}
	return out
}

// FromTriples rebuilds a table from triples sorted ascending by id.
func FromTriples(triples []Triple) (bpe.Table, error) {
	entries := make([]bpe.Entry, len(triples))
	for i, tr := range triples {
		entries[i] = bpe.Entry{ID: tr[0], Left: tr[1], Right: tr[2]}
	}
	return fromSorted(entries)
}

// WriteJSON writes t as a JSON document followed by a newline.
func WriteJSON(w io.Writer, t bpe.Table) (int64, error) {
	data, err := json.Marshal(Document{Version: int(CurrentMajor), Entries: Triples(t)})
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	n, err := w.Write(data)
	return int64(n), err
}

// ParseJSON decodes a JSON table document.
func ParseJSON(data []byte) (bpe.Table, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse table json: %w", err)
	}
	if doc.Version != int(CurrentMajor) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMajor, doc.Version)
	}
	return FromTriples(doc.Entries)
}
