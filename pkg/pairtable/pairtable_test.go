package pairtable

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samcharles93/pairmerge/pkg/bpe"
)

func sampleTable(t *testing.T) bpe.Table {
	t.Helper()
	res, err := bpe.Encode([]bpe.Symbol{1, 2, 3, 1, 2, 3, 1, 2, 3, 9}, 0)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if res.Table.Len() == 0 {
		t.Fatalf("expected a non-empty table")
	}
	return res.Table
}

func tablesEqual(a, b bpe.Table) bool {
	if len(a) != len(b) {
		return false
	}
	for id, p := range a {
		if q, ok := b[id]; !ok || q != p {
			return false
		}
	}
	return true
}

func TestBinaryRoundTrip(t *testing.T) {
	t.Parallel()

	table := sampleTable(t)
	var buf bytes.Buffer
	n, err := WriteBinary(&buf, table)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if want := int64(headerSize + entrySize*table.Len()); n != want {
		t.Fatalf("written size: got %d want %d", n, want)
	}
	got, err := ReadBinary(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !tablesEqual(got, table) {
		t.Fatalf("got %v want %v", got, table)
	}
}

func TestBinaryLayoutAscending(t *testing.T) {
	t.Parallel()

	table := bpe.Table{7: {Left: 1, Right: 2}, 3: {Left: 4, Right: 4}}
	var buf bytes.Buffer
	if _, err := WriteBinary(&buf, table); err != nil {
		t.Fatalf("write: %v", err)
	}
	data := buf.Bytes()
	if string(data[:4]) != MagicPairTable {
		t.Fatalf("bad magic %q", data[:4])
	}
	if got := binary.LittleEndian.Uint32(data[8:12]); got != 2 {
		t.Fatalf("count: got %d want 2", got)
	}
	first := binary.LittleEndian.Uint32(data[headerSize:])
	second := binary.LittleEndian.Uint32(data[headerSize+entrySize:])
	if first != 3 || second != 7 {
		t.Fatalf("ids not ascending: %d, %d", first, second)
	}
}

func TestParseBinaryRejects(t *testing.T) {
	t.Parallel()

	var good bytes.Buffer
	if _, err := WriteBinary(&good, bpe.Table{0: {Left: 5, Right: 5}, 1: {Left: 0, Right: 0}}); err != nil {
		t.Fatalf("write: %v", err)
	}

	badMagic := bytes.Clone(good.Bytes())
	badMagic[0] = 'X'

	badMajor := bytes.Clone(good.Bytes())
	binary.LittleEndian.PutUint16(badMajor[4:6], CurrentMajor+1)

	unsorted := bytes.Clone(good.Bytes())
	binary.LittleEndian.PutUint32(unsorted[headerSize:], 1)
	binary.LittleEndian.PutUint32(unsorted[headerSize+entrySize:], 0)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short", []byte("BPT"), ErrCorruptTable},
		{"magic", badMagic, ErrInvalidMagic},
		{"major", badMajor, ErrUnsupportedMajor},
		{"truncated", good.Bytes()[:good.Len()-1], ErrCorruptTable},
		{"unsorted", unsorted, ErrUnsortedEntries},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ParseBinary(tc.data); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()

	table := sampleTable(t)
	var buf bytes.Buffer
	if _, err := WriteJSON(&buf, table); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.HasPrefix(buf.String(), `{"version":1,"entries":[[`) {
		t.Fatalf("unexpected json layout: %s", buf.String())
	}
	got, err := ParseJSON(buf.Bytes())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !tablesEqual(got, table) {
		t.Fatalf("got %v want %v", got, table)
	}
}

func TestParseJSONRejects(t *testing.T) {
	t.Parallel()

	if _, err := ParseJSON([]byte(`{"version":2,"entries":[]}`)); !errors.Is(err, ErrUnsupportedMajor) {
		t.Fatalf("expected ErrUnsupportedMajor, got %v", err)
	}
	if _, err := ParseJSON([]byte(`{"version":1,"entries":[[4,1,1],[2,0,0]]}`)); !errors.Is(err, ErrUnsortedEntries) {
		t.Fatalf("expected ErrUnsortedEntries, got %v", err)
	}
	if _, err := ParseJSON([]byte(`{"version":1,"entries":[[2,1,1],[2,0,0]]}`)); !errors.Is(err, ErrUnsortedEntries) {
		t.Fatalf("expected duplicate ids to be rejected, got %v", err)
	}
	if _, err := ParseJSON([]byte(`not json`)); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestFormatForPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path       string
		format     Format
		compressed bool
	}{
		{"table.bpt", FormatBinary, false},
		{"table.bpt.zst", FormatBinary, true},
		{"dir/Table.JSON", FormatJSON, false},
		{"table.json.zst", FormatJSON, true},
		{"table", FormatBinary, false},
	}
	for _, tc := range tests {
		format, compressed := FormatForPath(tc.path)
		if format != tc.format || compressed != tc.compressed {
			t.Errorf("FormatForPath(%q): got %v,%v want %v,%v", tc.path, format, compressed, tc.format, tc.compressed)
		}
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Format{"": FormatBinary, "bin": FormatBinary, "JSON": FormatJSON} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q): got %v, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestSaveLoadAllLayouts(t *testing.T) {
	t.Parallel()

	table := sampleTable(t)
	dir := t.TempDir()
	for _, name := range []string{"t.bpt", "t.bpt.zst", "t.json", "t.json.zst"} {
		path := filepath.Join(dir, name)
		if err := Save(path, table); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
		got, err := Load(path)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		if !tablesEqual(got, table) {
			t.Fatalf("%s: got %v want %v", name, got, table)
		}
	}

	raw, err := os.ReadFile(filepath.Join(dir, "t.bpt.zst"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(raw, zstdMagic) {
		t.Fatalf("expected zstd frame")
	}
}

func TestUnmarshalUnknown(t *testing.T) {
	t.Parallel()

	if _, err := Unmarshal([]byte("garbage")); !errors.Is(err, ErrInvalidMagic) {
		t.Fatalf("expected ErrInvalidMagic, got %v", err)
	}
}

func TestEmptyTableRoundTrip(t *testing.T) {
	t.Parallel()

	for _, format := range []Format{FormatBinary, FormatJSON} {
		data, err := Marshal(bpe.Table{}, format, false)
		if err != nil {
			t.Fatalf("marshal %v: %v", format, err)
		}
		got, err := Unmarshal(data)
		if err != nil {
			t.Fatalf("unmarshal %v: %v", format, err)
		}
		if got.Len() != 0 {
			t.Fatalf("%v: expected empty table, got %v", format, got)
		}
	}
}
