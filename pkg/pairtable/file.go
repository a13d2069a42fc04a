package pairtable

import (
	"bytes"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/samcharles93/pairmerge/internal/fileio"
	"github.com/samcharles93/pairmerge/pkg/bpe"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Marshal encodes t in the given format, optionally zstd-compressed.
func Marshal(t bpe.Table, format Format, compressed bool) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatBinary:
		_, err = WriteBinary(&buf, t)
	case FormatJSON:
		_, err = WriteJSON(&buf, t)
	default:
		err = fmt.Errorf("unknown table format %v", format)
	}
	if err != nil {
		return nil, err
	}
	if !compressed {
		return buf.Bytes(), nil
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = enc.Close() }()
	return enc.EncodeAll(buf.Bytes(), nil), nil
}

// Unmarshal decodes a table in any supported layout. The format is detected
// from the content: zstd frames are decompressed first, the binary magic
// selects the binary layout and anything else is parsed as JSON.
func Unmarshal(data []byte) (bpe.Table, error) {
	if bytes.HasPrefix(data, zstdMagic) {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		raw, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress table: %w", err)
		}
		data = raw
	}
	if bytes.HasPrefix(data, []byte(MagicPairTable)) {
		return ParseBinary(data)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return ParseJSON(trimmed)
	}
	return nil, ErrInvalidMagic
}

// Save writes t to path using the layout implied by the file name
// (see FormatForPath).
func Save(path string, t bpe.Table) error {
	format, compressed := FormatForPath(path)
	data, err := Marshal(t, format, compressed)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a table file written by Save, in any layout.
func Load(path string) (bpe.Table, error) {
	f, err := fileio.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	t, err := Unmarshal(f.Data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return t, nil
}
