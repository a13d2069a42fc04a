package pairtable

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/samcharles93/pairmerge/pkg/bpe"
)

// Header is the fixed 16-byte prefix of the binary layout.
type Header struct {
	Magic    [4]byte
	Major    uint16
	Minor    uint16
	Count    uint32
	Reserved uint32
}

func (h *Header) Valid() bool {
	return string(h.Magic[:]) == MagicPairTable
}

func (h *Header) Compatible() bool {
	return h.Major == CurrentMajor
}

// WriteBinary serializes t to w.
// Layout:
// - 16 byte header: magic, major, minor, entry count, reserved (little-endian)
// - count × (id, left, right) uint32 triples, ascending by id
func WriteBinary(w io.Writer, t bpe.Table) (int64, error) {
	entries := t.Entries()
	buf := make([]byte, headerSize+entrySize*len(entries))

	copy(buf[0:4], MagicPairTable)
	binary.LittleEndian.PutUint16(buf[4:6], CurrentMajor)
	binary.LittleEndian.PutUint16(buf[6:8], CurrentMinor)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(entries)))

	off := headerSize
	for _, e := range entries {
		binary.LittleEndian.PutUint32(buf[off:], uint32(e.ID))
		binary.LittleEndian.PutUint32(buf[off+4:], uint32(e.Left))
		binary.LittleEndian.PutUint32(buf[off+8:], uint32(e.Right))
		off += entrySize
	}

	n, err := w.Write(buf)
	return int64(n), err
}

// ReadBinary reads a binary table from r.
func ReadBinary(r io.Reader) (bpe.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseBinary(data)
}

// ParseBinary decodes a binary table held in memory.
func ParseBinary(data []byte) (bpe.Table, error) {
	hdr, err := decodeHeader(data)
	if err != nil {
		return nil, err
	}

	want := uint64(headerSize) + uint64(hdr.Count)*entrySize
	if uint64(len(data)) != want {
		return nil, fmt.Errorf("%w: size %d, header promises %d", ErrCorruptTable, len(data), want)
	}

	entries := make([]bpe.Entry, hdr.Count)
	off := headerSize
	for i := range entries {
		entries[i] = bpe.Entry{
			ID:    bpe.Symbol(binary.LittleEndian.Uint32(data[off:])),
			Left:  bpe.Symbol(binary.LittleEndian.Uint32(data[off+4:])),
			Right: bpe.Symbol(binary.LittleEndian.Uint32(data[off+8:])),
		}
		off += entrySize
	}
	return fromSorted(entries)
}

func decodeHeader(data []byte) (Header, error) {
	var hdr Header
	if len(data) < headerSize {
		return hdr, ErrCorruptTable
	}
	copy(hdr.Magic[:], data[0:4])
	hdr.Major = binary.LittleEndian.Uint16(data[4:6])
	hdr.Minor = binary.LittleEndian.Uint16(data[6:8])
	hdr.Count = binary.LittleEndian.Uint32(data[8:12])
	hdr.Reserved = binary.LittleEndian.Uint32(data[12:16])

	if !hdr.Valid() {
		return hdr, ErrInvalidMagic
	}
	if !hdr.Compatible() {
		return hdr, fmt.Errorf("%w: %d", ErrUnsupportedMajor, hdr.Major)
	}
	return hdr, nil
}
