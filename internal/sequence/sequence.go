// Package sequence converts driver input into bpe symbol sequences and back.
package sequence

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/samcharles93/pairmerge/pkg/bpe"
)

var ErrNotBytes = errors.New("sequence: symbol does not fit in a byte")

// Format names how raw input is turned into symbols.
type Format string

const (
	// FormatBytes maps every input byte to one symbol.
	FormatBytes Format = "bytes"
	// FormatRunes maps every UTF-8 code point to one symbol.
	FormatRunes Format = "runes"
	// FormatInts parses whitespace or comma separated decimal symbols.
	FormatInts Format = "ints"
)

// ParseFormat validates a format name. The empty string selects FormatBytes.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatBytes, nil
	case FormatBytes, FormatRunes, FormatInts:
		return f, nil
	default:
		return "", fmt.Errorf("unknown input format %q (bytes, runes, ints)", s)
	}
}

// Normalize applies a Unicode normalization form ("nfc", "nfd", "nfkc",
// "nfkd") to UTF-8 text. The empty string or "none" returns data unchanged.
func Normalize(data []byte, form string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(form)) {
	case "", "none":
		return data, nil
	case "nfc":
		return norm.NFC.Bytes(data), nil
	case "nfd":
		return norm.NFD.Bytes(data), nil
	case "nfkc":
		return norm.NFKC.Bytes(data), nil
	case "nfkd":
		return norm.NFKD.Bytes(data), nil
	default:
		return nil, fmt.Errorf("unknown normalization form %q", form)
	}
}

// FromBytes maps each byte of data to a symbol.
func FromBytes(data []byte) []bpe.Symbol {
	out := make([]bpe.Symbol, len(data))
	for i, b := range data {
		out[i] = bpe.Symbol(b)
	}
	return out
}

// FromRunes maps each code point of UTF-8 text to a symbol. Invalid bytes
// become U+FFFD.
func FromRunes(text string) []bpe.Symbol {
	out := make([]bpe.Symbol, 0, len(text))
	for _, r := range text {
		out = append(out, bpe.Symbol(r))
	}
	return out
}

// ParseInts reads decimal symbols separated by whitespace or commas.
func ParseInts(r io.Reader) ([]bpe.Symbol, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	sc.Split(scanSymbols)

	var out []bpe.Symbol
	for sc.Scan() {
		v, err := strconv.ParseUint(sc.Text(), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("symbol %d: %w", len(out), err)
		}
		out = append(out, bpe.Symbol(v))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if out == nil {
		out = []bpe.Symbol{}
	}
	return out, nil
}

// Decode turns raw input into symbols according to format, normalizing text
// first for the byte and rune formats.
func Decode(data []byte, format Format, form string) ([]bpe.Symbol, error) {
	switch format {
	case FormatInts:
		return ParseInts(strings.NewReader(string(data)))
	case FormatBytes, FormatRunes:
		text, err := Normalize(data, form)
		if err != nil {
			return nil, err
		}
		if format == FormatRunes {
			return FromRunes(string(text)), nil
		}
		return FromBytes(text), nil
	default:
		return nil, fmt.Errorf("unknown input format %q", format)
	}
}

// WriteInts writes seq as space separated decimals followed by a newline.
func WriteInts(w io.Writer, seq []bpe.Symbol) error {
	bw := bufio.NewWriter(w)
	var num []byte
	for i, s := range seq {
		if i > 0 {
			if err := bw.WriteByte(' '); err != nil {
				return err
			}
		}
		num = strconv.AppendUint(num[:0], uint64(s), 10)
		if _, err := bw.Write(num); err != nil {
			return err
		}
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	return bw.Flush()
}

// ToBytes converts a sequence of byte-valued symbols back to bytes.
func ToBytes(seq []bpe.Symbol) ([]byte, error) {
	out := make([]byte, len(seq))
	for i, s := range seq {
		if s > 0xff {
			return nil, fmt.Errorf("%w: %d at %d", ErrNotBytes, s, i)
		}
		out[i] = byte(s)
	}
	return out, nil
}

// ToText converts a sequence of code points back to a string.
func ToText(seq []bpe.Symbol) (string, error) {
	var b strings.Builder
	b.Grow(len(seq))
	for i, s := range seq {
		if s > unicode.MaxRune {
			return "", fmt.Errorf("symbol %d at %d is not a code point", s, i)
		}
		b.WriteRune(rune(s))
	}
	return b.String(), nil
}

// Render returns the original text form of seq for format, or false when
// the symbols cannot be rendered (ints, or out-of-range values).
func Render(seq []bpe.Symbol, format Format) (string, bool) {
	switch format {
	case FormatBytes:
		b, err := ToBytes(seq)
		if err != nil {
			return "", false
		}
		return string(b), true
	case FormatRunes:
		s, err := ToText(seq)
		if err != nil {
			return "", false
		}
		return s, true
	default:
		return "", false
	}
}

// scanSymbols is a bufio.SplitFunc like bufio.ScanWords that also treats
// commas as separators, so every token is a single number.
func scanSymbols(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for start < len(data) {
		r, width := utf8.DecodeRune(data[start:])
		if !isSeparator(r) {
			break
		}
		start += width
	}
	for i := start; i < len(data); {
		r, width := utf8.DecodeRune(data[i:])
		if isSeparator(r) {
			return i + width, data[start:i], nil
		}
		i += width
	}
	if atEOF && len(data) > start {
		return len(data), data[start:], nil
	}
	return start, nil, nil
}

func isSeparator(r rune) bool {
	return r == ',' || unicode.IsSpace(r)
}
