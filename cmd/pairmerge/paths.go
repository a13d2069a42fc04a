package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samcharles93/pairmerge/internal/fileio"
	"github.com/samcharles93/pairmerge/internal/sequence"
	"github.com/samcharles93/pairmerge/pkg/bpe"
	"github.com/samcharles93/pairmerge/pkg/pairtable"
)

// readSequence loads path (or stdin for "-") and converts it to symbols.
func readSequence(path, format, normalize string) ([]bpe.Symbol, error) {
	f, err := sequence.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	data, err := fileio.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return sequence.Decode(data, f, normalize)
}

// openOutput is a small seam for tests.
var openOutput = createOutput

// writeOutput opens path, runs write on it and closes it. A failed close is
// reported like a failed write.
func writeOutput(path string, write func(io.Writer) error) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if err := write(out); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// createOutput returns stdout for "" or "-", otherwise creates path and any
// missing parent directories.
func createOutput(path string) (io.WriteCloser, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// writeTable saves t to path. An explicit format overrides the one implied
// by the file name; a ".zst" suffix always selects compression.
func writeTable(path, format string, t bpe.Table) error {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if strings.TrimSpace(format) == "" {
		return pairtable.Save(path, t)
	}
	f, err := pairtable.ParseFormat(format)
	if err != nil {
		return err
	}
	_, compressed := pairtable.FormatForPath(path)
	data, err := pairtable.Marshal(t, f, compressed)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// parseDepths parses a comma separated list of depths. Ranges such as "1-9"
// expand inclusively.
func parseDepths(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out []int
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		from, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid depth %q", part)
		}
		to := from
		if isRange {
			to, err = strconv.Atoi(strings.TrimSpace(hi))
			if err != nil || to < from {
				return nil, fmt.Errorf("invalid depth range %q", part)
			}
		}
		for d := from; d <= to; d++ {
			out = append(out, d)
		}
	}
	return out, nil
}
