package bpe

import (
	"fmt"
	"slices"
)

// Options control an encode run.
type Options struct {
	// Depth caps the number of merge passes. Zero runs until no adjacent
	// pair occurs more than once.
	Depth int
	// IDSpace bounds composite ids to [0, IDSpace). Zero selects the full
	// Symbol range.
	IDSpace uint64
}

// Result is the outcome of Encode.
type Result struct {
	Encoded        []Symbol
	Table          Table
	Iterations     int // merge passes performed
	VocabularySize int // distinct input symbols plus composites
}

// Encode merges repeated pairs of tokens for at most depth passes (zero means
// until convergence). tokens is not modified.
func Encode(tokens []Symbol, depth int) (*Result, error) {
	return EncodeWithOptions(tokens, Options{Depth: depth})
}

// EncodeWithOptions is Encode with an explicit id space.
func EncodeWithOptions(tokens []Symbol, opts Options) (*Result, error) {
	if opts.Depth < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeDepth, opts.Depth)
	}

	var (
		alloc = NewAllocator(tokens, opts.IDSpace)
		res   = &Result{Encoded: slices.Clone(tokens), Table: make(Table)}
	)
	if res.Encoded == nil {
		res.Encoded = []Symbol{}
	}

	for opts.Depth == 0 || res.Iterations < opts.Depth {
		if len(res.Encoded) <= 1 {
			break
		}
		freq := CountPairs(res.Encoded)
		if freq.Max() <= 1 {
			break
		}
		next, err := mergePass(res.Encoded, freq, res.Table, alloc)
		if err != nil {
			return nil, fmt.Errorf("pass %d: %w", res.Iterations+1, err)
		}
		res.Encoded = next
		res.Iterations++
	}

	res.VocabularySize = alloc.Len()
	return res, nil
}
