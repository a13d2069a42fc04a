// Package bpe implements byte-pair merging over integer symbol sequences.
//
// # Overview
//
// Encoding repeatedly scans a sequence, counts every adjacent symbol pair and
// replaces each pair that occurs more than once with a freshly allocated
// symbol. Every new symbol is recorded in a Table so that Decode can expand
// the encoded sequence back to the exact input.
//
// Symbols are plain integers. Whether they came from bytes, runes or an
// earlier tokenizer stage is up to the caller.
//
// # Merge rule
//
// A pass does not rank pairs globally. Frequencies are counted once before the
// pass, then a cursor walks the sequence left to right and merges every pair
// whose count exceeds one, skipping both consumed symbols. Overlapping
// occurrences are resolved purely by scan position:
//
//	in:    5 5 5 5      counts: (5,5)=3
//	out:   0 0          table:  0 -> (5,5)
//
// New ids are the smallest non-negative integers not yet used by the input
// alphabet or an earlier allocation, so composite ids grow with allocation
// order.
//
// # Basic Usage
//
//	res, err := bpe.Encode(tokens, 0) // 0 runs until no pair repeats
//	if err != nil {
//	    return err
//	}
//	orig, err := bpe.Decode(res.Encoded, res.Table)
//
// Tables can be persisted with package pairtable as (id, left, right) triples
// sorted by id.
//
// # Complexity
//
// Encoding: O(n) per pass, at most O(n) passes.
// Decoding: O(t × n) per sweep where t is the table size.
package bpe
