package bpe

import "slices"

// Decode expands every composite symbol of tokens using table and returns the
// original sequence. Symbols missing from table are copied through as atomic.
//
// Each sweep visits the table ids from highest to lowest and splices the pair
// in for every occurrence of the id. Sweeps repeat until one completes
// without a replacement, so tables whose composites reference higher ids are
// resolved as well. The only error is ErrCyclicTable.
func Decode(tokens []Symbol, table Table) ([]Symbol, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}

	ids := table.IDs()
	slices.Reverse(ids)

	seq := slices.Clone(tokens)
	if seq == nil {
		seq = []Symbol{}
	}
	for {
		progress := false
		for _, id := range ids {
			expanded, ok := expandAll(seq, id, table[id])
			if ok {
				seq = expanded
				progress = true
			}
		}
		if !progress {
			return seq, nil
		}
	}
}

// expandAll replaces every occurrence of id in seq with pair. It reports
// false, and returns seq untouched, when id does not occur.
func expandAll(seq []Symbol, id Symbol, pair Pair) ([]Symbol, bool) {
	n := 0
	for _, s := range seq {
		if s == id {
			n++
		}
	}
	if n == 0 {
		return seq, false
	}
	out := make([]Symbol, 0, len(seq)+n)
	for _, s := range seq {
		if s == id {
			out = append(out, pair.Left, pair.Right)
			continue
		}
		out = append(out, s)
	}
	return out, true
}
