package bpe

import "fmt"

// mergePass performs one greedy left-to-right pass over seq. Every pair whose
// pre-computed count exceeds one is replaced by a composite symbol; both
// consumed symbols are skipped so merges never overlap. New composites are
// allocated from alloc and recorded in table.
func mergePass(seq []Symbol, freq PairCounts, table Table, alloc *Allocator) ([]Symbol, error) {
	var (
		out      = make([]Symbol, 0, len(seq))
		assigned = make(map[Pair]Symbol)
		i        = 0
	)

	for i+1 < len(seq) {
		pair := Pair{Left: seq[i], Right: seq[i+1]}
		if freq[pair] <= 1 {
			out = append(out, seq[i])
			i++
			continue
		}

		id, ok := assigned[pair]
		if !ok {
			next, err := alloc.Next()
			if err != nil {
				return nil, fmt.Errorf("merge (%d,%d) at %d: %w", pair.Left, pair.Right, i, err)
			}
			id = next
			assigned[pair] = id
			table[id] = pair
		}
		out = append(out, id)
		i += 2
	}

	// The last symbol was not consumed as the right half of a merge.
	if i == len(seq)-1 {
		out = append(out, seq[i])
	}
	return out, nil
}
