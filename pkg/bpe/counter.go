package bpe

// PairCounts holds the number of times each adjacent pair occurs.
type PairCounts map[Pair]int

// CountPairs counts every adjacent pair of seq, overlapping occurrences
// included. Sequences shorter than two symbols yield an empty map.
func CountPairs(seq []Symbol) PairCounts {
	counts := make(PairCounts)
	for i := 0; i+1 < len(seq); i++ {
		counts[Pair{Left: seq[i], Right: seq[i+1]}]++
	}
	return counts
}

// Max returns the highest count, or 0 for an empty map.
func (c PairCounts) Max() int {
	best := 0
	for _, n := range c {
		if n > best {
			best = n
		}
	}
	return best
}
