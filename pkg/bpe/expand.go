package bpe

import "math"

// Lengths returns the number of atomic symbols every composite expands to.
// Lengths saturate at math.MaxUint64, so a short chain of composites that
// doubles at every level cannot overflow.
func (t Table) Lengths() (map[Symbol]uint64, error) {
	order, err := t.postOrder()
	if err != nil {
		return nil, err
	}
	lengths := make(map[Symbol]uint64, len(order))
	size := func(s Symbol) uint64 {
		if n, ok := lengths[s]; ok {
			return n
		}
		return 1
	}
	for _, id := range order {
		p := t[id]
		lengths[id] = addSat(size(p.Left), size(p.Right))
	}
	return lengths, nil
}

// DecodedLen returns len(Decode(tokens, t)) without expanding anything.
func DecodedLen(tokens []Symbol, t Table) (uint64, error) {
	lengths, err := t.Lengths()
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, s := range tokens {
		n, ok := lengths[s]
		if !ok {
			n = 1
		}
		total = addSat(total, n)
	}
	return total, nil
}

// Prefixes returns, for every composite, the first limit atomic symbols of
// its expansion. Each composite is expanded once, from the prefixes of its
// halves, so the cost is bounded by len(t)*limit.
func (t Table) Prefixes(limit int) (map[Symbol][]Symbol, error) {
	order, err := t.postOrder()
	if err != nil {
		return nil, err
	}
	limit = max(limit, 0)
	prefixes := make(map[Symbol][]Symbol, len(order))
	appendPrefix := func(dst []Symbol, s Symbol) []Symbol {
		room := limit - len(dst)
		if room <= 0 {
			return dst
		}
		src, ok := prefixes[s]
		if !ok {
			return append(dst, s)
		}
		return append(dst, src[:min(room, len(src))]...)
	}
	for _, id := range order {
		p := t[id]
		out := make([]Symbol, 0, min(limit, 2))
		out = appendPrefix(out, p.Left)
		out = appendPrefix(out, p.Right)
		prefixes[id] = out
	}
	return prefixes, nil
}

func addSat(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}
