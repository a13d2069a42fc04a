package bpe

// Allocator hands out symbol ids that are not yet in use.
//
// The used set only grows, so the smallest free id never decreases and the
// search resumes from the previous allocation instead of from zero.
type Allocator struct {
	used  map[Symbol]struct{}
	next  uint64 // lowest id that may still be free
	limit uint64 // ids are allocated from [0, limit)
}

// NewAllocator returns an Allocator whose used set holds every symbol in
// alphabet. idSpace bounds the ids it may hand out to [0, idSpace); zero or
// anything above MaxIDSpace selects the full Symbol range.
func NewAllocator(alphabet []Symbol, idSpace uint64) *Allocator {
	if idSpace == 0 || idSpace > MaxIDSpace {
		idSpace = MaxIDSpace
	}
	used := make(map[Symbol]struct{}, len(alphabet))
	for _, s := range alphabet {
		used[s] = struct{}{}
	}
	return &Allocator{used: used, limit: idSpace}
}

// Next returns the smallest unused id and marks it used.
// It returns ErrIDSpaceExhausted once every id below the limit is taken.
func (a *Allocator) Next() (Symbol, error) {
	for a.next < a.limit {
		id := Symbol(a.next)
		a.next++
		if _, taken := a.used[id]; taken {
			continue
		}
		a.used[id] = struct{}{}
		return id, nil
	}
	return 0, ErrIDSpaceExhausted
}

// Used reports whether id is part of the alphabet or was allocated.
func (a *Allocator) Used(id Symbol) bool {
	_, ok := a.used[id]
	return ok
}

// Len returns the size of the used set: alphabet plus allocations.
func (a *Allocator) Len() int { return len(a.used) }
