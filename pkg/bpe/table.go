package bpe

import (
	"fmt"
	"slices"
)

// Symbol is a single unit of a sequence. It is either atomic (part of the
// input alphabet) or composite (minted by a merge and present in a Table).
type Symbol uint32

// MaxIDSpace is the number of distinct Symbol values.
const MaxIDSpace = uint64(1) << 32

// Pair is an ordered pair of adjacent symbols.
type Pair struct {
	Left  Symbol
	Right Symbol
}

// Entry is one (id, left, right) triple of a Table.
type Entry struct {
	ID    Symbol
	Left  Symbol
	Right Symbol
}

// Pair returns the pair the entry's id stands for.
func (e Entry) Pair() Pair {
	return Pair{Left: e.Left, Right: e.Right}
}

// Table maps every composite symbol to the pair it replaces.
// Encode only ever adds to a table; an id is never reassigned.
type Table map[Symbol]Pair

// FromEntries builds a Table from triples in any order.
// Duplicate ids are rejected.
func FromEntries(entries []Entry) (Table, error) {
	t := make(Table, len(entries))
	for _, e := range entries {
		if _, ok := t[e.ID]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, e.ID)
		}
		t[e.ID] = e.Pair()
	}
	return t, nil
}

// Len returns the number of composite symbols.
func (t Table) Len() int { return len(t) }

// Lookup returns the pair behind id, if id is composite.
func (t Table) Lookup(id Symbol) (Pair, bool) {
	p, ok := t[id]
	return p, ok
}

// IDs returns all composite ids in ascending order.
func (t Table) IDs() []Symbol {
	ids := make([]Symbol, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Entries returns the table as triples sorted ascending by id.
// This is the persisted ordering.
func (t Table) Entries() []Entry {
	ids := t.IDs()
	out := make([]Entry, len(ids))
	for i, id := range ids {
		p := t[id]
		out[i] = Entry{ID: id, Left: p.Left, Right: p.Right}
	}
	return out
}

// Clone returns an independent copy of t.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for id, p := range t {
		out[id] = p
	}
	return out
}

// Validate reports ErrCyclicTable if any composite expands, directly or
// through other composites, into itself.
func (t Table) Validate() error {
	_, err := t.postOrder()
	return err
}

// postOrder returns every composite id after the composites it is built
// from, or ErrCyclicTable.
func (t Table) postOrder() ([]Symbol, error) {
	const (
		unvisited = iota
		active
		done
	)
	state := make(map[Symbol]uint8, len(t))
	order := make([]Symbol, 0, len(t))

	type frame struct {
		id   Symbol
		next int // 0: left pending, 1: right pending, 2: finished
	}

	for _, root := range t.IDs() {
		if state[root] == done {
			continue
		}
		stack := []frame{{id: root}}
		state[root] = active
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == 2 {
				state[top.id] = done
				order = append(order, top.id)
				stack = stack[:len(stack)-1]
				continue
			}
			p := t[top.id]
			child := p.Left
			if top.next == 1 {
				child = p.Right
			}
			top.next++
			if _, composite := t[child]; !composite {
				continue
			}
			switch state[child] {
			case active:
				return nil, fmt.Errorf("%w: symbol %d", ErrCyclicTable, child)
			case unvisited:
				state[child] = active
				stack = append(stack, frame{id: child})
			}
		}
	}
	return order, nil
}

// Expand returns the atomic symbols id stands for. Atomic ids expand to
// themselves.
func (t Table) Expand(id Symbol) ([]Symbol, error) {
	return Decode([]Symbol{id}, t)
}
