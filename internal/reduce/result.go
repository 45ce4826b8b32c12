package reduce

import (
	"cmp"
	"slices"

	"corpusreduce/internal/classify"
)

// Entry is one equivalence class in a reduction result.
type Entry[R any] struct {
	ID             classify.Class
	Representative R
	// Count is the number of records that produced ID.
	Count uint64
	// FirstIndex is the stream index of Representative.
	FirstIndex uint64
}

// Result is the finished Equivalence Class mapping of one reduction pass.
//
// Entries are kept in discovery order (ascending FirstIndex). A Result is
// read-only; accessors return copies.
type Result[R any] struct {
	// Total is the number of records processed.
	Total uint64

	entries []Entry[R]
	byID    map[classify.Class]int
}

func newResult[R any](entries []Entry[R], total uint64) *Result[R] {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry[R]) int {
		if c := cmp.Compare(a.FirstIndex, b.FirstIndex); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	byID := make(map[classify.Class]int, len(sorted))
	for i, e := range sorted {
		byID[e.ID] = i
	}
	return &Result[R]{Total: total, entries: sorted, byID: byID}
}

// Distinct returns the number of equivalence classes.
func (res *Result[R]) Distinct() int { return len(res.entries) }

// Entries returns the classes in discovery order.
func (res *Result[R]) Entries() []Entry[R] { return slices.Clone(res.entries) }

// SortedByID returns the classes ordered by ascending Class.
func (res *Result[R]) SortedByID() []Entry[R] {
	out := slices.Clone(res.entries)
	slices.SortFunc(out, func(a, b Entry[R]) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Lookup returns the entry for id.
func (res *Result[R]) Lookup(id classify.Class) (Entry[R], bool) {
	i, ok := res.byID[id]
	if !ok {
		return Entry[R]{}, false
	}
	return res.entries[i], true
}

// Representatives returns the retained records in discovery order.
func (res *Result[R]) Representatives() []R {
	out := make([]R, len(res.entries))
	for i, e := range res.entries {
		out[i] = e.Representative
	}
	return out
}

// IDs returns every Class in ascending order.
func (res *Result[R]) IDs() []classify.Class {
	ids := make([]classify.Class, len(res.entries))
	for i, e := range res.entries {
		ids[i] = e.ID
	}
	slices.Sort(ids)
	return ids
}

// CountSum returns the sum of all occurrence counts. It always equals Total.
func (res *Result[R]) CountSum() uint64 {
	var n uint64
	for _, e := range res.entries {
		n += e.Count
	}
	return n
}
