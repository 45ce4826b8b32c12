// Package trace builds the canonical record of a reduction outcome.
//
// A ReductionTrace holds only logical facts: the total, and for every class
// its id, count and first index. It carries no timestamps, worker counts or
// batch boundaries, so serial and parallel reductions of the same input yield
// byte-identical canonical encodings and equal hashes.
package trace

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"corpusreduce/internal/classify"
	"corpusreduce/internal/reduce"
)

// ReductionTrace is the deterministic record of one reduction.
type ReductionTrace struct {
	Total   uint64
	Classes []ClassRecord
}

// ClassRecord describes one equivalence class.
type ClassRecord struct {
	ID         classify.Class
	Count      uint64
	FirstIndex uint64
}

// FromResult captures res. The trace is independent of res.
func FromResult[R any](res *reduce.Result[R]) ReductionTrace {
	if res == nil {
		return ReductionTrace{}
	}
	entries := res.Entries()
	tr := ReductionTrace{Total: res.Total, Classes: make([]ClassRecord, len(entries))}
	for i, e := range entries {
		tr.Classes[i] = ClassRecord{ID: e.ID, Count: e.Count, FirstIndex: e.FirstIndex}
	}
	tr.Canonicalize()
	return tr
}

// Validate checks that ids are unique, counts are positive and sum to Total.
func (t *ReductionTrace) Validate() error {
	if t == nil {
		return errors.New("trace is nil")
	}
	seen := make(map[classify.Class]struct{}, len(t.Classes))
	var sum uint64
	for i, c := range t.Classes {
		if c.Count == 0 {
			return fmt.Errorf("classes[%d].count must be positive", i)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("classes[%d].id %s is duplicated", i, c.ID.Hex())
		}
		seen[c.ID] = struct{}{}
		sum += c.Count
	}
	if sum != t.Total {
		return fmt.Errorf("class counts sum to %d, total is %d", sum, t.Total)
	}
	return nil
}

// Canonicalize sorts classes by id.
func (t *ReductionTrace) Canonicalize() {
	if t == nil {
		return
	}
	if len(t.Classes) == 0 {
		t.Classes = nil
		return
	}
	slices.SortStableFunc(t.Classes, func(a, b ClassRecord) int {
		return cmp.Or(cmp.Compare(a.ID, b.ID), cmp.Compare(a.FirstIndex, b.FirstIndex))
	})
}

// CanonicalJSON returns the canonical JSON encoding of the trace.
// It canonicalizes a copy and leaves the receiver untouched.
func (t ReductionTrace) CanonicalJSON() ([]byte, error) {
	cp := ReductionTrace{Total: t.Total, Classes: slices.Clone(t.Classes)}
	cp.Canonicalize()
	if err := cp.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(cp)
}

// Hash returns the sha256 hex digest of the canonical JSON bytes.
func (t ReductionTrace) Hash() (string, error) {
	b, err := t.CanonicalJSON()
	if err != nil {
		return "", err
	}
	return ComputeTraceHash(b), nil
}

// MarshalJSON fixes the field order.
func (t ReductionTrace) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `{"total":%d,"classes":[`, t.Total)
	for i, c := range t.Classes {
		if i > 0 {
			buf.WriteByte(',')
		}
		cb, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(cb)
	}
	buf.WriteString("]}")
	return buf.Bytes(), nil
}

// MarshalJSON encodes the id as 16 hex digits.
func (c ClassRecord) MarshalJSON() ([]byte, error) {
	return fmt.Appendf(nil, `{"id":%q,"count":%d,"first_index":%d}`, c.ID.Hex(), c.Count, c.FirstIndex), nil
}
