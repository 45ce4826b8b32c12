package trace

import (
	"bytes"
	"context"
	"slices"
	"testing"

	"corpusreduce/internal/classify"
	"corpusreduce/internal/reduce"
)

func TestCanonicalTraceStability_ByteForByte(t *testing.T) {
	trace1 := ReductionTrace{
		Total: 4,
		Classes: []ClassRecord{
			{ID: classify.Max, Count: 1, FirstIndex: 2},
			{ID: classify.Zero, Count: 2, FirstIndex: 0},
			{ID: classify.Positive, Count: 1, FirstIndex: 1},
		},
	}
	trace2 := ReductionTrace{
		Total: 4,
		Classes: []ClassRecord{
			{ID: classify.Positive, Count: 1, FirstIndex: 1},
			{ID: classify.Zero, Count: 2, FirstIndex: 0},
			{ID: classify.Max, Count: 1, FirstIndex: 2},
		},
	}

	b1, err := trace1.CanonicalJSON()
	if err != nil {
		t.Fatalf("canonical json (1): %v", err)
	}
	b2, err := trace2.CanonicalJSON()
	if err != nil {
		t.Fatalf("canonical json (2): %v", err)
	}
	if !bytes.Equal(b1, b2) {
		t.Fatalf("expected identical bytes\n1=%s\n2=%s", string(b1), string(b2))
	}
	if trace1.Classes[0].ID != classify.Max {
		t.Fatalf("CanonicalJSON must not reorder the receiver")
	}
}

func TestCanonicalOrdering_SortsByID(t *testing.T) {
	tr := ReductionTrace{
		Total: 3,
		Classes: []ClassRecord{
			{ID: classify.Positive, Count: 2, FirstIndex: 0},
			{ID: classify.Zero, Count: 1, FirstIndex: 1},
		},
	}
	b, err := tr.CanonicalJSON()
	if err != nil {
		t.Fatalf("canonical json: %v", err)
	}
	expected := `{"total":3,"classes":[` +
		`{"id":"0000000000000003","count":1,"first_index":1},` +
		`{"id":"0000000000000004","count":2,"first_index":0}]}`
	if string(b) != expected {
		t.Fatalf("unexpected canonical bytes\nexpected=%s\nactual  =%s", expected, string(b))
	}
}

func TestEmptyTrace(t *testing.T) {
	b, err := ReductionTrace{}.CanonicalJSON()
	if err != nil {
		t.Fatalf("canonical json: %v", err)
	}
	if string(b) != `{"total":0,"classes":[]}` {
		t.Fatalf("unexpected bytes: %s", b)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]ReductionTrace{
		"zero count": {Total: 0, Classes: []ClassRecord{{ID: classify.Zero}}},
		"duplicate":  {Total: 2, Classes: []ClassRecord{{ID: classify.Zero, Count: 1}, {ID: classify.Zero, Count: 1}}},
		"bad sum":    {Total: 5, Classes: []ClassRecord{{ID: classify.Zero, Count: 1}}},
	}
	for name, tr := range cases {
		if err := tr.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
		if _, err := tr.Hash(); err == nil {
			t.Errorf("%s: expected hash error", name)
		}
	}
	var nilTrace *ReductionTrace
	if err := nilTrace.Validate(); err == nil {
		t.Fatalf("expected error for nil trace")
	}
}

func TestHash_Deterministic(t *testing.T) {
	tr := ReductionTrace{Total: 1, Classes: []ClassRecord{{ID: classify.Max, Count: 1}}}
	h1, err := tr.Hash()
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, err := tr.Hash()
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("expected stable hash, got %s and %s", h1, h2)
	}
	if len(h1) != 64 {
		t.Fatalf("expected sha256 hex digest, got %q", h1)
	}
	if ComputeTraceHash(nil) != "" {
		t.Fatalf("expected empty hash for empty encoding")
	}
}

func TestFromResult_SerialAndParallelAgree(t *testing.T) {
	values := make([]uint8, 0, 1000)
	for i := range 1000 {
		values = append(values, uint8(i*37))
	}
	c := classify.Unsigned[uint8]()

	serial, err := reduce.Reduce(slices.Values(values), c)
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	parallel, err := reduce.ReduceParallel(context.Background(), slices.Values(values), c,
		reduce.WithWorkers(4), reduce.WithBatchSize(7))
	if err != nil {
		t.Fatalf("reduce parallel: %v", err)
	}

	hs, err := FromResult(serial).Hash()
	if err != nil {
		t.Fatalf("hash serial: %v", err)
	}
	hp, err := FromResult(parallel).Hash()
	if err != nil {
		t.Fatalf("hash parallel: %v", err)
	}
	if hs != hp {
		t.Fatalf("serial and parallel traces differ: %s != %s", hs, hp)
	}

	tr := FromResult(serial)
	if tr.Total != 1000 || len(tr.Classes) != 3 {
		t.Fatalf("unexpected trace: total=%d classes=%d", tr.Total, len(tr.Classes))
	}
}
