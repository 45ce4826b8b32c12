package reduce

import (
	"context"
	"iter"

	"corpusreduce/internal/classify"
)

// Reducer accumulates one representative per Class.
//
// A Reducer is not safe for concurrent use; ReduceParallel gives every worker
// its own Reducer.
type Reducer[R any] struct {
	classifier classify.Classifier[R]
	observer   Observer

	state    State
	seen     uint64
	distinct int
	entries  []Entry[R]
	byID     map[classify.Class]int
}

// New returns an accumulating Reducer driven by c.
func New[R any](c classify.Classifier[R], opts ...Option) (*Reducer[R], error) {
	if c == nil {
		return nil, &Error{Kind: ErrNilClassifier}
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Reducer[R]{
		classifier: c,
		observer:   o.observer,
		state:      StateAccumulating,
		byID:       make(map[classify.Class]int),
	}, nil
}

// State returns the current lifecycle state.
func (r *Reducer[R]) State() State { return r.state }

// Seen returns the number of records added so far.
func (r *Reducer[R]) Seen() uint64 { return r.seen }

// Distinct returns the number of classes discovered so far. It keeps its
// value after Finish.
func (r *Reducer[R]) Distinct() int { return r.distinct }

// Add classifies rec and records it. It reports the record's Class and
// whether rec became the representative of a new class.
func (r *Reducer[R]) Add(rec R) (classify.Class, bool, error) {
	return r.addAt(r.seen, rec)
}

// addAt records rec under an explicit stream index. Parallel workers use it
// to keep the original position of each batch record.
func (r *Reducer[R]) addAt(index uint64, rec R) (classify.Class, bool, error) {
	if r.state != StateAccumulating {
		return 0, false, &Error{Kind: ErrFinished, Msg: "cannot add records"}
	}
	id := r.classifier.Classify(rec)
	r.seen++

	if i, ok := r.byID[id]; ok {
		r.entries[i].Count++
		safeObserve(r.observer, Event{Kind: EventDuplicate, ID: id, Index: index, Count: r.entries[i].Count})
		return id, false, nil
	}

	r.byID[id] = len(r.entries)
	r.distinct++
	r.entries = append(r.entries, Entry[R]{ID: id, Representative: rec, Count: 1, FirstIndex: index})
	safeObserve(r.observer, Event{Kind: EventNewClass, ID: id, Index: index, Count: 1})
	return id, true, nil
}

// Finish moves the Reducer to the finished state and returns the
// Equivalence Class mapping. It fails if the Reducer is already finished.
func (r *Reducer[R]) Finish() (*Result[R], error) {
	if err := transition(&r.state, StateAccumulating, StateFinished); err != nil {
		return nil, err
	}
	res := newResult(r.entries, r.seen)
	r.entries = nil
	r.byID = nil
	safeObserve(r.observer, Event{Kind: EventFinished, Index: res.Total, Count: uint64(res.Distinct())})
	return res, nil
}

// Reduce runs a single serial pass of c over seq.
func Reduce[R any](seq iter.Seq[R], c classify.Classifier[R], opts ...Option) (*Result[R], error) {
	return ReduceContext(context.Background(), seq, c, opts...)
}

// ReduceContext is Reduce with cancellation. ctx is checked before every
// record; once it is done the pass stops pulling from seq and returns the
// context error.
func ReduceContext[R any](ctx context.Context, seq iter.Seq[R], c classify.Classifier[R], opts ...Option) (*Result[R], error) {
	if ctx == nil {
		ctx = context.Background()
	}
	r, err := New(c, opts...)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for rec := range seq {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, _, err := r.Add(rec); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.Finish()
}
