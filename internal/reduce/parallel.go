package reduce

import (
	"context"
	"iter"

	"golang.org/x/sync/errgroup"

	"corpusreduce/internal/classify"
)

// Merge combines partial results into one.
//
// When several parts hold the same Class, the representative with the lowest
// FirstIndex wins and the counts are summed. Totals are summed. Nil parts are
// skipped. Merge is the only synchronization point of a parallel reduction and
// runs on a single goroutine.
func Merge[R any](parts ...*Result[R]) *Result[R] {
	var total uint64
	merged := make(map[classify.Class]Entry[R])
	for _, p := range parts {
		if p == nil {
			continue
		}
		total += p.Total
		for _, e := range p.entries {
			cur, ok := merged[e.ID]
			if !ok {
				merged[e.ID] = e
				continue
			}
			cur.Count += e.Count
			if e.FirstIndex < cur.FirstIndex {
				cur.Representative = e.Representative
				cur.FirstIndex = e.FirstIndex
			}
			merged[e.ID] = cur
		}
	}

	entries := make([]Entry[R], 0, len(merged))
	for _, e := range merged {
		entries = append(entries, e)
	}
	return newResult(entries, total)
}

type batch[R any] struct {
	start   uint64
	records []R
}

// ReduceParallel reduces seq with several workers.
//
// A single producer reads seq in order, numbers every record and dispatches
// contiguous batches. Each worker keeps a local Reducer; the partial results
// are combined with Merge. The output is identical to Reduce over the same
// stream.
//
// Cancelling ctx stops dispatch and returns the context error. Observers
// receive EventBatch per processed batch and one EventFinished.
func ReduceParallel[R any](ctx context.Context, seq iter.Seq[R], c classify.Classifier[R], opts ...Option) (*Result[R], error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c == nil {
		return nil, &Error{Kind: ErrNilClassifier}
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	batches := make(chan batch[R], o.workers)
	parts := make([]*Result[R], o.workers)

	for w := 0; w < o.workers; w++ {
		g.Go(func() error {
			local, err := New(c)
			if err != nil {
				return err
			}
			for b := range batches {
				for i, rec := range b.records {
					if _, _, err := local.addAt(b.start+uint64(i), rec); err != nil {
						return err
					}
				}
				safeObserve(o.observer, Event{Kind: EventBatch, Index: b.start, Count: uint64(len(b.records))})
			}
			res, err := local.Finish()
			if err != nil {
				return err
			}
			parts[w] = res
			return nil
		})
	}

	g.Go(func() error {
		defer close(batches)
		var next uint64
		buf := make([]R, 0, o.batchSize)
		dispatch := func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b := batch[R]{start: next - uint64(len(buf)), records: buf}
			select {
			case batches <- b:
				buf = make([]R, 0, o.batchSize)
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		for rec := range seq {
			if err := gctx.Err(); err != nil {
				return err
			}
			buf = append(buf, rec)
			next++
			if len(buf) == o.batchSize {
				if err := dispatch(); err != nil {
					return err
				}
			}
		}
		if len(buf) > 0 {
			return dispatch()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := Merge(parts...)
	safeObserve(o.observer, Event{Kind: EventFinished, Index: res.Total, Count: uint64(res.Distinct())})
	return res, nil
}
