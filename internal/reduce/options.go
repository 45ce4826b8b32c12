package reduce

import "runtime"

// DefaultBatchSize is the number of consecutive records handed to one
// parallel worker at a time.
const DefaultBatchSize = 1024

type options struct {
	observer  Observer
	workers   int
	batchSize int
}

// Option configures a Reducer or a parallel reduction.
type Option func(*options)

// WithObserver attaches an Observer. A nil observer is ignored.
func WithObserver(o Observer) Option {
	return func(opts *options) {
		if o != nil {
			opts.observer = o
		}
	}
}

// WithWorkers sets the number of parallel workers. Serial reduction ignores it.
func WithWorkers(n int) Option {
	return func(opts *options) { opts.workers = n }
}

// WithBatchSize sets the number of records per dispatched batch. Serial
// reduction ignores it.
func WithBatchSize(n int) Option {
	return func(opts *options) { opts.batchSize = n }
}

func buildOptions(opts []Option) (options, error) {
	o := options{
		observer:  NopObserver{},
		workers:   runtime.GOMAXPROCS(0),
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.workers <= 0 {
		return o, invalidOptionf("workers must be > 0 (got %d)", o.workers)
	}
	if o.batchSize <= 0 {
		return o, invalidOptionf("batch size must be > 0 (got %d)", o.batchSize)
	}
	return o, nil
}
