package reduce

import (
	"sync"

	"corpusreduce/internal/classify"
)

// EventKind discriminates reducer events.
type EventKind string

const (
	EventNewClass  EventKind = "new_class"
	EventDuplicate EventKind = "duplicate"
	EventBatch     EventKind = "batch"
	EventFinished  EventKind = "finished"
)

// Event is one observable reducer decision.
//
// For EventNewClass and EventDuplicate, Index is the stream index of the
// record and Count the class occurrence count after the record was added.
// For EventBatch, emitted by parallel workers instead of per-record events,
// Index is the stream index of the first batch record and Count the batch size.
// For EventFinished, Index is the total number of records and Count the number
// of distinct classes.
type Event struct {
	Kind  EventKind
	ID    classify.Class
	Index uint64
	Count uint64
}

// Observer receives reducer events.
//
// Observe must be inert: it must not panic and cannot fail the reduction.
// Callers should assume it may be a no-op. Observers attached to
// ReduceParallel are called from several goroutines.
type Observer interface {
	Observe(ev Event)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) Observe(Event) {}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev Event)

func (f ObserverFunc) Observe(ev Event) { f(ev) }

// safeObserve delivers ev and swallows any panic raised by o.
func safeObserve(o Observer, ev Event) {
	if o == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	o.Observe(ev)
}

// Recorder is a concurrency-safe in-memory Observer.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Observe(ev Event) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

// Snapshot returns a copy of all recorded events in arrival order.
func (r *Recorder) Snapshot() []Event {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns how many recorded events have the given kind.
func (r *Recorder) Count(kind EventKind) int {
	n := 0
	for _, ev := range r.Snapshot() {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}
