// Package metrics exports reducer progress as Prometheus metrics.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"corpusreduce/internal/reduce"
)

const namespace = "corpusreduce"

// Collector implements reduce.Observer on top of Prometheus collectors.
type Collector struct {
	records    prometheus.Counter
	newClasses prometheus.Counter
	duplicates prometheus.Counter
	batches    prometheus.Counter
	distinct   prometheus.Gauge
	passes     prometheus.Counter
}

var _ reduce.Observer = (*Collector)(nil)

// NewCollector creates the reducer metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Records consumed by the reducer.",
		}),
		newClasses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "new_classes_total",
			Help:      "Records that became the representative of a new class (serial reduction only).",
		}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_total",
			Help:      "Records counted against an existing class (serial reduction only).",
		}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Batches processed by parallel workers.",
		}),
		distinct: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "distinct_classes",
			Help:      "Distinct classes in the last finished reduction.",
		}),
		passes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_total",
			Help:      "Finished reduction passes.",
		}),
	}
	if reg != nil {
		for _, col := range []prometheus.Collector{c.records, c.newClasses, c.duplicates, c.batches, c.distinct, c.passes} {
			if err := reg.Register(col); err != nil {
				return nil, fmt.Errorf("register reducer metrics: %w", err)
			}
		}
	}
	return c, nil
}

// Observe updates the metrics for one reducer event.
func (c *Collector) Observe(ev reduce.Event) {
	switch ev.Kind {
	case reduce.EventNewClass:
		c.records.Inc()
		c.newClasses.Inc()
	case reduce.EventDuplicate:
		c.records.Inc()
		c.duplicates.Inc()
	case reduce.EventBatch:
		c.batches.Inc()
		c.records.Add(float64(ev.Count))
	case reduce.EventFinished:
		c.distinct.Set(float64(ev.Count))
		c.passes.Inc()
	}
}
