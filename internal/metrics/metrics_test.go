package metrics

import (
	"context"
	"slices"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corpusreduce/internal/classify"
	"corpusreduce/internal/reduce"
)

func TestCollector_SerialReduction(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	values := []uint16{0, 1, 2, 65535, 3, 0}
	_, err = reduce.Reduce(slices.Values(values), classify.Unsigned[uint16](), reduce.WithObserver(c))
	require.NoError(t, err)

	assert.Equal(t, 6.0, testutil.ToFloat64(c.records))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.newClasses))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.duplicates))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.distinct))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.passes))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestCollector_ParallelReduction(t *testing.T) {
	c, err := NewCollector(nil)
	require.NoError(t, err)

	values := make([]int8, 250)
	for i := range values {
		values[i] = int8(i - 128)
	}
	_, err = reduce.ReduceParallel(context.Background(), slices.Values(values), classify.Signed[int8](),
		reduce.WithObserver(c), reduce.WithWorkers(3), reduce.WithBatchSize(50))
	require.NoError(t, err)

	assert.Equal(t, 250.0, testutil.ToFloat64(c.records))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.batches))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.newClasses))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.distinct))
}

func TestNewCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg)
	require.NoError(t, err)

	_, err = NewCollector(reg)
	assert.Error(t, err)
}
