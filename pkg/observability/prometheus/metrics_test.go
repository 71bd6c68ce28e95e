package prometheus

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxorio/ppqsort/pkg/core"
	"github.com/fluxorio/ppqsort/pkg/core/concurrency"
)

func TestPoolMetrics_Recorder(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewPoolMetrics(registry)

	m.WorkersStarted("p", 4)
	m.TaskSubmitted("p", 1)
	m.TaskSubmitted("p", 2)
	m.TaskStarted("p", 1, 1)
	m.TaskFinished("p", 0, 5*time.Millisecond, false)
	m.TaskStarted("p", 1, 0)
	m.TaskFinished("p", 0, time.Millisecond, true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TasksSubmitted.WithLabelValues("p")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TasksExecuted.WithLabelValues("p")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TaskFaults.WithLabelValues("p")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.QueueDepth.WithLabelValues("p")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Workers.WithLabelValues("p")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.TaskDuration))

	m.WorkersStopped("p")
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Workers.WithLabelValues("p")))
}

func TestPoolMetrics_WithPool(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewPoolMetrics(registry)

	config := concurrency.WorkerPoolConfig{Name: "sort", Workers: 2}
	err := concurrency.Run(context.Background(), config, func(pool concurrency.WorkerPool) {
		for i := 0; i < 10; i++ {
			pool.Submit(concurrency.Func(func() {}))
		}
	}, concurrency.WithMetrics(m), concurrency.WithLogger(core.NopLogger()))
	require.NoError(t, err)

	assert.Equal(t, 10.0, testutil.ToFloat64(m.TasksSubmitted.WithLabelValues("sort")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.TasksExecuted.WithLabelValues("sort")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.BusyWorkers.WithLabelValues("sort")))
}

func TestHandler(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewPoolMetrics(registry)
	m.TaskSubmitted("served", 1)

	rec := httptest.NewRecorder()
	Handler(registry).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `ppqsort_pool_tasks_submitted_total{pool="served"} 1`), string(body))
}

func TestNewPoolMetrics_DefaultRegisterer(t *testing.T) {
	m := NewPoolMetrics(nil)
	m.TaskSubmitted("default", 0)

	families, err := DefaultRegistry.Gather()
	require.NoError(t, err)
	found := false
	for _, f := range families {
		if f.GetName() == "ppqsort_pool_tasks_submitted_total" {
			found = true
		}
	}
	assert.True(t, found)
}
