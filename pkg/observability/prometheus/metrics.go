// Package prometheus exports worker pool activity as Prometheus metrics.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// DefaultRegistry is the default Prometheus registry
	DefaultRegistry = prometheus.NewRegistry()

	// DefaultRegisterer is the default Prometheus registerer
	DefaultRegisterer = prometheus.WrapRegistererWith(prometheus.Labels{"service": "ppqsort"}, DefaultRegistry)
)

// PoolMetrics holds the Prometheus metrics of one or more worker pools
// It implements concurrency.MetricsRecorder; every series is labelled with the pool name
type PoolMetrics struct {
	TasksSubmitted *prometheus.CounterVec
	TasksExecuted  *prometheus.CounterVec
	TaskFaults     *prometheus.CounterVec
	TaskDuration   *prometheus.HistogramVec
	QueueDepth     *prometheus.GaugeVec
	BusyWorkers    *prometheus.GaugeVec
	Workers        *prometheus.GaugeVec
}

// NewPoolMetrics creates and registers pool metrics with registerer
// A nil registerer uses DefaultRegisterer
func NewPoolMetrics(registerer prometheus.Registerer) *PoolMetrics {
	if registerer == nil {
		registerer = DefaultRegisterer
	}
	factory := promauto.With(registerer)
	labels := []string{"pool"}

	return &PoolMetrics{
		TasksSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ppqsort_pool_tasks_submitted_total",
				Help: "Total number of tasks submitted to the pool",
			},
			labels,
		),
		TasksExecuted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ppqsort_pool_tasks_executed_total",
				Help: "Total number of tasks executed by pool workers",
			},
			labels,
		),
		TaskFaults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ppqsort_pool_task_faults_total",
				Help: "Total number of tasks that panicked",
			},
			labels,
		),
		TaskDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ppqsort_pool_task_duration_seconds",
				Help:    "Task execution time in seconds",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
			},
			labels,
		),
		QueueDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ppqsort_pool_queue_depth",
				Help: "Tasks waiting in the pool queue",
			},
			labels,
		),
		BusyWorkers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ppqsort_pool_busy_workers",
				Help: "Workers currently executing a task",
			},
			labels,
		),
		Workers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ppqsort_pool_workers",
				Help: "Live worker goroutines",
			},
			labels,
		),
	}
}

// TaskSubmitted records a submission and the resulting queue depth
func (m *PoolMetrics) TaskSubmitted(pool string, pending int) {
	m.TasksSubmitted.WithLabelValues(pool).Inc()
	m.QueueDepth.WithLabelValues(pool).Set(float64(pending))
}

// TaskStarted records a dequeue
func (m *PoolMetrics) TaskStarted(pool string, busy, pending int) {
	m.BusyWorkers.WithLabelValues(pool).Set(float64(busy))
	m.QueueDepth.WithLabelValues(pool).Set(float64(pending))
}

// TaskFinished records a completed execution
func (m *PoolMetrics) TaskFinished(pool string, busy int, elapsed time.Duration, faulted bool) {
	m.TasksExecuted.WithLabelValues(pool).Inc()
	m.TaskDuration.WithLabelValues(pool).Observe(elapsed.Seconds())
	m.BusyWorkers.WithLabelValues(pool).Set(float64(busy))
	if faulted {
		m.TaskFaults.WithLabelValues(pool).Inc()
	}
}

// WorkersStarted records the size of a freshly constructed pool
func (m *PoolMetrics) WorkersStarted(pool string, workers int) {
	m.Workers.WithLabelValues(pool).Set(float64(workers))
}

// WorkersStopped records that every worker of pool has exited
func (m *PoolMetrics) WorkersStopped(pool string) {
	m.Workers.WithLabelValues(pool).Set(0)
	m.BusyWorkers.WithLabelValues(pool).Set(0)
}

// Handler serves the metrics gathered by gatherer
// A nil gatherer serves DefaultRegistry
func Handler(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		gatherer = DefaultRegistry
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
