package concurrency

import (
	"runtime"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// AutoWorkers asks the pool to size itself from GOMAXPROCS
const AutoWorkers = -1

// FaultPolicy decides what happens when a task panics
type FaultPolicy string

const (
	// FaultCollect recovers the panic, logs it and reports it from WaitAndStop
	FaultCollect FaultPolicy = "collect"
	// FaultCrash restores the pool bookkeeping and then re-panics, terminating the process
	FaultCrash FaultPolicy = "crash"
)

// WorkerPoolConfig configures a WorkerPool
type WorkerPoolConfig struct {
	Name        string      `yaml:"name" json:"name"`                 // Pool name for logs, metrics and spans
	Workers     int         `yaml:"workers" json:"workers"`           // Worker goroutines; AutoWorkers for GOMAXPROCS, 0 for none
	FaultPolicy FaultPolicy `yaml:"fault_policy" json:"fault_policy"` // collect or crash
}

// DefaultWorkerPoolConfig returns default worker pool configuration
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		Name:        "default",
		Workers:     AutoWorkers,
		FaultPolicy: FaultCollect,
	}
}

// DefaultWorkers returns the platform concurrency level, never less than 1
func DefaultWorkers() int {
	if n := runtime.GOMAXPROCS(0); n > 0 {
		return n
	}
	return 1
}

// MetricsRecorder receives pool events
// Calls are made while the pool lock is held and must not block
type MetricsRecorder interface {
	TaskSubmitted(pool string, pending int)
	TaskStarted(pool string, busy, pending int)
	TaskFinished(pool string, busy int, elapsed time.Duration, faulted bool)
	WorkersStarted(pool string, workers int)
	WorkersStopped(pool string)
}

// Option configures optional collaborators of a WorkerPool
type Option func(*defaultWorkerPool)

// WithLogger replaces the default stderr logger
func WithLogger(logger Logger) Option {
	return func(wp *defaultWorkerPool) {
		if logger != nil {
			wp.logger = logger
		}
	}
}

// WithMetrics reports pool events to recorder
func WithMetrics(recorder MetricsRecorder) Option {
	return func(wp *defaultWorkerPool) {
		wp.metrics = recorder
	}
}

// WithTracer wraps every task execution in a span started from tracer
func WithTracer(tracer trace.Tracer) Option {
	return func(wp *defaultWorkerPool) {
		wp.tracer = tracer
	}
}
