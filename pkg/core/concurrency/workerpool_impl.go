package concurrency

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gammazero/deque"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fluxorio/ppqsort/pkg/core/failfast"
)

// defaultWorkerPool implements WorkerPool
// queue, busy and stop form one critical section guarded by mu; cond is tied to mu.
// Idle workers wait on cond until there is work, or until stop is set and no
// sibling is busy. A busy worker may still submit, so nobody exits before that.
type defaultWorkerPool struct {
	id          string
	name        string
	workers     int
	faultPolicy FaultPolicy
	ctx         context.Context

	mu     sync.Mutex
	cond   *sync.Cond
	queue  deque.Deque[Task]
	busy   int
	stop   bool
	state  State
	faults []error

	wg sync.WaitGroup

	submitted atomic.Int64
	executed  atomic.Int64
	faulted   atomic.Int64

	logger  Logger
	metrics MetricsRecorder
	tracer  trace.Tracer
}

// NewWorkerPool creates a WorkerPool and starts its workers immediately
// Workers < 0 (AutoWorkers) uses DefaultWorkers(); 0 creates a pool that never runs tasks.
// An unknown FaultPolicy panics.
// ctx is only a source of values for task contexts: the pool never cancels work.
func NewWorkerPool(ctx context.Context, config WorkerPoolConfig, opts ...Option) WorkerPool {
	if ctx == nil {
		ctx = context.Background()
	}
	workers := config.Workers
	if workers < 0 {
		workers = DefaultWorkers()
	}
	name := config.Name
	if name == "" {
		name = "default"
	}
	policy := config.FaultPolicy
	if policy == "" {
		policy = FaultCollect
	}
	failfast.If(policy == FaultCollect || policy == FaultCrash, "unknown fault policy %q", policy)

	wp := &defaultWorkerPool{
		id:          uuid.New().String(),
		name:        name,
		workers:     workers,
		faultPolicy: policy,
		state:       StateConstructed,
		logger:      newDefaultSimpleLogger(),
	}
	wp.cond = sync.NewCond(&wp.mu)
	for _, opt := range opts {
		opt(wp)
	}
	wp.ctx = context.WithValue(ctx, poolKey, WorkerPool(wp))

	wp.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go wp.worker(i)
	}

	if wp.metrics != nil {
		wp.metrics.WorkersStarted(wp.name, workers)
	}
	if workers == 0 {
		wp.logger.Warnf("pool %s (%s) has no workers, submitted tasks will never run", wp.name, wp.id)
	} else {
		wp.logger.Debugf("pool %s (%s) started with %d workers", wp.name, wp.id, workers)
	}

	return wp
}

// worker runs tasks until stop is set, the queue is empty and no worker is busy
func (wp *defaultWorkerPool) worker(id int) {
	defer wp.wg.Done()
	ctx := context.WithValue(wp.ctx, workerIDKey, id)

	wp.mu.Lock()
	defer wp.mu.Unlock()

	for {
		for wp.queue.Len() == 0 && !(wp.stop && wp.busy == 0) {
			wp.cond.Wait()
		}
		if wp.queue.Len() == 0 {
			// stop requested, nothing queued and nobody left who could enqueue
			return
		}

		task := wp.queue.PopFront()
		wp.busy++
		if wp.metrics != nil {
			wp.metrics.TaskStarted(wp.name, wp.busy, wp.queue.Len())
		}
		wp.mu.Unlock()

		start := time.Now()
		fault := wp.runTask(ctx, id, task)
		elapsed := time.Since(start)
		wp.executed.Add(1)
		if fault != nil {
			wp.faulted.Add(1)
			wp.logger.Errorf("%v\n%s", fault, fault.Stack)
		}

		wp.mu.Lock()
		wp.busy--
		if fault != nil {
			wp.faults = append(wp.faults, fault)
		}
		if wp.metrics != nil {
			wp.metrics.TaskFinished(wp.name, wp.busy, elapsed, fault != nil)
		}
		if wp.stop && wp.busy == 0 {
			// idle siblings parked on a busy producer can now re-check exit
			wp.cond.Broadcast()
		}
		if fault != nil && wp.faultPolicy == FaultCrash {
			panic(fault)
		}
	}
}

// runTask executes task and converts an escaping panic into a TaskFault
func (wp *defaultWorkerPool) runTask(ctx context.Context, id int, task Task) (fault *TaskFault) {
	name := TaskName(task)

	var span trace.Span
	if wp.tracer != nil {
		ctx, span = wp.tracer.Start(ctx, "task.execute", trace.WithAttributes(
			attribute.String("pool.id", wp.id),
			attribute.String("pool.name", wp.name),
			attribute.Int("worker.id", id),
			attribute.String("task.name", name),
		))
		defer span.End()
	}

	defer func() {
		if r := recover(); r != nil {
			fault = &TaskFault{
				Task:   name,
				Pool:   wp.name,
				Worker: id,
				Err:    failfast.Recovered(r),
				Stack:  debug.Stack(),
			}
			if span != nil {
				span.RecordError(fault.Err)
				span.SetStatus(codes.Error, ErrTaskPanic.Error())
			}
		}
	}()

	task.Execute(ctx)
	return nil
}

// Submit implements WorkerPool interface
func (wp *defaultWorkerPool) Submit(task Task) {
	failfast.NotNil(task, "task")

	wp.mu.Lock()
	wp.queue.PushBack(task)
	wp.submitted.Add(1)
	if wp.metrics != nil {
		wp.metrics.TaskSubmitted(wp.name, wp.queue.Len())
	}
	wp.cond.Signal()
	wp.mu.Unlock()
}

// WaitAndStop implements WorkerPool interface
func (wp *defaultWorkerPool) WaitAndStop() error {
	wp.mu.Lock()
	if !wp.stop {
		wp.stop = true
		wp.state = StateDraining
		wp.cond.Broadcast()
		wp.logger.Debugf("pool %s (%s) draining: %d pending, %d busy", wp.name, wp.id, wp.queue.Len(), wp.busy)
	}
	wp.mu.Unlock()

	wp.wg.Wait()

	wp.mu.Lock()
	defer wp.mu.Unlock()
	if wp.state != StateStopped {
		wp.state = StateStopped
		if wp.metrics != nil {
			wp.metrics.WorkersStopped(wp.name)
		}
		wp.logger.Debugf("pool %s (%s) stopped: %d executed, %d faulted",
			wp.name, wp.id, wp.executed.Load(), wp.faulted.Load())
	}
	return errors.Join(wp.faults...)
}

// Close implements WorkerPool interface
func (wp *defaultWorkerPool) Close() error {
	return wp.WaitAndStop()
}

// ID implements WorkerPool interface
func (wp *defaultWorkerPool) ID() string {
	return wp.id
}

// Name implements WorkerPool interface
func (wp *defaultWorkerPool) Name() string {
	return wp.name
}

// Workers implements WorkerPool interface
func (wp *defaultWorkerPool) Workers() int {
	return wp.workers
}

// Busy implements WorkerPool interface
func (wp *defaultWorkerPool) Busy() int {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	return wp.busy
}

// Pending implements WorkerPool interface
func (wp *defaultWorkerPool) Pending() int {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	return wp.queue.Len()
}

// State implements WorkerPool interface
func (wp *defaultWorkerPool) State() State {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	return wp.state
}

// IsRunning implements WorkerPool interface
func (wp *defaultWorkerPool) IsRunning() bool {
	return wp.State() == StateConstructed
}

// Stats implements WorkerPool interface
func (wp *defaultWorkerPool) Stats() PoolStats {
	wp.mu.Lock()
	busy, pending, state := wp.busy, wp.queue.Len(), wp.state
	wp.mu.Unlock()

	return PoolStats{
		Workers:   wp.workers,
		Busy:      busy,
		Pending:   pending,
		Submitted: wp.submitted.Load(),
		Executed:  wp.executed.Load(),
		Faulted:   wp.faulted.Load(),
		State:     state.String(),
	}
}
