package concurrency

import (
	"context"
	"fmt"
)

// WorkerPool abstracts worker goroutine management for recursively generated work
// Tasks may submit further tasks while running; shutdown waits for those too
type WorkerPool interface {
	// Submit appends a task to the back of the shared queue and wakes one idle worker
	// Safe from any goroutine, including from inside a task running on this pool
	Submit(task Task)

	// WaitAndStop requests shutdown and blocks until every worker has exited
	// Workers keep draining the queue, and keep waiting for busy siblings that
	// may still submit, before they exit. Idempotent and safe to call concurrently.
	// Returns the faults collected from panicking tasks, if any
	WaitAndStop() error

	// Close is WaitAndStop, so a pool can be released as an io.Closer
	Close() error

	// ID returns the unique id of this pool instance
	ID() string

	// Name returns the configured pool name
	Name() string

	// Workers returns the number of worker goroutines
	Workers() int

	// Busy returns the number of workers currently executing a task
	Busy() int

	// Pending returns the number of queued tasks not yet dequeued
	Pending() int

	// State returns the lifecycle state
	State() State

	// IsRunning returns true until shutdown has been requested
	IsRunning() bool

	// Stats returns a snapshot of pool statistics
	Stats() PoolStats
}

// State is the lifecycle state of a WorkerPool
type State int32

const (
	// StateConstructed means workers are running and accepting submissions
	StateConstructed State = iota
	// StateDraining means stop was requested and workers are finishing accepted work
	StateDraining
	// StateStopped means every worker has exited
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// PoolStats provides statistics about a WorkerPool
type PoolStats struct {
	Workers   int    `json:"workers"`
	Busy      int    `json:"busy"`
	Pending   int    `json:"pending"`
	Submitted int64  `json:"submitted"`
	Executed  int64  `json:"executed"`
	Faulted   int64  `json:"faulted"`
	State     string `json:"state"`
}

// Run creates a pool, hands it to fn and always shuts it down before returning
// WaitAndStop runs on every exit path of fn. A panic escaping fn is re-raised
// once the workers have been joined.
func Run(ctx context.Context, config WorkerPoolConfig, fn func(WorkerPool), opts ...Option) (err error) {
	pool := NewWorkerPool(ctx, config, opts...)
	defer func() {
		r := recover()
		err = pool.WaitAndStop()
		if r != nil {
			panic(r)
		}
	}()

	fn(pool)
	return nil
}
