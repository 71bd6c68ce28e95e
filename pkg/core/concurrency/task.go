package concurrency

import (
	"context"
)

// Task represents a unit of work that can be executed by a WorkerPool
// A task is owned by the pool from Submit until a worker dequeues it,
// and by that worker until Execute returns
type Task interface {
	// Execute performs the task work
	// ctx carries the executing worker and its pool (see WorkerID, PoolFromContext)
	Execute(ctx context.Context)
}

// TaskFunc is a function type that implements Task
// Allows functions to be used as tasks without creating a struct
type TaskFunc func(ctx context.Context)

// Execute implements Task interface for TaskFunc
func (f TaskFunc) Execute(ctx context.Context) {
	f(ctx)
}

// Func adapts a nullary closure into a Task
func Func(fn func()) Task {
	return TaskFunc(func(context.Context) { fn() })
}

// NamedTask wraps a TaskFunc with a custom name
// The name shows up in logs, spans and fault reports
type NamedTask struct {
	name string
	task TaskFunc
}

// NewNamedTask creates a new NamedTask
func NewNamedTask(name string, task TaskFunc) *NamedTask {
	return &NamedTask{
		name: name,
		task: task,
	}
}

// Execute implements Task interface
func (nt *NamedTask) Execute(ctx context.Context) {
	nt.task(ctx)
}

// Name returns the task name
func (nt *NamedTask) Name() string {
	return nt.name
}

// TaskName returns a human-readable name for any task
func TaskName(task Task) string {
	if named, ok := task.(interface{ Name() string }); ok {
		if name := named.Name(); name != "" {
			return name
		}
	}
	return "task"
}

type ctxKey int

const (
	workerIDKey ctxKey = iota
	poolKey
)

// WorkerID returns the id of the worker executing the task that received ctx
// Ids are in [0, Workers()) and stable for the lifetime of the worker
func WorkerID(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(workerIDKey).(int)
	return id, ok
}

// PoolFromContext returns the pool executing the task that received ctx
// Tasks use it to submit follow-up work to their own pool
func PoolFromContext(ctx context.Context) (WorkerPool, bool) {
	pool, ok := ctx.Value(poolKey).(WorkerPool)
	return pool, ok
}
