package concurrency

import (
	"errors"
	"fmt"
)

// ErrTaskPanic is wrapped by every TaskFault
var ErrTaskPanic = errors.New("task panicked")

// TaskFault reports a panic that escaped a task's Execute
// The worker that ran the task recovers, restores the busy count and keeps running
type TaskFault struct {
	Task   string // TaskName of the faulting task
	Pool   string // Name of the pool
	Worker int    // Id of the worker that executed it
	Err    error  // Recovered panic value as an error
	Stack  []byte // Stack of the panicking goroutine
}

func (f *TaskFault) Error() string {
	return fmt.Sprintf("pool %s worker %d: task %s panicked: %v", f.Pool, f.Worker, f.Task, f.Err)
}

// Unwrap exposes both ErrTaskPanic and the recovered error
func (f *TaskFault) Unwrap() []error {
	return []error{ErrTaskPanic, f.Err}
}
