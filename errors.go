package coroutine

import (
	"errors"
	"fmt"

	"github.com/joeycumines/go-coroutine/internal/ctxswitch"
	"github.com/joeycumines/go-coroutine/internal/stack"
)

// Fatal conditions. The scheduler panics with these (possibly wrapped);
// they indicate programming errors rather than runtime conditions, and the
// scheduler state is not usable afterwards.
var (
	// ErrNoActiveTasks is raised when no task is runnable and there is no
	// pending I/O to wait on.
	ErrNoActiveTasks = errors.New("coroutine: no active coroutines")

	// ErrDeadlock is raised when every sleeping task is parked, with no
	// descriptor that could become ready. It wraps ErrNoActiveTasks.
	ErrDeadlock = fmt.Errorf("%w: every sleeping task is parked", ErrNoActiveTasks)

	// ErrFinishBootstrap is raised if the finish path is reached for task 0.
	ErrFinishBootstrap = errors.New("coroutine: bootstrap task 0 cannot finish")

	// ErrStackAlloc is raised when a task stack cannot be allocated.
	ErrStackAlloc = stack.ErrAlloc

	// ErrPoll wraps a failed readiness check.
	ErrPoll = errors.New("coroutine: readiness check failed")

	// ErrNilEntry is raised by Spawn given a nil function.
	ErrNilEntry = errors.New("coroutine: nil entry function")

	// ErrTaskPanic wraps the panic of a task entry function, which is
	// re-raised on the bootstrap task. Use errors.As with *PanicError to
	// get at the value.
	ErrTaskPanic = errors.New("coroutine: task panicked")

	// ErrTaskExit is the panic value reported, wrapped in ErrTaskPanic, for
	// a task entry that called runtime.Goexit.
	ErrTaskExit = ctxswitch.ErrGoexit
)

// Recoverable errors.
var (
	// ErrBusy is returned by Close while tasks other than task 0 exist.
	ErrBusy = errors.New("coroutine: tasks are still alive")

	// ErrClosed is returned (or raised, by Spawn) once the scheduler is closed.
	ErrClosed = errors.New("coroutine: scheduler closed")

	// ErrInvalidBackend is returned by New for an unknown Backend.
	ErrInvalidBackend = errors.New("coroutine: invalid backend")

	// ErrInvalidPollRate is returned by New for unusable poll rates.
	ErrInvalidPollRate = errors.New("coroutine: invalid poll rate")

	// ErrPollerUnsupported is returned by the default poller on platforms
	// without poll(2).
	ErrPollerUnsupported = errors.New("coroutine: readiness polling is not supported on this platform")
)

// PanicError is a panic recovered from a task. Its Detail method includes
// the task's stack where the backend captured one.
type PanicError = ctxswitch.PanicError

// TaskPanicError is raised on the bootstrap task when a task panics.
type TaskPanicError struct {
	Panic *PanicError
	ID    int
}

// Error implements the error interface.
func (e *TaskPanicError) Error() string {
	return fmt.Sprintf("coroutine: task %d panicked: %v", e.ID, e.Panic.Value)
}

// Unwrap exposes both ErrTaskPanic and the recovered panic.
func (e *TaskPanicError) Unwrap() []error {
	return []error{ErrTaskPanic, e.Panic}
}
