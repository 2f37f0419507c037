// Package ctxswitch implements the control transfer between cooperative
// tasks.
//
// A [Context] is one task's resume point. Exactly two operations move
// control: [Context.Suspend], called by the running task, captures where it
// stopped and hands a [Suspension] to whoever resumed it, and
// [Context.Resume] continues a previously suspended (or freshly loaded)
// context until its next suspension.
//
// Go code cannot run on hand-built stacks, so both backends are coroutine
// libraries over the Go runtime:
//   - [Coro]: github.com/webriots/coro, switching runtime coroutines on the
//     same thread
//   - [Thread]: github.com/0x5a17ed/coro, one goroutine per context with
//     channel hand-off
//
// Callers treat the backends as interchangeable. An entry that panics or
// calls runtime.Goexit is reported as a [Finish] carrying a [PanicError],
// and leaves its context unwound.
package ctxswitch

import (
	"fmt"
)

// Reason tags why a task gave up control.
type Reason uint8

const (
	// None is a voluntary yield.
	None Reason = iota
	// ReadWait suspends until the descriptor is readable.
	ReadWait
	// WriteWait suspends until the descriptor is writable.
	WriteWait
	// Park suspends until the task is explicitly woken.
	Park
	// Finish is reported by the completion handler once the entry returns.
	Finish
)

// String implements fmt.Stringer.
func (r Reason) String() string {
	switch r {
	case None:
		return "none"
	case ReadWait:
		return "read-wait"
	case WriteWait:
		return "write-wait"
	case Park:
		return "park"
	case Finish:
		return "finish"
	default:
		return fmt.Sprintf("Reason(%d)", uint8(r))
	}
}

// Suspension is the value handed to the dispatcher by a suspending task.
type Suspension struct {
	// Panic is set when the entry function panicked or exited its
	// goroutine (Reason is Finish).
	Panic *PanicError
	// FD is the descriptor of interest for ReadWait and WriteWait.
	FD     int
	Reason Reason
}

// Context is a single task's execution context.
//
// A context is idle until [Context.Load] installs a frame, and becomes idle
// again after the frame's completion handler reports [Finish]. Idle contexts
// may be loaded again, which is how stacks are recycled. A Finish carrying a
// Panic leaves the context unwound instead, and only Release remains valid.
type Context interface {
	// Suspend is suspend-and-dispatch. It must only be called from inside
	// the context's own entry, and returns once the context is resumed.
	Suspend(s Suspension)

	// Resume transfers control into the context and returns the suspension
	// it reports next. It must not be called from inside the context.
	Resume() Suspension

	// Load installs the initial frame for a new entry. The context must be
	// idle.
	Load(t *Thunk)

	// Release tears down the context, unwinding a suspended entry. It
	// returns a *PanicError if the entry panicked while unwinding. Released
	// contexts must not be used again.
	Release() error
}

// Backend allocates contexts.
type Backend interface {
	// New allocates an idle context.
	New() Context

	// Name identifies the backend in diagnostics.
	Name() string
}
