// Package coroutine provides a cooperative multitasking runtime: a
// [Scheduler] that interleaves many tasks, exactly one of them running at a
// time, switching only at explicit suspension points, and integrating with
// poll(2) so that a task waiting on a file descriptor gives up control
// instead of blocking every other task.
//
// # Architecture
//
// The scheduler keeps three lists of task ids:
//   - active: runnable tasks, visited round-robin from a cursor
//   - asleep: tasks waiting on readiness (or [Scheduler.Wake]), each paired
//     with a poll registration at the same position
//   - dead: finished tasks, whose ids and stacks are reused by
//     [Scheduler.Spawn]
//
// Every id is in exactly one list. Task 0 is the goroutine that created the
// scheduler; it is always registered first and never finishes.
//
// Whenever a task suspends, the scheduler updates the lists, checks sleeping
// tasks for readiness (without blocking if anything else is runnable,
// waiting indefinitely otherwise), and resumes the next active task.
// Removal from active swaps in the last element, so tasks are visited by
// position: each runnable task runs once before any runs twice, but the
// order of identities is not preserved across removals.
//
// # Backends
//
// Task stacks and control transfer come from the Go runtime. [BackendCoro]
// (the default) uses runtime coroutines through github.com/webriots/coro, so
// switches happen on one thread without the goroutine scheduler.
// [BackendThread] runs each task on its own goroutine through
// github.com/0x5a17ed/coro, handing control over channels. Both give
// identical scheduling behaviour, and both report a task that panics or
// calls runtime.Goexit as a [*TaskPanicError]. Only the coro backend
// captures the panicking task's stack, see [PanicError].
//
// # Usage
//
//	s, err := coroutine.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	for _, n := range []int{10, 15, 20, 25} {
//	    s.Spawn(func() {
//	        for i := 0; i < n; i++ {
//	            fmt.Printf("task %d: %d\n", s.ID(), i)
//	            s.Yield()
//	        }
//	    })
//	}
//
//	for s.Alive() > 1 {
//	    s.Yield()
//	}
//
// # Errors
//
// Violations of the scheduler's invariants are programming errors, raised
// as panics carrying [ErrNoActiveTasks], [ErrDeadlock], [ErrFinishBootstrap],
// [ErrStackAlloc], [ErrPoll], or a [*TaskPanicError] for a task that
// panicked or exited its goroutine ([ErrTaskExit]).
// [Scheduler.Wake] on a task that is not asleep does nothing.
package coroutine
