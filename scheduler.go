package coroutine

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"

	"github.com/joeycumines/go-coroutine/internal/ctxswitch"
	"github.com/joeycumines/go-coroutine/internal/stack"
)

// pollCategory is the catrate category for throttled readiness checks.
const pollCategory = "poll"

// Scheduler multiplexes cooperative tasks, running exactly one at a time.
//
// The goroutine that calls New is task 0, the bootstrap task. Every other
// task is started by Spawn. Tasks give up control only by calling Yield,
// SleepRead, SleepWrite or Park, or by returning from their entry function.
//
// A Scheduler is not safe for concurrent use: every method must be called
// from the running task. No locks are used, since only one task ever runs.
type Scheduler struct {
	// Prevent copying
	_ [0]func()

	logger  *logiface.Logger[logiface.Event]
	arena   *stack.Arena
	poller  Poller
	limiter *catrate.Limiter

	// tasks is the task table, indexed by id.
	tasks []task

	// active is visited round-robin, starting at cursor.
	active []int
	// asleep is positionally aligned with polls.
	asleep []int
	polls  []PollFD
	// dead is the free list of ids (and their stacks).
	dead []int

	cursor int

	stats   Stats
	backend Backend
	closed  bool
}

// New creates a scheduler, registering the calling goroutine as task 0.
func New(opts ...Option) (*Scheduler, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}

	backend, err := cfg.backend.contextBackend()
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		logger:  cfg.logger,
		arena:   stack.NewArena(backend),
		poller:  cfg.poller,
		limiter: cfg.limiter,
		backend: cfg.backend,
		tasks:   []task{{state: StateActive}},
		active:  []int{0},
	}

	s.logger.Debug().
		Stringer("backend", s.backend).
		Log("coroutine: scheduler created")

	return s, nil
}

// Spawn registers a new task running body, and returns immediately. The
// task first runs when the caller next gives up control.
//
// The id (and stack) of a finished task is reused when available.
func (s *Scheduler) Spawn(body func()) {
	if body == nil {
		panic(ErrNilEntry)
	}
	if s.closed {
		panic(ErrClosed)
	}

	var id int
	if n := len(s.dead); n != 0 {
		id = s.dead[n-1]
		s.dead = s.dead[:n-1]
		s.stats.Recycled++
	} else {
		id = len(s.tasks)
		s.tasks = append(s.tasks, task{region: s.arena.Allocate()})
	}

	t := &s.tasks[id]
	t.setEntry(body)
	t.region.Load(ctxswitch.NewThunk(body))
	t.state = StateActive
	s.active = append(s.active, id)
	s.stats.Spawned++

	s.logger.Debug().
		Int("task", id).
		Int("region", t.region.ID()).
		Str("entry", t.name).
		Log("coroutine: spawned")
}

// Yield suspends the calling task until its turn comes around again.
func (s *Scheduler) Yield() {
	s.suspend(ctxswitch.Suspension{Reason: ctxswitch.None})
}

// SleepRead suspends the calling task until fd is readable (or reports an
// error or hangup), or until it is woken by Wake.
func (s *Scheduler) SleepRead(fd int) {
	s.suspend(ctxswitch.Suspension{Reason: ctxswitch.ReadWait, FD: fd})
}

// SleepWrite suspends the calling task until fd is writable (or reports an
// error or hangup), or until it is woken by Wake.
func (s *Scheduler) SleepWrite(fd int) {
	s.suspend(ctxswitch.Suspension{Reason: ctxswitch.WriteWait, FD: fd})
}

// Park suspends the calling task until it is woken by Wake.
//
// If every task is parked, nothing can wake them, and the scheduler panics
// with ErrDeadlock.
func (s *Scheduler) Park() {
	s.suspend(ctxswitch.Suspension{Reason: ctxswitch.Park, FD: -1})
}

// ID returns the id of the running task.
func (s *Scheduler) ID() int {
	return s.active[s.cursor]
}

// Alive returns the number of runnable tasks, including the caller.
func (s *Scheduler) Alive() int {
	return len(s.active)
}

// Wake moves a sleeping task back to the runnable set, cancelling its
// readiness registration. It does nothing if the task is not asleep.
func (s *Scheduler) Wake(id int) {
	for i, v := range s.asleep {
		if v == id {
			s.awaken(i)
			s.stats.Wakes++
			s.logger.Trace().
				Int("task", id).
				Log("coroutine: woken")
			return
		}
	}
}

// Inspect returns diagnostic information about a task. The boolean is false
// if the id has never been assigned.
func (s *Scheduler) Inspect(id int) (TaskInfo, bool) {
	if id < 0 || id >= len(s.tasks) {
		return TaskInfo{ID: id, FD: -1, Region: -1}, false
	}
	info := s.tasks[id].info(id)
	if info.State == StateAsleep {
		for i, v := range s.asleep {
			if v == id {
				info.FD = s.polls[i].FD
				info.Events = s.polls[i].Events
				break
			}
		}
	}
	return info, true
}

// Stats returns a copy of the scheduler counters.
func (s *Scheduler) Stats() Stats {
	stats := s.stats
	stats.Regions = s.arena.Allocated()
	return stats
}

// Close releases the stacks of finished tasks. It must be called by task 0
// once no other task is alive or asleep, and returns ErrBusy otherwise.
// Spawn panics after Close. Failures to release a stack are joined into the
// returned error once every stack has been released.
func (s *Scheduler) Close() error {
	if s.closed {
		return ErrClosed
	}
	if s.ID() != 0 || len(s.active) != 1 || len(s.asleep) != 0 {
		return ErrBusy
	}
	s.closed = true
	var errs []error
	for _, id := range s.dead {
		if err := s.arena.Release(s.tasks[id].region); err != nil {
			s.logger.Err().
				Err(err).
				Int("task", id).
				Log("coroutine: stack release failed")
			errs = append(errs, err)
		}
	}
	s.logger.Debug().
		Int("regions", s.arena.Allocated()).
		Log("coroutine: scheduler closed")
	return errors.Join(errs...)
}

// suspend is suspend-and-dispatch for the running task. Other tasks hand
// the suspension to the dispatcher through their context, while task 0 is
// itself the dispatcher.
func (s *Scheduler) suspend(sus ctxswitch.Suspension) {
	if id := s.active[s.cursor]; id != 0 {
		s.tasks[id].region.Context().Suspend(sus)
		return
	}
	s.dispatch(sus)
}

// dispatch runs on task 0. It settles sus, then resumes tasks in turn until
// task 0 is selected again.
func (s *Scheduler) dispatch(sus ctxswitch.Suspension) {
	for {
		s.settle(sus)
		id := s.active[s.cursor]
		if id == 0 {
			return
		}
		sus = s.tasks[id].region.Context().Resume()
	}
}

// settle applies the suspension of the task at active[cursor], checks
// readiness, and selects the next task.
func (s *Scheduler) settle(sus ctxswitch.Suspension) {
	s.stats.Dispatches++
	id := s.active[s.cursor]

	switch sus.Reason {
	case ctxswitch.None:
		s.cursor++
		s.stats.Yields++
	case ctxswitch.ReadWait:
		s.sleep(id, PollFD{FD: sus.FD, Events: EventRead})
	case ctxswitch.WriteWait:
		s.sleep(id, PollFD{FD: sus.FD, Events: EventWrite})
	case ctxswitch.Park:
		s.sleep(id, PollFD{FD: -1})
	case ctxswitch.Finish:
		s.finish(id, sus.Panic)
	default:
		panic(fmt.Errorf("coroutine: unknown suspension reason %v", sus.Reason))
	}

	s.pollReady()

	if len(s.active) == 0 {
		s.fatal(ErrNoActiveTasks)
	}
	s.cursor %= len(s.active)
}

func (s *Scheduler) sleep(id int, reg PollFD) {
	s.asleep = append(s.asleep, id)
	s.polls = append(s.polls, reg)
	s.removeActive(s.cursor)
	s.tasks[id].state = StateAsleep
	s.stats.Sleeps++
	s.logger.Trace().
		Int("task", id).
		Int("fd", reg.FD).
		Stringer("events", reg.Events).
		Log("coroutine: sleeping")
}

// finish moves the running task to the dead list. Its stack is kept for the
// next Spawn.
func (s *Scheduler) finish(id int, p *PanicError) {
	if id == 0 {
		s.fatal(ErrFinishBootstrap)
	}
	s.dead = append(s.dead, id)
	s.removeActive(s.cursor)
	s.tasks[id].state = StateDead
	s.stats.Finished++
	if p != nil {
		s.fatal(&TaskPanicError{ID: id, Panic: p})
	}
	s.logger.Debug().
		Int("task", id).
		Log("coroutine: finished")
}

// pollReady checks sleeping tasks for readiness, blocking only if nothing
// else can run. Ready tasks are moved back to active.
func (s *Scheduler) pollReady() {
	if len(s.polls) == 0 {
		return
	}

	var timeout time.Duration
	if len(s.active) == 0 {
		timeout = -1
		if !s.pollable() {
			s.fatal(ErrDeadlock)
		}
	} else if s.limiter != nil {
		if _, ok := s.limiter.Allow(pollCategory); !ok {
			s.stats.PollsThrottled++
			return
		}
	}

	for i := range s.polls {
		s.polls[i].Revents = 0
	}
	if _, err := s.poller.Poll(s.polls, timeout); err != nil {
		s.fatal(fmt.Errorf("%w: %w", ErrPoll, err))
	}
	s.stats.Polls++

	for i := 0; i < len(s.polls); {
		if s.polls[i].Revents == 0 {
			i++
			continue
		}
		s.logger.Trace().
			Int("task", s.asleep[i]).
			Int("fd", s.polls[i].FD).
			Stringer("revents", s.polls[i].Revents).
			Log("coroutine: ready")
		s.awaken(i)
		s.stats.Ready++
	}
}

// pollable reports whether any registration could become ready.
func (s *Scheduler) pollable() bool {
	for _, p := range s.polls {
		if p.FD >= 0 {
			return true
		}
	}
	return false
}

// awaken moves asleep[i] to the end of active, swap-removing it and its
// registration.
func (s *Scheduler) awaken(i int) {
	id := s.asleep[i]
	last := len(s.asleep) - 1
	s.asleep[i] = s.asleep[last]
	s.asleep = s.asleep[:last]
	s.polls[i] = s.polls[last]
	s.polls = s.polls[:last]
	s.active = append(s.active, id)
	s.tasks[id].state = StateActive
}

// removeActive swap-removes active[i]. Order is not preserved.
func (s *Scheduler) removeActive(i int) {
	last := len(s.active) - 1
	s.active[i] = s.active[last]
	s.active = s.active[:last]
}

func (s *Scheduler) fatal(err error) {
	b := s.logger.Crit().
		Err(err).
		Int("active", len(s.active)).
		Int("asleep", len(s.asleep))
	var taskErr *TaskPanicError
	if errors.As(err, &taskErr) {
		b = b.Int("task", taskErr.ID).
			Str("panic", taskErr.Panic.Detail())
	}
	b.Log("coroutine: fatal scheduler error")
	panic(err)
}
