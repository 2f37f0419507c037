package ctxswitch

import (
	"errors"
)

var (
	// ErrThunkConsumed is raised when a Thunk is invoked a second time.
	ErrThunkConsumed = errors.New("ctxswitch: thunk already invoked")

	// ErrContextLoaded is raised when loading a context that has not run its
	// previous frame, or that is still running it.
	ErrContextLoaded = errors.New("ctxswitch: context already loaded")

	// ErrReleased is raised when resuming or loading a released context.
	ErrReleased = errors.New("ctxswitch: context released")

	// ErrUnwound is raised when resuming or loading a context whose entry
	// panicked or exited its goroutine.
	ErrUnwound = errors.New("ctxswitch: context unwound")

	// ErrGoexit is the PanicError value reported for an entry that called
	// runtime.Goexit.
	ErrGoexit = errors.New("ctxswitch: entry exited its goroutine")
)

// Thunk is the owned task payload: a zero-argument callable invoked exactly
// once, the first time its context runs.
type Thunk struct {
	fn   func()
	done bool
}

// NewThunk wraps fn. A nil fn yields a thunk that does nothing.
func NewThunk(fn func()) *Thunk {
	return &Thunk{fn: fn}
}

// Invoke calls and consumes the wrapped function.
func (t *Thunk) Invoke() {
	if t == nil {
		return
	}
	if t.done {
		panic(ErrThunkConsumed)
	}
	fn := t.fn
	t.fn, t.done = nil, true
	if fn != nil {
		fn()
	}
}

// Consumed reports whether Invoke has been called.
func (t *Thunk) Consumed() bool {
	return t == nil || t.done
}

// Frame is the initial resume frame of a context.
//
// The word layout of a hand-built x86-64 frame, from high to low address,
// maps onto it as follows:
//
//	[0] completion handler     -> Frame.run, which reports Finish
//	[1] entry function         -> Thunk
//	[2] entry argument         -> captured by the Thunk closure
//	[3..9] callee-saved slots  -> owned by the Go runtime
//
// A loaded frame is consumed by exactly one run.
type Frame struct {
	thunk   *Thunk
	running bool
}

// Loaded reports whether the frame holds an entry that has not run yet.
func (f *Frame) Loaded() bool {
	return f.thunk != nil && !f.thunk.Consumed()
}

func (f *Frame) load(t *Thunk) {
	if f.running || f.Loaded() {
		panic(ErrContextLoaded)
	}
	f.thunk = t
}

// run invokes the entry and acts as its completion handler. Panics are
// left to the backend, which unwinds the context.
func (f *Frame) run() Suspension {
	t := f.thunk
	f.thunk, f.running = nil, true
	defer func() { f.running = false }()
	t.Invoke()
	return Suspension{Reason: Finish}
}

// switchState is the bookkeeping both backends share around their
// coroutine primitive.
type switchState struct {
	frame    Frame
	released bool
	unwound  bool
}

func (x *switchState) load(t *Thunk) {
	x.check()
	x.frame.load(t)
}

func (x *switchState) check() {
	if x.released {
		panic(ErrReleased)
	}
	if x.unwound {
		panic(ErrUnwound)
	}
}

// resume runs next, which switches into the coroutine and reports whether it
// is still alive. A panic out of next, or a coroutine that ended without
// yielding, unwinds the context.
func (x *switchState) resume(next func() (Suspension, bool)) (s Suspension) {
	x.check()
	defer func() {
		if r := recover(); r != nil {
			x.unwound = true
			s = Suspension{Reason: Finish, Panic: &PanicError{Value: r}}
		}
	}()
	s, ok := next()
	if !ok {
		x.unwound = true
		s = Suspension{Reason: Finish, Panic: &PanicError{Value: ErrGoexit}}
	}
	return s
}

// release runs stop once. Values stop panics with are returned, except for
// those matching ignore.
func (x *switchState) release(stop func(), ignore func(err error) bool) (err error) {
	if x.released {
		return nil
	}
	x.released = true
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok && ignore != nil && ignore(e) {
				return
			}
			err = &PanicError{Value: r}
		}
	}()
	stop()
	return nil
}
