package ctxswitch

import (
	"errors"

	"github.com/webriots/coro"
)

// Coro allocates contexts backed by runtime coroutines. Control moves with a
// direct switch on the same thread, bypassing the goroutine scheduler.
var Coro Backend = coroBackend{}

type coroBackend struct{}

func (coroBackend) Name() string { return "coro" }

func (coroBackend) New() Context {
	c := new(coroContext)
	c.next, c.cancel = coro.New(c.loop)
	return c
}

type coroContext struct {
	next   func(struct{}) (Suspension, bool)
	cancel func()
	yield  func(Suspension) struct{}
	switchState
}

// loop runs every frame loaded into the context, yielding each completion.
func (c *coroContext) loop(yield func(Suspension) struct{}, _ func() struct{}) Suspension {
	c.yield = yield
	for {
		yield(c.frame.run())
	}
}

func (c *coroContext) Suspend(s Suspension) {
	c.yield(s)
}

func (c *coroContext) Resume() Suspension {
	return c.resume(func() (Suspension, bool) {
		return c.next(struct{}{})
	})
}

func (c *coroContext) Load(t *Thunk) {
	c.load(t)
}

func (c *coroContext) Release() error {
	return c.release(c.cancel, isCanceled)
}

// isCanceled matches the unwinding of a suspended entry by cancel, which
// reaches the top of the coroutine and is re-raised to the caller.
func isCanceled(err error) bool {
	return errors.Is(err, coro.ErrCanceled)
}
