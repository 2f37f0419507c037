package ctxswitch

import (
	"github.com/0x5a17ed/coro"
)

// Thread allocates contexts backed by dedicated goroutines. Exactly one side
// of each hand-off runs at a time: the dispatcher blocks on the next
// suspension while the task runs, and the task blocks in yield while
// anything else runs.
var Thread Backend = threadBackend{}

type threadBackend struct{}

func (threadBackend) Name() string { return "thread" }

func (threadBackend) New() Context {
	c := new(threadContext)
	c.co = coro.NewSub(c.loop)
	return c
}

type threadContext struct {
	co    *coro.C[struct{}, Suspension]
	yield func(Suspension) struct{}
	switchState
}

func (c *threadContext) loop(_ struct{}, yield func(Suspension) struct{}) {
	c.yield = yield
	for {
		yield(c.frame.run())
	}
}

func (c *threadContext) Suspend(s Suspension) {
	c.yield(s)
}

func (c *threadContext) Resume() Suspension {
	return c.resume(func() (Suspension, bool) {
		return c.co.Resume(struct{}{})
	})
}

func (c *threadContext) Load(t *Thunk) {
	c.load(t)
}

func (c *threadContext) Release() error {
	return c.release(c.co.Stop, nil)
}
