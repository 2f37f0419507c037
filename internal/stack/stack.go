// Package stack implements the arena that owns task execution stacks.
//
// A Region is one execution stack. The Go runtime owns the memory (each
// region is a parked coroutine or goroutine, whose stack it grows on
// demand), so the arena only manages identity and lifetime: regions are
// created on demand, reassigned across task identities, and released only
// on explicit teardown.
package stack

import (
	"errors"

	"github.com/joeycumines/go-coroutine/internal/ctxswitch"
)

// DefaultSize is the nominal size of a region, in bytes, reported for
// diagnostics only. The runtime grows the real stack on demand.
const DefaultSize = 8 << 10

// ErrAlloc is raised when the backend fails to produce a context.
var ErrAlloc = errors.New("stack: region allocation failed")

// Region is a single task execution stack.
type Region struct {
	ctx      ctxswitch.Context
	id       int
	uses     int
	released bool
}

// ID is the arena-assigned number of the region, stable for its lifetime.
func (r *Region) ID() int { return r.id }

// Uses is the number of entries loaded into the region so far.
func (r *Region) Uses() int { return r.uses }

// Released reports whether the region has been torn down.
func (r *Region) Released() bool { return r.released }

// Context returns the region's resume point.
func (r *Region) Context() ctxswitch.Context { return r.ctx }

// Load builds the initial frame for a new task on the region.
func (r *Region) Load(t *ctxswitch.Thunk) {
	r.ctx.Load(t)
	r.uses++
}

// Arena allocates regions from a context backend.
type Arena struct {
	backend   ctxswitch.Backend
	allocated int
	released  int
}

// NewArena returns an arena drawing contexts from backend.
func NewArena(backend ctxswitch.Backend) *Arena {
	if backend == nil {
		backend = ctxswitch.Coro
	}
	return &Arena{backend: backend}
}

// Backend returns the context backend.
func (a *Arena) Backend() ctxswitch.Backend { return a.backend }

// Allocate creates a new region. There is no recovery from failure: it
// panics with ErrAlloc.
func (a *Arena) Allocate() *Region {
	ctx := a.backend.New()
	if ctx == nil {
		panic(ErrAlloc)
	}
	r := &Region{ctx: ctx, id: a.allocated}
	a.allocated++
	return r
}

// Release tears down a region, unwinding any task suspended on it. The
// region counts as released even if the task panicked while unwinding, in
// which case that panic is returned.
func (a *Arena) Release(r *Region) error {
	if r == nil || r.released {
		return nil
	}
	r.released = true
	a.released++
	return r.ctx.Release()
}

// Allocated is the number of regions ever allocated.
func (a *Arena) Allocated() int { return a.allocated }

// Live is the number of regions allocated and not yet released.
func (a *Arena) Live() int { return a.allocated - a.released }
