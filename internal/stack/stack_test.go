package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/joeycumines/go-coroutine/internal/ctxswitch"
)

type nilBackend struct{}

func (nilBackend) New() ctxswitch.Context { return nil }

func (nilBackend) Name() string { return "nil" }

func TestArena_allocateRelease(t *testing.T) {
	defer goleak.VerifyNone(t)

	for _, b := range []ctxswitch.Backend{ctxswitch.Coro, ctxswitch.Thread} {
		t.Run(b.Name(), func(t *testing.T) {
			a := NewArena(b)
			assert.Equal(t, b, a.Backend())

			r0 := a.Allocate()
			r1 := a.Allocate()
			assert.Equal(t, 0, r0.ID())
			assert.Equal(t, 1, r1.ID())
			assert.Equal(t, 2, a.Allocated())
			assert.Equal(t, 2, a.Live())

			assert.NoError(t, a.Release(r0))
			assert.NoError(t, a.Release(r0))
			assert.True(t, r0.Released())
			assert.Equal(t, 2, a.Allocated())
			assert.Equal(t, 1, a.Live())

			assert.NoError(t, a.Release(r1))
			assert.NoError(t, a.Release(nil))
			assert.Equal(t, 0, a.Live())
		})
	}
}

func TestRegion_reuse(t *testing.T) {
	defer goleak.VerifyNone(t)

	a := NewArena(nil)
	assert.Equal(t, ctxswitch.Coro, a.Backend())

	r := a.Allocate()
	defer a.Release(r)

	var out []int
	for i := 0; i < 4; i++ {
		r.Load(ctxswitch.NewThunk(func() { out = append(out, i) }))
		require.Equal(t, ctxswitch.Finish, r.Context().Resume().Reason)
		assert.Equal(t, i+1, r.Uses())
	}
	assert.Equal(t, []int{0, 1, 2, 3}, out)
	assert.Equal(t, 1, a.Allocated())
}

func TestArena_releaseSuspended(t *testing.T) {
	defer goleak.VerifyNone(t)

	for _, b := range []ctxswitch.Backend{ctxswitch.Coro, ctxswitch.Thread} {
		t.Run(b.Name(), func(t *testing.T) {
			a := NewArena(b)
			r := a.Allocate()
			r.Load(ctxswitch.NewThunk(func() {
				defer func() { panic("unwinding") }()
				r.Context().Suspend(ctxswitch.Suspension{Reason: ctxswitch.Park})
			}))
			require.Equal(t, ctxswitch.Park, r.Context().Resume().Reason)

			err := a.Release(r)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "unwinding")
			assert.True(t, r.Released())
			assert.Equal(t, 0, a.Live())
		})
	}
}

func TestArena_allocFailure(t *testing.T) {
	a := NewArena(nilBackend{})
	assert.PanicsWithValue(t, ErrAlloc, func() { a.Allocate() })
	assert.Equal(t, 0, a.Allocated())
}
