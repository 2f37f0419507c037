//go:build linux || darwin

package coroutine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestTimeoutToMs(t *testing.T) {
	for _, tc := range []struct {
		timeout time.Duration
		want    int
	}{
		{-1, -1},
		{-time.Hour, -1},
		{0, 0},
		{1, 1},
		{time.Millisecond, 1},
		{time.Millisecond + 1, 2},
		{1500 * time.Millisecond, 1500},
		{time.Duration(1<<62), 1<<31 - 1},
	} {
		assert.Equal(t, tc.want, timeoutToMs(tc.timeout), tc.timeout.String())
	}
}

func TestEventConversion(t *testing.T) {
	assert.Equal(t, int16(0), eventsToPoll(0))
	assert.Equal(t, int16(unix.POLLIN), eventsToPoll(EventRead))
	assert.Equal(t, int16(unix.POLLOUT), eventsToPoll(EventWrite))
	assert.Equal(t, int16(unix.POLLIN|unix.POLLOUT), eventsToPoll(EventRead|EventWrite))
	// output-only conditions are never requested
	assert.Equal(t, int16(0), eventsToPoll(EventError|EventHangup|EventInvalid))

	assert.Equal(t, IOEvents(0), pollToEvents(0))
	assert.Equal(t, EventRead|EventHangup, pollToEvents(unix.POLLIN|unix.POLLHUP))
	assert.Equal(t, EventWrite|EventError, pollToEvents(unix.POLLOUT|unix.POLLERR))
	assert.Equal(t, EventInvalid, pollToEvents(unix.POLLNVAL))
}

func TestUnixPoller_Poll(t *testing.T) {
	var fds [2]int
	require.NoError(t, unix.Pipe(fds[:]))
	r, w := fds[0], fds[1]
	defer unix.Close(r)

	p := NewPoller()
	regs := []PollFD{
		{FD: r, Events: EventRead},
		{FD: w, Events: EventWrite},
		{FD: -1},
	}

	n, err := p.Poll(regs, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, IOEvents(0), regs[0].Revents)
	assert.Equal(t, EventWrite, regs[1].Revents)
	assert.Equal(t, IOEvents(0), regs[2].Revents)

	_, err = unix.Write(w, []byte("x"))
	require.NoError(t, err)
	n, err = p.Poll(regs, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, EventRead, regs[0].Revents)

	require.NoError(t, unix.Close(w))
	n, err = p.Poll(regs, -1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NotZero(t, regs[0].Revents&EventRead)
	assert.Equal(t, EventInvalid, regs[1].Revents)
}

func TestUnixPoller_timeout(t *testing.T) {
	var fds [2]int
	require.NoError(t, unix.Pipe(fds[:]))
	defer unix.Close(fds[0])
	defer unix.Close(fds[1])

	regs := []PollFD{{FD: fds[0], Events: EventRead}}
	start := time.Now()
	n, err := NewPoller().Poll(regs, 20*time.Millisecond)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}
