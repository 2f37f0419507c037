//go:build linux || darwin

package coroutine

import (
	"time"

	"golang.org/x/sys/unix"
)

// unixPoller implements Poller using poll(2).
type unixPoller struct {
	buf []unix.PollFd
}

func newPlatformPoller() Poller {
	return new(unixPoller)
}

func (p *unixPoller) Poll(fds []PollFD, timeout time.Duration) (int, error) {
	if cap(p.buf) < len(fds) {
		p.buf = make([]unix.PollFd, len(fds), len(fds)*2)
	}
	p.buf = p.buf[:len(fds)]
	for i, fd := range fds {
		p.buf[i] = unix.PollFd{
			Fd:     int32(fd.FD),
			Events: eventsToPoll(fd.Events),
		}
	}

	ms := timeoutToMs(timeout)
	for {
		n, err := unix.Poll(p.buf, ms)
		if err == unix.EINTR {
			if ms < 0 {
				continue
			}
			n, err = 0, nil
		}
		if err != nil {
			return 0, err
		}
		for i := range fds {
			fds[i].Revents = pollToEvents(p.buf[i].Revents)
		}
		return n, nil
	}
}

// timeoutToMs rounds up, so short positive timeouts still wait.
func timeoutToMs(timeout time.Duration) int {
	switch {
	case timeout < 0:
		return -1
	case timeout == 0:
		return 0
	}
	ms := (timeout + time.Millisecond - 1) / time.Millisecond
	if ms > 1<<31-1 {
		return 1<<31 - 1
	}
	return int(ms)
}

// eventsToPoll converts IOEvents to poll event flags.
func eventsToPoll(events IOEvents) int16 {
	var pollEvents int16
	if events&EventRead != 0 {
		pollEvents |= unix.POLLIN
	}
	if events&EventWrite != 0 {
		pollEvents |= unix.POLLOUT
	}
	return pollEvents
}

// pollToEvents converts poll event flags to IOEvents.
func pollToEvents(pollEvents int16) IOEvents {
	var events IOEvents
	if pollEvents&unix.POLLIN != 0 {
		events |= EventRead
	}
	if pollEvents&unix.POLLOUT != 0 {
		events |= EventWrite
	}
	if pollEvents&unix.POLLERR != 0 {
		events |= EventError
	}
	if pollEvents&unix.POLLHUP != 0 {
		events |= EventHangup
	}
	if pollEvents&unix.POLLNVAL != 0 {
		events |= EventInvalid
	}
	return events
}
