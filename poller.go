package coroutine

import (
	"time"
)

// IOEvents represents the readiness conditions of a file descriptor.
type IOEvents uint32

const (
	// EventRead indicates the file descriptor is ready for reading.
	EventRead IOEvents = 1 << iota
	// EventWrite indicates the file descriptor is ready for writing.
	EventWrite
	// EventError indicates an error condition on the file descriptor.
	EventError
	// EventHangup indicates the peer closed its end of the connection.
	EventHangup
	// EventInvalid indicates the descriptor is not open.
	EventInvalid
)

// String implements fmt.Stringer.
func (e IOEvents) String() string {
	if e == 0 {
		return "none"
	}
	var b []byte
	for _, v := range [...]struct {
		ev   IOEvents
		name string
	}{
		{EventRead, "read"},
		{EventWrite, "write"},
		{EventError, "error"},
		{EventHangup, "hangup"},
		{EventInvalid, "invalid"},
	} {
		if e&v.ev != 0 {
			if len(b) != 0 {
				b = append(b, '|')
			}
			b = append(b, v.name...)
		}
	}
	if len(b) == 0 {
		return "unknown"
	}
	return string(b)
}

// PollFD is a single readiness registration.
//
// A negative FD never becomes ready; it is how a task waiting only on Wake
// is registered.
type PollFD struct {
	FD      int
	Events  IOEvents
	Revents IOEvents
}

// Poller performs readiness checks. It is the only place the scheduler
// touches the OS I/O multiplexing facility.
type Poller interface {
	// Poll waits until at least one registration is ready or the timeout
	// elapses, setting Revents on every entry. A negative timeout waits
	// indefinitely, zero returns immediately. It returns the number of
	// ready entries.
	Poll(fds []PollFD, timeout time.Duration) (int, error)
}

// PollerFunc adapts a function to Poller.
type PollerFunc func(fds []PollFD, timeout time.Duration) (int, error)

// Poll implements Poller.
func (f PollerFunc) Poll(fds []PollFD, timeout time.Duration) (int, error) {
	return f(fds, timeout)
}

// NewPoller returns the platform poller, backed by poll(2) where available.
func NewPoller() Poller {
	return newPlatformPoller()
}
