//go:build !linux && !darwin

package coroutine

import (
	"time"
)

func newPlatformPoller() Poller {
	return PollerFunc(func([]PollFD, time.Duration) (int, error) {
		return 0, ErrPollerUnsupported
	})
}
