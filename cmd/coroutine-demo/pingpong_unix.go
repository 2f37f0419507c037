//go:build linux || darwin

package main

import (
	"fmt"
	"io"

	"golang.org/x/sys/unix"

	"github.com/joeycumines/go-coroutine"
)

// spawnPingPong starts two tasks passing a counter back and forth over a
// pair of pipes. The pipes are closed by the task that finishes last.
func spawnPingPong(s *coroutine.Scheduler, spawn func(func()), rounds int, out io.Writer) error {
	var ping, pong [2]int
	if err := unix.Pipe(ping[:]); err != nil {
		return fmt.Errorf("ping pipe: %w", err)
	}
	if err := unix.Pipe(pong[:]); err != nil {
		unix.Close(ping[0])
		unix.Close(ping[1])
		return fmt.Errorf("pong pipe: %w", err)
	}

	remaining := 2
	done := func() {
		remaining--
		if remaining == 0 {
			for _, fd := range [...]int{ping[0], ping[1], pong[0], pong[1]} {
				unix.Close(fd)
			}
		}
	}

	player := func(name string, rfd, wfd int, serve bool) func() {
		return func() {
			defer done()
			buf := make([]byte, 1)
			for i := range rounds {
				if !serve || i != 0 {
					s.SleepRead(rfd)
					if _, err := unix.Read(rfd, buf); err != nil {
						fmt.Fprintf(out, "[%d] %s: read: %v\n", s.ID(), name, err)
						return
					}
				}
				fmt.Fprintf(out, "[%d] %s %d\n", s.ID(), name, i)
				s.SleepWrite(wfd)
				if _, err := unix.Write(wfd, []byte{byte(i)}); err != nil {
					fmt.Fprintf(out, "[%d] %s: write: %v\n", s.ID(), name, err)
					return
				}
			}
		}
	}

	spawn(player("ping", pong[0], ping[1], true))
	spawn(player("pong", ping[0], pong[1], false))
	return nil
}
