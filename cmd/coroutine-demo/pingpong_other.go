//go:build !linux && !darwin

package main

import (
	"io"

	"github.com/joeycumines/go-coroutine"
)

func spawnPingPong(s *coroutine.Scheduler, spawn func(func()), rounds int, out io.Writer) error {
	return coroutine.ErrPollerUnsupported
}
