// Command coroutine-demo runs a handful of cooperative tasks on a single
// scheduler, printing their interleaving.
//
// By default four tasks count to 10, 15, 20 and 25, yielding after every
// step. With -pingpong, two tasks also bounce a byte across a pair of pipes,
// sleeping on readiness between turns.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"

	"github.com/joeycumines/go-coroutine"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("coroutine-demo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		backendName = fs.String("backend", "coro", "context-switch backend: coro or thread")
		verbose     = fs.Bool("v", false, "log scheduler events to stderr")
		pingPong    = fs.Int("pingpong", 0, "number of pipe ping-pong rounds to run alongside the counters")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	backend, err := coroutine.ParseBackend(*backendName)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	level := logiface.LevelInformational
	if *verbose {
		level = logiface.LevelTrace
	}
	logger := stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(stderr)),
		stumpy.L.WithLevel(level),
	).Logger()

	s, err := coroutine.New(
		coroutine.WithBackend(backend),
		coroutine.WithLogger(logger),
	)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	// Alive does not count tasks sleeping on a pipe, so track them here.
	var live int
	spawn := func(body func()) {
		live++
		s.Spawn(func() {
			defer func() { live-- }()
			body()
		})
	}

	for _, n := range []int{10, 15, 20, 25} {
		spawn(func() {
			for i := range n {
				fmt.Fprintf(stdout, "[%d] %d\n", s.ID(), i)
				s.Yield()
			}
		})
	}

	if *pingPong > 0 {
		if err := spawnPingPong(s, spawn, *pingPong, stdout); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}

	for live > 0 {
		s.Yield()
	}

	stats := s.Stats()
	logger.Info().
		Uint64("spawned", stats.Spawned).
		Uint64("yields", stats.Yields).
		Uint64("polls", stats.Polls).
		Int("regions", stats.Regions).
		Log("done")

	if err := s.Close(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
