// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package coroutine

import (
	"fmt"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"

	"github.com/joeycumines/go-coroutine/internal/ctxswitch"
)

// Backend selects how task stacks and control transfer are implemented.
type Backend int

const (
	// BackendCoro runs tasks as runtime coroutines (the default).
	BackendCoro Backend = iota
	// BackendThread runs each task on its own goroutine, handing control
	// over channels.
	BackendThread
)

// String implements fmt.Stringer.
func (b Backend) String() string {
	switch b {
	case BackendCoro:
		return "coro"
	case BackendThread:
		return "thread"
	default:
		return fmt.Sprintf("Backend(%d)", int(b))
	}
}

// ParseBackend returns the Backend with the given name.
func ParseBackend(name string) (Backend, error) {
	switch name {
	case "coro", "":
		return BackendCoro, nil
	case "thread":
		return BackendThread, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidBackend, name)
	}
}

func (b Backend) contextBackend() (ctxswitch.Backend, error) {
	switch b {
	case BackendCoro:
		return ctxswitch.Coro, nil
	case BackendThread:
		return ctxswitch.Thread, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackend, b)
	}
}

// schedulerOptions holds configuration options for Scheduler creation.
type schedulerOptions struct {
	logger  *logiface.Logger[logiface.Event]
	poller  Poller
	limiter *catrate.Limiter
	backend Backend
}

// Option configures a Scheduler instance.
type Option interface {
	applyScheduler(*schedulerOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applySchedulerFunc func(*schedulerOptions) error
}

func (o *optionImpl) applyScheduler(opts *schedulerOptions) error {
	return o.applySchedulerFunc(opts)
}

// WithLogger sets the structured logger. A nil logger (the default)
// disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithBackend selects the context-switch backend. Defaults to BackendCoro.
func WithBackend(backend Backend) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		if _, err := backend.contextBackend(); err != nil {
			return err
		}
		opts.backend = backend
		return nil
	}}
}

// WithPoller replaces the readiness checker. Defaults to NewPoller().
func WithPoller(poller Poller) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.poller = poller
		return nil
	}}
}

// WithPollRate limits how often sleeping tasks are checked for readiness
// while other tasks are runnable, using sliding windows of maximum check
// counts (see catrate.NewLimiter for the accepted shapes).
//
// By default every dispatch checks. Checks made because nothing else is
// runnable always happen.
func WithPollRate(rates map[time.Duration]int) Option {
	return &optionImpl{func(opts *schedulerOptions) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrInvalidPollRate, r)
			}
		}()
		if len(rates) == 0 {
			opts.limiter = nil
			return nil
		}
		opts.limiter = catrate.NewLimiter(rates)
		return nil
	}}
}

// resolveOptions applies Option instances to schedulerOptions.
func resolveOptions(opts []Option) (*schedulerOptions, error) {
	cfg := &schedulerOptions{
		backend: BackendCoro,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyScheduler(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.poller == nil {
		cfg.poller = NewPoller()
	}
	return cfg, nil
}
