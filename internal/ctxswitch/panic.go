package ctxswitch

import (
	"fmt"
)

// PanicError carries a value an entry panicked with, as propagated by the
// backend. The coro backend propagates its own error type, which carries the
// task's stack.
type PanicError struct {
	Value any
}

// Error implements the error interface.
func (p *PanicError) Error() string {
	return fmt.Sprint(p.Value)
}

// Unwrap returns the panic value if it is an error.
func (p *PanicError) Unwrap() error {
	err, _ := p.Value.(error)
	return err
}

// Detail renders the panic including any stacks the backend captured, or
// just the message when it captured none.
func (p *PanicError) Detail() string {
	if v, ok := p.Value.(interface{ DebugString() string }); ok {
		return v.DebugString()
	}
	return p.Error()
}
