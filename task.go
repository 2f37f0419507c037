package coroutine

import (
	"fmt"
	"reflect"
	"runtime"

	"github.com/joeycumines/go-coroutine/internal/stack"
)

// TaskState is the scheduler list a task currently belongs to.
type TaskState uint8

const (
	// StateUnknown is reported for ids never assigned.
	StateUnknown TaskState = iota
	// StateActive tasks are runnable (this includes the running task).
	StateActive
	// StateAsleep tasks are waiting for readiness or Wake.
	StateAsleep
	// StateDead tasks have finished; their ids and stacks await reuse.
	StateDead
)

// String implements fmt.Stringer.
func (s TaskState) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateActive:
		return "active"
	case StateAsleep:
		return "asleep"
	case StateDead:
		return "dead"
	default:
		return fmt.Sprintf("TaskState(%d)", uint8(s))
	}
}

// TaskInfo is a read-only diagnostic view of a task.
type TaskInfo struct {
	// Entry is the symbol name of the entry function, empty for task 0.
	Entry string
	// EntryPC is the entry function's program counter, zero for task 0.
	EntryPC uintptr
	// ID is the task id.
	ID int
	// Region is the id of the stack region, -1 for task 0 (which runs on
	// the caller's own stack).
	Region int
	// RegionUses counts the tasks that have run on Region, this one
	// included.
	RegionUses int
	// StackSize is the nominal stack size.
	StackSize int
	// FD is the descriptor awaited while asleep, otherwise -1. Parked tasks
	// also report -1.
	FD int
	// Events is the awaited readiness while asleep.
	Events IOEvents
	// State is the list the task belongs to.
	State TaskState
}

// task is one entry of the task table.
type task struct {
	region  *stack.Region
	name    string
	entryPC uintptr
	state   TaskState
}

// setEntry records the identity of fn for Inspect. The function itself is
// owned by the thunk loaded onto the region.
func (t *task) setEntry(fn func()) {
	t.entryPC = reflect.ValueOf(fn).Pointer()
	t.name = ""
	if f := runtime.FuncForPC(t.entryPC); f != nil {
		t.name = f.Name()
	}
}

func (t *task) info(id int) TaskInfo {
	info := TaskInfo{
		ID:      id,
		State:   t.state,
		Entry:   t.name,
		EntryPC: t.entryPC,
		Region:  -1,
		FD:      -1,
	}
	if t.region != nil {
		info.Region = t.region.ID()
		info.RegionUses = t.region.Uses()
		info.StackSize = stack.DefaultSize
	}
	return info
}
