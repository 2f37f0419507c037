package coroutine

// Stats are cumulative scheduler counters.
//
// Stats are plain counters owned by the scheduler. Like every other
// method, Scheduler.Stats must be called from the running task.
type Stats struct {
	// Spawned counts Spawn calls.
	Spawned uint64
	// Recycled counts spawns that reused a dead task's id and stack.
	Recycled uint64
	// Finished counts entry functions that returned.
	Finished uint64
	// Yields counts voluntary yields.
	Yields uint64
	// Sleeps counts read, write and park waits.
	Sleeps uint64
	// Wakes counts tasks reactivated by Wake.
	Wakes uint64
	// Ready counts tasks reactivated by a readiness check.
	Ready uint64
	// Polls counts readiness checks performed.
	Polls uint64
	// PollsThrottled counts readiness checks skipped by WithPollRate.
	PollsThrottled uint64
	// Dispatches counts suspensions handled.
	Dispatches uint64
	// Regions is the number of stack regions allocated.
	Regions int
}
