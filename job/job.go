package job

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/alfinacore/engine/engine/errkind"
)

// MaxNextJobs is the default fixed capacity of a job's successor list.
const MaxNextJobs = 8

// DefaultMaxJobs is the default number of preallocated job slots in the
// process-wide Pool.
const DefaultMaxJobs = 1024

// DispatchFunc is the one-shot function a job executes.
type DispatchFunc func(j *Job)

// Job is a single unit of scheduled work. Fields mirror the source
// engine's job record: a dispatch function, opaque user data, an atomic
// predecessor counter and a fixed-capacity successor list.
//
// remainingPredecessors == 0 means the job has completed; == 1 means it is
// ready for dispatch (the configured, no-predecessors-left state); > 1
// means it is still waiting on at least one predecessor.
type Job struct {
	dispatch     DispatchFunc
	UserData     any
	remaining    atomic.Int32
	successors   [MaxNextJobs]*Job
	successorLen int
	system       *System // owning job system, set by Configure/StartJob's caller

	finished atomic.Bool
}

// reset clears a job slot before it is returned to the free pool. finished
// is left set, so WaitFor and Finished still report completion after the
// slot has been returned; Configure clears it when the slot is reused.
func (j *Job) reset() {
	j.dispatch = nil
	j.UserData = nil
	j.remaining.Store(0)
	j.successorLen = 0
	for i := range j.successors {
		j.successors[i] = nil
	}
	j.system = nil
}

// Finished reports whether the job's dispatch function has completed.
func (j *Job) Finished() bool {
	return j.finished.Load()
}

// Pool is a fixed-size preallocated set of job slots plus a lock-free
// free-queue of pointers into that pool. It is an explicit, engine-owned
// value rather than a package-level singleton, so multiple engines (or
// tests) can run independently in the same process.
type Pool struct {
	slots []Job
	free  *Queue[*Job]
	log   *zap.SugaredLogger
}

// NewPool preallocates maxJobs job slots and seeds the free-queue with
// pointers to all of them. log receives the fatal-level record if the pool
// is ever exhausted; a nil log defaults to a no-op logger.
func NewPool(maxJobs int, log *zap.SugaredLogger) *Pool {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	p := &Pool{
		slots: make([]Job, maxJobs),
		free:  NewQueue[*Job](maxJobs),
		log:   log,
	}
	for i := range p.slots {
		p.free.Push(&p.slots[i])
	}
	return p
}

// Get dequeues a free slot. MAX_JOBS is sized at boot so this cannot happen
// under the configured workload; if it does, it is a fatal, CapacityExceeded
// condition, logged and aborted rather than silently growing the pool.
func (p *Pool) Get() *Job {
	j, ok := p.free.Pop()
	if !ok {
		errkind.New(errkind.CapacityExceeded, "job: pool exhausted, MAX_JOBS too small for configured workload").LogFatal(p.log)
		panic("job: pool exhausted, MAX_JOBS too small for configured workload")
	}
	return j
}

// release returns a finished job's slot to the free pool.
func (p *Pool) release(j *Job) {
	j.reset()
	p.free.Push(j)
}

// Configure atomically stores remainingPredecessors = 1 and wires the
// dispatch function and user data, putting the job in the "ready for
// dispatch" state.
func Configure(j *Job, fn DispatchFunc, userData any) {
	j.dispatch = fn
	j.UserData = userData
	j.remaining.Store(1)
	j.finished.Store(false)
	j.successorLen = 0
}

// SetBefore appends b to a's successor list. It is a programmer error (a
// debug-assert in the source) to add the same successor twice, or to exceed
// MaxNextJobs successors.
func SetBefore(a, b *Job) {
	for i := 0; i < a.successorLen; i++ {
		if a.successors[i] == b {
			panic("job: successor already present")
		}
	}
	if a.successorLen >= MaxNextJobs {
		panic("job: successor list full")
	}
	a.successors[a.successorLen] = b
	a.successorLen++
}

// SetAfter establishes that a runs after b: it is SetBefore(b, a) followed
// by an atomic increment of a's predecessor counter. Edges must be
// established before either job is submitted.
func SetAfter(a, b *Job) {
	SetBefore(b, a)
	a.remaining.Add(1)
}
