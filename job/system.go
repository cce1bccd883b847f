package job

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultSleep is the default idle / cooperative-wait sleep interval.
const DefaultSleep = 5 * time.Millisecond

// System is one job-system instance: a ready-queue plus an optional span of
// worker goroutines draining it. The engine constructs exactly two: a
// multi-threaded "main" system with N workers, and a zero-worker "render"
// system whose queue is drained solely by the render thread calling
// DispatchOne in a loop.
type System struct {
	pool  *Pool
	ready *Queue[*Job]
	sleep time.Duration

	group  *errgroup.Group
	cancel context.CancelFunc
}

// NewSystem creates a job system backed by pool, with a ready-queue sized
// for queueCapacity entries.
func NewSystem(pool *Pool, queueCapacity int, sleep time.Duration) *System {
	if sleep <= 0 {
		sleep = DefaultSleep
	}
	return &System{
		pool:  pool,
		ready: NewQueue[*Job](queueCapacity),
		sleep: sleep,
	}
}

// Pool returns the job pool sys draws slots from, so callers (e.g. the
// resource package) can acquire jobs to submit to sys.
func (sys *System) Pool() *Pool {
	return sys.pool
}

// StartJob enqueues job on sys's ready queue only if it has no outstanding
// predecessors (remaining == 1); otherwise its predecessors are responsible
// for enqueueing it on their own completion.
func (sys *System) StartJob(j *Job) {
	if j.finished.Load() {
		panic("job: StartJob called on a finished job")
	}
	j.system = sys
	if j.remaining.Load() == 1 {
		if !sys.ready.Push(j) {
			panic("job: ready queue full")
		}
	}
}

// DispatchOne pops one ready job (if any) and runs it to completion,
// notifying successors and returning the slot to the free pool. It reports
// whether it actually ran a job.
func (sys *System) DispatchOne() bool {
	j, ok := sys.ready.Pop()
	if !ok {
		return false
	}
	sys.run(j)
	return true
}

// run executes a job's dispatch function and then walks its successor list,
// decrementing each successor's predecessor counter and enqueueing any that
// become ready — on that successor's own job system, which may differ from
// sys (e.g. a main-system job feeding a render-system job).
func (sys *System) run(j *Job) {
	if j.dispatch != nil {
		j.dispatch(j)
	}
	j.remaining.Store(0)
	j.finished.Store(true)

	successors := j.successors[:j.successorLen]
	j.successorLen = 0
	for _, s := range successors {
		if s == nil {
			continue
		}
		if s.remaining.Add(-1) == 1 {
			if !s.system.ready.Push(s) {
				panic("job: successor's ready queue full")
			}
		}
	}
	sys.pool.release(j)
}

// StartWorkers launches n worker goroutines pulling from sys's ready queue.
// Each worker sleeps sys.sleep when the queue is empty. Supervision uses
// errgroup so a panicking dispatch function (documented as non-throwing,
// but guarded against here) surfaces through Stop rather than silently
// killing one worker.
func (sys *System) StartWorkers(n int) {
	ctx, cancel := context.WithCancel(context.Background())
	sys.cancel = cancel
	g, ctx := errgroup.WithContext(ctx)
	sys.group = g
	for i := 0; i < n; i++ {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("job: dispatch function panicked: %v", r)
				}
			}()
			for {
				select {
				case <-ctx.Done():
					return nil
				default:
				}
				if !sys.DispatchOne() {
					time.Sleep(sys.sleep)
				}
			}
		})
	}
}

// Stop signals all worker goroutines to exit and waits for them.
func (sys *System) Stop() error {
	if sys.cancel == nil {
		return nil
	}
	sys.cancel()
	err := sys.group.Wait()
	sys.cancel = nil
	sys.group = nil
	return err
}

// WaitFor cooperatively waits for j to finish: while it is not finished, it
// attempts to dispatch some other ready job from sys's own ready queue
// (helping drain work rather than starving the workers); if none is
// available it sleeps sys.sleep. Only jobs already in the ready queue (i.e.
// with no unfinished predecessors) are ever stolen this way.
func (sys *System) WaitFor(j *Job) {
	for !j.finished.Load() {
		if !sys.DispatchOne() {
			time.Sleep(sys.sleep)
		}
	}
}
