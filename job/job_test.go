package job

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// S3 (job chain): A, B, C with set_after(B, A), set_after(C, B). Submit A.
// Execution order is A, B, C; each runs exactly once; all three slots
// return to the free pool.
func TestJobChainOrder(t *testing.T) {
	pool := NewPool(8, nil)
	sys := NewSystem(pool, 8, time.Millisecond)

	var order []string

	a := pool.Get()
	b := pool.Get()
	c := pool.Get()

	Configure(a, func(j *Job) { order = append(order, "A") }, nil)
	Configure(b, func(j *Job) { order = append(order, "B") }, nil)
	Configure(c, func(j *Job) { order = append(order, "C") }, nil)

	b.system = sys
	c.system = sys
	SetAfter(b, a)
	SetAfter(c, b)

	sys.StartJob(c)
	sys.StartJob(b)
	sys.StartJob(a)

	sys.WaitFor(c)

	require.Equal(t, []string{"A", "B", "C"}, order)
	require.Equal(t, 8, countFree(pool))
}

func countFree(p *Pool) int {
	var free []*Job
	for {
		j, ok := p.free.Pop()
		if !ok {
			break
		}
		free = append(free, j)
	}
	for _, j := range free {
		p.free.Push(j)
	}
	return len(free)
}

// Job counter monotonicity: remaining_predecessors never exceeds its
// post-configuration value + number of set_after edges, and never goes
// below zero.
func TestJobCounterMonotonicity(t *testing.T) {
	pool := NewPool(4, nil)
	sys := NewSystem(pool, 4, time.Millisecond)

	a := pool.Get()
	b := pool.Get()
	Configure(a, func(j *Job) {}, nil)
	Configure(b, func(j *Job) {}, nil)
	b.system = sys
	require.Equal(t, int32(1), b.remaining.Load())

	SetAfter(b, a)
	require.Equal(t, int32(2), b.remaining.Load())

	sys.StartJob(b) // not ready yet (remaining == 2)
	sys.StartJob(a)
	sys.WaitFor(b)

	require.GreaterOrEqual(t, b.remaining.Load(), int32(0))
}

// Job finish implies successors released: a job's dispatch function runs
// iff all predecessors finished; a job returns to the free pool exactly
// once.
func TestJobFinishReleasesSuccessorsOnce(t *testing.T) {
	pool := NewPool(16, nil)
	sys := NewSystem(pool, 16, time.Millisecond)

	var ran int32
	const n = 10
	jobs := make([]*Job, n)
	for i := range jobs {
		jobs[i] = pool.Get()
		Configure(jobs[i], func(j *Job) { atomic.AddInt32(&ran, 1) }, nil)
		jobs[i].system = sys
	}
	for i := 1; i < n; i++ {
		SetAfter(jobs[i], jobs[i-1])
	}
	for i := n - 1; i >= 0; i-- {
		sys.StartJob(jobs[i])
	}
	sys.WaitFor(jobs[n-1])

	require.Equal(t, int32(n), atomic.LoadInt32(&ran))
	require.Equal(t, 16, countFree(pool))
}

func TestQueuePushPopFIFO(t *testing.T) {
	q := NewQueue[*Job](4)
	j1, j2 := &Job{}, &Job{}
	require.True(t, q.Push(j1))
	require.True(t, q.Push(j2))
	v, ok := q.Pop()
	require.True(t, ok)
	require.Same(t, j1, v)
	v, ok = q.Pop()
	require.True(t, ok)
	require.Same(t, j2, v)
	_, ok = q.Pop()
	require.False(t, ok)
}

func TestQueueFullReturnsFalse(t *testing.T) {
	q := NewQueue[*Job](2)
	require.True(t, q.Push(&Job{}))
	require.True(t, q.Push(&Job{}))
	require.False(t, q.Push(&Job{}))
}

func TestWorkersDrainParallelJobs(t *testing.T) {
	pool := NewPool(64, nil)
	sys := NewSystem(pool, 64, time.Millisecond)
	sys.StartWorkers(4)
	defer sys.Stop()

	var counter int32
	last := pool.Get()
	Configure(last, func(j *Job) {}, nil)
	last.system = sys

	preds := make([]*Job, 50)
	for i := range preds {
		j := pool.Get()
		Configure(j, func(j *Job) { atomic.AddInt32(&counter, 1) }, nil)
		j.system = sys
		SetAfter(last, j)
		preds[i] = j
	}
	sys.StartJob(last)
	for _, j := range preds {
		sys.StartJob(j)
	}

	deadline := time.Now().Add(2 * time.Second)
	for !last.Finished() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	require.True(t, last.Finished())
	require.Equal(t, int32(50), atomic.LoadInt32(&counter))
}
