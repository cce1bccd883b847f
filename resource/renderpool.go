package resource

import "github.com/alfinacore/engine/job"

// RenderHandlePool hands out indices for one GPU resource class (index
// buffer, vertex buffer, vertex array, shader, framebuffer, texture-2D).
// Reservation is thread-safe by construction: it reuses the job package's
// lock-free MPMC ring buffer as a free-list, the same queue type the job
// system uses for its ready-queue and job pool, rather than a second
// lock-free implementation for the same concern.
type RenderHandlePool struct {
	free     *job.Queue[Handle]
	capacity int
}

// NewRenderHandlePool preallocates capacity handles and seeds the free-list
// with all of them.
func NewRenderHandlePool(capacity int) *RenderHandlePool {
	p := &RenderHandlePool{
		free:     job.NewQueue[Handle](capacity),
		capacity: capacity,
	}
	for i := 0; i < capacity; i++ {
		p.free.Push(NewHandle(uint64(i)))
	}
	return p
}

// Reserve pops a free handle. ok is false once the pool is exhausted.
func (p *RenderHandlePool) Reserve() (Handle, bool) {
	return p.free.Pop()
}

// Release returns h to the free-list.
func (p *RenderHandlePool) Release(h Handle) {
	p.free.Push(h)
}
