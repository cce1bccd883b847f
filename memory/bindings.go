package memory

// Allocator is the minimal capability any concrete allocator in the engine
// must provide. It is the idiomatic-Go replacement for the source engine's
// virtual-table allocator handle (§4.B): components that need to allocate
// store an Allocator (usually wrapped in Bindings), not a concrete
// allocator type, which fully decouples them from the Memory Manager.
type Allocator interface {
	Allocate(size int) ([]byte, error)
	Deallocate(ptr []byte, size int)
}

// Bindings is a capability handle passed into containers and subsystems.
// It exists as a distinct type (rather than handing out the Allocator
// interface directly) so call sites read the same way the source engine's
// AllocatorBindings trio does, and so a future binding can add accounting
// without changing every call site's type.
type Bindings struct {
	allocator Allocator
}

// GetBindings produces a Bindings handle for any concrete Allocator.
func GetBindings(a Allocator) Bindings {
	return Bindings{allocator: a}
}

func (b Bindings) Allocate(size int) ([]byte, error) {
	return b.allocator.Allocate(size)
}

func (b Bindings) Deallocate(ptr []byte, size int) {
	b.allocator.Deallocate(ptr, size)
}

// poolAllocator adapts *Pool to the Allocator interface using its
// size-tracking (non-untracked) allocate/deallocate pair.
type poolAllocator struct {
	pool *Pool
}

func (p poolAllocator) Allocate(size int) ([]byte, error) {
	return p.pool.Allocate(size)
}

func (p poolAllocator) Deallocate(ptr []byte, size int) {
	p.pool.Deallocate(ptr, size)
}

// PoolAllocator wraps a Pool as an Allocator.
func PoolAllocator(p *Pool) Allocator {
	return poolAllocator{pool: p}
}

// SystemAllocator is the "single system-allocator escape hatch" the core's
// Non-goals call out: a plain make([]byte, n)-backed allocator for
// third-party APIs or callers whose needs exceed the arena's budget.
// Deallocate is a no-op — the backing slice is reclaimed by the garbage
// collector once unreachable.
type SystemAllocator struct{}

func (SystemAllocator) Allocate(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func (SystemAllocator) Deallocate([]byte, int) {}
