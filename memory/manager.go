package memory

// Config configures the Memory Manager's one-shot construction.
type Config struct {
	// ArenaSize is the total arena size in bytes.
	ArenaSize int
	// PoolBytes is the portion of the arena given to the pool allocator.
	// If zero, it defaults to 25% of ArenaSize.
	PoolBytes int
	// BucketMix describes the pool's bucket composition. If nil, it
	// defaults to DefaultBucketMix(PoolBytes).
	BucketMix []BucketSpec
	// Alignment is the minimum alignment of stack allocations. If zero,
	// DefaultAlignment is used.
	Alignment uintptr
}

// DefaultConfig returns the source engine's default sizing: a 1 GiB arena
// with a pool mix of (1 KiB,10%) (128 B,20%) (16 B,30%) (8 B,rest).
func DefaultConfig() Config {
	poolBytes := DefaultArenaSize / 4
	return Config{
		ArenaSize: DefaultArenaSize,
		PoolBytes: poolBytes,
		BucketMix: DefaultBucketMix(poolBytes),
		Alignment: DefaultAlignment,
	}
}

// Manager owns the single arena for the process lifetime: a Stack allocator
// over the whole region, with a Pool carved out of the start of that stack
// (its first allocation) for variable-size, recyclable allocations.
//
// Construction happens once, during engine initialisation, and mirrors the
// source engine's construct(mm)/destruct(mm) pair — except destruct is a
// no-op here since Go reclaims the backing array once the Manager becomes
// unreachable; it is kept as an explicit method so callers follow the same
// fixed teardown order as the rest of the engine.
type Manager struct {
	cfg   Config
	stack *Stack
	pool  *Pool
}

// Construct allocates the arena (ArenaSize + Alignment bytes, matching the
// source engine's over-allocation to guarantee room for alignment), carves
// off PoolBytes worth of stack space for the pool allocator, and configures
// the pool's buckets.
func Construct(cfg Config) *Manager {
	if cfg.Alignment == 0 {
		cfg.Alignment = DefaultAlignment
	}
	if cfg.PoolBytes == 0 {
		cfg.PoolBytes = cfg.ArenaSize / 4
	}
	if cfg.BucketMix == nil {
		cfg.BucketMix = DefaultBucketMix(cfg.PoolBytes)
	}

	stack := NewStack(cfg.ArenaSize+int(cfg.Alignment), cfg.Alignment)

	// Carve the pool's backing bytes from the stack itself, exactly as the
	// source engine carves POOL_BYTES out of the arena at construction
	// time; the pool then manages that region with its own bucket
	// ledgers, never touching the stack head again.
	poolRegion, err := stack.Allocate(cfg.PoolBytes)
	errkindAssert(err == nil, "memory: failed to carve pool region: %v", err)

	pool := poolFromRegion(poolRegion, cfg.BucketMix)

	return &Manager{cfg: cfg, stack: stack, pool: pool}
}

// Destruct releases the manager's resources. There is nothing to explicitly
// free in a GC'd runtime; this exists so initialisation/teardown order
// stays symmetric with the source engine's construct/destruct pair.
func (m *Manager) Destruct() {
	m.stack = nil
	m.pool = nil
}

// Stack returns the bump allocator over the whole arena.
func (m *Manager) Stack() *Stack { return m.stack }

// Pool returns the bucketed pool allocator.
func (m *Manager) Pool() *Pool { return m.pool }

// Bindings returns an allocator binding over the pool allocator — the
// handle most components (ECS, file system) should actually consume.
func (m *Manager) Bindings() Bindings {
	return GetBindings(PoolAllocator(m.pool))
}

// poolFromRegion builds buckets directly inside a pre-carved byte region
// rather than allocating fresh backing slices per bucket, so the pool's
// bytes really do come from the arena instead of a second heap allocation.
func poolFromRegion(region []byte, specs []BucketSpec) *Pool {
	p := &Pool{untracked: make(map[*byte]int)}
	offset := 0
	for _, s := range specs {
		blockCount := s.Bytes / s.BlockSize
		words := (blockCount + 63) / 64
		end := offset + blockCount*s.BlockSize
		if end > len(region) {
			end = len(region)
		}
		b := &bucket{
			blockSize:  s.BlockSize,
			blockCount: blockCount,
			memory:     region[offset:end:end],
			ledger:     make([]uint64, words),
		}
		p.buckets = append(p.buckets, b)
		offset = end
	}
	return p
}
