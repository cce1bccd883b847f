package memory

import (
	"sort"
	"sync"

	"github.com/alfinacore/engine/engine/errkind"
)

// BucketSpec describes one bucket of a Pool: a fixed block size and the
// total byte budget to carve out for blocks of that size.
type BucketSpec struct {
	BlockSize int
	Bytes     int
}

// DefaultBucketMix is the default bucket composition: 10% in 1 KiB blocks,
// 20% in 128 B blocks, 30% in 16 B blocks, the remainder in 8 B blocks.
func DefaultBucketMix(poolBytes int) []BucketSpec {
	return []BucketSpec{
		{BlockSize: 1024, Bytes: poolBytes * 10 / 100},
		{BlockSize: 128, Bytes: poolBytes * 20 / 100},
		{BlockSize: 16, Bytes: poolBytes * 30 / 100},
		{BlockSize: 8, Bytes: poolBytes - (poolBytes*10/100 + poolBytes*20/100 + poolBytes*30/100)},
	}
}

// bucket is a fixed-block-size sub-region plus a word-packed bit-ledger (one
// bit per block; set = in use). The ledger and the derived free-search
// state are protected by mu at per-bucket granularity — a pool-wide lock
// would serialize concurrent loads across unrelated block sizes.
type bucket struct {
	mu         sync.Mutex
	blockSize  int
	blockCount int
	memory     []byte
	ledger     []uint64 // word-packed bitset, one bit per block
}

func newBucket(blockSize, totalBytes int) *bucket {
	blockCount := totalBytes / blockSize
	words := (blockCount + 63) / 64
	return &bucket{
		blockSize:  blockSize,
		blockCount: blockCount,
		memory:     make([]byte, blockCount*blockSize),
		ledger:     make([]uint64, words),
	}
}

func (b *bucket) blocksNeeded(size int) int {
	return (size + b.blockSize - 1) / b.blockSize
}

func (b *bucket) bitSet(i int) bool {
	return b.ledger[i/64]&(1<<uint(i%64)) != 0
}

func (b *bucket) setBits(start, count int, value bool) {
	for i := start; i < start+count; i++ {
		word, bit := i/64, uint(i%64)
		if value {
			b.ledger[word] |= 1 << bit
		} else {
			b.ledger[word] &^= 1 << bit
		}
	}
}

// findFree scans the ledger for `count` consecutive clear bits, skipping
// fully-used words (all 64 bits set) as a scan optimisation, and returns the
// starting block index or -1.
func (b *bucket) findFree(count int) int {
	run := 0
	runStart := -1
	for word := 0; word < len(b.ledger); word++ {
		if b.ledger[word] == ^uint64(0) {
			run = 0
			runStart = -1
			continue
		}
		base := word * 64
		for bit := 0; bit < 64; bit++ {
			idx := base + bit
			if idx >= b.blockCount {
				break
			}
			if b.ledger[word]&(1<<uint(bit)) == 0 {
				if run == 0 {
					runStart = idx
				}
				run++
				if run == count {
					return runStart
				}
			} else {
				run = 0
				runStart = -1
			}
		}
	}
	return -1
}

// allocate tries to serve size bytes from this bucket. ok is false if the
// bucket cannot accommodate the request.
func (b *bucket) allocate(size int) (ptr []byte, ok bool) {
	blocks := b.blocksNeeded(size)
	b.mu.Lock()
	defer b.mu.Unlock()
	start := b.findFree(blocks)
	if start < 0 {
		return nil, false
	}
	b.setBits(start, blocks, true)
	off := start * b.blockSize
	return b.memory[off : off+size : off+size], true
}

// owns reports whether ptr's backing array lies within this bucket's memory.
func (b *bucket) owns(ptr []byte) bool {
	if len(ptr) == 0 || len(b.memory) == 0 {
		return false
	}
	base := &b.memory[0]
	p := &ptr[0]
	offset := uintptrDiff(p, base)
	return offset >= 0 && offset < len(b.memory)
}

func (b *bucket) deallocate(ptr []byte, size int) {
	off := uintptrDiff(&ptr[0], &b.memory[0])
	blockStart := off / b.blockSize
	blocks := b.blocksNeeded(size)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setBits(blockStart, blocks, false)
}

func (b *bucket) outstandingBlocks() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for i := 0; i < b.blockCount; i++ {
		if b.bitSet(i) {
			n++
		}
	}
	return n
}

// Pool is a small ordered set of buckets of decreasing block size. Allocate
// picks the bucket that wastes the fewest bytes, breaking ties by fewest
// blocks used.
type Pool struct {
	buckets []*bucket

	untrackedMu sync.Mutex
	untracked   map[*byte]int // ptr -> size, for the *_untracked family
}

// NewPool builds a Pool from the given bucket specs, in the order given.
func NewPool(specs []BucketSpec) *Pool {
	p := &Pool{untracked: make(map[*byte]int)}
	for _, s := range specs {
		p.buckets = append(p.buckets, newBucket(s.BlockSize, s.Bytes))
	}
	return p
}

type candidate struct {
	bucket      *bucket
	blocksUsed  int
	wastedBytes int
}

func (p *Pool) rank(size int) []candidate {
	cands := make([]candidate, 0, len(p.buckets))
	for _, b := range p.buckets {
		blocks := b.blocksNeeded(size)
		wasted := blocks*b.blockSize - size
		cands = append(cands, candidate{bucket: b, blocksUsed: blocks, wastedBytes: wasted})
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].wastedBytes != cands[j].wastedBytes {
			return cands[i].wastedBytes < cands[j].wastedBytes
		}
		return cands[i].blocksUsed < cands[j].blocksUsed
	})
	return cands
}

// Allocate serves size bytes from the best-fit bucket, trying buckets in
// (wastedBytes, blocksUsed) ascending order.
func (p *Pool) Allocate(size int) ([]byte, error) {
	if size <= 0 {
		return nil, nil
	}
	for _, c := range p.rank(size) {
		if ptr, ok := c.bucket.allocate(size); ok {
			return ptr, nil
		}
	}
	return nil, errkind.New(errkind.OutOfMemory, "pool: no bucket can serve %d bytes", size)
}

// Deallocate locates the bucket owning ptr by pointer-range test and clears
// its ledger bits. It is undefined behaviour to pass a (ptr, size) pair that
// was not a prior return of Allocate.
func (p *Pool) Deallocate(ptr []byte, size int) {
	if len(ptr) == 0 {
		return
	}
	for _, b := range p.buckets {
		if b.owns(ptr) {
			b.deallocate(ptr, size)
			return
		}
	}
	errkind.Assert(false, "pool: deallocate called with pointer not owned by any bucket")
}

// AllocateUntracked wraps Allocate with a (ptr -> size) registry so callers
// that track only a pointer (not a size) can later Deallocate it via
// DeallocateUntracked.
func (p *Pool) AllocateUntracked(size int) ([]byte, error) {
	ptr, err := p.Allocate(size)
	if err != nil {
		return nil, err
	}
	if len(ptr) == 0 {
		return ptr, nil
	}
	p.untrackedMu.Lock()
	p.untracked[&ptr[0]] = size
	p.untrackedMu.Unlock()
	return ptr, nil
}

// DeallocateUntracked looks up the size recorded by AllocateUntracked (or a
// prior ReallocateUntracked) and deallocates ptr.
func (p *Pool) DeallocateUntracked(ptr []byte) {
	if len(ptr) == 0 {
		return
	}
	p.untrackedMu.Lock()
	size, ok := p.untracked[&ptr[0]]
	if ok {
		delete(p.untracked, &ptr[0])
	}
	p.untrackedMu.Unlock()
	errkind.Assert(ok, "pool: deallocate_untracked called on unknown pointer")
	p.Deallocate(ptr, size)
}

// ReallocateUntracked allocates newSize bytes, copies min(oldSize, newSize)
// bytes from ptr, deallocates the old allocation and records the new size
// in the untracked registry.
func (p *Pool) ReallocateUntracked(ptr []byte, newSize int) ([]byte, error) {
	p.untrackedMu.Lock()
	oldSize, ok := p.untracked[&ptr[0]]
	p.untrackedMu.Unlock()
	errkind.Assert(ok, "pool: reallocate_untracked called on unknown pointer")

	newPtr, err := p.Allocate(newSize)
	if err != nil {
		return nil, err
	}
	n := oldSize
	if newSize < n {
		n = newSize
	}
	copy(newPtr[:n], ptr[:n])

	p.untrackedMu.Lock()
	delete(p.untracked, &ptr[0])
	p.untracked[&newPtr[0]] = newSize
	p.untrackedMu.Unlock()

	p.Deallocate(ptr, oldSize)
	return newPtr, nil
}

// OutstandingBlocks returns the total number of set ledger bits across all
// buckets — used by tests to check the bucket-ledger-correctness invariant.
func (p *Pool) OutstandingBlocks() int {
	n := 0
	for _, b := range p.buckets {
		n += b.outstandingBlocks()
	}
	return n
}
