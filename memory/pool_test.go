package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// S1 (pool best-fit): buckets {16 B x 1024, 128 B x 64, 1 KiB x 16}.
// allocate(20) twice; both should be served from the 128-B bucket (waste
// 108 < waste on the 1 KiB bucket), ledger bits 0 and 1 set.
func TestPoolBestFit(t *testing.T) {
	p := NewPool([]BucketSpec{
		{BlockSize: 16, Bytes: 16 * 1024},
		{BlockSize: 128, Bytes: 128 * 64},
		{BlockSize: 1024, Bytes: 1024 * 16},
	})

	a1, err := p.Allocate(20)
	require.NoError(t, err)
	a2, err := p.Allocate(20)
	require.NoError(t, err)

	bucket128 := p.buckets[1]
	require.True(t, bucket128.owns(a1))
	require.True(t, bucket128.owns(a2))
	require.True(t, bucket128.bitSet(0))
	require.True(t, bucket128.bitSet(1))
}

// Bucket ledger correctness: across interleaved allocate/deallocate, the
// number of set bits equals the total blocks in currently outstanding
// allocations.
func TestPoolLedgerCorrectness(t *testing.T) {
	p := NewPool([]BucketSpec{{BlockSize: 16, Bytes: 16 * 256}})

	var live [][]byte
	for i := 0; i < 50; i++ {
		a, err := p.Allocate(16)
		require.NoError(t, err)
		live = append(live, a)
	}
	require.Equal(t, 50, p.OutstandingBlocks())

	for i := 0; i < 20; i++ {
		p.Deallocate(live[i], 16)
	}
	require.Equal(t, 30, p.OutstandingBlocks())
}

// Pool non-overlap: for all pairs of outstanding pool allocations, their
// byte ranges never intersect.
func TestPoolNonOverlap(t *testing.T) {
	p := NewPool(DefaultBucketMix(64 * 1024))

	type span struct{ start, end uintptr }
	var spans []span
	for i := 0; i < 200; i++ {
		a, err := p.Allocate(8 + i%40)
		require.NoError(t, err)
		if len(a) == 0 {
			continue
		}
		start := addrOf(&a[0])
		spans = append(spans, span{start, start + uintptr(len(a))})
	}
	for i := range spans {
		for j := range spans {
			if i == j {
				continue
			}
			overlap := spans[i].start < spans[j].end && spans[j].start < spans[i].end
			require.False(t, overlap, "allocations %d and %d overlap", i, j)
		}
	}
}

// Pool pointer ownership: Deallocate locates exactly one bucket whose
// memory range contains the pointer.
func TestPoolPointerOwnership(t *testing.T) {
	p := NewPool(DefaultBucketMix(64 * 1024))
	a, err := p.Allocate(20)
	require.NoError(t, err)

	owners := 0
	for _, b := range p.buckets {
		if b.owns(a) {
			owners++
		}
	}
	require.Equal(t, 1, owners)
}

func TestPoolConcurrentAllocDealloc(t *testing.T) {
	p := NewPool(DefaultBucketMix(256 * 1024))
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				a, err := p.Allocate(20)
				require.NoError(t, err)
				p.Deallocate(a, 20)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 0, p.OutstandingBlocks())
}

func TestPoolUntrackedRoundTrip(t *testing.T) {
	p := NewPool(DefaultBucketMix(64 * 1024))
	a, err := p.AllocateUntracked(20)
	require.NoError(t, err)
	copy(a, []byte("hello world!!!!!!!!!"))

	b, err := p.ReallocateUntracked(a, 40)
	require.NoError(t, err)
	require.Equal(t, []byte("hello world!!!!!!!!!"), b[:20])

	p.DeallocateUntracked(b)
	require.Equal(t, 0, p.OutstandingBlocks())
}
