package memory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Arena round-trip: for any sequence of stack operations ending in
// ResetTo(mark_at_start), the head returns to its initial position.
func TestStackArenaRoundTrip(t *testing.T) {
	s := NewStack(4096, 0)
	start := s.Mark()

	_, err := s.Allocate(100)
	require.NoError(t, err)
	_, err = s.Allocate(300)
	require.NoError(t, err)

	s.ResetTo(start)
	require.Equal(t, int(start), s.Len())
}

// S2 (stack reset): allocate 100B, mark, allocate 300B, reset; the next
// 100B allocation returns the same pointer as the 300B allocation did.
func TestStackResetReturnsSamePointer(t *testing.T) {
	s := NewStack(4096, 0)

	_, err := s.Allocate(100)
	require.NoError(t, err)

	mark := s.Mark()
	p1, err := s.Allocate(300)
	require.NoError(t, err)

	s.ResetTo(mark)

	p2, err := s.Allocate(100)
	require.NoError(t, err)

	require.Equal(t, &p1[0], &p2[0])
}

func TestStackOutOfMemory(t *testing.T) {
	s := NewStack(16, 0)
	_, err := s.Allocate(17)
	require.Error(t, err)
}

func TestStackAlignment(t *testing.T) {
	s := NewStack(256, 16)
	_, err := s.Allocate(1)
	require.NoError(t, err)
	p, err := s.Allocate(1)
	require.NoError(t, err)
	// the first allocation leaves the head at offset 1; the next allocation
	// the stack hands out must still start on a 16-byte boundary.
	require.Zero(t, (addrOf(&p[0])-addrOf(&s.buf[0]))%16)
}
