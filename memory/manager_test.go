package memory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestManagerConstructDestruct(t *testing.T) {
	m := Construct(Config{ArenaSize: 1 << 20})
	require.NotNil(t, m.Stack())
	require.NotNil(t, m.Pool())

	b := m.Bindings()
	data, err := b.Allocate(32)
	require.NoError(t, err)
	require.Len(t, data, 32)
	b.Deallocate(data, 32)

	m.Destruct()
}

func TestManagerDefaultConfigSizing(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, DefaultArenaSize, cfg.ArenaSize)
	require.Len(t, cfg.BucketMix, 4)
}

func TestSliceBasics(t *testing.T) {
	m := Construct(Config{ArenaSize: 1 << 16})
	s := NewSlice[int](m.Bindings(), 4)
	s.PushBack(1)
	s.PushBack(2)
	s.PushBack(3)
	require.Equal(t, 3, s.Len())
	require.Equal(t, 3, s.PopBack())
	require.Equal(t, 2, s.Len())
	*s.At(0) = 42
	require.Equal(t, []int{42, 2}, s.Raw())
}
