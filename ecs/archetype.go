package ecs

import (
	"github.com/alfinacore/engine/engine/errkind"
	"github.com/alfinacore/engine/memory"
)

// ArchetypeHandle indexes into World.archetypes. EmptyArchetype (0) is the
// archetype for entities that have no components; it never allocates
// chunks and its reserve/free-position calls are no-ops, matching the
// source engine's special-cased handling of archetype 0.
type ArchetypeHandle int

const EmptyArchetype ArchetypeHandle = 0

// EntityHandle is the dense identifier of an entity: an index into
// World.entities.
type EntityHandle uint64

// Archetype groups every entity sharing an identical component mask.
// Component data is stored struct-of-arrays style, chunked: each chunk is a
// single fixed-size allocation from the memory manager's pool allocator,
// holding singleChunkCapacity entries' worth of every present component,
// packed by ascending component id.
type Archetype struct {
	mask   Mask
	handle ArchetypeHandle

	componentIDs []ComponentID
	offsets      map[ComponentID]int // byte offset of a component's array within one chunk
	sizes        map[ComponentID]uintptr

	chunkBytes          int
	singleChunkCapacity int
	chunks              [][]byte

	size     int
	capacity int

	// entities is a flat, append-growable parallel array of entity
	// handles; unlike component storage it is not chunk-allocated, since
	// only entities[index] matching the occupant at that index matters,
	// not the storage granularity.
	entities []EntityHandle

	pool *memory.Pool
}

func newArchetype(handle ArchetypeHandle, mask Mask, reg *registry, chunkBytes int, pool *memory.Pool) *Archetype {
	a := &Archetype{
		mask:       mask,
		handle:     handle,
		chunkBytes: chunkBytes,
		pool:       pool,
		offsets:    make(map[ComponentID]int),
		sizes:      make(map[ComponentID]uintptr),
	}
	if handle == EmptyArchetype {
		return a
	}

	a.componentIDs = mask.IDs()
	var entrySize uintptr
	for _, id := range a.componentIDs {
		entrySize += reg.sizeOf(id)
	}
	errkind.Assert(entrySize > 0, "ecs: archetype with non-empty mask has zero entry size")
	a.singleChunkCapacity = chunkBytes / int(entrySize)
	errkind.Assert(a.singleChunkCapacity > 0, "ecs: ECS_CHUNK_BYTES (%d) too small for archetype entry size %d", chunkBytes, entrySize)

	offset := 0
	for _, id := range a.componentIDs {
		size := reg.sizeOf(id)
		a.offsets[id] = offset
		a.sizes[id] = size
		offset += int(size) * a.singleChunkCapacity
	}
	return a
}

// allocateChunk draws one more chunk from the pool allocator and extends
// capacity by singleChunkCapacity.
func (a *Archetype) allocateChunk() error {
	chunk, err := a.pool.Allocate(a.chunkBytes)
	if err != nil {
		return err
	}
	a.chunks = append(a.chunks, chunk)
	a.capacity += a.singleChunkCapacity
	return nil
}

// reservePosition returns the next free slot index, growing the archetype
// by one chunk if it is full. The empty archetype always returns 0 without
// allocating.
func (a *Archetype) reservePosition() (int, error) {
	if a.handle == EmptyArchetype {
		return 0, nil
	}
	position := a.size
	a.size++
	if a.size > a.capacity {
		if err := a.allocateChunk(); err != nil {
			a.size--
			return 0, err
		}
	}
	if position >= len(a.entities) {
		a.entities = append(a.entities, make([]EntityHandle, position+1-len(a.entities))...)
	}
	return position, nil
}

// freePosition releases slot index, preserving the packed-array invariant
// via swap-with-last: the last occupant's component bytes and entity handle
// are copied into the freed slot, and the last slot is zeroed.
func (a *Archetype) freePosition(index int) {
	if a.handle == EmptyArchetype {
		return
	}
	errkind.Assert(a.size != 0, "ecs: freePosition on empty archetype")
	last := a.size - 1
	if index == last {
		for _, id := range a.componentIDs {
			a.zeroComponent(id, index)
		}
		a.size--
		return
	}
	for _, id := range a.componentIDs {
		a.copyComponent(id, last, index)
		a.zeroComponent(id, last)
	}
	a.entities[index] = a.entities[last]
	a.entities[last] = 0
	a.size--
}

// componentBytes returns the byte slice holding component id's instance at
// index.
func (a *Archetype) componentBytes(id ComponentID, index int) []byte {
	size := int(a.sizes[id])
	chunkIdx := index / a.singleChunkCapacity
	inChunk := index % a.singleChunkCapacity
	off := a.offsets[id] + inChunk*size
	return a.chunks[chunkIdx][off : off+size]
}

func (a *Archetype) copyComponent(id ComponentID, from, to int) {
	copy(a.componentBytes(id, to), a.componentBytes(id, from))
}

func (a *Archetype) zeroComponent(id ComponentID, index int) {
	b := a.componentBytes(id, index)
	for i := range b {
		b[i] = 0
	}
}

// Size returns the current number of entities stored in the archetype.
func (a *Archetype) Size() int { return a.size }

// Mask returns the archetype's component mask.
func (a *Archetype) Mask() Mask { return a.mask }

// Handle returns the archetype's own handle.
func (a *Archetype) Handle() ArchetypeHandle { return a.handle }
