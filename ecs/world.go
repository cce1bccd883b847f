package ecs

import (
	"go.uber.org/zap"

	"github.com/alfinacore/engine/engine/errkind"
	"github.com/alfinacore/engine/memory"
)

// DefaultChunkBytes is the size of a single archetype chunk allocation —
// ECS_CHUNK_BYTES in the source engine.
const DefaultChunkBytes = 16 * 1024

// DefaultMaxEntities / DefaultMaxArchetypes are the ECS_MAX_ENTITIES /
// ECS_MAX_ARCHETYPES bounds used when a Config leaves them unset. The
// source engine sizes these per-project; these are reasonable defaults for
// a single process.
const (
	DefaultMaxEntities   = 1 << 16
	DefaultMaxArchetypes = 1024
)

// Config bounds and sizes a World. Zero-valued fields fall back to the
// package defaults.
type Config struct {
	ChunkBytes    int
	MaxEntities   int
	MaxArchetypes int
}

func (cfg Config) withDefaults() Config {
	if cfg.ChunkBytes <= 0 {
		cfg.ChunkBytes = DefaultChunkBytes
	}
	if cfg.MaxEntities <= 0 {
		cfg.MaxEntities = DefaultMaxEntities
	}
	if cfg.MaxArchetypes <= 0 {
		cfg.MaxArchetypes = DefaultMaxArchetypes
	}
	return cfg
}

type entityRecord struct {
	mask      Mask
	archetype ArchetypeHandle
	index     int
	alive     bool
}

// World owns every entity, archetype and the component registry for one ECS
// instance. Two Worlds in the same process are fully independent: component
// ids, archetypes and entity handles are never shared between them.
type World struct {
	registry *registry
	pool     *memory.Pool
	log      *zap.SugaredLogger

	chunkBytes    int
	maxEntities   int
	maxArchetypes int

	entities []entityRecord

	archetypes []*Archetype
	byMask     map[Mask]ArchetypeHandle
}

// NewWorld constructs a World backed by pool for archetype chunk storage,
// bounded by cfg's entity/archetype limits. Archetype 0 (the empty
// archetype) is pre-created, matching the source engine's world_construct,
// which pushes it before any entity exists. log receives the fatal-level
// record if ECS_MAX_ENTITIES or ECS_MAX_ARCHETYPES is ever exceeded; a nil
// log defaults to a no-op logger.
func NewWorld(pool *memory.Pool, cfg Config, log *zap.SugaredLogger) *World {
	cfg = cfg.withDefaults()
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	w := &World{
		registry:      newRegistry(),
		pool:          pool,
		log:           log,
		chunkBytes:    cfg.ChunkBytes,
		maxEntities:   cfg.MaxEntities,
		maxArchetypes: cfg.MaxArchetypes,
		byMask:        make(map[Mask]ArchetypeHandle),
	}
	empty := newArchetype(EmptyArchetype, Mask{}, w.registry, w.chunkBytes, pool)
	w.archetypes = append(w.archetypes, empty)
	w.byMask[Mask{}] = EmptyArchetype
	return w
}

// CreateEntity allocates a new entity with no components, placed in the
// empty archetype. Overflowing ECS_MAX_ENTITIES is fatal.
func (w *World) CreateEntity() EntityHandle {
	if len(w.entities) >= w.maxEntities {
		errkind.New(errkind.CapacityExceeded, "ecs: ECS_MAX_ENTITIES (%d) exceeded", w.maxEntities).LogFatal(w.log)
		panic("ecs: ECS_MAX_ENTITIES exceeded")
	}
	handle := EntityHandle(len(w.entities))
	w.entities = append(w.entities, entityRecord{
		mask:      Mask{},
		archetype: EmptyArchetype,
		index:     0,
		alive:     true,
	})
	return handle
}

// Alive reports whether handle still refers to a live entity.
func (w *World) Alive(handle EntityHandle) bool {
	i := int(handle)
	return i >= 0 && i < len(w.entities) && w.entities[i].alive
}

func (w *World) record(handle EntityHandle) *entityRecord {
	errkind.Assert(w.Alive(handle), "ecs: use of dead or out-of-range entity %d", handle)
	return &w.entities[handle]
}

// archetypeFor returns the archetype with the given mask, creating it (and
// its chunk layout) on first use. Overflowing ECS_MAX_ARCHETYPES is fatal.
func (w *World) archetypeFor(mask Mask) *Archetype {
	if h, ok := w.byMask[mask]; ok {
		return w.archetypes[h]
	}
	if len(w.archetypes) >= w.maxArchetypes {
		errkind.New(errkind.CapacityExceeded, "ecs: ECS_MAX_ARCHETYPES (%d) exceeded", w.maxArchetypes).LogFatal(w.log)
		panic("ecs: ECS_MAX_ARCHETYPES exceeded")
	}
	h := ArchetypeHandle(len(w.archetypes))
	a := newArchetype(h, mask, w.registry, w.chunkBytes, w.pool)
	w.archetypes = append(w.archetypes, a)
	w.byMask[mask] = h
	return a
}

// moveSuperset migrates an entity from a subset archetype to a strict
// superset one, copying every component the FROM archetype carries — the
// new (added) components are left zeroed, matching move_entity_superset.
func (w *World) moveSuperset(rec *entityRecord, handle EntityHandle, to *Archetype) {
	from := w.archetypes[rec.archetype]
	toIndex, err := to.reservePosition()
	errkind.Assert(err == nil, "ecs: archetype chunk allocation failed: %v", err)
	for _, id := range from.componentIDs {
		if !to.mask.Has(id) {
			continue
		}
		copy(to.componentBytes(id, toIndex), from.componentBytes(id, rec.index))
	}
	if toIndex >= len(to.entities) {
		to.entities = append(to.entities, make([]EntityHandle, toIndex+1-len(to.entities))...)
	}
	to.entities[toIndex] = handle
	from.freePosition(rec.index)
	if rec.index < from.size {
		// freePosition moved from's last occupant into the freed slot.
		w.entities[from.entities[rec.index]].index = rec.index
	}
	rec.archetype = to.handle
	rec.index = toIndex
	rec.mask = to.mask
}

// moveSubset migrates an entity from a superset archetype to a strict
// subset one, copying only the components the TO archetype still carries —
// the dropped components' bytes are discarded, matching move_entity_subset.
func (w *World) moveSubset(rec *entityRecord, handle EntityHandle, to *Archetype) {
	from := w.archetypes[rec.archetype]
	toIndex, err := to.reservePosition()
	errkind.Assert(err == nil, "ecs: archetype chunk allocation failed: %v", err)
	for _, id := range to.componentIDs {
		copy(to.componentBytes(id, toIndex), from.componentBytes(id, rec.index))
	}
	if toIndex >= len(to.entities) {
		to.entities = append(to.entities, make([]EntityHandle, toIndex+1-len(to.entities))...)
	}
	to.entities[toIndex] = handle
	from.freePosition(rec.index)
	if rec.index < from.size {
		// freePosition moved from's last occupant into the freed slot.
		w.entities[from.entities[rec.index]].index = rec.index
	}
	rec.archetype = to.handle
	rec.index = toIndex
	rec.mask = to.mask
}

// AddComponent attaches component type T to handle, migrating it to the
// archetype for mask∪{T}. If handle already carries T, its value is left
// unchanged and a pointer to it is returned.
func AddComponent[T any](w *World, handle EntityHandle) *T {
	id := RegisterComponent[T](w)
	rec := w.record(handle)
	if rec.mask.Has(id) {
		arch := w.archetypes[rec.archetype]
		return componentPtr[T](archChunkBytes(arch, id, rec.index), 0)
	}
	newMask := rec.mask.Set(id)
	to := w.archetypeFor(newMask)
	w.moveSuperset(rec, handle, to)
	arch := w.archetypes[rec.archetype]
	return componentPtr[T](archChunkBytes(arch, id, rec.index), 0)
}

// RemoveComponent detaches component type T from handle, migrating it to
// the archetype for mask∖{T}. It is a no-op if handle does not carry T.
func RemoveComponent[T any](w *World, handle EntityHandle) {
	id := RegisterComponent[T](w)
	rec := w.record(handle)
	if !rec.mask.Has(id) {
		return
	}
	newMask := rec.mask.Clear(id)
	to := w.archetypeFor(newMask)
	w.moveSubset(rec, handle, to)
}

// GetComponent returns a pointer to entity handle's instance of component
// type T, or nil if it does not carry one.
func GetComponent[T any](w *World, handle EntityHandle) *T {
	id := RegisterComponent[T](w)
	rec := w.record(handle)
	if !rec.mask.Has(id) {
		return nil
	}
	arch := w.archetypes[rec.archetype]
	return componentPtr[T](archChunkBytes(arch, id, rec.index), 0)
}

// HasComponent reports whether handle carries component type T.
func HasComponent[T any](w *World, handle EntityHandle) bool {
	id := RegisterComponent[T](w)
	return w.record(handle).mask.Has(id)
}

// archChunkBytes returns the one-element slice view of component id's
// instance at index, for handing to componentPtr.
func archChunkBytes(a *Archetype, id ComponentID, index int) []byte {
	return a.componentBytes(id, index)
}
