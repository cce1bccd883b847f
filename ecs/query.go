package ecs

// Query describes a set of required component ids to iterate over. Build one
// with NewQuery and the package-level With helper.
type Query struct {
	mask Mask
}

// NewQuery returns an empty query, which matches every archetype. Entities
// with no components live in the empty archetype, whose size stays 0, so
// ForEach does not visit them.
func NewQuery() Query { return Query{} }

// With returns a copy of q requiring component type T in addition to
// whatever it already required.
func With[T any](w *World, q Query) Query {
	id := RegisterComponent[T](w)
	q.mask = q.mask.Set(id)
	return q
}

// ForEach visits every entity whose archetype mask is a superset of q's
// required components, archetype by archetype, in packed-array order within
// each archetype — mirroring ecs_for_each's iteration order in the source
// engine. fn receives the entity handle; use GetComponent inside fn to read
// components, or ForEach1/ForEach2 for a typed fast path.
func ForEach(w *World, q Query, fn func(EntityHandle)) {
	for _, a := range w.archetypes {
		if !a.mask.IsSupersetOf(q.mask) {
			continue
		}
		for i := 0; i < a.size; i++ {
			fn(a.entities[i])
		}
	}
}

// ForEach1 visits every entity carrying component type T, passing a pointer
// to its T instance directly — avoiding the GetComponent lookup ForEach
// would otherwise require per entity.
func ForEach1[T any](w *World, fn func(EntityHandle, *T)) {
	id := RegisterComponent[T](w)
	q := Query{mask: Mask{}.Set(id)}
	for _, a := range w.archetypes {
		if !a.mask.IsSupersetOf(q.mask) {
			continue
		}
		for i := 0; i < a.size; i++ {
			fn(a.entities[i], componentPtr[T](a.componentBytes(id, i), 0))
		}
	}
}

// ForEach2 visits every entity carrying both component types T1 and T2,
// passing pointers to both instances directly.
func ForEach2[T1 any, T2 any](w *World, fn func(EntityHandle, *T1, *T2)) {
	id1 := RegisterComponent[T1](w)
	id2 := RegisterComponent[T2](w)
	q := Mask{}.Set(id1).Set(id2)
	for _, a := range w.archetypes {
		if !a.mask.IsSupersetOf(q) {
			continue
		}
		for i := 0; i < a.size; i++ {
			fn(a.entities[i],
				componentPtr[T1](a.componentBytes(id1, i), 0),
				componentPtr[T2](a.componentBytes(id2, i), 0))
		}
	}
}
