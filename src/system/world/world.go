package world

import (
	"reflect"
	"sort"
)

// Entity is an opaque stable handle into a World. ID slots get recycled,
// the Version is bumped on every recycle so stale handles never resolve.
// The zero Entity is never alive.
type Entity struct {
	ID      uint32
	Version uint32
}

type entityMeta struct {
	version uint32
	alive   bool
}

// Unload marks an entity whose whole subtree is despawned by the next
// Reload pass. The observation core attaches it to every view root it
// creates, the purge itself happens here.
type Unload struct{}

// Reader is the read-only access handed to filters and builders. It is
// implemented by *World and sealed via the unexported component accessor.
type Reader interface {
	Alive(e Entity) bool
	Parent(e Entity) (Entity, bool)
	Children(e Entity) []Entity
	component(e Entity, t reflect.Type) (interface{}, bool)
}

// World is the in-memory entity/component store the engine runs against.
// It is not safe for concurrent mutation, all writes are expected to happen
// from the goroutine driving the observation pass.
type World struct {
	meta       []entityMeta
	freeIDs    []uint32
	parents    map[uint32]Entity
	children   map[uint32][]Entity
	components map[reflect.Type]map[uint32]interface{}
	mutations  uint64
}

func NewWorld() *World {
	return &World{
		parents:    make(map[uint32]Entity),
		children:   make(map[uint32][]Entity),
		components: make(map[reflect.Type]map[uint32]interface{}),
	}
}

// NewEntity creates a fresh entity, reusing a free ID slot if one exists.
func (w *World) NewEntity() Entity {
	var id uint32
	if 0 < len(w.freeIDs) {
		id = w.freeIDs[len(w.freeIDs)-1]
		w.freeIDs = w.freeIDs[:len(w.freeIDs)-1]
		w.meta[id].alive = true
	} else {
		id = uint32(len(w.meta))
		w.meta = append(w.meta, entityMeta{version: 1, alive: true})
	}
	w.mutations++
	return Entity{ID: id, Version: w.meta[id].version}
}

func (w *World) Alive(e Entity) bool {
	if int(e.ID) >= len(w.meta) {
		return false
	}
	m := w.meta[e.ID]
	return m.alive && m.version == e.Version
}

// Destroy removes the entity together with its whole descendant subtree.
// The ID slot is recycled with a bumped version.
func (w *World) Destroy(e Entity) {
	if !w.Alive(e) {
		return
	}
	// children first, on a copy since Destroy mutates the child list
	kids := append([]Entity(nil), w.children[e.ID]...)
	for _, child := range kids {
		w.Destroy(child)
	}
	if parent, ok := w.parents[e.ID]; ok {
		w.detachChild(parent, e)
	}
	for _, store := range w.components {
		delete(store, e.ID)
	}
	delete(w.parents, e.ID)
	delete(w.children, e.ID)
	w.meta[e.ID].alive = false
	w.meta[e.ID].version++
	w.freeIDs = append(w.freeIDs, e.ID)
	w.mutations++
}

// SetParent attaches child under parent, detaching it from a previous
// parent first. Both entities must be alive.
func (w *World) SetParent(child Entity, parent Entity) {
	if !w.Alive(child) || !w.Alive(parent) {
		return
	}
	if prev, ok := w.parents[child.ID]; ok {
		w.detachChild(prev, child)
	}
	w.parents[child.ID] = parent
	w.children[parent.ID] = append(w.children[parent.ID], child)
	w.mutations++
}

func (w *World) Parent(e Entity) (Entity, bool) {
	if !w.Alive(e) {
		return Entity{}, false
	}
	parent, ok := w.parents[e.ID]
	return parent, ok
}

// Children returns the direct children in attach order.
func (w *World) Children(e Entity) []Entity {
	if !w.Alive(e) {
		return nil
	}
	return append([]Entity(nil), w.children[e.ID]...)
}

// Entities returns a snapshot of all live entities in ascending ID order.
func (w *World) Entities() []Entity {
	out := make([]Entity, 0, len(w.meta)-len(w.freeIDs))
	for id, m := range w.meta {
		if m.alive {
			out = append(out, Entity{ID: uint32(id), Version: m.version})
		}
	}
	return out
}

// Mutations is a monotone counter bumped on every structural change. It is
// how the observer decides the world went quiescent.
func (w *World) Mutations() uint64 {
	return w.mutations
}

// Reload despawns every Unload tagged entity with its subtree and returns
// how many tagged roots were purged. Tagged entities nested below another
// tagged entity die with their ancestor and are not counted twice.
func (w *World) Reload() int {
	var tagged []Entity
	for _, e := range w.Entities() {
		if Has[Unload](w, e) {
			tagged = append(tagged, e)
		}
	}
	purged := 0
	for _, e := range tagged {
		if w.Alive(e) {
			w.Destroy(e)
			purged++
		}
	}
	return purged
}

func (w *World) detachChild(parent Entity, child Entity) {
	kids := w.children[parent.ID]
	for i, c := range kids {
		if c == child {
			w.children[parent.ID] = append(kids[:i], kids[i+1:]...)
			return
		}
	}
}

func (w *World) component(e Entity, t reflect.Type) (interface{}, bool) {
	if !w.Alive(e) {
		return nil, false
	}
	store, ok := w.components[t]
	if !ok {
		return nil, false
	}
	v, ok := store[e.ID]
	return v, ok
}

func (w *World) setComponent(e Entity, t reflect.Type, v interface{}) {
	if !w.Alive(e) {
		return
	}
	store, ok := w.components[t]
	if !ok {
		store = make(map[uint32]interface{})
		w.components[t] = store
	}
	store[e.ID] = v
	w.mutations++
}

// SetValue attaches a component by its dynamic type. Used where the static
// type is not known, like bundle insertion through a build scope.
func SetValue(w *World, e Entity, v interface{}) {
	if nil == v {
		return
	}
	w.setComponent(e, reflect.TypeOf(v), v)
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Set attaches the component v to e, replacing a previous value of the
// same type.
func Set[T any](w *World, e Entity, v T) {
	w.setComponent(e, typeOf[T](), v)
}

func Get[T any](r Reader, e Entity) (T, bool) {
	var zero T
	v, ok := r.component(e, typeOf[T]())
	if !ok {
		return zero, false
	}
	return v.(T), true
}

func Has[T any](r Reader, e Entity) bool {
	_, ok := r.component(e, typeOf[T]())
	return ok
}

// Remove detaches the component of type T from e and reports whether it
// was present.
func Remove[T any](w *World, e Entity) bool {
	if !w.Alive(e) {
		return false
	}
	store, ok := w.components[typeOf[T]()]
	if !ok {
		return false
	}
	if _, ok := store[e.ID]; !ok {
		return false
	}
	delete(store, e.ID)
	w.mutations++
	return true
}

// SortEntities orders a slice by ID ascending, version as tiebreaker.
func SortEntities(entities []Entity) {
	sort.Slice(entities, func(i, j int) bool {
		if entities[i].ID != entities[j].ID {
			return entities[i].ID < entities[j].ID
		}
		return entities[i].Version < entities[j].Version
	})
}
