package retina

import (
	"github.com/voodooEntity/eidolon/src/system/world"
)

// Viewables is the type-erased index over the link store: model entity to
// the set of all its view entities across every kind, plus the reverse
// direction. Consumers that cannot name a kind statically enumerate here.
// It lives exactly as long as its engine and is never persisted.
type Viewables struct {
	entities map[world.Entity]map[world.Entity]struct{}
	views    map[world.Entity]world.Entity
}

func NewViewables() *Viewables {
	return &Viewables{
		entities: make(map[world.Entity]map[world.Entity]struct{}),
		views:    make(map[world.Entity]world.Entity),
	}
}

// Contains reports whether the model entity carries any tracked view.
func (v *Viewables) Contains(model world.Entity) bool {
	_, ok := v.entities[model]
	return ok
}

// Models returns all tracked model entities, ID ascending.
func (v *Viewables) Models() []world.Entity {
	out := make([]world.Entity, 0, len(v.entities))
	for model := range v.entities {
		out = append(out, model)
	}
	world.SortEntities(out)
	return out
}

// Views returns all view entities of one model, ID ascending.
func (v *Viewables) Views(model world.Entity) []world.Entity {
	set, ok := v.entities[model]
	if !ok {
		return nil
	}
	out := make([]world.Entity, 0, len(set))
	for view := range set {
		out = append(out, view)
	}
	world.SortEntities(out)
	return out
}

// IsView reports whether the entity is a tracked view root.
func (v *Viewables) IsView(e world.Entity) bool {
	_, ok := v.views[e]
	return ok
}

// ModelOf returns the model a view root belongs to.
func (v *Viewables) ModelOf(view world.Entity) (world.Entity, bool) {
	model, ok := v.views[view]
	return model, ok
}

// Count returns the number of tracked models.
func (v *Viewables) Count() int {
	return len(v.entities)
}

func (v *Viewables) add(model world.Entity, view world.Entity) {
	set, ok := v.entities[model]
	if !ok {
		set = make(map[world.Entity]struct{})
		v.entities[model] = set
	}
	set[view] = struct{}{}
	v.views[view] = model
}

func (v *Viewables) remove(model world.Entity, view world.Entity) {
	if set, ok := v.entities[model]; ok {
		delete(set, view)
		if 0 == len(set) {
			delete(v.entities, model)
		}
	}
	delete(v.views, view)
}
