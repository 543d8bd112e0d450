package retina

import (
	"sort"

	"github.com/voodooEntity/eidolon/src/system/world"
)

// modelRec is the model side of a link: one qualifying entity of a kind
// with its views keyed by capability (empty key for simple kinds).
type modelRec struct {
	kind  string
	owner world.Entity
	views map[string]world.Entity
}

// viewRec is the view side of a link, pointing back at the model.
type viewRec struct {
	kind       string
	capability string
	model      world.Entity
	entity     world.Entity
}

// Store keeps the two-sided model/view links. Both sides of a pair are
// written and removed inside a single call, so application level lookups
// between ticks never observe a half-present link. Mutation happens only
// through the scheduler, application code gets the read surface.
type Store struct {
	models map[string]map[world.Entity]*modelRec
	views  map[world.Entity]viewRec
	index  *Viewables
}

// NewStore creates an empty store that maintains idx in lockstep with
// every pair mutation.
func NewStore(idx *Viewables) *Store {
	return &Store{
		models: make(map[string]map[world.Entity]*modelRec),
		views:  make(map[world.Entity]viewRec),
		index:  idx,
	}
}

// Model resolves the model-side record of (kind, owner).
func (s *Store) Model(kind string, owner world.Entity) (Model, bool) {
	byOwner, ok := s.models[kind]
	if !ok {
		return Model{}, false
	}
	if _, ok := byOwner[owner]; !ok {
		return Model{}, false
	}
	return Model{Kind: kind, Owner: owner, store: s}, true
}

// View resolves the view-side record of a view entity.
func (s *Store) View(view world.Entity) (View, bool) {
	rec, ok := s.views[view]
	if !ok {
		return View{}, false
	}
	return View{Kind: rec.kind, Capability: rec.capability, Entity: rec.entity, model: rec.model}, true
}

// HasView reports whether (kind, capability, owner) already carries a view.
func (s *Store) HasView(kind string, capability string, owner world.Entity) bool {
	byOwner, ok := s.models[kind]
	if !ok {
		return false
	}
	rec, ok := byOwner[owner]
	if !ok {
		return false
	}
	_, ok = rec.views[capability]
	return ok
}

// Count returns the number of live links across all kinds.
func (s *Store) Count() int {
	return len(s.views)
}

// createPair installs both sides of a new link and the index entry.
func (s *Store) createPair(kind string, capability string, owner world.Entity, view world.Entity) {
	byOwner, ok := s.models[kind]
	if !ok {
		byOwner = make(map[world.Entity]*modelRec)
		s.models[kind] = byOwner
	}
	rec, ok := byOwner[owner]
	if !ok {
		rec = &modelRec{kind: kind, owner: owner, views: make(map[string]world.Entity)}
		byOwner[owner] = rec
	}
	rec.views[capability] = view
	s.views[view] = viewRec{kind: kind, capability: capability, model: owner, entity: view}
	s.index.add(owner, view)
}

// destroyPair removes both sides of the link and the index entry, and
// returns the view entity that was linked. The model record goes away
// with its last view.
func (s *Store) destroyPair(kind string, capability string, owner world.Entity) (world.Entity, bool) {
	byOwner, ok := s.models[kind]
	if !ok {
		return world.Entity{}, false
	}
	rec, ok := byOwner[owner]
	if !ok {
		return world.Entity{}, false
	}
	view, ok := rec.views[capability]
	if !ok {
		return world.Entity{}, false
	}
	delete(rec.views, capability)
	if 0 == len(rec.views) {
		delete(byOwner, owner)
		if 0 == len(byOwner) {
			delete(s.models, kind)
		}
	}
	delete(s.views, view)
	s.index.remove(owner, view)
	return view, true
}

// owners returns the tracked model entities of a kind, ID ascending, as a
// snapshot safe to iterate while pairs get destroyed.
func (s *Store) owners(kind string) []world.Entity {
	byOwner, ok := s.models[kind]
	if !ok {
		return nil
	}
	out := make([]world.Entity, 0, len(byOwner))
	for owner := range byOwner {
		out = append(out, owner)
	}
	world.SortEntities(out)
	return out
}

// viewsOf returns the capability->view pairs of (kind, owner) as a snapshot.
func (s *Store) viewsOf(kind string, owner world.Entity) map[string]world.Entity {
	byOwner, ok := s.models[kind]
	if !ok {
		return nil
	}
	rec, ok := byOwner[owner]
	if !ok {
		return nil
	}
	out := make(map[string]world.Entity, len(rec.views))
	for capability, view := range rec.views {
		out[capability] = view
	}
	return out
}

// Model is the read handle onto the model side of a link.
type Model struct {
	Kind  string
	Owner world.Entity
	store *Store
}

// View returns the single view of a simple kind model. For polymorphic
// kinds it resolves the anonymous entry and misses.
func (m Model) View() (world.Entity, bool) {
	return m.ViewFor("")
}

// ViewFor returns the view built for one capability of this model.
func (m Model) ViewFor(capability string) (world.Entity, bool) {
	byOwner, ok := m.store.models[m.Kind]
	if !ok {
		return world.Entity{}, false
	}
	rec, ok := byOwner[m.Owner]
	if !ok {
		return world.Entity{}, false
	}
	view, ok := rec.views[capability]
	return view, ok
}

// Views returns all views of this model under its kind, capability order.
func (m Model) Views() []world.Entity {
	byOwner, ok := m.store.models[m.Kind]
	if !ok {
		return nil
	}
	rec, ok := byOwner[m.Owner]
	if !ok {
		return nil
	}
	capabilities := make([]string, 0, len(rec.views))
	for capability := range rec.views {
		capabilities = append(capabilities, capability)
	}
	sort.Strings(capabilities)
	out := make([]world.Entity, 0, len(capabilities))
	for _, capability := range capabilities {
		out = append(out, rec.views[capability])
	}
	return out
}

// View is the read handle onto the view side of a link.
type View struct {
	Kind       string
	Capability string
	Entity     world.Entity
	model      world.Entity
}

// Model returns the entity this view represents.
func (v View) Model() world.Entity {
	return v.model
}
