package retina

import (
	"github.com/voodooEntity/eidolon/src/system/archivist"
	"github.com/voodooEntity/eidolon/src/system/world"
)

// - - - - - - - - - - - - - - - - - - - - - - -
// SETUP FRESH OBSERVATION STATE
// - needs to be run for each test case
// - provides world, registry, store, index and scheduler
// - kinds get registered by the test case itself

type birdTag struct{}

type monkeyTag struct{}

type beak struct{}

type wing struct {
	Side string
}

type shape struct {
	Form string
}

func setupFresh() (*world.World, *Registry, *Store, *Viewables, *Scheduler) {
	w := world.NewWorld()
	registry := NewRegistry()
	index := NewViewables()
	store := NewStore(index)

	// setup the logger, fatal only so test output stays readable
	logger := archivist.New(&archivist.Config{LogLevel: archivist.LEVEL_FATAL})

	scheduler := NewScheduler(w, registry, store, index, logger)
	return w, registry, store, index, scheduler
}

// registerBirdKind wires the simple reference kind: a beak on the view
// root and one wing child below it
func registerBirdKind(registry *Registry) error {
	return registry.RegisterViewable("Bird", HasComponent[birdTag](), func(r world.Reader, model world.Entity, view *Scope) {
		view.Insert(beak{})
		view.SpawnChild(func(child *Scope) {
			child.Insert(wing{Side: "left"})
		})
	})
}

// registerCreatureKind wires the polymorphic reference kind with a Bird
// and a Monkey capability
func registerCreatureKind(registry *Registry) error {
	if err := registry.RegisterView("Creature", "Bird", HasComponent[birdTag](), func(r world.Reader, model world.Entity, view *Scope) {
		view.Insert(shape{Form: "feathered"})
	}); err != nil {
		return err
	}
	return registry.RegisterView("Creature", "Monkey", HasComponent[monkeyTag](), func(r world.Reader, model world.Entity, view *Scope) {
		view.Insert(shape{Form: "furred"})
	})
}
