package eidolon

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voodooEntity/eidolon/src/system/archivist"
	"github.com/voodooEntity/eidolon/src/system/retina"
	"github.com/voodooEntity/eidolon/src/system/world"
)

type featherTag struct{}

type furTag struct{}

type plumage struct {
	Color string
}

type pelt struct{}

func newTestEngine(history bool) *Engine {
	return New(Settings{
		Workers:  2,
		LogLevel: archivist.LEVEL_FATAL,
		History:  history,
	})
}

// TestEngineLifecycleEndToEnd verifies registration, observation, link
// lookup, the type erased index and the journal through the facade.
func TestEngineLifecycleEndToEnd(t *testing.T) {
	engine := newTestEngine(true)
	assert.NotEmpty(t, engine.Ident(), "engine should default to a generated ident")
	require.NotNil(t, engine.History(), "history should be wired when enabled")
	assert.Equal(t, engine.Ident(), engine.History().Ident())

	err := engine.RegisterViewable("Bird", retina.HasComponent[featherTag](), func(r world.Reader, model world.Entity, view *retina.Scope) {
		view.Insert(plumage{Color: "blue"})
	})
	require.NoError(t, err)
	err = engine.RegisterView("Creature", "Feathered", retina.HasComponent[featherTag](), func(r world.Reader, model world.Entity, view *retina.Scope) {
		view.Insert(plumage{Color: "brown"})
	})
	require.NoError(t, err)
	err = engine.RegisterView("Creature", "Furry", retina.HasComponent[furTag](), func(r world.Reader, model world.Entity, view *retina.Scope) {
		view.Insert(pelt{})
	})
	require.NoError(t, err)

	w := engine.World()
	model := w.NewEntity()
	world.Set(w, model, featherTag{})
	world.Set(w, model, furTag{})

	stats := engine.Tick()
	assert.Equal(t, 3, stats.Built, "simple kind plus both capabilities should build")
	assert.Equal(t, 0, stats.TornDown)

	// link store resolves both kinds
	rec, ok := engine.Links().Model("Bird", model)
	require.True(t, ok)
	birdView, ok := rec.View()
	require.True(t, ok)
	got, ok := world.Get[plumage](w, birdView)
	require.True(t, ok)
	assert.Equal(t, "blue", got.Color)

	rec, ok = engine.Links().Model("Creature", model)
	require.True(t, ok)
	assert.Len(t, rec.Views(), 2, "one view per matched capability")

	// the index aggregates across kinds
	assert.Len(t, engine.Viewables().Views(model), 3)

	// journal carries one event per build
	assert.Equal(t, 3, engine.History().Count())

	// losing the fur capability tears down exactly that view
	world.Remove[furTag](w, model)
	stats = engine.Tick()
	assert.Equal(t, 1, stats.TornDown)
	assert.Equal(t, 0, stats.Built)
	assert.Len(t, engine.Viewables().Views(model), 2)
	assert.Equal(t, 4, engine.History().Count())

	// rebuild drops and the next tick reconstructs
	dropped := engine.Rebuild("Bird")
	assert.Equal(t, 1, dropped)
	stats = engine.Tick()
	assert.Equal(t, 1, stats.Built)

	events := engine.History().Events()
	require.Len(t, events, 6)
	assert.Equal(t, "Bird", events[0].Kind, "first journal entry should be the first build")
}

// TestEngineHistoryDisabled verifies the engine runs without a journal
// when history is off.
func TestEngineHistoryDisabled(t *testing.T) {
	engine := newTestEngine(false)
	assert.Nil(t, engine.History(), "history should stay off by default")

	err := engine.RegisterViewable("Bird", retina.HasComponent[featherTag](), func(r world.Reader, model world.Entity, view *retina.Scope) {
		view.Insert(plumage{Color: "red"})
	})
	require.NoError(t, err)

	w := engine.World()
	model := w.NewEntity()
	world.Set(w, model, featherTag{})

	stats := engine.Tick()
	assert.Equal(t, 1, stats.Built)
	assert.True(t, engine.Viewables().Contains(model))
}

// TestEngineRegistrationErrors verifies registry errors surface through
// the facade unwrapped.
func TestEngineRegistrationErrors(t *testing.T) {
	engine := newTestEngine(false)

	err := engine.RegisterViewable("Bird", retina.HasComponent[featherTag](), func(r world.Reader, model world.Entity, view *retina.Scope) {})
	require.NoError(t, err)
	err = engine.RegisterViewable("Bird", retina.HasComponent[featherTag](), func(r world.Reader, model world.Entity, view *retina.Scope) {})
	assert.True(t, errors.Is(err, retina.ErrKindRegistered))

	err = engine.RegisterView("Bird", "Feathered", retina.HasComponent[featherTag](), func(r world.Reader, model world.Entity, view *retina.Scope) {})
	assert.True(t, errors.Is(err, retina.ErrKindShape))
}

// TestEngineObserverIntegration verifies the observer loops the engine
// scheduler until quiescence and hands the world to the callback.
func TestEngineObserverIntegration(t *testing.T) {
	engine := newTestEngine(true)
	err := engine.RegisterViewable("Bird", retina.HasComponent[featherTag](), func(r world.Reader, model world.Entity, view *retina.Scope) {
		view.Insert(plumage{Color: "green"})
		view.SpawnChild(func(child *retina.Scope) {
			child.Insert(pelt{})
		})
	})
	require.NoError(t, err)

	w := engine.World()
	model := w.NewEntity()
	world.Set(w, model, featherTag{})

	ran := false
	obs := engine.GetObserverInstance(func(cw *world.World) {
		ran = true
	}, true)
	obs.SetInterval(time.Millisecond)
	obs.Loop()

	assert.True(t, ran, "endgame callback should have run")
	rec, ok := engine.Links().Model("Bird", model)
	require.True(t, ok, "loop should have built the view")
	view, ok := rec.View()
	require.True(t, ok)
	assert.Len(t, w.Children(view), 1, "built subtree should carry the spawned child")
	assert.Equal(t, 1, engine.History().Count())
}
