// Package eidolon keeps a derived view object set synchronized with the
// model objects living in an entity/component world. Kinds get registered
// with a filter and a builder, the observation scheduler detects
// qualifying models every tick, builds exactly one view per model (or one
// per matched capability for polymorphic kinds), links both sides and
// tears the view subtree down once the model stops qualifying.
package eidolon

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/voodooEntity/eidolon/src/system/archivist"
	"github.com/voodooEntity/eidolon/src/system/engram"
	"github.com/voodooEntity/eidolon/src/system/metrics"
	"github.com/voodooEntity/eidolon/src/system/observer"
	"github.com/voodooEntity/eidolon/src/system/retina"
	"github.com/voodooEntity/eidolon/src/system/world"
)

type Settings struct {
	// Ident names the engine instance. Defaults to a fresh UUID, also
	// names the history gits instance when History is enabled.
	Ident string
	// Workers caps the filter evaluation fan-out per tick. Defaults to 1
	// which keeps the whole pass serial.
	Workers int
	// LogLevel and DebugLevel configure the archivist, Logger the zerolog
	// backend it writes through. A nil Logger defaults to a console writer
	// on stdout.
	LogLevel   int
	DebugLevel int
	Logger     *zerolog.Logger
	// History enables the gits backed lifecycle journal.
	History bool
}

// Engine owns one world, one kind registry and the observation state.
// The viewable index and link store live exactly as long as the engine.
type Engine struct {
	ident     string
	log       *archivist.Archivist
	world     *world.World
	registry  *retina.Registry
	store     *retina.Store
	viewables *retina.Viewables
	scheduler *retina.Scheduler
	history   *engram.Engram
}

func New(settings Settings) *Engine {
	if "" == settings.Ident {
		settings.Ident = uuid.New().String()
	}
	logger := settings.Logger
	if nil == logger {
		l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Str("app", settings.Ident).Logger()
		logger = &l
	}
	log := archivist.New(&archivist.Config{
		Logger:     logger,
		LogLevel:   settings.LogLevel,
		DebugLevel: settings.DebugLevel,
	})
	metrics.RegisterMetrics()

	w := world.NewWorld()
	registry := retina.NewRegistry()
	viewables := retina.NewViewables()
	store := retina.NewStore(viewables)
	scheduler := retina.NewScheduler(w, registry, store, viewables, log)
	scheduler.SetWorkers(settings.Workers)

	engine := &Engine{
		ident:     settings.Ident,
		log:       log,
		world:     w,
		registry:  registry,
		store:     store,
		viewables: viewables,
		scheduler: scheduler,
	}

	if settings.History {
		engine.history = engram.New(settings.Ident, log)
		scheduler.SetRecorder(engine.history)
	}

	log.Info("Eidolon instance created", settings.Ident)
	return engine
}

// RegisterViewable registers a simple kind: filter plus a single builder,
// at most one view per qualifying model.
func (e *Engine) RegisterViewable(kind string, filter retina.Filter, build retina.BuildFunc) error {
	return e.registry.RegisterViewable(kind, filter, build)
}

// RegisterView adds a (capability, builder) pair to a polymorphic kind.
// Every matched capability on a model produces its own view.
func (e *Engine) RegisterView(kind string, capability string, filter retina.Filter, build retina.BuildFunc) error {
	return e.registry.RegisterView(kind, capability, filter, build)
}

// Tick runs one observation pass.
func (e *Engine) Tick() retina.Stats {
	return e.scheduler.Tick()
}

// Rebuild drops all views of a kind so the next tick builds them fresh.
func (e *Engine) Rebuild(kind string) int {
	return e.scheduler.Rebuild(kind)
}

func (e *Engine) World() *world.World {
	return e.world
}

func (e *Engine) Viewables() *retina.Viewables {
	return e.viewables
}

func (e *Engine) Links() *retina.Store {
	return e.store
}

// History returns the journal, nil when Settings.History was off.
func (e *Engine) History() *engram.Engram {
	return e.history
}

func (e *Engine) Log() *archivist.Archivist {
	return e.log
}

func (e *Engine) Ident() string {
	return e.ident
}

// GetObserverInstance creates an observer looping the scheduler. The
// callback runs at endgame with the world, lethal marks the observer as
// final once the endgame executed.
func (e *Engine) GetObserverInstance(cb func(w *world.World), lethal bool) *observer.Observer {
	return observer.New(e.world, e.scheduler, cb, e.log, lethal)
}
