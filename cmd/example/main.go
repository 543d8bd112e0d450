package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/voodooEntity/gits"

	"github.com/voodooEntity/eidolon"
	"github.com/voodooEntity/eidolon/src/system/archivist"
	"github.com/voodooEntity/eidolon/src/system/retina"
	"github.com/voodooEntity/eidolon/src/system/world"
)

// Components used by the example scene. Bird and Monkey mark what a
// model is capable of, the remaining types are view-side content.
type Bird struct{}

type Monkey struct{}

type Beak struct{}

type Wing struct {
	Side string
}

type Tail struct {
	Length int
}

type Shape struct {
	Form string
}

func main() {
	configPath := flag.String("config", "", "path to an optional toml config file")
	flag.Parse()

	cfg, err := loadExampleConfig(*configPath)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("app", "eidolon-example").Logger()

	// create our eidolon instance
	engine := eidolon.New(eidolon.Settings{
		Ident:      cfg.Ident,
		Workers:    cfg.Workers,
		LogLevel:   cfg.LogLevel,
		DebugLevel: cfg.DebugLevel,
		Logger:     &logger,
		History:    cfg.History,
	})

	// a simple kind. every entity carrying Bird gets a single view
	// which consists of a beak and one wing child
	err = engine.RegisterViewable("Bird", retina.HasComponent[Bird](), func(r world.Reader, model world.Entity, view *retina.Scope) {
		view.Insert(Beak{})
		view.SpawnChild(func(wing *retina.Scope) {
			wing.Insert(Wing{Side: "left"})
		})
	})
	if err != nil {
		engine.Log().Fatal("Could not register Bird kind", err)
		os.Exit(1)
	}

	// a polymorphic kind. each capability present on a model produces
	// its own view, so a creature that is both bird and monkey will
	// carry two views at the same time
	err = engine.RegisterView("Creature", "Bird", retina.HasComponent[Bird](), func(r world.Reader, model world.Entity, view *retina.Scope) {
		view.Insert(Shape{Form: "feathered"})
	})
	if err != nil {
		engine.Log().Fatal("Could not register Creature/Bird capability", err)
		os.Exit(1)
	}
	err = engine.RegisterView("Creature", "Monkey", retina.HasComponent[Monkey](), func(r world.Reader, model world.Entity, view *retina.Scope) {
		view.Insert(Shape{Form: "furred"}, Tail{Length: 40})
	})
	if err != nil {
		engine.Log().Fatal("Could not register Creature/Monkey capability", err)
		os.Exit(1)
	}

	// seed the world with two models. the first one only is a bird,
	// the second one is a hybrid carrying both capabilities
	w := engine.World()
	bird := w.NewEntity()
	world.Set(w, bird, Bird{})
	hybrid := w.NewEntity()
	world.Set(w, hybrid, Bird{})
	world.Set(w, hybrid, Monkey{})

	// get an observer instance. we pass a callback that dumps the final
	// index state and lethal=true so the observer finalizes itself once
	// the world went quiet
	obsi := engine.GetObserverInstance(func(w *world.World) {
		index := engine.Viewables()
		for _, model := range index.Models() {
			fmt.Printf("model %d version %d carries %d views\n", model.ID, model.Version, len(index.Views(model)))
		}
	}, true)

	// register a tick function. on its second firing it removes the
	// plain bird so the run also demonstrates a teardown
	fired := 0
	tickFn := func(w *world.World, log *archivist.Archivist) {
		log.Info("yes i tick")
		fired++
		if 2 == fired && w.Alive(bird) {
			w.Destroy(bird)
		}
	}
	obsi.RegisterTickFunction(&tickFn)
	obsi.SetTickRate(cfg.TickRate)
	obsi.SetInterval(time.Duration(cfg.IntervalMS) * time.Millisecond)

	// blocking until no further world changes occur
	obsi.Loop()

	// with history enabled every build and teardown got journaled, so
	// we can persist a summary report and dump the raw events
	if nil != engine.History() {
		engine.History().PersistReport()
		for _, event := range engine.History().Events() {
			fmt.Printf("event %d tick %d %s %s/%s model %d view %d\n", event.Sequence, event.Tick, event.Action, event.Kind, event.Capability, event.Model.ID, event.View.ID)
		}
		qry := gits.NewQuery().Read("Run")
		result := gits.GetDefault().Query().Execute(qry)
		fmt.Println(fmt.Sprintf("%+v", result))
	}
}
