package observer

import (
	"sync"
	"time"

	"github.com/voodooEntity/eidolon/src/system/archivist"
	"github.com/voodooEntity/eidolon/src/system/retina"
	"github.com/voodooEntity/eidolon/src/system/world"
)

// Observer drives the observation scheduler in a blocking loop. Every
// iteration runs one tick, an optional user tick function fires every
// tickRate-th iteration. The loop ends once the world went quiescent for
// more than five consecutive iterations or Stop was called, then the
// endgame callback runs with the world.
type Observer struct {
	InactiveIncrement int
	world             *world.World
	scheduler         *retina.Scheduler
	callback          func(w *world.World)
	lethal            bool
	log               *archivist.Archivist
	tickFunction      *func(w *world.World, logger *archivist.Archivist)
	tickRate          int
	interval          time.Duration
	lastMutations     uint64
	stop              chan struct{}
	stopOnce          sync.Once
}

func New(w *world.World, scheduler *retina.Scheduler, cb func(w *world.World), logger *archivist.Archivist, lethal bool) *Observer {
	logger.Info("Creating observer")
	return &Observer{
		InactiveIncrement: 0,
		world:             w,
		scheduler:         scheduler,
		callback:          cb,
		lethal:            lethal,
		log:               logger,
		tickRate:          25,
		tickFunction:      nil,
		interval:          100 * time.Millisecond,
		lastMutations:     w.Mutations(),
		stop:              make(chan struct{}),
	}
}

func (o *Observer) RegisterTickFunction(tickFn *func(w *world.World, logger *archivist.Archivist)) {
	o.tickFunction = tickFn
}

func (o *Observer) SetTickRate(tickRate int) {
	o.tickRate = tickRate
}

// SetInterval adjusts the sleep between loop iterations. Mainly for tests
// and tools that cannot afford the 100ms default.
func (o *Observer) SetInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}
	o.interval = interval
}

func (o *Observer) tick() {
	(*o.tickFunction)(o.world, o.log)
}

func (o *Observer) Loop() {
	i := 0
	for !o.ReachedEndgame() {
		i++
		o.log.Debug(archivist.DEBUG_LEVEL_MAX, "Observer looping:")
		stats := o.scheduler.Tick()
		if 0 < stats.Built || 0 < stats.TornDown {
			o.log.Debug(archivist.DEBUG_LEVEL_TRACE, "Observer tick activity built=", stats.Built, " torndown=", stats.TornDown)
		}
		if nil != o.tickFunction && i == o.tickRate {
			o.tick()
			i = 0
		}

		select {
		case <-o.stop:
		case <-time.After(o.interval):
		}
	}
	o.Endgame()
	o.log.Info("Observer has been shutdown, loop exiting")
}

func (o *Observer) ReachedEndgame() bool {
	// If the observer has been stopped externally we should end the
	// loop immediately to avoid hanging forever.
	select {
	case <-o.stop:
		return true
	default:
	}
	mutations := o.world.Mutations()
	o.log.Debug(archivist.DEBUG_LEVEL_MAX, "Observer: world mutation counter", mutations)
	if mutations != o.lastMutations {
		o.lastMutations = mutations
		o.InactiveIncrement = 0
		return false
	}
	if o.InactiveIncrement > 5 {
		return true
	}
	o.InactiveIncrement++
	return false
}

func (o *Observer) Endgame() {
	o.log.Info("executing endgame")
	// if we are lethal the observer is final, a later Loop returns instantly
	if o.lethal {
		o.halt()
	}
	// execute callback with the world provided
	if nil != o.callback {
		o.callback(o.world)
	}
}

// Stop ends a running loop from another goroutine.
func (o *Observer) Stop() {
	o.halt()
}

func (o *Observer) halt() {
	o.stopOnce.Do(func() {
		close(o.stop)
	})
}
