package retina

import (
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/voodooEntity/eidolon/src/system/archivist"
	"github.com/voodooEntity/eidolon/src/system/metrics"
	"github.com/voodooEntity/eidolon/src/system/world"
)

// parallelThreshold is the minimum candidate count before filter
// evaluation fans out to workers. Below it the serial path wins.
const parallelThreshold = 16

// Scheduler drives the per-tick observation pass. For every kind, in
// registration order, it first tears down views whose model no longer
// qualifies, then builds views for models that qualify and lack one.
// All mutation runs on the calling goroutine, with more than one worker
// only the read-only filter evaluation fans out.
type Scheduler struct {
	world    *world.World
	registry *Registry
	store    *Store
	index    *Viewables
	log      *archivist.Archivist
	recorder Recorder
	workers  int
	tick     uint64
}

func NewScheduler(w *world.World, registry *Registry, store *Store, index *Viewables, logger *archivist.Archivist) *Scheduler {
	logger.Info("Creating observation scheduler")
	return &Scheduler{
		world:    w,
		registry: registry,
		store:    store,
		index:    index,
		log:      logger,
		workers:  1,
	}
}

// SetWorkers caps the filter evaluation fan-out. Anything below 2 keeps
// the pass fully serial.
func (s *Scheduler) SetWorkers(workers int) {
	if workers < 1 {
		workers = 1
	}
	s.workers = workers
}

// SetRecorder wires a history recorder, nil disables journaling.
func (s *Scheduler) SetRecorder(recorder Recorder) {
	s.recorder = recorder
}

// Tick runs one full observation pass and reports what it did.
func (s *Scheduler) Tick() Stats {
	start := time.Now()
	s.tick++
	stats := Stats{Tick: s.tick}
	s.log.Debug(archivist.DEBUG_LEVEL_TRACE, "observation TICK begin n=", s.tick)
	for _, kind := range s.registry.Kinds() {
		stats.TornDown += s.teardownPass(kind)
		stats.Built += s.creationPass(kind)
	}
	metrics.RecordTick(time.Since(start))
	metrics.SetTrackedModels(s.index.Count())
	s.log.Debug(archivist.DEBUG_LEVEL_TRACE, "observation TICK done n=", s.tick, " built=", stats.Built, " torndown=", stats.TornDown)
	return stats
}

// teardownPass drops every pair of the kind whose owner is gone, whose
// view got killed out-of-band, or whose entry filter stopped matching.
// It always runs before the creation pass of the same kind, so an entity
// that disqualified and requalified gets a freshly built view instead of
// a stale one.
func (s *Scheduler) teardownPass(kind *Kind) int {
	torn := 0
	for _, owner := range s.store.owners(kind.Name) {
		views := s.store.viewsOf(kind.Name, owner)
		ownerAlive := s.world.Alive(owner)
		for _, entry := range kind.Entries() {
			view, ok := views[entry.Capability]
			if !ok {
				continue
			}
			if ownerAlive && s.world.Alive(view) && entry.Filter(s.world, owner) {
				continue
			}
			s.dropPair(kind.Name, entry.Capability, owner, view)
			torn++
		}
	}
	return torn
}

// creationPass builds a view for every candidate matching an entry filter
// that does not carry one yet. Candidates are snapshotted before the
// first build, entities spawned by builders are not rescanned within the
// same pass.
func (s *Scheduler) creationPass(kind *Kind) int {
	built := 0
	candidates := s.world.Entities()
	matches := s.evaluateEntries(kind, candidates)
	for i, candidate := range candidates {
		for j, entry := range kind.Entries() {
			if !matches[i][j] {
				continue
			}
			if s.store.HasView(kind.Name, entry.Capability, candidate) {
				continue
			}
			s.buildView(kind, entry, candidate)
			built++
		}
	}
	return built
}

// evaluateEntries computes the filter matrix candidates x entries. With
// enough candidates and workers the rows are filled in parallel, filters
// only read so the fan-out stays invisible to the serial semantics.
func (s *Scheduler) evaluateEntries(kind *Kind, candidates []world.Entity) [][]bool {
	matches := make([][]bool, len(candidates))
	entries := kind.Entries()
	evaluate := func(from int, to int) {
		for i := from; i < to; i++ {
			row := make([]bool, len(entries))
			for j, entry := range entries {
				row[j] = entry.Filter(s.world, candidates[i])
			}
			matches[i] = row
		}
	}
	if s.workers < 2 || len(candidates) < parallelThreshold {
		evaluate(0, len(candidates))
		return matches
	}
	var g errgroup.Group
	chunk := (len(candidates) + s.workers - 1) / s.workers
	for from := 0; from < len(candidates); from += chunk {
		from, to := from, from+chunk
		if to > len(candidates) {
			to = len(candidates)
		}
		g.Go(func() error {
			evaluate(from, to)
			return nil
		})
	}
	_ = g.Wait()
	return matches
}

// buildView spawns the view entity, tags it for cascade unload, installs
// the link pair and runs the builder synchronously inside a scope bound
// to the new view.
func (s *Scheduler) buildView(kind *Kind, entry Entry, model world.Entity) world.Entity {
	view := s.world.NewEntity()
	world.Set(s.world, view, world.Unload{})
	s.store.createPair(kind.Name, entry.Capability, model, view)
	entry.Build(s.world, model, newScope(s.world, view))
	metrics.RecordBuild(kind.Name, entry.Capability)
	if nil != s.recorder {
		s.recorder.RecordBuild(kind.Name, entry.Capability, model, view, s.tick)
	}
	s.log.Debug(archivist.DEBUG_LEVEL_TRACE, "observation BUILD kind=", kind.Name, " capability=", entry.Capability, " model=", model.ID, " view=", view.ID)
	return view
}

// dropPair removes the link pair and destroys the view subtree.
func (s *Scheduler) dropPair(kind string, capability string, owner world.Entity, view world.Entity) {
	s.store.destroyPair(kind, capability, owner)
	s.world.Destroy(view)
	metrics.RecordTeardown(kind, capability)
	if nil != s.recorder {
		s.recorder.RecordTeardown(kind, capability, owner, view, s.tick)
	}
	s.log.Debug(archivist.DEBUG_LEVEL_TRACE, "observation TEARDOWN kind=", kind, " capability=", capability, " model=", owner.ID, " view=", view.ID)
}

// Rebuild tears down every existing view of the kind so the next tick
// reconstructs them through the registered builders. Returns the number
// of views dropped.
func (s *Scheduler) Rebuild(kind string) int {
	registered, ok := s.registry.Kind(kind)
	if !ok {
		return 0
	}
	torn := 0
	for _, owner := range s.store.owners(registered.Name) {
		views := s.store.viewsOf(registered.Name, owner)
		for _, entry := range registered.Entries() {
			view, ok := views[entry.Capability]
			if !ok {
				continue
			}
			s.dropPair(registered.Name, entry.Capability, owner, view)
			torn++
		}
	}
	s.log.Debug(archivist.DEBUG_LEVEL_TRACE, "observation REBUILD kind=", kind, " dropped=", torn)
	return torn
}

// TickCount returns the number of completed observation passes.
func (s *Scheduler) TickCount() uint64 {
	return s.tick
}
