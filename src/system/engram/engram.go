package engram

import (
	"sort"
	"strconv"

	"github.com/voodooEntity/gits"
	"github.com/voodooEntity/gits/src/query"
	"github.com/voodooEntity/gits/src/storage"
	"github.com/voodooEntity/gits/src/transport"

	"github.com/voodooEntity/eidolon/src/system/archivist"
	"github.com/voodooEntity/eidolon/src/system/world"
)

const (
	ACTION_BUILD    = "Build"
	ACTION_TEARDOWN = "Teardown"
)

// Event is one journaled lifecycle step of the observation scheduler.
type Event struct {
	Sequence   int
	Action     string
	Kind       string
	Capability string
	Model      world.Entity
	View       world.Entity
	Tick       uint64
}

// Engram journals every view build and teardown into a dedicated gits
// instance named after the engine ident, so a run can be inspected after
// the fact the same way any other gits dataset is.
type Engram struct {
	ident string
	gits  *gits.Gits
	log   *archivist.Archivist
	count int
}

func New(ident string, logger *archivist.Archivist) *Engram {
	logger.Info("Creating history engram", ident)
	gitsInstance := gits.NewInstance(ident)
	gits.SetDefault(ident)
	return &Engram{
		ident: ident,
		gits:  gitsInstance,
		log:   logger,
	}
}

func (e *Engram) RecordBuild(kind string, capability string, model world.Entity, view world.Entity, tick uint64) {
	e.record(ACTION_BUILD, kind, capability, model, view, tick)
}

func (e *Engram) RecordTeardown(kind string, capability string, model world.Entity, view world.Entity, tick uint64) {
	e.record(ACTION_TEARDOWN, kind, capability, model, view, tick)
}

func (e *Engram) record(action string, kind string, capability string, model world.Entity, view world.Entity, tick uint64) {
	e.gits.MapData(transport.TransportEntity{
		ID:      storage.MAP_FORCE_CREATE,
		Type:    "ViewEvent",
		Value:   action,
		Context: "History",
		Properties: map[string]string{
			"Kind":         kind,
			"Capability":   capability,
			"ModelID":      strconv.FormatUint(uint64(model.ID), 10),
			"ModelVersion": strconv.FormatUint(uint64(model.Version), 10),
			"ViewID":       strconv.FormatUint(uint64(view.ID), 10),
			"ViewVersion":  strconv.FormatUint(uint64(view.Version), 10),
			"Tick":         strconv.FormatUint(tick, 10),
		},
	})
	e.count++
}

// Events reads the journal back in record order.
func (e *Engram) Events() []Event {
	if 0 == e.count {
		return nil
	}
	qry := query.New().Read("ViewEvent")
	res := e.gits.Query().Execute(qry)
	events := make([]Event, 0, res.Amount)
	for _, entity := range res.Entities {
		events = append(events, eventFromTransport(entity))
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Sequence < events[j].Sequence
	})
	return events
}

// Count returns the number of events recorded by this engram instance.
func (e *Engram) Count() int {
	return e.count
}

// Gits exposes the journal instance for custom queries.
func (e *Engram) Gits() *gits.Gits {
	return e.gits
}

func (e *Engram) Ident() string {
	return e.ident
}

// PersistReport aggregates the journal into a Run summary tree, maps it
// into the journal instance and returns it.
func (e *Engram) PersistReport() transport.TransportEntity {
	report := NewReport(e.ident)
	for _, event := range e.Events() {
		report.AddEvent(event)
	}
	tree := report.Build()
	e.gits.MapData(tree)
	e.log.Info("Persisted run report", e.ident)
	return tree
}

func eventFromTransport(entity transport.TransportEntity) Event {
	return Event{
		Sequence:   entity.ID,
		Action:     entity.Value,
		Kind:       entity.Properties["Kind"],
		Capability: entity.Properties["Capability"],
		Model: world.Entity{
			ID:      parseUint32(entity.Properties["ModelID"]),
			Version: parseUint32(entity.Properties["ModelVersion"]),
		},
		View: world.Entity{
			ID:      parseUint32(entity.Properties["ViewID"]),
			Version: parseUint32(entity.Properties["ViewVersion"]),
		},
		Tick: parseUint64(entity.Properties["Tick"]),
	}
}

func parseUint32(value string) uint32 {
	parsed, err := strconv.ParseUint(value, 10, 32)
	if nil != err {
		return 0
	}
	return uint32(parsed)
}

func parseUint64(value string) uint64 {
	parsed, err := strconv.ParseUint(value, 10, 64)
	if nil != err {
		return 0
	}
	return parsed
}
