package engram

import (
	"sort"
	"strconv"

	"github.com/voodooEntity/gits/src/storage"
	"github.com/voodooEntity/gits/src/transport"
)

// ReportBuilder aggregates journal events into a run summary tree:
// Run -> RunKind per kind -> RunCapability per capability, each carrying
// build/teardown counts. Build returns the transport tree ready to be
// mapped into storage.
type ReportBuilder struct {
	ident string
	kinds map[string]*KindSummary
}

type KindSummary struct {
	Kind         string
	Built        int
	TornDown     int
	capabilities map[string]*CapabilitySummary
}

type CapabilitySummary struct {
	Capability string
	Built      int
	TornDown   int
}

func NewReport(ident string) *ReportBuilder {
	return &ReportBuilder{
		ident: ident,
		kinds: make(map[string]*KindSummary),
	}
}

func (builder *ReportBuilder) AddEvent(event Event) *ReportBuilder {
	summary, ok := builder.kinds[event.Kind]
	if !ok {
		summary = &KindSummary{
			Kind:         event.Kind,
			capabilities: make(map[string]*CapabilitySummary),
		}
		builder.kinds[event.Kind] = summary
	}
	capability, ok := summary.capabilities[event.Capability]
	if !ok {
		capability = &CapabilitySummary{Capability: event.Capability}
		summary.capabilities[event.Capability] = capability
	}
	switch event.Action {
	case ACTION_BUILD:
		summary.Built++
		capability.Built++
	case ACTION_TEARDOWN:
		summary.TornDown++
		capability.TornDown++
	}
	return builder
}

func (builder *ReportBuilder) Build() transport.TransportEntity {
	built := 0
	tornDown := 0
	for _, summary := range builder.kinds {
		built += summary.Built
		tornDown += summary.TornDown
	}
	reportStructure := transport.TransportEntity{
		ID:      storage.MAP_FORCE_CREATE,
		Type:    "Run",
		Value:   builder.ident,
		Context: "History",
		Properties: map[string]string{
			"Built":    strconv.Itoa(built),
			"TornDown": strconv.Itoa(tornDown),
		},
		ChildRelations: make([]transport.TransportRelation, 0, len(builder.kinds)),
	}

	// nest the per kind summaries in stable order
	names := make([]string, 0, len(builder.kinds))
	for name := range builder.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		reportStructure.ChildRelations = append(reportStructure.ChildRelations, transport.TransportRelation{
			Target: builder.kinds[name].Transform(),
		})
	}

	return reportStructure
}

func (s *KindSummary) Transform() transport.TransportEntity {
	currEntity := transport.TransportEntity{
		ID:      storage.MAP_FORCE_CREATE,
		Type:    "RunKind",
		Value:   s.Kind,
		Context: "History",
		Properties: map[string]string{
			"Built":    strconv.Itoa(s.Built),
			"TornDown": strconv.Itoa(s.TornDown),
		},
		ChildRelations: make([]transport.TransportRelation, 0, len(s.capabilities)),
	}

	names := make([]string, 0, len(s.capabilities))
	for name := range s.capabilities {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		currEntity.ChildRelations = append(currEntity.ChildRelations, transport.TransportRelation{
			Target: s.capabilities[name].Transform(),
		})
	}

	return currEntity
}

func (c *CapabilitySummary) Transform() transport.TransportEntity {
	return transport.TransportEntity{
		ID:      storage.MAP_FORCE_CREATE,
		Type:    "RunCapability",
		Value:   c.Capability,
		Context: "History",
		Properties: map[string]string{
			"Built":    strconv.Itoa(c.Built),
			"TornDown": strconv.Itoa(c.TornDown),
		},
	}
}
