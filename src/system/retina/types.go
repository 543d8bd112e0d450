package retina

import (
	"github.com/voodooEntity/eidolon/src/system/world"
)

// Stats describes what one observation tick did.
type Stats struct {
	Tick     uint64
	Built    int
	TornDown int
}

// Recorder receives every build and teardown the scheduler performs.
// The history journal implements it, a nil recorder disables journaling.
type Recorder interface {
	RecordBuild(kind string, capability string, model world.Entity, view world.Entity, tick uint64)
	RecordTeardown(kind string, capability string, model world.Entity, view world.Entity, tick uint64)
}
