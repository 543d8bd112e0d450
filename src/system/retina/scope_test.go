package retina

import (
	"testing"

	"github.com/voodooEntity/eidolon/src/system/world"
)

// Test 4.1: Insert chains and attaches every given component to the
// bound entity
func Test_Scope_InsertChains(t *testing.T) {
	w := world.NewWorld()
	bound := w.NewEntity()
	scope := newScope(w, bound)

	if scope.Entity() != bound {
		t.Fatalf("expected scope to report its bound entity")
	}

	scope.Insert(beak{}).Insert(wing{Side: "right"}, shape{Form: "feathered"})

	if !world.Has[beak](w, bound) {
		t.Fatalf("expected beak on bound entity")
	}
	got, ok := world.Get[wing](w, bound)
	if !ok || got.Side != "right" {
		t.Fatalf("expected right wing on bound entity, got %+v ok=%v", got, ok)
	}
	if !world.Has[shape](w, bound) {
		t.Fatalf("expected shape on bound entity")
	}
}

// Test 4.2: SpawnChild parents the new entity under the bound one and
// nests recursively
func Test_Scope_SpawnChildNests(t *testing.T) {
	w := world.NewWorld()
	root := w.NewEntity()
	scope := newScope(w, root)

	var grandchild world.Entity
	child := scope.SpawnChild(func(inner *Scope) {
		inner.Insert(wing{Side: "left"})
		grandchild = inner.SpawnChild(func(tip *Scope) {
			tip.Insert(shape{Form: "tip"})
		})
	})

	parent, ok := w.Parent(child)
	if !ok || parent != root {
		t.Fatalf("expected child parented under root")
	}
	parent, ok = w.Parent(grandchild)
	if !ok || parent != child {
		t.Fatalf("expected grandchild parented under child")
	}
	if !world.Has[wing](w, child) {
		t.Fatalf("expected wing on child")
	}
	got, _ := world.Get[shape](w, grandchild)
	if got.Form != "tip" {
		t.Fatalf("expected nested insert on grandchild, got %q", got.Form)
	}

	// destroying the root takes the whole built subtree with it
	w.Destroy(root)
	if w.Alive(child) || w.Alive(grandchild) {
		t.Fatalf("expected subtree despawned with the root")
	}
}

// Test 4.3: a nil child builder leaves the child empty but parented
func Test_Scope_SpawnChildNilBuild(t *testing.T) {
	w := world.NewWorld()
	root := w.NewEntity()
	scope := newScope(w, root)

	child := scope.SpawnChild(nil)
	if !w.Alive(child) {
		t.Fatalf("expected child to be alive")
	}
	parent, ok := w.Parent(child)
	if !ok || parent != root {
		t.Fatalf("expected child parented under root")
	}
	if len(w.Children(child)) != 0 {
		t.Fatalf("expected empty child")
	}
}
