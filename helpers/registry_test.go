package helpers

import (
	"testing"

	"github.com/nathoo/trackcore/types"
	"github.com/nathoo/trackcore/world"
)

func TestRegistry_RegisterAndResolve(t *testing.T) {
	reg := NewRegistry()
	reg.Register("Zelda", "can_swim", func(snap *types.Snapshot, w *world.Bundle, args ...any) any {
		return true
	})

	if !reg.Has("Zelda", "can_swim") {
		t.Errorf("Has() = false after Register")
	}
	fn, ok := reg.Resolve("Zelda", "can_swim")
	if !ok {
		t.Fatalf("Resolve() missed a registered helper")
	}
	if got := fn(nil, nil); got != true {
		t.Errorf("helper returned %v, want true", got)
	}
}

func TestRegistry_TitlesAreIsolated(t *testing.T) {
	reg := NewRegistry()
	reg.Register("Zelda", "can_swim", func(snap *types.Snapshot, w *world.Bundle, args ...any) any {
		return true
	})

	if reg.Has("Metroid", "can_swim") {
		t.Errorf("helper leaked across titles")
	}
	if _, ok := reg.Resolve("Metroid", "can_swim"); ok {
		t.Errorf("Resolve() crossed title boundaries")
	}
}

func TestRegistry_ReplaceBinding(t *testing.T) {
	reg := NewRegistry()
	reg.Register("Zelda", "can_swim", func(snap *types.Snapshot, w *world.Bundle, args ...any) any {
		return false
	})
	reg.Register("Zelda", "can_swim", func(snap *types.Snapshot, w *world.Bundle, args ...any) any {
		return true
	})

	fn, _ := reg.Resolve("Zelda", "can_swim")
	if got := fn(nil, nil); got != true {
		t.Errorf("helper = %v, want the replacement binding", got)
	}
}

func TestRegistry_Names(t *testing.T) {
	reg := NewRegistry()
	nop := func(snap *types.Snapshot, w *world.Bundle, args ...any) any { return true }
	reg.Register("Zelda", "can_swim", nop)
	reg.Register("Zelda", "can_fly", nop)

	names := reg.Names("Zelda")
	if len(names) != 2 || names[0] != "can_fly" || names[1] != "can_swim" {
		t.Errorf("Names() = %v, want sorted [can_fly can_swim]", names)
	}
	if got := reg.Names("Metroid"); len(got) != 0 {
		t.Errorf("Names(unknown title) = %v, want empty", got)
	}
}
