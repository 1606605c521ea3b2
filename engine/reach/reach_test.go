package reach

import (
	"testing"

	"github.com/nathoo/trackcore/engine/rules"
	"github.com/nathoo/trackcore/helpers"
	"github.com/nathoo/trackcore/types"
	"github.com/nathoo/trackcore/world"
)

func itemRule(name string) *types.RuleNode {
	return &types.RuleNode{Type: types.NodeItemCheck, Item: name}
}

// chainWorld builds menu -> field -> castle, with the castle gated on a
// sword, plus a free and a gated chest.
func chainWorld() *world.Bundle {
	return &world.Bundle{
		Title: "Test Title",
		Start: []string{"menu"},
		Regions: map[string]types.Region{
			"menu": {Name: "menu", Exits: []types.Exit{
				{Name: "to field", ConnectedRegion: "field"},
			}},
			"field": {
				Name: "field",
				Exits: []types.Exit{
					{Name: "castle gate", ConnectedRegion: "castle", AccessRule: itemRule("Sword")},
				},
				Locations: []types.Location{
					{Name: "Field Chest"},
				},
			},
			"castle": {
				Name: "castle",
				Locations: []types.Location{
					{Name: "Throne Chest", AccessRule: itemRule("Small Key")},
				},
			},
		},
		Locations: map[string]world.LocationRef{
			"Field Chest":  {Location: types.Location{Name: "Field Chest"}, Region: "field"},
			"Throne Chest": {Location: types.Location{Name: "Throne Chest", AccessRule: itemRule("Small Key")}, Region: "castle"},
		},
	}
}

func newCtx(w *world.Bundle) *rules.Context {
	return rules.NewContext(types.NewSnapshot(), w, helpers.NewRegistry(), nil)
}

func TestCompute_GatedChain(t *testing.T) {
	w := chainWorld()
	ctx := newCtx(w)

	res := Compute(w, ctx)
	wantRegions := map[string]types.Reachability{
		"menu":   types.Reachable,
		"field":  types.Reachable,
		"castle": types.Unreachable,
	}
	for name, want := range wantRegions {
		if got := res.Regions[name]; got != want {
			t.Errorf("region %s = %v, want %v", name, got, want)
		}
	}
	if got := res.Locations["Field Chest"]; got != types.Reachable {
		t.Errorf("Field Chest = %v, want reachable", got)
	}
	if got := res.Locations["Throne Chest"]; got != types.Unreachable {
		t.Errorf("Throne Chest = %v, want unreachable", got)
	}

	// Collecting the sword opens the castle; the throne chest stays gated on
	// its own key.
	ctx.Snap.Inventory["Sword"] = 1
	ctx.Snap.Version++
	res = Compute(w, ctx)
	if got := res.Regions["castle"]; got != types.Reachable {
		t.Errorf("castle with sword = %v, want reachable", got)
	}
	if got := res.Locations["Throne Chest"]; got != types.Unreachable {
		t.Errorf("Throne Chest without key = %v, want unreachable", got)
	}

	ctx.Snap.Inventory["Small Key"] = 1
	ctx.Snap.Version++
	res = Compute(w, ctx)
	if got := res.Locations["Throne Chest"]; got != types.Reachable {
		t.Errorf("Throne Chest with key = %v, want reachable", got)
	}
}

func TestCompute_WritesDerivedState(t *testing.T) {
	w := chainWorld()
	ctx := newCtx(w)

	Compute(w, ctx)
	if ctx.Snap.Regions["field"] != types.Reachable {
		t.Errorf("snapshot regions not updated: %v", ctx.Snap.Regions)
	}
	if ctx.Snap.Locations["Field Chest"] != types.Reachable {
		t.Errorf("snapshot locations not updated: %v", ctx.Snap.Locations)
	}
}

func TestCompute_Cycle(t *testing.T) {
	w := &world.Bundle{
		Title: "Test Title",
		Start: []string{"a"},
		Regions: map[string]types.Region{
			"a": {Name: "a", Exits: []types.Exit{{Name: "ab", ConnectedRegion: "b"}}},
			"b": {Name: "b", Exits: []types.Exit{{Name: "ba", ConnectedRegion: "a"}, {Name: "bc", ConnectedRegion: "c"}}},
			"c": {Name: "c", Exits: []types.Exit{{Name: "cb", ConnectedRegion: "b"}}},
		},
	}
	res := Compute(w, newCtx(w))
	for _, name := range []string{"a", "b", "c"} {
		if got := res.Regions[name]; got != types.Reachable {
			t.Errorf("region %s = %v, want reachable", name, got)
		}
	}
	if res.Passes == 0 {
		t.Errorf("Passes = 0, want at least one pass")
	}
}

func TestCompute_UnconnectedRegion(t *testing.T) {
	w := chainWorld()
	w.Regions["island"] = types.Region{Name: "island"}

	res := Compute(w, newCtx(w))
	if got := res.Regions["island"]; got != types.Unreachable {
		t.Errorf("island = %v, want unreachable", got)
	}
}

func TestCompute_DanglingExitSkipped(t *testing.T) {
	w := chainWorld()
	menu := w.Regions["menu"]
	menu.Exits = append(menu.Exits, types.Exit{Name: "void door", ConnectedRegion: "void"})
	w.Regions["menu"] = menu

	res := Compute(w, newCtx(w))
	if _, ok := res.Regions["void"]; ok {
		t.Errorf("dangling target got a reachability entry")
	}
	if got := res.Regions["field"]; got != types.Reachable {
		t.Errorf("field = %v, want reachable despite dangling sibling edge", got)
	}
}

// Exit rules may read region reachability computed in an earlier pass; the
// fixed point must keep iterating until such rules settle.
func TestCompute_MultiPassConvergence(t *testing.T) {
	reachRule := &types.RuleNode{Type: types.NodeStateMethod, Name: "region_reachable",
		Args: []types.RuleNode{{Type: types.NodeConstant, Value: "far"}}}
	w := &world.Bundle{
		Title: "Test Title",
		Start: []string{"start"},
		Regions: map[string]types.Region{
			"start": {Name: "start", Exits: []types.Exit{
				{Name: "to near", ConnectedRegion: "near"},
				{Name: "warp", ConnectedRegion: "bonus", AccessRule: reachRule},
			}},
			"near":  {Name: "near", Exits: []types.Exit{{Name: "to far", ConnectedRegion: "far"}}},
			"far":   {Name: "far"},
			"bonus": {Name: "bonus"},
		},
	}

	res := Compute(w, newCtx(w))
	if got := res.Regions["bonus"]; got != types.Reachable {
		t.Errorf("bonus = %v, want reachable once far settles", got)
	}
	if res.Passes < 2 {
		t.Errorf("Passes = %d, want at least 2 for a dependent rule", res.Passes)
	}
}

func TestCompute_EmptyWorld(t *testing.T) {
	res := Compute(nil, nil)
	if len(res.Regions) != 0 || len(res.Locations) != 0 {
		t.Errorf("empty compute produced entries: %v %v", res.Regions, res.Locations)
	}

	w := &world.Bundle{Title: "Test Title", Regions: map[string]types.Region{}}
	res = Compute(w, newCtx(w))
	if len(res.Regions) != 0 {
		t.Errorf("no-region world produced entries: %v", res.Regions)
	}
}

func TestCompute_StartRegionMissing(t *testing.T) {
	w := chainWorld()
	w.Start = []string{"nowhere"}

	res := Compute(w, newCtx(w))
	for name, state := range res.Regions {
		if state != types.Unreachable {
			t.Errorf("region %s = %v, want unreachable with no valid start", name, state)
		}
	}
}
