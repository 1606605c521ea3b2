package helpers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nathoo/trackcore/types"
	"github.com/nathoo/trackcore/world"
)

func luaTestBundle() *world.Bundle {
	return &world.Bundle{
		Title: "Test Title",
		Settings: map[string]map[string]any{
			"Player1": {"logic": "glitchless"},
		},
		Progression: map[string][]world.Tier{
			"Progressive Sword": {
				{Level: 1, Name: "Fighter Sword"},
				{Level: 2, Name: "Master Sword"},
			},
		},
		Groups: map[string][]string{
			"Bottles": {"Red Bottle", "Blue Bottle"},
		},
	}
}

func TestLoadLuaSource_RegistersHelpers(t *testing.T) {
	reg := NewRegistry()
	src := `
Helper("can_cross_water", function()
  return has("Flippers") or has("Hookshot")
end)

Helper("bottle_total", function()
  return count_group("Bottles")
end)
`
	if err := LoadLuaSource(reg, "Test Title", src); err != nil {
		t.Fatalf("LoadLuaSource() error: %v", err)
	}
	for _, name := range []string{"can_cross_water", "bottle_total"} {
		if !reg.Has("Test Title", name) {
			t.Errorf("helper %q not registered", name)
		}
	}
}

func TestLuaHelper_SnapshotAccessors(t *testing.T) {
	reg := NewRegistry()
	src := `
Helper("probe", function(kind)
  if kind == "has" then return has("Hookshot") end
  if kind == "tier" then return has("Master Sword") end
  if kind == "count" then return count("Rupee") end
  if kind == "group" then return count_group("Bottles") end
  if kind == "flag" then return flag("lamp_lit") end
  if kind == "setting" then return setting("logic") end
  return nil
end)
`
	if err := LoadLuaSource(reg, "Test Title", src); err != nil {
		t.Fatalf("LoadLuaSource() error: %v", err)
	}
	fn, _ := reg.Resolve("Test Title", "probe")

	w := luaTestBundle()
	snap := types.NewSnapshot()
	snap.Slot = "Player1"
	snap.Inventory["Hookshot"] = 1
	snap.Inventory["Rupee"] = 40
	snap.Inventory["Red Bottle"] = 2
	snap.Inventory["Progressive Sword"] = 2
	snap.Flags["lamp_lit"] = true

	tests := []struct {
		name string
		kind string
		want any
	}{
		{"has", "has", true},
		{"progressive tier", "tier", true},
		{"count", "count", 40},
		{"group count", "group", 2},
		{"flag", "flag", true},
		{"setting", "setting", "glitchless"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fn(snap, w, tt.kind); got != tt.want {
				t.Errorf("probe(%q) = %v, want %v", tt.kind, got, tt.want)
			}
		})
	}
}

func TestLuaHelper_ArgumentsRoundTrip(t *testing.T) {
	reg := NewRegistry()
	src := `
Helper("at_least", function(item, n)
  return count(item) >= n
end)
`
	if err := LoadLuaSource(reg, "Test Title", src); err != nil {
		t.Fatalf("LoadLuaSource() error: %v", err)
	}
	fn, _ := reg.Resolve("Test Title", "at_least")

	snap := types.NewSnapshot()
	snap.Inventory["Bomb"] = 5
	if got := fn(snap, luaTestBundle(), "Bomb", 5); got != true {
		t.Errorf("at_least(Bomb, 5) = %v, want true", got)
	}
	if got := fn(snap, luaTestBundle(), "Bomb", 6); got != false {
		t.Errorf("at_least(Bomb, 6) = %v, want false", got)
	}
}

func TestLuaHelper_RuntimeErrorFailsClosed(t *testing.T) {
	reg := NewRegistry()
	src := `
Helper("broken", function()
  error("helper bug")
end)
`
	if err := LoadLuaSource(reg, "Test Title", src); err != nil {
		t.Fatalf("LoadLuaSource() error: %v", err)
	}
	fn, _ := reg.Resolve("Test Title", "broken")
	if got := fn(types.NewSnapshot(), luaTestBundle()); got != false {
		t.Errorf("broken helper = %v, want false", got)
	}
}

func TestLoadLuaSource_SyntaxError(t *testing.T) {
	reg := NewRegistry()
	if err := LoadLuaSource(reg, "Test Title", "Helper(nope"); err == nil {
		t.Errorf("LoadLuaSource() accepted invalid source")
	}
}

func TestLuaSandbox_HostAccessRemoved(t *testing.T) {
	reg := NewRegistry()
	src := `
Helper("escape", function()
  return dofile ~= nil or loadstring ~= nil or os ~= nil or io ~= nil
end)
`
	if err := LoadLuaSource(reg, "Test Title", src); err != nil {
		t.Fatalf("LoadLuaSource() error: %v", err)
	}
	fn, _ := reg.Resolve("Test Title", "escape")
	if got := fn(types.NewSnapshot(), luaTestBundle()); got != false {
		t.Errorf("sandboxed VM still exposes host globals")
	}
}

func TestLoadLuaDir(t *testing.T) {
	dir := t.TempDir()
	src := `Helper("from_file", function() return true end)`
	if err := os.WriteFile(filepath.Join(dir, "helpers.lua"), []byte(src), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	reg := NewRegistry()
	if err := LoadLuaDir(reg, "Test Title", dir); err != nil {
		t.Fatalf("LoadLuaDir() error: %v", err)
	}
	if !reg.Has("Test Title", "from_file") {
		t.Errorf("helper from file not registered")
	}
}

func TestLoadLuaDir_NoFiles(t *testing.T) {
	reg := NewRegistry()
	if err := LoadLuaDir(reg, "Test Title", t.TempDir()); err == nil {
		t.Errorf("LoadLuaDir() accepted a directory with no .lua files")
	}
}
