package snap

import (
	"strings"
	"testing"

	"github.com/nathoo/trackcore/types"
)

func TestSaveAndLoad(t *testing.T) {
	s := types.NewSnapshot()
	s.Slot = "Player1"
	s.Inventory["Sword"] = 2
	s.Flags["lamp_lit"] = true
	s.Events["boss_defeated"] = true
	s.Regions["field"] = types.Reachable
	s.Version = 7

	data, err := Save(s, "Test Title")
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	restored, title, err := Load(data)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if title != "Test Title" {
		t.Errorf("title = %q, want Test Title", title)
	}
	if restored.Slot != "Player1" {
		t.Errorf("Slot = %q", restored.Slot)
	}
	if restored.Inventory["Sword"] != 2 {
		t.Errorf("Inventory = %v", restored.Inventory)
	}
	if !restored.Flags["lamp_lit"] || !restored.Events["boss_defeated"] {
		t.Errorf("flags/events lost: %v %v", restored.Flags, restored.Events)
	}

	// Derived state is never persisted; it is recomputed on restore.
	if len(restored.Regions) != 0 {
		t.Errorf("derived regions persisted: %v", restored.Regions)
	}
	if strings.Contains(string(data), "field") {
		t.Errorf("save data carries derived reachability: %s", data)
	}
}

func TestLoad_EmptySections(t *testing.T) {
	data := []byte(`{"format": 1, "title": "T", "inventory": null}`)
	restored, _, err := Load(data)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	// Maps stay usable even when the save omits them.
	restored.Inventory["Sword"]++
	restored.Flags["f"] = true
	restored.Events["e"] = true
}

func TestLoad_BadData(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{"format":`},
		{"future format", `{"format": 99, "title": "T"}`},
		{"zero format", `{"title": "T"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Load([]byte(tt.data)); err == nil {
				t.Errorf("Load() accepted %s", tt.name)
			}
		})
	}
}
