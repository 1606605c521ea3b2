// Package snap implements JSON serialization of tracking progress, so a
// session can be saved and restored. Derived reachability is not persisted:
// it is recomputed on restore.
package snap

import (
	"encoding/json"
	"fmt"

	"github.com/nathoo/trackcore/types"
)

// FormatVersion guards against loading saves from an incompatible layout.
const FormatVersion = 1

// SaveData is the JSON-serializable progress format.
type SaveData struct {
	Format    int             `json:"format"`
	Title     string          `json:"title"`
	Slot      string          `json:"slot,omitempty"`
	Inventory map[string]int  `json:"inventory"`
	Flags     map[string]bool `json:"flags,omitempty"`
	Events    map[string]bool `json:"events,omitempty"`
}

// Save serializes a snapshot's progress to JSON bytes.
func Save(s *types.Snapshot, title string) ([]byte, error) {
	data := SaveData{
		Format:    FormatVersion,
		Title:     title,
		Slot:      s.Slot,
		Inventory: s.Inventory,
		Flags:     s.Flags,
		Events:    s.Events,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into a fresh snapshot.
func Load(data []byte) (*types.Snapshot, string, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, "", err
	}
	if sd.Format != FormatVersion {
		return nil, "", fmt.Errorf("unsupported save format %d (want %d)", sd.Format, FormatVersion)
	}

	s := types.NewSnapshot()
	s.Slot = sd.Slot
	if sd.Inventory != nil {
		s.Inventory = sd.Inventory
	}
	if sd.Flags != nil {
		s.Flags = sd.Flags
	}
	if sd.Events != nil {
		s.Events = sd.Events
	}
	return s, sd.Title, nil
}
