// Package rules implements the access-rule evaluation engine: a snapshot
// context that resolves items, groups, settings, and helper dispatch, and a
// recursive evaluator over the fixed rule-node vocabulary.
package rules

import (
	"io"
	"log/slog"

	"github.com/nathoo/trackcore/helpers"
	"github.com/nathoo/trackcore/types"
	"github.com/nathoo/trackcore/world"
)

// Context binds one snapshot, one world bundle, and the resolved helper
// registry for the active title. It is a read-only facade: evaluation never
// mutates the snapshot. The diagnostic sink is injected by the caller; a nil
// logger discards diagnostics.
type Context struct {
	Snap     *types.Snapshot
	World    *world.Bundle
	Registry *helpers.Registry
	Log      *slog.Logger

	// Location carries the "current location" for self-referential location
	// rules (e.g. checks against the location's own placed item).
	Location string
}

// NewContext creates a context for the bundle's title.
func NewContext(snap *types.Snapshot, w *world.Bundle, reg *helpers.Registry, log *slog.Logger) *Context {
	return &Context{Snap: snap, World: w, Registry: reg, Log: log}
}

// WithLocation derives a context carrying the given location as current.
func (c *Context) WithLocation(name string) *Context {
	child := *c
	child.Location = name
	return &child
}

func (c *Context) logger() *slog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// HasItem reports whether name is held: a set flag or event, a positive
// inventory count, or a reached progressive tier (the base item's count is
// at least the tier's level, matched by tier name or provides alias).
func (c *Context) HasItem(name string) bool {
	if c.Snap == nil {
		return false
	}
	if c.Snap.Flags[name] || c.Snap.Events[name] {
		return true
	}
	if c.Snap.Inventory[name] > 0 {
		return true
	}
	if c.World != nil {
		if base, tier, ok := c.World.TierFor(name); ok {
			return c.Snap.Inventory[base] >= tier.Level
		}
	}
	return false
}

// CountItem returns the effective count of name. A progressive tier alias
// resolves to 1 when the tier is reached and 0 otherwise; base items
// (progressive or not) return their raw inventory count.
func (c *Context) CountItem(name string) int {
	if c.Snap == nil {
		return 0
	}
	if n, ok := c.Snap.Inventory[name]; ok {
		return n
	}
	if c.World != nil {
		if base, tier, ok := c.World.TierFor(name); ok {
			if c.Snap.Inventory[base] >= tier.Level {
				return 1
			}
			return 0
		}
	}
	return 0
}

// CountGroup sums the inventory counts of every member of the group.
func (c *Context) CountGroup(name string) int {
	if c.Snap == nil || c.World == nil {
		return 0
	}
	total := 0
	for _, member := range c.World.GroupMembers(name) {
		total += c.Snap.Inventory[member]
	}
	return total
}

// Setting reads a value from the active slot's option bag.
func (c *Context) Setting(name string) (any, bool) {
	if c.Snap == nil || c.World == nil {
		return nil, false
	}
	return c.World.Setting(c.Snap.Slot, name)
}

// Invoke dispatches a helper by name for the active title. A missing entry
// returns nil (undefined), which the evaluator treats as false with a
// diagnostic — rule files may reference predicates that are not implemented
// yet, and a crash here would take down the whole reachability pass.
func (c *Context) Invoke(name string, args []any) any {
	if c.Registry == nil || c.World == nil {
		return nil
	}
	fn, ok := c.Registry.Resolve(c.World.Title, name)
	if !ok {
		return nil
	}
	return fn(c.Snap, c.World, args...)
}

// IsRegionReachable reads the derived reachability of a region.
func (c *Context) IsRegionReachable(name string) bool {
	if c.Snap == nil {
		return false
	}
	return c.Snap.Regions[name] == types.Reachable
}

// IsLocationAccessible reports whether a location is currently checkable:
// its owning region is reachable and its own access rule (if any) holds,
// evaluated with the location carried as current.
func (c *Context) IsLocationAccessible(name string) bool {
	if c.Snap == nil || c.World == nil {
		return false
	}
	loc, ok := c.World.Location(name)
	if !ok {
		return false
	}
	if c.Snap.Regions[loc.Region] != types.Reachable {
		return false
	}
	if loc.AccessRule == nil {
		return true
	}
	return EvaluateBool(loc.AccessRule, c.WithLocation(name))
}

// CurrentPlacedItem returns the placed item of the current location, for
// self-referential state methods. Empty when no location is current.
func (c *Context) CurrentPlacedItem() string {
	if c.Location == "" || c.World == nil {
		return ""
	}
	loc, ok := c.World.Location(c.Location)
	if !ok {
		return ""
	}
	return loc.PlacedItem
}
