// Package world holds the immutable static world bundle: the region graph,
// settings, progression mappings, and item groups loaded once per session.
// A Bundle is never mutated after construction — reloads replace it wholesale.
package world

import "github.com/nathoo/trackcore/types"

// Tier is one step of a progressive item's upgrade ladder. A tier is held
// iff the base item's inventory count is at least Level. Levels are strictly
// increasing per base item (the loader enforces this).
type Tier struct {
	Level    int      `json:"level"`
	Name     string   `json:"name"`
	Provides []string `json:"provides,omitempty"`
}

// LocationRef is a flattened location together with its owning region.
type LocationRef struct {
	types.Location
	Region string
}

// Bundle is the static world for one title: regions, flattened locations,
// per-slot settings, progression mappings, and item groups.
type Bundle struct {
	Title       string
	Start       []string
	Regions     map[string]types.Region
	Locations   map[string]LocationRef
	Settings    map[string]map[string]any
	Progression map[string][]Tier
	Groups      map[string][]string
}

// Region returns the region by name.
func (b *Bundle) Region(name string) (types.Region, bool) {
	r, ok := b.Regions[name]
	return r, ok
}

// Location returns the flattened location by name.
func (b *Bundle) Location(name string) (LocationRef, bool) {
	l, ok := b.Locations[name]
	return l, ok
}

// Setting returns a setting value from the given slot's option bag.
func (b *Bundle) Setting(slot, name string) (any, bool) {
	bag, ok := b.Settings[slot]
	if !ok {
		return nil, false
	}
	v, ok := bag[name]
	return v, ok
}

// TierFor resolves name as a progressive tier alias. It returns the base
// item and the matching tier when name is a tier's own name or appears in a
// tier's provides list.
func (b *Bundle) TierFor(name string) (base string, tier Tier, ok bool) {
	for item, tiers := range b.Progression {
		for _, t := range tiers {
			if t.Name == name {
				return item, t, true
			}
			for _, p := range t.Provides {
				if p == name {
					return item, t, true
				}
			}
		}
	}
	return "", Tier{}, false
}

// GroupMembers returns the member items of a group, or nil if undefined.
func (b *Bundle) GroupMembers(name string) []string {
	return b.Groups[name]
}

// Entrances returns every exit across the graph that leads into target,
// paired with its owning region. Exit order follows region declaration order
// within each region; callers needing global determinism sort region names.
func (b *Bundle) Entrances(target string) []Entrance {
	var in []Entrance
	for _, region := range b.Regions {
		for _, exit := range region.Exits {
			if exit.ConnectedRegion == target {
				in = append(in, Entrance{From: region.Name, Exit: exit})
			}
		}
	}
	return in
}

// Entrance is an inbound edge: an exit together with its owning region.
type Entrance struct {
	From string
	Exit types.Exit
}
