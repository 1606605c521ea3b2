// Package types defines the shared data structures for the trackcore engine.
// This package contains only type definitions and trivial accessors — no logic.
package types

// Rule node type tags, matching the exported rules wire format.
const (
	NodeConstant    = "constant"
	NodeItemCheck   = "item_check"
	NodeCountCheck  = "count_check"
	NodeGroupCheck  = "group_check"
	NodeHelper      = "helper"
	NodeStateMethod = "state_method"
	NodeAnd         = "and"
	NodeOr          = "or"
	NodeNot         = "not"
	NodeSetting     = "setting_check"
)

// RuleNode is one node of an access-rule tree. It is a tagged union over the
// fixed node vocabulary: only the fields relevant to Type are populated.
// Trees are acyclic and carry no back-references. Helper and state-method
// arguments are themselves rule nodes; the loader lowers literal scalars in
// the wire format into constant nodes.
type RuleNode struct {
	Type string `json:"type"`

	Value any `json:"value,omitempty"` // constant

	Item  string `json:"item,omitempty"`  // item_check, count_check
	Group string `json:"group,omitempty"` // group_check
	Count int    `json:"count,omitempty"` // count_check, group_check (default 1)

	Name string     `json:"name,omitempty"` // helper, state_method
	Args []RuleNode `json:"args,omitempty"` // helper, state_method

	Children []RuleNode `json:"children,omitempty"` // and, or
	Operand  *RuleNode  `json:"operand,omitempty"`  // not

	Setting  string `json:"setting,omitempty"`  // setting_check
	Expected any    `json:"expected,omitempty"` // setting_check
}

// IsLeaf reports whether the node is a leaf condition for blocker analysis.
// and/or/not are combinators, never leaves.
func (n *RuleNode) IsLeaf() bool {
	switch n.Type {
	case NodeAnd, NodeOr, NodeNot:
		return false
	default:
		return true
	}
}

// Exit is a directed edge from its owning region to ConnectedRegion,
// optionally gated by an access rule. A nil rule means always passable.
type Exit struct {
	Name            string    `json:"name"`
	ConnectedRegion string    `json:"connected_region"`
	AccessRule      *RuleNode `json:"access_rule,omitempty"`
}

// Location is a checkable point within a region.
type Location struct {
	Name       string    `json:"name"`
	AccessRule *RuleNode `json:"access_rule,omitempty"`
	PlacedItem string    `json:"item,omitempty"`
}

// Region is a named node in the world graph. Exits keep their declared order.
type Region struct {
	Name      string     `json:"name"`
	Exits     []Exit     `json:"exits,omitempty"`
	Locations []Location `json:"locations,omitempty"`
}

// Reachability is the tri-state outcome of a reachability pass.
type Reachability int8

const (
	Unknown Reachability = iota
	Reachable
	Unreachable
)

func (r Reachability) String() string {
	switch r {
	case Reachable:
		return "reachable"
	case Unreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Snapshot is the mutable inventory/progress state for one player. It is a
// plain value: all derived caches live in the evaluator, keyed by Version.
// Mutation happens exclusively through the owning engine between evaluation
// calls; consumers must treat a snapshot as frozen for the duration of any
// evaluation.
type Snapshot struct {
	Inventory map[string]int  `json:"inventory"`
	Flags     map[string]bool `json:"flags,omitempty"`
	Events    map[string]bool `json:"events,omitempty"`
	Slot      string          `json:"slot,omitempty"`

	// Derived per-pass reachability state.
	Regions   map[string]Reachability `json:"regions,omitempty"`
	Locations map[string]Reachability `json:"locations,omitempty"`

	// Version increments on every mutation. Cached derived values are keyed
	// by it and never stored on the snapshot itself.
	Version uint64 `json:"version"`
}

// NewSnapshot creates an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Inventory: map[string]int{},
		Flags:     map[string]bool{},
		Events:    map[string]bool{},
		Regions:   map[string]Reachability{},
		Locations: map[string]Reachability{},
	}
}

// PathStep is one traversed exit within a path. Satisfied records whether the
// exit's access rule held under the snapshot the search ran against, so
// permissive-mode paths can show exactly which edges are blocked.
type PathStep struct {
	From      string `json:"from"`
	Exit      string `json:"exit"`
	To        string `json:"to"`
	Satisfied bool   `json:"satisfied"`
}

// Path is a simple region-to-region path: no region repeats.
type Path struct {
	Regions []string   `json:"regions"`
	Steps   []PathStep `json:"steps"`
}

// Satisfied reports whether every step of the path is currently passable.
func (p Path) Satisfied() bool {
	for _, s := range p.Steps {
		if !s.Satisfied {
			return false
		}
	}
	return true
}

// Leaf identifies one leaf condition of a rule tree for blocker reporting.
// Key is the canonical (type, name, serialized-args) identity used to
// deduplicate repeated sub-conditions across entrances.
type Leaf struct {
	Key       string `json:"key"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	Satisfied bool   `json:"satisfied"`
}

// BlockerReport classifies the leaf conditions of every entrance into a
// target region. Blockers currently prevent access; requirements currently
// enable it. Primary entries flip the containing rule when overridden.
type BlockerReport struct {
	Target                string `json:"target"`
	PrimaryBlockers       []Leaf `json:"primary_blockers,omitempty"`
	SecondaryBlockers     []Leaf `json:"secondary_blockers,omitempty"`
	PrimaryRequirements   []Leaf `json:"primary_requirements,omitempty"`
	SecondaryRequirements []Leaf `json:"secondary_requirements,omitempty"`
}
