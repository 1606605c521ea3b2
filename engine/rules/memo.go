package rules

import "github.com/nathoo/trackcore/types"

// Memo caches rule evaluation results keyed by (rule identity, snapshot
// version). It is owned by whoever drives evaluation — the snapshot stays a
// plain value with no hidden caches. Stale entries age out naturally: a
// snapshot mutation bumps Version, and old versions stop being queried.
type Memo struct {
	entries map[memoKey]any
}

type memoKey struct {
	node    *types.RuleNode
	version uint64
}

// NewMemo creates an empty memoization table.
func NewMemo() *Memo {
	return &Memo{entries: map[memoKey]any{}}
}

// Evaluate returns the cached result for (node, snapshot version), computing
// and storing it on a miss. Only override-free evaluations are cacheable.
func (m *Memo) Evaluate(node *types.RuleNode, ctx *Context) any {
	if m == nil || node == nil || ctx.Snap == nil {
		return Evaluate(node, ctx)
	}
	key := memoKey{node: node, version: ctx.Snap.Version}
	if v, ok := m.entries[key]; ok {
		return v
	}
	v := Evaluate(node, ctx)
	m.entries[key] = v
	return v
}

// EvaluateBool is Evaluate collapsed to a bool, failing closed on undefined.
func (m *Memo) EvaluateBool(node *types.RuleNode, ctx *Context) bool {
	return Truthy(m.Evaluate(node, ctx))
}

// Reset drops all cached entries. Called on world reload, when rule node
// identities change wholesale.
func (m *Memo) Reset() {
	if m != nil {
		m.entries = map[memoKey]any{}
	}
}
