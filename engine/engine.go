// Package engine wires the snapshot, world bundle, and helper registry into
// a single tracking session: it owns the only mutable snapshot, recomputes
// reachability after every change, and exposes the evaluation, path, and
// blocker entry points.
package engine

import (
	"log/slog"
	"sort"

	"github.com/nathoo/trackcore/engine/analyze"
	"github.com/nathoo/trackcore/engine/paths"
	"github.com/nathoo/trackcore/engine/reach"
	"github.com/nathoo/trackcore/engine/rules"
	"github.com/nathoo/trackcore/helpers"
	"github.com/nathoo/trackcore/types"
	"github.com/nathoo/trackcore/world"
)

// Engine holds the immutable world, the helper registry, and the mutable
// snapshot. All computation is synchronous: mutation happens only through
// the engine's methods, never concurrently with an in-flight evaluation.
type Engine struct {
	World    *world.Bundle
	Registry *helpers.Registry
	Snap     *types.Snapshot
	Log      *slog.Logger

	memo *rules.Memo
	last reach.Result
}

// New creates an engine with an empty snapshot and computes the initial
// reachability state.
func New(w *world.Bundle, reg *helpers.Registry, log *slog.Logger) *Engine {
	e := &Engine{
		World:    w,
		Registry: reg,
		Snap:     types.NewSnapshot(),
		Log:      log,
		memo:     rules.NewMemo(),
	}
	e.Refresh()
	return e
}

// Context returns an evaluation context over the engine's snapshot. Callers
// must treat the snapshot as frozen for the duration of any evaluation.
func (e *Engine) Context() *rules.Context {
	return rules.NewContext(e.Snap, e.World, e.Registry, e.Log)
}

// Collect adds one copy of an item and recomputes reachability.
func (e *Engine) Collect(item string) {
	e.CollectN(item, 1)
}

// CollectN adds n copies of an item and recomputes reachability.
func (e *Engine) CollectN(item string, n int) {
	if item == "" || n <= 0 {
		return
	}
	e.Snap.Inventory[item] += n
	e.bump()
}

// Remove takes away up to n copies of an item and recomputes reachability.
func (e *Engine) Remove(item string, n int) {
	if item == "" || n <= 0 {
		return
	}
	have := e.Snap.Inventory[item]
	if have <= n {
		delete(e.Snap.Inventory, item)
	} else {
		e.Snap.Inventory[item] = have - n
	}
	e.bump()
}

// SetFlag sets or clears a one-shot world flag and recomputes reachability.
func (e *Engine) SetFlag(name string, value bool) {
	if name == "" {
		return
	}
	if value {
		e.Snap.Flags[name] = true
	} else {
		delete(e.Snap.Flags, name)
	}
	e.bump()
}

// SetEvent records a one-shot world event and recomputes reachability.
func (e *Engine) SetEvent(name string) {
	if name == "" || e.Snap.Events[name] {
		return
	}
	e.Snap.Events[name] = true
	e.bump()
}

// SetSlot selects the active player's settings slot.
func (e *Engine) SetSlot(slot string) {
	if e.Snap.Slot == slot {
		return
	}
	e.Snap.Slot = slot
	e.bump()
}

// ReplaceSnapshot installs a restored snapshot wholesale (load-game path)
// and recomputes reachability.
func (e *Engine) ReplaceSnapshot(snap *types.Snapshot) {
	if snap == nil {
		return
	}
	e.Snap = snap
	e.bump()
}

// ReplaceWorld swaps in a reloaded world bundle. The old bundle is never
// mutated; cached rule results are dropped because node identities changed.
func (e *Engine) ReplaceWorld(w *world.Bundle) {
	e.World = w
	e.memo.Reset()
	e.bump()
}

func (e *Engine) bump() {
	e.Snap.Version++
	e.Refresh()
}

// Refresh recomputes region and location reachability for the current
// snapshot and stores the derived state on it.
func (e *Engine) Refresh() reach.Result {
	e.last = reach.Compute(e.World, e.Context())
	return e.last
}

// Reachability returns the last computed reachability result.
func (e *Engine) Reachability() reach.Result {
	return e.last
}

// Evaluate evaluates a rule tree against the current snapshot. Results are
// memoized per (rule identity, snapshot version).
func (e *Engine) Evaluate(node *types.RuleNode) any {
	return e.memo.Evaluate(node, e.Context())
}

// FindPaths enumerates candidate routes to target in the given mode.
func (e *Engine) FindPaths(target string, mode paths.Mode, opts paths.Options) paths.Result {
	return paths.Find(target, e.World, e.Context(), mode, opts)
}

// AnalyzeBlockers classifies the conditions gating every entrance into
// target against the current snapshot.
func (e *Engine) AnalyzeBlockers(target string) types.BlockerReport {
	return analyze.Analyze(target, e.World, e.Context())
}

// ReachableRegions returns the sorted names of currently reachable regions.
func (e *Engine) ReachableRegions() []string {
	var out []string
	for name, state := range e.Snap.Regions {
		if state == types.Reachable {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// AccessibleLocations returns the sorted names of currently checkable
// locations.
func (e *Engine) AccessibleLocations() []string {
	var out []string
	for name, state := range e.Snap.Locations {
		if state == types.Reachable {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
