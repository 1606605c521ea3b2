// Package reach computes the fixed-point reachability of regions and
// locations under one frozen snapshot.
package reach

import (
	"sort"

	"github.com/nathoo/trackcore/engine/rules"
	"github.com/nathoo/trackcore/types"
	"github.com/nathoo/trackcore/world"
)

// Result is the stable reachability assignment of one pass. The maps are the
// same maps written into the snapshot's derived state.
type Result struct {
	Regions   map[string]types.Reachability
	Locations map[string]types.Reachability
	Passes    int
}

// Compute runs worklist passes over the region graph until no region
// changes. All regions start unknown except the declared start regions;
// a region becomes reachable when any exit from an already-reachable region
// into it has no access rule or a rule evaluating true. Within one call a
// region is never demoted, so the pass count is bounded by the region count.
// Remaining unknown regions are marked unreachable at the fixed point.
//
// The derived maps are written into ctx's snapshot so that location rules
// and state methods can read region reachability through the context.
// A nil or empty world yields empty results, not an error.
func Compute(w *world.Bundle, ctx *rules.Context) Result {
	res := Result{
		Regions:   map[string]types.Reachability{},
		Locations: map[string]types.Reachability{},
	}
	if w == nil || ctx == nil || ctx.Snap == nil || len(w.Regions) == 0 {
		return res
	}

	snap := ctx.Snap
	snap.Regions = res.Regions
	snap.Locations = res.Locations

	for _, start := range w.Start {
		if _, ok := w.Regions[start]; ok {
			res.Regions[start] = types.Reachable
		}
	}

	// Deterministic scan order across passes.
	names := make([]string, 0, len(w.Regions))
	for name := range w.Regions {
		names = append(names, name)
	}
	sort.Strings(names)

	for changed := true; changed; {
		changed = false
		res.Passes++

		// Rule results hold only within one pass: each pass can see more
		// reachable regions than the last, so the memo is per-pass.
		memo := rules.NewMemo()

		for _, name := range names {
			if res.Regions[name] != types.Reachable {
				continue
			}
			region := w.Regions[name]
			for i := range region.Exits {
				exit := &region.Exits[i]
				if res.Regions[exit.ConnectedRegion] == types.Reachable {
					continue
				}
				if _, ok := w.Regions[exit.ConnectedRegion]; !ok {
					// Dangling edge in the export. The loader warns; here we
					// just skip it.
					continue
				}
				if exit.AccessRule == nil || memo.EvaluateBool(exit.AccessRule, ctx) {
					res.Regions[exit.ConnectedRegion] = types.Reachable
					changed = true
				}
			}
		}
	}

	for _, name := range names {
		if res.Regions[name] != types.Reachable {
			res.Regions[name] = types.Unreachable
		}
	}

	for name, ref := range w.Locations {
		if res.Regions[ref.Region] != types.Reachable {
			res.Locations[name] = types.Unreachable
			continue
		}
		if ref.AccessRule == nil || rules.EvaluateBool(ref.AccessRule, ctx.WithLocation(name)) {
			res.Locations[name] = types.Reachable
		} else {
			res.Locations[name] = types.Unreachable
		}
	}

	return res
}
