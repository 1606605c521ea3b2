// Package analyze classifies the leaf conditions gating a target region as
// blockers or requirements via hypothetical override re-evaluation: each
// leaf is flipped to its opposite value while every other leaf keeps its
// real result, and the containing rule is re-evaluated to see whether that
// one condition decides the outcome.
package analyze

import (
	"sort"

	"github.com/nathoo/trackcore/engine/rules"
	"github.com/nathoo/trackcore/types"
	"github.com/nathoo/trackcore/world"
)

// classified carries one deduplicated leaf and the strongest classification
// seen for it across entrances.
type classified struct {
	leaf    types.Leaf
	primary bool
	order   int
}

// Analyze walks the access rules of every entrance into target and
// classifies each leaf condition:
//
//	leaf false, override-to-true flips the rule true  -> primary blocker
//	leaf false, no flip                               -> secondary blocker
//	leaf true, override-to-false flips the rule false -> primary requirement
//	leaf true, no flip                                -> secondary requirement
//
// Leaves are deduplicated across entrances by their canonical key; when the
// same condition is primary on one entrance and secondary on another, the
// primary classification wins. A target with no gated entrances yields an
// empty report.
func Analyze(target string, w *world.Bundle, ctx *rules.Context) types.BlockerReport {
	report := types.BlockerReport{Target: target}
	if w == nil || ctx == nil {
		return report
	}

	entrances := w.Entrances(target)
	sort.Slice(entrances, func(i, j int) bool {
		if entrances[i].From != entrances[j].From {
			return entrances[i].From < entrances[j].From
		}
		return entrances[i].Exit.Name < entrances[j].Exit.Name
	})

	blockers := map[string]*classified{}
	requirements := map[string]*classified{}
	order := 0

	for _, entrance := range entrances {
		rule := entrance.Exit.AccessRule
		if rule == nil {
			continue
		}
		base := rules.Truthy(rules.Evaluate(rule, ctx))

		for _, leaf := range collectLeaves(rule) {
			key := rules.LeafKey(leaf)
			satisfied := rules.Truthy(rules.Evaluate(leaf, ctx))

			overridden := rules.Truthy(rules.EvaluateWithOverrides(rule, ctx,
				map[string]bool{key: !satisfied}))

			var primary bool
			if satisfied {
				primary = base && !overridden
			} else {
				primary = !base && overridden
			}

			bucket := blockers
			if satisfied {
				bucket = requirements
			}
			if prev, ok := bucket[key]; ok {
				prev.primary = prev.primary || primary
				continue
			}
			bucket[key] = &classified{
				leaf: types.Leaf{
					Key:       key,
					Type:      leaf.Type,
					Name:      rules.LeafName(leaf),
					Satisfied: satisfied,
				},
				primary: primary,
				order:   order,
			}
			order++
		}
	}

	report.PrimaryBlockers, report.SecondaryBlockers = split(blockers)
	report.PrimaryRequirements, report.SecondaryRequirements = split(requirements)
	return report
}

// collectLeaves gathers the leaf nodes of a rule tree in evaluation order.
// Combinators are recursed into; helper arguments belong to the helper leaf
// itself and are not descended.
func collectLeaves(node *types.RuleNode) []*types.RuleNode {
	var leaves []*types.RuleNode
	walk(node, &leaves)
	return leaves
}

func walk(node *types.RuleNode, leaves *[]*types.RuleNode) {
	if node == nil {
		return
	}
	switch node.Type {
	case types.NodeAnd, types.NodeOr:
		for i := range node.Children {
			walk(&node.Children[i], leaves)
		}
	case types.NodeNot:
		walk(node.Operand, leaves)
	default:
		*leaves = append(*leaves, node)
	}
}

// split partitions a classification bucket into primary and secondary lists,
// preserving first-seen order.
func split(bucket map[string]*classified) (primary, secondary []types.Leaf) {
	all := make([]*classified, 0, len(bucket))
	for _, c := range bucket {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].order < all[j].order })
	for _, c := range all {
		if c.primary {
			primary = append(primary, c.leaf)
		} else {
			secondary = append(secondary, c.leaf)
		}
	}
	return primary, secondary
}
