package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/trackcore/helpers"
	"github.com/nathoo/trackcore/types"
	"github.com/nathoo/trackcore/world"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Known rule node type tags.
var validNodeTypes = map[string]bool{
	types.NodeConstant:    true,
	types.NodeItemCheck:   true,
	types.NodeCountCheck:  true,
	types.NodeGroupCheck:  true,
	types.NodeHelper:      true,
	types.NodeStateMethod: true,
	types.NodeAnd:         true,
	types.NodeOr:          true,
	types.NodeNot:         true,
	types.NodeSetting:     true,
}

// Built-in state methods resolved without a registry entry.
var builtinStateMethods = map[string]bool{
	"has":                 true,
	"count":               true,
	"count_group":         true,
	"region_reachable":    true,
	"location_accessible": true,
	"placed_item_is":      true,
}

// validate checks the compiled bundle for referential integrity. Structural
// problems are errors; conditions the evaluator already fails closed on
// (unknown tags, unresolved helper names) are warnings.
func validate(b *world.Bundle, reg *helpers.Registry) *ValidationError {
	ve := &ValidationError{}

	if len(b.Regions) == 0 {
		ve.Errors = append(ve.Errors, "world defines no regions")
	}

	if len(b.Start) == 0 {
		ve.Errors = append(ve.Errors, "world defines no start regions")
	}
	for _, start := range b.Start {
		if _, ok := b.Regions[start]; !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"start region %q not found in defined regions", start))
		}
	}

	names := make([]string, 0, len(b.Regions))
	for name := range b.Regions {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		region := b.Regions[name]
		for _, exit := range region.Exits {
			if _, ok := b.Regions[exit.ConnectedRegion]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"region %q exit %q points to undefined region %q",
					name, exit.Name, exit.ConnectedRegion))
			}
			validateRule(exit.AccessRule, b, reg,
				fmt.Sprintf("region %q exit %q", name, exit.Name), ve)
		}
		for _, loc := range region.Locations {
			validateRule(loc.AccessRule, b, reg,
				fmt.Sprintf("location %q", loc.Name), ve)
		}
	}

	for item, tiers := range b.Progression {
		prev := 0
		for _, tier := range tiers {
			if tier.Level <= prev {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"progression for %q: tier %q level %d not strictly increasing",
					item, tier.Name, tier.Level))
			}
			prev = tier.Level
		}
	}

	return ve
}

// validateRule walks a rule tree, warning about unknown type tags and helper
// or state-method names nothing resolves. Those are data conditions: rule
// files reference predicates across many independently authored titles, and
// the evaluator treats them as "not currently satisfied" rather than
// failing the load.
func validateRule(node *types.RuleNode, b *world.Bundle, reg *helpers.Registry, where string, ve *ValidationError) {
	if node == nil {
		return
	}

	if !validNodeTypes[node.Type] {
		ve.Warnings = append(ve.Warnings, fmt.Sprintf(
			"%s: unknown rule node type %q (will evaluate false)", where, node.Type))
		return
	}

	switch node.Type {
	case types.NodeHelper:
		if reg != nil && !reg.Has(b.Title, node.Name) {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"%s: unresolved helper %q (will evaluate false)", where, node.Name))
		}
	case types.NodeStateMethod:
		if reg != nil && !builtinStateMethods[node.Name] && !reg.Has(b.Title, node.Name) {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"%s: unresolved state method %q (will evaluate false)", where, node.Name))
		}
	case types.NodeGroupCheck:
		if len(b.GroupMembers(node.Group)) == 0 {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"%s: group %q has no members", where, node.Group))
		}
	}

	for i := range node.Args {
		validateRule(&node.Args[i], b, reg, where, ve)
	}
	for i := range node.Children {
		validateRule(&node.Children[i], b, reg, where, ve)
	}
	validateRule(node.Operand, b, reg, where, ve)
}
