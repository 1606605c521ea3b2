package rules

import (
	"fmt"
	"strings"

	"github.com/nathoo/trackcore/types"
)

// Evaluate evaluates a rule node against the context. The result is a bool
// or a number; nil means undefined (e.g. an unresolved helper). Evaluation
// is total over the node vocabulary and never panics on well-formed trees;
// an unrecognized type tag evaluates to false with a diagnostic.
func Evaluate(node *types.RuleNode, ctx *Context) any {
	return evaluate(node, ctx, nil)
}

// EvaluateBool evaluates a node and collapses the result to a bool.
// Undefined results are false: evaluation fails closed.
func EvaluateBool(node *types.RuleNode, ctx *Context) bool {
	return Truthy(Evaluate(node, ctx))
}

// EvaluateWithOverrides evaluates a node with selected leaf results forced.
// Overrides are keyed by LeafKey; every leaf not present evaluates normally.
// The blocker analyzer uses this for hypothetical re-evaluation.
func EvaluateWithOverrides(node *types.RuleNode, ctx *Context, overrides map[string]bool) any {
	return evaluate(node, ctx, overrides)
}

func evaluate(node *types.RuleNode, ctx *Context, overrides map[string]bool) any {
	if node == nil {
		// A missing rule gates nothing.
		return true
	}

	if overrides != nil && node.IsLeaf() {
		if forced, ok := overrides[LeafKey(node)]; ok {
			return forced
		}
	}

	switch node.Type {
	case types.NodeConstant:
		if node.Value == nil {
			return false
		}
		return node.Value

	case types.NodeItemCheck, types.NodeCountCheck:
		if node.Count > 1 {
			return ctx.CountItem(node.Item) >= node.Count
		}
		return ctx.HasItem(node.Item)

	case types.NodeGroupCheck:
		need := node.Count
		if need < 1 {
			need = 1
		}
		return ctx.CountGroup(node.Group) >= need

	case types.NodeHelper:
		result := ctx.Invoke(node.Name, evalArgs(node.Args, ctx, overrides))
		if result == nil {
			ctx.logger().Warn("unresolved helper", "name", node.Name, "title", title(ctx))
		}
		return result

	case types.NodeStateMethod:
		return evalStateMethod(node, ctx, overrides)

	case types.NodeAnd:
		for i := range node.Children {
			if !Truthy(evaluate(&node.Children[i], ctx, overrides)) {
				return false
			}
		}
		return true

	case types.NodeOr:
		for i := range node.Children {
			if Truthy(evaluate(&node.Children[i], ctx, overrides)) {
				return true
			}
		}
		return false

	case types.NodeNot:
		v := evaluate(node.Operand, ctx, overrides)
		if v == nil {
			// Undefined stays undefined: not-of-unknown is not "true".
			return nil
		}
		return !Truthy(v)

	case types.NodeSetting:
		v, ok := ctx.Setting(node.Setting)
		if !ok {
			return false
		}
		return looseEqual(v, node.Expected)

	default:
		ctx.logger().Warn("unknown rule node type", "type", node.Type)
		return false
	}
}

// evalStateMethod dispatches the built-in snapshot methods, falling back to
// the helper registry for title-defined state extensions.
func evalStateMethod(node *types.RuleNode, ctx *Context, overrides map[string]bool) any {
	args := evalArgs(node.Args, ctx, overrides)

	switch node.Name {
	case "has":
		return ctx.HasItem(argString(args, 0))
	case "count":
		return ctx.CountItem(argString(args, 0))
	case "count_group":
		return ctx.CountGroup(argString(args, 0))
	case "region_reachable":
		return ctx.IsRegionReachable(argString(args, 0))
	case "location_accessible":
		return ctx.IsLocationAccessible(argString(args, 0))
	case "placed_item_is":
		placed := ctx.CurrentPlacedItem()
		return placed != "" && placed == argString(args, 0)
	}

	result := ctx.Invoke(node.Name, args)
	if result == nil {
		ctx.logger().Warn("unresolved state method", "name", node.Name, "title", title(ctx))
	}
	return result
}

// evalArgs evaluates helper argument nodes. Arguments may be nested rule
// nodes, not only literals; literal scalars arrive as constant nodes.
func evalArgs(args []types.RuleNode, ctx *Context, overrides map[string]bool) []any {
	if len(args) == 0 {
		return nil
	}
	out := make([]any, len(args))
	for i := range args {
		out[i] = evaluate(&args[i], ctx, overrides)
	}
	return out
}

func argString(args []any, i int) string {
	if i >= len(args) {
		return ""
	}
	s, _ := args[i].(string)
	return s
}

// Truthy collapses an evaluation result to a bool: true booleans and
// non-zero numbers pass; undefined (nil) and everything else fail closed.
func Truthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	case string:
		return val != ""
	default:
		return false
	}
}

// looseEqual compares a setting value against an expected value, tolerating
// the int/float64 mismatch JSON and Lua both introduce.
func looseEqual(a, b any) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
		return false
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func title(ctx *Context) string {
	if ctx.World == nil {
		return ""
	}
	return ctx.World.Title
}

// LeafKey returns the canonical (type, name, serialized-args) identity of a
// leaf node. Repeated sub-conditions across entrances share a key, so
// overrides and blocker reports treat them as one condition.
func LeafKey(node *types.RuleNode) string {
	var b strings.Builder
	writeKey(&b, node)
	return b.String()
}

func writeKey(b *strings.Builder, node *types.RuleNode) {
	if node == nil {
		b.WriteString("nil")
		return
	}
	b.WriteString(node.Type)
	switch node.Type {
	case types.NodeConstant:
		fmt.Fprintf(b, "|%v", node.Value)
	case types.NodeItemCheck, types.NodeCountCheck:
		fmt.Fprintf(b, "|%s|%d", node.Item, node.Count)
	case types.NodeGroupCheck:
		fmt.Fprintf(b, "|%s|%d", node.Group, node.Count)
	case types.NodeHelper, types.NodeStateMethod:
		b.WriteString("|")
		b.WriteString(node.Name)
		for i := range node.Args {
			b.WriteString("|")
			writeKey(b, &node.Args[i])
		}
	case types.NodeSetting:
		fmt.Fprintf(b, "|%s|%v", node.Setting, node.Expected)
	case types.NodeNot:
		b.WriteString("|")
		writeKey(b, node.Operand)
	case types.NodeAnd, types.NodeOr:
		for i := range node.Children {
			b.WriteString("|")
			writeKey(b, &node.Children[i])
		}
	}
}

// LeafName returns the display identifier of a leaf for reports.
func LeafName(node *types.RuleNode) string {
	switch node.Type {
	case types.NodeItemCheck, types.NodeCountCheck:
		return node.Item
	case types.NodeGroupCheck:
		return node.Group
	case types.NodeHelper, types.NodeStateMethod:
		return node.Name
	case types.NodeSetting:
		return node.Setting
	case types.NodeConstant:
		return fmt.Sprintf("%v", node.Value)
	default:
		return node.Type
	}
}
