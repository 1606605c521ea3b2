package loader

import (
	"encoding/json"
	"fmt"

	"github.com/nathoo/trackcore/types"
	"github.com/nathoo/trackcore/world"
)

// Wire-format shapes. Access rules are decoded as raw values because helper
// arguments mix nested rule nodes with literal scalars; compileRule lowers
// literals into constant nodes.
type wireWorld struct {
	Title       string                    `json:"title"`
	Start       []string                  `json:"start"`
	Regions     []wireRegion              `json:"regions"`
	Settings    map[string]map[string]any `json:"settings"`
	Progression map[string][]world.Tier   `json:"progression"`
	Groups      map[string][]string       `json:"groups"`
}

type wireRegion struct {
	Name      string         `json:"name"`
	Exits     []wireExit     `json:"exits"`
	Locations []wireLocation `json:"locations"`
}

type wireExit struct {
	Name            string `json:"name"`
	ConnectedRegion string `json:"connected_region"`
	AccessRule      any    `json:"access_rule"`
}

type wireLocation struct {
	Name       string `json:"name"`
	AccessRule any    `json:"access_rule"`
	Item       string `json:"item"`
}

// compile decodes world bytes and builds the bundle.
func compile(data []byte) (*world.Bundle, error) {
	var raw wireWorld
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	bundle := &world.Bundle{
		Title:       raw.Title,
		Start:       raw.Start,
		Regions:     map[string]types.Region{},
		Locations:   map[string]world.LocationRef{},
		Settings:    raw.Settings,
		Progression: raw.Progression,
		Groups:      raw.Groups,
	}
	if bundle.Settings == nil {
		bundle.Settings = map[string]map[string]any{}
	}

	for _, wr := range raw.Regions {
		if _, ok := bundle.Regions[wr.Name]; ok {
			return nil, fmt.Errorf("duplicate region %q", wr.Name)
		}
		region, err := compileRegion(wr)
		if err != nil {
			return nil, fmt.Errorf("region %s: %w", wr.Name, err)
		}
		bundle.Regions[region.Name] = region

		for _, loc := range region.Locations {
			if _, ok := bundle.Locations[loc.Name]; ok {
				return nil, fmt.Errorf("duplicate location %q", loc.Name)
			}
			bundle.Locations[loc.Name] = world.LocationRef{
				Location: loc,
				Region:   region.Name,
			}
		}
	}

	return bundle, nil
}

func compileRegion(wr wireRegion) (types.Region, error) {
	region := types.Region{Name: wr.Name}

	for _, we := range wr.Exits {
		rule, err := compileRule(we.AccessRule)
		if err != nil {
			return region, fmt.Errorf("exit %s: %w", we.Name, err)
		}
		region.Exits = append(region.Exits, types.Exit{
			Name:            we.Name,
			ConnectedRegion: we.ConnectedRegion,
			AccessRule:      rule,
		})
	}

	for _, wl := range wr.Locations {
		rule, err := compileRule(wl.AccessRule)
		if err != nil {
			return region, fmt.Errorf("location %s: %w", wl.Name, err)
		}
		region.Locations = append(region.Locations, types.Location{
			Name:       wl.Name,
			AccessRule: rule,
			PlacedItem: wl.Item,
		})
	}

	return region, nil
}

// compileRule lowers a raw wire value into a typed rule node. A nil value is
// a missing rule. Unknown type tags are kept as-is: they are a data
// condition the evaluator fails closed on, and validation warns about them.
func compileRule(v any) (*types.RuleNode, error) {
	if v == nil {
		return nil, nil
	}

	tbl, ok := v.(map[string]any)
	if !ok {
		// Bare literal in rule position: lower to a constant.
		return constantNode(v), nil
	}

	tag, _ := tbl["type"].(string)
	if tag == "" {
		return nil, fmt.Errorf("rule node missing type tag")
	}

	node := &types.RuleNode{Type: tag}

	switch tag {
	case types.NodeConstant:
		node.Value = tbl["value"]

	case types.NodeItemCheck, types.NodeCountCheck:
		node.Item, _ = tbl["item"].(string)
		node.Count = intField(tbl, "count")
		if node.Item == "" {
			return nil, fmt.Errorf("%s node missing item", tag)
		}

	case types.NodeGroupCheck:
		node.Group, _ = tbl["group"].(string)
		node.Count = intField(tbl, "count")
		if node.Group == "" {
			return nil, fmt.Errorf("group_check node missing group")
		}

	case types.NodeHelper, types.NodeStateMethod:
		node.Name, _ = tbl["name"].(string)
		if node.Name == "" {
			return nil, fmt.Errorf("%s node missing name", tag)
		}
		args, err := compileArgs(tbl["args"])
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", tag, node.Name, err)
		}
		node.Args = args

	case types.NodeAnd, types.NodeOr:
		children, err := compileChildren(tbl["children"])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tag, err)
		}
		node.Children = children

	case types.NodeNot:
		operand, err := compileRule(tbl["operand"])
		if err != nil {
			return nil, fmt.Errorf("not: %w", err)
		}
		node.Operand = operand

	case types.NodeSetting:
		node.Setting, _ = tbl["setting"].(string)
		node.Expected = normalizeScalar(tbl["expected"])
		if node.Setting == "" {
			return nil, fmt.Errorf("setting_check node missing setting")
		}
	}

	return node, nil
}

func compileChildren(v any) ([]types.RuleNode, error) {
	arr, ok := v.([]any)
	if !ok {
		if v == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("children must be an array")
	}
	children := make([]types.RuleNode, 0, len(arr))
	for i, child := range arr {
		node, err := compileRule(child)
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
		if node == nil {
			return nil, fmt.Errorf("child %d: null rule node", i)
		}
		children = append(children, *node)
	}
	return children, nil
}

// compileArgs lowers helper arguments: nested node objects compile
// recursively, literal scalars become constant nodes.
func compileArgs(v any) ([]types.RuleNode, error) {
	arr, ok := v.([]any)
	if !ok {
		if v == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("args must be an array")
	}
	args := make([]types.RuleNode, 0, len(arr))
	for i, a := range arr {
		if tbl, ok := a.(map[string]any); ok {
			if _, hasType := tbl["type"]; hasType {
				node, err := compileRule(tbl)
				if err != nil {
					return nil, fmt.Errorf("arg %d: %w", i, err)
				}
				args = append(args, *node)
				continue
			}
		}
		args = append(args, *constantNode(a))
	}
	return args, nil
}

func constantNode(v any) *types.RuleNode {
	return &types.RuleNode{Type: types.NodeConstant, Value: normalizeScalar(v)}
}

// normalizeScalar turns integral JSON float64s back into ints, the way the
// rest of the engine expects counts and levels.
func normalizeScalar(v any) any {
	if f, ok := v.(float64); ok && f == float64(int(f)) {
		return int(f)
	}
	return v
}

func intField(tbl map[string]any, key string) int {
	switch n := tbl[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}
