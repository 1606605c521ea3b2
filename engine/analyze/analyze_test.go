package analyze

import (
	"testing"

	"github.com/nathoo/trackcore/engine/rules"
	"github.com/nathoo/trackcore/helpers"
	"github.com/nathoo/trackcore/types"
	"github.com/nathoo/trackcore/world"
)

func itemRule(name string) *types.RuleNode {
	return &types.RuleNode{Type: types.NodeItemCheck, Item: name}
}

func andRule(children ...types.RuleNode) *types.RuleNode {
	return &types.RuleNode{Type: types.NodeAnd, Children: children}
}

func orRule(children ...types.RuleNode) *types.RuleNode {
	return &types.RuleNode{Type: types.NodeOr, Children: children}
}

// gateWorld builds one target region behind the given entrance rules, one
// entrance per rule.
func gateWorld(entranceRules ...*types.RuleNode) *world.Bundle {
	w := &world.Bundle{
		Title:   "Test Title",
		Start:   []string{"start"},
		Regions: map[string]types.Region{"goal": {Name: "goal"}},
	}
	start := types.Region{Name: "start"}
	for i, rule := range entranceRules {
		start.Exits = append(start.Exits, types.Exit{
			Name:            "gate" + string(rune('a'+i)),
			ConnectedRegion: "goal",
			AccessRule:      rule,
		})
	}
	w.Regions["start"] = start
	return w
}

func newCtx(w *world.Bundle) *rules.Context {
	return rules.NewContext(types.NewSnapshot(), w, helpers.NewRegistry(), nil)
}

func leafNames(leaves []types.Leaf) []string {
	names := make([]string, len(leaves))
	for i, leaf := range leaves {
		names[i] = leaf.Name
	}
	return names
}

func TestAnalyze_PrimaryBlockerAndSecondaryRequirement(t *testing.T) {
	// Sword held, Key missing: flipping the key alone opens the gate, so the
	// key is the primary blocker. Flipping the sword cannot close an already
	// closed gate, so it stays a secondary requirement.
	w := gateWorld(andRule(*itemRule("Sword"), *itemRule("Key")))
	ctx := newCtx(w)
	ctx.Snap.Inventory["Sword"] = 1

	report := Analyze("goal", w, ctx)
	if got := leafNames(report.PrimaryBlockers); len(got) != 1 || got[0] != "Key" {
		t.Errorf("PrimaryBlockers = %v, want [Key]", got)
	}
	if got := leafNames(report.SecondaryRequirements); len(got) != 1 || got[0] != "Sword" {
		t.Errorf("SecondaryRequirements = %v, want [Sword]", got)
	}
	if len(report.SecondaryBlockers) != 0 || len(report.PrimaryRequirements) != 0 {
		t.Errorf("unexpected extra classifications: %+v", report)
	}
}

func TestAnalyze_PrimaryRequirement(t *testing.T) {
	// The gate is open purely on the sword: losing it would close the gate.
	w := gateWorld(itemRule("Sword"))
	ctx := newCtx(w)
	ctx.Snap.Inventory["Sword"] = 1

	report := Analyze("goal", w, ctx)
	if got := leafNames(report.PrimaryRequirements); len(got) != 1 || got[0] != "Sword" {
		t.Errorf("PrimaryRequirements = %v, want [Sword]", got)
	}
}

func TestAnalyze_OrMarginMakesSecondary(t *testing.T) {
	// Both branches of the or hold: neither alone decides the outcome.
	w := gateWorld(orRule(*itemRule("Bow"), *itemRule("Boomerang")))
	ctx := newCtx(w)
	ctx.Snap.Inventory["Bow"] = 1
	ctx.Snap.Inventory["Boomerang"] = 1

	report := Analyze("goal", w, ctx)
	if len(report.PrimaryRequirements) != 0 {
		t.Errorf("PrimaryRequirements = %v, want none with a satisfied margin",
			leafNames(report.PrimaryRequirements))
	}
	if got := leafNames(report.SecondaryRequirements); len(got) != 2 {
		t.Errorf("SecondaryRequirements = %v, want both branches", got)
	}
}

func TestAnalyze_OrBothMissingBothPrimary(t *testing.T) {
	w := gateWorld(orRule(*itemRule("Bow"), *itemRule("Boomerang")))
	ctx := newCtx(w)

	report := Analyze("goal", w, ctx)
	if got := leafNames(report.PrimaryBlockers); len(got) != 2 {
		t.Errorf("PrimaryBlockers = %v, want both or branches", got)
	}
}

func TestAnalyze_DedupeAcrossEntrances(t *testing.T) {
	// The sword gates both entrances. On the first it is the whole rule
	// (primary); on the second it shares an and with a missing key
	// (secondary). Primary wins and the leaf appears once.
	w := gateWorld(
		itemRule("Sword"),
		andRule(*itemRule("Sword"), *itemRule("Key")),
	)
	ctx := newCtx(w)

	report := Analyze("goal", w, ctx)
	swords := 0
	for _, leaf := range append(report.PrimaryBlockers, report.SecondaryBlockers...) {
		if leaf.Name == "Sword" {
			swords++
		}
	}
	if swords != 1 {
		t.Fatalf("Sword appears %d times across blocker lists, want 1", swords)
	}
	if got := leafNames(report.PrimaryBlockers); len(got) == 0 || got[0] != "Sword" {
		t.Errorf("PrimaryBlockers = %v, want Sword first and primary", got)
	}
}

func TestAnalyze_UngatedEntrances(t *testing.T) {
	w := gateWorld(nil)
	report := Analyze("goal", w, newCtx(w))
	if len(report.PrimaryBlockers)+len(report.SecondaryBlockers)+
		len(report.PrimaryRequirements)+len(report.SecondaryRequirements) != 0 {
		t.Errorf("ungated target produced classifications: %+v", report)
	}
}

func TestAnalyze_NoEntrances(t *testing.T) {
	w := &world.Bundle{
		Title:   "Test Title",
		Start:   []string{"start"},
		Regions: map[string]types.Region{"start": {Name: "start"}, "goal": {Name: "goal"}},
	}
	report := Analyze("goal", w, newCtx(w))
	if report.Target != "goal" {
		t.Errorf("Target = %q, want goal", report.Target)
	}
	if len(report.PrimaryBlockers) != 0 {
		t.Errorf("isolated target produced blockers: %v", leafNames(report.PrimaryBlockers))
	}
}

func TestAnalyze_NotOperandLeaf(t *testing.T) {
	// not(flag) gates the door: the set flag is the blocker, and clearing it
	// (the override) opens the gate.
	flagLeaf := itemRule("curse_active")
	w := gateWorld(&types.RuleNode{Type: types.NodeNot, Operand: flagLeaf})
	ctx := newCtx(w)
	ctx.Snap.Flags["curse_active"] = true

	report := Analyze("goal", w, ctx)
	if got := leafNames(report.PrimaryRequirements); len(got) != 0 {
		t.Errorf("PrimaryRequirements = %v, want none", got)
	}
	// The leaf itself is satisfied, and flipping it false makes the rule
	// true. Satisfied leaves land in the requirement buckets; with base
	// false and no flip-to-false possible, it stays secondary.
	if got := leafNames(report.SecondaryRequirements); len(got) != 1 || got[0] != "curse_active" {
		t.Errorf("SecondaryRequirements = %v, want [curse_active]", got)
	}
}
