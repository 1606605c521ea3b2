// Package cli provides terminal I/O, output formatting, and command dispatch
// for the trackcore console.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nathoo/trackcore/engine"
	"github.com/nathoo/trackcore/engine/paths"
	"github.com/nathoo/trackcore/engine/snap"
	"github.com/nathoo/trackcore/types"
)

// CLI handles terminal interaction with the tracker.
type CLI struct {
	Engine    *engine.Engine
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	EchoInput bool // echo each input line after the prompt (for script playback)
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine) *CLI {
	home, _ := os.UserHomeDir()
	saveDir := filepath.Join(home, ".trackcore", "saves")
	return &CLI{
		Engine:  eng,
		In:      os.Stdin,
		Out:     os.Stdout,
		SaveDir: saveDir,
	}
}

// Run starts the console loop: prompt, input, dispatch, output.
func (c *CLI) Run() {
	c.printLine(fmt.Sprintf("Tracking %s — %d regions, %d locations.",
		c.Engine.World.Title, len(c.Engine.World.Regions), len(c.Engine.World.Locations)))
	c.printSummary()

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if c.Dispatch(input) {
			return
		}
	}
}

// Dispatch runs one command. It returns true when the console should exit.
func (c *CLI) Dispatch(input string) bool {
	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "quit", "exit":
		c.printSystem("Goodbye.")
		return true

	case "help":
		c.cmdHelp()

	case "collect", "get":
		c.cmdCollect(args)

	case "remove", "drop":
		c.cmdRemove(args)

	case "flag":
		c.cmdFlag(args)

	case "event":
		c.cmdEvent(args)

	case "slot":
		if len(args) == 0 {
			c.printSystem(fmt.Sprintf("Active slot: %q", c.Engine.Snap.Slot))
			break
		}
		c.Engine.SetSlot(args[0])
		c.printSummary()

	case "reach", "regions":
		c.cmdReach()

	case "locations":
		c.cmdLocations()

	case "paths":
		c.cmdPaths(args)

	case "why":
		c.cmdWhy(args)

	case "state":
		c.cmdState()

	case "save":
		c.cmdSave(args)

	case "load":
		c.cmdLoad(args)

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdCollect(args []string) {
	item, n, ok := c.itemArg(args)
	if !ok {
		c.printSystem("Usage: collect <item> [count]")
		return
	}
	c.Engine.CollectN(item, n)
	c.printSummary()
}

func (c *CLI) cmdRemove(args []string) {
	item, n, ok := c.itemArg(args)
	if !ok {
		c.printSystem("Usage: remove <item> [count]")
		return
	}
	c.Engine.Remove(item, n)
	c.printSummary()
}

// itemArg parses "<item with spaces> [count]". A trailing integer is the
// count; everything before it is the item name.
func (c *CLI) itemArg(args []string) (string, int, bool) {
	if len(args) == 0 {
		return "", 0, false
	}
	n := 1
	if len(args) > 1 {
		if parsed, err := strconv.Atoi(args[len(args)-1]); err == nil && parsed > 0 {
			n = parsed
			args = args[:len(args)-1]
		}
	}
	return strings.Join(args, " "), n, true
}

func (c *CLI) cmdFlag(args []string) {
	if len(args) == 0 {
		c.printSystem("Usage: flag <name> [off]")
		return
	}
	value := !(len(args) > 1 && strings.ToLower(args[len(args)-1]) == "off")
	name := args[0]
	if !value {
		name = strings.Join(args[:len(args)-1], " ")
	} else {
		name = strings.Join(args, " ")
	}
	c.Engine.SetFlag(name, value)
	c.printSummary()
}

func (c *CLI) cmdEvent(args []string) {
	if len(args) == 0 {
		c.printSystem("Usage: event <name>")
		return
	}
	c.Engine.SetEvent(strings.Join(args, " "))
	c.printSummary()
}

func (c *CLI) cmdReach() {
	reachable := c.Engine.ReachableRegions()
	c.printLine(fmt.Sprintf("Reachable regions (%d/%d):",
		len(reachable), len(c.Engine.World.Regions)))
	for _, name := range reachable {
		c.printLine("  " + name)
	}
}

func (c *CLI) cmdLocations() {
	accessible := c.Engine.AccessibleLocations()
	c.printLine(fmt.Sprintf("Accessible locations (%d/%d):",
		len(accessible), len(c.Engine.World.Locations)))
	for _, name := range accessible {
		c.printLine("  " + name)
	}
}

func (c *CLI) cmdPaths(args []string) {
	if len(args) == 0 {
		c.printSystem("Usage: paths <region> [all]")
		return
	}
	mode := paths.Strict
	if strings.ToLower(args[len(args)-1]) == "all" {
		mode = paths.Permissive
		args = args[:len(args)-1]
	}
	target := strings.Join(args, " ")
	if _, ok := c.Engine.World.Region(target); !ok {
		c.printSystem(fmt.Sprintf("Unknown region: %s", target))
		return
	}

	result := c.Engine.FindPaths(target, mode, paths.Options{})
	if len(result.Paths) == 0 {
		c.printLine(fmt.Sprintf("No %s paths to %s.", mode, target))
		if mode == paths.Strict {
			c.printLine("Try 'paths " + target + " all' to see blocked routes, or 'why " + target + "'.")
		}
		return
	}

	c.printLine(fmt.Sprintf("Paths to %s (%s):", target, mode))
	for i, p := range result.Paths {
		c.printLine(fmt.Sprintf("  %d. %s", i+1, formatPath(p)))
	}
	if result.Truncated {
		c.printSystem("Search truncated: time budget exhausted, results are partial.")
	}
}

// formatPath renders "A -> B -> C", marking blocked steps.
func formatPath(p types.Path) string {
	var b strings.Builder
	b.WriteString(p.Regions[0])
	for _, step := range p.Steps {
		if step.Satisfied {
			b.WriteString(" -> ")
		} else {
			b.WriteString(" ->[blocked] ")
		}
		b.WriteString(step.To)
	}
	return b.String()
}

func (c *CLI) cmdWhy(args []string) {
	if len(args) == 0 {
		c.printSystem("Usage: why <region>")
		return
	}
	target := strings.Join(args, " ")
	if _, ok := c.Engine.World.Region(target); !ok {
		c.printSystem(fmt.Sprintf("Unknown region: %s", target))
		return
	}

	report := c.Engine.AnalyzeBlockers(target)
	if c.Engine.Snap.Regions[target] == types.Reachable {
		c.printLine(target + " is reachable.")
	} else {
		c.printLine(target + " is not reachable.")
	}

	printLeaves := func(label string, leaves []types.Leaf) {
		if len(leaves) == 0 {
			return
		}
		c.printLine(label + ":")
		for _, leaf := range leaves {
			c.printLine(fmt.Sprintf("  %s (%s)", leaf.Name, leaf.Type))
		}
	}
	printLeaves("Primary blockers", report.PrimaryBlockers)
	printLeaves("Secondary blockers", report.SecondaryBlockers)
	printLeaves("Primary requirements", report.PrimaryRequirements)
	printLeaves("Secondary requirements", report.SecondaryRequirements)

	if len(report.PrimaryBlockers) == 0 && len(report.SecondaryBlockers) == 0 &&
		len(report.PrimaryRequirements) == 0 && len(report.SecondaryRequirements) == 0 {
		c.printLine("No gated entrances lead into " + target + ".")
	}
}

func (c *CLI) cmdState() {
	s := c.Engine.Snap
	c.printSystem(fmt.Sprintf("Slot: %q", s.Slot))
	c.printSystem(fmt.Sprintf("Inventory: %v", s.Inventory))
	if len(s.Flags) > 0 {
		c.printSystem(fmt.Sprintf("Flags: %v", s.Flags))
	}
	if len(s.Events) > 0 {
		c.printSystem(fmt.Sprintf("Events: %v", s.Events))
	}
	c.printSummary()
}

func (c *CLI) cmdSave(args []string) {
	name := "quicksave"
	if len(args) > 0 {
		name = args[0]
	}

	data, err := snap.Save(c.Engine.Snap, c.Engine.World.Title)
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	if err := os.MkdirAll(c.SaveDir, 0o755); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	path := filepath.Join(c.SaveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Progress saved to %s.", name))
}

func (c *CLI) cmdLoad(args []string) {
	name := "quicksave"
	if len(args) > 0 {
		name = args[0]
	}

	path := filepath.Join(c.SaveDir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	restored, title, err := snap.Load(data)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	if title != c.Engine.World.Title {
		c.printSystem(fmt.Sprintf("Load failed: save is for %q, world is %q", title, c.Engine.World.Title))
		return
	}

	c.Engine.ReplaceSnapshot(restored)
	c.printSystem(fmt.Sprintf("Progress loaded from %s.", name))
	c.printSummary()
}

func (c *CLI) cmdHelp() {
	help := []string{
		"Tracking:",
		"  collect <item> [n]   — Add item copies to the inventory",
		"  remove <item> [n]    — Take item copies away",
		"  flag <name> [off]    — Set or clear a world flag",
		"  event <name>         — Record a one-shot world event",
		"  slot [name]          — Show or select the settings slot",
		"",
		"Analysis:",
		"  reach                — List currently reachable regions",
		"  locations            — List currently accessible locations",
		"  paths <region>       — Achievable routes to a region",
		"  paths <region> all   — All candidate routes, including blocked ones",
		"  why <region>         — Explain what blocks or enables a region",
		"",
		"System:",
		"  state                — Dump the current snapshot",
		"  save [name]          — Save progress (default: quicksave)",
		"  load [name]          — Load progress (default: quicksave)",
		"  help                 — Show this help",
		"  quit                 — Exit",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

// printSummary shows the one-line reachable/accessible tally after a change.
func (c *CLI) printSummary() {
	c.printSystem(fmt.Sprintf("%d/%d regions reachable, %d/%d locations accessible",
		len(c.Engine.ReachableRegions()), len(c.Engine.World.Regions),
		len(c.Engine.AccessibleLocations()), len(c.Engine.World.Locations)))
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
