// Trackcore answers "what can I reach right now, and why not" for randomized
// game worlds.
// Usage: trackcore [--version] [--plain] [--script <file>] [--helpers <dir>]
// [--settings <file>] [--slot <name>] [--debug] <world_file>
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/nathoo/trackcore/cli"
	"github.com/nathoo/trackcore/engine"
	"github.com/nathoo/trackcore/helpers"
	"github.com/nathoo/trackcore/loader"
	"github.com/nathoo/trackcore/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	plain := false
	debug := false
	var worldFile, scriptFile, helpersDir, settingsFile, slot string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("trackcore %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--debug":
			debug = true
		case "--script":
			scriptFile = flagValue(args, &i, "--script")
		case "--helpers":
			helpersDir = flagValue(args, &i, "--helpers")
		case "--settings":
			settingsFile = flagValue(args, &i, "--settings")
		case "--slot":
			slot = flagValue(args, &i, "--slot")
		default:
			if worldFile == "" {
				worldFile = args[i]
			}
		}
	}

	if worldFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: trackcore [--version] [--plain] [--script <file>] [--helpers <dir>] [--settings <file>] [--slot <name>] [--debug] <world_file>\n")
		os.Exit(1)
	}

	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts := &loader.Options{Log: log}

	if settingsFile != "" {
		overlay, err := loader.LoadSettings(settingsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading settings: %v\n", err)
			os.Exit(1)
		}
		opts.Settings = overlay
	}

	// Helpers load before the world so validation can resolve names.
	reg := helpers.NewRegistry()
	opts.Registry = reg

	// The helper title must match the world title; peek at the world first.
	w, err := loader.LoadWorld(worldFile, &loader.Options{Settings: opts.Settings})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading world: %v\n", err)
		os.Exit(1)
	}
	if helpersDir != "" {
		if err := helpers.LoadLuaDir(reg, w.Title, helpersDir); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading helpers: %v\n", err)
			os.Exit(1)
		}
		// Reload with the registry bound so unresolved names are reported.
		w, err = loader.LoadWorld(worldFile, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading world: %v\n", err)
			os.Exit(1)
		}
	}

	eng := engine.New(w, reg, log)
	if slot != "" {
		eng.SetSlot(slot)
	}

	// Script mode: open file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		c := cli.New(eng)
		c.In = f
		c.EchoInput = true
		c.Run()
		return
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if plain || !isTerminal() {
		c := cli.New(eng)
		c.Run()
		return
	}

	if err := tui.Run(eng); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// flagValue consumes the value following a flag, exiting on a missing value.
func flagValue(args []string, i *int, name string) string {
	if *i+1 >= len(args) {
		fmt.Fprintf(os.Stderr, "%s requires a value\n", name)
		os.Exit(1)
	}
	*i++
	return args[*i]
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
