// Package loader reads an exported world bundle into the immutable form the
// engine consumes: it decodes the JSON wire format, lowers rule trees into
// typed nodes, applies settings overlays, and validates references.
package loader

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/nathoo/trackcore/helpers"
	"github.com/nathoo/trackcore/world"
)

// Options configures world loading. Registry, when set, lets validation warn
// about helper names no predicate resolves; Settings is merged over the
// bundle's per-slot settings before the bundle is sealed. A nil Log discards
// warnings.
type Options struct {
	Registry *helpers.Registry
	Settings map[string]map[string]any
	Log      *slog.Logger
}

// LoadWorld reads and compiles a world file.
func LoadWorld(path string, opts *Options) (*world.Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading world file %s: %w", path, err)
	}
	return ParseWorld(data, opts)
}

// ParseWorld compiles world bytes into a sealed bundle. Validation errors
// fail the load; warnings (unresolved helpers, unknown node tags, dangling
// locations) are logged and the load proceeds — those conditions fail closed
// at evaluation time instead.
func ParseWorld(data []byte, opts *Options) (*world.Bundle, error) {
	if opts == nil {
		opts = &Options{}
	}

	bundle, err := compile(data)
	if err != nil {
		return nil, fmt.Errorf("compiling world data: %w", err)
	}

	// Settings overlay wins over exported defaults, slot by slot.
	for slot, overlay := range opts.Settings {
		bag := bundle.Settings[slot]
		if bag == nil {
			bag = map[string]any{}
			bundle.Settings[slot] = bag
		}
		for k, v := range overlay {
			bag[k] = v
		}
	}

	ve := validate(bundle, opts.Registry)
	if opts.Log != nil {
		for _, warning := range ve.Warnings {
			opts.Log.Warn("world validation", "warning", warning)
		}
	}
	if len(ve.Errors) > 0 {
		return nil, ve
	}

	return bundle, nil
}
