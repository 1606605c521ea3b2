// Package helpers provides the per-title predicate registry consumed by the
// rule evaluator. Helpers are resolved by (title, name) once at world-load
// time; an unresolved name is a data-integrity condition, not a crash — the
// evaluator fails closed on it.
package helpers

import (
	"sort"

	"github.com/nathoo/trackcore/types"
	"github.com/nathoo/trackcore/world"
)

// Func is a pure predicate over one snapshot and the static world bundle.
// It returns a bool or a number, and false/0 on missing data — never panics
// and never signals errors by exception.
type Func func(snap *types.Snapshot, w *world.Bundle, args ...any) any

// Registry maps (title, name) to predicate functions.
type Registry struct {
	titles map[string]map[string]Func
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{titles: map[string]map[string]Func{}}
}

// Register adds a helper for a title, replacing any previous binding.
func (r *Registry) Register(title, name string, fn Func) {
	tbl, ok := r.titles[title]
	if !ok {
		tbl = map[string]Func{}
		r.titles[title] = tbl
	}
	tbl[name] = fn
}

// Resolve looks up a helper by title and name.
func (r *Registry) Resolve(title, name string) (Func, bool) {
	fn, ok := r.titles[title][name]
	return fn, ok
}

// Has reports whether a helper is registered.
func (r *Registry) Has(title, name string) bool {
	_, ok := r.titles[title][name]
	return ok
}

// Names returns the sorted helper names registered for a title.
func (r *Registry) Names(title string) []string {
	tbl := r.titles[title]
	names := make([]string, 0, len(tbl))
	for name := range tbl {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
