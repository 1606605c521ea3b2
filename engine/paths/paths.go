// Package paths enumerates candidate region-to-region routes with a bounded
// backtracking depth-first search. Strict mode follows only exits whose
// access rule currently holds; permissive mode follows every exit, so a
// blocked target can still be explained by showing routes through unsatisfied
// edges. The two modes are intentionally distinct views and share one search
// core.
package paths

import (
	"time"

	"github.com/nathoo/trackcore/engine/rules"
	"github.com/nathoo/trackcore/types"
	"github.com/nathoo/trackcore/world"
)

// Mode selects how the search treats access rules on exits.
type Mode int

const (
	// Strict follows only exits that are currently passable.
	Strict Mode = iota
	// Permissive follows every exit regardless of rule satisfaction.
	Permissive
)

func (m Mode) String() string {
	if m == Permissive {
		return "permissive"
	}
	return "strict"
}

// Defaults for unset options.
const (
	DefaultMaxPaths     = 16
	DefaultMaxTime      = 5 * time.Second
	timeCheckEverySteps = 256
)

// Discovered restricts the search to a caller-supplied subset of the graph,
// for exploration-style modes where the map is progressively revealed.
// Exits are keyed "region/exit-name".
type Discovered struct {
	Regions map[string]bool
	Exits   map[string]bool
}

func (d *Discovered) allowsRegion(name string) bool {
	return d == nil || d.Regions[name]
}

func (d *Discovered) allowsExit(region, exit string) bool {
	return d == nil || d.Exits[region+"/"+exit]
}

// Options bounds the search. The time budget is a soft ceiling: the clock is
// checked every fixed number of recursive steps, and on expiry the partial
// result is returned with Truncated set — never an error.
type Options struct {
	MaxPaths   int
	MaxTime    time.Duration
	OnProgress func(iterations int)
	Discovered *Discovered
}

// Result holds the enumerated paths. Truncated means the time budget ran out
// before the search space was exhausted.
type Result struct {
	Paths      []types.Path
	Truncated  bool
	Iterations int
}

// Find enumerates simple paths from the world's start regions to target.
// No returned path visits a region twice. A nil world or unknown target
// yields an empty result.
func Find(target string, w *world.Bundle, ctx *rules.Context, mode Mode, opts Options) Result {
	if opts.MaxPaths <= 0 {
		opts.MaxPaths = DefaultMaxPaths
	}
	if opts.MaxTime <= 0 {
		opts.MaxTime = DefaultMaxTime
	}
	if w == nil || ctx == nil {
		return Result{}
	}
	if _, ok := w.Regions[target]; !ok {
		return Result{}
	}

	s := &searcher{
		w:        w,
		ctx:      ctx,
		memo:     rules.NewMemo(),
		mode:     mode,
		target:   target,
		opts:     opts,
		deadline: time.Now().Add(opts.MaxTime),
		visited:  map[string]bool{},
	}

	for _, start := range w.Start {
		if _, ok := w.Regions[start]; !ok {
			continue
		}
		if !opts.Discovered.allowsRegion(start) {
			continue
		}
		if !s.dfs(start) {
			break
		}
	}

	return Result{Paths: s.out, Truncated: s.truncated, Iterations: s.iterations}
}

// searcher owns the shared backtracking state: one growable path stack and
// one visited set, pushed and popped on recursion.
type searcher struct {
	w      *world.Bundle
	ctx    *rules.Context
	memo   *rules.Memo
	mode   Mode
	target string
	opts   Options

	deadline  time.Time
	steps     int
	truncated bool

	iterations int
	regions    []string
	stack      []types.PathStep
	visited    map[string]bool
	out        []types.Path
}

// dfs explores from region. It returns false when the search must halt
// (budget exhausted or enough paths found).
func (s *searcher) dfs(region string) bool {
	s.iterations++
	s.steps++
	if s.steps%timeCheckEverySteps == 0 {
		if s.opts.OnProgress != nil {
			s.opts.OnProgress(s.iterations)
		}
		if time.Now().After(s.deadline) {
			s.truncated = true
			return false
		}
	}

	s.regions = append(s.regions, region)
	s.visited[region] = true
	defer func() {
		s.regions = s.regions[:len(s.regions)-1]
		delete(s.visited, region)
	}()

	if region == s.target {
		s.record()
		return len(s.out) < s.opts.MaxPaths
	}

	def := s.w.Regions[region]
	for i := range def.Exits {
		exit := &def.Exits[i]
		to := exit.ConnectedRegion
		if s.visited[to] {
			continue
		}
		if _, ok := s.w.Regions[to]; !ok {
			continue
		}
		if !s.opts.Discovered.allowsRegion(to) || !s.opts.Discovered.allowsExit(region, exit.Name) {
			continue
		}

		satisfied := exit.AccessRule == nil || s.memo.EvaluateBool(exit.AccessRule, s.ctx)
		if s.mode == Strict && !satisfied {
			continue
		}

		s.stack = append(s.stack, types.PathStep{
			From:      region,
			Exit:      exit.Name,
			To:        to,
			Satisfied: satisfied,
		})
		ok := s.dfs(to)
		s.stack = s.stack[:len(s.stack)-1]
		if !ok {
			return false
		}
	}

	return true
}

// record copies the current stack into a completed path.
func (s *searcher) record() {
	path := types.Path{
		Regions: append([]string(nil), s.regions...),
		Steps:   append([]types.PathStep(nil), s.stack...),
	}
	s.out = append(s.out, path)
}
