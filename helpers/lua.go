package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/trackcore/types"
	"github.com/nathoo/trackcore/world"
)

// luaEnv rebinds the snapshot accessors to the in-flight invocation. The
// whole core is synchronous single-threaded, so one shared VM per source is
// safe: mutation of env never overlaps another helper call.
type luaEnv struct {
	snap *types.Snapshot
	w    *world.Bundle
}

// LoadLuaDir loads every .lua helper file in dir into the registry under the
// given title. Files register predicates by calling Helper("name", fn).
func LoadLuaDir(reg *Registry, title, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading helpers directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no .lua files found in %s", dir)
	}
	sort.Strings(files)

	L := newLuaState(reg, title)
	for _, f := range files {
		if err := L.DoFile(f); err != nil {
			L.Close()
			return fmt.Errorf("executing %s: %w", filepath.Base(f), err)
		}
	}
	return nil
}

// LoadLuaSource loads helper definitions from a Lua source string.
func LoadLuaSource(reg *Registry, title, src string) error {
	L := newLuaState(reg, title)
	if err := L.DoString(src); err != nil {
		L.Close()
		return fmt.Errorf("executing helper source: %w", err)
	}
	return nil
}

// newLuaState creates a sandboxed VM with the helper-authoring API. The VM
// stays alive for the session: unlike world files, helper functions are
// invoked at evaluation time.
func newLuaState(reg *Registry, title string) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	env := &luaEnv{}

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	sandbox(L)

	registerAccessors(L, env)

	// Helper("name", function(...) ... end)
	L.SetGlobal("Helper", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		fn := L.CheckFunction(2)
		reg.Register(title, name, wrapLuaFunc(L, env, fn))
		return 0
	}))

	return L
}

// wrapLuaFunc adapts a Lua function into the Func contract. Errors inside
// the Lua function yield false rather than propagating.
func wrapLuaFunc(L *lua.LState, env *luaEnv, fn *lua.LFunction) Func {
	return func(snap *types.Snapshot, w *world.Bundle, args ...any) any {
		env.snap, env.w = snap, w
		defer func() { env.snap, env.w = nil, nil }()

		lvs := make([]lua.LValue, len(args))
		for i, a := range args {
			lvs[i] = toLuaValue(a)
		}
		if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, lvs...); err != nil {
			return false
		}
		ret := L.Get(-1)
		L.Pop(1)
		return fromLuaValue(ret)
	}
}

// registerAccessors exposes the fixed snapshot API available inside helper
// functions.
func registerAccessors(L *lua.LState, env *luaEnv) {
	// has("item") — inventory, flags, events, or a reached progressive tier.
	L.SetGlobal("has", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		L.Push(lua.LBool(envHas(env, name)))
		return 1
	}))

	// count("item")
	L.SetGlobal("count", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if env.snap == nil {
			L.Push(lua.LNumber(0))
			return 1
		}
		L.Push(lua.LNumber(env.snap.Inventory[name]))
		return 1
	}))

	// count_group("group")
	L.SetGlobal("count_group", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		total := 0
		if env.snap != nil && env.w != nil {
			for _, member := range env.w.GroupMembers(name) {
				total += env.snap.Inventory[member]
			}
		}
		L.Push(lua.LNumber(total))
		return 1
	}))

	// flag("name")
	L.SetGlobal("flag", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		set := env.snap != nil && (env.snap.Flags[name] || env.snap.Events[name])
		L.Push(lua.LBool(set))
		return 1
	}))

	// setting("name") — active slot's option bag.
	L.SetGlobal("setting", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if env.snap == nil || env.w == nil {
			L.Push(lua.LNil)
			return 1
		}
		v, ok := env.w.Setting(env.snap.Slot, name)
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(toLuaValue(v))
		return 1
	}))
}

// envHas mirrors the context's hasItem semantics for Lua helpers.
func envHas(env *luaEnv, name string) bool {
	if env.snap == nil {
		return false
	}
	if env.snap.Flags[name] || env.snap.Events[name] {
		return true
	}
	if env.snap.Inventory[name] > 0 {
		return true
	}
	if env.w != nil {
		if base, tier, ok := env.w.TierFor(name); ok {
			return env.snap.Inventory[base] >= tier.Level
		}
	}
	return false
}

// sandbox removes globals that would let helper files touch the host.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}
	if mathTbl := L.GetGlobal("math"); mathTbl != lua.LNil {
		if tbl, ok := mathTbl.(*lua.LTable); ok {
			tbl.RawSetString("randomseed", lua.LNil)
		}
	}
}

func toLuaValue(v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	default:
		return lua.LNil
	}
}

func fromLuaValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case lua.LString:
		return string(val)
	default:
		return false
	}
}
