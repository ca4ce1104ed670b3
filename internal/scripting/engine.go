package scripting

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/modosynth/modosynth/internal/core/ecs"
	"github.com/modosynth/modosynth/internal/core/event"
	"github.com/modosynth/modosynth/internal/world"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Hook names looked up as Lua globals. Missing hooks are skipped.
const (
	HookSpawn   = "on_spawn"
	HookDespawn = "on_despawn"
	HookPlace   = "on_place"
	HookConnect = "on_connect"
)

// Engine wraps a single gopher-lua VM running editor hooks.
// Single-goroutine access only (editor loop).
type Engine struct {
	vm     *lua.LState
	log    *zap.Logger
	editor *world.Editor
}

// NewEngine creates a Lua engine and loads all scripts from the core and
// hooks subdirectories of scriptsDir.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	for _, sub := range []string{"core", "hooks"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// LoadString runs an inline chunk, e.g. a hook defined in configuration.
func (e *Engine) LoadString(src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("load lua chunk: %w", err)
	}
	return nil
}

// Bind exposes the editor to scripts and subscribes the lifecycle hooks.
//
// Scripts get read-only queries (alive, entity_count, position) and one
// mutation, despawn, which is deferred to the next command flush because
// hooks run while the store is mid-operation.
func (e *Engine) Bind(editor *world.Editor) {
	e.editor = editor
	w := editor.World()

	e.vm.SetGlobal("entity_count", e.vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(w.Len()))
		return 1
	}))
	e.vm.SetGlobal("alive", e.vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(w.Alive(checkEntity(L, 1))))
		return 1
	}))
	e.vm.SetGlobal("position", e.vm.NewFunction(func(L *lua.LState) int {
		tf := ecs.Get(w, editor.Components().Transform, checkEntity(L, 1))
		if tf == nil {
			L.Push(lua.LNil)
			return 1
		}
		pos := editor.WorldPosition(*tf)
		L.Push(lua.LNumber(pos.X))
		L.Push(lua.LNumber(pos.Y))
		return 2
	}))
	e.vm.SetGlobal("despawn", e.vm.NewFunction(func(L *lua.LState) int {
		w.MarkForDestruction(checkEntity(L, 1))
		return 0
	}))

	bus := w.Events()
	event.Subscribe(bus, func(s ecs.Spawn) { e.call(HookSpawn, s.Entity) })
	event.Subscribe(bus, func(d ecs.Despawn) { e.call(HookDespawn, d.Entity) })
	event.Subscribe(bus, func(p world.Placed) { e.call(HookPlace, p.Entity) })
	event.Subscribe(bus, func(c world.Connect) { e.call(HookConnect, c.Entity) })
}

func checkEntity(L *lua.LState, n int) ecs.Entity {
	id := L.CheckInt64(n)
	if id < 0 || id > math.MaxUint32 {
		L.ArgError(n, "entity id out of range")
		return ecs.Entity{}
	}
	return ecs.Entity{ID: ecs.EntityID(id)}
}

// call invokes the hook if the scripts define it. Lua errors are logged and
// never reach the store.
func (e *Engine) call(hook string, ent ecs.Entity) {
	fn := e.vm.GetGlobal(hook)
	if fn == lua.LNil {
		return
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, lua.LNumber(ent.ID)); err != nil {
		e.log.Error("lua hook error", zap.String("hook", hook), zap.Uint32("entity", uint32(ent.ID)), zap.Error(err))
	}
}

// Global returns a Lua global, for inspection by the host.
func (e *Engine) Global(name string) lua.LValue {
	return e.vm.GetGlobal(name)
}

func (e *Engine) Close() {
	e.vm.Close()
}
