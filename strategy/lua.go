package strategy

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dashreel/dashreel/constant"
	"github.com/dashreel/dashreel/filesystem"
	"github.com/dashreel/dashreel/log"
	"github.com/dashreel/dashreel/media"
	"github.com/dashreel/dashreel/util"
	libs "github.com/metafates/mangal-lua-libs"
	"github.com/samber/lo"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// compiled prototypes by script path
var protoCache sync.Map

// luaMatcher runs a script's CanHandle function. An LState is not safe for concurrent use.
type luaMatcher struct {
	name  string
	mu    sync.Mutex
	state *lua.LState
}

func (m *luaMatcher) CanHandle(item *media.Item) bool {
	if item == nil {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.state.CallByParam(lua.P{
		Fn:      m.state.GetGlobal(constant.StrategyMatchFn),
		NRet:    1,
		Protect: true,
	}, itemTable(m.state, item))
	if err != nil {
		log.Warnf("strategy %s: %s failed: %s", m.name, constant.StrategyMatchFn, err)
		return false
	}

	ret := m.state.Get(-1)
	m.state.Pop(1)
	return lua.LVAsBool(ret)
}

func itemTable(state *lua.LState, item *media.Item) *lua.LTable {
	table := state.NewTable()
	table.RawSetString("path", lua.LString(item.Path))
	table.RawSetString("name", lua.LString(item.Name))
	table.RawSetString("fs_id", lua.LNumber(item.FileID))
	table.RawSetString("size", lua.LNumber(item.Size))
	table.RawSetString("kind", lua.LString(item.Kind))
	if mime, ok := item.MIME.Get(); ok {
		table.RawSetString("mime", lua.LString(mime))
	}
	if codec, ok := item.Codec.Get(); ok {
		table.RawSetString("codec", lua.LString(codec))
	}
	return table
}

// compileAndRun executes a script inside state, compiling it once per path.
func compileAndRun(state *lua.LState, path string) error {
	if cached, ok := protoCache.Load(path); ok {
		state.Push(state.NewFunctionFromProto(cached.(*lua.FunctionProto)))
		return state.PCall(0, lua.MultRet, nil)
	}

	file, err := filesystem.API().Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	chunk, err := parse.Parse(file, path)
	if err != nil {
		return err
	}

	proto, err := lua.Compile(chunk, path)
	if err != nil {
		return err
	}
	protoCache.Store(path, proto)

	state.Push(state.NewFunctionFromProto(proto))
	return state.PCall(0, lua.MultRet, nil)
}

// LoadScript turns a Lua file into a strategy. The script must set BACKEND to one of
// backends, may set PRIORITY and FALLBACK, and must define CanHandle(item).
func LoadScript(path string, backends []string) (Strategy, error) {
	state := lua.NewState()
	libs.Preload(state)

	if err := compileAndRun(state, path); err != nil {
		state.Close()
		return Strategy{}, fmt.Errorf("load strategy %s: %w", path, err)
	}

	name := util.FileStem(path)
	fail := func(format string, args ...any) (Strategy, error) {
		state.Close()
		return Strategy{}, fmt.Errorf("strategy %s: "+format, append([]any{name}, args...)...)
	}

	if state.GetGlobal(constant.StrategyMatchFn).Type() != lua.LTFunction {
		return fail("function %s is required", constant.StrategyMatchFn)
	}

	backend := state.GetGlobal(constant.StrategyBackendVar)
	if backend.Type() != lua.LTString {
		return fail("%s must be a string", constant.StrategyBackendVar)
	}
	if !lo.Contains(backends, backend.String()) {
		return fail("%s %q is not one of %s", constant.StrategyBackendVar, backend.String(), strings.Join(backends, ", "))
	}

	var priority int
	switch p := state.GetGlobal(constant.StrategyPriorityVar).(type) {
	case lua.LNumber:
		priority = int(p)
	case *lua.LNilType:
	default:
		return fail("%s must be a number", constant.StrategyPriorityVar)
	}

	return Strategy{
		Descriptor: Descriptor{
			ID:       backend.String(),
			Priority: priority,
			Fallback: lua.LVAsBool(state.GetGlobal(constant.StrategyFallbackVar)),
		},
		Matcher: &luaMatcher{name: name, state: state},
		Source:  path,
	}, nil
}

// LoadScripts loads every .lua file in dir. Broken scripts are skipped and logged
// so that one bad file cannot take backend selection down.
func LoadScripts(dir string, backends []string) []Strategy {
	entries, err := filesystem.API().ReadDir(dir)
	if err != nil {
		log.Warnf("read strategies directory: %s", err)
		return nil
	}

	var strategies []Strategy
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}

		s, err := LoadScript(filepath.Join(dir, entry.Name()), backends)
		if err != nil {
			log.Warn(err)
			continue
		}
		strategies = append(strategies, s)
	}

	return strategies
}
