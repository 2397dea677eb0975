package state

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

const scriptEntryPoint = "device_state"

// ScriptReporter implements Reporter by calling a Lua function:
//
//	function device_state(room, device)
//	  if room ~= "Bedroom" then return nil, "room" end
//	  if device == "Breaker" then return "OFF" end
//	  return nil
//	end
//
// A string or number result is the state. nil reports the device as unknown;
// nil plus the second value "room" reports the room as unknown.
type ScriptReporter struct {
	logger  *slog.Logger
	timeout time.Duration

	mu sync.Mutex // LState is not goroutine safe
	L  *lua.LState
	fn *lua.LFunction
}

// LoadScriptReporter reads a Lua script from path.
func LoadScriptReporter(path string, logger *slog.Logger) (*ScriptReporter, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return NewScriptReporter(string(code), logger)
}

// NewScriptReporter runs code in a sandboxed VM and resolves its
// device_state function.
func NewScriptReporter(code string, logger *slog.Logger) (*ScriptReporter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &ScriptReporter{
		logger:  logger.With("component", "script"),
		timeout: time.Second,
		L:       lua.NewState(),
	}

	// Sandbox
	for _, name := range []string{"os", "io", "loadfile", "dofile", "require", "load", "debug", "package"} {
		r.L.SetGlobal(name, lua.LNil)
	}
	r.registerHomeModule()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.L.SetContext(ctx)
	err := r.L.DoString(code)
	r.L.RemoveContext()
	if err != nil {
		r.L.Close()
		return nil, fmt.Errorf("run script: %w", err)
	}

	fn, ok := r.L.GetGlobal(scriptEntryPoint).(*lua.LFunction)
	if !ok {
		r.L.Close()
		return nil, fmt.Errorf("script does not define function %s(room, device)", scriptEntryPoint)
	}
	r.fn = fn
	return r, nil
}

// registerHomeModule exposes home.log(msg) to scripts.
func (r *ScriptReporter) registerHomeModule() {
	mod := r.L.NewTable()
	mod.RawSetString("log", r.L.NewFunction(func(L *lua.LState) int {
		r.logger.Debug("script log", "msg", L.CheckString(1))
		return 0
	}))
	r.L.SetGlobal("home", mod)
}

func (r *ScriptReporter) GetDeviceState(room, device string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	r.L.SetContext(ctx)
	defer r.L.RemoveContext()

	err := r.L.CallByParam(lua.P{Fn: r.fn, NRet: 2, Protect: true}, lua.LString(room), lua.LString(device))
	if err != nil {
		return "", fmt.Errorf("%s(%q, %q): %w", scriptEntryPoint, room, device, err)
	}
	val, reason := r.L.Get(-2), r.L.Get(-1)
	r.L.Pop(2)

	switch v := val.(type) {
	case lua.LString:
		return string(v), nil
	case lua.LNumber, lua.LBool:
		return v.String(), nil
	case *lua.LNilType:
		if lua.LVAsString(reason) == "room" {
			return "", fmt.Errorf("%q: %w", room, ErrRoomNotFound)
		}
		return "", fmt.Errorf("%q in room %q: %w", device, room, ErrDeviceNotFound)
	default:
		return "", fmt.Errorf("%s(%q, %q): unsupported result type %s", scriptEntryPoint, room, device, val.Type())
	}
}

// Close releases the Lua VM.
func (r *ScriptReporter) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.L.Close()
}
