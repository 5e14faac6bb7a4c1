/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Seednode/storyteller/dixit"
	lua "github.com/yuin/gopher-lua"
)

// Lua runs a script that defines two global functions:
//
//	describe(key)          -> clue string
//	choose(clue, keys)     -> one of keys
//
// The global player_name holds the seat's name. Calls are serialised since a
// Lua state is single-threaded.
type Lua struct {
	mu    sync.Mutex
	state *lua.LState
}

var _ dixit.Agent = (*Lua)(nil)

var errNotFunction = errors.New("is not a function")

// NewLua compiles script for the named player.
func NewLua(name, script string) (*Lua, error) {
	L := lua.NewState()
	L.SetGlobal("player_name", lua.LString(name))

	if err := L.DoString(script); err != nil {
		L.Close()
		return nil, fmt.Errorf("load script: %w", err)
	}
	for _, fn := range []string{"describe", "choose"} {
		if L.GetGlobal(fn).Type() != lua.LTFunction {
			L.Close()
			return nil, fmt.Errorf("script global %q %w", fn, errNotFunction)
		}
	}

	return &Lua{state: L}, nil
}

// Close releases the Lua state.
func (l *Lua) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state.Close()
}

func (l *Lua) call(ctx context.Context, fn string, args func(*lua.LState) []lua.LValue) (lua.LValue, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	L := l.state
	L.SetContext(ctx)
	defer L.RemoveContext()

	if err := L.CallByParam(lua.P{
		Fn:      L.GetGlobal(fn),
		NRet:    1,
		Protect: true,
	}, args(L)...); err != nil {
		return lua.LNil, fmt.Errorf("%s: %w", fn, err)
	}

	ret := L.Get(-1)
	L.Pop(1)

	return ret, nil
}

func (l *Lua) Describe(ctx context.Context, card dixit.Card) (string, error) {
	ret, err := l.call(ctx, "describe", func(*lua.LState) []lua.LValue {
		return []lua.LValue{lua.LNumber(card.Key)}
	})
	if err != nil {
		return "", err
	}

	s, ok := ret.(lua.LString)
	if !ok {
		return "", fmt.Errorf("describe returned %s, want string", ret.Type())
	}
	return string(s), nil
}

func (l *Lua) Choose(ctx context.Context, clue string, candidates []dixit.Card) (dixit.Card, error) {
	ret, err := l.call(ctx, "choose", func(L *lua.LState) []lua.LValue {
		keys := L.NewTable()
		for _, c := range candidates {
			keys.Append(lua.LNumber(c.Key))
		}
		return []lua.LValue{lua.LString(clue), keys}
	})
	if err != nil {
		return dixit.Card{}, err
	}

	n, ok := ret.(lua.LNumber)
	if !ok {
		return dixit.Card{}, fmt.Errorf("choose returned %s, want number", ret.Type())
	}
	for _, c := range candidates {
		if c.Key == int(n) {
			return c, nil
		}
	}
	return dixit.Card{}, fmt.Errorf("%w: script chose %d", dixit.ErrContractViolation, int(n))
}
