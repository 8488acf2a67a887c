package generator

import (
	"context"
	"math/rand"
	"os"

	"github.com/Shopify/go-lua"
	"github.com/louisbranch/tablegen/internal/dice"
	apperrors "github.com/louisbranch/tablegen/internal/platform/errors"
)

// luaEntryPoint is the global function a script must define.
const luaEntryPoint = "generate"

// luaHookInstructions is how many VM instructions run between context checks.
const luaHookInstructions = 1000

// Lua runs a script that defines generate(args) and returns a string.
//
// Scripts get two helpers on top of the standard libraries:
//
//	roll(formula) -> value, detail   dice join the output trace
//	random(n)     -> 1..n            drawn from the call's rng
type Lua struct {
	Base
	script string
}

// NewLua reads and syntax-checks the script at cfg.Source.
func NewLua(_ context.Context, cfg Config) (Generator, error) {
	data, err := os.ReadFile(cfg.SourcePath())
	if err != nil {
		return nil, apperrors.WrapWithMetadata(
			apperrors.CodeGeneratorSource,
			"load lua source",
			map[string]string{"generator": cfg.ID, "source": cfg.Source},
			err,
		)
	}
	return NewLuaFromScript(cfg, string(data))
}

// NewLuaFromScript builds a lua generator from script text.
func NewLuaFromScript(cfg Config, script string) (*Lua, error) {
	state := lua.NewState()
	if err := lua.LoadString(state, script); err != nil {
		return nil, scriptError(cfg.ID, "compile lua script", err)
	}
	return &Lua{Base: NewBase(cfg), script: script}, nil
}

// Generate runs the script in a fresh interpreter and calls generate with
// args as a Lua sequence.
func (g *Lua) Generate(ctx context.Context, rng *rand.Rand, args []string) (Output, error) {
	if err := checkCall(ctx, rng); err != nil {
		return Output{}, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var rolls []dice.Die
	var helperErr error

	state := lua.NewState()
	lua.OpenLibraries(state)
	lua.SetDebugHook(state, func(state *lua.State, _ lua.Debug) {
		if err := ctx.Err(); err != nil {
			lua.Errorf(state, "%s", err.Error())
		}
	}, lua.MaskCount, luaHookInstructions)
	state.Register("roll", func(state *lua.State) int {
		formula := lua.CheckString(state, 1)
		node, err := dice.Parse(formula, rng)
		if err != nil {
			helperErr = err
			lua.Errorf(state, "%s", err.Error())
			return 0
		}
		rolls = append(rolls, dice.Rolls(node)...)
		state.PushNumber(node.Value())
		state.PushString(node.Detail())
		return 2
	})
	state.Register("random", func(state *lua.State) int {
		n := lua.CheckInteger(state, 1)
		if n <= 0 {
			lua.ArgumentError(state, 1, "must be positive")
			return 0
		}
		state.PushInteger(rng.Intn(n) + 1)
		return 1
	})

	if err := lua.LoadString(state, g.script); err != nil {
		return Output{}, scriptError(g.ID(), "compile lua script", err)
	}
	if err := state.ProtectedCall(0, 0, 0); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Output{}, ctxErr
		}
		if helperErr != nil {
			return Output{}, helperErr
		}
		return Output{}, scriptError(g.ID(), "run lua script", err)
	}

	state.Global(luaEntryPoint)
	if !state.IsFunction(-1) {
		return Output{}, apperrors.WithMetadata(
			apperrors.CodeGeneratorScript,
			"lua script does not define "+luaEntryPoint+"(args)",
			map[string]string{"generator": g.ID()},
		)
	}
	state.NewTable()
	for i, arg := range args {
		state.PushString(arg)
		state.RawSetInt(-2, i+1)
	}
	if err := state.ProtectedCall(1, 1, 0); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Output{}, ctxErr
		}
		if helperErr != nil {
			return Output{}, helperErr
		}
		return Output{}, scriptError(g.ID(), "call "+luaEntryPoint, err)
	}
	text, ok := state.ToString(-1)
	if !ok {
		return Output{}, apperrors.WithMetadata(
			apperrors.CodeGeneratorScript,
			luaEntryPoint+" must return a string",
			map[string]string{"generator": g.ID()},
		)
	}
	return Output{Text: text, Roll: rolls}, nil
}

func scriptError(id, message string, err error) error {
	return apperrors.WrapWithMetadata(
		apperrors.CodeGeneratorScript,
		message,
		map[string]string{"generator": id},
		err,
	)
}
