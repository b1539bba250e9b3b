package mindpulse

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// ──────────────────────────────────────────────
// Lua-scripted algorithm units
// ──────────────────────────────────────────────

// LuaAlgorithm runs a Lua script as an algorithm unit, so deployments can
// add scoring heuristics without recompiling. The script must define:
//
//	function evaluate(profile, data)
//	    return { score = 0.4, confidence = 0.9, insight = "optional text" }
//	end
//
// profile carries user_id and baselines; data carries signal means, event
// counts by type, error_rate and event_count. Scores outside [0,1] are
// clamped. Script errors surface as AlgorithmExecutionError and are
// absorbed by the registry's failure isolation like any other unit failure.
type LuaAlgorithm struct {
	name   string
	family Family
	script string
}

// NewLuaAlgorithm compiles nothing up front; the script is checked on first
// Execute. Name doubles as the unit's weight-table key.
func NewLuaAlgorithm(name string, family Family, script string) *LuaAlgorithm {
	return &LuaAlgorithm{name: name, family: family, script: script}
}

func (a *LuaAlgorithm) Name() string   { return a.name }
func (a *LuaAlgorithm) Family() Family { return a.family }

// Execute runs the script in a fresh Lua state per call; units are
// stateless, so no state is shared across invocations.
func (a *LuaAlgorithm) Execute(profile *UserProfile, data *SessionData) (*AlgorithmResult, error) {
	L := lua.NewState()
	defer L.Close()

	if err := L.DoString(a.script); err != nil {
		return nil, fmt.Errorf("script load: %w", err)
	}
	evaluate := L.GetGlobal("evaluate")
	if evaluate.Type() != lua.LTFunction {
		return nil, fmt.Errorf("script does not define evaluate(profile, data)")
	}

	if err := L.CallByParam(lua.P{
		Fn:      evaluate,
		NRet:    1,
		Protect: true,
	}, a.profileTable(L, profile), a.dataTable(L, data)); err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	ret := L.Get(-1)
	L.Pop(1)
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("evaluate must return a table, got %s", ret.Type())
	}

	score := luaNumber(tbl.RawGetString("score"))
	confidence := luaNumber(tbl.RawGetString("confidence"))
	res := newResult(a.name, score, confidence)
	if msg, ok := tbl.RawGetString("insight").(lua.LString); ok && msg != "" {
		res.Insights = append(res.Insights, Insight{
			Type:       "scripted",
			Message:    string(msg),
			Confidence: res.Confidence,
		})
	}
	return res, nil
}

func (a *LuaAlgorithm) profileTable(L *lua.LState, profile *UserProfile) *lua.LTable {
	tbl := L.NewTable()
	if profile == nil {
		return tbl
	}
	tbl.RawSetString("user_id", lua.LString(profile.UserID))
	baselines := L.NewTable()
	for k, v := range profile.Baselines {
		baselines.RawSetString(k, lua.LNumber(v))
	}
	tbl.RawSetString("baselines", baselines)
	return tbl
}

func (a *LuaAlgorithm) dataTable(L *lua.LState, data *SessionData) *lua.LTable {
	tbl := L.NewTable()
	if data == nil {
		return tbl
	}

	signals := L.NewTable()
	seen := make(map[string]bool)
	for i := range data.Events {
		for key := range data.Events[i].Signals {
			seen[key] = true
		}
	}
	for i := range data.Summaries {
		for key := range data.Summaries[i].SignalMeans {
			seen[key] = true
		}
	}
	for key := range seen {
		if v, ok := data.MeanSignal(key); ok {
			signals.RawSetString(key, lua.LNumber(v))
		}
	}
	tbl.RawSetString("signals", signals)

	counts := L.NewTable()
	for i := range data.Events {
		t := data.Events[i].Type
		prev := luaNumber(counts.RawGetString(t))
		counts.RawSetString(t, lua.LNumber(prev+1))
	}
	tbl.RawSetString("counts", counts)

	tbl.RawSetString("event_count", lua.LNumber(len(data.Events)))
	tbl.RawSetString("error_rate", lua.LNumber(data.ErrorRate()))
	return tbl
}

func luaNumber(v lua.LValue) float64 {
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}
