package script

import (
	"github.com/tidwall/gjson"
	lua "github.com/yuin/gopher-lua"
)

// toGo converts a Lua value into something encoding/json can marshal.
func toGo(lv lua.LValue) any {
	return toGoVisited(lv, make(map[*lua.LTable]bool))
}

func toGoVisited(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		// Break circular references
		if visited[v] {
			return nil
		}
		visited[v] = true
		defer delete(visited, v)
		return tableToGo(v, visited)
	default:
		// nil, functions, userdata and threads have no JSON form
		return nil
	}
}

// tableToGo returns a slice for tables keyed 1..n and a map otherwise.
// An empty table becomes an empty object.
func tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	isArray := true
	maxN, count := 0, 0
	t.ForEach(func(k, _ lua.LValue) {
		count++
		if kn, ok := k.(lua.LNumber); ok {
			n := int(kn)
			if float64(n) == float64(kn) && n > 0 {
				maxN = max(maxN, n)
				return
			}
		}
		isArray = false
	})

	if isArray && maxN > 0 && count == maxN {
		arr := make([]any, maxN)
		for i := 1; i <= maxN; i++ {
			arr[i-1] = toGoVisited(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]any, count)
	t.ForEach(func(k, v lua.LValue) {
		m[k.String()] = toGoVisited(v, visited)
	})
	return m
}

// fromJSON converts a document value into a Lua value. Missing values and
// JSON null both become nil.
func fromJSON(L *lua.LState, r gjson.Result) lua.LValue {
	switch {
	case !r.Exists():
		return lua.LNil
	case r.IsArray():
		t := L.NewTable()
		for _, item := range r.Array() {
			t.Append(fromJSON(L, item))
		}
		return t
	case r.IsObject():
		t := L.NewTable()
		r.ForEach(func(k, v gjson.Result) bool {
			t.RawSetString(k.String(), fromJSON(L, v))
			return true
		})
		return t
	}

	switch r.Type {
	case gjson.True:
		return lua.LTrue
	case gjson.False:
		return lua.LFalse
	case gjson.Number:
		return lua.LNumber(r.Num)
	case gjson.String:
		return lua.LString(r.Str)
	default:
		return lua.LNil
	}
}
