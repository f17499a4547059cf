// Package script runs Lua chunks as document recipes.
//
// A chunk sees the document being edited as the global table doc:
//
//	doc.get(path)        -- value at path, or nil
//	doc.set(path, value) -- write a value; a final "-1" segment appends
//	doc.delete(path)     -- remove a value
//	doc.len(path)        -- element count of an array or object
//	doc.exists(path)     -- whether path exists
//
// Every write goes through a jsondoc.Draft, so a chunk produces the same
// forward and inverse patches as the equivalent Go recipe.
//
// Each run gets a fresh Lua state with only the base, table, string and
// math libraries. Functions that load code from files or strings are
// removed, and execution is bounded by a timeout.
package script
