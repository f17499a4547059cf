// Package jsondoc implements a patch engine for immutable JSON documents.
//
// A Document is a compact JSON text. Reads go through gjson and writes through
// sjson; every write yields a new Document and leaves the old one intact.
//
// # Paths
//
// Paths use gjson dot syntax: "data.1" is index 1 of the "data" array and
// "meta.title" is a nested key. A literal dot is escaped as "\.". Wildcards,
// queries, modifiers and pipes are rejected so every path names exactly one
// location. When setting, a final "-1" segment on an array appends.
//
// # Producing patches
//
// Edits are written against a Draft, in the style of a produce-with-patches
// recipe:
//
//	next, forward, inverse, err := jsondoc.Engine{}.Produce(doc, func(d *jsondoc.Draft) error {
//		return d.Set("data.1", []int{7, 7, 7})
//	})
//
// Each Draft write records a forward op and the op that reverts it exactly,
// so Apply(Apply(doc, forward), inverse) reproduces doc.
package jsondoc
