package jsondoc

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Document is an immutable JSON value. The zero Document is JSON null.
type Document struct {
	raw string
}

// Parse validates data and returns it as a compact Document.
func Parse(data []byte) (Document, error) {
	if !gjson.ValidBytes(data) {
		return Document{}, fmt.Errorf("parse document: %w", ErrInvalidValue)
	}
	return Document{raw: compact(string(data))}, nil
}

// MustParse is like Parse but panics on invalid JSON. Intended for literals.
func MustParse(s string) Document {
	doc, err := Parse([]byte(s))
	if err != nil {
		panic(err)
	}
	return doc
}

// FromValue marshals v and returns it as a Document.
func FromValue(v any) (Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Document{}, fmt.Errorf("marshal document: %w", err)
	}
	return Parse(data)
}

// Raw returns the compact JSON text.
func (d Document) Raw() string {
	if d.raw == "" {
		return "null"
	}
	return d.raw
}

// String implements fmt.Stringer.
func (d Document) String() string {
	return d.Raw()
}

// Pretty returns the document indented for display.
func (d Document) Pretty() string {
	return string(pretty.Pretty([]byte(d.Raw())))
}

// Get returns the value at path. An empty path returns the whole document.
func (d Document) Get(path string) gjson.Result {
	return lookup(d.Raw(), path)
}

// Equal reports whether both documents hold the same JSON value. Object key
// order and whitespace are ignored.
func (d Document) Equal(other Document) bool {
	return d.Raw() == other.Raw() || canonical(d.Raw()) == canonical(other.Raw())
}

// MarshalJSON implements json.Marshaler.
func (d Document) MarshalJSON() ([]byte, error) {
	return []byte(d.Raw()), nil
}

func lookup(raw, path string) gjson.Result {
	if path == "" {
		return gjson.Parse(raw)
	}
	return gjson.Get(raw, path)
}

func compact(s string) string {
	return string(pretty.Ugly([]byte(s)))
}

var sortedKeys = &pretty.Options{Width: 80, Indent: "  ", SortKeys: true}

func canonical(s string) string {
	return string(pretty.Ugly(pretty.PrettyOptions([]byte(s), sortedKeys)))
}
