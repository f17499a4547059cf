package jsondoc

import (
	"slices"

	"github.com/dshills/rewind/internal/patch"
)

// Recipe edits a Draft. Returning an error abandons the whole edit.
type Recipe func(d *Draft) error

// Engine is the JSON document patch engine. It holds no state.
type Engine struct{}

var _ patch.Engine[Document, Mutation, Op] = Engine{}

// Produce runs recipe against a draft of doc and returns the edited document
// with its forward and inverse patch sets. If recipe fails, doc is returned
// unchanged with no patches.
func (Engine) Produce(doc Document, recipe Recipe) (Document, []Op, []Op, error) {
	d := newDraft(doc)
	if err := recipe(d); err != nil {
		return doc, nil, nil, err
	}

	inverse := slices.Clone(d.inverse)
	slices.Reverse(inverse)
	return d.Document(), d.forward, inverse, nil
}

// Diff implements patch.Engine.
func (e Engine) Diff(doc Document, m Mutation) (Document, []Op, []Op, error) {
	return e.Produce(doc, m.Apply)
}

// Apply implements patch.Engine. Ops are applied in order; the first op that
// does not fit the document aborts the whole set and doc is returned as is.
func (Engine) Apply(doc Document, ops []Op) (Document, error) {
	raw := doc.Raw()
	for i, op := range ops {
		next, err := applyOp(raw, op)
		if err != nil {
			return doc, &patch.ApplyError{Index: i, Op: op.String(), Err: err}
		}
		raw = next
	}
	return Document{raw: raw}, nil
}
