package jsondoc

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dshills/rewind/internal/patch"
	"github.com/tidwall/gjson"
)

// Draft is an in-progress edit of a Document. Every write is applied to the
// draft's working copy immediately and recorded as a forward op plus the op
// that reverts it.
type Draft struct {
	raw     string
	forward []Op
	inverse []Op // recording order; reversed by Produce
}

func newDraft(doc Document) *Draft {
	return &Draft{raw: doc.Raw()}
}

// Get returns the current value at path, including earlier draft writes.
func (d *Draft) Get(path string) gjson.Result {
	return lookup(d.raw, path)
}

// Exists reports whether path currently exists.
func (d *Draft) Exists(path string) bool {
	return d.Get(path).Exists()
}

// Len returns the element count of the array or object at path, or 0 for
// anything else.
func (d *Draft) Len(path string) int {
	r := d.Get(path)
	switch {
	case r.IsArray():
		return arrayLen(r)
	case r.IsObject():
		n := 0
		r.ForEach(func(_, _ gjson.Result) bool {
			n++
			return true
		})
		return n
	default:
		return 0
	}
}

// Document returns the draft's current working copy.
func (d *Draft) Document() Document {
	return Document{raw: d.raw}
}

// Changed reports whether any write has been recorded.
func (d *Draft) Changed() bool {
	return len(d.forward) > 0
}

// Set marshals value and writes it at path.
func (d *Draft) Set(path string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", patch.ErrInvalidMutation, path, err)
	}
	return d.SetRaw(path, string(data))
}

// SetRaw writes raw JSON at path. Writing a value identical to the current
// one records nothing.
func (d *Draft) SetRaw(path, raw string) error {
	segs, err := splitPath(path)
	if err != nil {
		return mutationError(path, err)
	}
	if !gjson.Valid(raw) {
		return mutationError(path, ErrInvalidValue)
	}
	raw = compact(raw)

	// A trailing -1 on an array appends; pin it to the concrete index so
	// the inverse removes exactly that element.
	last := len(segs) - 1
	if segs[last] == "-1" {
		if parent := lookup(d.raw, parentPath(segs)); parent.IsArray() {
			segs[last] = strconv.Itoa(arrayLen(parent))
			path = joinPath(segs)
		}
	}

	if err := checkWritable(d.raw, segs); err != nil {
		return mutationError(path, err)
	}

	var fwd, inv Op
	if old := lookup(d.raw, path); old.Exists() {
		if old.Raw == raw {
			return nil
		}
		fwd = Op{Kind: OpReplace, Path: path, Value: json.RawMessage(raw)}
		inv = Op{Kind: OpReplace, Path: path, Value: json.RawMessage(old.Raw)}
	} else {
		// Missing ancestors are created by the add; removing the shallowest
		// one takes all of them away again.
		fwd = Op{Kind: OpAdd, Path: path, Value: json.RawMessage(raw)}
		inv = Op{Kind: OpRemove, Path: shallowestMissing(d.raw, segs)}
	}

	return d.commit(fwd, inv)
}

// Delete removes the value at path.
func (d *Draft) Delete(path string) error {
	segs, err := splitPath(path)
	if err != nil {
		return mutationError(path, err)
	}
	if !lookup(d.raw, path).Exists() {
		return mutationError(path, ErrPathNotFound)
	}

	// Restoring the parent wholesale puts the value back at its original
	// position, which neither sjson index writes nor key appends can do.
	pp := parentPath(segs)
	parent := lookup(d.raw, pp)

	fwd := Op{Kind: OpRemove, Path: path}
	inv := Op{Kind: OpReplace, Path: pp, Value: json.RawMessage(parent.Raw)}
	return d.commit(fwd, inv)
}

func (d *Draft) commit(fwd, inv Op) error {
	next, err := applyOp(d.raw, fwd)
	if err != nil {
		return mutationError(fwd.Path, err)
	}
	d.raw = next
	d.forward = append(d.forward, fwd)
	d.inverse = append(d.inverse, inv)
	return nil
}

func mutationError(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", patch.ErrInvalidMutation, path, err)
}
