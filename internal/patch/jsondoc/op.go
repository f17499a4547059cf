package jsondoc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Errors returned by document operations.
var (
	// ErrInvalidPath indicates a malformed or unsupported path.
	ErrInvalidPath = errors.New("invalid path")

	// ErrPathNotFound indicates the path does not exist in the document.
	ErrPathNotFound = errors.New("path not found")

	// ErrPathExists indicates an add targeted a path that already exists.
	ErrPathExists = errors.New("path already exists")

	// ErrNotContainer indicates a path descends through a scalar, or uses a
	// key on an array.
	ErrNotContainer = errors.New("not a container")

	// ErrIndexOutOfRange indicates an array index beyond the append slot.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidValue indicates a value that is not valid JSON.
	ErrInvalidValue = errors.New("invalid JSON value")

	// ErrUnknownOp indicates an op kind this engine does not implement.
	ErrUnknownOp = errors.New("unknown op")
)

// OpKind is the kind of a patch operation.
type OpKind string

const (
	// OpAdd creates a value at a path that does not exist yet.
	OpAdd OpKind = "add"
	// OpReplace overwrites an existing value. An empty path replaces the root.
	OpReplace OpKind = "replace"
	// OpRemove deletes an existing value.
	OpRemove OpKind = "remove"
)

// Op is a single patch operation.
type Op struct {
	Kind  OpKind          `json:"op"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value,omitempty"`
}

// String renders the op for logs and errors.
func (op Op) String() string {
	path := op.Path
	if path == "" {
		path = "<root>"
	}
	if op.Kind == OpRemove {
		return fmt.Sprintf("%s %s", op.Kind, path)
	}
	return fmt.Sprintf("%s %s %s", op.Kind, path, op.Value)
}

// applyOp applies a single op to raw, validating that the op fits the
// document it is applied to.
func applyOp(raw string, op Op) (string, error) {
	switch op.Kind {
	case OpReplace:
		if !gjson.ValidBytes(op.Value) {
			return "", ErrInvalidValue
		}
		if op.Path == "" {
			return compact(string(op.Value)), nil
		}
		if _, err := splitPath(op.Path); err != nil {
			return "", err
		}
		if !lookup(raw, op.Path).Exists() {
			return "", fmt.Errorf("%w: %s", ErrPathNotFound, op.Path)
		}
		return sjson.SetRaw(raw, op.Path, compact(string(op.Value)))

	case OpAdd:
		if !gjson.ValidBytes(op.Value) {
			return "", ErrInvalidValue
		}
		segs, err := splitPath(op.Path)
		if err != nil {
			return "", err
		}
		if lookup(raw, op.Path).Exists() {
			return "", fmt.Errorf("%w: %s", ErrPathExists, op.Path)
		}
		if err := checkWritable(raw, segs); err != nil {
			return "", err
		}
		return sjson.SetRaw(raw, op.Path, compact(string(op.Value)))

	case OpRemove:
		if _, err := splitPath(op.Path); err != nil {
			return "", err
		}
		if !lookup(raw, op.Path).Exists() {
			return "", fmt.Errorf("%w: %s", ErrPathNotFound, op.Path)
		}
		return sjson.Delete(raw, op.Path)

	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOp, op.Kind)
	}
}
