package jsondoc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// splitPath splits a path on unescaped dots. Segments keep their escapes so
// joinPath(splitPath(p)) == p.
func splitPath(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	var segs []string
	start := 0
	for i := 0; i < len(path); i++ {
		switch path[i] {
		case '\\':
			i++ // skip escaped char
		case '.':
			segs = append(segs, path[start:i])
			start = i + 1
		case '*', '?', '#', '|', '@':
			return nil, fmt.Errorf("%w: %q: %q is not allowed", ErrInvalidPath, path, path[i])
		}
	}
	segs = append(segs, path[start:])

	for _, s := range segs {
		if s == "" {
			return nil, fmt.Errorf("%w: %q: empty segment", ErrInvalidPath, path)
		}
	}
	return segs, nil
}

func joinPath(segs []string) string {
	return strings.Join(segs, ".")
}

// parentPath returns the parent of path, "" for a top-level key.
func parentPath(segs []string) string {
	return joinPath(segs[:len(segs)-1])
}

// arrayIndex parses seg as a non-negative array index.
func arrayIndex(seg string) (int, bool) {
	if seg == "" {
		return 0, false
	}
	for i := 0; i < len(seg); i++ {
		if seg[i] < '0' || seg[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(seg)
	return n, err == nil
}

func arrayLen(r gjson.Result) int {
	if !r.IsArray() {
		return 0
	}
	return int(gjson.Get(r.Raw, "#").Int())
}

// checkWritable verifies that writing at segs cannot clobber a scalar or pad
// an array: every existing ancestor must be a container and array indexes
// may be at most one past the end.
func checkWritable(raw string, segs []string) error {
	for i := 0; i < len(segs); i++ {
		parent := lookup(raw, joinPath(segs[:i]))
		if !parent.Exists() {
			// Missing ancestors are created by the write.
			return nil
		}

		switch {
		case parent.IsObject():
		case parent.IsArray():
			idx, ok := arrayIndex(segs[i])
			if !ok {
				return fmt.Errorf("%w: %q is not an array index", ErrNotContainer, segs[i])
			}
			if idx > arrayLen(parent) {
				return fmt.Errorf("%w: index %d past length %d", ErrIndexOutOfRange, idx, arrayLen(parent))
			}
		default:
			name := joinPath(segs[:i])
			if name == "" {
				name = "document root"
			}
			return fmt.Errorf("%w: %s", ErrNotContainer, name)
		}
	}
	return nil
}

// shallowestMissing returns the shortest prefix of segs that does not exist.
func shallowestMissing(raw string, segs []string) string {
	for i := 1; i <= len(segs); i++ {
		p := joinPath(segs[:i])
		if !lookup(raw, p).Exists() {
			return p
		}
	}
	return joinPath(segs)
}
