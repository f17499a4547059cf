package jsondoc

// Change is one step of a Mutation.
type Change struct {
	Path   string
	Value  any // marshalled with encoding/json; json.RawMessage passes through
	Delete bool
}

// Set returns a change that writes v at path.
func Set(path string, v any) Change {
	return Change{Path: path, Value: v}
}

// Delete returns a change that removes path.
func Delete(path string) Change {
	return Change{Path: path, Delete: true}
}

// Mutation is an ordered list of changes describing one forward edit.
type Mutation []Change

// Apply writes every change to d, stopping at the first failure.
func (m Mutation) Apply(d *Draft) error {
	for _, c := range m {
		var err error
		if c.Delete {
			err = d.Delete(c.Path)
		} else {
			err = d.Set(c.Path, c.Value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
