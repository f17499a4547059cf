package history

// options holds construction-time settings shared by every History
// instantiation, so Option does not need type parameters.
type options struct {
	maxEntries int
	observers  []Observer
}

// Option configures a History during creation.
type Option func(*options)

// WithMaxEntries caps the number of retained entries. When a record pushes
// the log past the cap, the oldest entries are evicted. Zero or a negative
// value leaves the log unbounded.
func WithMaxEntries(max int) Option {
	return func(o *options) {
		o.maxEntries = max
	}
}

// WithObserver registers a callback invoked after every state transition.
func WithObserver(fn Observer) Option {
	return func(o *options) {
		if fn != nil {
			o.observers = append(o.observers, fn)
		}
	}
}

// RecordOption configures a single Record call.
type RecordOption func(*recordOptions)

type recordOptions struct {
	label string
}

// WithLabel attaches a human-readable description to the recorded entry.
func WithLabel(label string) RecordOption {
	return func(o *recordOptions) {
		o.label = label
	}
}
