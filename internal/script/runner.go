package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dshills/rewind/internal/patch/jsondoc"
	lua "github.com/yuin/gopher-lua"
)

// DefaultTimeout bounds a single chunk.
const DefaultTimeout = 2 * time.Second

// Runner executes Lua chunks against document drafts. A Runner holds only
// configuration and may be shared; every run uses its own Lua state.
type Runner struct {
	timeout time.Duration
	out     io.Writer
}

// Option configures a Runner.
type Option func(*Runner)

// WithTimeout sets the per-chunk deadline. Zero or negative disables it.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithOutput sends print output to w.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		if w != nil {
			r.out = w
		}
	}
}

// NewRunner creates a runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		timeout: DefaultTimeout,
		out:     io.Discard,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recipe returns a jsondoc recipe that runs code.
func (r *Runner) Recipe(ctx context.Context, code string) jsondoc.Recipe {
	return func(d *jsondoc.Draft) error {
		return r.Run(ctx, d, code)
	}
}

// Run executes code with d bound to the global doc.
func (r *Runner) Run(ctx context.Context, d *jsondoc.Draft, code string) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	L := newState()
	defer L.Close()
	L.SetContext(ctx)

	// hostErr keeps the typed error from the last failed doc call; Lua only
	// sees its text. A script may catch it with pcall, so it is reported only
	// when the chunk dies with that same message.
	var hostErr error
	L.SetGlobal("doc", r.docModule(L, d, &hostErr))
	L.SetGlobal("print", L.NewFunction(r.print))

	err := doWithRecovery(func() error {
		return L.DoString(code)
	})
	switch {
	case err == nil:
		return nil
	case hostErr != nil && strings.Contains(err.Error(), hostErr.Error()):
		return &Error{Err: hostErr}
	case ctx.Err() != nil:
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &Error{Err: ErrTimeout}
		}
		return &Error{Err: ctx.Err()}
	default:
		return &Error{Err: err}
	}
}

// newState opens a Lua state with only the safe standard libraries.
func newState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

func doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

func (r *Runner) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	fmt.Fprintln(r.out, strings.Join(parts, "\t"))
	return 0
}

func (r *Runner) docModule(L *lua.LState, d *jsondoc.Draft, hostErr *error) *lua.LTable {
	raise := func(L *lua.LState, err error) int {
		*hostErr = err
		L.RaiseError("%s", err.Error())
		return 0
	}

	return L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"get": func(L *lua.LState) int {
			L.Push(fromJSON(L, d.Get(L.CheckString(1))))
			return 1
		},
		"exists": func(L *lua.LState) int {
			L.Push(lua.LBool(d.Exists(L.CheckString(1))))
			return 1
		},
		"len": func(L *lua.LState) int {
			L.Push(lua.LNumber(d.Len(L.CheckString(1))))
			return 1
		},
		"set": func(L *lua.LState) int {
			path := L.CheckString(1)
			if err := d.Set(path, toGo(L.Get(2))); err != nil {
				return raise(L, err)
			}
			return 0
		},
		"delete": func(L *lua.LState) int {
			if err := d.Delete(L.CheckString(1)); err != nil {
				return raise(L, err)
			}
			return 0
		},
	})
}
