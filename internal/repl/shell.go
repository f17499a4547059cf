package repl

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dshills/rewind/internal/history"
	"github.com/dshills/rewind/internal/patch/jsondoc"
	"github.com/dshills/rewind/internal/script"
	"github.com/dshills/rewind/internal/session"
	"github.com/tidwall/gjson"
)

// DocSession is the session type the shell edits.
type DocSession = session.Session[jsondoc.Document, jsondoc.Mutation, jsondoc.Op]

// Errors returned by Exec.
var (
	// ErrUnknownCommand indicates the first word is not a command.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrUsage indicates a command was given the wrong arguments.
	ErrUsage = errors.New("usage")

	// ErrUnknownMark indicates a checkpoint name that was never set.
	ErrUnknownMark = errors.New("unknown mark")
)

// errQuit ends Run.
var errQuit = errors.New("quit")

// Shell reads commands and applies them to a document session.
type Shell struct {
	sess   *DocSession
	runner *script.Runner
	out    io.Writer
	styles styles
	prompt bool

	marks map[string]history.Checkpoint
}

// Option configures a Shell.
type Option func(*Shell)

// WithPrompt enables the "rewind> " prompt before each line.
func WithPrompt(on bool) Option {
	return func(s *Shell) {
		s.prompt = on
	}
}

// New creates a shell over sess that writes to out.
func New(sess *DocSession, runner *script.Runner, out io.Writer, opts ...Option) *Shell {
	s := &Shell{
		sess:   sess,
		runner: runner,
		out:    out,
		styles: newStyles(out),
		marks:  make(map[string]history.Checkpoint),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes commands from in until EOF, quit, or ctx is done. Command
// errors are printed and do not stop the loop.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)

	// The reader may block on a terminal, so it runs apart from the loop
	// that watches ctx.
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		if s.prompt {
			fmt.Fprint(s.out, s.styles.prompt.Render("rewind> "))
		}

		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok = <-lines:
		}
		if !ok {
			select {
			case err := <-scanErr:
				return err
			default:
				return ctx.Err()
			}
		}

		err := s.Exec(ctx, line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			s.printErr(err)
		}
	}
}

// Exec runs a single command line. Blank lines and lines starting with #
// are ignored.
func (s *Shell) Exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	name, args, _ := strings.Cut(line, " ")
	args = strings.TrimSpace(args)

	switch name {
	case "help", "?":
		s.help()
		return nil
	case "quit", "exit":
		return errQuit
	}

	cmd, ok := lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	if err := cmd.run(s, ctx, args); err != nil {
		if errors.Is(err, ErrUsage) {
			return fmt.Errorf("%w: %s", ErrUsage, cmd.usage)
		}
		return err
	}
	return nil
}

func (s *Shell) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

func (s *Shell) printOK(format string, a ...any) {
	s.println(s.styles.ok.Render(fmt.Sprintf(format, a...)))
}

func (s *Shell) printErr(err error) {
	s.println(s.styles.err.Render("error: " + err.Error()))
}

func (s *Shell) help() {
	for _, cmd := range commands {
		s.println(fmt.Sprintf("  %-22s %s", cmd.usage, s.styles.dim.Render(cmd.help)))
	}
	s.println(fmt.Sprintf("  %-22s %s", "help", s.styles.dim.Render("show this list")))
	s.println(fmt.Sprintf("  %-22s %s", "quit", s.styles.dim.Render("leave the shell")))
}

// splitPathArg splits "path rest" where rest may contain spaces.
func splitPathArg(args string) (string, string, bool) {
	path, rest, ok := strings.Cut(args, " ")
	rest = strings.TrimSpace(rest)
	return path, rest, ok && path != "" && rest != ""
}

// count parses an optional repeat count, defaulting to 1.
func count(args string) (int, error) {
	if args == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(args)
	if err != nil || n < 1 {
		return 0, ErrUsage
	}
	return n, nil
}

// produce runs a Lua chunk against the current document and commits it.
func (s *Shell) produce(ctx context.Context, label, code string) error {
	next, forward, inverse, err := jsondoc.Engine{}.Produce(s.sess.State(), s.runner.Recipe(ctx, code))
	if err != nil {
		return err
	}
	s.sess.Commit(label, next, forward, inverse)
	s.printOK("%s (%d ops)", label, len(forward))
	return nil
}

func (s *Shell) edit(label string, m jsondoc.Mutation) error {
	if err := s.sess.Edit(label, m); err != nil {
		return err
	}
	s.printOK("%s", label)
	return nil
}

func readScript(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading script: %w", err)
	}
	return string(data), nil
}

func rawJSON(s string) (json.RawMessage, error) {
	if !gjson.Valid(s) {
		return nil, fmt.Errorf("%w: %s", jsondoc.ErrInvalidValue, s)
	}
	return json.RawMessage(s), nil
}
