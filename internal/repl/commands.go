package repl

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/rewind/internal/patch/jsondoc"
)

type command struct {
	name  string
	usage string
	help  string
	run   func(s *Shell, ctx context.Context, args string) error
}

var commands = []command{
	{"set", "set <path> <json>", "write a JSON value at path", cmdSet},
	{"del", "del <path>", "delete the value at path", cmdDel},
	{"lua", "lua <code>", "edit the document with a Lua chunk", cmdLua},
	{"run", "run <file.lua>", "edit the document with a Lua file", cmdRun},
	{"undo", "undo [n]", "undo n edits", cmdUndo},
	{"redo", "redo [n]", "redo n edits", cmdRedo},
	{"reset", "reset", "forget history, keep the document", cmdReset},
	{"load", "load <json>", "replace the document and forget history", cmdLoad},
	{"show", "show [path]", "print the document or a value", cmdShow},
	{"history", "history", "list undo and redo entries", cmdHistory},
	{"status", "status", "print undo/redo counts", cmdStatus},
	{"begin", "begin <label>", "start grouping edits", cmdBegin},
	{"end", "end", "record grouped edits as one entry", cmdEnd},
	{"cancel", "cancel", "drop grouped edits", cmdCancel},
	{"mark", "mark <name>", "remember the current position", cmdMark},
	{"back", "back <name>", "undo back to a mark", cmdBack},
	{"forward", "forward <name>", "redo forward to a mark", cmdForward},
	{"limit", "limit <n>", "cap history at n entries (0 = unbounded)", cmdLimit},
}

func lookup(name string) (command, bool) {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd, true
		}
	}
	return command{}, false
}

func cmdSet(s *Shell, _ context.Context, args string) error {
	path, value, ok := splitPathArg(args)
	if !ok {
		return ErrUsage
	}
	raw, err := rawJSON(value)
	if err != nil {
		return err
	}
	return s.edit("set "+path, jsondoc.Mutation{jsondoc.Set(path, raw)})
}

func cmdDel(s *Shell, _ context.Context, args string) error {
	if args == "" {
		return ErrUsage
	}
	return s.edit("del "+args, jsondoc.Mutation{jsondoc.Delete(args)})
}

func cmdLua(s *Shell, ctx context.Context, args string) error {
	if args == "" {
		return ErrUsage
	}
	return s.produce(ctx, "lua", args)
}

func cmdRun(s *Shell, ctx context.Context, args string) error {
	if args == "" {
		return ErrUsage
	}
	code, err := readScript(args)
	if err != nil {
		return err
	}
	return s.produce(ctx, "run "+args, code)
}

func cmdUndo(s *Shell, _ context.Context, args string) error {
	n, err := count(args)
	if err != nil {
		return err
	}
	done := 0
	for ; done < n; done++ {
		ok, err := s.sess.Undo()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	if done == 0 {
		s.println(s.styles.dim.Render("nothing to undo"))
		return nil
	}
	s.printOK("undone %d", done)
	return nil
}

func cmdRedo(s *Shell, _ context.Context, args string) error {
	n, err := count(args)
	if err != nil {
		return err
	}
	done := 0
	for ; done < n; done++ {
		ok, err := s.sess.Redo()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	if done == 0 {
		s.println(s.styles.dim.Render("nothing to redo"))
		return nil
	}
	s.printOK("redone %d", done)
	return nil
}

func cmdReset(s *Shell, _ context.Context, _ string) error {
	s.sess.Reset()
	clear(s.marks)
	s.printOK("history cleared")
	return nil
}

func cmdLoad(s *Shell, _ context.Context, args string) error {
	if args == "" {
		return ErrUsage
	}
	doc, err := jsondoc.Parse([]byte(args))
	if err != nil {
		return err
	}
	s.sess.Load(doc)
	clear(s.marks)
	s.printOK("document loaded")
	return nil
}

func cmdShow(s *Shell, _ context.Context, args string) error {
	doc := s.sess.State()
	if args == "" {
		s.println(strings.TrimRight(doc.Pretty(), "\n"))
		return nil
	}
	r := doc.Get(args)
	if !r.Exists() {
		return fmt.Errorf("%w: %s", jsondoc.ErrPathNotFound, args)
	}
	v, err := jsondoc.Parse([]byte(r.Raw))
	if err != nil {
		return err
	}
	s.println(strings.TrimRight(v.Pretty(), "\n"))
	return nil
}

func cmdHistory(s *Shell, _ context.Context, _ string) error {
	undo, redo := s.sess.History()
	if len(undo) == 0 && len(redo) == 0 {
		s.println(s.styles.dim.Render("history is empty"))
		return nil
	}

	for i, info := range undo {
		line := fmt.Sprintf("  %3d  %s  %s", i+1, info.Timestamp.Format("15:04:05"), info.Label)
		if i == len(undo)-1 {
			line = s.styles.current.Render("> " + strings.TrimPrefix(line, "  "))
		}
		s.println(line)
	}
	for i, info := range redo {
		s.println(s.styles.dim.Render(fmt.Sprintf("  %3d  %s  %s", len(undo)+i+1, info.Timestamp.Format("15:04:05"), info.Label)))
	}
	return nil
}

func cmdStatus(s *Shell, _ context.Context, _ string) error {
	limit := "unbounded"
	if n := s.sess.MaxEntries(); n > 0 {
		limit = strconv.Itoa(n)
	}
	line := fmt.Sprintf("undo %d  redo %d  limit %s", s.sess.UndoCount(), s.sess.RedoCount(), limit)
	if s.sess.IsGrouping() {
		line += "  " + s.styles.current.Render("grouping")
	}
	s.println(s.styles.label.Render(line))
	return nil
}

func cmdBegin(s *Shell, _ context.Context, args string) error {
	if args == "" {
		return ErrUsage
	}
	if s.sess.IsGrouping() {
		return fmt.Errorf("already grouping")
	}
	s.sess.BeginGroup(args)
	s.printOK("grouping %q", args)
	return nil
}

func cmdEnd(s *Shell, _ context.Context, _ string) error {
	if !s.sess.IsGrouping() {
		return fmt.Errorf("not grouping")
	}
	s.sess.EndGroup()
	s.printOK("group recorded")
	return nil
}

func cmdCancel(s *Shell, _ context.Context, _ string) error {
	if !s.sess.IsGrouping() {
		return fmt.Errorf("not grouping")
	}
	s.sess.CancelGroup()
	s.printOK("group dropped")
	return nil
}

func cmdMark(s *Shell, _ context.Context, args string) error {
	if args == "" {
		return ErrUsage
	}
	s.marks[args] = s.sess.Checkpoint()
	s.printOK("marked %q", args)
	return nil
}

func cmdBack(s *Shell, _ context.Context, args string) error {
	cp, ok := s.marks[args]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMark, args)
	}
	if err := s.sess.UndoTo(cp); err != nil {
		return err
	}
	s.printOK("back at %q", args)
	return nil
}

func cmdForward(s *Shell, _ context.Context, args string) error {
	cp, ok := s.marks[args]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMark, args)
	}
	if err := s.sess.RedoTo(cp); err != nil {
		return err
	}
	s.printOK("forward at %q", args)
	return nil
}

func cmdLimit(s *Shell, ctx context.Context, args string) error {
	n, err := strconv.Atoi(args)
	if err != nil || n < 0 {
		return ErrUsage
	}
	s.sess.SetMaxEntries(n)
	return cmdStatus(s, ctx, "")
}
