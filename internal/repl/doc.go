// Package repl implements the interactive rewind shell.
//
// The shell edits one JSON document through a session.Session, so every
// command that changes the document can be undone and redone. Input and
// output are plain io.Reader and io.Writer values, which keeps the shell
// usable from a terminal, a pipe, or a test.
package repl
