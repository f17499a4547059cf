package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/dshills/rewind/internal/patch/jsondoc"
	"github.com/dshills/rewind/internal/session"
	"github.com/spf13/cobra"
)

const demoDoc = `{"x":10,"data":[[1,2,3],[6,6,6],[7,8,9]]}`

func newDemoCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Edit a row, then undo and redo it",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(g)
			if err != nil {
				return err
			}
			sess := session.New[jsondoc.Document, jsondoc.Mutation, jsondoc.Op](jsondoc.Engine{}, jsondoc.MustParse(demoDoc),
				session.WithName("demo"),
				session.WithMaxEntries(e.cfg.History.MaxEntries),
				session.WithLogger(e.logger),
				session.WithMetrics(e.metrics),
			)
			return runDemo(cmd.OutOrStdout(), sess)
		},
	}
}

type demoSession = session.Session[jsondoc.Document, jsondoc.Mutation, jsondoc.Op]

// runDemo sets row 1 to [7,7,7], undoes it and redoes it, printing the
// document and counters after each step.
func runDemo(w io.Writer, sess *demoSession) error {
	r := lipgloss.NewRenderer(w)
	title := r.NewStyle().Bold(true).Foreground(lipgloss.Color("#61AFEF"))
	dim := r.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	step := func(name string) {
		fmt.Fprintln(w, title.Render(name))
		fmt.Fprintf(w, "  data.1 = %s\n", sess.State().Get("data.1").Raw)
		fmt.Fprintln(w, dim.Render(fmt.Sprintf("  undo %d  redo %d", sess.UndoCount(), sess.RedoCount())))
	}

	step("start")

	if err := sess.Edit("set row 1", jsondoc.Mutation{jsondoc.Set("data.1", []int{7, 7, 7})}); err != nil {
		return err
	}
	step("edit")

	if _, err := sess.Undo(); err != nil {
		return err
	}
	step("undo")

	if _, err := sess.Redo(); err != nil {
		return err
	}
	step("redo")
	return nil
}
