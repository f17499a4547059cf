package repl

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// styles holds the shell's lipgloss styles, bound to one output.
type styles struct {
	prompt  lipgloss.Style
	ok      lipgloss.Style
	err     lipgloss.Style
	dim     lipgloss.Style
	current lipgloss.Style
	label   lipgloss.Style
}

// newStyles picks colors for w. Writers that are not terminals get plain
// text.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		prompt:  r.NewStyle().Foreground(lipgloss.Color("#61AFEF")).Bold(true),
		ok:      r.NewStyle().Foreground(lipgloss.Color("#10B981")),
		err:     r.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		dim:     r.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		current: r.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true),
		label:   r.NewStyle().Bold(true),
	}
}
