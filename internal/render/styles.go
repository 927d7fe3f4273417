// Package render presents builds: a live console observer for the
// reporter's events and a final report in text, JSON or YAML.
package render

import (
	"io"
	"os"

	"github.com/Norgate-AV/xcb/internal/build"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const (
	iconOK   = "✓"
	iconFail = "✗"
	iconRun  = "▸"
)

// Color palette
var (
	colorGreen = lipgloss.Color("82")
	colorRed   = lipgloss.Color("204")
	colorCyan  = lipgloss.Color("14")
)

type styles struct {
	ok      lipgloss.Style
	fail    lipgloss.Style
	noun    lipgloss.Style
	label   lipgloss.Style
	dim     lipgloss.Style
	summary lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		ok:      r.NewStyle().Foreground(colorGreen),
		fail:    r.NewStyle().Bold(true).Foreground(colorRed),
		noun:    r.NewStyle().Foreground(colorCyan),
		label:   r.NewStyle().Bold(true),
		dim:     r.NewStyle().Faint(true),
		summary: r.NewStyle().Bold(true),
	}
}

func (s styles) state(st build.State) lipgloss.Style {
	switch st {
	case build.Successful:
		return s.ok
	case build.Failed:
		return s.fail
	default:
		return s.dim
	}
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}
