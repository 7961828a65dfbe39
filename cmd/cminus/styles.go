package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/raymyers/cminus/pkg/diag"
)

// Colors
var (
	colorError   = lipgloss.Color("#EF4444")
	colorWarning = lipgloss.Color("#F59E0B")
	colorMuted   = lipgloss.Color("#6B7280")
)

// diagStyles renders diagnostics for one output stream
type diagStyles struct {
	location lipgloss.Style
	lexical  lipgloss.Style
	syntax   lipgloss.Style
}

// newDiagStyles binds the styles to w. The renderer drops colors when w
// is not a terminal, and color=false drops them always.
func newDiagStyles(w io.Writer, color bool) diagStyles {
	r := lipgloss.NewRenderer(w)
	if !color {
		return diagStyles{location: r.NewStyle(), lexical: r.NewStyle(), syntax: r.NewStyle()}
	}
	return diagStyles{
		location: r.NewStyle().Foreground(colorMuted),
		lexical:  r.NewStyle().Foreground(colorWarning).Bold(true),
		syntax:   r.NewStyle().Foreground(colorError).Bold(true),
	}
}

// handler writes "file:line:col: kind: msg" lines to w
func (s diagStyles) handler(w io.Writer, filename string) diag.Handler {
	return func(d diag.Diagnostic) {
		loc := fmt.Sprintf("%s:%d:", filename, d.Line)
		if d.Column > 0 {
			loc = fmt.Sprintf("%s:%d:%d:", filename, d.Line, d.Column)
		}
		kind := s.syntax
		if d.Kind == diag.Lexical {
			kind = s.lexical
		}
		fmt.Fprintf(w, "%s %s %s\n", s.location.Render(loc), kind.Render(d.Kind.String()+":"), d.Msg)
	}
}
