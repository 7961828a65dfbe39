// Package diag carries lexical and syntax diagnostics from the front end to
// whatever stream the caller chooses.
package diag

import (
	"fmt"
	"io"
	"strings"
)

// Kind distinguishes the two error kinds of the front end
type Kind int

const (
	Lexical Kind = iota
	Syntax
)

func (k Kind) String() string {
	if k == Lexical {
		return "lexical error"
	}
	return "syntax error"
}

// Diagnostic is a single reported problem. Column is 0 when unknown.
type Diagnostic struct {
	Kind   Kind
	Line   int
	Column int
	Msg    string
}

func (d Diagnostic) String() string {
	if d.Column > 0 {
		return fmt.Sprintf("line %d, col %d: %s: %s", d.Line, d.Column, d.Kind, d.Msg)
	}
	return fmt.Sprintf("line %d: %s: %s", d.Line, d.Kind, d.Msg)
}

// Handler receives diagnostics as they are detected
type Handler func(Diagnostic)

// Printer returns a Handler writing one diagnostic per line to w
func Printer(w io.Writer) Handler {
	return func(d Diagnostic) {
		fmt.Fprintln(w, d.String())
	}
}

// List is an error made of several diagnostics
type List []Diagnostic

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].String()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors:", len(l))
	for _, d := range l {
		sb.WriteString("\n\t")
		sb.WriteString(d.String())
	}
	return sb.String()
}

// Err returns l as an error, or nil if l is empty
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}
