package diag

import (
	"bytes"
	"strings"
	"testing"
)

func TestDiagnosticString(t *testing.T) {
	tests := []struct {
		name     string
		d        Diagnostic
		expected string
	}{
		{"with column", Diagnostic{Lexical, 3, 7, "illegal character '@'"}, "line 3, col 7: lexical error: illegal character '@'"},
		{"without column", Diagnostic{Syntax, 12, 0, "unexpected 'else'"}, "line 12: syntax error: unexpected 'else'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.String(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	h := Printer(&buf)
	h(Diagnostic{Kind: Lexical, Line: 1, Column: 2, Msg: "a"})
	h(Diagnostic{Kind: Syntax, Line: 4, Msg: "b"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[1], "line 4:") {
		t.Errorf("unexpected second line %q", lines[1])
	}
}

func TestListErr(t *testing.T) {
	var empty List
	if empty.Err() != nil {
		t.Error("empty list should yield a nil error")
	}

	l := List{
		{Kind: Lexical, Line: 1, Column: 1, Msg: "x"},
		{Kind: Lexical, Line: 2, Column: 5, Msg: "y"},
	}
	err := l.Err()
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.HasPrefix(err.Error(), "2 errors:") {
		t.Errorf("unexpected message %q", err.Error())
	}
}
