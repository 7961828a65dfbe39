// Package parser implements a table-driven LALR(1) parser for C-Minus.
//
// The grammar lives in grammar.go; its reductions build the cabs tree
// bottom-up. Constant folding is a hook applied to every reduced value, so
// it can be swapped or disabled without touching the grammar.
package parser

import (
	"errors"

	"github.com/raymyers/cminus/pkg/cabs"
	"github.com/raymyers/cminus/pkg/diag"
	"github.com/raymyers/cminus/pkg/fold"
	"github.com/raymyers/cminus/pkg/lalr"
	"github.com/raymyers/cminus/pkg/lexer"
)

// Parser parses C-Minus source code into a cabs AST
type Parser struct {
	l       *lexer.Lexer
	fold    fold.Func
	errh    diag.Handler
	lexOpts []lexer.Option
	errors  []diag.Diagnostic
}

// Option configures a Parser
type Option func(*Parser)

// WithFolder sets the hook applied to each new arithmetic, relational,
// equality or negation node. nil disables folding.
func WithFolder(f fold.Func) Option {
	return func(p *Parser) { p.fold = f }
}

// WithErrorHandler sets the handler called for syntax errors. Parse also
// installs it on the lexer it creates.
func WithErrorHandler(h diag.Handler) Option {
	return func(p *Parser) { p.errh = h }
}

// WithLexerOptions passes options to the lexer created by Parse
func WithLexerOptions(opts ...lexer.Option) Option {
	return func(p *Parser) { p.lexOpts = append(p.lexOpts, opts...) }
}

// New creates a new Parser reading tokens from l. Folding with
// fold.Constants is on by default.
func New(l *lexer.Lexer, opts ...Option) *Parser {
	p := &Parser{l: l, fold: fold.Constants}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses a complete source text
func Parse(src string, opts ...Option) (*cabs.TranslationUnit, error) {
	p := New(nil, opts...)
	lexOpts := p.lexOpts
	if p.errh != nil {
		lexOpts = append(lexOpts, lexer.WithErrorHandler(p.errh))
	}
	p.l = lexer.New(src, lexOpts...)
	return p.ParseTranslationUnit()
}

// Errors returns the lexical and syntax errors seen so far
func (p *Parser) Errors() []diag.Diagnostic {
	all := append([]diag.Diagnostic(nil), p.l.Errors()...)
	return append(all, p.errors...)
}

// ParseTranslationUnit parses tokens up to end of input. A syntax error
// stops the parse and is returned as a *lalr.SyntaxError. Lexical errors
// do not stop it, but if any occurred the result is nil and the error is
// a diag.List of them. There is never a partial tree.
func (p *Parser) ParseTranslationUnit() (*cabs.TranslationUnit, error) {
	tbl, err := cminusTable()
	if err != nil {
		return nil, err
	}

	v, err := tbl.Parse(input{p})
	if err != nil {
		var se *lalr.SyntaxError
		if errors.As(err, &se) {
			p.report(diag.Diagnostic{Kind: diag.Syntax, Line: se.Line, Msg: se.Detail()})
		}
		return nil, err
	}
	if errs := p.l.Errors(); len(errs) > 0 {
		return nil, diag.List(errs)
	}
	return v.(*cabs.TranslationUnit), nil
}

func (p *Parser) report(d diag.Diagnostic) {
	p.errors = append(p.errors, d)
	if p.errh != nil {
		p.errh(d)
	}
}

// input feeds lexer tokens to the engine and folds reduced expressions
type input struct {
	p *Parser
}

func (in input) Next() lalr.Symbol {
	t := in.p.l.NextToken()
	if t.Type == lexer.TokenEOF {
		return lalr.Symbol{ID: 0, Value: t, Line: t.Line, Text: t.String()}
	}
	return lalr.Symbol{ID: termIDs[t.Type], Value: t, Line: t.Line, Text: t.String()}
}

func (in input) Reduced(v any) any {
	if in.p.fold == nil {
		return v
	}
	switch e := v.(type) {
	case *cabs.Binop:
		if !e.Op.IsAssign() {
			return in.p.fold(e)
		}
	case *cabs.Negative:
		return in.p.fold(e)
	}
	return v
}
