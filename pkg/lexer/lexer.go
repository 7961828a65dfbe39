// Package lexer tokenizes C-Minus source text
package lexer

import (
	"fmt"
	"iter"
	"strconv"
	"unicode/utf8"

	"github.com/raymyers/cminus/pkg/diag"
)

// Lexer tokenizes C-Minus source code held in memory
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // next reading position
	ch      byte // current character
	line    int
	column  int

	errh           diag.Handler
	errors         []diag.Diagnostic
	lineComments   bool
	strictComments bool
}

// Option configures a Lexer
type Option func(*Lexer)

// WithErrorHandler sets the handler called for every lexical error
func WithErrorHandler(h diag.Handler) Option {
	return func(l *Lexer) { l.errh = h }
}

// WithLineComments enables or disables // comments (enabled by default)
func WithLineComments(on bool) Option {
	return func(l *Lexer) { l.lineComments = on }
}

// WithUnterminatedCommentError controls whether a /* comment running into
// the end of input is reported (the default) or silently consumed.
func WithUnterminatedCommentError(on bool) Option {
	return func(l *Lexer) { l.strictComments = on }
}

// New creates a new Lexer for the given input
func New(input string, opts ...Option) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0, lineComments: true, strictComments: true}
	for _, opt := range opts {
		opt(l)
	}
	l.readChar()
	return l
}

// Line returns the current line counter
func (l *Lexer) Line() int {
	return l.line
}

// Errors returns the lexical errors reported so far
func (l *Lexer) Errors() []diag.Diagnostic {
	return l.errors
}

func (l *Lexer) errorf(line, col int, format string, args ...any) {
	d := diag.Diagnostic{Kind: diag.Lexical, Line: line, Column: col, Msg: fmt.Sprintf(format, args...)}
	l.errors = append(l.errors, d)
	if l.errh != nil {
		l.errh(d)
	}
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.column++

	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

// NextToken returns the next token from the input. Once the input is
// exhausted it keeps returning TokenEOF.
func (l *Lexer) NextToken() Token {
	for {
		l.skipSpaceAndComments()
		if l.atEOF() {
			return Token{Type: TokenEOF, Line: l.line, Column: l.column}
		}
		if tok, ok := l.scan(); ok {
			return tok
		}
	}
}

// All returns the remaining tokens as a sequence, stopping before EOF
func (l *Lexer) All() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for {
			tok := l.NextToken()
			if tok.Type == TokenEOF || !yield(tok) {
				return
			}
		}
	}
}

// Tokenize scans the whole input. The error, if any, is a diag.List of
// every lexical error; the returned tokens are still usable.
func Tokenize(input string, opts ...Option) ([]Token, error) {
	l := New(input, opts...)
	var toks []Token
	for tok := range l.All() {
		toks = append(toks, tok)
	}
	return toks, diag.List(l.errors).Err()
}

// scan recognizes one token at the current position. ok is false when the
// input there was rejected and skipped.
func (l *Lexer) scan() (tok Token, ok bool) {
	tok = Token{Line: l.line, Column: l.column}

	switch l.ch {
	case '+':
		tok = l.either('=', TokenPlusAssign, TokenPlus)
	case '-':
		tok = l.either('=', TokenMinusAssign, TokenMinus)
	case '*':
		tok = l.newToken(TokenStar, l.ch)
	case '/':
		tok = l.newToken(TokenSlash, l.ch)
	case '%':
		tok = l.newToken(TokenPercent, l.ch)
	case '=':
		tok = l.either('=', TokenEq, TokenAssign)
	case '<':
		tok = l.either('=', TokenLe, TokenLt)
	case '>':
		tok = l.either('=', TokenGe, TokenGt)
	case '!':
		tok = l.either('=', TokenNe, TokenNot)
	case '&':
		tok = l.newToken(TokenAmpersand, l.ch)
	case '(':
		tok = l.newToken(TokenLParen, l.ch)
	case ')':
		tok = l.newToken(TokenRParen, l.ch)
	case '{':
		tok = l.newToken(TokenLBrace, l.ch)
	case '}':
		tok = l.newToken(TokenRBrace, l.ch)
	case '[':
		tok = l.newToken(TokenLBracket, l.ch)
	case ']':
		tok = l.newToken(TokenRBracket, l.ch)
	case ',':
		tok = l.newToken(TokenComma, l.ch)
	case ';':
		tok = l.newToken(TokenSemicolon, l.ch)
	case '.':
		if l.peekChar() == '.' && l.pos+2 < len(l.input) && l.input[l.pos+2] == '.' {
			tok.Type = TokenEllipsis
			tok.Literal = "..."
			l.readChar()
			l.readChar()
		} else {
			l.illegal()
			return tok, false
		}
	case '"':
		return l.readQuoted('"', TokenString)
	case '\'':
		return l.readQuoted('\'', TokenChar_)
	default:
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = LookupIdent(tok.Literal)
			return tok, true
		} else if isDigit(l.ch) {
			tok.Literal, tok.Type = l.readNumber()
			return tok, true
		}
		l.illegal()
		return tok, false
	}

	l.readChar()
	return tok, true
}

func (l *Lexer) newToken(tokenType TokenType, ch byte) Token {
	return Token{Type: tokenType, Literal: string(ch), Line: l.line, Column: l.column}
}

// either returns a two-character token if the next character is next,
// otherwise the one-character token.
func (l *Lexer) either(next byte, two, one TokenType) Token {
	if l.peekChar() == next {
		tok := Token{Type: two, Literal: string([]byte{l.ch, next}), Line: l.line, Column: l.column}
		l.readChar()
		return tok
	}
	return l.newToken(one, l.ch)
}

// illegal reports the character at the current position and skips it
func (l *Lexer) illegal() {
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	if r == utf8.RuneError && size <= 1 {
		l.errorf(l.line, l.column, "illegal character %q", l.input[l.pos:l.pos+1])
	} else {
		l.errorf(l.line, l.column, "illegal character %s", strconv.QuoteRune(r))
	}
	for range size {
		l.readChar()
	}
}

func (l *Lexer) skipSpaceAndComments() {
	for !l.atEOF() {
		switch {
		case isSpace(l.ch):
			l.readChar()
		case l.ch == '/' && l.peekChar() == '*':
			l.skipBlockComment()
		case l.ch == '/' && l.peekChar() == '/' && l.lineComments:
			for l.ch != '\n' && !l.atEOF() {
				l.readChar()
			}
		default:
			return
		}
	}
}

func (l *Lexer) skipBlockComment() {
	line, col := l.line, l.column
	l.readChar() // consume /
	l.readChar() // consume *
	for !l.atEOF() {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar() // consume *
			l.readChar() // consume /
			return
		}
		l.readChar()
	}
	if l.strictComments {
		l.errorf(line, col, "unterminated comment")
	}
}

func (l *Lexer) readIdentifier() string {
	pos := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[pos:l.pos]
}

func (l *Lexer) readNumber() (string, TokenType) {
	pos := l.pos
	typ := TokenNum
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && l.peekChar() != '.' {
		typ = TokenFNum
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[pos:l.pos], typ
}

// readQuoted scans a string or character literal. The token keeps the
// quotes; escapes are checked here and decoded when the AST is built.
func (l *Lexer) readQuoted(quote byte, typ TokenType) (Token, bool) {
	tok := Token{Type: typ, Line: l.line, Column: l.column}
	pos := l.pos
	l.readChar() // consume opening quote
	for l.ch != quote {
		if l.atEOF() || l.ch == '\n' {
			l.errorf(tok.Line, tok.Column, "unterminated %s", typ)
			return tok, false
		}
		if l.ch == '\\' {
			l.readChar()
			if l.atEOF() || l.ch == '\n' {
				continue
			}
		}
		l.readChar()
	}
	l.readChar() // consume closing quote
	tok.Literal = l.input[pos:l.pos]

	val, err := Unquote(tok.Literal)
	if err != nil {
		l.errorf(tok.Line, tok.Column, "%v", err)
		return tok, false
	}
	if typ == TokenChar_ && len(val) != 1 {
		l.errorf(tok.Line, tok.Column, "invalid character constant %s", tok.Literal)
		return tok, false
	}
	return tok, true
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' || ch == '\v'
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
